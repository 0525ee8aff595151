package dto

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/danielostrow/planVision/internal/apperr"
)

// ExportItem is one crop of a JSON batch export. ImageBase64 may carry a
// data URL prefix such as "data:image/png;base64,".
type ExportItem struct {
	File        string `json:"file"`
	DateTime    string `json:"dateTime"`
	Category    string `json:"category"`
	ImageBase64 string `json:"imageBase64"`
}

// Payload decodes ImageBase64.
func (i ExportItem) Payload() ([]byte, error) {
	encoded := strings.TrimSpace(i.ImageBase64)
	if strings.HasPrefix(encoded, "data:") {
		_, after, found := strings.Cut(encoded, ",")
		if !found {
			return nil, apperr.Wrap(apperr.ErrMissingPayload, "data URL without payload", nil)
		}
		encoded = after
	}
	if encoded == "" {
		return nil, apperr.Wrap(apperr.ErrMissingPayload, "imageBase64 is empty", nil)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: imageBase64: %w", apperr.ErrValidation, err)
	}
	return data, nil
}

// ExportResponse acknowledges a stored export.
type ExportResponse struct {
	Message string `json:"message"`
	Stored  int    `json:"stored"`
}
