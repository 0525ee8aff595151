package raster

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/danielostrow/planVision/internal/apperr"
)

func init() {
	// Keep pdfcpu from creating a config directory under $HOME.
	api.DisableConfigDir()
}

// Validator checks that a document can be parsed before it is rasterized.
type Validator interface {
	Validate(doc []byte) (pages int, err error)
}

// PDFValidator validates documents with pdfcpu.
type PDFValidator struct{}

// Validate parses doc and returns its page count, or apperr.ErrUnsupportedFormat.
func (PDFValidator) Validate(doc []byte) (int, error) {
	if len(doc) == 0 {
		return 0, apperr.Wrap(apperr.ErrUnsupportedFormat, "empty document", nil)
	}

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(doc), conf)
	if err != nil {
		return 0, apperr.Wrap(apperr.ErrUnsupportedFormat, "pdfcpu read", err)
	}
	return ctx.PageCount, nil
}
