// Package recordid names exported crop images.
//
// A name is <category>_<YYYYMMDDhhmmss>_<suffix>.png where suffix is six hex
// digits drawn from crypto/rand. Two exports of the same category within the
// same second collide with probability 1 in 16^6 per pair; uniqueness is
// probabilistic, not guaranteed.
package recordid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/danielostrow/planVision/internal/apperr"
)

const (
	// TimestampLayout is the fixed-width timestamp embedded in crop names.
	TimestampLayout = "20060102150405"
	// SuffixBytes random bytes give 2*SuffixBytes hex digits.
	SuffixBytes = 3
	CropExt     = ".png"
)

// Layouts accepted for the dateTime field, tried in order.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Allocator builds crop filenames.
type Allocator struct {
	defaultCategory string
	random          io.Reader
}

// New returns an Allocator using crypto/rand. An empty category normalizes
// to defaultCategory.
func New(defaultCategory string) *Allocator {
	return NewWithSource(defaultCategory, rand.Reader)
}

// NewWithSource is New with an explicit randomness source.
func NewWithSource(defaultCategory string, random io.Reader) *Allocator {
	return &Allocator{defaultCategory: defaultCategory, random: random}
}

// NormalizeCategory replaces whitespace and path separators with underscores.
func (a *Allocator) NormalizeCategory(category string) string {
	if strings.TrimSpace(category) == "" {
		return a.defaultCategory
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, category)
}

// ParseDateTime parses an ISO-8601 timestamp.
func ParseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperr.Wrap(apperr.ErrInvalidTimestamp, "dateTime is empty", nil)
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Wrap(apperr.ErrInvalidTimestamp, fmt.Sprintf("cannot parse %q", value), nil)
}

// FormatTimestamp renders t in TimestampLayout, using its own wall clock.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Suffix returns 2*SuffixBytes random hex digits.
func (a *Allocator) Suffix() (string, error) {
	buf := make([]byte, SuffixBytes)
	if _, err := io.ReadFull(a.random, buf); err != nil {
		return "", apperr.Wrap(apperr.ErrUnexpected, "read random suffix", err)
	}
	return hex.EncodeToString(buf), nil
}

// AllocateFilename returns <category>_<timestamp>_<suffix>.png for an export
// captured at dateTime.
func (a *Allocator) AllocateFilename(category, dateTime string) (string, error) {
	capturedAt, err := ParseDateTime(dateTime)
	if err != nil {
		return "", err
	}
	return a.FilenameAt(category, capturedAt)
}

// FilenameAt is AllocateFilename for an already parsed timestamp.
func (a *Allocator) FilenameAt(category string, capturedAt time.Time) (string, error) {
	suffix, err := a.Suffix()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s_%s%s", a.NormalizeCategory(category), FormatTimestamp(capturedAt), suffix, CropExt), nil
}
