package model

import (
	"fmt"
	"strconv"
	"strings"
)

// PageImagePrefix and PageImageExt frame the id in a page image filename.
const (
	PageImagePrefix = "convertedFile_"
	PageImageExt    = ".jpg"
)

// PageImage is one rasterized page, stored as JPEG under its integer id.
type PageImage struct {
	ID       int    `json:"id"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// PageImageName returns the filename of the page with the given id.
func PageImageName(id int) string {
	return fmt.Sprintf("%s%d%s", PageImagePrefix, id, PageImageExt)
}

// ParsePageImageName extracts the id from a page image filename.
func ParsePageImageName(name string) (int, bool) {
	digits, ok := strings.CutPrefix(name, PageImagePrefix)
	if !ok {
		return 0, false
	}
	digits, ok = strings.CutSuffix(digits, PageImageExt)
	if !ok || digits == "" {
		return 0, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return id, true
}
