package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danielostrow/planVision/internal/apperr"
)

// Ghostscript rasterizes PDF documents by running the gs command-line tool.
type Ghostscript struct {
	Path string
	DPI  int
}

// NewGhostscript returns a rasterizer calling the binary at path.
func NewGhostscript(path string, dpi int) *Ghostscript {
	if path == "" {
		path = "gs"
	}
	if dpi <= 0 {
		dpi = 200
	}
	return &Ghostscript{Path: path, DPI: dpi}
}

// Available reports whether the gs binary can be found.
func (g *Ghostscript) Available() bool {
	_, err := exec.LookPath(g.Path)
	return err == nil
}

// Rasterize renders every page of doc to an RGB image.
func (g *Ghostscript) Rasterize(ctx context.Context, doc []byte) ([]image.Image, error) {
	dir, err := os.MkdirTemp("", "planvision-raster-*")
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrIOFailure, "create raster temp dir", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, doc, 0600); err != nil {
		return nil, apperr.Wrap(apperr.ErrIOFailure, "write raster input", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, g.Path,
		"-q", "-dSAFER", "-dBATCH", "-dNOPAUSE",
		"-sDEVICE=png16m", fmt.Sprintf("-r%d", g.DPI),
		"-dTextAlphaBits=4", "-dGraphicsAlphaBits=4",
		"-o", filepath.Join(dir, "page_%05d.png"),
		input)
	cmd.Dir = dir
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, apperr.Wrap(apperr.ErrRasterizeFailure, "ghostscript not found", err)
		}
		msg := strings.TrimSpace(stderr.String())
		return nil, apperr.Wrap(apperr.ErrRasterizeFailure, "ghostscript: "+msg, err)
	}

	pages, err := filepath.Glob(filepath.Join(dir, "page_*.png"))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrRasterizeFailure, "list rendered pages", err)
	}
	// Zero-padded names sort in page order.
	sort.Strings(pages)

	images := make([]image.Image, 0, len(pages))
	for _, page := range pages {
		img, err := decodePNG(page)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrRasterizeFailure, "decode "+filepath.Base(page), err)
		}
		images = append(images, img)
	}
	return images, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}
