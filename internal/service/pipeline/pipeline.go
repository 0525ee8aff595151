// Package pipeline rasterizes uploaded documents into the page image directory.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/danielostrow/planVision/internal/apperr"
	"github.com/danielostrow/planVision/internal/logger"
	"github.com/danielostrow/planVision/internal/model"
	"github.com/danielostrow/planVision/internal/service/pageid"
	"github.com/danielostrow/planVision/internal/service/raster"
)

// Options tune the encoding of page images.
type Options struct {
	JPEGQuality   int
	MaxPageWidth  int
	EncodeWorkers int
}

// Pipeline validates a document, rasterizes it and writes one JPEG per page.
type Pipeline struct {
	validator  raster.Validator
	rasterizer raster.Rasterizer
	counter    pageid.Counter
	opts       Options
	logger     *logger.Logger
}

func New(validator raster.Validator, rasterizer raster.Rasterizer, counter pageid.Counter, opts Options, logger *logger.Logger) *Pipeline {
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = jpeg.DefaultQuality
	}
	if opts.EncodeWorkers <= 0 {
		opts.EncodeWorkers = 1
	}
	return &Pipeline{
		validator:  validator,
		rasterizer: rasterizer,
		counter:    counter,
		opts:       opts,
		logger:     logger,
	}
}

// RasterizeAndStore writes every page of doc to targetDir as
// convertedFile_<id>.jpg and returns the pages in document order. Ids start
// at the counter's value for targetDir and are contiguous.
func (p *Pipeline) RasterizeAndStore(ctx context.Context, doc []byte, targetDir string) ([]model.PageImage, error) {
	pageCount, err := p.validator.Validate(doc)
	if err != nil {
		return nil, err
	}

	images, err := p.rasterizer.Rasterize(ctx, doc)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrRasterizeFailure, "rasterize document", err)
	}
	if len(images) != pageCount {
		p.logger.Warning("Document reports %d pages, rasterizer produced %d", pageCount, len(images))
	}

	encoded, err := p.encode(ctx, images)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, apperr.Wrap(apperr.ErrIOFailure, "create "+targetDir, err)
	}

	start, err := p.counter.Reserve(targetDir, len(encoded))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrIOFailure, "reserve page ids", err)
	}
	ids := pageid.Allocate(start, len(encoded))

	pages := make([]model.PageImage, 0, len(encoded))
	for i, data := range encoded {
		name := model.PageImageName(ids[i])
		path := filepath.Join(targetDir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return pages, apperr.Wrap(apperr.ErrIOFailure, "write "+name, err)
		}
		pages = append(pages, model.PageImage{ID: ids[i], Filename: name, Path: path, Size: int64(len(data))})
	}

	p.logger.Info("Stored %d page(s) in %s starting at id %d", len(pages), targetDir, start)
	return pages, nil
}

// encode converts the pages to JPEG concurrently; the result keeps page order.
func (p *Pipeline) encode(ctx context.Context, images []image.Image) ([][]byte, error) {
	encoded := make([][]byte, len(images))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.opts.EncodeWorkers)
	for i, img := range images {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img = raster.Resize(img, p.opts.MaxPageWidth)

			var buf bytes.Buffer
			if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.opts.JPEGQuality}); err != nil {
				return fmt.Errorf("encode page %d: %w", i+1, err)
			}
			encoded[i] = buf.Bytes()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, apperr.Wrap(apperr.ErrUnexpected, "encode pages", err)
	}
	return encoded, nil
}
