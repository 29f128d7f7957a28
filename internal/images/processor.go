// Package images validates uploaded vehicle photos and renders the resized
// variants served by the catalog pages.
package images

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // decoder for .webp uploads

	"github.com/asapfoodtrailer/dealerd/internal/apperr"
)

// Variant sizes. Fit preserves aspect ratio inside the bounding box.
var variants = []struct {
	name    string
	w, h    int
	quality int
}{
	{"thumb", 400, 300, 82},
	{"medium", 800, 600, 82},
	{"large", 1200, 900, 82},
}

const originalQuality = 90

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// Result holds the public URLs of a processed upload, keyed by variant name
// plus "original".
type Result map[string]string

// Processor writes uploads and their resized variants under Dir and returns
// URLs rooted at /uploads/.
type Processor struct {
	dir      string
	maxBytes int64
	logger   *slog.Logger
}

// New creates a Processor storing files under dir.
func New(dir string, maxBytes int64, logger *slog.Logger) *Processor {
	return &Processor{dir: dir, maxBytes: maxBytes, logger: logger}
}

// Process validates and stores one uploaded image. Validation failures wrap
// apperr.ErrInvalid so handlers can map them to a 400.
func (p *Processor) Process(filename string, r io.Reader) (Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExts[ext] {
		return nil, fmt.Errorf("%w: unsupported image type %q", apperr.ErrInvalid, ext)
	}

	// Read one byte past the cap so oversized uploads are detected without
	// buffering the whole stream.
	raw, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(raw)) > p.maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", apperr.ErrInvalid, p.maxBytes)
	}

	src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid image: %v", apperr.ErrInvalid, err)
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	base := uuid.NewString()
	result := Result{}

	origName := base + ".jpg"
	if err := p.saveJPEG(src, origName, originalQuality); err != nil {
		return nil, err
	}
	result["original"] = "/uploads/" + origName

	for _, v := range variants {
		resized := imaging.Fit(src, v.w, v.h, imaging.Lanczos)
		name := fmt.Sprintf("%s_%s.jpg", base, v.name)
		if err := p.saveJPEG(resized, name, v.quality); err != nil {
			return nil, err
		}
		result[v.name] = "/uploads/" + name
	}

	p.logger.Info("image processed",
		slog.String("base", base),
		slog.Int("bytes", len(raw)))
	return result, nil
}

func (p *Processor) saveJPEG(img image.Image, name string, quality int) error {
	path := filepath.Join(p.dir, name)
	if err := imaging.Save(img, path, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// Dir returns the directory uploads are written to.
func (p *Processor) Dir() string {
	return p.dir
}
