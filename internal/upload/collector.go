// Package upload turns user-selected files into in-memory source images.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"shotcraft/internal/domain"
	"shotcraft/pkg/datauri"
)

// DefaultMaxImageBytes caps a single file when the collector is built without a limit.
const DefaultMaxImageBytes int64 = 20 << 20

// Source is one file picked by the user. Open is called once per read.
type Source struct {
	Name     string
	MIMEType string
	Open     func() (io.ReadCloser, error)
}

// FromFileHeader adapts a multipart upload.
func FromFileHeader(fh *multipart.FileHeader) Source {
	return Source{
		Name:     fh.Filename,
		MIMEType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// FromPath adapts a file on disk. The MIME type is left for sniffing.
func FromPath(path string) Source {
	return Source{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// SourceImage is a read, encoded upload. Two uploads of the same bytes are two
// distinct images with different IDs.
type SourceImage struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	MIMEType       string    `json:"mimeType"`
	Data           []byte    `json:"-"`
	PreviewDataURI string    `json:"previewDataUri"`
	Width          int       `json:"width,omitempty"`
	Height         int       `json:"height,omitempty"`
}

// Collector reads upload batches.
type Collector struct {
	maxBytes int64
	logger   zerolog.Logger
}

func NewCollector(maxBytes int64, logger zerolog.Logger) *Collector {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &Collector{maxBytes: maxBytes, logger: logger.With().Str("component", "collector").Logger()}
}

// ReadBatch reads every source concurrently and returns the images in input
// order. A single failure discards the whole batch.
func (c *Collector) ReadBatch(ctx context.Context, sources []Source) ([]SourceImage, error) {
	if len(sources) == 0 {
		return nil, nil
	}

	out := make([]SourceImage, len(sources))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, src := range sources {
		eg.Go(func() error {
			img, err := c.read(egCtx, src)
			if err != nil {
				return fmt.Errorf("%s: %w", src.Name, err)
			}
			out[i] = img
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		c.logger.Warn().Err(err).Int("files", len(sources)).Msg("batch read failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}

	c.logger.Debug().Int("files", len(out)).Msg("batch read")
	return out, nil
}

func (c *Collector) read(ctx context.Context, src Source) (SourceImage, error) {
	if err := ctx.Err(); err != nil {
		return SourceImage{}, err
	}
	if src.Open == nil {
		return SourceImage{}, fmt.Errorf("no reader")
	}
	rc, err := src.Open()
	if err != nil {
		return SourceImage{}, fmt.Errorf("open: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, c.maxBytes+1))
	if err != nil {
		return SourceImage{}, fmt.Errorf("read: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return SourceImage{}, fmt.Errorf("file exceeds %d bytes", c.maxBytes)
	}

	mimeType := normalizeMIME(src.MIMEType)
	if mimeType == "" {
		mimeType = normalizeMIME(http.DetectContentType(data))
	}

	img := SourceImage{
		ID:             uuid.New(),
		Name:           src.Name,
		MIMEType:       mimeType,
		Data:           data,
		PreviewDataURI: datauri.Format(mimeType, data),
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width, img.Height = cfg.Width, cfg.Height
	}
	return img, nil
}

func normalizeMIME(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.IndexByte(v, ';'); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	if v == "application/octet-stream" {
		return ""
	}
	return strings.ToLower(v)
}
