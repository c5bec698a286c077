// Package assetstore abstracts the external binary store that holds auction
// item images. The service only ever sees an opaque asset id plus a
// retrieval URL.
package assetstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"auction-house/utils"
)

// AssetStore uploads a binary asset and returns its reference.
type AssetStore interface {
	Upload(ctx context.Context, filename string, r io.Reader) (model.Image, error)
}

// LocalAssetStore is a filesystem-backed AssetStore. It stands in for a
// hosted image service in development and tests.
type LocalAssetStore struct {
	dir     string
	baseURL string
}

// NewLocalAssetStore creates the asset directory if needed.
func NewLocalAssetStore(dir, baseURL string) (*LocalAssetStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("asset store: create dir %s: %w", dir, err)
	}
	return &LocalAssetStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload writes the asset under a generated id and returns its reference.
// A cancelled or expired context surfaces Timeout; any write failure surfaces
// AssetUploadFailed and leaves no partial file behind.
func (s *LocalAssetStore) Upload(ctx context.Context, filename string, r io.Reader) (model.Image, error) {
	if err := ctx.Err(); err != nil {
		return model.Image{}, fmt.Errorf("asset upload: %w", uploadErr(err))
	}

	assetID := utils.GenerateID() + sanitizeExt(filename)
	path := filepath.Join(s.dir, assetID)

	f, err := os.Create(path)
	if err != nil {
		return model.Image{}, fmt.Errorf("asset upload %s: %w", filename, uploadErr(err))
	}

	if _, err := io.Copy(f, ctxReader{ctx: ctx, r: r}); err != nil {
		f.Close()
		os.Remove(path)
		return model.Image{}, fmt.Errorf("asset upload %s: %w", filename, uploadErr(err))
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return model.Image{}, fmt.Errorf("asset upload %s: %w", filename, uploadErr(err))
	}

	return model.Image{
		AssetID: assetID,
		URL:     s.baseURL + "/" + assetID,
	}, nil
}

// ctxReader stops the copy as soon as the request context ends, so a
// cancelled upload cannot run to completion.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr ctxReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}

func uploadErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return auctionerrors.ErrTimeout
	}
	return fmt.Errorf("%w: %v", auctionerrors.ErrAssetUploadFailed, err)
}

// sanitizeExt keeps a short, known-safe file extension
func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
		return ext
	default:
		return ""
	}
}
