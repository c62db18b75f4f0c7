package transport

import (
	"context"
	"io"

	"github.com/UnendingLoop/ExifStripper/internal/exifmeta"
	"github.com/UnendingLoop/ExifStripper/internal/model"
	"github.com/gin-gonic/gin"
)

type mockImageService struct {
	stripFn   func(ctx context.Context, r io.Reader) (*model.StripResult, error)
	inspectFn func(ctx context.Context, r io.Reader) ([]exifmeta.Entry, error)
}

func (m *mockImageService) Strip(ctx context.Context, r io.Reader) (*model.StripResult, error) {
	return m.stripFn(ctx, r)
}

func (m *mockImageService) Inspect(ctx context.Context, r io.Reader) ([]exifmeta.Entry, error) {
	return m.inspectFn(ctx, r)
}

func init() {
	gin.SetMode(gin.TestMode)
}
