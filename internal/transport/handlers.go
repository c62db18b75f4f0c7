// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/UnendingLoop/ExifStripper/internal/exifmeta"
	"github.com/UnendingLoop/ExifStripper/internal/model"
	"github.com/wb-go/wbf/ginext"
)

type ImageHandler struct {
	service       ImageService
	maxUploadSize int64
}

type ImageService interface {
	Strip(ctx context.Context, r io.Reader) (*model.StripResult, error) // вернуть картинку без метаданных
	Inspect(ctx context.Context, r io.Reader) ([]exifmeta.Entry, error) // получить список exif-тегов
}

func NewImageHandler(svc ImageService, maxUploadSize int64) *ImageHandler {
	return &ImageHandler{
		service:       svc,
		maxUploadSize: maxUploadSize,
	}
}

func (h ImageHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

func (h ImageHandler) Strip(ctx *ginext.Context) {
	file, ok := h.upload(ctx)
	if !ok {
		return
	}
	defer closeFileFlow(file)

	res, err := h.service.Strip(ctx.Request.Context(), file)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.Writer.Header().Set("X-Metadata-Removed", strconv.FormatBool(res.HadMetadata))
	if res.ArchiveKey != "" {
		ctx.Writer.Header().Set("X-Archive-Key", res.ArchiveKey)
	}
	ctx.Data(200, res.ContentType, res.Data)
}

func (h ImageHandler) Inspect(ctx *ginext.Context) {
	file, ok := h.upload(ctx)
	if !ok {
		return
	}
	defer closeFileFlow(file)

	res, err := h.service.Inspect(ctx.Request.Context(), file)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

// upload returns the "image" form file or writes a 400 response.
func (h ImageHandler) upload(ctx *ginext.Context) (io.ReadCloser, bool) {
	if h.maxUploadSize > 0 {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, h.maxUploadSize)
	}

	file, _, err := ctx.Request.FormFile("image")
	if err != nil {
		ctx.JSON(400, map[string]string{"error": "image is required"})
		return nil, false
	}
	return file, true
}
