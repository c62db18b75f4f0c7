package transport

import (
	"errors"
	"io"
	"log"

	"github.com/UnendingLoop/ExifStripper/internal/model"
)

func errorCodeDefiner(err error) int {
	switch {
	case errors.Is(err, model.ErrNoMetadata):
		return 404
	case errors.Is(err, model.ErrEmptySource),
		errors.Is(err, model.ErrDecode):
		return 400
	case errors.Is(err, model.ErrEncode),
		errors.Is(err, model.ErrAllocation):
		return 422
	case errors.Is(err, model.ErrWrite),
		errors.Is(err, model.ErrStorage):
		return 500
	default:
		return 500
	}
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		log.Println("Handler failed to close fileflow:", err)
	}
}
