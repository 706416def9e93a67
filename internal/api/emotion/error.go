package emotion

import (
	"EmotionAPI/pkg/response"
	"net/http"
)

var (
	ErrMissingImageData    = response.NewError(http.StatusBadRequest, "missing image data")
	ErrInvalidImageData    = response.NewError(http.StatusBadRequest, "invalid base64 image data")
	ErrNotAnImage          = response.NewError(http.StatusBadRequest, "payload is not a decodable image")
	ErrDetectionNotFound   = response.NewError(http.StatusNotFound, "detection not found")
	ErrInternalServerError = response.NewError(http.StatusInternalServerError, "internal server error")
)
