package utils

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const maxInferenceDimension = 1024

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	ConvertFileToBase64(file multipart.File) (string, error)
	StripDataURLPrefix(encoded string) string
	PrepareImageForInference(imageData []byte, quality int) ([]byte, error)
}

type utils struct {
	maxFileSize int64
}

func New() IUtils {
	return &utils{
		maxFileSize: 5 * 1024 * 1024,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return errors.New("no file uploaded")
	}

	if file.Size > u.maxFileSize {
		return errors.New("file size exceeds limit")
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return errors.New("uploaded file is not an image")
	}

	return nil
}

func (u *utils) ConvertFileToBase64(file multipart.File) (string, error) {
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(fileBytes), nil
}

// StripDataURLPrefix drops a "data:image/jpeg;base64," style prefix as
// produced by canvas.toDataURL. Input without a prefix is returned unchanged.
func (u *utils) StripDataURLPrefix(encoded string) string {
	if idx := strings.Index(encoded, ","); idx != -1 && strings.HasPrefix(encoded, "data:") {
		return encoded[idx+1:]
	}
	return encoded
}

// PrepareImageForInference decodes the raster, downscales anything larger
// than 1024px on its longest side and re-encodes as JPEG. Returns an error
// when the payload is not a decodable image.
func (u *utils) PrepareImageForInference(imageData []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()
	if origWidth == 0 || origHeight == 0 {
		return nil, errors.New("image has empty bounds")
	}

	newWidth, newHeight := origWidth, origHeight
	if origWidth > maxInferenceDimension || origHeight > maxInferenceDimension {
		ratio := float64(origWidth) / float64(origHeight)

		if origWidth > origHeight {
			newWidth = maxInferenceDimension
			newHeight = int(float64(maxInferenceDimension) / ratio)
		} else {
			newHeight = maxInferenceDimension
			newWidth = int(float64(maxInferenceDimension) * ratio)
		}

		img = downscale(img, newWidth, newHeight)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// downscale is a nearest-neighbor resize. The model tolerates sampling
// artifacts, so a filtering resampler is not worth the dependency.
func downscale(src image.Image, width, height int) image.Image {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	srcBounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		srcY := srcBounds.Min.Y + y*srcBounds.Dy()/height
		for x := 0; x < width; x++ {
			srcX := srcBounds.Min.X + x*srcBounds.Dx()/width
			dst.Set(x, y, color.RGBAModel.Convert(src.At(srcX, srcY)))
		}
	}

	return dst
}
