// Package imageutil decodes uploaded data URLs and prepares card photos and signatures.
package imageutil

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

var (
	ErrInvalidDataURL   = errors.New("image must be a base64 data URL")
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrEmptyCrop        = errors.New("crop rectangle is outside the image")
)

// Rect crop rectangle in source pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Format output encodings.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
)

// FormatForExt maps a file extension to its encoder; unknown extensions return false.
func FormatForExt(ext string) (Format, bool) {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return JPEG, true
	case ".png":
		return PNG, true
	}
	return "", false
}

// SplitDataURL returns the mime type and raw bytes of "data:image/...;base64,...".
// A bare base64 payload is accepted with an empty mime type.
func SplitDataURL(s string) (string, []byte, error) {
	s = strings.TrimSpace(s)
	mime := ""
	payload := s
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			return "", nil, ErrInvalidDataURL
		}
		meta := s[len("data:"):comma]
		if !strings.HasSuffix(meta, ";base64") {
			return "", nil, ErrInvalidDataURL
		}
		mime = strings.TrimSuffix(meta, ";base64")
		payload = s[comma+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	if len(raw) == 0 {
		return "", nil, ErrInvalidDataURL
	}
	return mime, raw, nil
}

// DecodeDataURL decodes jpeg, png or webp content.
func DecodeDataURL(s string) (image.Image, error) {
	mime, raw, err := SplitDataURL(s)
	if err != nil {
		return nil, err
	}
	if mime == "image/webp" || isWebP(raw) {
		img, err := webp.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
		}
		return img, nil
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, nil
}

func isWebP(raw []byte) bool {
	return len(raw) >= 12 && string(raw[0:4]) == "RIFF" && string(raw[8:12]) == "WEBP"
}

// Crop cuts r out of img, clipped to the image bounds.
func Crop(img image.Image, r Rect) (image.Image, error) {
	b := img.Bounds()
	rect := image.Rect(b.Min.X+r.X, b.Min.Y+r.Y, b.Min.X+r.X+r.Width, b.Min.Y+r.Y+r.Height).Intersect(b)
	if rect.Empty() {
		return nil, ErrEmptyCrop
	}
	return imaging.Crop(img, rect), nil
}

// Fit shrinks img to fit maxW x maxH keeping the aspect ratio. Smaller images are left alone.
func Fit(img image.Image, maxW, maxH int) image.Image {
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}

// Encode writes img in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case JPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(90))
	case PNG:
		return imaging.Encode(w, img, imaging.PNG)
	default:
		return ErrUnsupportedImage
	}
}
