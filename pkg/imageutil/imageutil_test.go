package imageutil

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestSplitDataURL(t *testing.T) {
	mime, raw, err := SplitDataURL("data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("abc")))
	require.NoError(t, err)
	require.Equal(t, "image/png", mime)
	require.Equal(t, []byte("abc"), raw)

	mime, raw, err = SplitDataURL(base64.StdEncoding.EncodeToString([]byte("xyz")))
	require.NoError(t, err)
	require.Empty(t, mime)
	require.Equal(t, []byte("xyz"), raw)

	for _, bad := range []string{"", "data:image/png;base64", "data:image/png,abc", "data:image/png;base64,***"} {
		_, _, err := SplitDataURL(bad)
		require.ErrorIs(t, err, ErrInvalidDataURL, bad)
	}
}

func TestDecodeDataURL(t *testing.T) {
	img, err := DecodeDataURL(pngDataURL(t, 40, 20))
	require.NoError(t, err)
	require.Equal(t, 40, img.Bounds().Dx())
	require.Equal(t, 20, img.Bounds().Dy())

	_, err = DecodeDataURL("data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not an image")))
	require.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestCropAndFit(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 50))

	cropped, err := Crop(img, Rect{X: 90, Y: 10, Width: 50, Height: 20})
	require.NoError(t, err)
	require.Equal(t, 10, cropped.Bounds().Dx())
	require.Equal(t, 20, cropped.Bounds().Dy())

	_, err = Crop(img, Rect{X: 200, Y: 0, Width: 10, Height: 10})
	require.ErrorIs(t, err, ErrEmptyCrop)

	fitted := Fit(img, 50, 50)
	require.Equal(t, 50, fitted.Bounds().Dx())
	require.Equal(t, 25, fitted.Bounds().Dy())

	small := Fit(img, 600, 600)
	require.Equal(t, 100, small.Bounds().Dx())
}

func TestFormatForExt(t *testing.T) {
	f, ok := FormatForExt(".JPG")
	require.True(t, ok)
	require.Equal(t, JPEG, f)
	f, ok = FormatForExt(".png")
	require.True(t, ok)
	require.Equal(t, PNG, f)
	_, ok = FormatForExt(".gif")
	require.False(t, ok)

	var buf bytes.Buffer
	require.ErrorIs(t, Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 1, 1)), Format("gif")), ErrUnsupportedImage)
}
