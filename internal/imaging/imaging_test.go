package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isPlaceholder(img image.Image) bool {
	rgba, ok := img.(*image.RGBA)
	if !ok {
		return false
	}
	return rgba.Bounds() == notAvailable().Bounds() && bytes.Equal(rgba.Pix, notAvailable().Pix)
}

func solid(c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDecodePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, solid(color.RGBA{R: 10, A: 255})))

	img, err := NewDecoder().Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, TileSize, TileSize), img.Bounds())
}

func TestDecodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(color.RGBA{G: 200, A: 255}), nil))

	_, err := NewDecoder().Decode(buf.Bytes())
	assert.NoError(t, err)
}

func TestDecodeFailures(t *testing.T) {
	_, err := NewDecoder().Decode(nil)
	assert.ErrorIs(t, err, ErrDecode)

	_, err = NewDecoder().Decode([]byte("<html>404</html>"))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestPlaceholderIsACopy(t *testing.T) {
	a := Placeholder()
	b := Placeholder()

	assert.True(t, isPlaceholder(a))
	a.Pix[0] = 0
	assert.False(t, isPlaceholder(a))
	assert.True(t, isPlaceholder(b), "mutating one copy leaves the others intact")
	assert.False(t, isPlaceholder(solid(color.White)))
}

func TestCompose2x2(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}

	out := Compose2x2([4]image.Image{solid(red), nil, nil, solid(blue)})

	assert.Equal(t, image.Rect(0, 0, 2*TileSize, 2*TileSize), out.Bounds())
	assert.Equal(t, red, out.RGBAAt(10, 10))
	assert.Equal(t, color.RGBA{}, out.RGBAAt(TileSize+10, 10))
	assert.Equal(t, blue, out.RGBAAt(TileSize+10, TileSize+10))
}
