package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"sync"

	_ "golang.org/x/image/webp"
)

// TileSize is the edge length of a map tile in pixels.
const TileSize = 256

var ErrDecode = errors.New("tile decode error")

// Decoder turns fetched or cached bytes into an image.
type Decoder interface {
	Decode(data []byte) (image.Image, error)
}

// ImageDecoder decodes PNG, JPEG, GIF and WebP payloads.
type ImageDecoder struct{}

var _ Decoder = ImageDecoder{}

func NewDecoder() ImageDecoder {
	return ImageDecoder{}
}

func (ImageDecoder) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

var (
	background = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	foreground = color.RGBA{R: 0xa0, G: 0xa0, B: 0xa0, A: 0xff}
)

// notAvailable is drawn once: a grey tile with a border and a cross.
var notAvailable = sync.OnceValue(func() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	const border = 2
	for i := 0; i < TileSize; i++ {
		for b := 0; b < border; b++ {
			img.SetRGBA(i, b, foreground)
			img.SetRGBA(i, TileSize-1-b, foreground)
			img.SetRGBA(b, i, foreground)
			img.SetRGBA(TileSize-1-b, i, foreground)
		}
		img.SetRGBA(i, i, foreground)
		img.SetRGBA(TileSize-1-i, i, foreground)
	}
	return img
})

// Placeholder returns a fresh copy of the "not available" tile. Callers own
// the copy and may cache it.
func Placeholder() *image.RGBA {
	src := notAvailable()
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	return enc.Encode(w, img)
}

// Compose2x2 lays tiles out row by row on a 2x2 grid of TileSize cells.
// nil tiles are left transparent.
func Compose2x2(tiles [4]image.Image) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, 2*TileSize, 2*TileSize))
	for i, t := range tiles {
		if t == nil {
			continue
		}
		origin := image.Pt((i%2)*TileSize, (i/2)*TileSize)
		r := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(TileSize, TileSize))}
		draw.Draw(out, r, t, t.Bounds().Min, draw.Src)
	}
	return out
}
