package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // GIF decoder

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder

	"shearzone/internal/domain/entity"
	"shearzone/internal/domain/port"
)

// Коэффициенты яркости (ITU-R BT.709), как в scikit-image rgb2gray.
const (
	lumaR = 0.2125
	lumaG = 0.7154
	lumaB = 0.0721
)

type Processor struct {
	JPEGQuality int
}

// NewProcessor создаёт обработчик снимков.
func NewProcessor() *Processor {
	return &Processor{JPEGQuality: 90}
}

// Decode декодирует снимок и поворачивает его по EXIF.
func (p *Processor) Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func (p *Processor) EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *Processor) EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Gray строит изображение интенсивностей 0..255 по выбранному каналу.
func (p *Processor) Gray(img image.Image, channel entity.Channel) (*entity.GrayImage, error) {
	if img == nil {
		return nil, entity.ErrNoImage
	}
	var pick func(r, g, b float64) float64
	switch channel {
	case entity.ChannelRGB:
		pick = func(r, g, b float64) float64 { return lumaR*r + lumaG*g + lumaB*b }
	case entity.ChannelGray:
		pick = func(r, g, b float64) float64 { return (r + g + b) / 3 }
	case entity.ChannelRed:
		pick = func(r, _, _ float64) float64 { return r }
	case entity.ChannelGreen:
		pick = func(_, g, _ float64) float64 { return g }
	case entity.ChannelBlue:
		pick = func(_, _, b float64) float64 { return b }
	default:
		return nil, fmt.Errorf("channel %q: %w", channel, entity.ErrUnknownChannel)
	}

	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := entity.NewGrayImage(w, h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			px := row[x*4 : x*4+3]
			out.Pix[y*w+x] = pick(float64(px[0]), float64(px[1]), float64(px[2]))
		}
	}
	return out, nil
}

// Median медианный фильтр; radius <= 0 возвращает снимок без изменений.
func (p *Processor) Median(img image.Image, radius float64) image.Image {
	if radius <= 0 {
		return img
	}
	return effect.Median(img, radius)
}

// Preview уменьшает снимок, чтобы большая сторона не превышала maxSide.
func (p *Processor) Preview(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	if maxSide <= 0 || (b.Dx() <= maxSide && b.Dy() <= maxSide) {
		return img
	}
	return imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
}

func (p *Processor) RenderComponents(bw *entity.Mask, crop entity.Polygon) image.Image {
	return RenderComponents(bw, crop)
}

var _ port.ImageProcessor = (*Processor)(nil)
