package imageio

import (
	"image"
	"image/color"

	"shearzone/internal/domain/entity"
)

// MaskImage переводит маску в чёрно-белое изображение (true: белый).
func MaskImage(m *entity.Mask) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v {
			img.Pix[(i/m.Width)*img.Stride+i%m.Width] = 255
		}
	}
	return img
}

// MaskFromImage считает истинными все пиксели с ненулевой яркостью.
func MaskFromImage(img image.Image) *entity.Mask {
	b := img.Bounds()
	m := entity.NewMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			m.Pix[y*m.Width+x] = g.Y > 0
		}
	}
	return m
}

// GrayToImage переводит интенсивности в 8-битное изображение с насыщением.
func GrayToImage(g *entity.GrayImage) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	for i, v := range g.Pix {
		switch {
		case v <= 0:
			v = 0
		case v >= 255:
			v = 255
		}
		img.Pix[(i/g.Width)*img.Stride+i%g.Width] = uint8(v + 0.5)
	}
	return img
}
