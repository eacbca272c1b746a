package port

import (
	"image"

	"shearzone/internal/domain/entity"
)

// ImageProcessor декодирование, кодирование и предобработка снимков
type ImageProcessor interface {
	Decode(data []byte) (image.Image, error)
	EncodePNG(img image.Image) ([]byte, error)
	EncodeJPEG(img image.Image) ([]byte, error)

	// Gray строит изображение в градациях серого по выбранному каналу
	Gray(img image.Image, channel entity.Channel) (*entity.GrayImage, error)

	// Median медианный фильтр с радиусом в пикселях
	Median(img image.Image, radius float64) image.Image

	// Preview уменьшает снимок до maxSide по большей стороне
	Preview(img image.Image, maxSide int) image.Image

	// RenderComponents раскрашивает связные области маски
	RenderComponents(bw *entity.Mask, crop entity.Polygon) image.Image
}
