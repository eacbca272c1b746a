package imageio

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"shearzone/internal/domain/entity"
	"shearzone/internal/infrastructure/morphology"
	"shearzone/internal/infrastructure/segmentation"
)

var (
	backgroundColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outsideColor    = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	labelColor      = color.RGBA{A: 255}
)

// componentColor оттенок по ориентации главной оси, насыщенность по вытянутости.
func componentColor(rec entity.ComponentRecord) color.Color {
	hue := (rec.Orientation + math.Pi/2) / math.Pi * 360
	sat := 0.35
	if rec.MajorAxis > 0 {
		sat = math.Max(sat, 1-rec.MinorAxis/rec.MajorAxis)
	}
	return colorful.Hsv(math.Mod(hue, 360), sat, 0.85).Clamped()
}

// RenderComponents рисует связные области маски разными цветами и подписывает их номера.
// Пиксели вне полигона обрезки закрашиваются серым.
func RenderComponents(bw *entity.Mask, crop entity.Polygon) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, bw.Width, bw.Height))
	inside := segmentation.Rasterize(entity.RegionSet{Crop: crop}.CropOrFrame(bw.Width, bw.Height), bw.Width, bw.Height)
	for i, in := range inside.Pix {
		c := backgroundColor
		if !in {
			c = outsideColor
		}
		out.SetRGBA(i%bw.Width, i/bw.Width, c)
	}

	labels, err := morphology.Label(bw, morphology.DefaultConnectivity)
	if err != nil {
		return out
	}
	table, err := morphology.Measure(bw, nil, crop, morphology.DefaultConnectivity)
	if err != nil {
		return out
	}

	palette := make([]color.Color, labels.Count+1)
	for _, rec := range table.Components {
		palette[rec.Label] = componentColor(rec)
	}
	for i, l := range labels.Pix {
		if l > 0 && inside.Pix[i] {
			out.Set(i%bw.Width, i/bw.Width, palette[l])
		}
	}

	for _, rec := range table.Components {
		drawLabel(out, strconv.Itoa(rec.Label), rec.CentroidCol, rec.CentroidRow)
	}
	return out
}

// drawLabel пишет текст с центром в точке (x, y).
func drawLabel(dst draw.Image, text string, x, y float64) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(labelColor),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(int(x+0.5)) - width/2,
			Y: fixed.I(int(y+0.5) + face.Ascent/2),
		},
	}
	d.DrawString(text)
}
