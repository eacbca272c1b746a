package morphology

import (
	"math"

	"shearzone/internal/domain/entity"
)

// веса пограничных пикселей по коду окрестности
var perimeterWeights = func() [50]float64 {
	var w [50]float64
	for _, i := range []int{5, 7, 15, 17, 25, 27} {
		w[i] = 1
	}
	w[21], w[33] = math.Sqrt2, math.Sqrt2
	w[13], w[23] = (1+math.Sqrt2)/2, (1+math.Sqrt2)/2
	return w
}()

type moments struct {
	n            float64
	sumR, sumC   float64
	sumRR, sumCC float64
	sumRC        float64
	border       []int // индексы пограничных пикселей
}

// Measure размечает маску и строит таблицу компонент.
// scale == nil: только пиксельные величины. Пустой crop означает весь кадр.
func Measure(bw *entity.Mask, scale *entity.Scale, crop entity.Polygon, conn int) (*entity.ComponentTable, error) {
	labels, err := Label(bw, conn)
	if err != nil {
		return nil, err
	}

	stats := make([]moments, labels.Count+1)
	w := labels.Width
	for i, l := range labels.Pix {
		if l == 0 {
			continue
		}
		r, c := float64(i/w), float64(i%w)
		m := &stats[l]
		m.n++
		m.sumR += r
		m.sumC += c
		m.sumRR += r * r
		m.sumCC += c * c
		m.sumRC += r * c
		if isBorder(labels, i%w, i/w) {
			m.border = append(m.border, i)
		}
	}

	table := &entity.ComponentTable{Scale: scale}
	for l := 1; l <= labels.Count; l++ {
		m := stats[l]
		rec := entity.ComponentRecord{
			Label:       l,
			CentroidRow: m.sumR / m.n,
			CentroidCol: m.sumC / m.n,
			AreaPx:      m.n,
			PerimeterPx: perimeter(labels, l, m.border),
		}
		rec.Orientation, rec.MajorAxis, rec.MinorAxis = inertia(m)
		if scale != nil {
			rec.Area = scale.Area(rec.AreaPx)
			rec.Perimeter = scale.Length(rec.PerimeterPx)
		}
		table.Components = append(table.Components, rec)
		table.TotalAreaPx += rec.AreaPx
		table.TotalPerimeterPx += rec.PerimeterPx
	}

	region := entity.RegionSet{Crop: crop}.CropOrFrame(bw.Width, bw.Height)
	table.RegionAreaPx = region.Area()
	table.RegionPerimeterPx = region.Perimeter()
	if scale != nil {
		table.TotalArea = scale.Area(table.TotalAreaPx)
		table.TotalPerimeter = scale.Length(table.TotalPerimeterPx)
		table.RegionArea = scale.Area(table.RegionAreaPx)
		table.RegionPerimeter = scale.Length(table.RegionPerimeterPx)
	}
	return table, nil
}

// isBorder пиксель компоненты, у которого есть сосед по стороне вне этой компоненты.
func isBorder(labels *LabelImage, x, y int) bool {
	l := labels.At(x, y)
	return labels.At(x-1, y) != l || labels.At(x+1, y) != l ||
		labels.At(x, y-1) != l || labels.At(x, y+1) != l
}

// perimeter оценка длины границы по коду окрестности каждого пограничного пикселя:
// 1 + 2·(пограничные соседи по стороне) + 10·(пограничные соседи по диагонали).
func perimeter(labels *LabelImage, l int, border []int) float64 {
	w := labels.Width
	onBorder := func(x, y int) bool {
		return labels.At(x, y) == l && isBorder(labels, x, y)
	}

	var total float64
	for _, i := range border {
		x, y := i%w, i/w
		code := 1
		for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			if onBorder(x+d[0], y+d[1]) {
				code += 2
			}
		}
		for _, d := range [][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
			if onBorder(x+d[0], y+d[1]) {
				code += 10
			}
		}
		if code < len(perimeterWeights) {
			total += perimeterWeights[code]
		}
	}
	return total
}

// inertia ориентация главной оси (рад) и длины осей эллипса с теми же вторыми моментами.
func inertia(m moments) (orientation, major, minor float64) {
	meanR, meanC := m.sumR/m.n, m.sumC/m.n
	varR := m.sumRR/m.n - meanR*meanR
	varC := m.sumCC/m.n - meanC*meanC
	cov := m.sumRC/m.n - meanR*meanC

	a, b, c := varC, -cov, varR
	if a-c == 0 {
		if b < 0 {
			orientation = math.Pi / 4
		} else {
			orientation = -math.Pi / 4
		}
	} else {
		orientation = 0.5 * math.Atan2(-2*b, c-a)
	}

	half := (a + c) / 2
	d := math.Sqrt(((a-c)/2)*((a-c)/2) + b*b)
	major = 4 * math.Sqrt(math.Max(half+d, 0))
	minor = 4 * math.Sqrt(math.Max(half-d, 0))
	return orientation, major, minor
}
