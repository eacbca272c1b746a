package segmentation

import (
	"math"
	"sort"

	"shearzone/internal/domain/entity"
)

// Rasterize переводит полигон в маску width x height.
//
// Пиксель попадает в маску, если его центр (x+0.5, y+0.5) лежит внутри полигона
// по правилу чётности пересечений. Самопересечения допускаются. Полигон меньше
// чем из трёх вершин или с бесконечными координатами даёт пустую маску.
// Вершины могут лежать сколь угодно далеко за кадром.
func Rasterize(polygon entity.Polygon, width, height int) *entity.Mask {
	mask := entity.NewMask(width, height)
	if !polygon.Valid() || !polygon.Finite() || width <= 0 || height <= 0 {
		return mask
	}

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range polygon {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	rowFrom := clampIndex(math.Floor(minY), height)
	rowTo := clampIndex(math.Ceil(maxY), height)

	n := len(polygon)
	xs := make([]float64, 0, 8)
	for y := rowFrom; y < rowTo; y++ {
		yc := float64(y) + 0.5
		xs = xs[:0]
		for i := 0; i < n; i++ {
			a, b := polygon[i], polygon[(i+1)%n]
			// полуоткрытое правило: вершина на строке сканирования считается один раз
			if (a.Y > yc) == (b.Y > yc) {
				continue
			}
			xs = append(xs, a.X+(yc-a.Y)*(b.X-a.X)/(b.Y-a.Y))
		}
		sort.Float64s(xs)

		row := mask.Pix[y*width : (y+1)*width]
		for i := 0; i+1 < len(xs); i += 2 {
			from := clampIndex(math.Ceil(xs[i]-0.5), width)
			to := clampIndex(math.Ceil(xs[i+1]-0.5), width)
			for x := from; x < to; x++ {
				row[x] = true
			}
		}
	}

	return mask
}

// clampIndex ограничивает v диапазоном [0, hi] до перевода в int, иначе int() переполнится.
func clampIndex(v float64, hi int) int {
	return int(math.Max(0, math.Min(float64(hi), v)))
}
