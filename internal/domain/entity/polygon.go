package entity

import (
	"fmt"
	"math"
)

// Point точка на изображении в пикселях (X столбец, Y строка)
type Point struct {
	X float64
	Y float64
}

// Finite сообщает, что обе координаты конечны.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Distance возвращает евклидово расстояние до другой точки
func (p Point) Distance(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Polygon упорядоченный список вершин; последняя вершина неявно соединена с первой.
type Polygon []Point

// RectPolygon возвращает прямоугольник, покрывающий весь кадр.
func RectPolygon(width, height int) Polygon {
	w, h := float64(width), float64(height)
	return Polygon{{0, 0}, {w, 0}, {w, h}, {0, h}}
}

// Valid сообщает, задаёт ли полигон область (не меньше трёх вершин).
func (p Polygon) Valid() bool {
	return len(p) >= 3
}

// Finite сообщает, что все вершины конечны.
func (p Polygon) Finite() bool {
	for _, v := range p {
		if !v.Finite() {
			return false
		}
	}
	return true
}

// Area площадь по формуле шнурков (всегда неотрицательная).
func (p Polygon) Area() float64 {
	if !p.Valid() {
		return 0
	}
	var sum float64
	for i := range p {
		j := (i + 1) % len(p)
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return math.Abs(sum) / 2
}

// Perimeter длина замкнутой ломаной.
func (p Polygon) Perimeter() float64 {
	if len(p) < 2 {
		return 0
	}
	var length float64
	for i := range p {
		length += p[i].Distance(p[(i+1)%len(p)])
	}
	return length
}

// Reversed возвращает полигон с обратным порядком обхода.
func (p Polygon) Reversed() Polygon {
	out := make(Polygon, len(p))
	for i, pt := range p {
		out[len(p)-1-i] = pt
	}
	return out
}

// Clone возвращает независимую копию.
func (p Polygon) Clone() Polygon {
	if p == nil {
		return nil
	}
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// Pairs возвращает вершины в виде списка [x, y] (формат сохранения проекта).
func (p Polygon) Pairs() [][2]float64 {
	out := make([][2]float64, len(p))
	for i, pt := range p {
		out[i] = [2]float64{pt.X, pt.Y}
	}
	return out
}

// PolygonFromPairs собирает полигон из списка [x, y].
func PolygonFromPairs(pairs [][2]float64) Polygon {
	if len(pairs) == 0 {
		return nil
	}
	out := make(Polygon, len(pairs))
	for i, xy := range pairs {
		out[i] = Point{X: xy[0], Y: xy[1]}
	}
	return out
}

func (p Polygon) String() string {
	return fmt.Sprintf("polygon(%d points, area=%.1f)", len(p), p.Area())
}

// RegionSet набор ROI и необязательный полигон обрезки.
type RegionSet struct {
	Crop Polygon   // пустой: весь кадр
	ROIs []Polygon // области интереса
}

// CropOrFrame возвращает полигон обрезки или прямоугольник кадра, если обрезка не задана.
func (r RegionSet) CropOrFrame(width, height int) Polygon {
	if r.Crop.Valid() {
		return r.Crop
	}
	return RectPolygon(width, height)
}

// Clone делает глубокую копию набора для передачи в фоновую задачу.
func (r RegionSet) Clone() RegionSet {
	out := RegionSet{Crop: r.Crop.Clone()}
	if r.ROIs != nil {
		out.ROIs = make([]Polygon, len(r.ROIs))
		for i, roi := range r.ROIs {
			out.ROIs[i] = roi.Clone()
		}
	}
	return out
}
