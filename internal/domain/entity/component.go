package entity

import (
	"fmt"
	"math"
)

// Scale калибровка: реальная длина (мм) одного пикселя.
type Scale float64

// NewScaleFromLine считает масштаб по отрезку известной длины.
func NewScaleFromLine(a, b Point, realLength float64) (Scale, error) {
	px := a.Distance(b)
	if px <= 0 || realLength <= 0 || math.IsNaN(realLength) || math.IsInf(realLength, 0) {
		return 0, fmt.Errorf("reference line %.2f px / %.4f mm: length must be positive", px, realLength)
	}
	return Scale(realLength / px), nil
}

// Length переводит длину в пикселях в миллиметры.
func (s Scale) Length(px float64) float64 {
	return px * float64(s)
}

// Area переводит площадь в пикселях в квадратные миллиметры.
func (s Scale) Area(px2 float64) float64 {
	return px2 * float64(s) * float64(s)
}

// AreaToPixels переводит площадь в мм² в пиксели.
func (s Scale) AreaToPixels(mm2 float64) float64 {
	return mm2 / float64(s) / float64(s)
}

// ComponentRecord одна связная область зоны разрушения
type ComponentRecord struct {
	Label       int     // номер компоненты, начиная с 1
	CentroidRow float64 // центр масс, строка
	CentroidCol float64 // центр масс, столбец
	AreaPx      float64 // площадь, px²
	PerimeterPx float64 // периметр, px
	Area        float64 // площадь, мм² (0 без калибровки)
	Perimeter   float64 // периметр, мм (0 без калибровки)
	Orientation float64 // угол главной оси, рад
	MajorAxis   float64 // длина главной оси, px
	MinorAxis   float64 // длина малой оси, px
}

// ComponentTable таблица компонент с итоговой строкой.
type ComponentTable struct {
	Components []ComponentRecord
	Scale      *Scale

	TotalAreaPx      float64
	TotalPerimeterPx float64
	TotalArea        float64
	TotalPerimeter   float64

	// Площадь и периметр полигона обрезки, считаются по геометрии полигона.
	RegionAreaPx      float64
	RegionPerimeterPx float64
	RegionArea        float64
	RegionPerimeter   float64
}

// Calibrated сообщает, заданы ли миллиметровые величины.
func (t *ComponentTable) Calibrated() bool {
	return t.Scale != nil
}

// DamageRatio доля площади обрезки, занятая зонами разрушения.
func (t *ComponentTable) DamageRatio() float64 {
	if t.RegionAreaPx <= 0 {
		return 0
	}
	return t.TotalAreaPx / t.RegionAreaPx
}

// Report текстовое описание таблицы и её CSV-представление
type Report struct {
	Text string
	CSV  []byte
}
