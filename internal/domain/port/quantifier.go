package port

import "shearzone/internal/domain/entity"

// Quantifier фильтрует шум и измеряет связные области
type Quantifier interface {
	// FilterSmallObjects удаляет области меньше minArea (мм²)
	FilterSmallObjects(bw *entity.Mask, minArea float64, scale *entity.Scale) (*entity.Mask, error)

	// FillSmallHoles заполняет дыры меньше minArea (мм²)
	FillSmallHoles(bw *entity.Mask, minArea float64, scale *entity.Scale) (*entity.Mask, error)

	// Measure строит таблицу компонент
	Measure(bw *entity.Mask, scale *entity.Scale, crop entity.Polygon) (*entity.ComponentTable, error)
}
