package morphology

import (
	"shearzone/internal/domain/entity"
)

// RemoveSmallObjects удаляет компоненты площадью строго меньше minSize пикселей.
func RemoveSmallObjects(bw *entity.Mask, minSize float64, conn int) (*entity.Mask, error) {
	labels, err := Label(bw, conn)
	if err != nil {
		return nil, err
	}
	sizes := labels.Sizes()

	out := bw.Clone()
	for i, l := range labels.Pix {
		if l > 0 && float64(sizes[l]) < minSize {
			out.Pix[i] = false
		}
	}
	return out, nil
}

// RemoveSmallHoles заполняет дыры площадью строго меньше minSize пикселей.
// Дырой считается любая связная область фона, в том числе касающаяся края.
func RemoveSmallHoles(bw *entity.Mask, minSize float64, conn int) (*entity.Mask, error) {
	background, err := RemoveSmallObjects(bw.Not(), minSize, conn)
	if err != nil {
		return nil, err
	}
	return background.Not(), nil
}

// FilterSmallObjects удаляет компоненты меньше minArea мм².
func FilterSmallObjects(bw *entity.Mask, minArea float64, scale *entity.Scale, conn int) (*entity.Mask, error) {
	if scale == nil {
		return nil, entity.ErrScaleRequired
	}
	return RemoveSmallObjects(bw, scale.AreaToPixels(minArea), conn)
}

// FillSmallHoles заполняет дыры меньше minArea мм².
func FillSmallHoles(bw *entity.Mask, minArea float64, scale *entity.Scale, conn int) (*entity.Mask, error) {
	if scale == nil {
		return nil, entity.ErrScaleRequired
	}
	return RemoveSmallHoles(bw, scale.AreaToPixels(minArea), conn)
}
