package entity

import "fmt"

// Mask булева сетка размером с изображение.
// Та же структура служит бинарным результатом сегментации.
type Mask struct {
	Width  int
	Height int
	Pix    []bool // построчно, индекс y*Width+x
}

// NewMask создаёт маску, заполненную false.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]bool, width*height),
	}
}

// At возвращает значение пикселя; за пределами маски: false.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set задаёт значение пикселя.
func (m *Mask) Set(x, y int, v bool) {
	m.Pix[y*m.Width+x] = v
}

// Count число пикселей со значением true.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// SameShape проверяет совпадение размеров.
func (m *Mask) SameShape(width, height int) bool {
	return m.Width == width && m.Height == height
}

// Clone возвращает независимую копию.
func (m *Mask) Clone() *Mask {
	out := &Mask{Width: m.Width, Height: m.Height, Pix: make([]bool, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// Not возвращает инвертированную маску.
func (m *Mask) Not() *Mask {
	out := NewMask(m.Width, m.Height)
	for i, v := range m.Pix {
		out.Pix[i] = !v
	}
	return out
}

// Or объединяет маску с другой на месте.
func (m *Mask) Or(other *Mask) error {
	if !other.SameShape(m.Width, m.Height) {
		return shapeError(m.Width, m.Height, other.Width, other.Height)
	}
	for i, v := range other.Pix {
		if v {
			m.Pix[i] = true
		}
	}
	return nil
}

// And пересекает маску с другой на месте.
func (m *Mask) And(other *Mask) error {
	if !other.SameShape(m.Width, m.Height) {
		return shapeError(m.Width, m.Height, other.Width, other.Height)
	}
	for i, v := range other.Pix {
		if !v {
			m.Pix[i] = false
		}
	}
	return nil
}

// GrayImage двумерная сетка интенсивностей (шкала 0..255).
type GrayImage struct {
	Width  int
	Height int
	Pix    []float64
}

// NewGrayImage создаёт чёрное изображение.
func NewGrayImage(width, height int) *GrayImage {
	return &GrayImage{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height),
	}
}

// At возвращает интенсивность пикселя.
func (g *GrayImage) At(x, y int) float64 {
	return g.Pix[y*g.Width+x]
}

// Set задаёт интенсивность пикселя.
func (g *GrayImage) Set(x, y int, v float64) {
	g.Pix[y*g.Width+x] = v
}

// Clone возвращает независимую копию.
func (g *GrayImage) Clone() *GrayImage {
	out := &GrayImage{Width: g.Width, Height: g.Height, Pix: make([]float64, len(g.Pix))}
	copy(out.Pix, g.Pix)
	return out
}

// CheckShape возвращает ErrShapeMismatch, если маска не совпадает с изображением по размеру.
func (g *GrayImage) CheckShape(m *Mask) error {
	if m == nil || !m.SameShape(g.Width, g.Height) {
		if m == nil {
			return fmt.Errorf("nil mask for %dx%d image: %w", g.Width, g.Height, ErrShapeMismatch)
		}
		return shapeError(g.Width, g.Height, m.Width, m.Height)
	}
	return nil
}

func shapeError(w, h, ow, oh int) error {
	return fmt.Errorf("%dx%d vs %dx%d: %w", w, h, ow, oh, ErrShapeMismatch)
}
