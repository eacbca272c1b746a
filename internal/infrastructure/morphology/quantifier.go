package morphology

import (
	"shearzone/internal/domain/entity"
	"shearzone/internal/domain/port"
)

// Quantifier реализует port.Quantifier с фиксированной связностью.
type Quantifier struct {
	conn int
}

// NewQuantifier создаёт измеритель; conn 0 означает 8-связность.
func NewQuantifier(conn int) (*Quantifier, error) {
	if conn == 0 {
		conn = DefaultConnectivity
	}
	if err := checkConnectivity(conn); err != nil {
		return nil, err
	}
	return &Quantifier{conn: conn}, nil
}

func (q *Quantifier) FilterSmallObjects(bw *entity.Mask, minArea float64, scale *entity.Scale) (*entity.Mask, error) {
	return FilterSmallObjects(bw, minArea, scale, q.conn)
}

func (q *Quantifier) FillSmallHoles(bw *entity.Mask, minArea float64, scale *entity.Scale) (*entity.Mask, error) {
	return FillSmallHoles(bw, minArea, scale, q.conn)
}

func (q *Quantifier) Measure(bw *entity.Mask, scale *entity.Scale, crop entity.Polygon) (*entity.ComponentTable, error) {
	return Measure(bw, scale, crop, q.conn)
}

var _ port.Quantifier = (*Quantifier)(nil)
