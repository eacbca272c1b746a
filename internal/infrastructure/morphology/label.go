package morphology

import (
	"fmt"

	"github.com/theodesp/unionfind"

	"shearzone/internal/domain/entity"
)

// Связность соседства пикселей.
const (
	Connectivity4 = 1 // только соседи по стороне
	Connectivity8 = 2 // соседи по стороне и по диагонали

	DefaultConnectivity = Connectivity8
)

// LabelImage метки связных областей. 0 фон, компоненты нумеруются с 1 до Count.
type LabelImage struct {
	Width  int
	Height int
	Pix    []int
	Count  int
}

// At возвращает метку пикселя; за пределами: 0.
func (l *LabelImage) At(x, y int) int {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return 0
	}
	return l.Pix[y*l.Width+x]
}

// Sizes площади компонент в пикселях, индекс: метка.
func (l *LabelImage) Sizes() []int {
	sizes := make([]int, l.Count+1)
	for _, v := range l.Pix {
		if v > 0 {
			sizes[v]++
		}
	}
	return sizes
}

func checkConnectivity(conn int) error {
	if conn != Connectivity4 && conn != Connectivity8 {
		return fmt.Errorf("connectivity %d: must be 1 or 2", conn)
	}
	return nil
}

// maxProvisional верхняя граница числа временных меток: новая метка появляется
// только у пикселя, левый сосед которого фон.
func maxProvisional(w, h int) int {
	return (w+1)/2*h + 1
}

// Label размечает связные области маски двухпроходным алгоритмом.
// Метки нумеруются в порядке первого появления при обходе по строкам.
func Label(bw *entity.Mask, conn int) (*LabelImage, error) {
	if err := checkConnectivity(conn); err != nil {
		return nil, err
	}
	w, h := bw.Width, bw.Height
	labels := &LabelImage{Width: w, Height: h, Pix: make([]int, w*h)}

	// уже просмотренные соседи: слева и сверху, для 8-связности ещё диагонали сверху
	type offset struct{ dx, dy int }
	neighbours := []offset{{-1, 0}, {0, -1}}
	if conn == Connectivity8 {
		neighbours = append(neighbours, offset{-1, -1}, offset{1, -1})
	}

	sets := unionfind.New(maxProvisional(w, h))
	next := 1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !bw.Pix[y*w+x] {
				continue
			}
			current := 0
			for _, n := range neighbours {
				nl := labels.At(x+n.dx, y+n.dy)
				if nl == 0 {
					continue
				}
				if current == 0 {
					current = nl
				} else {
					sets.Union(current, nl)
				}
			}
			if current == 0 {
				current = next
				next++
			}
			labels.Pix[y*w+x] = current
		}
	}

	compact := make([]int, next)
	for i, v := range labels.Pix {
		if v == 0 {
			continue
		}
		root := sets.Root(v)
		if compact[root] == 0 {
			labels.Count++
			compact[root] = labels.Count
		}
		labels.Pix[i] = compact[root]
	}
	return labels, nil
}
