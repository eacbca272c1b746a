package segmentation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"shearzone/internal/domain/entity"
)

var errNoSamples = fmt.Errorf("threshold: %w", entity.ErrEmptyRegion)

const (
	otsuBins = 256

	// rissConfidence квантиль 97.5% нормального распределения
	rissConfidence = 1.96
)

// MaskedSamples возвращает интенсивности пикселей, не исключённых маской.
func MaskedSamples(img *entity.GrayImage, excluded *entity.Mask) ([]float64, error) {
	if err := img.CheckShape(excluded); err != nil {
		return nil, err
	}
	samples := make([]float64, 0, len(img.Pix)-excluded.Count())
	for i, v := range img.Pix {
		if !excluded.Pix[i] {
			samples = append(samples, v)
		}
	}
	return samples, nil
}

// OtsuThreshold ищет порог, максимизирующий межклассовую дисперсию.
//
// Гистограмма из 256 интервалов строится по диапазону [min, max] выборки,
// порогом служит центр интервала. Если все значения равны, возвращается это значение.
func OtsuThreshold(samples []float64) (float64, error) {
	if len(samples) == 0 {
		return 0, errNoSamples
	}

	lo, hi := samples[0], samples[0]
	for _, v := range samples {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return lo, nil
	}

	var hist [otsuBins]float64
	width := (hi - lo) / otsuBins
	for _, v := range samples {
		bin := int((v - lo) / width)
		if bin >= otsuBins {
			bin = otsuBins - 1
		}
		hist[bin]++
	}

	var centers [otsuBins]float64
	for i := range centers {
		centers[i] = lo + width*(float64(i)+0.5)
	}

	// накопленные веса и средние слева и справа от каждого интервала
	var w1, m1, w2, m2 [otsuBins]float64
	var sumW, sumM float64
	for i := 0; i < otsuBins; i++ {
		sumW += hist[i]
		sumM += hist[i] * centers[i]
		w1[i] = sumW
		if sumW > 0 {
			m1[i] = sumM / sumW
		}
	}
	sumW, sumM = 0, 0
	for i := otsuBins - 1; i >= 0; i-- {
		sumW += hist[i]
		sumM += hist[i] * centers[i]
		w2[i] = sumW
		if sumW > 0 {
			m2[i] = sumM / sumW
		}
	}

	best, bestVar := 0, -1.0
	for i := 0; i < otsuBins-1; i++ {
		d := m1[i] - m2[i+1]
		v := w1[i] * w2[i+1] * d * d
		if v > bestVar {
			best, bestVar = i, v
		}
	}
	return centers[best], nil
}

// BinarizeWithMask сравнивает каждый пиксель с порогом; исключённые пиксели считаются нулевыми.
func BinarizeWithMask(img *entity.GrayImage, excluded *entity.Mask, threshold float64) (*entity.Mask, error) {
	if err := img.CheckShape(excluded); err != nil {
		return nil, err
	}
	bw := entity.NewMask(img.Width, img.Height)
	for i, v := range img.Pix {
		if excluded.Pix[i] {
			v = 0
		}
		bw.Pix[i] = v >= threshold
	}
	return bw, nil
}

// OtsuWithMask считает порог OTSU по неисключённым пикселям и бинаризует изображение.
func OtsuWithMask(img *entity.GrayImage, excluded *entity.Mask) (*entity.Mask, float64, error) {
	samples, err := MaskedSamples(img, excluded)
	if err != nil {
		return nil, 0, err
	}
	threshold, err := OtsuThreshold(samples)
	if err != nil {
		return nil, 0, err
	}
	bw, err := BinarizeWithMask(img, excluded, threshold)
	if err != nil {
		return nil, 0, err
	}
	return bw, threshold, nil
}

// RissThreshold порог μ + 1.96σ по пикселям внутри governed.
func RissThreshold(img *entity.GrayImage, governed *entity.Mask) (float64, error) {
	if err := img.CheckShape(governed); err != nil {
		return 0, err
	}
	samples, err := MaskedSamples(img, governed.Not())
	if err != nil {
		return 0, err
	}
	if len(samples) == 0 {
		return 0, errNoSamples
	}
	mean, std := stat.PopMeanStdDev(samples, nil)
	return mean + rissConfidence*std, nil
}

