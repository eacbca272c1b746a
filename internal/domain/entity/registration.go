package entity

import (
	"fmt"
	"image"
	"strings"
)

// Algorithm семейство детекторов особых точек
type Algorithm string

const (
	AlgorithmSIFT Algorithm = "SIFT" // инвариантность к масштабу и повороту, float-дескрипторы
	AlgorithmORB  Algorithm = "ORB"  // бинарные дескрипторы, быстрый
)

// Параметры сопоставления, как в исходной методике.
const (
	MinMatchCount          = 10
	KeepBestMatches        = 100
	DefaultInlierThreshold = 5.0
	MinFeatures            = 20
	MaxFeatures            = 5000
	DefaultMaxFeatures     = 1000
)

// ParseAlgorithm разбирает название детектора без учёта регистра.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToUpper(strings.TrimSpace(s))); a {
	case AlgorithmSIFT, AlgorithmORB:
		return a, nil
	}
	return "", fmt.Errorf("algorithm %q: %w", s, ErrUnknownAlgorithm)
}

// TransformModel вид геометрического преобразования
type TransformModel string

const (
	ModelHomography TransformModel = "homography"
	ModelAffine     TransformModel = "affine"
)

// ParseTransformModel разбирает вид преобразования.
func ParseTransformModel(s string) (TransformModel, error) {
	switch m := TransformModel(strings.ToLower(strings.TrimSpace(s))); m {
	case ModelHomography, ModelAffine:
		return m, nil
	}
	return "", fmt.Errorf("transform %q: %w", s, ErrUnknownAlgorithm)
}

// Transform матрица 3x3 построчно; переводит координаты подвижного снимка в опорный.
type Transform [9]float64

// Identity единичное преобразование.
func Identity() Transform {
	return Transform{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Apply применяет преобразование к точке.
func (t Transform) Apply(p Point) Point {
	w := t[6]*p.X + t[7]*p.Y + t[8]
	if w == 0 {
		w = 1e-12
	}
	return Point{
		X: (t[0]*p.X + t[1]*p.Y + t[2]) / w,
		Y: (t[3]*p.X + t[4]*p.Y + t[5]) / w,
	}
}

// Correspondence пара сопоставленных точек.
type Correspondence struct {
	Reference Point
	Moving    Point
	Distance  float64 // расстояние между дескрипторами
}

// TransformEstimate найденное преобразование и маска инлаеров по парам.
type TransformEstimate struct {
	Model        TransformModel
	Matrix       Transform
	Inliers      []bool
	InlierCount  int
	MeanResidual float64 // средняя ошибка репроекции инлаеров, px
}

// RegistrationParams параметры совмещения снимков.
type RegistrationParams struct {
	Algorithm       Algorithm
	MaxFeatures     int
	InlierThreshold float64
	Model           TransformModel
}

// DefaultRegistrationParams значения по умолчанию.
func DefaultRegistrationParams() RegistrationParams {
	return RegistrationParams{
		Algorithm:       AlgorithmORB,
		MaxFeatures:     DefaultMaxFeatures,
		InlierThreshold: DefaultInlierThreshold,
		Model:           ModelHomography,
	}
}

// Validate проверяет параметры, приводит названия к каноническому виду,
// а количество точек к допустимому диапазону.
func (p *RegistrationParams) Validate() error {
	algorithm, err := ParseAlgorithm(string(p.Algorithm))
	if err != nil {
		return err
	}
	p.Algorithm = algorithm
	if p.Model == "" {
		p.Model = ModelHomography
	}
	model, err := ParseTransformModel(string(p.Model))
	if err != nil {
		return err
	}
	p.Model = model
	if p.MaxFeatures < MinFeatures {
		p.MaxFeatures = MinFeatures
	}
	if p.MaxFeatures > MaxFeatures {
		p.MaxFeatures = MaxFeatures
	}
	if p.InlierThreshold <= 0 {
		p.InlierThreshold = DefaultInlierThreshold
	}
	return nil
}

// RegistrationResult совмещённый снимок и визуализация сопоставлений.
type RegistrationResult struct {
	Warped     image.Image
	Matches    image.Image
	Estimate   TransformEstimate
	MatchCount int
}
