package segmentation

import (
	"context"
	"errors"
	"fmt"

	"shearzone/internal/domain/entity"
	"shearzone/internal/domain/port"
)

// Combiner выполняет одну из четырёх стратегий анализа над снимком запроса.
// Состояния между запусками не хранит.
type Combiner struct{}

// NewCombiner создаёт комбинатор областей.
func NewCombiner() *Combiner {
	return &Combiner{}
}

// Analyze строит маску зон разрушения.
func (c *Combiner) Analyze(ctx context.Context, req entity.AnalysisRequest, progress entity.ProgressFunc) (*entity.AnalysisResult, error) {
	_ = ctx
	if req.Image == nil {
		return nil, entity.ErrNoImage
	}
	report := func(p int) {
		if progress != nil {
			progress(p)
		}
	}

	w, h := req.Image.Width, req.Image.Height
	crop := Rasterize(req.Regions.CropOrFrame(w, h), w, h)
	rois := make([]*entity.Mask, 0, len(req.Regions.ROIs))
	for _, roi := range req.Regions.ROIs {
		m := Rasterize(roi, w, h)
		if err := m.And(crop); err != nil {
			return nil, err
		}
		rois = append(rois, m)
	}

	var (
		result *entity.AnalysisResult
		err    error
	)
	switch req.Mode {
	case entity.ModeGlobal:
		result, err = analyzeGlobal(req.Image, crop)
	case entity.ModeROIUnion:
		result, err = analyzeROIUnion(req.Image, rois, report)
	case entity.ModeROIOtsu:
		result, err = analyzeROIOtsu(req.Image, rois, report)
	case entity.ModeRiss:
		result, err = analyzeRiss(req.Image, crop, rois, report)
	default:
		return nil, fmt.Errorf("mode %q: %w", req.Mode, entity.ErrUnknownAlgorithm)
	}
	if err != nil {
		return nil, err
	}

	result.Mode = req.Mode
	report(100)
	return result, nil
}

func analyzeGlobal(img *entity.GrayImage, crop *entity.Mask) (*entity.AnalysisResult, error) {
	bw, threshold, err := OtsuWithMask(img, crop.Not())
	if err != nil {
		return nil, fmt.Errorf("global otsu: %w", err)
	}
	return &entity.AnalysisResult{Binary: bw, Thresholds: []float64{threshold}}, nil
}

func analyzeROIUnion(img *entity.GrayImage, rois []*entity.Mask, report entity.ProgressFunc) (*entity.AnalysisResult, error) {
	bw := entity.NewMask(img.Width, img.Height)
	for i, roi := range rois {
		if err := bw.Or(roi); err != nil {
			return nil, err
		}
		report(stepPercent(i, len(rois)))
	}
	return &entity.AnalysisResult{Binary: bw}, nil
}

func analyzeROIOtsu(img *entity.GrayImage, rois []*entity.Mask, report entity.ProgressFunc) (*entity.AnalysisResult, error) {
	bw := entity.NewMask(img.Width, img.Height)
	thresholds := make([]float64, 0, len(rois))
	for i, roi := range rois {
		roiBW, threshold, err := OtsuWithMask(img, roi.Not())
		if err != nil {
			return nil, fmt.Errorf("roi %d: %w", i+1, err)
		}
		if err := bw.Or(roiBW); err != nil {
			return nil, err
		}
		thresholds = append(thresholds, threshold)
		report(stepPercent(i, len(rois)))
	}
	return &entity.AnalysisResult{Binary: bw, Thresholds: thresholds}, nil
}

func analyzeRiss(img *entity.GrayImage, crop *entity.Mask, rois []*entity.Mask, report entity.ProgressFunc) (*entity.AnalysisResult, error) {
	union := entity.NewMask(img.Width, img.Height)
	for i, roi := range rois {
		if err := union.Or(roi); err != nil {
			return nil, err
		}
		report(stepPercent(i, len(rois)))
	}

	threshold, err := RissThreshold(img, union)
	if err != nil {
		if errors.Is(err, entity.ErrEmptyRegion) {
			return nil, fmt.Errorf("riss needs at least one ROI inside the crop: %w", err)
		}
		return nil, err
	}

	bw, err := BinarizeWithMask(img, crop.Not(), threshold)
	if err != nil {
		return nil, err
	}
	return &entity.AnalysisResult{Binary: bw, Thresholds: []float64{threshold}}, nil
}

// stepPercent процент после обработки i-й из n областей.
func stepPercent(i, n int) int {
	if n == 0 {
		return 100
	}
	return (i + 1) * 100 / n
}

var _ port.Analyzer = (*Combiner)(nil)
