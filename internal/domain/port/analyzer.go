package port

import (
	"context"

	"shearzone/internal/domain/entity"
)

// Analyzer строит бинарную маску зон разрушения выбранной стратегией
type Analyzer interface {
	Analyze(ctx context.Context, req entity.AnalysisRequest, progress entity.ProgressFunc) (*entity.AnalysisResult, error)
}
