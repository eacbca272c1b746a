package app

import (
	"context"
	"image"

	"shearzone/internal/domain/entity"
	"shearzone/internal/domain/port"
)

type QuantifyService struct {
	sessions   *SessionService
	quantifier port.Quantifier
	reporter   port.Reporter
	images     port.ImageProcessor
}

// NewQuantifyService создаёт сервис фильтрации и измерения зон разрушения.
func NewQuantifyService(sessions *SessionService, quantifier port.Quantifier, reporter port.Reporter, images port.ImageProcessor) *QuantifyService {
	return &QuantifyService{
		sessions:   sessions,
		quantifier: quantifier,
		reporter:   reporter,
		images:     images,
	}
}

// withResult выполняет fn над проектом, у которого уже есть маска.
func (s *QuantifyService) withResult(ctx context.Context, userID, chatID int64, fn func(p *entity.Project) error) error {
	_, err := s.sessions.updateProject(ctx, userID, chatID, func(_ *entity.Session, p *entity.Project) error {
		if p.Binary == nil {
			return entity.ErrNoResult
		}
		return fn(p)
	})
	return err
}

// FilterObjects удаляет зоны меньше minArea мм².
func (s *QuantifyService) FilterObjects(ctx context.Context, userID, chatID int64, minArea float64) (*entity.Mask, error) {
	var out *entity.Mask
	err := s.withResult(ctx, userID, chatID, func(p *entity.Project) error {
		bw, err := s.quantifier.FilterSmallObjects(p.Binary, minArea, p.Scale)
		if err != nil {
			return err
		}
		p.Binary, out = bw, bw
		return nil
	})
	return out, err
}

// FillHoles заполняет дыры меньше minArea мм².
func (s *QuantifyService) FillHoles(ctx context.Context, userID, chatID int64, minArea float64) (*entity.Mask, error) {
	var out *entity.Mask
	err := s.withResult(ctx, userID, chatID, func(p *entity.Project) error {
		bw, err := s.quantifier.FillSmallHoles(p.Binary, minArea, p.Scale)
		if err != nil {
			return err
		}
		p.Binary, out = bw, bw
		return nil
	})
	return out, err
}

// TableOutput таблица компонент, отчёт и раскрашенная маска.
type TableOutput struct {
	Table    *entity.ComponentTable
	Report   *entity.Report
	Rendered image.Image
}

// Table измеряет зоны разрушения текущей маски.
func (s *QuantifyService) Table(ctx context.Context, userID, chatID int64) (*TableOutput, error) {
	var (
		bw    *entity.Mask
		scale *entity.Scale
		crop  entity.Polygon
	)
	err := s.withResult(ctx, userID, chatID, func(p *entity.Project) error {
		bw, crop = p.Binary.Clone(), p.Crop.Clone()
		if p.Scale != nil {
			sc := *p.Scale
			scale = &sc
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	table, err := s.quantifier.Measure(bw, scale, crop)
	if err != nil {
		return nil, err
	}
	report, err := s.reporter.Describe(ctx, table)
	if err != nil {
		return nil, err
	}
	return &TableOutput{
		Table:    table,
		Report:   report,
		Rendered: s.images.RenderComponents(bw, crop),
	}, nil
}
