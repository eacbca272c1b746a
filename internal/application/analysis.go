package app

import (
	"context"

	"shearzone/internal/domain/entity"
	"shearzone/internal/domain/port"
)

type AnalysisService struct {
	sessions *SessionService
	analyzer port.Analyzer
	images   port.ImageProcessor
	guard    *JobGuard
}

// NewAnalysisService создаёт сервис анализа зон разрушения.
func NewAnalysisService(sessions *SessionService, analyzer port.Analyzer, images port.ImageProcessor, guard *JobGuard) *AnalysisService {
	return &AnalysisService{
		sessions: sessions,
		analyzer: analyzer,
		images:   images,
		guard:    guard,
	}
}

// StartAnalysis снимает неизменяемую копию проекта и запускает анализ в фоне.
// Результат записывается в проект, если за время анализа снимок не сменился.
func (s *AnalysisService) StartAnalysis(ctx context.Context, userID, chatID int64) (*Job[*entity.AnalysisResult], error) {
	var (
		req      entity.AnalysisRequest
		revision uint64
	)
	session, err := s.sessions.updateProject(ctx, userID, chatID, func(session *entity.Session, p *entity.Project) error {
		gray, err := s.images.Gray(p.Origin, p.Channel)
		if err != nil {
			return err
		}
		req = entity.AnalysisRequest{Image: gray, Regions: p.Regions(), Mode: session.Mode}
		revision = p.Revision
		return nil
	})
	if err != nil {
		return nil, err
	}

	release, err := s.guard.Acquire(session.ID, JobAnalysis)
	if err != nil {
		return nil, err
	}

	jobCtx := context.WithoutCancel(ctx)
	return startJob(func(progress entity.ProgressFunc) (*entity.AnalysisResult, error) {
		defer release()
		res, err := s.analyzer.Analyze(jobCtx, req, progress)
		if err != nil {
			return nil, err
		}
		_, err = s.sessions.updateProject(jobCtx, userID, chatID, func(_ *entity.Session, p *entity.Project) error {
			if p.Revision == revision {
				p.Binary = res.Binary.Clone()
			}
			return nil
		})
		return res, err
	}), nil
}
