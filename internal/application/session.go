package app

import (
	"context"
	"fmt"
	"image"
	"sync"

	"shearzone/internal/domain/entity"
	"shearzone/internal/domain/port"
)

// SessionService меняет состояние сессий под общей блокировкой:
// обработчики чата и фоновые задачи обращаются к одним и тем же сессиям.
type SessionService struct {
	mu     sync.Mutex
	repo   port.SessionRepository
	images port.ImageProcessor
}

func NewSessionService(repo port.SessionRepository, images port.ImageProcessor) *SessionService {
	return &SessionService{repo: repo, images: images}
}

// Update применяет fn к сессии и сохраняет её, если fn не вернула ошибку.
func (s *SessionService) Update(ctx context.Context, userID, chatID int64, fn func(*entity.Session) error) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// updateProject как Update, но требует загруженный снимок.
func (s *SessionService) updateProject(ctx context.Context, userID, chatID int64, fn func(*entity.Session, *entity.Project) error) (*entity.Session, error) {
	return s.Update(ctx, userID, chatID, func(session *entity.Session) error {
		if session.Project == nil {
			return entity.ErrNoImage
		}
		return fn(session, session.Project)
	})
}

func (s *SessionService) Get(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	return s.Update(ctx, userID, chatID, func(*entity.Session) error { return nil })
}

func (s *SessionService) SetState(ctx context.Context, userID, chatID int64, state entity.SessionState) (*entity.Session, error) {
	return s.Update(ctx, userID, chatID, func(session *entity.Session) error {
		session.SetState(state)
		return nil
	})
}

// Cancel возвращает в главное меню и забывает ожидающий снимок до сдвига.
func (s *SessionService) Cancel(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	return s.Update(ctx, userID, chatID, func(session *entity.Session) error {
		session.SetState(entity.StateMainMenu)
		session.Reference = nil
		return nil
	})
}

// LoadImage декодирует снимок и начинает с ним новый проект.
func (s *SessionService) LoadImage(ctx context.Context, userID, chatID int64, data []byte) (*entity.Session, error) {
	img, err := s.images.Decode(data)
	if err != nil {
		return nil, err
	}
	return s.SetImage(ctx, userID, chatID, img)
}

// SetImage начинает новый проект; области и результат прежнего проекта сбрасываются.
func (s *SessionService) SetImage(ctx context.Context, userID, chatID int64, img image.Image) (*entity.Session, error) {
	return s.Update(ctx, userID, chatID, func(session *entity.Session) error {
		session.Project = entity.NewProject(img, session.Channel)
		return nil
	})
}

// SetChannel принимает название канала без учёта регистра.
func (s *SessionService) SetChannel(ctx context.Context, userID, chatID int64, channel entity.Channel) (*entity.Session, error) {
	parsed, err := entity.ParseChannel(string(channel))
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, userID, chatID, func(session *entity.Session) error {
		session.Channel = parsed
		if session.Project != nil {
			session.Project.SetChannel(parsed)
		}
		return nil
	})
}

// SetMode принимает название стратегии без учёта регистра.
func (s *SessionService) SetMode(ctx context.Context, userID, chatID int64, mode entity.Mode) (*entity.Session, error) {
	parsed, err := entity.ParseMode(string(mode))
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, userID, chatID, func(session *entity.Session) error {
		session.Mode = parsed
		return nil
	})
}

// SetAlgorithm выбирает детектор; maxFeatures <= 0 оставляет прежнее значение.
func (s *SessionService) SetAlgorithm(ctx context.Context, userID, chatID int64, algorithm entity.Algorithm, maxFeatures int) (*entity.Session, error) {
	return s.Update(ctx, userID, chatID, func(session *entity.Session) error {
		params := session.Params
		params.Algorithm = algorithm
		if maxFeatures > 0 {
			params.MaxFeatures = maxFeatures
		}
		if err := params.Validate(); err != nil {
			return err
		}
		session.Params = params
		return nil
	})
}

// SetCrop задаёт полигон обрезки; пустой полигон означает весь кадр.
func (s *SessionService) SetCrop(ctx context.Context, userID, chatID int64, crop entity.Polygon) (*entity.Session, error) {
	if len(crop) > 0 && (!crop.Valid() || !crop.Finite()) {
		return nil, entity.ErrInvalidPolygon
	}
	return s.updateProject(ctx, userID, chatID, func(_ *entity.Session, p *entity.Project) error {
		p.Crop = crop.Clone()
		return nil
	})
}

func (s *SessionService) AddROI(ctx context.Context, userID, chatID int64, roi entity.Polygon) (*entity.Session, error) {
	if !roi.Valid() || !roi.Finite() {
		return nil, entity.ErrInvalidPolygon
	}
	return s.updateProject(ctx, userID, chatID, func(_ *entity.Session, p *entity.Project) error {
		p.ROIs = append(p.ROIs, roi.Clone())
		return nil
	})
}

func (s *SessionService) ClearROIs(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	return s.updateProject(ctx, userID, chatID, func(_ *entity.Session, p *entity.Project) error {
		p.ROIs = nil
		return nil
	})
}

// SetScale калибрует проект по отрезку известной длины (мм).
func (s *SessionService) SetScale(ctx context.Context, userID, chatID int64, a, b entity.Point, length float64) (*entity.Session, error) {
	scale, err := entity.NewScaleFromLine(a, b, length)
	if err != nil {
		return nil, err
	}
	return s.updateProject(ctx, userID, chatID, func(_ *entity.Session, p *entity.Project) error {
		p.Scale = &scale
		return nil
	})
}

// ApplyMedian заменяет снимок проекта отфильтрованным; прежний результат анализа сбрасывается.
func (s *SessionService) ApplyMedian(ctx context.Context, userID, chatID int64, radius float64) (*entity.Session, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("median radius %.1f: must be positive", radius)
	}
	return s.updateProject(ctx, userID, chatID, func(_ *entity.Session, p *entity.Project) error {
		p.ReplaceOrigin(s.images.Median(p.Origin, radius))
		return nil
	})
}
