package app

import (
	"context"
	"errors"
	"image"

	"shearzone/internal/domain/entity"
	"shearzone/internal/domain/port"
)

type RegistrationService struct {
	sessions  *SessionService
	registrar port.Registrar
	guard     *JobGuard
}

// NewRegistrationService создаёт сервис, который совмещает снимки до и после сдвига.
func NewRegistrationService(sessions *SessionService, registrar port.Registrar, guard *JobGuard) *RegistrationService {
	return &RegistrationService{
		sessions:  sessions,
		registrar: registrar,
		guard:     guard,
	}
}

// BeginRegistration переводит сессию в ожидание снимка до сдвига.
func (s *RegistrationService) BeginRegistration(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	return s.sessions.Update(ctx, userID, chatID, func(session *entity.Session) error {
		session.Reference = nil
		session.SetState(entity.StateAwaitingReferencePhoto)
		return nil
	})
}

// AcceptReferencePhoto запоминает снимок до сдвига и ждёт второй.
func (s *RegistrationService) AcceptReferencePhoto(ctx context.Context, userID, chatID int64, reference image.Image) (*entity.Session, error) {
	return s.sessions.Update(ctx, userID, chatID, func(session *entity.Session) error {
		session.Reference = reference
		session.SetState(entity.StateAwaitingDamagePhoto)
		return nil
	})
}

// StartRegistration совмещает снимок после сдвига с опорным в фоне.
// При успехе совмещённый снимок становится рабочим проектом. Если совпадений
// мало, сессия остаётся в ожидании другого снимка после сдвига.
func (s *RegistrationService) StartRegistration(ctx context.Context, userID, chatID int64, moving image.Image) (*Job[*entity.RegistrationResult], error) {
	var (
		reference image.Image
		params    entity.RegistrationParams
	)
	session, err := s.sessions.Update(ctx, userID, chatID, func(session *entity.Session) error {
		if session.Reference == nil {
			return entity.ErrNoImage
		}
		reference, params = session.Reference, session.Params
		return nil
	})
	if err != nil {
		return nil, err
	}
	if moving == nil {
		return nil, entity.ErrNoImage
	}

	release, err := s.guard.Acquire(session.ID, JobRegistration)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.SetState(ctx, userID, chatID, entity.StateProcessing); err != nil {
		release()
		return nil, err
	}

	jobCtx := context.WithoutCancel(ctx)
	return startJob(func(progress entity.ProgressFunc) (*entity.RegistrationResult, error) {
		defer release()
		progress(0)
		res, regErr := s.registrar.Register(jobCtx, reference, moving, params)
		_, err := s.sessions.Update(jobCtx, userID, chatID, func(session *entity.Session) error {
			switch {
			case regErr == nil:
				session.Project = entity.NewProject(res.Warped, session.Channel)
				session.Reference = nil
				session.SetState(entity.StateMainMenu)
			case errors.Is(regErr, entity.ErrInsufficientMatches), errors.Is(regErr, entity.ErrTransformFitFailed):
				session.SetState(entity.StateAwaitingDamagePhoto)
			default:
				session.Reference = nil
				session.SetState(entity.StateMainMenu)
			}
			return nil
		})
		if regErr != nil {
			return nil, regErr
		}
		if err != nil {
			return nil, err
		}
		progress(100)
		return res, nil
	}), nil
}
