package app

import (
	"context"

	"shearzone/internal/domain/entity"
	"shearzone/internal/domain/port"
)

type ProjectService struct {
	sessions *SessionService
	store    port.ProjectStore
}

func NewProjectService(sessions *SessionService, store port.ProjectStore) *ProjectService {
	return &ProjectService{sessions: sessions, store: store}
}

// Save сохраняет рабочий проект под именем name.
func (s *ProjectService) Save(ctx context.Context, userID, chatID int64, name string) error {
	var snapshot *entity.Project
	_, err := s.sessions.updateProject(ctx, userID, chatID, func(_ *entity.Session, p *entity.Project) error {
		snapshot = p.Clone()
		return nil
	})
	if err != nil {
		return err
	}
	return s.store.Save(ctx, userID, name, snapshot)
}

// Load делает сохранённый проект рабочим.
func (s *ProjectService) Load(ctx context.Context, userID, chatID int64, name string) (*entity.Project, error) {
	project, err := s.store.Load(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	_, err = s.sessions.Update(ctx, userID, chatID, func(session *entity.Session) error {
		session.Project = project
		session.Channel = project.Channel
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// List имена проектов пользователя.
func (s *ProjectService) List(ctx context.Context, userID int64) ([]string, error) {
	return s.store.List(ctx, userID)
}
