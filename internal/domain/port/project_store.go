package port

import (
	"context"

	"shearzone/internal/domain/entity"
)

// ProjectStore сохраняет и загружает проекты анализа; у каждого пользователя свои имена
type ProjectStore interface {
	Save(ctx context.Context, userID int64, name string, project *entity.Project) error

	// Load возвращает entity.ErrProjectNotFound, если проекта нет
	Load(ctx context.Context, userID int64, name string) (*entity.Project, error)

	// List имена сохранённых проектов пользователя
	List(ctx context.Context, userID int64) ([]string, error)
}
