package port

import (
	"context"

	"shearzone/internal/domain/entity"
)

// SessionRepository интерфейс хранилища сессий
type SessionRepository interface {
	// Get возвращает копию сессии по ID, создаёт новую если не найдена
	Get(ctx context.Context, userID, chatID int64) (*entity.Session, error)

	// Save сохраняет копию сессии; вызывающий может дальше менять свою
	Save(ctx context.Context, session *entity.Session) error
}
