package storage

import (
	"context"
	"sync"

	"shearzone/internal/domain/entity"
	"shearzone/internal/domain/port"
)

// MemorySessionRepository in-memory хранилище сессий
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[int64]*entity.Session
	defaults entity.SessionDefaults
}

// NewMemorySessionRepository создаёт новое in-memory хранилище
func NewMemorySessionRepository(defaults entity.SessionDefaults) *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[int64]*entity.Session),
		defaults: defaults,
	}
}

// Get возвращает копию сессии по ID, создаёт новую если не найдена
func (r *MemorySessionRepository) Get(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	r.mu.RLock()
	session, exists := r.sessions[userID]
	r.mu.RUnlock()

	if exists {
		return session.Clone(), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// другой обработчик мог создать сессию между блокировками
	if session, exists := r.sessions[userID]; exists {
		return session.Clone(), nil
	}
	session = r.defaults.NewSession(userID, chatID)
	r.sessions[userID] = session

	return session.Clone(), nil
}

// Save сохраняет копию сессии
func (r *MemorySessionRepository) Save(ctx context.Context, session *entity.Session) error {
	stored := session.Clone()
	r.mu.Lock()
	r.sessions[session.ID] = stored
	r.mu.Unlock()

	return nil
}

// Проверка реализации интерфейса
var _ port.SessionRepository = (*MemorySessionRepository)(nil)
