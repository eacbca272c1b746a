package port

import (
	"context"

	"shearzone/internal/domain/entity"
)

// Reporter описывает таблицу компонент текстом и в CSV
type Reporter interface {
	Describe(ctx context.Context, table *entity.ComponentTable) (*entity.Report, error)
}
