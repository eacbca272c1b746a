package port

import (
	"context"
	"image"

	"shearzone/internal/domain/entity"
)

// Registrar совмещает снимок после сдвига со снимком до сдвига
type Registrar interface {
	// Register находит особые точки, сопоставляет их, оценивает преобразование
	// и переносит moving в систему координат reference
	Register(ctx context.Context, reference, moving image.Image, params entity.RegistrationParams) (*entity.RegistrationResult, error)
}
