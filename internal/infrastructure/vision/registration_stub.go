//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"
	"image"

	"shearzone/internal/domain/entity"
	"shearzone/internal/domain/port"
)

type Registrar struct{}

// NewRegistrar создаёт заглушку совмещения (без OpenCV).
func NewRegistrar() *Registrar {
	return &Registrar{}
}

// Register проверяет параметры и возвращает ошибку, если сборка без тега gocv.
func (r *Registrar) Register(ctx context.Context, reference, moving image.Image, params entity.RegistrationParams) (*entity.RegistrationResult, error) {
	_ = ctx
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if reference == nil || moving == nil {
		return nil, entity.ErrNoImage
	}
	return nil, errors.New("gocv build tag is not enabled")
}

var _ port.Registrar = (*Registrar)(nil)
