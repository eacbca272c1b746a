package entity

import (
	"errors"
	"fmt"
)

// Алгоритмические ошибки: вызывающая сторона может повторить операцию с другими параметрами.
var (
	ErrEmptyRegion         = errors.New("empty region: no governed samples")
	ErrInsufficientMatches = errors.New("insufficient feature matches")
	ErrUnknownAlgorithm    = errors.New("unknown algorithm")
	ErrTransformFitFailed  = errors.New("transform fit failed")
	ErrScaleRequired       = errors.New("calibration scale is required")
)

// ErrShapeMismatch нарушение контракта вызывающей стороной: размеры маски и изображения различаются.
var ErrShapeMismatch = errors.New("mask and image shapes differ")

var (
	ErrUnknownChannel  = errors.New("unknown color channel")
	ErrInvalidPolygon  = errors.New("polygon needs at least 3 points")
	ErrNoImage         = errors.New("no image loaded")
	ErrNoResult        = errors.New("no analysis result")
	ErrBusy            = errors.New("operation is already running")
	ErrProjectNotFound = errors.New("project not found")
)

// InsufficientMatchesError сообщает, сколько совпадений найдено и сколько требовалось.
type InsufficientMatchesError struct {
	Found    int
	Required int
}

func (e *InsufficientMatchesError) Error() string {
	return fmt.Sprintf("not enough matches are found - %d/%d", e.Found, e.Required)
}

// Is позволяет сравнивать через errors.Is(err, ErrInsufficientMatches).
func (e *InsufficientMatchesError) Is(target error) bool {
	return target == ErrInsufficientMatches
}
