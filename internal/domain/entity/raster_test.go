package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMask_OrAndNot(t *testing.T) {
	a := NewMask(3, 2)
	b := NewMask(3, 2)
	a.Set(0, 0, true)
	b.Set(2, 1, true)

	require.NoError(t, a.Or(b))
	require.Equal(t, 2, a.Count())
	require.Equal(t, 4, a.Not().Count())

	require.NoError(t, a.And(b))
	require.Equal(t, 1, a.Count())
	require.True(t, a.At(2, 1))
	require.False(t, a.At(5, 5))
}

func TestMask_ShapeMismatch(t *testing.T) {
	a := NewMask(3, 2)
	err := a.Or(NewMask(2, 3))
	require.True(t, errors.Is(err, ErrShapeMismatch))

	img := NewGrayImage(3, 2)
	require.NoError(t, img.CheckShape(a))
	require.ErrorIs(t, img.CheckShape(NewMask(1, 1)), ErrShapeMismatch)
	require.ErrorIs(t, img.CheckShape(nil), ErrShapeMismatch)
}

func TestGrayImage_CloneIsIndependent(t *testing.T) {
	img := NewGrayImage(2, 2)
	img.Set(1, 1, 42)
	c := img.Clone()
	c.Set(1, 1, 7)
	require.Equal(t, 42.0, img.At(1, 1))
}
