package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewScaleFromLine(t *testing.T) {
	s, err := NewScaleFromLine(Point{0, 0}, Point{30, 40}, 10)
	require.NoError(t, err)
	require.InDelta(t, 0.2, float64(s), 1e-12)
	require.InDelta(t, 2.0, s.Length(10), 1e-12)
	require.InDelta(t, 4.0, s.Area(100), 1e-12)
	require.InDelta(t, 100.0, s.AreaToPixels(4), 1e-9)

	_, err = NewScaleFromLine(Point{1, 1}, Point{1, 1}, 10)
	require.Error(t, err)
	_, err = NewScaleFromLine(Point{0, 0}, Point{1, 1}, 0)
	require.Error(t, err)
}

func TestComponentTable_DamageRatio(t *testing.T) {
	table := &ComponentTable{TotalAreaPx: 25, RegionAreaPx: 100}
	require.InDelta(t, 0.25, table.DamageRatio(), 1e-12)
	require.False(t, table.Calibrated())
	require.Zero(t, (&ComponentTable{}).DamageRatio())
}
