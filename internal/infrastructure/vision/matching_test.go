package vision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"shearzone/internal/domain/entity"
)

func TestCrossCheck_KeepsMutualMatches(t *testing.T) {
	forward := []Match{
		{QueryIdx: 0, TrainIdx: 2, Distance: 5},
		{QueryIdx: 1, TrainIdx: 0, Distance: 3},
		{QueryIdx: 2, TrainIdx: 1, Distance: 9},
	}
	backward := []Match{
		{QueryIdx: 2, TrainIdx: 0, Distance: 5},
		{QueryIdx: 0, TrainIdx: 2, Distance: 3}, // не взаимно с (1 -> 0)
		{QueryIdx: 1, TrainIdx: 2, Distance: 9},
	}

	got := CrossCheck(forward, backward)
	require.Equal(t, []Match{
		{QueryIdx: 0, TrainIdx: 2, Distance: 5},
		{QueryIdx: 2, TrainIdx: 1, Distance: 9},
	}, got)
}

func TestSelectBest(t *testing.T) {
	in := []Match{
		{QueryIdx: 0, Distance: 7},
		{QueryIdx: 1, Distance: 1},
		{QueryIdx: 2, Distance: 4},
		{QueryIdx: 3, Distance: 1},
	}

	best := SelectBest(in, 3)
	require.Equal(t, []int{1, 3, 2}, []int{best[0].QueryIdx, best[1].QueryIdx, best[2].QueryIdx})
	require.Equal(t, 7.0, in[0].Distance)

	require.Len(t, SelectBest(in, 100), 4)
}

func TestCorrespondences_SkipsBadIndexes(t *testing.T) {
	ref := []entity.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}
	mov := []entity.Point{{X: 10, Y: 10}}

	pairs := Correspondences([]Match{
		{QueryIdx: 1, TrainIdx: 0, Distance: 2},
		{QueryIdx: 5, TrainIdx: 0},
	}, ref, mov)

	require.Equal(t, []entity.Correspondence{
		{Reference: entity.Point{X: 2, Y: 2}, Moving: entity.Point{X: 10, Y: 10}, Distance: 2},
	}, pairs)
}

func TestCheckMatchCount(t *testing.T) {
	err := checkMatchCount(7)
	require.ErrorIs(t, err, entity.ErrInsufficientMatches)

	var typed *entity.InsufficientMatchesError
	require.ErrorAs(t, err, &typed)
	require.Equal(t, 7, typed.Found)
	require.Equal(t, entity.MinMatchCount, typed.Required)

	require.NoError(t, checkMatchCount(entity.MinMatchCount))
}

func TestMatchLines_InliersOnlyByDefault(t *testing.T) {
	pairs := []entity.Correspondence{
		{Reference: entity.Point{X: 1, Y: 1}, Moving: entity.Point{X: 2, Y: 2}},
		{Reference: entity.Point{X: 3, Y: 3}, Moving: entity.Point{X: 90, Y: 4}},
		{Reference: entity.Point{X: 5, Y: 5}, Moving: entity.Point{X: 6, Y: 6}},
		{Reference: entity.Point{X: 7, Y: 7}, Moving: entity.Point{X: 8, Y: 8}},
	}
	// маска короче пар: последняя пара считается выбросом
	inliers := []bool{true, false, true}

	lines := MatchLines(pairs, inliers, false)
	require.Len(t, lines, 2)
	require.Equal(t, pairs[0], lines[0].Correspondence)
	require.Equal(t, pairs[2], lines[1].Correspondence)
	for _, l := range lines {
		require.True(t, l.Inlier)
	}

	all := MatchLines(pairs, inliers, true)
	require.Len(t, all, 4)
	require.False(t, all[1].Inlier)
	require.False(t, all[3].Inlier)
}
