package telegram

import (
	"testing"

	"github.com/stretchr/testify/require"

	"shearzone/internal/domain/entity"
)

func TestParsePolygon(t *testing.T) {
	poly, err := parsePolygon("10,20 30,20; 30,30 10.5,30")
	require.NoError(t, err)
	require.Equal(t, entity.Polygon{{X: 10, Y: 20}, {X: 30, Y: 20}, {X: 30, Y: 30}, {X: 10.5, Y: 30}}, poly)

	poly, err = parsePolygon("  ")
	require.NoError(t, err)
	require.Nil(t, poly)

	_, err = parsePolygon("1,1 2,2")
	require.ErrorIs(t, err, entity.ErrInvalidPolygon)
	_, err = parsePolygon("1,1 2;2 3,3")
	require.Error(t, err)
	_, err = parsePolygon("1,a 2,2 3,3")
	require.Error(t, err)
	_, err = parsePolygon("0,0 10,0 10,Inf")
	require.Error(t, err)
	_, err = parsePolygon("0,0 NaN,0 10,10")
	require.Error(t, err)
}

func TestParseScale(t *testing.T) {
	a, b, length, err := parseScale("0,0 300,400 50")
	require.NoError(t, err)
	require.Equal(t, entity.Point{}, a)
	require.Equal(t, entity.Point{X: 300, Y: 400}, b)
	require.Equal(t, 50.0, length)

	_, _, _, err = parseScale("0,0 300,400")
	require.Error(t, err)
	_, _, _, err = parseScale("0,0 300,400 -2")
	require.Error(t, err)
}

func TestParseAlgorithm(t *testing.T) {
	algo, n, err := parseAlgorithm("sift")
	require.NoError(t, err)
	require.Equal(t, entity.AlgorithmSIFT, algo)
	require.Zero(t, n)

	algo, n, err = parseAlgorithm("ORB 2000")
	require.NoError(t, err)
	require.Equal(t, entity.AlgorithmORB, algo)
	require.Equal(t, 2000, n)

	_, _, err = parseAlgorithm("BRISK")
	require.ErrorIs(t, err, entity.ErrUnknownAlgorithm)
	_, _, err = parseAlgorithm("ORB many")
	require.Error(t, err)
	_, _, err = parseAlgorithm("")
	require.Error(t, err)
}

func TestParsePositive(t *testing.T) {
	v, err := parsePositive("2,5")
	require.NoError(t, err)
	require.Equal(t, 2.5, v)

	_, err = parsePositive("0")
	require.Error(t, err)
}
