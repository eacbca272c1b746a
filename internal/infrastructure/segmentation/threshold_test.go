package segmentation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"shearzone/internal/domain/entity"
)

func TestOtsuThreshold_TwoLevels(t *testing.T) {
	samples := make([]float64, 0, 200)
	for i := 0; i < 150; i++ {
		samples = append(samples, 40)
	}
	for i := 0; i < 50; i++ {
		samples = append(samples, 210)
	}

	th, err := OtsuThreshold(samples)
	require.NoError(t, err)
	require.Greater(t, th, 40.0)
	require.Less(t, th, 210.0)
}

func TestOtsuThreshold_ConstantSamples(t *testing.T) {
	th, err := OtsuThreshold([]float64{7, 7, 7})
	require.NoError(t, err)
	require.Equal(t, 7.0, th)
}

func TestOtsuThreshold_Empty(t *testing.T) {
	_, err := OtsuThreshold(nil)
	require.ErrorIs(t, err, entity.ErrEmptyRegion)
}

func TestOtsuWithMask_ExcludedPixelsAreZero(t *testing.T) {
	img := entity.NewGrayImage(4, 1)
	copy(img.Pix, []float64{10, 200, 10, 200})
	excluded := entity.NewMask(4, 1)
	excluded.Set(3, 0, true)

	bw, th, err := OtsuWithMask(img, excluded)
	require.NoError(t, err)
	require.Greater(t, th, 10.0)
	require.Equal(t, []bool{false, true, false, false}, bw.Pix)
}

func TestOtsuWithMask_ShapeMismatch(t *testing.T) {
	img := entity.NewGrayImage(3, 3)
	_, _, err := OtsuWithMask(img, entity.NewMask(2, 2))
	require.ErrorIs(t, err, entity.ErrShapeMismatch)
}

func TestRissThreshold_MeanPlusPopulationStd(t *testing.T) {
	img := entity.NewGrayImage(8, 1)
	copy(img.Pix, []float64{2, 4, 4, 4, 5, 5, 7, 9})
	governed := entity.NewMask(8, 1).Not()

	th, err := RissThreshold(img, governed)
	require.NoError(t, err)
	require.InDelta(t, 5+1.96*2, th, 1e-9)
}

func TestRissThreshold_NormalSamples(t *testing.T) {
	// левая половина N(100, 10), правая вне области и заполнена белым
	const w, h = 400, 200
	rng := rand.New(rand.NewSource(42))
	img := entity.NewGrayImage(w, h)
	governed := entity.NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Pix[y*w+x] = 100 + 10*rng.NormFloat64()
				governed.Set(x, y, true)
			} else {
				img.Pix[y*w+x] = 255
			}
		}
	}

	th, err := RissThreshold(img, governed)
	require.NoError(t, err)
	require.InDelta(t, 100+1.96*10, th, 0.5)
}

func TestRissThreshold_EmptyGoverned(t *testing.T) {
	img := entity.NewGrayImage(8, 1)
	_, err := RissThreshold(img, entity.NewMask(8, 1))
	require.ErrorIs(t, err, entity.ErrEmptyRegion)
}
