package app

import (
	"context"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"shearzone/internal/domain/entity"
)

func TestSessionService_CancelForgetsReference(t *testing.T) {
	sessions := newSessions()
	ctx := context.Background()

	_, err := sessions.Update(ctx, 1, 10, func(s *entity.Session) error {
		s.Reference = image.NewGray(image.Rect(0, 0, 1, 1))
		s.SetState(entity.StateAwaitingDamagePhoto)
		return nil
	})
	require.NoError(t, err)

	s, err := sessions.Cancel(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, s.State)
	require.Nil(t, s.Reference)
}

func TestSessionService_RegionsNeedImage(t *testing.T) {
	sessions := newSessions()
	ctx := context.Background()

	_, err := sessions.AddROI(ctx, 1, 10, rect(0, 0, 5, 5))
	require.ErrorIs(t, err, entity.ErrNoImage)

	withSpecimen(t, sessions, 1)
	_, err = sessions.AddROI(ctx, 1, 10, entity.Polygon{{X: 1, Y: 1}, {X: 2, Y: 2}})
	require.ErrorIs(t, err, entity.ErrInvalidPolygon)
	_, err = sessions.SetCrop(ctx, 1, 10, entity.Polygon{{X: 1, Y: 1}})
	require.ErrorIs(t, err, entity.ErrInvalidPolygon)

	_, err = sessions.AddROI(ctx, 1, 10, entity.Polygon{{X: 0, Y: 0}, {X: math.Inf(1), Y: 0}, {X: 0, Y: 5}})
	require.ErrorIs(t, err, entity.ErrInvalidPolygon)
	_, err = sessions.SetCrop(ctx, 1, 10, entity.Polygon{{X: 0, Y: 0}, {X: 5, Y: math.NaN()}, {X: 0, Y: 5}})
	require.ErrorIs(t, err, entity.ErrInvalidPolygon)

	s, err := sessions.AddROI(ctx, 1, 10, rect(0, 0, 5, 5))
	require.NoError(t, err)
	require.Len(t, s.Project.ROIs, 1)

	s, err = sessions.SetCrop(ctx, 1, 10, nil)
	require.NoError(t, err)
	require.Empty(t, s.Project.Crop)

	s, err = sessions.ClearROIs(ctx, 1, 10)
	require.NoError(t, err)
	require.Empty(t, s.Project.ROIs)
}

func TestSessionService_Settings(t *testing.T) {
	sessions := newSessions()
	ctx := context.Background()
	withSpecimen(t, sessions, 1)

	s, err := sessions.SetChannel(ctx, 1, 10, entity.ChannelBlue)
	require.NoError(t, err)
	require.Equal(t, entity.ChannelBlue, s.Channel)
	require.Equal(t, entity.ChannelBlue, s.Project.Channel)
	_, err = sessions.SetChannel(ctx, 1, 10, "Infrared")
	require.ErrorIs(t, err, entity.ErrUnknownChannel)

	s, err = sessions.SetMode(ctx, 1, 10, entity.ModeRiss)
	require.NoError(t, err)
	require.Equal(t, entity.ModeRiss, s.Mode)
	_, err = sessions.SetMode(ctx, 1, 10, "kmeans")
	require.ErrorIs(t, err, entity.ErrUnknownAlgorithm)

	s, err = sessions.SetAlgorithm(ctx, 1, 10, entity.AlgorithmSIFT, 9000)
	require.NoError(t, err)
	require.Equal(t, entity.AlgorithmSIFT, s.Params.Algorithm)
	require.Equal(t, entity.MaxFeatures, s.Params.MaxFeatures)
	_, err = sessions.SetAlgorithm(ctx, 1, 10, "AKAZE", 0)
	require.ErrorIs(t, err, entity.ErrUnknownAlgorithm)
	s, err = sessions.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.AlgorithmSIFT, s.Params.Algorithm)

	s, err = sessions.SetScale(ctx, 1, 10, entity.Point{X: 0, Y: 0}, entity.Point{X: 30, Y: 40}, 10)
	require.NoError(t, err)
	require.NotNil(t, s.Project.Scale)
	require.InDelta(t, 0.2, float64(*s.Project.Scale), 1e-12)
	_, err = sessions.SetScale(ctx, 1, 10, entity.Point{}, entity.Point{}, 10)
	require.Error(t, err)
}

func TestSessionService_StoresCanonicalNames(t *testing.T) {
	sessions := newSessions()
	ctx := context.Background()
	withSpecimen(t, sessions, 1)

	s, err := sessions.SetMode(ctx, 1, 10, "Global")
	require.NoError(t, err)
	require.Equal(t, entity.ModeGlobal, s.Mode)

	s, err = sessions.SetChannel(ctx, 1, 10, "blue")
	require.NoError(t, err)
	require.Equal(t, entity.ChannelBlue, s.Channel)
	require.Equal(t, entity.ChannelBlue, s.Project.Channel)

	s, err = sessions.SetAlgorithm(ctx, 1, 10, "sift", 0)
	require.NoError(t, err)
	require.Equal(t, entity.AlgorithmSIFT, s.Params.Algorithm)
}

func TestSessionService_ApplyMedianResetsResult(t *testing.T) {
	sessions := newSessions()
	ctx := context.Background()
	withSpecimen(t, sessions, 1)

	_, err := sessions.Update(ctx, 1, 10, func(s *entity.Session) error {
		s.Project.Binary = entity.NewMask(100, 100)
		return nil
	})
	require.NoError(t, err)

	s, err := sessions.ApplyMedian(ctx, 1, 10, 1)
	require.NoError(t, err)
	require.Nil(t, s.Project.Binary)
	require.Equal(t, 100, s.Project.Origin.Bounds().Dx())

	_, err = sessions.ApplyMedian(ctx, 1, 10, 0)
	require.Error(t, err)
}

func TestSessionService_LoadImage(t *testing.T) {
	sessions := newSessions()
	_, err := sessions.LoadImage(context.Background(), 1, 10, []byte("garbage"))
	require.Error(t, err)
}
