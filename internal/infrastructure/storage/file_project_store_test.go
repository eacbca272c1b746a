package storage

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"shearzone/internal/domain/entity"
	"shearzone/internal/infrastructure/imageio"
)

func TestFileProjectStore_RoundTrip(t *testing.T) {
	store, err := NewFileProjectStore(t.TempDir(), imageio.NewProcessor())
	require.NoError(t, err)
	ctx := context.Background()

	origin := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	origin.SetNRGBA(2, 1, color.NRGBA{R: 90, G: 10, B: 200, A: 255})
	binary := entity.NewMask(6, 4)
	binary.Set(2, 1, true)
	binary.Set(5, 3, true)
	scale := entity.Scale(0.25)

	project := entity.NewProject(origin, entity.ChannelRed)
	project.Crop = entity.RectPolygon(6, 4)
	project.ROIs = []entity.Polygon{{{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 2.5, Y: 3.5}}}
	project.Scale = &scale
	project.Binary = binary

	require.NoError(t, store.Save(ctx, 7, "joint A/1", project))

	names, err := store.List(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, []string{"joint_A_1"}, names)

	loaded, err := store.Load(ctx, 7, "joint A/1")
	require.NoError(t, err)
	require.Equal(t, entity.ChannelRed, loaded.Channel)
	require.Equal(t, project.Crop, loaded.Crop)
	require.Equal(t, project.ROIs, loaded.ROIs)
	require.NotNil(t, loaded.Scale)
	require.Equal(t, scale, *loaded.Scale)
	require.Equal(t, binary.Pix, loaded.Binary.Pix)

	r, g, b, _ := loaded.Origin.At(2, 1).RGBA()
	require.Equal(t, []uint32{90, 10, 200}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestFileProjectStore_UncalibratedWithoutBinary(t *testing.T) {
	store, err := NewFileProjectStore(t.TempDir(), imageio.NewProcessor())
	require.NoError(t, err)
	ctx := context.Background()

	project := entity.NewProject(image.NewGray(image.Rect(0, 0, 3, 3)), entity.ChannelGray)
	require.NoError(t, store.Save(ctx, 7, "plain", project))

	loaded, err := store.Load(ctx, 7, "plain")
	require.NoError(t, err)
	require.Nil(t, loaded.Scale)
	require.Nil(t, loaded.Binary)
	require.Empty(t, loaded.Crop)
	require.Empty(t, loaded.ROIs)
}

func TestFileProjectStore_Errors(t *testing.T) {
	store, err := NewFileProjectStore(t.TempDir(), imageio.NewProcessor())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Load(ctx, 7, "missing")
	require.ErrorIs(t, err, entity.ErrProjectNotFound)

	require.ErrorIs(t, store.Save(ctx, 7, "x", entity.NewProject(nil, entity.ChannelGray)), entity.ErrNoImage)

	_, err = SanitizeName(" ... ")
	require.Error(t, err)
}

func TestFileProjectStore_UsersAreSeparate(t *testing.T) {
	store, err := NewFileProjectStore(t.TempDir(), imageio.NewProcessor())
	require.NoError(t, err)
	ctx := context.Background()

	names, err := store.List(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, names)

	first := entity.NewProject(image.NewGray(image.Rect(0, 0, 3, 3)), entity.ChannelRed)
	second := entity.NewProject(image.NewGray(image.Rect(0, 0, 5, 2)), entity.ChannelBlue)
	require.NoError(t, store.Save(ctx, 1, "joint", first))
	require.NoError(t, store.Save(ctx, 2, "joint", second))

	loaded, err := store.Load(ctx, 1, "joint")
	require.NoError(t, err)
	require.Equal(t, entity.ChannelRed, loaded.Channel)
	require.Equal(t, 3, loaded.Origin.Bounds().Dx())

	loaded, err = store.Load(ctx, 2, "joint")
	require.NoError(t, err)
	require.Equal(t, entity.ChannelBlue, loaded.Channel)
	require.Equal(t, 5, loaded.Origin.Bounds().Dx())

	require.NoError(t, store.Save(ctx, 2, "other", second))
	names, err = store.List(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"joint"}, names)

	_, err = store.Load(ctx, 3, "joint")
	require.ErrorIs(t, err, entity.ErrProjectNotFound)
}
