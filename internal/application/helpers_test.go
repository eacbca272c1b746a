package app

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"shearzone/internal/domain/entity"
	"shearzone/internal/infrastructure/imageio"
	"shearzone/internal/infrastructure/storage"
)

func newSessions() *SessionService {
	return NewSessionService(storage.NewMemorySessionRepository(entity.DefaultSessionDefaults()), imageio.NewProcessor())
}

// specimen серый снимок 100x100 с яркой зоной (10,20)-(30,30).
func specimen() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			v := uint8(50)
			if x >= 10 && x < 30 && y >= 20 && y < 30 {
				v = 200
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func rect(x0, y0, x1, y1 float64) entity.Polygon {
	return entity.Polygon{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func withSpecimen(t *testing.T, sessions *SessionService, userID int64) {
	t.Helper()
	_, err := sessions.SetImage(context.Background(), userID, userID*10, specimen())
	require.NoError(t, err)
}
