package telegram

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"shearzone/internal/domain/entity"
)

func TestUserError(t *testing.T) {
	wrapped := fmt.Errorf("register: %w", &entity.InsufficientMatchesError{Found: 4, Required: 10})
	require.Contains(t, userError(wrapped), "найдено 4, нужно 10")

	require.Contains(t, userError(fmt.Errorf("table: %w", entity.ErrScaleRequired)), "/scale")
	require.Contains(t, userError(entity.ErrNoResult), "/analyze")
	require.Contains(t, userError(fmt.Errorf("save: %w", errNameRequired)), "имя")
	require.Equal(t, "⚠️ boom", userError(fmt.Errorf("boom")))
}

func TestProgressText(t *testing.T) {
	require.Equal(t, "Анализ\n░░░░░░░░░░ 0%", progressText("Анализ", 0))
	require.Equal(t, "Анализ\n▓▓▓▓▓░░░░░ 50%", progressText("Анализ", 50))
	require.Equal(t, "Анализ\n▓▓▓▓▓▓▓▓▓▓ 100%", progressText("Анализ", 100))
}

func TestFormatThresholds(t *testing.T) {
	require.Equal(t, "Порог не применялся.", formatThresholds(nil))
	require.Equal(t, "Пороги: 100.0, 127.5", formatThresholds([]float64{100, 127.5}))
}
