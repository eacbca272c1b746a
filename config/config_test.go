package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"shearzone/internal/domain/entity"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"TELEGRAM_TOKEN", "PROJECT_DIR", "REGISTRATION_ALGORITHM", "REGISTRATION_MAX_FEATURES",
		"REGISTRATION_INLIER_THRESHOLD", "REGISTRATION_TRANSFORM", "DEFAULT_CHANNEL", "DEFAULT_MODE", "PREVIEW_MAX_SIDE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "projects", cfg.ProjectDir)
	require.Equal(t, entity.DefaultRegistrationParams(), cfg.Registration)
	require.Equal(t, entity.ChannelGray, cfg.DefaultChannel)
	require.Equal(t, entity.ModeGlobal, cfg.DefaultMode)
	require.Equal(t, 1280, cfg.PreviewMaxSide)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("PROJECT_DIR", "/tmp/joints")
	t.Setenv("REGISTRATION_ALGORITHM", "sift")
	t.Setenv("REGISTRATION_MAX_FEATURES", "2500")
	t.Setenv("REGISTRATION_INLIER_THRESHOLD", "3.5")
	t.Setenv("REGISTRATION_TRANSFORM", "affine")
	t.Setenv("DEFAULT_CHANNEL", "red")
	t.Setenv("DEFAULT_MODE", "RISS")
	t.Setenv("PREVIEW_MAX_SIDE", "800")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "token", cfg.TelegramToken)
	require.Equal(t, "/tmp/joints", cfg.ProjectDir)
	require.Equal(t, entity.RegistrationParams{
		Algorithm:       entity.AlgorithmSIFT,
		MaxFeatures:     2500,
		InlierThreshold: 3.5,
		Model:           entity.ModelAffine,
	}, cfg.Registration)

	d := cfg.SessionDefaults()
	require.Equal(t, entity.ChannelRed, d.Channel)
	require.Equal(t, entity.ModeRiss, d.Mode)
	require.Equal(t, 800, cfg.PreviewMaxSide)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REGISTRATION_ALGORITHM", "SURF")
	t.Setenv("REGISTRATION_MAX_FEATURES", "5")
	t.Setenv("REGISTRATION_INLIER_THRESHOLD", "-1")
	t.Setenv("REGISTRATION_TRANSFORM", "")
	t.Setenv("DEFAULT_CHANNEL", "")
	t.Setenv("DEFAULT_MODE", "watershed")
	t.Setenv("PREVIEW_MAX_SIDE", "big")

	cfg, err := Load()
	require.Error(t, err)
	require.ErrorIs(t, err, entity.ErrUnknownAlgorithm)
	require.Equal(t, entity.DefaultRegistrationParams(), cfg.Registration)
	require.Equal(t, entity.ModeGlobal, cfg.DefaultMode)
	require.Equal(t, 1280, cfg.PreviewMaxSide)
}
