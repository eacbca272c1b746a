package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"shearzone/internal/domain/entity"
)

const (
	defaultProjectDir     = "projects"
	defaultPreviewMaxSide = 1280
)

type Config struct {
	TelegramToken  string
	ProjectDir     string
	Registration   entity.RegistrationParams
	DefaultChannel entity.Channel
	DefaultMode    entity.Mode
	PreviewMaxSide int
}

// Load читает .env и переменные окружения. Некорректные значения заменяются
// значениями по умолчанию, а ошибка возвращается вместе с конфигурацией.
func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		ProjectDir:     getenv("PROJECT_DIR", defaultProjectDir),
		Registration:   entity.DefaultRegistrationParams(),
		DefaultChannel: entity.ChannelGray,
		DefaultMode:    entity.ModeGlobal,
		PreviewMaxSide: defaultPreviewMaxSide,
	}

	var errs []error
	if v := os.Getenv("REGISTRATION_ALGORITHM"); v != "" {
		algo, err := entity.ParseAlgorithm(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("REGISTRATION_ALGORITHM: %w", err))
		} else {
			cfg.Registration.Algorithm = algo
		}
	}
	if v := os.Getenv("REGISTRATION_MAX_FEATURES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < entity.MinFeatures || n > entity.MaxFeatures {
			errs = append(errs, fmt.Errorf("REGISTRATION_MAX_FEATURES=%q: want %d..%d", v, entity.MinFeatures, entity.MaxFeatures))
		} else {
			cfg.Registration.MaxFeatures = n
		}
	}
	if v := os.Getenv("REGISTRATION_INLIER_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			errs = append(errs, fmt.Errorf("REGISTRATION_INLIER_THRESHOLD=%q: want a positive number", v))
		} else {
			cfg.Registration.InlierThreshold = f
		}
	}
	if v := os.Getenv("REGISTRATION_TRANSFORM"); v != "" {
		model, err := entity.ParseTransformModel(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("REGISTRATION_TRANSFORM: %w", err))
		} else {
			cfg.Registration.Model = model
		}
	}
	if v := os.Getenv("DEFAULT_CHANNEL"); v != "" {
		ch, err := entity.ParseChannel(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("DEFAULT_CHANNEL: %w", err))
		} else {
			cfg.DefaultChannel = ch
		}
	}
	if v := os.Getenv("DEFAULT_MODE"); v != "" {
		mode, err := entity.ParseMode(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("DEFAULT_MODE: %w", err))
		} else {
			cfg.DefaultMode = mode
		}
	}
	if v := os.Getenv("PREVIEW_MAX_SIDE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("PREVIEW_MAX_SIDE=%q: want a positive integer", v))
		} else {
			cfg.PreviewMaxSide = n
		}
	}

	return cfg, errors.Join(errs...)
}

// SessionDefaults настройки новых сессий из конфигурации.
func (c *Config) SessionDefaults() entity.SessionDefaults {
	return entity.SessionDefaults{
		Mode:    c.DefaultMode,
		Channel: c.DefaultChannel,
		Params:  c.Registration,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
