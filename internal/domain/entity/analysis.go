package entity

import (
	"fmt"
	"strings"
)

// Mode стратегия анализа зон разрушения
type Mode string

const (
	ModeGlobal   Mode = "global"    // один OTSU по всей области обрезки
	ModeROIUnion Mode = "roi_union" // объединение ROI без порога
	ModeROIOtsu  Mode = "roi_otsu"  // OTSU внутри каждой ROI, затем объединение
	ModeRiss     Mode = "riss"      // порог μ+1.96σ по ROI, применённый ко всей области
)

// Modes перечисляет поддерживаемые стратегии.
var Modes = []Mode{ModeGlobal, ModeROIUnion, ModeROIOtsu, ModeRiss}

// ParseMode разбирает название стратегии без учёта регистра.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("mode %q: %w", s, ErrUnknownAlgorithm)
}

// Channel канал изображения, по которому строится градация серого
type Channel string

const (
	ChannelRGB   Channel = "RGB"
	ChannelGray  Channel = "Gray"
	ChannelRed   Channel = "Red"
	ChannelGreen Channel = "Green"
	ChannelBlue  Channel = "Blue"
)

// Channels перечисляет поддерживаемые каналы.
var Channels = []Channel{ChannelRGB, ChannelGray, ChannelRed, ChannelGreen, ChannelBlue}

// ParseChannel разбирает название канала без учёта регистра.
func ParseChannel(s string) (Channel, error) {
	for _, known := range Channels {
		if strings.EqualFold(strings.TrimSpace(s), string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("channel %q: %w", s, ErrUnknownChannel)
}

// ProgressFunc получает процент выполнения 0..100.
type ProgressFunc func(percent int)

// AnalysisRequest неизменяемый снимок входных данных для фоновой задачи.
type AnalysisRequest struct {
	Image   *GrayImage
	Regions RegionSet
	Mode    Mode
}

// AnalysisResult бинарная маска зон разрушения и использованные пороги.
type AnalysisResult struct {
	Mode       Mode
	Binary     *Mask
	Thresholds []float64 // для roi_union пусто, для roi_otsu: по одному на ROI
}
