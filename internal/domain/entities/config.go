package entities

import "math"

// CompressionLevel дискретный уровень агрессивности сжатия
type CompressionLevel string

const (
	LevelExtreme     CompressionLevel = "extreme"
	LevelRecommended CompressionLevel = "recommended"
	LevelLess        CompressionLevel = "less"
	LevelCustom      CompressionLevel = "custom"
)

// Константы резолвера конфигурации
const (
	// Базовое разрешение PDF: 72 единицы на дюйм
	BaseDPI = 72

	// Канонический порог читаемости для произвольных значений слайдера.
	// Два исторических порога (90 и 70) сведены к одному настраиваемому
	// значению, 90 по умолчанию. Опорные точки дискретных уровней
	// порогом не проверяются: они фиксированы и заведомо читаемы,
	// иначе extreme (50 DPI) был бы заблокирован всегда.
	DefaultMinProjectedDPI = 90

	// Границы непрерывного слайдера (0-100)
	sliderMinScale   = 0.40
	sliderMaxScale   = 2.00
	sliderMinQuality = 0.35
	sliderMaxQuality = 0.95

	// Демпфирование для текстовых документов: разрешение режем мягче,
	// качество - жестче, читаемость текста зависит в первую очередь от качества
	textHeavyScaleFactor  = 0.85
	textHeavyQualityDelta = 0.10
	textHeavyQualityFloor = 0.30

	// Эскалация: каждый повторный проход агрессивнее предыдущего
	escalationScaleFactor  = 0.70
	escalationQualityDelta = 0.15
	escalationScaleFloor   = 0.30
	escalationQualityFloor = 0.30

	// Консервативные параметры аварийной растеризации
	FallbackScale   = 0.5
	FallbackQuality = 0.5
)

// Опорные точки дискретных уровней
var levelAnchors = map[CompressionLevel]struct {
	scale   float64
	quality float64
}{
	LevelExtreme:     {scale: 0.70, quality: 0.50},
	LevelRecommended: {scale: 1.00, quality: 0.65},
	LevelLess:        {scale: 1.50, quality: 0.85},
}

// CompressionConfig представляет численные параметры одного прохода сжатия.
// После создания конфигурация не изменяется: эскалация порождает новую.
type CompressionConfig struct {
	Scale        float64 // Коэффициент разрешения рендеринга (>0)
	Quality      float64 // Качество lossy-кодирования (0..1]
	Grayscale    bool    // Преобразовывать в оттенки серого
	PreserveText bool    // Сначала пробовать пообъектное сжатие
	Aggressive   bool    // Конфигурация получена эскалацией
	Preset       bool    // Построена из опорных точек дискретного уровня
}

// ParseCompressionLevel разбирает строковый уровень сжатия
func ParseCompressionLevel(value string) CompressionLevel {
	switch CompressionLevel(value) {
	case LevelExtreme, LevelRecommended, LevelLess, LevelCustom:
		return CompressionLevel(value)
	default:
		return LevelRecommended
	}
}

// NewCompressionConfigFromLevel создает конфигурацию по дискретному уровню.
// Для custom берутся опорные точки recommended: конкретные значения
// custom-режима задает слайдер (NewCompressionConfigFromSlider).
func NewCompressionConfigFromLevel(level CompressionLevel, isTextHeavy bool) *CompressionConfig {
	anchor, ok := levelAnchors[level]
	if !ok {
		anchor = levelAnchors[LevelRecommended]
	}

	config := &CompressionConfig{
		Scale:   anchor.scale,
		Quality: anchor.quality,
		Preset:  true,
	}

	if isTextHeavy {
		config.applyTextHeavyDamping()
	}

	return config
}

// NewCompressionConfigFromSlider создает конфигурацию по значению слайдера 0-100.
// Линейная интерполяция: 0 дает минимальные границы, 100 - ровно максимальные.
func NewCompressionConfigFromSlider(value float64, isTextHeavy bool) *CompressionConfig {
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}

	t := value / 100.0
	config := &CompressionConfig{
		Scale:   sliderMinScale + t*(sliderMaxScale-sliderMinScale),
		Quality: sliderMinQuality + t*(sliderMaxQuality-sliderMinQuality),
	}

	if isTextHeavy {
		config.applyTextHeavyDamping()
	}

	return config
}

// applyTextHeavyDamping смягчает конфигурацию для текстовых документов
func (c *CompressionConfig) applyTextHeavyDamping() {
	c.Scale *= textHeavyScaleFactor
	c.Quality -= textHeavyQualityDelta
	if c.Quality < textHeavyQualityFloor {
		c.Quality = textHeavyQualityFloor
	}
}

// ProjectedDPI возвращает номинальное выходное разрешение.
// Это прокси-оценка читаемости, а не параметр рендеринга.
func (c *CompressionConfig) ProjectedDPI() int {
	return int(math.Round(c.Scale * BaseDPI))
}

// Escalate порождает более агрессивную конфигурацию для повторного прохода.
// Исходная конфигурация не изменяется.
func (c *CompressionConfig) Escalate() *CompressionConfig {
	escalated := &CompressionConfig{
		Scale:        c.Scale * escalationScaleFactor,
		Quality:      c.Quality - escalationQualityDelta,
		Grayscale:    c.Grayscale,
		PreserveText: c.PreserveText,
		Aggressive:   true,
		Preset:       c.Preset,
	}

	if escalated.Scale < escalationScaleFloor {
		escalated.Scale = escalationScaleFloor
	}
	if escalated.Quality < escalationQualityFloor {
		escalated.Quality = escalationQualityFloor
	}

	return escalated
}

// NewFallbackConfig возвращает консервативную конфигурацию аварийной растеризации
func NewFallbackConfig() *CompressionConfig {
	return &CompressionConfig{
		Scale:   FallbackScale,
		Quality: FallbackQuality,
	}
}

// Validate проверяет корректность конфигурации
func (c *CompressionConfig) Validate() error {
	if c.Scale <= 0 {
		return ErrInvalidScale
	}
	if c.Quality <= 0 || c.Quality > 1 {
		return ErrInvalidQuality
	}
	return nil
}
