package usecases_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/tensorkernel/PDFTools/internal/domain/entities"
	usecases "github.com/tensorkernel/PDFTools/internal/usecase"
)

// fakeStrategy управляемая стратегия сжатия
type fakeStrategy struct {
	label string
	apply func(ctx context.Context, data []byte, config *entities.CompressionConfig) ([]byte, error)
	calls []*entities.CompressionConfig
}

func (f *fakeStrategy) Label() string {
	return f.label
}

func (f *fakeStrategy) Apply(ctx context.Context, data []byte, config *entities.CompressionConfig) ([]byte, error) {
	f.calls = append(f.calls, config)
	return f.apply(ctx, data, config)
}

// identityFinalizer финализатор, возвращающий данные без изменений
type identityFinalizer struct{}

func (identityFinalizer) Finalize(data []byte) []byte { return data }

func shrinkTo(size int) func(context.Context, []byte, *entities.CompressionConfig) ([]byte, error) {
	return func(ctx context.Context, data []byte, config *entities.CompressionConfig) ([]byte, error) {
		return bytes.Repeat([]byte{0x42}, size), nil
	}
}

func noGain() func(context.Context, []byte, *entities.CompressionConfig) ([]byte, error) {
	return func(ctx context.Context, data []byte, config *entities.CompressionConfig) ([]byte, error) {
		return append([]byte{}, data...), nil
	}
}

func newEngine(object, raster *fakeStrategy, minDPI int) *usecases.CompressDocumentUseCase {
	return usecases.NewCompressDocumentUseCase(nil, object, raster, identityFinalizer{}, nil, minDPI)
}

func TestCompressDocument_ObjectPathWins(t *testing.T) {
	object := &fakeStrategy{label: entities.StrategySmartObject, apply: shrinkTo(100)}
	raster := &fakeStrategy{label: entities.StrategyVisual, apply: shrinkTo(50)}
	engine := newEngine(object, raster, 90)

	config := &entities.CompressionConfig{Scale: 1.5, Quality: 0.85, PreserveText: true}
	data := bytes.Repeat([]byte{0x01}, 1000)

	result, err := engine.Execute(context.Background(), data, config, false)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Meta.StrategyUsed != entities.StrategySmartObject {
		t.Errorf("StrategyUsed = %q, want %q", result.Meta.StrategyUsed, entities.StrategySmartObject)
	}
	if result.Meta.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", result.Meta.Iterations)
	}
	if result.CompressedSize != 100 {
		t.Errorf("CompressedSize = %d, want 100", result.CompressedSize)
	}
	if len(raster.calls) != 0 {
		t.Error("Raster strategy must not run when the object path succeeds")
	}
}

func TestCompressDocument_DirectRasterWhenTextNotPreserved(t *testing.T) {
	object := &fakeStrategy{label: entities.StrategySmartObject, apply: shrinkTo(100)}
	raster := &fakeStrategy{label: entities.StrategyVisual, apply: shrinkTo(50)}
	engine := newEngine(object, raster, 90)

	config := &entities.CompressionConfig{Scale: 1.5, Quality: 0.85}
	data := bytes.Repeat([]byte{0x01}, 1000)

	result, err := engine.Execute(context.Background(), data, config, false)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Meta.StrategyUsed != entities.StrategyVisual {
		t.Errorf("StrategyUsed = %q, want %q", result.Meta.StrategyUsed, entities.StrategyVisual)
	}
	if len(object.calls) != 0 {
		t.Error("Object strategy must not run when text preservation is off")
	}
}

func TestCompressDocument_EscalatesAfterObjectNoGain(t *testing.T) {
	object := &fakeStrategy{label: entities.StrategySmartObject, apply: noGain()}
	raster := &fakeStrategy{label: entities.StrategyVisual, apply: shrinkTo(200)}
	engine := newEngine(object, raster, 90)

	// Эскалация 2.00 -> 1.40 дает 101 DPI, выше порога
	config := &entities.CompressionConfig{Scale: 2.00, Quality: 0.95, PreserveText: true}
	data := bytes.Repeat([]byte{0x01}, 1000)

	result, err := engine.Execute(context.Background(), data, config, false)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Meta.StrategyUsed != entities.StrategyAdaptiveFallback {
		t.Errorf("StrategyUsed = %q, want %q", result.Meta.StrategyUsed, entities.StrategyAdaptiveFallback)
	}
	if result.Meta.Iterations != 2 {
		t.Errorf("Iterations = %d, want 2", result.Meta.Iterations)
	}

	// Эскалированный проход агрессивнее исходного
	if len(raster.calls) != 1 {
		t.Fatalf("Expected 1 raster call, got %d", len(raster.calls))
	}
	escalated := raster.calls[0]
	if escalated.Scale >= config.Scale || escalated.Quality >= config.Quality {
		t.Errorf("Escalated config must be more aggressive: %+v", escalated)
	}
	if !escalated.Aggressive {
		t.Error("Escalated config must be marked aggressive")
	}
}

func TestCompressDocument_AdaptiveSqueezeAfterRasterNoGain(t *testing.T) {
	firstCall := true
	raster := &fakeStrategy{label: entities.StrategyVisual}
	raster.apply = func(ctx context.Context, data []byte, config *entities.CompressionConfig) ([]byte, error) {
		if firstCall {
			firstCall = false
			return append([]byte{}, data...), nil
		}
		return bytes.Repeat([]byte{0x42}, 300), nil
	}
	object := &fakeStrategy{label: entities.StrategySmartObject, apply: noGain()}
	engine := newEngine(object, raster, 90)

	config := &entities.CompressionConfig{Scale: 2.00, Quality: 0.95}
	data := bytes.Repeat([]byte{0x01}, 1000)

	result, err := engine.Execute(context.Background(), data, config, false)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Meta.StrategyUsed != entities.StrategyAdaptiveSqueeze {
		t.Errorf("StrategyUsed = %q, want %q", result.Meta.StrategyUsed, entities.StrategyAdaptiveSqueeze)
	}
	if result.Meta.Iterations != 2 {
		t.Errorf("Iterations = %d, want 2", result.Meta.Iterations)
	}
}

func TestCompressDocument_SafetyGateBlocks(t *testing.T) {
	object := &fakeStrategy{label: entities.StrategySmartObject, apply: shrinkTo(100)}
	raster := &fakeStrategy{label: entities.StrategyVisual, apply: shrinkTo(50)}
	engine := newEngine(object, raster, 90)

	// 0.70 * 72 = 50 DPI, ниже порога 90
	config := &entities.CompressionConfig{Scale: 0.70, Quality: 0.50}
	data := bytes.Repeat([]byte{0x01}, 1000)

	result, err := engine.Execute(context.Background(), data, config, false)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !result.IsBlocked() {
		t.Fatal("Expected blocked result below the DPI threshold")
	}
	if result.Data != nil {
		t.Error("Blocked result must not carry output data")
	}
	if len(object.calls)+len(raster.calls) != 0 {
		t.Error("No strategy may run when the safety gate blocks")
	}
	if result.Meta.ProjectedDPI != 50 {
		t.Errorf("ProjectedDPI = %d, want 50", result.Meta.ProjectedDPI)
	}
}

func TestCompressDocument_OverrideSafetyProceeds(t *testing.T) {
	raster := &fakeStrategy{label: entities.StrategyVisual, apply: shrinkTo(50)}
	object := &fakeStrategy{label: entities.StrategySmartObject, apply: shrinkTo(100)}
	engine := newEngine(object, raster, 90)

	config := &entities.CompressionConfig{Scale: 0.70, Quality: 0.50}
	data := bytes.Repeat([]byte{0x01}, 1000)

	result, err := engine.Execute(context.Background(), data, config, true)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.IsBlocked() {
		t.Fatal("Override must bypass the safety gate")
	}
	if result.Meta.StrategyUsed != entities.StrategyVisual {
		t.Errorf("StrategyUsed = %q, want %q", result.Meta.StrategyUsed, entities.StrategyVisual)
	}
}

func TestCompressDocument_EscalationSkippedBelowThreshold(t *testing.T) {
	object := &fakeStrategy{label: entities.StrategySmartObject, apply: noGain()}
	raster := &fakeStrategy{label: entities.StrategyVisual, apply: shrinkTo(50)}
	engine := newEngine(object, raster, 90)

	// Эскалация 1.30 -> 0.91 дает 66 DPI, ниже порога: второй проход не планируется
	config := &entities.CompressionConfig{Scale: 1.30, Quality: 0.80, PreserveText: true}
	data := bytes.Repeat([]byte{0x01}, 1000)

	result, err := engine.Execute(context.Background(), data, config, false)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Meta.StrategyUsed != entities.StrategyAborted {
		t.Errorf("StrategyUsed = %q, want %q", result.Meta.StrategyUsed, entities.StrategyAborted)
	}
	if len(raster.calls) != 0 {
		t.Error("Escalated raster pass must be skipped below the DPI threshold")
	}
}

func TestCompressDocument_NeverGrow(t *testing.T) {
	grow := func(ctx context.Context, data []byte, config *entities.CompressionConfig) ([]byte, error) {
		return bytes.Repeat([]byte{0x42}, len(data)*2), nil
	}
	object := &fakeStrategy{label: entities.StrategySmartObject, apply: grow}
	raster := &fakeStrategy{label: entities.StrategyVisual, apply: grow}
	engine := newEngine(object, raster, 90)

	config := &entities.CompressionConfig{Scale: 2.00, Quality: 0.95, PreserveText: true}
	data := bytes.Repeat([]byte{0x01}, 1000)

	result, err := engine.Execute(context.Background(), data, config, false)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Meta.StrategyUsed != entities.StrategyAborted {
		t.Errorf("StrategyUsed = %q, want %q", result.Meta.StrategyUsed, entities.StrategyAborted)
	}
	if !bytes.Equal(result.Data, data) {
		t.Error("Exhausted attempts must return the original bytes untouched")
	}
	if result.CompressedSize != result.OriginalSize {
		t.Errorf("CompressedSize = %d, want %d", result.CompressedSize, result.OriginalSize)
	}
}

func TestCompressDocument_ObjectErrorFallsBackToRaster(t *testing.T) {
	object := &fakeStrategy{
		label: entities.StrategySmartObject,
		apply: func(ctx context.Context, data []byte, config *entities.CompressionConfig) ([]byte, error) {
			return nil, errors.New("поврежденный граф объектов")
		},
	}
	raster := &fakeStrategy{label: entities.StrategyVisual, apply: shrinkTo(300)}
	engine := newEngine(object, raster, 90)

	config := &entities.CompressionConfig{Scale: 1.50, Quality: 0.85, PreserveText: true}
	data := bytes.Repeat([]byte{0x01}, 1000)

	result, err := engine.Execute(context.Background(), data, config, false)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Meta.StrategyUsed != entities.StrategyFallbackRaster {
		t.Errorf("StrategyUsed = %q, want %q", result.Meta.StrategyUsed, entities.StrategyFallbackRaster)
	}

	// Аварийная растеризация использует консервативные параметры
	if len(raster.calls) != 1 {
		t.Fatalf("Expected 1 raster call, got %d", len(raster.calls))
	}
	fallback := raster.calls[0]
	if fallback.Scale != entities.FallbackScale || fallback.Quality != entities.FallbackQuality {
		t.Errorf("Fallback config = %f/%f, want %f/%f",
			fallback.Scale, fallback.Quality, entities.FallbackScale, entities.FallbackQuality)
	}
}

func TestCompressDocument_ObjectPanicFallsBackToRaster(t *testing.T) {
	object := &fakeStrategy{
		label: entities.StrategySmartObject,
		apply: func(ctx context.Context, data []byte, config *entities.CompressionConfig) ([]byte, error) {
			panic("неожиданная структура словаря")
		},
	}
	raster := &fakeStrategy{label: entities.StrategyVisual, apply: shrinkTo(300)}
	engine := newEngine(object, raster, 90)

	config := &entities.CompressionConfig{Scale: 1.50, Quality: 0.85, PreserveText: true}
	data := bytes.Repeat([]byte{0x01}, 1000)

	result, err := engine.Execute(context.Background(), data, config, false)
	if err != nil {
		t.Fatalf("Execute() must recover from strategy panic, got error %v", err)
	}

	if result.Meta.StrategyUsed != entities.StrategyFallbackRaster {
		t.Errorf("StrategyUsed = %q, want %q", result.Meta.StrategyUsed, entities.StrategyFallbackRaster)
	}
}

func TestCompressDocument_ContextCancellation(t *testing.T) {
	raster := &fakeStrategy{
		label: entities.StrategyVisual,
		apply: func(ctx context.Context, data []byte, config *entities.CompressionConfig) ([]byte, error) {
			return nil, ctx.Err()
		},
	}
	object := &fakeStrategy{label: entities.StrategySmartObject, apply: shrinkTo(100)}
	engine := newEngine(object, raster, 90)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := &entities.CompressionConfig{Scale: 1.50, Quality: 0.85}
	_, err := engine.Execute(ctx, bytes.Repeat([]byte{0x01}, 1000), config, false)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestCompressDocument_InvalidConfig(t *testing.T) {
	object := &fakeStrategy{label: entities.StrategySmartObject, apply: shrinkTo(100)}
	raster := &fakeStrategy{label: entities.StrategyVisual, apply: shrinkTo(50)}
	engine := newEngine(object, raster, 90)

	config := &entities.CompressionConfig{Scale: 0, Quality: 0.5}
	_, err := engine.Execute(context.Background(), []byte("data"), config, false)

	if !errors.Is(err, entities.ErrInvalidScale) {
		t.Errorf("Expected ErrInvalidScale, got %v", err)
	}
}

func TestCompressDocument_ProgressIsMonotonic(t *testing.T) {
	object := &fakeStrategy{label: entities.StrategySmartObject, apply: noGain()}
	raster := &fakeStrategy{label: entities.StrategyVisual, apply: shrinkTo(200)}
	engine := newEngine(object, raster, 90)

	var percents []int
	engine.SetProgressReporter(func(p entities.CompressionProgress) {
		percents = append(percents, p.Percent)
	})

	config := &entities.CompressionConfig{Scale: 2.00, Quality: 0.95, PreserveText: true}
	if _, err := engine.Execute(context.Background(), bytes.Repeat([]byte{0x01}, 1000), config, false); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(percents) == 0 {
		t.Fatal("Expected progress reports")
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Fatalf("Progress went backwards: %v", percents)
		}
	}
	if percents[len(percents)-1] != 100 {
		t.Errorf("Final progress = %d, want 100", percents[len(percents)-1])
	}
}

func TestCompressDocument_ExecuteWithAppConfig(t *testing.T) {
	extractor := &fakeTextExtractor{counts: []int{120, 100}, pageCount: 2}
	classifier := usecases.NewClassifyDocumentUseCase(extractor, nil)

	object := &fakeStrategy{label: entities.StrategySmartObject, apply: shrinkTo(100)}
	raster := &fakeStrategy{label: entities.StrategyVisual, apply: shrinkTo(50)}
	engine := usecases.NewCompressDocumentUseCase(classifier, object, raster, identityFinalizer{}, nil, 30)

	appConfig := &entities.AppCompressionConfig{
		Level:           "recommended",
		PreserveText:    true,
		MinProjectedDPI: 30,
	}

	result, err := engine.ExecuteWithAppConfig(context.Background(), bytes.Repeat([]byte{0x01}, 1000), appConfig)
	if err != nil {
		t.Fatalf("ExecuteWithAppConfig() error = %v", err)
	}

	// Текстовый документ получает демпфированную конфигурацию
	if len(object.calls) != 1 {
		t.Fatalf("Expected 1 object call, got %d", len(object.calls))
	}
	damped := object.calls[0]
	if damped.Scale >= 1.0 || damped.Quality >= 0.65 {
		t.Errorf("Text-heavy config must be damped, got %+v", damped)
	}

	if result.Meta.StrategyUsed != entities.StrategySmartObject {
		t.Errorf("StrategyUsed = %q, want %q", result.Meta.StrategyUsed, entities.StrategySmartObject)
	}
}

func TestCompressDocument_PresetLevelsPassDefaultSafetyGate(t *testing.T) {
	// Опорные точки уровней дают 43-108 DPI, и канонический порог 90
	// не должен блокировать собственные предустановки приложения
	tests := []struct {
		name   string
		level  string
		counts []int
	}{
		{"Extreme on an image document", "extreme", []int{2, 3}},
		{"Extreme on a text document", "extreme", []int{120, 100}},
		{"Recommended on an image document", "recommended", []int{2, 3}},
		{"Recommended on a text document", "recommended", []int{120, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := &fakeTextExtractor{counts: tt.counts, pageCount: 2}
			classifier := usecases.NewClassifyDocumentUseCase(extractor, nil)
			object := &fakeStrategy{label: entities.StrategySmartObject, apply: shrinkTo(100)}
			raster := &fakeStrategy{label: entities.StrategyVisual, apply: shrinkTo(50)}
			engine := usecases.NewCompressDocumentUseCase(classifier, object, raster, identityFinalizer{}, nil, 0)

			appConfig := &entities.AppCompressionConfig{Level: tt.level, PreserveText: true}
			result, err := engine.ExecuteWithAppConfig(context.Background(), bytes.Repeat([]byte{0x01}, 1000), appConfig)
			if err != nil {
				t.Fatalf("ExecuteWithAppConfig() error = %v", err)
			}

			if result.IsBlocked() {
				t.Fatalf("Level %q blocked at %d DPI", tt.level, result.Meta.ProjectedDPI)
			}
			if !result.Success {
				t.Errorf("Level %q must compress with the default app config", tt.level)
			}
		})
	}
}

func TestCompressDocument_ExtremeLevelEscalatesAtDefaultThreshold(t *testing.T) {
	// Текстовый документ без встроенных изображений: пообъектный проход
	// ничего не экономит, эскалированная растеризация должна выполниться,
	// несмотря на проектное разрешение ниже канонического порога
	extractor := &fakeTextExtractor{counts: []int{120, 100}, pageCount: 2}
	classifier := usecases.NewClassifyDocumentUseCase(extractor, nil)
	object := &fakeStrategy{label: entities.StrategySmartObject, apply: noGain()}
	raster := &fakeStrategy{label: entities.StrategyVisual, apply: shrinkTo(200)}
	engine := usecases.NewCompressDocumentUseCase(classifier, object, raster, identityFinalizer{}, nil, 0)

	appConfig := &entities.AppCompressionConfig{Level: "extreme", PreserveText: true}
	result, err := engine.ExecuteWithAppConfig(context.Background(), bytes.Repeat([]byte{0x01}, 1000), appConfig)
	if err != nil {
		t.Fatalf("ExecuteWithAppConfig() error = %v", err)
	}

	if result.Meta.StrategyUsed != entities.StrategyAdaptiveFallback {
		t.Errorf("StrategyUsed = %q, want %q", result.Meta.StrategyUsed, entities.StrategyAdaptiveFallback)
	}
	if result.Meta.Iterations != 2 {
		t.Errorf("Iterations = %d, want 2", result.Meta.Iterations)
	}
}

func TestCompressDocument_CustomSliderStillGated(t *testing.T) {
	// Произвольное значение слайдера (10 -> 0.56 -> 40 DPI) порогом блокируется
	extractor := &fakeTextExtractor{counts: []int{2, 3}, pageCount: 2}
	classifier := usecases.NewClassifyDocumentUseCase(extractor, nil)
	object := &fakeStrategy{label: entities.StrategySmartObject, apply: shrinkTo(100)}
	raster := &fakeStrategy{label: entities.StrategyVisual, apply: shrinkTo(50)}
	engine := usecases.NewCompressDocumentUseCase(classifier, object, raster, identityFinalizer{}, nil, 0)

	appConfig := &entities.AppCompressionConfig{Level: "custom", SliderValue: 10}
	result, err := engine.ExecuteWithAppConfig(context.Background(), bytes.Repeat([]byte{0x01}, 1000), appConfig)
	if err != nil {
		t.Fatalf("ExecuteWithAppConfig() error = %v", err)
	}

	if !result.IsBlocked() {
		t.Fatal("Custom slider below the threshold must stay blocked")
	}
	if len(object.calls)+len(raster.calls) != 0 {
		t.Error("No strategy may run for a blocked slider config")
	}
}
