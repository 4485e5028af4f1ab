package usecases

import (
	"context"
	"fmt"

	"github.com/tensorkernel/PDFTools/internal/domain/entities"
	"github.com/tensorkernel/PDFTools/internal/domain/repositories"
)

// CompressDocumentUseCase оркестратор адаптивного сжатия одного документа.
// Работает как конечный автомат над стратегиями: строит явный список
// попыток, выполняет их по порядку и принимает первый результат,
// который строго меньше исходного файла. Движок никогда не возвращает
// результат больше входа.
type CompressDocumentUseCase struct {
	classifier      *ClassifyDocumentUseCase
	objectStrategy  repositories.CompressionStrategy
	rasterStrategy  repositories.CompressionStrategy
	finalizer       repositories.DocumentFinalizer
	logger          repositories.Logger
	minProjectedDPI int

	progressReporter func(entities.CompressionProgress)
}

// strategyAttempt одна запланированная попытка сжатия
type strategyAttempt struct {
	label    string
	config   *entities.CompressionConfig
	strategy repositories.CompressionStrategy
}

// NewCompressDocumentUseCase создает новый оркестратор сжатия
func NewCompressDocumentUseCase(
	classifier *ClassifyDocumentUseCase,
	objectStrategy repositories.CompressionStrategy,
	rasterStrategy repositories.CompressionStrategy,
	finalizer repositories.DocumentFinalizer,
	logger repositories.Logger,
	minProjectedDPI int,
) *CompressDocumentUseCase {
	if minProjectedDPI <= 0 {
		minProjectedDPI = entities.DefaultMinProjectedDPI
	}

	return &CompressDocumentUseCase{
		classifier:      classifier,
		objectStrategy:  objectStrategy,
		rasterStrategy:  rasterStrategy,
		finalizer:       finalizer,
		logger:          logger,
		minProjectedDPI: minProjectedDPI,
	}
}

// SetProgressReporter устанавливает функцию для отчета о прогрессе
func (uc *CompressDocumentUseCase) SetProgressReporter(reporter func(entities.CompressionProgress)) {
	uc.progressReporter = reporter
}

// ExecuteWithAppConfig классифицирует документ, строит конфигурацию из
// настроек приложения и запускает сжатие
func (uc *CompressDocumentUseCase) ExecuteWithAppConfig(ctx context.Context, data []byte, appConfig *entities.AppCompressionConfig) (*entities.CompressionResult, error) {
	progress := uc.newProgressTracker()
	progress.report(0, "Классификация содержимого")

	classification := uc.classifier.Execute(data)
	if uc.logger != nil {
		uc.logger.Debug("Классификация: страниц %d, текстовый: %v", classification.PageCount, classification.IsTextHeavy)
	}

	config := appConfig.ResolveCompressionConfig(classification.IsTextHeavy)
	progress.report(10, "Конфигурация построена")

	return uc.execute(ctx, data, config, appConfig.OverrideSafety, progress)
}

// Execute запускает сжатие с готовой конфигурацией
func (uc *CompressDocumentUseCase) Execute(ctx context.Context, data []byte, config *entities.CompressionConfig, overrideSafety bool) (*entities.CompressionResult, error) {
	progress := uc.newProgressTracker()
	progress.report(10, "Подготовка")
	return uc.execute(ctx, data, config, overrideSafety, progress)
}

func (uc *CompressDocumentUseCase) execute(ctx context.Context, data []byte, config *entities.CompressionConfig, overrideSafety bool, progress *progressTracker) (*entities.CompressionResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	originalSize := int64(len(data))

	// Защитный порог: молча выдавать нечитаемый документ нельзя.
	// Отказ по политике, а не ошибка - повторный вызов с overrideSafety
	// продолжит работу с теми же параметрами.
	if !uc.passesSafetyGate(config, overrideSafety) {
		if uc.logger != nil {
			uc.logger.Warning("Сжатие остановлено: проектное разрешение %d DPI ниже порога %d", config.ProjectedDPI(), uc.minProjectedDPI)
		}
		return uc.blockedResult(config, originalSize), nil
	}

	attempts := uc.buildAttempts(config, overrideSafety)

	iterations := 0
	for i, attempt := range attempts {
		progress.report(10+90*i/len(attempts), fmt.Sprintf("Проход %d: %s", i+1, attempt.label))
		iterations++

		output, err := uc.runStrategy(ctx, attempt, data)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			// Аварийная деградация: любая ошибка пообъектного пути
			// уводит в консервативную растеризацию. Явный, логируемый
			// исход, а не тихий catch-all.
			if attempt.label == entities.StrategySmartObject {
				if uc.logger != nil {
					uc.logger.Error("Пообъектное сжатие не удалось, аварийная растеризация: %v", err)
				}
				fallback := strategyAttempt{
					label:    entities.StrategyFallbackRaster,
					config:   entities.NewFallbackConfig(),
					strategy: uc.rasterStrategy,
				}
				iterations++
				output, err = uc.runStrategy(ctx, fallback, data)
				if err != nil {
					return nil, fmt.Errorf("ошибка аварийной растеризации: %w", err)
				}
				if result := uc.acceptIfSmaller(output, fallback, originalSize, iterations, progress); result != nil {
					return result, nil
				}
				continue
			}

			return nil, fmt.Errorf("ошибка стратегии %q: %w", attempt.label, err)
		}

		if result := uc.acceptIfSmaller(output, attempt, originalSize, iterations, progress); result != nil {
			return result, nil
		}

		if uc.logger != nil {
			uc.logger.Info("Проход %q не уменьшил файл, эскалация", attempt.label)
		}
	}

	// Ни один проход не уменьшил файл: возвращаем оригинал нетронутым
	progress.report(100, "Сжатие невозможно без потерь размера")
	result := &entities.CompressionResult{
		Status:         entities.StatusSuccess,
		Data:           data,
		OriginalSize:   originalSize,
		CompressedSize: originalSize,
		Success:        true,
		Meta: entities.CompressionMeta{
			EffectiveScale:   config.Scale,
			EffectiveQuality: config.Quality,
			Iterations:       iterations,
			StrategyUsed:     entities.StrategyAborted,
			ProjectedDPI:     config.ProjectedDPI(),
		},
	}
	result.CalculateCompressionRatio()
	return result, nil
}

// buildAttempts строит явный упорядоченный список попыток.
// PreserveText означает предпочтение пообъектного пути, но не запрет
// растеризации: если пообъектный проход ничего не сэкономил,
// эскалация уходит в растеризацию.
func (uc *CompressDocumentUseCase) buildAttempts(config *entities.CompressionConfig, overrideSafety bool) []strategyAttempt {
	var attempts []strategyAttempt

	if config.PreserveText {
		attempts = append(attempts, strategyAttempt{
			label:    entities.StrategySmartObject,
			config:   config,
			strategy: uc.objectStrategy,
		})
		uc.appendEscalation(&attempts, config, entities.StrategyAdaptiveFallback, overrideSafety)
	} else {
		attempts = append(attempts, strategyAttempt{
			label:    entities.StrategyVisual,
			config:   config,
			strategy: uc.rasterStrategy,
		})
		uc.appendEscalation(&attempts, config, entities.StrategyAdaptiveSqueeze, overrideSafety)
	}

	return attempts
}

// appendEscalation добавляет эскалированный растровый проход, если он
// не опускается ниже защитного порога. Эскалация за порог пропускается,
// а не выполняется молча.
func (uc *CompressDocumentUseCase) appendEscalation(attempts *[]strategyAttempt, config *entities.CompressionConfig, label string, overrideSafety bool) {
	escalated := config.Escalate()
	if !uc.passesSafetyGate(escalated, overrideSafety) {
		if uc.logger != nil {
			uc.logger.Warning("Эскалация пропущена: %d DPI ниже порога %d", escalated.ProjectedDPI(), uc.minProjectedDPI)
		}
		return
	}

	*attempts = append(*attempts, strategyAttempt{
		label:    label,
		config:   escalated,
		strategy: uc.rasterStrategy,
	})
}

// runStrategy выполняет стратегию, превращая панику в ошибку
func (uc *CompressDocumentUseCase) runStrategy(ctx context.Context, attempt strategyAttempt, data []byte) (output []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("паника в стратегии %q: %v", attempt.label, r)
		}
	}()

	return attempt.strategy.Apply(ctx, data, attempt.config)
}

// acceptIfSmaller финализирует результат прохода и принимает его, только
// если он строго меньше исходного файла
func (uc *CompressDocumentUseCase) acceptIfSmaller(output []byte, attempt strategyAttempt, originalSize int64, iterations int, progress *progressTracker) *entities.CompressionResult {
	if uc.finalizer != nil {
		output = uc.finalizer.Finalize(output)
	}

	if int64(len(output)) >= originalSize {
		return nil
	}

	progress.report(100, fmt.Sprintf("Готово: %s", attempt.label))

	result := &entities.CompressionResult{
		Status:         entities.StatusSuccess,
		Data:           output,
		OriginalSize:   originalSize,
		CompressedSize: int64(len(output)),
		Success:        true,
		Meta: entities.CompressionMeta{
			EffectiveScale:   attempt.config.Scale,
			EffectiveQuality: attempt.config.Quality,
			Iterations:       iterations,
			StrategyUsed:     attempt.label,
			ProjectedDPI:     attempt.config.ProjectedDPI(),
		},
	}
	result.CalculateCompressionRatio()
	return result
}

// passesSafetyGate проверяет конфигурацию против порога читаемости.
// Порог защищает от произвольных значений слайдера; опорные точки
// дискретных уровней фиксированы и проходят без проверки, включая
// их эскалации (пределы эскалации ограничены собственными полами).
func (uc *CompressDocumentUseCase) passesSafetyGate(config *entities.CompressionConfig, overrideSafety bool) bool {
	return overrideSafety || config.Preset || config.ProjectedDPI() >= uc.minProjectedDPI
}

// blockedResult строит результат отказа по защитному порогу
func (uc *CompressDocumentUseCase) blockedResult(config *entities.CompressionConfig, originalSize int64) *entities.CompressionResult {
	return &entities.CompressionResult{
		Status:       entities.StatusBlocked,
		OriginalSize: originalSize,
		Meta: entities.CompressionMeta{
			EffectiveScale:   config.Scale,
			EffectiveQuality: config.Quality,
			ProjectedDPI:     config.ProjectedDPI(),
		},
	}
}

// progressTracker обеспечивает монотонность процента прогресса
type progressTracker struct {
	reporter func(entities.CompressionProgress)
	last     int
}

func (uc *CompressDocumentUseCase) newProgressTracker() *progressTracker {
	return &progressTracker{reporter: uc.progressReporter}
}

func (t *progressTracker) report(percent int, stage string) {
	if percent < t.last {
		percent = t.last
	}
	t.last = percent

	if t.reporter != nil {
		t.reporter(entities.CompressionProgress{Percent: percent, Stage: stage})
	}
}
