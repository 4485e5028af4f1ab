package usecases

import (
	"fmt"

	"github.com/tensorkernel/PDFTools/internal/domain/entities"
	"github.com/tensorkernel/PDFTools/internal/domain/repositories"
)

// Константы проекции размера
const (
	// Накладные расходы контейнера на страницу и на документ
	estimatePageOverheadBytes = 768
	estimateBaseOverheadBytes = 4096

	// Запас против оптимистичной недооценки на малонасыщенных страницах
	estimateSafetyMargin = 1.05
)

// EstimateSizeUseCase быстрая оценка размера результата без полного
// прогона конвейера. Оценка предназначена только для интерактивного
// UI; источником истины остается реальный запуск оркестратора.
type EstimateSizeUseCase struct {
	preview repositories.PreviewRenderer
	logger  repositories.Logger
}

// NewEstimateSizeUseCase создает новый сценарий оценки размера
func NewEstimateSizeUseCase(preview repositories.PreviewRenderer, logger repositories.Logger) *EstimateSizeUseCase {
	return &EstimateSizeUseCase{
		preview: preview,
		logger:  logger,
	}
}

// Project проецирует итоговый размер документа по длине одной уже
// закодированной страницы. Проекция никогда не превышает исходный
// размер - зеркало гарантии оркестратора "файл не растет".
func (uc *EstimateSizeUseCase) Project(sampleEncodedBytes int, pageCount int, originalSize int64) int64 {
	if pageCount <= 0 || originalSize <= 0 {
		return originalSize
	}

	perPage := int64(sampleEncodedBytes + estimatePageOverheadBytes)
	projected := perPage*int64(pageCount) + estimateBaseOverheadBytes
	projected = int64(float64(projected) * estimateSafetyMargin)

	if projected > originalSize {
		return originalSize
	}

	return projected
}

// Preview рендерит первую страницу с параметрами конфигурации и
// возвращает проекцию размера всего документа
func (uc *EstimateSizeUseCase) Preview(data []byte, pageCount int, config *entities.CompressionConfig) (*entities.SizeEstimate, error) {
	if pageCount <= 0 {
		return nil, entities.ErrEmptyDocument
	}

	sample, err := uc.preview.RenderEncodedPage(data, 1, config)
	if err != nil {
		return nil, fmt.Errorf("ошибка рендеринга страницы предпросмотра: %w", err)
	}

	return &entities.SizeEstimate{
		ProjectedSize: uc.Project(len(sample), pageCount, int64(len(data))),
		ProjectedDPI:  config.ProjectedDPI(),
		PageCount:     pageCount,
	}, nil
}
