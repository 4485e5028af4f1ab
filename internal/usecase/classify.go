package usecases

import (
	"github.com/tensorkernel/PDFTools/internal/domain/entities"
	"github.com/tensorkernel/PDFTools/internal/domain/repositories"
)

// ClassifyDocumentUseCase классификация содержимого документа.
// По выборке первых страниц оценивает, является ли документ текстовым:
// для текстовых документов резолвер тратит бюджет сжатия иначе.
type ClassifyDocumentUseCase struct {
	extractor repositories.TextExtractor
	logger    repositories.Logger
}

// NewClassifyDocumentUseCase создает новый сценарий классификации
func NewClassifyDocumentUseCase(extractor repositories.TextExtractor, logger repositories.Logger) *ClassifyDocumentUseCase {
	return &ClassifyDocumentUseCase{
		extractor: extractor,
		logger:    logger,
	}
}

// Execute классифицирует документ по байтам. Классификация чисто
// читающая и детерминированная: одинаковые байты дают одинаковый
// результат. Ошибка извлечения никогда не прерывает сжатие - документ
// просто считается изображением.
func (uc *ClassifyDocumentUseCase) Execute(data []byte) *entities.ClassificationResult {
	counts, pageCount, err := uc.extractor.FragmentCounts(data, entities.ClassifierSamplePages)
	if err != nil {
		if uc.logger != nil {
			uc.logger.Warning("Классификация не удалась, документ считается изображением: %v", err)
		}
		return &entities.ClassificationResult{IsTextHeavy: false, PageCount: 0}
	}

	if len(counts) == 0 {
		return &entities.ClassificationResult{IsTextHeavy: false, PageCount: pageCount}
	}

	total := 0
	for _, count := range counts {
		total += count
	}
	average := float64(total) / float64(len(counts))

	return &entities.ClassificationResult{
		IsTextHeavy: average > entities.TextHeavyFragmentThreshold,
		PageCount:   pageCount,
	}
}
