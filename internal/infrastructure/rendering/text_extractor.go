package rendering

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// UniPDFTextExtractor подсчет текстовых фрагментов через UniPDF
type UniPDFTextExtractor struct{}

// NewUniPDFTextExtractor создает новый экстрактор текста
func NewUniPDFTextExtractor() *UniPDFTextExtractor {
	return &UniPDFTextExtractor{}
}

// FragmentCounts возвращает число текстовых фрагментов по каждой из
// первых maxPages страниц и общее количество страниц документа.
// Фрагментом считается последовательность непробельных символов.
func (e *UniPDFTextExtractor) FragmentCounts(data []byte, maxPages int) ([]int, int, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("не удалось открыть документ: %w", err)
	}

	pageCount, err := reader.GetNumPages()
	if err != nil {
		return nil, 0, fmt.Errorf("не удалось получить количество страниц: %w", err)
	}

	sample := maxPages
	if pageCount < sample {
		sample = pageCount
	}

	counts := make([]int, 0, sample)
	for i := 1; i <= sample; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			return nil, 0, fmt.Errorf("не удалось получить страницу %d: %w", i, err)
		}

		ex, err := extractor.New(page)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка создания экстрактора для страницы %d: %w", i, err)
		}

		text, err := ex.ExtractText()
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка извлечения текста со страницы %d: %w", i, err)
		}

		counts = append(counts, len(strings.Fields(text)))
	}

	return counts, pageCount, nil
}
