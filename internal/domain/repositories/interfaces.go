package repositories

import (
	"context"

	"github.com/tensorkernel/PDFTools/internal/domain/entities"
)

// CompressionStrategy одна стратегия сжатия документа.
// Стратегия получает исходные байты документа и возвращает байты
// результата; решение о принятии результата остается за оркестратором.
type CompressionStrategy interface {
	Label() string
	Apply(ctx context.Context, data []byte, config *entities.CompressionConfig) ([]byte, error)
}

// DocumentFinalizer финальный lossless-проход по готовому результату
type DocumentFinalizer interface {
	Finalize(data []byte) []byte
}

// TextExtractor подсчет текстовых фрагментов для классификатора.
// Возвращает количество фрагментов по каждой из первых maxPages страниц
// и общее число страниц документа.
type TextExtractor interface {
	FragmentCounts(data []byte, maxPages int) (counts []int, pageCount int, err error)
}

// PreviewRenderer рендерит и кодирует одну страницу для быстрой оценки размера
type PreviewRenderer interface {
	RenderEncodedPage(data []byte, pageNumber int, config *entities.CompressionConfig) ([]byte, error)
}

// FileRepository интерфейс для работы с файловой системой
type FileRepository interface {
	GetFileInfo(path string) (*entities.PDFDocument, error)
	FileExists(path string) bool
	CreateDirectory(path string) error
	ListPDFFiles(directory string) ([]string, error)
}

// HistoryRepository хранилище истории сжатия
type HistoryRepository interface {
	SaveRecord(record *entities.HistoryRecord) error
	Totals() (*entities.HistoryTotals, error)
	Close() error
}
