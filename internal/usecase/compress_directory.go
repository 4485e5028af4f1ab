package usecases

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/tensorkernel/PDFTools/internal/domain/entities"
	"github.com/tensorkernel/PDFTools/internal/domain/repositories"
)

// CompressDirectoryUseCase сценарий сжатия всех PDF файлов в директории.
// Синхронный однопоточный обход для CLI режима; параллельную обработку
// с воркерами выполняет ProcessPDFsUseCase.
type CompressDirectoryUseCase struct {
	compressor *CompressPDFUseCase
	fileRepo   repositories.FileRepository
}

// NewCompressDirectoryUseCase создает новый сценарий сжатия директории
func NewCompressDirectoryUseCase(
	compressor *CompressPDFUseCase,
	fileRepo repositories.FileRepository,
) *CompressDirectoryUseCase {
	return &CompressDirectoryUseCase{
		compressor: compressor,
		fileRepo:   fileRepo,
	}
}

// DirectoryCompressionResult результат сжатия директории
type DirectoryCompressionResult struct {
	TotalFiles   int
	SuccessCount int
	FailedCount  int
	BlockedCount int
	Results      []*entities.CompressionResult
	Errors       []error
}

// Execute выполняет сжатие всех PDF файлов в директории
func (uc *CompressDirectoryUseCase) Execute(ctx context.Context, inputDir, outputDir string, appConfig *entities.AppCompressionConfig) (*DirectoryCompressionResult, error) {
	// Проверяем существование входной директории
	if !uc.fileRepo.FileExists(inputDir) {
		return nil, entities.ErrDirectoryNotFound
	}

	// Создаем выходную директорию
	if err := uc.fileRepo.CreateDirectory(outputDir); err != nil {
		return nil, fmt.Errorf("ошибка создания выходной директории: %w", err)
	}

	// Получаем список PDF файлов
	files, err := uc.fileRepo.ListPDFFiles(inputDir)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка файлов: %w", err)
	}

	if len(files) == 0 {
		return nil, entities.ErrNoFilesFound
	}

	// Валидируем конфигурацию
	if err := appConfig.Validate(); err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	result := &DirectoryCompressionResult{
		TotalFiles: len(files),
		Results:    make([]*entities.CompressionResult, 0, len(files)),
		Errors:     make([]error, 0),
	}

	// Обрабатываем каждый файл
	for _, inputFile := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fileName := filepath.Base(inputFile)
		outputFile := filepath.Join(outputDir, fmt.Sprintf("compressed_%s", fileName))

		compressionResult, err := uc.compressor.Execute(ctx, inputFile, outputFile, appConfig)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("ошибка сжатия файла %s: %w", fileName, err))
			result.FailedCount++
			continue
		}

		result.Results = append(result.Results, compressionResult)
		if compressionResult.IsBlocked() {
			result.BlockedCount++
		} else {
			result.SuccessCount++
		}
	}

	return result, nil
}
