package usecases

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tensorkernel/PDFTools/internal/domain/entities"
	"github.com/tensorkernel/PDFTools/internal/domain/repositories"
)

// CompressPDFUseCase сценарий сжатия одного PDF файла.
// Читает файл, прогоняет его через адаптивный оркестратор и записывает
// результат. Заблокированный защитным порогом документ не записывается.
type CompressPDFUseCase struct {
	engine      *CompressDocumentUseCase
	fileRepo    repositories.FileRepository
	historyRepo repositories.HistoryRepository
	logger      repositories.Logger
}

// NewCompressPDFUseCase создает новый сценарий сжатия PDF
func NewCompressPDFUseCase(
	engine *CompressDocumentUseCase,
	fileRepo repositories.FileRepository,
	historyRepo repositories.HistoryRepository,
	logger repositories.Logger,
) *CompressPDFUseCase {
	return &CompressPDFUseCase{
		engine:      engine,
		fileRepo:    fileRepo,
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// Execute выполняет сжатие PDF файла
func (uc *CompressPDFUseCase) Execute(ctx context.Context, inputPath string, outputPath string, appConfig *entities.AppCompressionConfig) (*entities.CompressionResult, error) {
	// Проверяем существование входного файла
	if !uc.fileRepo.FileExists(inputPath) {
		return nil, entities.ErrFileNotFound
	}

	// Получаем информацию о файле
	fileInfo, err := uc.fileRepo.GetFileInfo(inputPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла: %w", err)
	}

	// Генерируем имя выходного файла, если не указано
	if outputPath == "" {
		ext := filepath.Ext(inputPath)
		base := inputPath[:len(inputPath)-len(ext)]
		outputPath = base + "_compressed" + ext
	}

	// Выполняем адаптивное сжатие
	result, err := uc.engine.ExecuteWithAppConfig(ctx, data, appConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка сжатия файла: %w", err)
	}

	result.CurrentFile = inputPath
	result.OriginalSize = fileInfo.Size
	result.CalculateCompressionRatio()

	// Заблокированный результат не содержит данных для записи
	if result.IsBlocked() {
		if uc.logger != nil {
			uc.logger.Warning("Файл %s не сжат: защитный порог %d DPI", filepath.Base(inputPath), result.Meta.ProjectedDPI)
		}
		return result, nil
	}

	if err := os.WriteFile(outputPath, result.Data, 0644); err != nil {
		return nil, fmt.Errorf("ошибка записи результата: %w", err)
	}

	uc.recordHistory(inputPath, result)

	return result, nil
}

// recordHistory сохраняет запись об операции в журнал истории
func (uc *CompressPDFUseCase) recordHistory(inputPath string, result *entities.CompressionResult) {
	if uc.historyRepo == nil {
		return
	}

	record := &entities.HistoryRecord{
		FileName:       filepath.Base(inputPath),
		OriginalSize:   result.OriginalSize,
		CompressedSize: result.CompressedSize,
		StrategyUsed:   result.Meta.StrategyUsed,
		Iterations:     result.Meta.Iterations,
		CreatedAt:      time.Now(),
	}

	if err := uc.historyRepo.SaveRecord(record); err != nil && uc.logger != nil {
		uc.logger.Warning("Не удалось сохранить запись истории: %v", err)
	}
}
