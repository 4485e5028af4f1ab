package controllers

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tensorkernel/PDFTools/internal/domain/entities"
	usecases "github.com/tensorkernel/PDFTools/internal/usecase"
)

// CLIController контроллер для командной строки.
// Используется при запуске с флагами -file/-dir, минуя TUI.
type CLIController struct {
	compressPDFUseCase       *usecases.CompressPDFUseCase
	compressDirectoryUseCase *usecases.CompressDirectoryUseCase
	appConfig                *entities.AppCompressionConfig
}

// NewCLIController создает новый CLI контроллер
func NewCLIController(
	compressPDFUseCase *usecases.CompressPDFUseCase,
	compressDirectoryUseCase *usecases.CompressDirectoryUseCase,
	appConfig *entities.AppCompressionConfig,
) *CLIController {
	return &CLIController{
		compressPDFUseCase:       compressPDFUseCase,
		compressDirectoryUseCase: compressDirectoryUseCase,
		appConfig:                appConfig,
	}
}

// HandleSingleFile обрабатывает сжатие одного файла
func (c *CLIController) HandleSingleFile(ctx context.Context, inputPath, outputPath string) error {
	fmt.Println("🔥 PDFTools - Адаптивное сжатие PDF файлов")
	fmt.Println("==========================================")

	// Запрашиваем интенсивность сжатия
	config := c.askForCompressionConfig()

	fmt.Printf("\n🚀 Начинаем сжатие файла: %s\n", inputPath)

	// Выполняем сжатие
	result, err := c.compressPDFUseCase.Execute(ctx, inputPath, outputPath, config)
	if err != nil {
		return fmt.Errorf("ошибка сжатия: %w", err)
	}

	// Показываем результаты
	c.showCompressionResult(result, outputPath)

	return nil
}

// HandleDirectory обрабатывает сжатие директории
func (c *CLIController) HandleDirectory(ctx context.Context, inputDir, outputDir string) error {
	fmt.Println("🔥 PDFTools - Адаптивное сжатие директории PDF файлов")
	fmt.Println("=====================================================")

	// Запрашиваем интенсивность сжатия
	config := c.askForCompressionConfig()

	fmt.Printf("\n🚀 Начинаем сжатие директории: %s\n", inputDir)

	// Выполняем сжатие
	result, err := c.compressDirectoryUseCase.Execute(ctx, inputDir, outputDir, config)
	if err != nil {
		return fmt.Errorf("ошибка сжатия директории: %w", err)
	}

	// Показываем результаты
	c.showDirectoryResult(result)

	return nil
}

// askForCompressionConfig запрашивает интенсивность сжатия у пользователя
// и возвращает конфигурацию с пользовательским значением ползунка
func (c *CLIController) askForCompressionConfig() *entities.AppCompressionConfig {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("\n🎯 Выберите интенсивность сжатия (0-100):")
	fmt.Println("0-25:   Максимальное сжатие (низкое качество)")
	fmt.Println("26-50:  Сильное сжатие (среднее качество)")
	fmt.Println("51-75:  Умеренное сжатие (хорошее качество)")
	fmt.Println("76-100: Слабое сжатие (высокое качество, возможно увеличение)")

	for {
		fmt.Print("\nВведите значение (0-100): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("❌ Ошибка ввода")
			continue
		}

		input = strings.TrimSpace(input)
		value, err := strconv.Atoi(input)
		if err != nil {
			fmt.Println("❌ Введите число")
			continue
		}

		if value < 0 || value > 100 {
			fmt.Println("❌ Значение должно быть от 0 до 100")
			continue
		}

		config := *c.appConfig
		config.Level = string(entities.LevelCustom)
		config.SliderValue = float64(value)
		return &config
	}
}

// showCompressionResult показывает результат сжатия файла
func (c *CLIController) showCompressionResult(result *entities.CompressionResult, outputPath string) {
	if result.IsBlocked() {
		fmt.Println("\n⛔ Сжатие заблокировано защитным порогом:")
		fmt.Printf("Проектное разрешение %d DPI ниже минимума\n", result.Meta.ProjectedDPI)
		fmt.Println("Включите override_safety в конфигурации, чтобы продолжить")
		return
	}

	fmt.Println("\n📊 Результаты сжатия:")
	fmt.Printf("Исходный размер: %.2f MB\n", float64(result.OriginalSize)/1024/1024)
	fmt.Printf("Сжатый размер: %.2f MB\n", float64(result.CompressedSize)/1024/1024)
	fmt.Printf("Сжатие: %.1f%%\n", result.CompressionRatio)
	fmt.Printf("Сэкономлено: %.2f MB\n", float64(result.SavedSpace)/1024/1024)
	fmt.Printf("Стратегия: %s (проходов: %d)\n", result.Meta.StrategyUsed, result.Meta.Iterations)

	if result.IsEffective() {
		fmt.Println("✅ Сжатие выполнено успешно!")
	} else {
		fmt.Println("⚠️ Файл не был сжат (возможно, уже оптимизирован)")
	}

	fmt.Printf("\n🎉 Готово! Сжатый файл сохранен как: %s\n", outputPath)
}

// showDirectoryResult показывает результат сжатия директории
func (c *CLIController) showDirectoryResult(result *usecases.DirectoryCompressionResult) {
	fmt.Printf("\n📊 Результаты сжатия директории:\n")
	fmt.Printf("Всего файлов: %d\n", result.TotalFiles)
	fmt.Printf("Успешно сжато: %d\n", result.SuccessCount)
	fmt.Printf("Заблокировано порогом: %d\n", result.BlockedCount)
	fmt.Printf("Ошибок: %d\n", result.FailedCount)

	// Показываем статистику по каждому файлу
	for i, fileResult := range result.Results {
		if fileResult.IsBlocked() {
			fmt.Printf("\n[%d] ⛔ Заблокировано: %d DPI ниже порога\n", i+1, fileResult.Meta.ProjectedDPI)
			continue
		}
		fmt.Printf("\n[%d] %s: Сжатие %.1f%%, Сэкономлено: %.2f MB\n",
			i+1, fileResult.Meta.StrategyUsed, fileResult.CompressionRatio, float64(fileResult.SavedSpace)/1024/1024)
	}

	// Показываем ошибки, если есть
	if len(result.Errors) > 0 {
		fmt.Println("\n❌ Ошибки:")
		for i, err := range result.Errors {
			fmt.Printf("[%d] %v\n", i+1, err)
		}
	}

	fmt.Printf("\n🎉 Обработка завершена! Успешно сжато: %d/%d файлов\n",
		result.SuccessCount, result.TotalFiles)
}
