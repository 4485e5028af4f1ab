package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/tensorkernel/PDFTools/internal/domain/entities"
	"github.com/tensorkernel/PDFTools/internal/domain/repositories"
	"github.com/tensorkernel/PDFTools/internal/infrastructure/compressors"
	"github.com/tensorkernel/PDFTools/internal/infrastructure/config"
	"github.com/tensorkernel/PDFTools/internal/infrastructure/history"
	"github.com/tensorkernel/PDFTools/internal/infrastructure/logging"
	"github.com/tensorkernel/PDFTools/internal/infrastructure/rendering"
	infraRepos "github.com/tensorkernel/PDFTools/internal/infrastructure/repositories"
	"github.com/tensorkernel/PDFTools/internal/interface/controllers"
	"github.com/tensorkernel/PDFTools/internal/presentation/tui"
	usecases "github.com/tensorkernel/PDFTools/internal/usecase"
)

func main() {
	inputFile := flag.String("file", "", "Сжать один PDF файл и выйти (без TUI)")
	inputDir := flag.String("dir", "", "Сжать все PDF файлы в директории и выйти (без TUI)")
	outputPath := flag.String("output", "", "Путь результата для режимов -file/-dir")
	flag.Parse()

	// Загрузка конфигурации
	configRepo := config.NewRepository()
	appConfig, err := configRepo.Load("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Лицензионный ключ UniPDF: значение из конфигурации имеет приоритет
	if appConfig.Compression.UniPDFLicenseKey != "" {
		os.Setenv("UNIDOC_LICENSE_API_KEY", appConfig.Compression.UniPDFLicenseKey)
	}

	// Инициализация базового логгера (в файл)
	fileLogger, err := logging.NewFileLogger(
		appConfig.Output.LogFileName,
		appConfig.Output.LogLevel,
		appConfig.Output.LogMaxSizeMB,
		appConfig.Output.LogToFile,
	)
	if err != nil {
		log.Printf("Предупреждение: не удалось инициализировать логгер: %v", err)
	}
	if fileLogger != nil {
		defer fileLogger.Close()
	}

	// CLI режим: сжатие файла или директории без TUI
	if *inputFile != "" || *inputDir != "" {
		runCLI(appConfig, fileLogger, *inputFile, *inputDir, *outputPath)
		return
	}

	// Инициализация TUI
	tuiManager := tui.NewManager()
	tuiManager.Initialize()

	// Оборачиваем логгер адаптером, чтобы видеть логи в TUI
	var logger repositories.Logger
	logger = tui.NewUILogger(fileLogger, tuiManager)

	// Инициализация репозиториев и движка сжатия
	fileRepo := infraRepos.NewFileSystemRepository()
	engine, historyRepo := buildEngine(appConfig, logger)
	if historyRepo != nil {
		defer historyRepo.Close()
	}

	// Инициализация use cases
	processUseCase := usecases.NewProcessPDFsUseCase(
		engine,
		fileRepo,
		historyRepo,
		logger,
	)

	// Подключаем репортер прогресса к TUI
	processUseCase.SetProgressReporter(func(s entities.ProcessingStatus) {
		tuiManager.SendStatusUpdate(s)
	})

	// Создание процессора для обработки команд
	processor := NewApplicationProcessor(
		processUseCase,
		appConfig,
		tuiManager,
		logger,
	)
	defer processor.Shutdown()

	// Привязываем запуск обработки к TUI
	tuiManager.SetOnStartProcessing(func() {
		// Получаем актуальную конфигурацию из TUI
		processor.config = tuiManager.GetConfig()
		go processor.StartProcessing()
	})

	// Автозапуск, если включен в конфигурации
	if appConfig.Compression.AutoStart {
		go processor.StartProcessing()
	}

	// Запуск TUI
	if err := tuiManager.Run(); err != nil {
		log.Fatalf("Ошибка запуска TUI: %v", err)
	}

	// Cleanup при выходе
	tuiManager.Cleanup()
}

// buildEngine собирает оркестратор сжатия со всеми стратегиями
func buildEngine(appConfig *entities.Config, logger repositories.Logger) (*usecases.CompressDocumentUseCase, repositories.HistoryRepository) {
	codec := rendering.NewRasterCodec()
	extractor := rendering.NewUniPDFTextExtractor()

	classifier := usecases.NewClassifyDocumentUseCase(extractor, logger)
	objectStrategy := compressors.NewObjectRecompressor(codec, logger)
	rasterStrategy := compressors.NewVisualReconstructor(codec, logger)
	finalizer := compressors.NewPDFCPUFinalizer(logger)

	engine := usecases.NewCompressDocumentUseCase(
		classifier,
		objectStrategy,
		rasterStrategy,
		finalizer,
		logger,
		appConfig.Compression.EffectiveMinDPI(),
	)

	var historyRepo repositories.HistoryRepository
	if appConfig.Output.HistoryDBPath != "" {
		repo, err := history.NewRepository(appConfig.Output.HistoryDBPath)
		if err != nil {
			if logger != nil {
				logger.Warning("История недоступна: %v", err)
			}
		} else {
			historyRepo = repo
		}
	}

	return engine, historyRepo
}

// runCLI выполняет сжатие в режиме командной строки
func runCLI(appConfig *entities.Config, fileLogger repositories.Logger, inputFile, inputDir, outputPath string) {
	engine, historyRepo := buildEngine(appConfig, fileLogger)
	if historyRepo != nil {
		defer historyRepo.Close()
	}

	fileRepo := infraRepos.NewFileSystemRepository()
	compressPDF := usecases.NewCompressPDFUseCase(engine, fileRepo, historyRepo, fileLogger)
	compressDir := usecases.NewCompressDirectoryUseCase(compressPDF, fileRepo)

	controller := controllers.NewCLIController(compressPDF, compressDir, &appConfig.Compression)

	ctx := context.Background()

	var err error
	if inputFile != "" {
		err = controller.HandleSingleFile(ctx, inputFile, outputPath)
	} else {
		outputDir := outputPath
		if outputDir == "" {
			outputDir = appConfig.Scanner.TargetDirectory
		}
		err = controller.HandleDirectory(ctx, inputDir, outputDir)
	}

	if err != nil {
		log.Fatalf("Ошибка: %v", err)
	}
}
