package main

import (
	"context"
	"sync"

	"github.com/tensorkernel/PDFTools/internal/domain/entities"
	"github.com/tensorkernel/PDFTools/internal/domain/repositories"
	"github.com/tensorkernel/PDFTools/internal/presentation/tui"
	usecases "github.com/tensorkernel/PDFTools/internal/usecase"
)

// ApplicationProcessor обрабатывает команды приложения
type ApplicationProcessor struct {
	processUseCase *usecases.ProcessPDFsUseCase
	config         *entities.Config
	tuiManager     *tui.Manager
	logger         repositories.Logger

	// Graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewApplicationProcessor создает новый процессор приложения
func NewApplicationProcessor(
	processUseCase *usecases.ProcessPDFsUseCase,
	config *entities.Config,
	tuiManager *tui.Manager,
	logger repositories.Logger,
) *ApplicationProcessor {
	ctx, cancel := context.WithCancel(context.Background())

	return &ApplicationProcessor{
		processUseCase: processUseCase,
		config:         config,
		tuiManager:     tuiManager,
		logger:         logger,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// StartProcessing запускает адаптивную обработку PDF файлов
func (p *ApplicationProcessor) StartProcessing() {
	p.wg.Add(1)
	defer p.wg.Done()

	if p.logger != nil {
		p.logger.Info("Запуск адаптивной обработки PDF файлов (уровень: %s)", p.config.Compression.Level)
	}

	if err := p.processUseCase.Execute(p.ctx, p.config); err != nil {
		if p.logger != nil {
			p.logger.Error("Ошибка обработки: %v", err)
		}
		return
	}

	if p.logger != nil {
		p.logger.Success("Обработка файлов завершена успешно")
	}
}

// Shutdown корректно завершает работу процессора
func (p *ApplicationProcessor) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
