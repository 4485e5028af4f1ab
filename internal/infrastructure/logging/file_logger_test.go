package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tensorkernel/PDFTools/internal/domain/repositories"
)

func TestNewFileLogger_DisabledReturnsNil(t *testing.T) {
	logger, err := NewFileLogger("unused.log", "info", 10, false)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	if logger != nil {
		t.Error("Disabled file logging must return a nil logger")
	}
}

func TestFileLogger_DisabledIsSafeBehindInterface(t *testing.T) {
	logger, err := NewFileLogger("unused.log", "info", 10, false)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	// Типизированный nil за интерфейсом проходит проверку != nil,
	// поэтому методы обязаны переживать nil-получатель
	var wrapped repositories.Logger = logger
	if wrapped == nil {
		t.Fatal("Typed nil stored in the interface must compare non-nil")
	}

	wrapped.Debug("отладка на выключенном логгере")
	wrapped.Info("информация на выключенном логгере")
	wrapped.Warning("предупреждение на выключенном логгере")
	wrapped.Error("ошибка на выключенном логгере")
	wrapped.Success("успех на выключенном логгере")

	if err := wrapped.Close(); err != nil {
		t.Errorf("Close() on a disabled logger error = %v", err)
	}
}

func TestFileLogger_LevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	logger, err := NewFileLogger(path, "warning", 10, true)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	logger.Debug("отладка не должна попасть в лог")
	logger.Info("информация не должна попасть в лог")
	logger.Warning("предупреждение должно попасть в лог")
	logger.Error("ошибка должна попасть в лог")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	content := string(data)

	if strings.Contains(content, "[DEBUG]") || strings.Contains(content, "[INFO]") {
		t.Error("Messages below the configured level must be filtered out")
	}
	if !strings.Contains(content, "[WARNING]") || !strings.Contains(content, "[ERROR]") {
		t.Error("Messages at or above the configured level must be written")
	}
}

func TestFileLogger_RotatesWhenOversized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	logger, err := NewFileLogger(path, "info", 1, true)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	// Переполняем лимит в 1 MB
	line := strings.Repeat("x", 4096)
	for i := 0; i < 300; i++ {
		logger.Info("%s", line)
	}

	if _, err := os.Stat(path + ".old"); err != nil {
		t.Fatalf("Expected rotated log file: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Active log missing after rotation: %v", err)
	}
	if info.Size() >= 1024*1024 {
		t.Errorf("Active log was not restarted: size %d", info.Size())
	}
}
