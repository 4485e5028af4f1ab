package config

import (
	"path/filepath"
	"testing"

	"github.com/tensorkernel/PDFTools/internal/domain/entities"
)

func TestRepository_LoadMissingFileReturnsDefaults(t *testing.T) {
	repo := NewRepository()

	config, err := repo.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Compression.Level != string(entities.LevelRecommended) {
		t.Errorf("Default level = %q, want %q", config.Compression.Level, entities.LevelRecommended)
	}
	if !config.Compression.PreserveText {
		t.Error("Default config must preserve the text layer")
	}
	if config.Compression.MinProjectedDPI != entities.DefaultMinProjectedDPI {
		t.Errorf("Default MinProjectedDPI = %d, want %d", config.Compression.MinProjectedDPI, entities.DefaultMinProjectedDPI)
	}
	if config.Output.HistoryDBPath == "" {
		t.Error("Default config must set a history database path")
	}
}

func TestRepository_SaveAndLoadRoundtrip(t *testing.T) {
	repo := NewRepository()
	path := filepath.Join(t.TempDir(), "config.yaml")

	original := &entities.Config{
		Scanner: entities.ScannerConfig{
			SourceDirectory: "/data/in",
			TargetDirectory: "/data/out",
			ReplaceOriginal: true,
		},
		Compression: entities.AppCompressionConfig{
			Level:           "custom",
			SliderValue:     35,
			PreserveText:    true,
			Grayscale:       true,
			OverrideSafety:  true,
			MinProjectedDPI: 70,
		},
		Processing: entities.ProcessingConfig{
			ParallelWorkers: 4,
			TimeoutSeconds:  60,
			RetryAttempts:   2,
		},
		Output: entities.OutputConfig{
			LogLevel:      "debug",
			LogToFile:     true,
			LogFileName:   "test.log",
			LogMaxSizeMB:  5,
			HistoryDBPath: "test.db",
		},
	}

	if err := repo.Save(path, original); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := repo.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if *loaded != *original {
		t.Errorf("Roundtrip mismatch:\n got %+v\nwant %+v", loaded, original)
	}
}
