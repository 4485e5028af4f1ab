package entities

import "time"

// Config представляет конфигурацию приложения
type Config struct {
	Scanner     ScannerConfig        `yaml:"scanner"`
	Compression AppCompressionConfig `yaml:"compression"`
	Processing  ProcessingConfig     `yaml:"processing"`
	Output      OutputConfig         `yaml:"output"`
}

// ScannerConfig настройки сканирования директорий
type ScannerConfig struct {
	SourceDirectory string `yaml:"source_directory"`
	TargetDirectory string `yaml:"target_directory"`
	ReplaceOriginal bool   `yaml:"replace_original"`
}

// AppCompressionConfig настройки адаптивного сжатия приложения
type AppCompressionConfig struct {
	Level            string  `yaml:"level"`        // extreme | recommended | less | custom
	SliderValue      float64 `yaml:"slider_value"` // 0-100, используется при level: custom
	PreserveText     bool    `yaml:"preserve_text"`
	Grayscale        bool    `yaml:"grayscale"`
	OverrideSafety   bool    `yaml:"override_safety"`
	MinProjectedDPI  int     `yaml:"min_projected_dpi"`
	AutoStart        bool    `yaml:"auto_start"`
	UniPDFLicenseKey string  `yaml:"unipdf_license_key"`
}

// ProcessingConfig настройки обработки
type ProcessingConfig struct {
	ParallelWorkers int `yaml:"parallel_workers"`
	TimeoutSeconds  int `yaml:"timeout_seconds"`
	RetryAttempts   int `yaml:"retry_attempts"`
}

// OutputConfig настройки вывода
type OutputConfig struct {
	LogLevel      string `yaml:"log_level"`
	ProgressBar   bool   `yaml:"progress_bar"`
	LogToFile     bool   `yaml:"log_to_file"`
	LogFileName   string `yaml:"log_file_name"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	HistoryDBPath string `yaml:"history_db_path"`
}

// Validate проверяет корректность настроек сжатия приложения
func (c *AppCompressionConfig) Validate() error {
	if c.SliderValue < 0 || c.SliderValue > 100 {
		return ErrInvalidSliderValue
	}
	return nil
}

// EffectiveMinDPI возвращает действующий порог читаемости
func (c *AppCompressionConfig) EffectiveMinDPI() int {
	if c.MinProjectedDPI <= 0 {
		return DefaultMinProjectedDPI
	}
	return c.MinProjectedDPI
}

// ResolveCompressionConfig строит конфигурацию движка из настроек приложения.
// Дискретный уровень задает опорные точки, custom интерполируется по слайдеру.
func (c *AppCompressionConfig) ResolveCompressionConfig(isTextHeavy bool) *CompressionConfig {
	level := ParseCompressionLevel(c.Level)

	var config *CompressionConfig
	if level == LevelCustom {
		config = NewCompressionConfigFromSlider(c.SliderValue, isTextHeavy)
	} else {
		config = NewCompressionConfigFromLevel(level, isTextHeavy)
	}

	config.PreserveText = c.PreserveText
	config.Grayscale = c.Grayscale

	return config
}

// ProcessingStatus статус обработки
type ProcessingStatus struct {
	// Текущая фаза обработки
	Phase ProcessingPhase

	// Информация о текущем файле
	CurrentFile     string
	CurrentFileSize int64

	// Общая статистика
	TotalFiles      int
	ProcessedFiles  int
	SuccessfulFiles int
	FailedFiles     int
	SkippedFiles    int
	BlockedFiles    int

	// Прогресс
	Progress float64

	// Статистика сжатия
	TotalOriginalSize   int64
	TotalCompressedSize int64
	TotalSavedSpace     int64
	AverageCompression  float64

	// Текущий результат
	LastResult *CompressionResult

	// Время выполнения
	StartTime     time.Time
	ElapsedTime   time.Duration
	EstimatedTime time.Duration

	// Состояние
	IsComplete bool
	Error      error

	// Сообщение для UI
	Message string
}

// ProcessingPhase фаза обработки
type ProcessingPhase int

const (
	PhaseInitializing ProcessingPhase = iota
	PhaseScanning
	PhaseClassifying
	PhaseCompressing
	PhaseReplacing
	PhaseCompleted
	PhaseFailed
)

// UIScreen типы экранов UI
type UIScreen int

const (
	UIScreenMenu UIScreen = iota
	UIScreenConfig
	UIScreenProcessing
)

// NewProcessingStatus создает новый статус обработки
func NewProcessingStatus(totalFiles int) *ProcessingStatus {
	return &ProcessingStatus{
		Phase:      PhaseInitializing,
		TotalFiles: totalFiles,
		StartTime:  time.Now(),
	}
}

// UpdateProgress обновляет прогресс обработки
func (ps *ProcessingStatus) UpdateProgress() {
	if ps.TotalFiles > 0 {
		ps.Progress = float64(ps.ProcessedFiles) / float64(ps.TotalFiles) * 100
	}

	ps.ElapsedTime = time.Since(ps.StartTime)

	// Оценка оставшегося времени
	if ps.ProcessedFiles > 0 && ps.ProcessedFiles < ps.TotalFiles {
		avgTimePerFile := ps.ElapsedTime / time.Duration(ps.ProcessedFiles)
		remainingFiles := ps.TotalFiles - ps.ProcessedFiles
		ps.EstimatedTime = avgTimePerFile * time.Duration(remainingFiles)
	}
}

// AddResult добавляет результат обработки файла
func (ps *ProcessingStatus) AddResult(result *CompressionResult) {
	ps.ProcessedFiles++
	ps.LastResult = result

	switch {
	case result.IsBlocked():
		ps.BlockedFiles++
	case result.Success && result.Error == nil:
		ps.SuccessfulFiles++
		ps.TotalOriginalSize += result.OriginalSize
		ps.TotalCompressedSize += result.CompressedSize
		ps.TotalSavedSpace += result.SavedSpace

		// Пересчитываем среднее сжатие
		if ps.TotalOriginalSize > 0 {
			ps.AverageCompression = ((float64(ps.TotalOriginalSize) - float64(ps.TotalCompressedSize)) / float64(ps.TotalOriginalSize)) * 100
		}
	default:
		ps.FailedFiles++
	}

	ps.UpdateProgress()
}

// SetPhase устанавливает фазу обработки
func (ps *ProcessingStatus) SetPhase(phase ProcessingPhase, message string) {
	ps.Phase = phase
	ps.Message = message
}

// SetCurrentFile устанавлиет текущий обрабатываемый файл
func (ps *ProcessingStatus) SetCurrentFile(filePath string, size int64) {
	ps.CurrentFile = filePath
	ps.CurrentFileSize = size
}

// Complete завершает обработку
func (ps *ProcessingStatus) Complete() {
	ps.IsComplete = true
	ps.Phase = PhaseCompleted
	ps.Progress = 100
	ps.ElapsedTime = time.Since(ps.StartTime)
	ps.EstimatedTime = 0
}

// Fail отмечает обработку как неудачную
func (ps *ProcessingStatus) Fail(err error) {
	ps.IsComplete = true
	ps.Phase = PhaseFailed
	ps.Error = err
	ps.ElapsedTime = time.Since(ps.StartTime)
}

// String возвращает название фазы
func (phase ProcessingPhase) String() string {
	switch phase {
	case PhaseInitializing:
		return "Инициализация"
	case PhaseScanning:
		return "Сканирование файлов"
	case PhaseClassifying:
		return "Классификация содержимого"
	case PhaseCompressing:
		return "Сжатие файлов"
	case PhaseReplacing:
		return "Замена оригиналов"
	case PhaseCompleted:
		return "Завершено"
	case PhaseFailed:
		return "Ошибка"
	default:
		return "Неизвестно"
	}
}

// FormatElapsedTime форматирует время выполнения
func (ps *ProcessingStatus) FormatElapsedTime() string {
	duration := ps.ElapsedTime
	if duration < time.Second {
		return "< 1 сек"
	}
	return duration.Round(time.Second).String()
}

// FormatEstimatedTime форматирует оставшееся время
func (ps *ProcessingStatus) FormatEstimatedTime() string {
	if ps.EstimatedTime == 0 {
		return "N/A"
	}
	duration := ps.EstimatedTime
	if duration < time.Second {
		return "< 1 сек"
	}
	return duration.Round(time.Second).String()
}
