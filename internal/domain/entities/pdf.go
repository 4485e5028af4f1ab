package entities

import (
	"time"
)

// PDFDocument представляет PDF документ на диске
type PDFDocument struct {
	Path         string
	Size         int64
	ModifiedTime time.Time
	Pages        int
}

// CompressionStatus статус завершения сжатия
type CompressionStatus string

const (
	// StatusSuccess сжатие выполнено, Data содержит результат
	StatusSuccess CompressionStatus = "success"

	// StatusBlocked сжатие остановлено защитным порогом DPI.
	// Это отказ по политике, а не ошибка: повторный вызов с
	// OverrideSafety продолжит работу.
	StatusBlocked CompressionStatus = "blocked"
)

// Метки использованных стратегий
const (
	StrategySmartObject      = "Smart Object Optimization"
	StrategyVisual           = "Visual Reconstruction"
	StrategyAdaptiveFallback = "Adaptive Fallback"
	StrategyAdaptiveSqueeze  = "Adaptive Squeeze"
	StrategyAborted          = "Aborted (Safety Lock)"
	StrategyFallbackRaster   = "Fallback Rasterization"
)

// CompressionMeta параметры выполненного сжатия. Итоговый размер
// живет только в CompressionResult.CompressedSize, здесь не дублируется.
type CompressionMeta struct {
	EffectiveScale   float64
	EffectiveQuality float64
	Iterations       int
	StrategyUsed     string
	ProjectedDPI     int
}

// CompressionResult представляет результат сжатия
type CompressionResult struct {
	CurrentFile      string
	Status           CompressionStatus
	Data             []byte
	OriginalSize     int64
	CompressedSize   int64
	CompressionRatio float64
	SavedSpace       int64
	Meta             CompressionMeta
	Success          bool
	Error            error
}

// CalculateCompressionRatio вычисляет коэффициент сжатия
func (cr *CompressionResult) CalculateCompressionRatio() {
	if cr.OriginalSize > 0 {
		cr.CompressionRatio = ((float64(cr.OriginalSize) - float64(cr.CompressedSize)) / float64(cr.OriginalSize)) * 100
		cr.SavedSpace = cr.OriginalSize - cr.CompressedSize
	}
}

// IsEffective проверяет, было ли сжатие эффективным
func (cr *CompressionResult) IsEffective() bool {
	return cr.Success && cr.CompressionRatio > 0
}

// IsBlocked проверяет, остановлено ли сжатие защитным порогом
func (cr *CompressionResult) IsBlocked() bool {
	return cr.Status == StatusBlocked
}

// CompressionProgress прогресс сжатия одного документа.
// Percent монотонно растет по подэтапам: классификация 0-10,
// первый проход 10-60, второй проход 60-100.
type CompressionProgress struct {
	Percent int
	Stage   string
}

// SizeEstimate быстрая оценка размера результата для UI.
// Оценка никогда не превышает исходный размер и не является
// авторитетной: источник истины - реальный запуск оркестратора.
type SizeEstimate struct {
	ProjectedSize int64
	ProjectedDPI  int
	PageCount     int
}
