package compressors

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/tensorkernel/PDFTools/internal/domain/repositories"
)

// PDFCPUFinalizer финальный lossless-проход по результату стратегии:
// удаление дубликатов объектов и пересжатие потоков через PDFCPU.
// Проход никогда не ухудшает результат - при ошибке или росте размера
// возвращаются исходные байты.
type PDFCPUFinalizer struct {
	logger repositories.Logger
}

// NewPDFCPUFinalizer создает новый финализатор
func NewPDFCPUFinalizer(logger repositories.Logger) *PDFCPUFinalizer {
	return &PDFCPUFinalizer{logger: logger}
}

// Finalize выполняет оптимизацию PDFCPU с базовыми настройками
func (f *PDFCPUFinalizer) Finalize(data []byte) []byte {
	var buf bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &buf, nil); err != nil {
		if f.logger != nil {
			f.logger.Warning("Оптимизация PDFCPU пропущена: %v", err)
		}
		return data
	}

	if buf.Len() >= len(data) {
		return data
	}

	return buf.Bytes()
}
