package rendering

import (
	"bytes"
	"fmt"

	"github.com/unidoc/unipdf/v3/model"

	"github.com/tensorkernel/PDFTools/internal/domain/entities"
)

// PreviewRenderer рендерит и кодирует одну страницу для оценки размера
type PreviewRenderer struct {
	codec *RasterCodec
}

// NewPreviewRenderer создает новый рендерер предпросмотра
func NewPreviewRenderer(codec *RasterCodec) *PreviewRenderer {
	return &PreviewRenderer{codec: codec}
}

// RenderEncodedPage рендерит страницу pageNumber (нумерация с 1) и
// возвращает ее JPEG-представление с параметрами конфигурации
func (r *PreviewRenderer) RenderEncodedPage(data []byte, pageNumber int, config *entities.CompressionConfig) ([]byte, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть документ: %w", err)
	}

	page, err := reader.GetPage(pageNumber)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить страницу %d: %w", pageNumber, err)
	}

	img, err := r.codec.RenderPage(page, config.Scale)
	if err != nil {
		return nil, err
	}

	return r.codec.Encode(img, config.Quality, config.Grayscale)
}
