package compressors

import (
	"bytes"
	"context"
	"fmt"

	"github.com/unidoc/unipdf/v3/creator"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/tensorkernel/PDFTools/internal/domain/entities"
	"github.com/tensorkernel/PDFTools/internal/domain/repositories"
	"github.com/tensorkernel/PDFTools/internal/infrastructure/rendering"
)

// VisualReconstructor стратегия полной растеризации: собирает новый
// документ, в котором каждая страница заменена одним полностраничным
// JPEG. Текст перестает выделяться, зато размер результата предсказуем -
// поэтому оркестратор использует эту стратегию как гарантированный
// запасной вариант.
type VisualReconstructor struct {
	codec  *rendering.RasterCodec
	logger repositories.Logger
}

// NewVisualReconstructor создает новую стратегию растеризации
func NewVisualReconstructor(codec *rendering.RasterCodec, logger repositories.Logger) *VisualReconstructor {
	return &VisualReconstructor{
		codec:  codec,
		logger: logger,
	}
}

// Label возвращает метку стратегии
func (s *VisualReconstructor) Label() string {
	return entities.StrategyVisual
}

// Apply рендерит каждую страницу с масштабом конфигурации и собирает
// новый документ с исходными размерами страниц. Страницы обрабатываются
// последовательно; контекст проверяется между страницами - это
// естественная гранулярность отмены.
func (s *VisualReconstructor) Apply(ctx context.Context, data []byte, config *entities.CompressionConfig) ([]byte, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrDocumentLoad, err)
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("не удалось получить количество страниц: %w", err)
	}
	if numPages == 0 {
		return nil, entities.ErrEmptyDocument
	}

	c := creator.New()

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := reader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("не удалось получить страницу %d: %w", i, err)
		}

		if err := s.rebuildPage(c, page, config); err != nil {
			return nil, fmt.Errorf("ошибка реконструкции страницы %d: %w", i, err)
		}
	}

	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		return nil, fmt.Errorf("ошибка записи документа: %w", err)
	}

	return buf.Bytes(), nil
}

// rebuildPage рендерит одну страницу и добавляет ее в собираемый документ
// страницей того же размера с единственным полностраничным изображением
func (s *VisualReconstructor) rebuildPage(c *creator.Creator, page *model.PdfPage, config *entities.CompressionConfig) error {
	mediaBox, err := page.GetMediaBox()
	if err != nil {
		return fmt.Errorf("не удалось получить размеры страницы: %w", err)
	}

	pageWidth := mediaBox.Urx - mediaBox.Llx
	pageHeight := mediaBox.Ury - mediaBox.Lly

	img, err := s.codec.RenderPage(page, config.Scale)
	if err != nil {
		return err
	}

	encoded, err := s.codec.Encode(img, config.Quality, config.Grayscale)
	if err != nil {
		return err
	}

	c.SetPageSize(creator.PageSize{pageWidth, pageHeight})
	c.NewPage()

	pageImg, err := c.NewImageFromData(encoded)
	if err != nil {
		return fmt.Errorf("не удалось встроить изображение страницы: %w", err)
	}

	pageImg.SetPos(0, 0)
	pageImg.SetWidth(pageWidth)
	pageImg.SetHeight(pageHeight)

	if err := c.Draw(pageImg); err != nil {
		return fmt.Errorf("не удалось отрисовать изображение страницы: %w", err)
	}

	return nil
}
