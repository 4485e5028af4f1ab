package compressors

import (
	"bytes"
	"fmt"

	"github.com/unidoc/unipdf/v3/model"
)

// serializePages сериализует документ, перенося страницы из reader в
// новый writer. Мутации потоков, выполненные на объектах reader,
// попадают в результат: writer пишет те же самые объекты.
func serializePages(reader *model.PdfReader) ([]byte, error) {
	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("не удалось получить количество страниц: %w", err)
	}

	writer := model.NewPdfWriter()
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("не удалось получить страницу %d: %w", i, err)
		}
		if err := writer.AddPage(page); err != nil {
			return nil, fmt.Errorf("не удалось добавить страницу %d: %w", i, err)
		}
	}

	var buf bytes.Buffer
	if err := writer.Write(&buf); err != nil {
		return nil, fmt.Errorf("ошибка записи документа: %w", err)
	}

	return buf.Bytes(), nil
}
