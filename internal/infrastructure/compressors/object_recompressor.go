package compressors

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"

	"github.com/unidoc/unipdf/v3/core"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/tensorkernel/PDFTools/internal/domain/entities"
	"github.com/tensorkernel/PDFTools/internal/domain/repositories"
	"github.com/tensorkernel/PDFTools/internal/infrastructure/rendering"
)

// ObjectRecompressor стратегия пообъектного сжатия: проходит граф
// объектов документа и пережимает встроенные DCT/JPEG-изображения
// с меньшим разрешением и качеством. Нетронутыми остаются все
// неизображения - текст, векторная графика, шрифты, аннотации.
type ObjectRecompressor struct {
	codec  *rendering.RasterCodec
	logger repositories.Logger
}

// NewObjectRecompressor создает новую стратегию пообъектного сжатия
func NewObjectRecompressor(codec *rendering.RasterCodec, logger repositories.Logger) *ObjectRecompressor {
	return &ObjectRecompressor{
		codec:  codec,
		logger: logger,
	}
}

// Label возвращает метку стратегии
func (s *ObjectRecompressor) Label() string {
	return entities.StrategySmartObject
}

// Apply пережимает пригодные потоки изображений и сериализует документ.
// Ошибка на отдельном потоке не фатальна: поток пропускается, проход
// продолжается. Если пригодных потоков нет, результат эквивалентен
// обычной пересериализации.
func (s *ObjectRecompressor) Apply(ctx context.Context, data []byte, config *entities.CompressionConfig) ([]byte, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrDocumentLoad, err)
	}

	recompressed := 0
	skipped := 0

	for _, num := range reader.GetObjectNums() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		obj, err := reader.GetIndirectObjectByNumber(num)
		if err != nil {
			return nil, fmt.Errorf("ошибка обхода графа объектов: %w", err)
		}

		stream, ok := core.GetStream(obj)
		if !ok || !isRecompressibleImage(stream) {
			continue
		}

		if err := s.recompressStream(stream, config); err != nil {
			skipped++
			if s.logger != nil {
				s.logger.Warning("Поток изображения %d пропущен: %v", num, err)
			}
			continue
		}
		recompressed++
	}

	if s.logger != nil {
		s.logger.Debug("Пообъектное сжатие: пережато %d, пропущено %d потоков", recompressed, skipped)
	}

	return serializePages(reader)
}

// isRecompressibleImage проверяет пригодность потока для пережатия.
// Пригоден только поток изображения с единственным фильтром DCTDecode:
// его payload - готовый JPEG. Пережатие прочих фильтров потребовало бы
// декодирования неизвестного цветового пространства.
func isRecompressibleImage(stream *core.PdfObjectStream) bool {
	dict := stream.PdfObjectDictionary
	if dict == nil {
		return false
	}

	subtype, ok := core.GetName(dict.Get("Subtype"))
	if !ok || subtype.String() != "Image" {
		return false
	}

	filterObj := dict.Get("Filter")
	if name, ok := core.GetName(filterObj); ok {
		return name.String() == core.StreamEncodingFilterNameDCT
	}

	// Цепочка фильтров: пережимаем только одиночный DCTDecode,
	// иначе payload не является сырым JPEG
	if arr, ok := core.GetArray(filterObj); ok && arr.Len() == 1 {
		if name, ok := core.GetName(arr.Get(0)); ok {
			return name.String() == core.StreamEncodingFilterNameDCT
		}
	}

	return false
}

// recompressStream пережимает один поток изображения на месте.
// Замена принимается только если новая кодировка строго меньше
// исходной, иначе поток остается нетронутым.
func (s *ObjectRecompressor) recompressStream(stream *core.PdfObjectStream, config *entities.CompressionConfig) error {
	img, err := jpeg.Decode(bytes.NewReader(stream.Stream))
	if err != nil {
		return fmt.Errorf("не удалось декодировать JPEG поток: %w", err)
	}

	resized := s.codec.Downsample(img, config.Scale)

	// Цветовое пространство не меняем: словарь потока объявляет его
	// независимо от параметров кодирования
	encoded, err := s.codec.Encode(resized, config.Quality, false)
	if err != nil {
		return fmt.Errorf("не удалось закодировать JPEG поток: %w", err)
	}

	if len(encoded) >= len(stream.Stream) {
		return nil
	}

	bounds := resized.Bounds()
	stream.Stream = encoded
	stream.PdfObjectDictionary.Set("Width", core.MakeInteger(int64(bounds.Dx())))
	stream.PdfObjectDictionary.Set("Height", core.MakeInteger(int64(bounds.Dy())))
	stream.PdfObjectDictionary.Set("Length", core.MakeInteger(int64(len(encoded))))

	return nil
}
