package rendering

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"math"

	"github.com/nfnt/resize"
	"github.com/unidoc/unipdf/v3/model"
	"github.com/unidoc/unipdf/v3/render"
)

// RasterCodec адаптер рендеринга и lossy-кодирования страниц.
// Рендеринг делегируется UniPDF, логика применения параметров
// кодирования (масштаб, качество, оттенки серого, белый фон) - своя.
type RasterCodec struct{}

// NewRasterCodec создает новый кодек растеризации
func NewRasterCodec() *RasterCodec {
	return &RasterCodec{}
}

// RenderPage рендерит страницу в пиксельный буфер с заданным масштабом.
// Ширина результата равна round(ширина страницы * scale), минимум 1 пиксель.
func (c *RasterCodec) RenderPage(page *model.PdfPage, scale float64) (image.Image, error) {
	mediaBox, err := page.GetMediaBox()
	if err != nil {
		return nil, fmt.Errorf("не удалось получить размеры страницы: %w", err)
	}

	widthPts := mediaBox.Urx - mediaBox.Llx
	if widthPts < 0 {
		widthPts = -widthPts
	}

	device := render.NewImageDevice()
	device.OutputWidth = scaledDimension(widthPts, scale)

	img, err := device.Render(page)
	if err != nil {
		return nil, fmt.Errorf("ошибка рендеринга страницы: %w", err)
	}

	return img, nil
}

// Encode кодирует пиксельный буфер в JPEG с заданным качеством.
// Прозрачные области заливаются непрозрачным белым: у JPEG нет
// альфа-канала, а черная заливка прозрачности визуально неверна.
func (c *RasterCodec) Encode(img image.Image, quality float64, grayscale bool) ([]byte, error) {
	composited := compositeOnWhite(img)

	var finalImg image.Image = composited
	if grayscale {
		finalImg = toGrayscale(composited)
	}

	var buf bytes.Buffer
	options := &jpeg.Options{Quality: jpegQuality(quality)}
	if err := jpeg.Encode(&buf, finalImg, options); err != nil {
		return nil, fmt.Errorf("не удалось закодировать JPEG: %w", err)
	}

	return buf.Bytes(), nil
}

// Downsample уменьшает изображение до round(размер * scale), минимум 1x1.
// Увеличение никогда не выполняется: раздувать встроенное изображение
// ради номинального масштаба бессмысленно.
func (c *RasterCodec) Downsample(img image.Image, scale float64) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	newWidth := scaledDimension(float64(width), scale)
	newHeight := scaledDimension(float64(height), scale)

	if newWidth >= width || newHeight >= height {
		return img
	}

	return resize.Resize(uint(newWidth), uint(newHeight), img, resize.Lanczos3)
}

// scaledDimension возвращает round(size * scale), минимум 1
func scaledDimension(size, scale float64) int {
	scaled := int(math.Round(size * scale))
	if scaled < 1 {
		scaled = 1
	}
	return scaled
}

// jpegQuality переводит качество 0..1 в параметр stdlib-кодировщика 1..100
func jpegQuality(quality float64) int {
	q := int(math.Round(quality * 100))
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}
	return q
}

// compositeOnWhite накладывает изображение на непрозрачный белый фон
func compositeOnWhite(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	composited := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(composited, composited.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(composited, composited.Bounds(), img, bounds.Min, draw.Over)
	return composited
}

// toGrayscale преобразует изображение точным усреднением каналов
func toGrayscale(img *image.RGBA) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			avg := (r + g + b) / 3
			gray.SetGray(x, y, color.Gray{Y: uint8(avg >> 8)})
		}
	}

	return gray
}
