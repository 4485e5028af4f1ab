package entities

import "errors"

// Доменные ошибки
var (
	ErrInvalidScale       = errors.New("коэффициент разрешения должен быть больше нуля")
	ErrInvalidQuality     = errors.New("качество должно быть в диапазоне (0, 1]")
	ErrInvalidSliderValue = errors.New("значение слайдера должно быть от 0 до 100")
	ErrDocumentLoad       = errors.New("не удалось загрузить PDF документ")
	ErrEmptyDocument      = errors.New("документ не содержит страниц")
	ErrFileNotFound       = errors.New("файл не найден")
	ErrInvalidFileFormat  = errors.New("неверный формат файла")
	ErrCompressionFailed  = errors.New("ошибка сжатия файла")
	ErrDirectoryNotFound  = errors.New("директория не найдена")
	ErrNoFilesFound       = errors.New("PDF файлы не найдены")
)
