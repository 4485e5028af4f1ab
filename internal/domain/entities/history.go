package entities

import "time"

// HistoryRecord запись истории сжатия одного файла
type HistoryRecord struct {
	FileName       string
	OriginalSize   int64
	CompressedSize int64
	StrategyUsed   string
	Iterations     int
	CreatedAt      time.Time
}

// HistoryTotals агрегированная статистика истории сжатия
type HistoryTotals struct {
	TotalFiles          int64
	TotalOriginalSize   int64
	TotalCompressedSize int64
}

// SavedSpace возвращает суммарно сэкономленное место
func (t *HistoryTotals) SavedSpace() int64 {
	return t.TotalOriginalSize - t.TotalCompressedSize
}
