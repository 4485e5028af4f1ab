package history

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tensorkernel/PDFTools/internal/domain/entities"
)

// Record модель записи истории сжатия
type Record struct {
	ID             uint   `gorm:"primaryKey"`
	FileName       string `gorm:"index"`
	OriginalSize   int64
	CompressedSize int64
	StrategyUsed   string
	Iterations     int
	CreatedAt      time.Time
}

// Repository хранилище истории сжатия на SQLite
type Repository struct {
	db *gorm.DB
}

// NewRepository открывает базу истории и выполняет миграцию схемы
func NewRepository(dbPath string) (*Repository, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}

	return &Repository{db: db}, nil
}

// SaveRecord сохраняет запись об обработанном файле
func (r *Repository) SaveRecord(record *entities.HistoryRecord) error {
	return r.db.Create(&Record{
		FileName:       record.FileName,
		OriginalSize:   record.OriginalSize,
		CompressedSize: record.CompressedSize,
		StrategyUsed:   record.StrategyUsed,
		Iterations:     record.Iterations,
		CreatedAt:      record.CreatedAt,
	}).Error
}

// Totals возвращает агрегированную статистику по всей истории
func (r *Repository) Totals() (*entities.HistoryTotals, error) {
	var totals entities.HistoryTotals

	err := r.db.Model(&Record{}).
		Select("COUNT(*) AS total_files, COALESCE(SUM(original_size), 0) AS total_original_size, COALESCE(SUM(compressed_size), 0) AS total_compressed_size").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	return &totals, nil
}

// Close закрывает соединение с базой
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
