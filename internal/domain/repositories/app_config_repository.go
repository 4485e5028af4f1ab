package repositories

import "github.com/tensorkernel/PDFTools/internal/domain/entities"

// AppConfigRepository интерфейс для работы с конфигурацией приложения
type AppConfigRepository interface {
	Load(configPath string) (*entities.Config, error)
	Save(configPath string, config *entities.Config) error
}
