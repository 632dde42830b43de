package db

import (
	"fmt"

	"hearth/internal/models"

	"gorm.io/gorm"
)

// Migrate прогоняет AutoMigrate по всем доменным таблицам.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		// entities
		&models.User{},
		&models.Hub{},
		&models.Device{},
		&models.Room{},
		&models.RoomDevice{},

		// period measurements + rollup
		&models.EnergyDaily{},
		&models.EnergyWeekly{},
		&models.EnergyMonthly{},
		&models.EnergyYearly{},
		&models.HubSummary{},
	)
}

// EnsureMeasurementIndexes добавляет составные индексы под частые выборки
// отчётного слоя. AutoMigrate их не строит (логический ключ измерений не
// объявлен уникальным — см. семантику insert-or-replace).
func EnsureMeasurementIndexes(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	dialect := db.Dialector.Name()

	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_energy_daily_key ON energy_daily (date, hub_code)`,
		`CREATE INDEX IF NOT EXISTS idx_energy_weekly_key ON energy_weekly (year, week, hub_code)`,
		`CREATE INDEX IF NOT EXISTS idx_energy_monthly_key ON energy_monthly (year, month, hub_code)`,
		`CREATE INDEX IF NOT EXISTS idx_energy_yearly_key ON energy_yearly (year, hub_code)`,
	}

	switch dialect {
	case "sqlite", "postgres":
		for _, s := range stmts {
			if err := db.Exec(s).Error; err != nil {
				return fmt.Errorf("measurement index: %w", err)
			}
		}
	case "mysql":
		// В MySQL нет IF NOT EXISTS для индексов — ошибки дубликата глотаем.
		for _, s := range stmts {
			_ = db.Exec(stripIfNotExists(s)).Error
		}
	default:
		return fmt.Errorf("unsupported dialect: %s", dialect)
	}
	return nil
}

func stripIfNotExists(s string) string {
	const marker = "IF NOT EXISTS "
	for i := 0; i+len(marker) <= len(s); i++ {
		if s[i:i+len(marker)] == marker {
			return s[:i] + s[i+len(marker):]
		}
	}
	return s
}
