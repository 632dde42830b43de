package models

import "time"

// HubTotalType помечает агрегатную строку хаба (device_id IS NULL).
const HubTotalType = "hub_total"

// EnergyDaily — одна строка на (date, hub_code, device_id). device_id NULL —
// это hub_total. Логический ключ держится upsert-семантикой, не констрейнтом,
// поэтому строки остаются на суррогатном id.
type EnergyDaily struct {
	ID         uint    `gorm:"primaryKey" json:"-"`
	Date       string  `gorm:"column:date;index" json:"date"` // YYYY-MM-DD
	UserID     string  `gorm:"column:user_id;index" json:"user_id"`
	HubCode    string  `gorm:"column:hub_code;index" json:"hub_code"`
	DeviceID   *string `gorm:"column:device_id" json:"device_id"`
	DeviceType string  `gorm:"column:device_type" json:"device_type"`
	EnergyKWh  float64 `gorm:"column:energy_kwh" json:"energy_kwh"`
	UsageHours float64 `gorm:"column:usage_hours" json:"usage_hours"`
}

func (EnergyDaily) TableName() string { return "energy_daily" }

type EnergyWeekly struct {
	ID         uint    `gorm:"primaryKey" json:"-"`
	Year       int     `gorm:"column:year;index" json:"year"`
	Week       int     `gorm:"column:week;index" json:"week"`
	UserID     string  `gorm:"column:user_id;index" json:"user_id"`
	HubCode    string  `gorm:"column:hub_code;index" json:"hub_code"`
	DeviceID   *string `gorm:"column:device_id" json:"device_id"`
	DeviceType string  `gorm:"column:device_type" json:"device_type"`
	EnergyKWh  float64 `gorm:"column:energy_kwh" json:"energy_kwh"`
	UsageHours float64 `gorm:"column:usage_hours" json:"usage_hours"`
}

func (EnergyWeekly) TableName() string { return "energy_weekly" }

type EnergyMonthly struct {
	ID         uint    `gorm:"primaryKey" json:"-"`
	Year       int     `gorm:"column:year;index" json:"year"`
	Month      int     `gorm:"column:month;index" json:"month"`
	UserID     string  `gorm:"column:user_id;index" json:"user_id"`
	HubCode    string  `gorm:"column:hub_code;index" json:"hub_code"`
	DeviceID   *string `gorm:"column:device_id" json:"device_id"`
	DeviceType string  `gorm:"column:device_type" json:"device_type"`
	EnergyKWh  float64 `gorm:"column:energy_kwh" json:"energy_kwh"`
	UsageHours float64 `gorm:"column:usage_hours" json:"usage_hours"`
}

func (EnergyMonthly) TableName() string { return "energy_monthly" }

type EnergyYearly struct {
	ID         uint    `gorm:"primaryKey" json:"-"`
	Year       int     `gorm:"column:year;index" json:"year"`
	UserID     string  `gorm:"column:user_id;index" json:"user_id"`
	HubCode    string  `gorm:"column:hub_code;index" json:"hub_code"`
	DeviceID   *string `gorm:"column:device_id" json:"device_id"`
	DeviceType string  `gorm:"column:device_type" json:"device_type"`
	EnergyKWh  float64 `gorm:"column:energy_kwh" json:"energy_kwh"`
	UsageHours float64 `gorm:"column:usage_hours" json:"usage_hours"`
}

func (EnergyYearly) TableName() string { return "energy_yearly" }

// HubSummary — денормализованная сводка по хабу, обновляется каждым проходом.
type HubSummary struct {
	HubCode       string  `gorm:"column:hub_code;primaryKey" json:"hub_code"`
	UserID        string  `gorm:"column:user_id;index" json:"user_id"`
	DailyEnergy   float64 `gorm:"column:daily_energy" json:"daily_energy"`
	WeeklyEnergy  float64 `gorm:"column:weekly_energy" json:"weekly_energy"`
	MonthlyEnergy float64 `gorm:"column:monthly_energy" json:"monthly_energy"`
	YearlyEnergy  float64 `gorm:"column:yearly_energy" json:"yearly_energy"`
	DeviceCount   int     `gorm:"column:device_count" json:"device_count"`
	UpdatedAt     time.Time
}

func (HubSummary) TableName() string { return "hub_summary" }
