// Package rating — статическая таблица потребления по типам устройств.
package rating

import "strings"

// Rates — kWh за час работы по типу устройства.
var Rates = map[string]float64{
	"ac":             1.5, // air conditioner
	"airconditioner": 1.5, // alternative name
	"dishwasher":     1.0,
	"tv":             0.1,
	"light":          0.06,
	"thermostat":     0.05,
	"fan":            0.03,
	"door":           0.01, // smart door
	"smartdoor":      0.01, // alternative name
	"heatconvector":  1.2,
	"washingmachine": 0.5,
	"speaker":        0.1,
}

// Rate возвращает часовой тариф для типа устройства, без учёта регистра.
// Неизвестный тип — 0.0 (единый дефолт всех путей расчёта).
func Rate(deviceType string) float64 {
	return Rates[strings.ToLower(strings.TrimSpace(deviceType))]
}

// DailyHours — принятая наработка за сутки. Круглосуточный класс —
// термостаты и умные двери, остальным даётся 10 часов.
func DailyHours(deviceType string) float64 {
	switch strings.ToLower(strings.TrimSpace(deviceType)) {
	case "thermostat", "door", "smartdoor":
		return 24.0
	default:
		return 10.0
	}
}

// Multiplier — экстраполяция суточной цифры на период.
func Multiplier(period string) float64 {
	switch period {
	case "weekly":
		return 7
	case "monthly":
		return 30
	case "yearly":
		return 365
	default:
		return 1
	}
}

// Periods в порядке отчётов.
var Periods = []string{"daily", "weekly", "monthly", "yearly"}

// ValidPeriod проверяет имя периода для top-consumers и отчётов.
func ValidPeriod(p string) bool {
	for _, v := range Periods {
		if v == p {
			return true
		}
	}
	return false
}
