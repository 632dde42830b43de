package store

import (
	"errors"
	"time"

	"hearth/internal/models"

	"gorm.io/gorm"
)

// PeriodKeys — ключи периодов для момента времени. Неделя — ISO 8601;
// её год-недели около границы года расходится с календарным (29 декабря
// может лежать в неделе 1 следующего года), поэтому месячные и годовые
// ключи держат свой Year отдельно.
type PeriodKeys struct {
	Date     string // YYYY-MM-DD
	Year     int    // календарный год (monthly/yearly)
	WeekYear int    // ISO год-недели (weekly)
	Week     int
	Month    int
}

func KeysFor(now time.Time) PeriodKeys {
	weekYear, week := now.ISOWeek()
	return PeriodKeys{
		Date:     now.Format("2006-01-02"),
		Year:     now.Year(),
		WeekYear: weekYear,
		Week:     week,
		Month:    int(now.Month()),
	}
}

// ── Daily ───────────────────────────────────────────────────

// UpsertDailyEnergy — строка устройства за дату. Ключ (date, hub_code,
// device_id); существующая строка перезаписывается.
func (r *Repo) UpsertDailyEnergy(date, userID, hubCode, deviceID, deviceType string, energyKWh, usageHours float64) error {
	write := func(tx *gorm.DB) error {
		var row models.EnergyDaily
		res := tx.Where("date = ? AND hub_code = ? AND device_id = ?", date, hubCode, deviceID).First(&row)
		if res.Error != nil {
			if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
				return res.Error
			}
			row = models.EnergyDaily{Date: date, HubCode: hubCode, DeviceID: &deviceID}
		}
		row.UserID = userID
		row.DeviceType = deviceType
		row.EnergyKWh = energyKWh
		row.UsageHours = usageHours
		return tx.Save(&row).Error
	}
	return r.retryRelaxed(write)
}

// UpsertHubDailyTotal — агрегатная строка хаба (device_id NULL,
// device_type hub_total) плюс обновление rollup-сводки.
func (r *Repo) UpsertHubDailyTotal(date, userID, hubCode string, energyKWh, usageHours float64) error {
	if err := r.UpsertUser(userID); err != nil {
		return err
	}

	write := func(tx *gorm.DB) error {
		var row models.EnergyDaily
		res := tx.Where("date = ? AND hub_code = ? AND device_id IS NULL", date, hubCode).First(&row)
		if res.Error != nil {
			if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
				return res.Error
			}
			row = models.EnergyDaily{Date: date, HubCode: hubCode}
		}
		row.UserID = userID
		row.DeviceType = models.HubTotalType
		row.EnergyKWh = energyKWh
		row.UsageHours = usageHours
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		return r.refreshSummary(tx, hubCode, userID, func(s *models.HubSummary) {
			s.DailyEnergy = energyKWh
		})
	}
	return r.retryRelaxed(write)
}

func (r *Repo) refreshSummary(tx *gorm.DB, hubCode, userID string, apply func(*models.HubSummary)) error {
	var devCount int64
	_ = tx.Model(&models.Device{}).Where("hub_code = ?", hubCode).Count(&devCount).Error

	var s models.HubSummary
	res := tx.Where(&models.HubSummary{HubCode: hubCode}).First(&s)
	if res.Error != nil {
		if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return res.Error
		}
		s = models.HubSummary{HubCode: hubCode}
	}
	s.UserID = userID
	s.DeviceCount = int(devCount)
	apply(&s)
	return tx.Save(&s).Error
}

// DailyHubTotal — сохранённый итог хаба за дату, ok=false если строки нет.
func (r *Repo) DailyHubTotal(hubCode, date string) (models.EnergyDaily, bool, error) {
	var row models.EnergyDaily
	err := r.db.Where("date = ? AND hub_code = ? AND device_id IS NULL", date, hubCode).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.EnergyDaily{}, false, nil
		}
		return models.EnergyDaily{}, false, err
	}
	return row, true, nil
}

// DailyDeviceRows — строки устройств хаба за дату.
func (r *Repo) DailyDeviceRows(hubCode, date string) ([]models.EnergyDaily, error) {
	var out []models.EnergyDaily
	err := r.db.Where("date = ? AND hub_code = ? AND device_id IS NOT NULL", date, hubCode).
		Order("device_id").Find(&out).Error
	return out, err
}

// DailyDeviceRow — сохранённая строка одного устройства за дату.
func (r *Repo) DailyDeviceRow(deviceID, date string) (models.EnergyDaily, bool, error) {
	var row models.EnergyDaily
	err := r.db.Where("date = ? AND device_id = ?", date, deviceID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.EnergyDaily{}, false, nil
		}
		return models.EnergyDaily{}, false, err
	}
	return row, true, nil
}

// DailyRoomTotal — сумма сохранённых строк устройств комнаты за дату.
// stored=false, если ни одной строки нет (отличает «нет данных» от нуля).
func (r *Repo) DailyRoomTotal(roomID, date string) (total float64, stored bool, err error) {
	type agg struct {
		Total float64
		N     int64
	}
	var a agg
	err = r.db.Model(&models.EnergyDaily{}).
		Select("COALESCE(SUM(energy_kwh), 0) AS total, COUNT(*) AS n").
		Joins("JOIN room_devices rd ON rd.device_id = energy_daily.device_id").
		Where("rd.room_id = ? AND energy_daily.date = ?", roomID, date).
		Scan(&a).Error
	if err != nil {
		return 0, false, err
	}
	return a.Total, a.N > 0, nil
}

// ── Weekly / Monthly / Yearly ───────────────────────────────
//
// Синхронизация пишет только daily; эти таблицы заполняет отдельный
// периодный проход, отчётный слой читает их как есть.

func (r *Repo) UpsertWeeklyEnergy(year, week int, userID, hubCode, deviceID, deviceType string, energyKWh, usageHours float64) error {
	write := func(tx *gorm.DB) error {
		var row models.EnergyWeekly
		res := tx.Where("year = ? AND week = ? AND hub_code = ? AND device_id = ?", year, week, hubCode, deviceID).First(&row)
		if res.Error != nil {
			if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
				return res.Error
			}
			row = models.EnergyWeekly{Year: year, Week: week, HubCode: hubCode, DeviceID: &deviceID}
		}
		row.UserID = userID
		row.DeviceType = deviceType
		row.EnergyKWh = energyKWh
		row.UsageHours = usageHours
		return tx.Save(&row).Error
	}
	return r.retryRelaxed(write)
}

func (r *Repo) UpsertHubWeeklyTotal(year, week int, userID, hubCode string, energyKWh, usageHours float64) error {
	write := func(tx *gorm.DB) error {
		var row models.EnergyWeekly
		res := tx.Where("year = ? AND week = ? AND hub_code = ? AND device_id IS NULL", year, week, hubCode).First(&row)
		if res.Error != nil {
			if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
				return res.Error
			}
			row = models.EnergyWeekly{Year: year, Week: week, HubCode: hubCode}
		}
		row.UserID = userID
		row.DeviceType = models.HubTotalType
		row.EnergyKWh = energyKWh
		row.UsageHours = usageHours
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		return r.refreshSummary(tx, hubCode, userID, func(s *models.HubSummary) {
			s.WeeklyEnergy = energyKWh
		})
	}
	return r.retryRelaxed(write)
}

func (r *Repo) UpsertMonthlyEnergy(year, month int, userID, hubCode, deviceID, deviceType string, energyKWh, usageHours float64) error {
	write := func(tx *gorm.DB) error {
		var row models.EnergyMonthly
		res := tx.Where("year = ? AND month = ? AND hub_code = ? AND device_id = ?", year, month, hubCode, deviceID).First(&row)
		if res.Error != nil {
			if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
				return res.Error
			}
			row = models.EnergyMonthly{Year: year, Month: month, HubCode: hubCode, DeviceID: &deviceID}
		}
		row.UserID = userID
		row.DeviceType = deviceType
		row.EnergyKWh = energyKWh
		row.UsageHours = usageHours
		return tx.Save(&row).Error
	}
	return r.retryRelaxed(write)
}

func (r *Repo) UpsertHubMonthlyTotal(year, month int, userID, hubCode string, energyKWh, usageHours float64) error {
	write := func(tx *gorm.DB) error {
		var row models.EnergyMonthly
		res := tx.Where("year = ? AND month = ? AND hub_code = ? AND device_id IS NULL", year, month, hubCode).First(&row)
		if res.Error != nil {
			if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
				return res.Error
			}
			row = models.EnergyMonthly{Year: year, Month: month, HubCode: hubCode}
		}
		row.UserID = userID
		row.DeviceType = models.HubTotalType
		row.EnergyKWh = energyKWh
		row.UsageHours = usageHours
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		return r.refreshSummary(tx, hubCode, userID, func(s *models.HubSummary) {
			s.MonthlyEnergy = energyKWh
		})
	}
	return r.retryRelaxed(write)
}

func (r *Repo) UpsertYearlyEnergy(year int, userID, hubCode, deviceID, deviceType string, energyKWh, usageHours float64) error {
	write := func(tx *gorm.DB) error {
		var row models.EnergyYearly
		res := tx.Where("year = ? AND hub_code = ? AND device_id = ?", year, hubCode, deviceID).First(&row)
		if res.Error != nil {
			if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
				return res.Error
			}
			row = models.EnergyYearly{Year: year, HubCode: hubCode, DeviceID: &deviceID}
		}
		row.UserID = userID
		row.DeviceType = deviceType
		row.EnergyKWh = energyKWh
		row.UsageHours = usageHours
		return tx.Save(&row).Error
	}
	return r.retryRelaxed(write)
}

func (r *Repo) UpsertHubYearlyTotal(year int, userID, hubCode string, energyKWh, usageHours float64) error {
	write := func(tx *gorm.DB) error {
		var row models.EnergyYearly
		res := tx.Where("year = ? AND hub_code = ? AND device_id IS NULL", year, hubCode).First(&row)
		if res.Error != nil {
			if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
				return res.Error
			}
			row = models.EnergyYearly{Year: year, HubCode: hubCode}
		}
		row.UserID = userID
		row.DeviceType = models.HubTotalType
		row.EnergyKWh = energyKWh
		row.UsageHours = usageHours
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		return r.refreshSummary(tx, hubCode, userID, func(s *models.HubSummary) {
			s.YearlyEnergy = energyKWh
		})
	}
	return r.retryRelaxed(write)
}

// Per-period device lookups для "real" представления комнаты.

func (r *Repo) WeeklyDeviceRow(deviceID string, year, week int) (models.EnergyWeekly, bool, error) {
	var row models.EnergyWeekly
	err := r.db.Where("year = ? AND week = ? AND device_id = ?", year, week, deviceID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.EnergyWeekly{}, false, nil
		}
		return models.EnergyWeekly{}, false, err
	}
	return row, true, nil
}

func (r *Repo) MonthlyDeviceRow(deviceID string, year, month int) (models.EnergyMonthly, bool, error) {
	var row models.EnergyMonthly
	err := r.db.Where("year = ? AND month = ? AND device_id = ?", year, month, deviceID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.EnergyMonthly{}, false, nil
		}
		return models.EnergyMonthly{}, false, err
	}
	return row, true, nil
}

func (r *Repo) YearlyDeviceRow(deviceID string, year int) (models.EnergyYearly, bool, error) {
	var row models.EnergyYearly
	err := r.db.Where("year = ? AND device_id = ?", year, deviceID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.EnergyYearly{}, false, nil
		}
		return models.EnergyYearly{}, false, err
	}
	return row, true, nil
}

// ── Summary / Top consumers ─────────────────────────────────

// SummaryTotals — суммы hub_total строк пользователя по текущим периодам.
// Отсутствующий период — ноль.
func (r *Repo) SummaryTotals(userID string, keys PeriodKeys) (daily, weekly, monthly, yearly float64, err error) {
	sum := func(dest *float64, model any, q string, args ...any) error {
		return r.db.Model(model).
			Select("COALESCE(SUM(energy_kwh), 0)").
			Where(q, args...).
			Scan(dest).Error
	}
	if err = sum(&daily, &models.EnergyDaily{}, "user_id = ? AND date = ? AND device_id IS NULL", userID, keys.Date); err != nil {
		return
	}
	if err = sum(&weekly, &models.EnergyWeekly{}, "user_id = ? AND year = ? AND week = ? AND device_id IS NULL", userID, keys.WeekYear, keys.Week); err != nil {
		return
	}
	if err = sum(&monthly, &models.EnergyMonthly{}, "user_id = ? AND year = ? AND month = ? AND device_id IS NULL", userID, keys.Year, keys.Month); err != nil {
		return
	}
	err = sum(&yearly, &models.EnergyYearly{}, "user_id = ? AND year = ? AND device_id IS NULL", userID, keys.Year)
	return
}

// TopConsumerRow — строка топа потребителей с контекстом устройства и хаба.
type TopConsumerRow struct {
	DeviceID   string  `json:"device_id"`
	DeviceType string  `json:"device_type"`
	HubCode    string  `json:"hub_code"`
	EnergyKWh  float64 `json:"energy_kwh"`
	Status     bool    `json:"status"`
	HomeType   string  `json:"home_type"`
}

// TopConsumers — топ-N устройств пользователя за период, по убыванию
// энергии. limit ограничивает вызывающая сторона.
func (r *Repo) TopConsumers(userID, period string, limit int, keys PeriodKeys) ([]TopConsumerRow, error) {
	sel := "e.device_id, e.device_type, e.hub_code, e.energy_kwh, d.status, h.home_type"
	joins := "JOIN devices d ON e.device_id = d.device_id JOIN hubs h ON e.hub_code = h.hub_code"

	var (
		table string
		where string
		args  []any
	)
	switch period {
	case "daily":
		table = "energy_daily"
		where = "e.user_id = ? AND e.date = ? AND e.device_id IS NOT NULL"
		args = []any{userID, keys.Date}
	case "weekly":
		table = "energy_weekly"
		where = "e.user_id = ? AND e.year = ? AND e.week = ? AND e.device_id IS NOT NULL"
		args = []any{userID, keys.WeekYear, keys.Week}
	case "monthly":
		table = "energy_monthly"
		where = "e.user_id = ? AND e.year = ? AND e.month = ? AND e.device_id IS NOT NULL"
		args = []any{userID, keys.Year, keys.Month}
	case "yearly":
		table = "energy_yearly"
		where = "e.user_id = ? AND e.year = ? AND e.device_id IS NOT NULL"
		args = []any{userID, keys.Year}
	default:
		return nil, errors.New("unknown period: " + period)
	}

	var out []TopConsumerRow
	err := r.db.Table(table+" AS e").
		Select(sel).
		Joins(joins).
		Where(where, args...).
		Order("e.energy_kwh DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
