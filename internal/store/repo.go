// Package store — реляционное зеркало сущностей и таблиц измерений.
// Все мутации — upsert по натуральным ключам; повторный прогон
// синхронизации не плодит строк.
package store

import (
	"errors"

	"hearth/internal/db"
	"hearth/internal/models"

	"gorm.io/gorm"
)

type Repo struct{ db *gorm.DB }

func NewRepo(gdb *gorm.DB) *Repo { return &Repo{db: gdb} }

// DB отдаёт соединение (health-ручки, тесты).
func (r *Repo) DB() *gorm.DB { return r.db }

// retryRelaxed — вторая попытка записи с отключённой проверкой FK.
// Битая ссылка портит одну строку, но не прогон.
func (r *Repo) retryRelaxed(write func(tx *gorm.DB) error) error {
	if err := write(r.db); err == nil {
		return nil
	}
	return db.WithRelaxedFK(r.db, write)
}

// ── Users ───────────────────────────────────────────────────

func (r *Repo) UpsertUser(userID string) error {
	if userID == "" {
		return errors.New("empty user id")
	}
	var u models.User
	tx := r.db.Where(&models.User{UserID: userID}).First(&u)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return r.db.Create(&models.User{UserID: userID}).Error
		}
		return tx.Error
	}
	// touch last_updated
	return r.db.Model(&u).Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

// ── Hubs ────────────────────────────────────────────────────

// UpsertHub пишет хаб, лениво создавая владельца. Пустой userID
// синтезируется как user_<hub_code> — локально владелец обязателен.
func (r *Repo) UpsertHub(hubID, hubCode, userID, homeType string) error {
	if userID == "" {
		userID = "user_" + hubCode
	}
	if err := r.UpsertUser(userID); err != nil {
		return err
	}

	write := func(tx *gorm.DB) error {
		var h models.Hub
		res := tx.Where(&models.Hub{HubID: hubID}).First(&h)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrRecordNotFound) {
				h = models.Hub{HubID: hubID, HubCode: hubCode, UserID: userID, HomeType: homeType}
				return tx.Create(&h).Error
			}
			return res.Error
		}
		h.HubCode = hubCode
		h.UserID = userID
		h.HomeType = homeType
		return tx.Save(&h).Error
	}
	return r.retryRelaxed(write)
}

func (r *Repo) HubByCode(hubCode string) (*models.Hub, error) {
	var h models.Hub
	if err := r.db.Where(&models.Hub{HubCode: hubCode}).First(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

// ── Devices ─────────────────────────────────────────────────

func (r *Repo) UpsertDevice(d models.Device) error {
	write := func(tx *gorm.DB) error {
		var m models.Device
		res := tx.Where(&models.Device{DeviceID: d.DeviceID}).First(&m)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrRecordNotFound) {
				return tx.Create(&d).Error
			}
			return res.Error
		}
		m.HubCode = d.HubCode
		m.DeviceType = d.DeviceType
		m.Status = d.Status
		return tx.Save(&m).Error
	}
	return r.retryRelaxed(write)
}

func (r *Repo) DevicesByHub(hubCode string) ([]models.Device, error) {
	var out []models.Device
	err := r.db.Where(&models.Device{HubCode: hubCode}).Order("device_id").Find(&out).Error
	return out, err
}

func (r *Repo) DeviceByID(deviceID string) (*models.Device, error) {
	var d models.Device
	if err := r.db.Where(&models.Device{DeviceID: deviceID}).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ── Rooms ───────────────────────────────────────────────────

// UpsertRoom пишет комнату и полностью заменяет её членство: прежние
// привязки устройств по room_id удаляются.
func (r *Repo) UpsertRoom(roomID, roomName, hubCode string, deviceIDs []string) error {
	write := func(tx *gorm.DB) error {
		return tx.Transaction(func(t *gorm.DB) error {
			var m models.Room
			res := t.Where(&models.Room{RoomID: roomID}).First(&m)
			if res.Error != nil {
				if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
					return res.Error
				}
				m = models.Room{RoomID: roomID}
			}
			m.RoomName = roomName
			m.HubCode = hubCode
			m.DeviceCount = len(deviceIDs)
			if err := t.Save(&m).Error; err != nil {
				return err
			}

			if err := t.Where("room_id = ?", roomID).Delete(&models.RoomDevice{}).Error; err != nil {
				return err
			}
			for _, id := range deviceIDs {
				if err := t.Create(&models.RoomDevice{RoomID: roomID, DeviceID: id}).Error; err != nil {
					return err
				}
			}
			return nil
		})
	}
	return r.retryRelaxed(write)
}

func (r *Repo) RoomByID(roomID string) (*models.Room, error) {
	var m models.Room
	if err := r.db.Where(&models.Room{RoomID: roomID}).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) RoomsByHub(hubCode string) ([]models.Room, error) {
	var out []models.Room
	err := r.db.Where(&models.Room{HubCode: hubCode}).Order("room_id").Find(&out).Error
	return out, err
}

// RoomDevices — устройства комнаты (join через room_devices).
func (r *Repo) RoomDevices(roomID string) ([]models.Device, error) {
	var out []models.Device
	err := r.db.
		Joins("JOIN room_devices rd ON rd.device_id = devices.device_id").
		Where("rd.room_id = ?", roomID).
		Order("devices.device_id").
		Find(&out).Error
	return out, err
}

// ── User hubs ───────────────────────────────────────────────

// HubWithSummary — хаб со сводкой rollup-таблицы.
type HubWithSummary struct {
	models.Hub
	DailyEnergy   float64 `json:"daily_energy"`
	WeeklyEnergy  float64 `json:"weekly_energy"`
	MonthlyEnergy float64 `json:"monthly_energy"`
	YearlyEnergy  float64 `json:"yearly_energy"`
	DeviceCount   int     `json:"device_count"`
}

func (r *Repo) UserHubs(userID string) ([]HubWithSummary, error) {
	var out []HubWithSummary
	err := r.db.Model(&models.Hub{}).
		Select(`hubs.*,
			COALESCE(hs.daily_energy, 0) AS daily_energy,
			COALESCE(hs.weekly_energy, 0) AS weekly_energy,
			COALESCE(hs.monthly_energy, 0) AS monthly_energy,
			COALESCE(hs.yearly_energy, 0) AS yearly_energy,
			COALESCE(hs.device_count, 0) AS device_count`).
		Joins("LEFT JOIN hub_summary hs ON hs.hub_code = hubs.hub_code").
		Where("hubs.user_id = ?", userID).
		Order("hubs.hub_code").
		Scan(&out).Error
	return out, err
}
