package reports

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"hearth/internal/logs"
	"hearth/internal/models"
	"hearth/internal/rating"
	"hearth/internal/remote"
	"hearth/internal/store"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrWrongHomeType     = errors.New("wrong home type")
	ErrRemoteUnavailable = errors.New("remote store unavailable")
)

// remoteErr нормализует ошибки удалённого хранилища для хендлеров.
func remoteErr(err error) error {
	if errors.Is(err, remote.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
}

const (
	ViewSimulated = "simulated"
	ViewReal      = "real"
)

// Service — читающий слой поверх зеркала: оценки энергии по хабам,
// комнатам и устройствам плюс сквозные чтения из удалённого хранилища.
type Service struct {
	store  *store.Repo
	remote remote.Client
	now    func() time.Time

	// rand.Rand не потокобезопасен, а отчёты ходят из параллельных запросов
	rndMu sync.Mutex
	rnd   *rand.Rand

	// диапазон подстановки для админ-представления, когда по юниту
	// нет ни зеркала, ни устройств
	fallbackMin float64
	fallbackMax float64
}

func NewService(st *store.Repo, rc remote.Client, fallbackMin, fallbackMax float64) *Service {
	if fallbackMax < fallbackMin {
		fallbackMin, fallbackMax = fallbackMax, fallbackMin
	}
	return &Service{
		store:       st,
		remote:      rc,
		now:         time.Now,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		fallbackMin: fallbackMin,
		fallbackMax: fallbackMax,
	}
}

// PeriodEnergy — оценка по четырём периодам, кВт·ч.
type PeriodEnergy struct {
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"`
}

func (p *PeriodEnergy) add(q PeriodEnergy) {
	p.Daily += q.Daily
	p.Weekly += q.Weekly
	p.Monthly += q.Monthly
	p.Yearly += q.Yearly
}

func extrapolate(daily float64) PeriodEnergy {
	return PeriodEnergy{
		Daily:   daily,
		Weekly:  daily * rating.Multiplier("weekly"),
		Monthly: daily * rating.Multiplier("monthly"),
		Yearly:  daily * rating.Multiplier("yearly"),
	}
}

// ── Summary ─────────────────────────────────────────────────

type Summary struct {
	UserID  string                 `json:"user_id"`
	Daily   float64                `json:"daily"`
	Weekly  float64                `json:"weekly"`
	Monthly float64                `json:"monthly"`
	Yearly  float64                `json:"yearly"`
	Hubs    []store.HubWithSummary `json:"hubs"`
}

// EnergySummary — суммы hub_total строк пользователя по текущим периодам
// плюс его хабы; без данных все значения нулевые.
func (s *Service) EnergySummary(userID string) (Summary, error) {
	keys := store.KeysFor(s.now())
	daily, weekly, monthly, yearly, err := s.store.SummaryTotals(userID, keys)
	if err != nil {
		return Summary{}, err
	}
	hubs, err := s.UserHubs(userID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		UserID:  userID,
		Daily:   daily,
		Weekly:  weekly,
		Monthly: monthly,
		Yearly:  yearly,
		Hubs:    hubs,
	}, nil
}

// TopConsumers — топ-N устройств пользователя за период.
func (s *Service) TopConsumers(userID, period string, limit int) ([]store.TopConsumerRow, error) {
	if !rating.ValidPeriod(period) {
		return nil, errors.New("invalid period: " + period)
	}
	rows, err := s.store.TopConsumers(userID, period, limit, store.KeysFor(s.now()))
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []store.TopConsumerRow{}
	}
	return rows, nil
}

// ── Hub view (tenant) ───────────────────────────────────────

type RoomEnergy struct {
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name"`
	PeriodEnergy
}

type HubEnergyView struct {
	HubCode string       `json:"hub_code"`
	View    string       `json:"view"`
	Rooms   []RoomEnergy `json:"rooms"`
	Total   PeriodEnergy `json:"total"`
}

// HubEnergyView — покомнатная раскладка обычного хаба. Для admin-хаба
// возвращает ErrWrongHomeType: его юниты живут в AdminHubEnergyView.
func (s *Service) HubEnergyView(hubCode, view string) (HubEnergyView, error) {
	hub, err := s.store.HubByCode(hubCode)
	if err != nil {
		return HubEnergyView{}, ErrNotFound
	}
	if hub.HomeType == models.HomeTypeAdmin {
		return HubEnergyView{}, ErrWrongHomeType
	}

	rooms, err := s.store.RoomsByHub(hubCode)
	if err != nil {
		return HubEnergyView{}, err
	}

	out := HubEnergyView{HubCode: hubCode, View: view, Rooms: []RoomEnergy{}}
	for _, room := range rooms {
		devices, err := s.store.RoomDevices(room.RoomID)
		if err != nil {
			return HubEnergyView{}, err
		}
		pe := s.roomPeriods(room.RoomID, devices, view)
		out.Rooms = append(out.Rooms, RoomEnergy{RoomID: room.RoomID, RoomName: room.RoomName, PeriodEnergy: pe})
		out.Total.add(pe)
	}
	return out, nil
}

func (s *Service) roomPeriods(roomID string, devices []models.Device, view string) PeriodEnergy {
	if view == ViewReal {
		// real на уровне хаба: только суточный период из сохранённых
		// строк, без экстраполяции и без недельных/месячных таблиц
		var pe PeriodEnergy
		for _, dev := range devices {
			if row, ok, err := s.store.DailyDeviceRow(dev.DeviceID, s.today()); err == nil && ok {
				pe.Daily += row.EnergyKWh
			}
		}
		return pe
	}

	// simulated: тарифный расчёт на все периоды; сохранённый дневной
	// итог комнаты заменяет только суточную цифру
	daily := 0.0
	for _, dev := range devices {
		daily += rating.Rate(dev.DeviceType) * rating.DailyHours(dev.DeviceType)
	}
	pe := extrapolate(daily)
	if stored, ok, err := s.store.DailyRoomTotal(roomID, s.today()); err == nil && ok {
		pe.Daily = stored
	}
	return pe
}

func (s *Service) storedDevicePeriods(deviceID string) PeriodEnergy {
	keys := store.KeysFor(s.now())
	var pe PeriodEnergy
	if row, ok, err := s.store.DailyDeviceRow(deviceID, keys.Date); err == nil && ok {
		pe.Daily = row.EnergyKWh
	}
	if row, ok, err := s.store.WeeklyDeviceRow(deviceID, keys.WeekYear, keys.Week); err == nil && ok {
		pe.Weekly = row.EnergyKWh
	}
	if row, ok, err := s.store.MonthlyDeviceRow(deviceID, keys.Year, keys.Month); err == nil && ok {
		pe.Monthly = row.EnergyKWh
	}
	if row, ok, err := s.store.YearlyDeviceRow(deviceID, keys.Year); err == nil && ok {
		pe.Yearly = row.EnergyKWh
	}
	return pe
}

// ── Room view ───────────────────────────────────────────────

type DeviceEnergy struct {
	DeviceID   string `json:"device_id"`
	DeviceType string `json:"device_type"`
	PeriodEnergy
	HourlyRate float64 `json:"hourly_rate"`
}

type RoomEnergyView struct {
	RoomID   string         `json:"room_id"`
	RoomName string         `json:"room_name"`
	HubCode  string         `json:"hub_code"`
	View     string         `json:"view"`
	Devices  []DeviceEnergy `json:"devices"`
	Total    PeriodEnergy   `json:"total"`
}

// RoomEnergyView — поустройственная раскладка комнаты.
func (s *Service) RoomEnergyView(roomID, view string) (RoomEnergyView, error) {
	room, err := s.store.RoomByID(roomID)
	if err != nil {
		return RoomEnergyView{}, ErrNotFound
	}
	devices, err := s.store.RoomDevices(roomID)
	if err != nil {
		return RoomEnergyView{}, err
	}

	out := RoomEnergyView{
		RoomID:   room.RoomID,
		RoomName: room.RoomName,
		HubCode:  room.HubCode,
		View:     view,
		Devices:  []DeviceEnergy{},
	}
	for _, dev := range devices {
		de := DeviceEnergy{DeviceID: dev.DeviceID, DeviceType: dev.DeviceType}
		if view == ViewReal {
			de.PeriodEnergy = s.storedDevicePeriods(dev.DeviceID)
			de.HourlyRate = 0
			if row, ok, err := s.store.DailyDeviceRow(dev.DeviceID, s.today()); err == nil && ok && row.UsageHours > 0 {
				de.HourlyRate = row.EnergyKWh / row.UsageHours
			}
		} else {
			rate := rating.Rate(dev.DeviceType)
			de.PeriodEnergy = extrapolate(rate * rating.DailyHours(dev.DeviceType))
			de.HourlyRate = rate
			// сохранённая суточная строка вытесняет только daily
			if row, ok, err := s.store.DailyDeviceRow(dev.DeviceID, s.today()); err == nil && ok {
				de.Daily = row.EnergyKWh
			}
		}
		out.Devices = append(out.Devices, de)
		out.Total.add(de.PeriodEnergy)
	}
	return out, nil
}

// ── Admin hub view ──────────────────────────────────────────

type UnitEnergy struct {
	Unit string `json:"unit"`
	PeriodEnergy
	Estimated bool `json:"estimated"`
}

type AdminHubEnergyView struct {
	HubCode string       `json:"hub_code"`
	Units   []UnitEnergy `json:"units"`
	Total   PeriodEnergy `json:"total"`
}

// AdminHubEnergyView — сводка по юнитам админ-хаба. Список юнитов живёт
// только в удалённом документе хаба. По каждому юниту: сохранённый
// дневной итог, иначе расчёт по устройствам, иначе случайная
// подстановка из настроенного диапазона.
func (s *Service) AdminHubEnergyView(ctx context.Context, hubCode string) (AdminHubEnergyView, error) {
	hub, err := s.store.HubByCode(hubCode)
	if err != nil {
		return AdminHubEnergyView{}, ErrNotFound
	}
	if hub.HomeType != models.HomeTypeAdmin {
		return AdminHubEnergyView{}, ErrWrongHomeType
	}

	doc, err := s.remote.FetchByID(ctx, remote.CollectionHubs, hub.HubID)
	if err != nil {
		return AdminHubEnergyView{}, remoteErr(err)
	}
	units := doc.Strings("units")

	out := AdminHubEnergyView{HubCode: hubCode, Units: []UnitEnergy{}}
	for _, unit := range units {
		ue := s.unitEnergy(unit)
		out.Units = append(out.Units, ue)
		out.Total.add(ue.PeriodEnergy)
	}
	return out, nil
}

func (s *Service) unitEnergy(unitCode string) UnitEnergy {
	name := strings.TrimSpace(unitCode)

	// real: сохранённый итог даёт только суточную цифру, как и real-вид хаба
	if row, ok, err := s.store.DailyHubTotal(unitCode, s.today()); err == nil && ok {
		return UnitEnergy{Unit: name, PeriodEnergy: PeriodEnergy{Daily: row.EnergyKWh}}
	}

	devices, err := s.store.DevicesByHub(unitCode)
	if err == nil && len(devices) > 0 {
		daily := 0.0
		for _, dev := range devices {
			daily += rating.Rate(dev.DeviceType) * rating.DailyHours(dev.DeviceType)
		}
		return UnitEnergy{Unit: name, PeriodEnergy: extrapolate(daily)}
	}

	// данных нет вообще: подставная цифра под сгенерированным именем
	s.rndMu.Lock()
	daily := s.fallbackMin + s.rnd.Float64()*(s.fallbackMax-s.fallbackMin)
	s.rndMu.Unlock()
	gen := "unit-" + uuid.NewString()[:8]
	logs.Logger.WithFields(map[string]any{"unit": name, "as": gen}).
		Debug("reports: no data for unit, substituting estimate")
	return UnitEnergy{Unit: gen, PeriodEnergy: extrapolate(daily), Estimated: true}
}

// ── Live energy ─────────────────────────────────────────────

type LiveEnergy struct {
	HubCode       string  `json:"hub_code"`
	LiveKW        float64 `json:"live_kw"`
	ActiveDevices int     `json:"active_devices"`
	TotalDevices  int     `json:"total_devices"`
}

// HubLiveEnergy — мгновенная нагрузка: сумма тарифов включённых
// устройств по свежему удалённому состоянию, кВт.
func (s *Service) HubLiveEnergy(ctx context.Context, hubCode string) (LiveEnergy, error) {
	if _, err := s.store.HubByCode(hubCode); err != nil {
		return LiveEnergy{}, ErrNotFound
	}
	docs, err := s.remote.FetchWhere(ctx, remote.CollectionDevices, "hubCode", "==", hubCode)
	if err != nil {
		return LiveEnergy{}, remoteErr(err)
	}

	out := LiveEnergy{HubCode: hubCode, TotalDevices: len(docs)}
	for _, doc := range docs {
		if !doc.Bool("on") {
			continue
		}
		out.LiveKW += rating.Rate(strings.ToLower(doc.Str("deviceType")))
		out.ActiveDevices++
	}
	return out, nil
}

// ── Stored reads / passthroughs ─────────────────────────────

// UserHubs — хабы пользователя со сводкой энергии.
func (s *Service) UserHubs(userID string) ([]store.HubWithSummary, error) {
	hubs, err := s.store.UserHubs(userID)
	if err != nil {
		return nil, err
	}
	if hubs == nil {
		hubs = []store.HubWithSummary{}
	}
	return hubs, nil
}

// HubDevices — зеркальные устройства хаба.
func (s *Service) HubDevices(hubCode string) ([]models.Device, error) {
	if _, err := s.store.HubByCode(hubCode); err != nil {
		return nil, ErrNotFound
	}
	devices, err := s.store.DevicesByHub(hubCode)
	if err != nil {
		return nil, err
	}
	if devices == nil {
		devices = []models.Device{}
	}
	return devices, nil
}

type RoomInfo struct {
	RoomID      string   `json:"room_id"`
	RoomName    string   `json:"room_name"`
	DeviceCount int      `json:"device_count"`
	DeviceTypes []string `json:"device_types"`
}

// HubRooms — комнаты хаба с типами входящих устройств.
func (s *Service) HubRooms(hubCode string) ([]RoomInfo, error) {
	if _, err := s.store.HubByCode(hubCode); err != nil {
		return nil, ErrNotFound
	}
	rooms, err := s.store.RoomsByHub(hubCode)
	if err != nil {
		return nil, err
	}
	out := make([]RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		info := RoomInfo{
			RoomID:      room.RoomID,
			RoomName:    room.RoomName,
			DeviceCount: room.DeviceCount,
			DeviceTypes: []string{},
		}
		devices, err := s.store.RoomDevices(room.RoomID)
		if err != nil {
			return nil, err
		}
		for _, dev := range devices {
			info.DeviceTypes = append(info.DeviceTypes, dev.DeviceType)
		}
		out = append(out, info)
	}
	return out, nil
}

type HubDailyEnergy struct {
	HubCode string               `json:"hub_code"`
	Date    string               `json:"date"`
	Total   float64              `json:"total"`
	Devices []models.EnergyDaily `json:"devices"`
}

// HubDailyEnergy — сохранённые дневные строки хаба за дату.
func (s *Service) HubDailyEnergy(hubCode, date string) (HubDailyEnergy, error) {
	if _, err := s.store.HubByCode(hubCode); err != nil {
		return HubDailyEnergy{}, ErrNotFound
	}
	if date == "" {
		date = s.today()
	}
	out := HubDailyEnergy{HubCode: hubCode, Date: date, Devices: []models.EnergyDaily{}}
	if row, ok, err := s.store.DailyHubTotal(hubCode, date); err != nil {
		return HubDailyEnergy{}, err
	} else if ok {
		out.Total = row.EnergyKWh
	}
	rows, err := s.store.DailyDeviceRows(hubCode, date)
	if err != nil {
		return HubDailyEnergy{}, err
	}
	out.Devices = append(out.Devices, rows...)
	return out, nil
}

// RemoteCollection — сквозное чтение коллекции удалённого хранилища.
func (s *Service) RemoteCollection(ctx context.Context, collection string) ([]remote.Document, error) {
	switch collection {
	case remote.CollectionHubs, remote.CollectionDevices, remote.CollectionRooms:
	default:
		return nil, ErrNotFound
	}
	docs, err := s.remote.FetchAll(ctx, collection)
	if err != nil {
		return nil, remoteErr(err)
	}
	if docs == nil {
		docs = []remote.Document{}
	}
	return docs, nil
}

func (s *Service) today() string {
	return s.now().Format("2006-01-02")
}
