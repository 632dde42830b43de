package syncsvc

import (
	"context"
	"strings"
	"time"

	"hearth/internal/logs"
	"hearth/internal/models"
	"hearth/internal/rating"
	"hearth/internal/remote"
	"hearth/internal/store"
)

// Engine — один проход зеркалирования: хабы, устройства, комнаты,
// затем дневные оценки энергии под сегодняшней датой.
type Engine struct {
	remote remote.Client
	store  *store.Repo
	now    func() time.Time
}

func NewEngine(rc remote.Client, st *store.Repo) *Engine {
	return &Engine{remote: rc, store: st, now: time.Now}
}

// RunSyncPass выполняет полный проход. Недоступность удалённого списка
// хабов — отказ прохода; частичные сбои по устройствам и комнатам
// логируются и пропускаются, проход продолжается.
func (e *Engine) RunSyncPass(ctx context.Context) bool {
	start := e.now()
	hubs, err := e.remote.FetchAll(ctx, remote.CollectionHubs)
	if err != nil {
		logs.Logger.WithError(err).Error("sync: hub listing failed")
		return false
	}

	synced := 0
	for _, doc := range hubs {
		hubID := doc.Str("hubId")
		hubCode := doc.Str("hubCode")
		if hubCode == "" {
			hubCode = hubID
		}
		if hubID == "" {
			// без hubId ключом становится hubCode, иначе документы
			// с пустым ключом затирали бы друг друга
			hubID = hubCode
		}
		if hubID == "" {
			logs.Logger.Warn("sync: skip hub document without hubId/hubCode")
			continue
		}
		userID := doc.Str("userId")
		if strings.TrimSpace(userID) == "" {
			// спящий хаб: без владельца в зеркало не попадает
			logs.Logger.WithField("hub", hubCode).Debug("sync: skip dormant hub")
			continue
		}
		homeType := doc.Str("homeType")

		if err := e.store.UpsertHub(hubID, hubCode, userID, homeType); err != nil {
			logs.Logger.WithError(err).WithField("hub", hubCode).Warn("sync: hub upsert failed")
			continue
		}

		devices := e.syncDevices(ctx, hubCode)
		e.syncRooms(ctx, hubCode)
		e.writeDailyEnergy(hubCode, userID, devices)
		synced++
	}

	logs.Logger.WithFields(map[string]any{
		"hubs":    synced,
		"elapsed": e.now().Sub(start).String(),
	}).Info("sync: pass complete")
	return true
}

func (e *Engine) syncDevices(ctx context.Context, hubCode string) []models.Device {
	docs, err := e.remote.FetchWhere(ctx, remote.CollectionDevices, "hubCode", "==", hubCode)
	if err != nil {
		logs.Logger.WithError(err).WithField("hub", hubCode).Warn("sync: device listing failed")
		return nil
	}

	out := make([]models.Device, 0, len(docs))
	for _, doc := range docs {
		dev := models.Device{
			DeviceID:   doc.Str("deviceId"),
			DeviceType: strings.ToLower(doc.Str("deviceType")),
			HubCode:    hubCode,
			Status:     doc.Bool("on"),
		}
		if dev.DeviceID == "" {
			continue
		}
		if err := e.store.UpsertDevice(dev); err != nil {
			logs.Logger.WithError(err).WithField("device", dev.DeviceID).Warn("sync: device upsert failed")
			continue
		}
		out = append(out, dev)
	}
	return out
}

func (e *Engine) syncRooms(ctx context.Context, hubCode string) {
	docs, err := e.remote.FetchWhere(ctx, remote.CollectionRooms, "hubCode", "==", hubCode)
	if err != nil {
		logs.Logger.WithError(err).WithField("hub", hubCode).Warn("sync: room listing failed")
		return
	}
	for _, doc := range docs {
		roomID := doc.Str("roomId")
		if roomID == "" {
			continue
		}
		if err := e.store.UpsertRoom(roomID, doc.Str("roomName"), hubCode, doc.DeviceIDs()); err != nil {
			logs.Logger.WithError(err).WithField("room", roomID).Warn("sync: room upsert failed")
		}
	}
}

// DeviceEstimate — суточная оценка одного устройства.
type DeviceEstimate struct {
	DeviceID   string
	DeviceType string
	EnergyKWh  float64
	UsageHours float64
}

// ComputeDailyEnergy — суточные оценки набора устройств и итог хаба.
// Выключенное устройство даёт строго ноль энергии и наработки.
func ComputeDailyEnergy(devices []models.Device) ([]DeviceEstimate, float64) {
	out := make([]DeviceEstimate, 0, len(devices))
	total := 0.0
	for _, dev := range devices {
		est := DeviceEstimate{DeviceID: dev.DeviceID, DeviceType: dev.DeviceType}
		if dev.Status {
			est.UsageHours = rating.DailyHours(dev.DeviceType)
			est.EnergyKWh = rating.Rate(dev.DeviceType) * est.UsageHours
		}
		out = append(out, est)
		total += est.EnergyKWh
	}
	return out, total
}

// writeDailyEnergy пишет оценку каждого устройства и итог хаба под
// сегодняшней датой. Повторный проход в тот же день перезаписывает строки.
func (e *Engine) writeDailyEnergy(hubCode, userID string, devices []models.Device) {
	date := e.now().Format("2006-01-02")
	estimates, total := ComputeDailyEnergy(devices)
	for _, est := range estimates {
		if err := e.store.UpsertDailyEnergy(date, userID, hubCode, est.DeviceID, est.DeviceType, est.EnergyKWh, est.UsageHours); err != nil {
			logs.Logger.WithError(err).WithField("device", est.DeviceID).Warn("sync: energy write failed")
		}
	}
	if err := e.store.UpsertHubDailyTotal(date, userID, hubCode, total, 24.0); err != nil {
		logs.Logger.WithError(err).WithField("hub", hubCode).Warn("sync: hub total write failed")
	}
}
