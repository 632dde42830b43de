package store

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"hearth/internal/db"
	"hearth/internal/models"
)

func setupRepo(t *testing.T) *Repo {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := db.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepo(gdb)
}

func TestKeysForYearBoundary(t *testing.T) {
	// 29 декабря 2025 лежит в ISO-неделе 1 года 2026: календарный год
	// месячных и годовых ключей не должен уезжать вслед за неделей
	keys := KeysFor(time.Date(2025, 12, 29, 12, 0, 0, 0, time.UTC))
	if keys.Year != 2025 {
		t.Errorf("Year = %d, want calendar 2025", keys.Year)
	}
	if keys.Month != 12 {
		t.Errorf("Month = %d, want 12", keys.Month)
	}
	if keys.WeekYear != 2026 || keys.Week != 1 {
		t.Errorf("week key = (%d, %d), want (2026, 1)", keys.WeekYear, keys.Week)
	}

	// 1 января 2027 — пятница, ещё ISO-неделя 53 года 2026
	keys = KeysFor(time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC))
	if keys.Year != 2027 {
		t.Errorf("Year = %d, want calendar 2027", keys.Year)
	}
	if keys.WeekYear != 2026 || keys.Week != 53 {
		t.Errorf("week key = (%d, %d), want (2026, 53)", keys.WeekYear, keys.Week)
	}
}

func TestSummaryTotalsAcrossYearBoundary(t *testing.T) {
	r := setupRepo(t)
	mustHub(t, r, "h1", "HUB-1", "alice")

	keys := KeysFor(time.Date(2025, 12, 29, 12, 0, 0, 0, time.UTC))
	if err := r.UpsertHubMonthlyTotal(keys.Year, keys.Month, "alice", "HUB-1", 55.0, 720); err != nil {
		t.Fatal(err)
	}
	if err := r.UpsertHubYearlyTotal(keys.Year, "alice", "HUB-1", 600.0, 8760); err != nil {
		t.Fatal(err)
	}
	if err := r.UpsertHubWeeklyTotal(keys.WeekYear, keys.Week, "alice", "HUB-1", 14.0, 168); err != nil {
		t.Fatal(err)
	}

	_, weekly, monthly, yearly, err := r.SummaryTotals("alice", keys)
	if err != nil {
		t.Fatalf("SummaryTotals: %v", err)
	}
	if monthly != 55.0 || yearly != 600.0 {
		t.Errorf("monthly/yearly = %v/%v, want 55/600", monthly, yearly)
	}
	if weekly != 14.0 {
		t.Errorf("weekly = %v, want 14", weekly)
	}
}

func TestUpsertHubIdempotent(t *testing.T) {
	r := setupRepo(t)

	if err := r.UpsertHub("h1", "HUB-1", "alice", models.HomeTypeTenant); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := r.UpsertHub("h1", "HUB-1", "alice", models.HomeTypeTenant); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var n int64
	r.DB().Model(&models.Hub{}).Count(&n)
	if n != 1 {
		t.Errorf("hub count = %d, want 1", n)
	}

	hub, err := r.HubByCode("HUB-1")
	if err != nil {
		t.Fatalf("HubByCode: %v", err)
	}
	if hub.UserID != "alice" || hub.HomeType != models.HomeTypeTenant {
		t.Errorf("hub = %+v", hub)
	}
}

func TestUpsertHubSynthesizesOwner(t *testing.T) {
	r := setupRepo(t)

	if err := r.UpsertHub("h2", "HUB-2", "", models.HomeTypeTenant); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	hub, err := r.HubByCode("HUB-2")
	if err != nil {
		t.Fatalf("HubByCode: %v", err)
	}
	if hub.UserID != "user_HUB-2" {
		t.Errorf("UserID = %q, want user_HUB-2", hub.UserID)
	}

	var n int64
	r.DB().Model(&models.User{}).Where("user_id = ?", "user_HUB-2").Count(&n)
	if n != 1 {
		t.Errorf("synthesized user rows = %d, want 1", n)
	}
}

func TestUpsertDeviceUpdatesState(t *testing.T) {
	r := setupRepo(t)
	mustHub(t, r, "h1", "HUB-1", "alice")

	dev := models.Device{DeviceID: "d1", DeviceType: "light", HubCode: "HUB-1", Status: true}
	if err := r.UpsertDevice(dev); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	dev.Status = false
	if err := r.UpsertDevice(dev); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	got, err := r.DeviceByID("d1")
	if err != nil {
		t.Fatalf("DeviceByID: %v", err)
	}
	if got.Status {
		t.Error("Status = true, want false after re-upsert")
	}

	var n int64
	r.DB().Model(&models.Device{}).Count(&n)
	if n != 1 {
		t.Errorf("device count = %d, want 1", n)
	}
}

func TestUpsertRoomReplacesMembership(t *testing.T) {
	r := setupRepo(t)
	mustHub(t, r, "h1", "HUB-1", "alice")
	mustDevice(t, r, "d1", "light", "HUB-1")
	mustDevice(t, r, "d2", "tv", "HUB-1")
	mustDevice(t, r, "d3", "fan", "HUB-1")

	if err := r.UpsertRoom("r1", "Kitchen", "HUB-1", []string{"d1", "d2"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := r.UpsertRoom("r1", "Kitchen", "HUB-1", []string{"d3"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	devs, err := r.RoomDevices("r1")
	if err != nil {
		t.Fatalf("RoomDevices: %v", err)
	}
	if len(devs) != 1 || devs[0].DeviceID != "d3" {
		t.Errorf("room devices = %+v, want only d3", devs)
	}

	room, err := r.RoomByID("r1")
	if err != nil {
		t.Fatalf("RoomByID: %v", err)
	}
	if room.DeviceCount != 1 {
		t.Errorf("DeviceCount = %d, want 1", room.DeviceCount)
	}
}

func TestDailyEnergyOverwrite(t *testing.T) {
	r := setupRepo(t)
	mustHub(t, r, "h1", "HUB-1", "alice")
	mustDevice(t, r, "d1", "light", "HUB-1")

	const date = "2026-09-01"
	if err := r.UpsertDailyEnergy(date, "alice", "HUB-1", "d1", "light", 0.6, 10); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := r.UpsertDailyEnergy(date, "alice", "HUB-1", "d1", "light", 0.9, 15); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	row, ok, err := r.DailyDeviceRow("d1", date)
	if err != nil || !ok {
		t.Fatalf("DailyDeviceRow: ok=%v err=%v", ok, err)
	}
	if row.EnergyKWh != 0.9 || row.UsageHours != 15 {
		t.Errorf("row = %+v, want 0.9 kWh / 15 h", row)
	}

	var n int64
	r.DB().Model(&models.EnergyDaily{}).Count(&n)
	if n != 1 {
		t.Errorf("daily rows = %d, want 1", n)
	}
}

func TestHubDailyTotalAndSummary(t *testing.T) {
	r := setupRepo(t)
	mustHub(t, r, "h1", "HUB-1", "alice")
	mustDevice(t, r, "d1", "light", "HUB-1")
	mustDevice(t, r, "d2", "tv", "HUB-1")

	const date = "2026-09-01"
	if err := r.UpsertHubDailyTotal(date, "alice", "HUB-1", 1.6, 24); err != nil {
		t.Fatalf("upsert total: %v", err)
	}
	if err := r.UpsertHubDailyTotal(date, "alice", "HUB-1", 2.0, 24); err != nil {
		t.Fatalf("re-upsert total: %v", err)
	}

	row, ok, err := r.DailyHubTotal("HUB-1", date)
	if err != nil || !ok {
		t.Fatalf("DailyHubTotal: ok=%v err=%v", ok, err)
	}
	if row.EnergyKWh != 2.0 || row.DeviceType != models.HubTotalType {
		t.Errorf("total row = %+v", row)
	}
	if row.DeviceID != nil {
		t.Errorf("total row DeviceID = %v, want NULL", *row.DeviceID)
	}

	hubs, err := r.UserHubs("alice")
	if err != nil {
		t.Fatalf("UserHubs: %v", err)
	}
	if len(hubs) != 1 {
		t.Fatalf("UserHubs len = %d, want 1", len(hubs))
	}
	if hubs[0].DailyEnergy != 2.0 || hubs[0].DeviceCount != 2 {
		t.Errorf("summary = %+v, want daily 2.0 and 2 devices", hubs[0])
	}
}

func TestSummaryTotals(t *testing.T) {
	r := setupRepo(t)
	mustHub(t, r, "h1", "HUB-1", "alice")
	mustHub(t, r, "h2", "HUB-2", "alice")
	mustHub(t, r, "h3", "HUB-3", "bob")

	keys := PeriodKeys{Date: "2026-09-01", Year: 2026, WeekYear: 2026, Week: 36, Month: 9}
	if err := r.UpsertHubDailyTotal(keys.Date, "alice", "HUB-1", 1.5, 24); err != nil {
		t.Fatal(err)
	}
	if err := r.UpsertHubDailyTotal(keys.Date, "alice", "HUB-2", 2.5, 24); err != nil {
		t.Fatal(err)
	}
	if err := r.UpsertHubDailyTotal(keys.Date, "bob", "HUB-3", 9.0, 24); err != nil {
		t.Fatal(err)
	}
	if err := r.UpsertHubWeeklyTotal(keys.WeekYear, keys.Week, "alice", "HUB-1", 10.5, 168); err != nil {
		t.Fatal(err)
	}

	daily, weekly, monthly, yearly, err := r.SummaryTotals("alice", keys)
	if err != nil {
		t.Fatalf("SummaryTotals: %v", err)
	}
	if daily != 4.0 {
		t.Errorf("daily = %v, want 4.0", daily)
	}
	if weekly != 10.5 {
		t.Errorf("weekly = %v, want 10.5", weekly)
	}
	if monthly != 0 || yearly != 0 {
		t.Errorf("monthly/yearly = %v/%v, want zeros", monthly, yearly)
	}
}

func TestTopConsumers(t *testing.T) {
	r := setupRepo(t)
	mustHub(t, r, "h1", "HUB-1", "alice")
	mustDevice(t, r, "d1", "light", "HUB-1")
	mustDevice(t, r, "d2", "ac", "HUB-1")
	mustDevice(t, r, "d3", "tv", "HUB-1")

	keys := PeriodKeys{Date: "2026-09-01", Year: 2026, WeekYear: 2026, Week: 36, Month: 9}
	rows := []struct {
		id     string
		dtype  string
		energy float64
	}{
		{"d1", "light", 0.6},
		{"d2", "ac", 15.0},
		{"d3", "tv", 1.0},
	}
	for _, row := range rows {
		if err := r.UpsertDailyEnergy(keys.Date, "alice", "HUB-1", row.id, row.dtype, row.energy, 10); err != nil {
			t.Fatal(err)
		}
	}
	// итог хаба не должен попадать в топ устройств
	if err := r.UpsertHubDailyTotal(keys.Date, "alice", "HUB-1", 16.6, 24); err != nil {
		t.Fatal(err)
	}

	top, err := r.TopConsumers("alice", "daily", 2, keys)
	if err != nil {
		t.Fatalf("TopConsumers: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("len = %d, want 2", len(top))
	}
	if top[0].DeviceID != "d2" || top[1].DeviceID != "d3" {
		t.Errorf("order = %s, %s; want d2, d3", top[0].DeviceID, top[1].DeviceID)
	}
	if top[0].HomeType != models.HomeTypeTenant {
		t.Errorf("HomeType = %q, want tenant", top[0].HomeType)
	}

	if _, err := r.TopConsumers("alice", "hourly", 2, keys); err == nil {
		t.Error("expected error for unknown period")
	}
}

func mustHub(t *testing.T, r *Repo, id, code, user string) {
	t.Helper()
	if err := r.UpsertHub(id, code, user, models.HomeTypeTenant); err != nil {
		t.Fatalf("hub %s: %v", code, err)
	}
}

func mustDevice(t *testing.T, r *Repo, id, dtype, hub string) {
	t.Helper()
	if err := r.UpsertDevice(models.Device{DeviceID: id, DeviceType: dtype, HubCode: hub, Status: true}); err != nil {
		t.Fatalf("device %s: %v", id, err)
	}
}
