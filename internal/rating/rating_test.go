package rating

import (
	"math"
	"testing"
)

func TestRate(t *testing.T) {
	if got := Rate("light"); got != 0.06 {
		t.Errorf("Rate(light) = %v, want 0.06", got)
	}
	if got := Rate("AirConditioner"); got != 1.5 {
		t.Errorf("Rate(AirConditioner) = %v, want 1.5", got)
	}
	if got := Rate("ac"); got != 1.5 {
		t.Errorf("Rate(ac) = %v, want 1.5", got)
	}
	if got := Rate("toaster"); got != 0 {
		t.Errorf("Rate(toaster) = %v, want 0 for unknown type", got)
	}
}

func TestDailyHours(t *testing.T) {
	alwaysOn := []string{"thermostat", "door", "smartdoor"}
	for _, dt := range alwaysOn {
		if got := DailyHours(dt); got != 24.0 {
			t.Errorf("DailyHours(%s) = %v, want 24", dt, got)
		}
	}
	if got := DailyHours("tv"); got != 10.0 {
		t.Errorf("DailyHours(tv) = %v, want 10", got)
	}
	if got := DailyHours("toaster"); got != 10.0 {
		t.Errorf("DailyHours(toaster) = %v, want 10", got)
	}
}

func TestDailyEstimates(t *testing.T) {
	// light: 0.06 kW * 10 h, thermostat: 0.05 kW * 24 h
	if got := Rate("light") * DailyHours("light"); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("light daily = %v, want 0.6", got)
	}
	if got := Rate("thermostat") * DailyHours("thermostat"); math.Abs(got-1.2) > 1e-9 {
		t.Errorf("thermostat daily = %v, want 1.2", got)
	}
}

func TestMultiplier(t *testing.T) {
	cases := map[string]float64{
		"daily":   1,
		"weekly":  7,
		"monthly": 30,
		"yearly":  365,
	}
	for period, want := range cases {
		if got := Multiplier(period); got != want {
			t.Errorf("Multiplier(%s) = %v, want %v", period, got, want)
		}
	}
	if got := Multiplier("decade"); got != 1 {
		t.Errorf("Multiplier(decade) = %v, want 1", got)
	}
}

func TestValidPeriod(t *testing.T) {
	for _, p := range Periods {
		if !ValidPeriod(p) {
			t.Errorf("ValidPeriod(%s) = false", p)
		}
	}
	if ValidPeriod("hourly") {
		t.Error("ValidPeriod(hourly) = true, want false")
	}
}
