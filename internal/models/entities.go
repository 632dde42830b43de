package models

import "time"

// User — владелец хабов. Ничего кроме идентификатора upstream не отдаёт.
type User struct {
	UserID    string `gorm:"column:user_id;primaryKey" json:"user_id"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }

// Hub — шлюз умного дома. hub_code — фактический ключ связей во всей системе,
// hub_id лишь первичный идентификатор документа у поставщика.
type Hub struct {
	HubID     string `gorm:"column:hub_id;primaryKey" json:"hub_id"`
	HubCode   string `gorm:"column:hub_code;uniqueIndex" json:"hub_code"`
	UserID    string `gorm:"column:user_id;index" json:"user_id"`
	HomeType  string `gorm:"column:home_type" json:"home_type"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Hub) TableName() string { return "hubs" }

// Hub home types understood by the reporting layer.
const (
	HomeTypeTenant = "tenant"
	HomeTypeAdmin  = "admin"
)

type Device struct {
	DeviceID   string `gorm:"column:device_id;primaryKey" json:"device_id"`
	HubCode    string `gorm:"column:hub_code;index" json:"hub_code"`
	DeviceType string `gorm:"column:device_type" json:"device_type"` // always lower-cased
	Status     bool   `gorm:"column:status" json:"status"`           // on/off
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Device) TableName() string { return "devices" }

type Room struct {
	RoomID      string `gorm:"column:room_id;primaryKey" json:"room_id"`
	RoomName    string `gorm:"column:room_name" json:"room_name"`
	HubCode     string `gorm:"column:hub_code;index" json:"hub_code"`
	DeviceCount int    `gorm:"column:device_count" json:"device_count"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Room) TableName() string { return "rooms" }

// RoomDevice — членство устройства в комнате (many-to-many).
type RoomDevice struct {
	RoomID   string `gorm:"column:room_id;primaryKey" json:"room_id"`
	DeviceID string `gorm:"column:device_id;primaryKey" json:"device_id"`
}

func (RoomDevice) TableName() string { return "room_devices" }
