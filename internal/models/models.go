package models

import (
	"time"
)

// Role names, lowest to highest privilege.
const (
	RoleUser       = "user"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null"  json:"username"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null"             json:"-"`
	FullName     string    `gorm:"size:100"                      json:"full_name,omitempty"`
	Role         string    `gorm:"size:20;not null;default:user" json:"role"`
	Active       bool      `gorm:"not null;default:true"         json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RevokedToken is a token invalidated before its natural expiry (logout).
// Presence alone makes the token invalid, no matter what the signature says.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey"                    json:"id"`
	Token     string    `gorm:"size:500;uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null"                      json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Shipment struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	BatchCode    string    `gorm:"size:50;index;not null"   json:"batch_code"`
	OriginSite   string    `gorm:"size:100;not null"        json:"origin_site"`
	DestSite     string    `gorm:"size:100;not null"        json:"dest_site"`
	NetHeadCount int       `gorm:"not null"                 json:"net_head_count"`
	LoadingStart time.Time `gorm:"not null"                 json:"loading_start"`
	LoadingEnd   time.Time `gorm:"not null"                 json:"loading_end"`
	RecordedAt   time.Time `gorm:"index;not null"           json:"recorded_at"`
	RecordedBy   uint      `gorm:"index"                    json:"recorded_by"`
}
