package models

import (
	"time"

	"github.com/google/uuid"
)

// User представляет зарегистрированного игрока.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// InviteCode - одноразовый код регистрации.
type InviteCode struct {
	Code   string `json:"code" db:"code"`
	IsUsed bool   `json:"is_used" db:"is_used"`
}
