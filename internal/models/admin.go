package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type Admin struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	Username     string
	PasswordHash string
	Role         string
}
