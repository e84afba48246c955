package models

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID            uuid.UUID
	CreatedAt     time.Time
	Name          string
	PointsBalance int64
}
