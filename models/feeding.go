package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Feeding is one logged feeding event. Timestamp is stored in UTC.
type Feeding struct {
	bun.BaseModel `bun:"table:feedings,alias:f"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Timestamp time.Time `bun:"timestamp,notnull" json:"timestamp"`
}
