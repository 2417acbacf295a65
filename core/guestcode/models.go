package guestcode

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/daftar/core"
)

type GuestCode struct {
	ID        string       `json:"id"`
	Code      string       `json:"code"`
	Active    bool         `json:"active"`
	CreatedAt time.Time    `json:"created_at"` // UTC
	UpdatedAt time.Time    `json:"updated_at"` // UTC
	ExpiresAt null.Time    `json:"expires_at"` // UTC
	OwnerID   core.OwnerID `json:"owner_id"`
}

// Expired reports whether the code has an expiry at or before now.
func (gc GuestCode) Expired(now time.Time) bool {
	return gc.ExpiresAt.Valid && !now.Before(gc.ExpiresAt.Time)
}

// Normalize trims and upper-cases a raw code.
func Normalize(raw string) string {
	return strings.ToUpper(core.CleanString(raw))
}
