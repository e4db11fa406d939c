package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. PublicID is the opaque identity
// embedded in tokens and referenced by products; it is distinct from the
// storage primary key.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	PublicID     uuid.UUID `json:"public_id" db:"public_id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
