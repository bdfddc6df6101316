package domain

import (
	"time"

	"github.com/google/uuid"
)

type Favorite struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	PropertyID uuid.UUID
	CreatedAt  time.Time

	// Заполняется при чтении списка избранного
	Property *Property
}

// ToggleOutcome - итог переключения избранного.
type ToggleOutcome string

const (
	FavoriteAdded   ToggleOutcome = "added"
	FavoriteRemoved ToggleOutcome = "removed"
)
