package domain

import (
	"time"

	"github.com/google/uuid"
)

// RecentlyViewed хранит время последнего просмотра, а не журнал визитов.
type RecentlyViewed struct {
	UserID     uuid.UUID
	PropertyID uuid.UUID
	ViewedAt   time.Time

	Property *Property
}
