package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SavedSearch - снимок фильтра. После создания не меняется, только удаляется.
type SavedSearch struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	ListingType ListingType
	Filter      ListingFilter
	CreatedAt   time.Time
}

// NewSavedSearch проверяет имя, тип сделки и диапазоны фильтра.
func NewSavedSearch(userID uuid.UUID, name string, listingType ListingType, filter ListingFilter) (*SavedSearch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name is required")
	}
	if _, err := ParseListingType(string(listingType)); err != nil {
		return nil, err
	}

	filter = filter.Normalized()
	for _, pt := range filter.PropertyTypes {
		if _, err := ParsePropertyType(pt); err != nil {
			return nil, err
		}
	}
	if err := validateRange("price", filter.MinPrice, filter.MaxPrice); err != nil {
		return nil, err
	}
	if err := validateRange("area", filter.MinArea, filter.MaxArea); err != nil {
		return nil, err
	}
	if err := validateIntRange("bed", filter.MinBed, filter.MaxBed); err != nil {
		return nil, err
	}
	if err := validateIntRange("bath", filter.MinBath, filter.MaxBath); err != nil {
		return nil, err
	}

	return &SavedSearch{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		ListingType: listingType,
		Filter:      filter,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func validateRange(field string, min, max *float64) error {
	if min != nil && max != nil && *min > *max {
		return NewValidationError("min_%s must not exceed max_%s", field, field)
	}
	return nil
}

func validateIntRange(field string, min, max *int) error {
	if min != nil && max != nil && *min > *max {
		return NewValidationError("min_%s must not exceed max_%s", field, field)
	}
	return nil
}
