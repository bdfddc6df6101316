package domain

import "github.com/google/uuid"

// DashboardListLimit - сколько последних просмотров и избранного показывать в кабинете.
const DashboardListLimit = 10

type UserDashboard struct {
	SavedSearches  []SavedSearch
	RecentlyViewed []RecentlyViewed
	Favorites      []Favorite
}

type ListingStats struct {
	Total     int
	Published int
	Draft     int
	Views     int64
}

// ComputeListingStats считает сводку по объявлениям агента.
func ComputeListingStats(properties []Property) ListingStats {
	stats := ListingStats{Total: len(properties)}
	for _, p := range properties {
		switch p.Status {
		case StatusPublished:
			stats.Published++
		case StatusDraft:
			stats.Draft++
		}
		stats.Views += p.Views
	}
	return stats
}

type AgentDashboard struct {
	Identity   Identity
	Agent      *Agent
	Company    *RealEstateCompany
	Properties []Property
	Stats      ListingStats
}

// AgentPage - публичная страница агента с опубликованными объявлениями.
type AgentPage struct {
	Agent      *Agent
	Properties []Property
}

type PropertyDetails struct {
	Property   *Property
	Agent      *Agent
	IsFavorite bool
}

type AdminOverview struct {
	Properties []Property
	Profiles   []UserProfile
	Agents     []Agent
	Companies  []RealEstateCompany
}

// PropertyOwnerFilter выбирает объявления агента или компании без агента.
type PropertyOwnerFilter struct {
	AgentID       *uuid.UUID
	CompanyID     *uuid.UUID
	PublishedOnly bool
}
