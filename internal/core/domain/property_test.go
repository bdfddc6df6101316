package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() PropertyInput {
	return PropertyInput{
		Title:        "Sea view villa",
		Description:  "Five bedrooms",
		PropertyType: PropertyTypeVilla,
		ListingType:  ListingTypeBuy,
		Price:        600000,
		Bed:          intPtr(5),
		Bath:         intPtr(4),
		Area:         floatPtr(420),
		Location:     "Palm Jumeirah",
		City:         " dubai ",
		Latitude:     floatPtr(25.1124),
		Longitude:    floatPtr(55.1390),
	}
}

func TestNewProperty(t *testing.T) {
	p, err := NewProperty(validInput())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, StatusDraft, p.Status)
	assert.Equal(t, "Dubai", p.City)
	assert.Len(t, p.Geohash, GeohashPrecision)
	assert.Zero(t, p.Views)
}

func TestNewPropertyValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PropertyInput)
	}{
		{"zero price", func(in *PropertyInput) { in.Price = 0 }},
		{"negative price", func(in *PropertyInput) { in.Price = -1 }},
		{"missing title", func(in *PropertyInput) { in.Title = "  " }},
		{"bad property type", func(in *PropertyInput) { in.PropertyType = "castle" }},
		{"bad listing type", func(in *PropertyInput) { in.ListingType = "lease" }},
		{"negative bed", func(in *PropertyInput) { in.Bed = intPtr(-1) }},
		{"zero area", func(in *PropertyInput) { in.Area = floatPtr(0) }},
		{"latitude without longitude", func(in *PropertyInput) { in.Longitude = nil }},
		{"longitude without latitude", func(in *PropertyInput) { in.Latitude = nil }},
		{"latitude out of range", func(in *PropertyInput) { in.Latitude = floatPtr(91) }},
		{"sold on creation", func(in *PropertyInput) { in.Status = StatusSold }},
		{"unknown status", func(in *PropertyInput) { in.Status = "pending" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := NewProperty(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestNewPropertyCanStartPublished(t *testing.T) {
	in := validInput()
	in.Status = StatusPublished
	p, err := NewProperty(in)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, p.Status)
}

func TestApplyKeepsStatus(t *testing.T) {
	p, err := NewProperty(validInput())
	require.NoError(t, err)

	in := validInput()
	in.Status = StatusPublished
	p.Apply(in)
	assert.Equal(t, StatusDraft, p.Status)
}

func TestPropertyWithoutCoordinatesHasNoGeohash(t *testing.T) {
	in := validInput()
	in.Latitude, in.Longitude = nil, nil
	p, err := NewProperty(in)
	require.NoError(t, err)
	assert.Empty(t, p.Geohash)
}

func TestParseListingType(t *testing.T) {
	lt, err := ParseListingType("RENT")
	require.NoError(t, err)
	assert.Equal(t, ListingTypeRent, lt)

	_, err = ParseListingType("featured")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestIsOwnedBy(t *testing.T) {
	agentID, companyID := uuid.New(), uuid.New()
	p := &Property{AgentID: &agentID}

	assert.True(t, p.IsOwnedBy(HasAgent(agentID)))
	assert.False(t, p.IsOwnedBy(HasAgent(uuid.New())))
	assert.False(t, p.IsOwnedBy(Ineligible()))

	orphan := &Property{CompanyID: &companyID}
	assert.True(t, orphan.IsOwnedBy(EligibleCompanyNoAgent(companyID)))
	assert.True(t, orphan.IsOwnedBy(ProvisionedAgent(uuid.New(), companyID)))
	assert.False(t, orphan.IsOwnedBy(HasAgent(uuid.New())))
}

func TestNormalizeCity(t *testing.T) {
	assert.Equal(t, "", NormalizeCity("   "))
	assert.Equal(t, "Ras Al Khaimah", NormalizeCity("ras  al khaimah"))
	assert.Equal(t, "Dubai", NormalizeCity("DUBAI"))
}

func TestComputeListingStats(t *testing.T) {
	stats := ComputeListingStats([]Property{
		{Status: StatusPublished, Views: 10},
		{Status: StatusDraft, Views: 0},
		{Status: StatusSold, Views: 5},
	})
	assert.Equal(t, ListingStats{Total: 3, Published: 1, Draft: 1, Views: 15}, stats)
}
