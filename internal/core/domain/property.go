package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GeohashPrecision - длина геохеша, ячейка ~150x150 м.
const GeohashPrecision = 7

type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeVilla      PropertyType = "villa"
	PropertyTypeTownhouse  PropertyType = "townhouse"
	PropertyTypeLand       PropertyType = "land"
	PropertyTypeCommercial PropertyType = "commercial"
)

var propertyTypes = map[PropertyType]struct{}{
	PropertyTypeApartment:  {},
	PropertyTypeVilla:      {},
	PropertyTypeTownhouse:  {},
	PropertyTypeLand:       {},
	PropertyTypeCommercial: {},
}

func ParsePropertyType(s string) (PropertyType, error) {
	pt := PropertyType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := propertyTypes[pt]; !ok {
		return "", NewValidationError("unknown property type %q", s)
	}
	return pt, nil
}

type ListingType string

const (
	ListingTypeBuy  ListingType = "buy"
	ListingTypeRent ListingType = "rent"
)

// ParseListingType принимает только buy и rent.
func ParseListingType(s string) (ListingType, error) {
	switch lt := ListingType(strings.ToLower(strings.TrimSpace(s))); lt {
	case ListingTypeBuy, ListingTypeRent:
		return lt, nil
	default:
		return "", NewValidationError("unknown listing type %q", s)
	}
}

type PropertyStatus string

const (
	StatusDraft     PropertyStatus = "draft"
	StatusPublished PropertyStatus = "published"
	StatusSold      PropertyStatus = "sold"
	StatusRented    PropertyStatus = "rented"
	StatusArchived  PropertyStatus = "archived"
)

func ParsePropertyStatus(s string) (PropertyStatus, error) {
	switch st := PropertyStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusDraft, StatusPublished, StatusSold, StatusRented, StatusArchived:
		return st, nil
	default:
		return "", NewValidationError("unknown property status %q", s)
	}
}

// Property - объявление о недвижимости.
// Nullable колонки представлены указателями.
type Property struct {
	ID           uuid.UUID
	Title        string
	Description  string
	PropertyType PropertyType
	ListingType  ListingType
	Price        float64
	Bed          *int
	Bath         *int
	Area         *float64
	Location     string
	City         string
	Latitude     *float64
	Longitude    *float64
	Geohash      string
	Images       []string
	Status       PropertyStatus
	AgentID      *uuid.UUID
	CompanyID    *uuid.UUID
	Views        int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PropertyInput - изменяемые пользователем поля объявления.
type PropertyInput struct {
	Title        string
	Description  string
	PropertyType PropertyType
	ListingType  ListingType
	Price        float64
	Bed          *int
	Bath         *int
	Area         *float64
	Location     string
	City         string
	Latitude     *float64
	Longitude    *float64
	Images       []string
	// Status и AgentID читаются только при создании, Apply их не трогает.
	Status       PropertyStatus
	AgentID      *uuid.UUID
}

// InitialStatus проверяет статус нового объявления. Пустой статус означает черновик.
func InitialStatus(s PropertyStatus) (PropertyStatus, error) {
	switch s {
	case "":
		return StatusDraft, nil
	case StatusDraft, StatusPublished:
		return s, nil
	default:
		return "", NewValidationError("new listing status must be draft or published, got %q", s)
	}
}

// NewProperty собирает объявление из ввода и проверяет инварианты.
func NewProperty(in PropertyInput) (*Property, error) {
	status, err := InitialStatus(in.Status)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p := &Property{
		ID:        uuid.New(),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.Apply(in)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Apply переносит ввод в объявление, нормализуя город и пересчитывая геохеш.
func (p *Property) Apply(in PropertyInput) {
	p.Title = strings.TrimSpace(in.Title)
	p.Description = strings.TrimSpace(in.Description)
	p.PropertyType = in.PropertyType
	p.ListingType = in.ListingType
	p.Price = in.Price
	p.Bed = in.Bed
	p.Bath = in.Bath
	p.Area = in.Area
	p.Location = strings.TrimSpace(in.Location)
	p.City = NormalizeCity(in.City)
	p.Latitude = in.Latitude
	p.Longitude = in.Longitude
	// nil сохраняет текущие изображения
	if in.Images != nil {
		p.Images = in.Images
	}
	p.ComputeGeohash()
}

func (p *Property) Validate() error {
	if p.Title == "" {
		return NewValidationError("title is required")
	}
	if _, ok := propertyTypes[p.PropertyType]; !ok {
		return NewValidationError("unknown property type %q", p.PropertyType)
	}
	if _, err := ParseListingType(string(p.ListingType)); err != nil {
		return err
	}
	if _, err := ParsePropertyStatus(string(p.Status)); err != nil {
		return err
	}
	if !(p.Price > 0) || math.IsInf(p.Price, 0) {
		return NewValidationError("price must be positive")
	}
	if p.Bed != nil && *p.Bed < 0 {
		return NewValidationError("bed must be non-negative")
	}
	if p.Bath != nil && *p.Bath < 0 {
		return NewValidationError("bath must be non-negative")
	}
	if p.Area != nil && !(*p.Area > 0) {
		return NewValidationError("area must be positive")
	}
	if (p.Latitude == nil) != (p.Longitude == nil) {
		return NewValidationError("latitude and longitude must be set together")
	}
	if p.Latitude != nil {
		if *p.Latitude < -90 || *p.Latitude > 90 {
			return NewValidationError("latitude out of range")
		}
		if *p.Longitude < -180 || *p.Longitude > 180 {
			return NewValidationError("longitude out of range")
		}
	}
	if p.Views < 0 {
		return NewValidationError("views must be non-negative")
	}
	return nil
}

// ComputeGeohash заполняет Geohash, если заданы обе координаты.
func (p *Property) ComputeGeohash() {
	if p.Latitude == nil || p.Longitude == nil {
		p.Geohash = ""
		return
	}
	p.Geohash = geohash.EncodeWithPrecision(*p.Latitude, *p.Longitude, GeohashPrecision)
}

// IsOwnedBy сообщает, привязано ли объявление к агенту или компании из identity.
func (p *Property) IsOwnedBy(id Identity) bool {
	switch id.Kind {
	case IdentityHasAgent:
		if p.AgentID != nil && *p.AgentID == id.AgentID {
			return true
		}
		return id.CompanyID != uuid.Nil && p.CompanyID != nil && *p.CompanyID == id.CompanyID
	case IdentityCompanyNoAgent:
		return p.CompanyID != nil && *p.CompanyID == id.CompanyID
	default:
		return false
	}
}

// NormalizeCity убирает лишние пробелы и приводит название к Title Case.
func NormalizeCity(city string) string {
	fields := strings.Fields(city)
	if len(fields) == 0 {
		return ""
	}
	caser := cases.Title(language.English)
	return caser.String(strings.Join(fields, " "))
}
