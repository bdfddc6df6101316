package rest

import (
	"time"

	"marketplace-service/internal/core/domain"

	"github.com/google/uuid"
)

// ---- Запросы ----

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PropertyRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	PropertyType string     `json:"property_type"`
	ListingType  string     `json:"listing_type"`
	Price        float64    `json:"price"`
	Bed          *int       `json:"bed"`
	Bath         *int       `json:"bath"`
	Area         *float64   `json:"area"`
	Location     string     `json:"location"`
	City         string     `json:"city"`
	Latitude     *float64   `json:"latitude"`
	Longitude    *float64   `json:"longitude"`
	Images       []string   `json:"images"`
	Status       string     `json:"status"`
	AgentID      *uuid.UUID `json:"agent_id"`
}

// hasCreateOnlyFields сообщает, переданы ли поля, допустимые только при создании.
func (r PropertyRequest) hasCreateOnlyFields() bool {
	return r.Status != "" || r.AgentID != nil
}

func (r PropertyRequest) toInput() domain.PropertyInput {
	return domain.PropertyInput{
		Title:        r.Title,
		Description:  r.Description,
		PropertyType: domain.PropertyType(r.PropertyType),
		ListingType:  domain.ListingType(r.ListingType),
		Price:        r.Price,
		Bed:          r.Bed,
		Bath:         r.Bath,
		Area:         r.Area,
		Location:     r.Location,
		City:         r.City,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Images:       r.Images,
		Status:       domain.PropertyStatus(r.Status),
		AgentID:      r.AgentID,
	}
}

type PropertyStatusRequest struct {
	Status string `json:"status"`
}

type CompanyRequest struct {
	CompanyName       string  `json:"company_name"`
	ContactPersonName string  `json:"contact_person_name"`
	Email             string  `json:"email"`
	PhoneNumber       *string `json:"phone_number"`
	Password          string  `json:"password,omitempty"`
}

func (r CompanyRequest) toContactInput() domain.CompanyContactInput {
	return domain.CompanyContactInput{
		CompanyName:       r.CompanyName,
		ContactPersonName: r.ContactPersonName,
		PhoneNumber:       r.PhoneNumber,
		Email:             r.Email,
	}
}

type AgentProfileRequest struct {
	CompanyName *string `json:"company_name"`
	Bio         *string `json:"bio"`
	Phone       *string `json:"phone"`
	Website     *string `json:"website"`
	LogoURL     *string `json:"logo_url"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// ListingFilterDTO - фильтр в теле сохраненного поиска, те же имена, что и в query.
type ListingFilterDTO struct {
	City         string   `json:"city,omitempty"`
	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	PropertyType string   `json:"property_type,omitempty"`
	MinBed       *int     `json:"min_bed,omitempty"`
	MaxBed       *int     `json:"max_bed,omitempty"`
	MinBath      *int     `json:"min_bath,omitempty"`
	MaxBath      *int     `json:"max_bath,omitempty"`
	MinArea      *float64 `json:"min_area,omitempty"`
	MaxArea      *float64 `json:"max_area,omitempty"`
}

func (f ListingFilterDTO) toDomain() domain.ListingFilter {
	out := domain.ListingFilter{
		City:     f.City,
		MinPrice: f.MinPrice,
		MaxPrice: f.MaxPrice,
		MinBed:   f.MinBed,
		MaxBed:   f.MaxBed,
		MinBath:  f.MinBath,
		MaxBath:  f.MaxBath,
		MinArea:  f.MinArea,
		MaxArea:  f.MaxArea,
	}
	if f.PropertyType != "" {
		out.PropertyTypes = []string{f.PropertyType}
	}
	return out
}

func filterToDTO(f domain.ListingFilter) ListingFilterDTO {
	dto := ListingFilterDTO{
		City:     f.City,
		MinPrice: f.MinPrice,
		MaxPrice: f.MaxPrice,
		MinBed:   f.MinBed,
		MaxBed:   f.MaxBed,
		MinBath:  f.MinBath,
		MaxBath:  f.MaxBath,
		MinArea:  f.MinArea,
		MaxArea:  f.MaxArea,
	}
	if len(f.PropertyTypes) > 0 {
		dto.PropertyType = f.PropertyTypes[0]
	}
	return dto
}

type SavedSearchRequest struct {
	Name        string           `json:"name"`
	ListingType string           `json:"listing_type"`
	Filter      ListingFilterDTO `json:"filter"`
}

// ---- Ответы ----

type PropertyResponse struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	PropertyType string     `json:"property_type"`
	ListingType  string     `json:"listing_type"`
	Price        float64    `json:"price"`
	Bed          *int       `json:"bed"`
	Bath         *int       `json:"bath"`
	Area         *float64   `json:"area"`
	Location     string     `json:"location"`
	City         string     `json:"city"`
	Latitude     *float64   `json:"latitude"`
	Longitude    *float64   `json:"longitude"`
	Geohash      string     `json:"geohash,omitempty"`
	Images       []string   `json:"images"`
	Status       string     `json:"status"`
	AgentID      *uuid.UUID `json:"agent_id"`
	CompanyID    *uuid.UUID `json:"company_id"`
	Views        int64      `json:"views"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toPropertyResponse(p domain.Property) PropertyResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return PropertyResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		PropertyType: string(p.PropertyType),
		ListingType:  string(p.ListingType),
		Price:        p.Price,
		Bed:          p.Bed,
		Bath:         p.Bath,
		Area:         p.Area,
		Location:     p.Location,
		City:         p.City,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		Geohash:      p.Geohash,
		Images:       images,
		Status:       string(p.Status),
		AgentID:      p.AgentID,
		CompanyID:    p.CompanyID,
		Views:        p.Views,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// toPropertyList никогда не возвращает nil: пустой результат кодируется как [].
func toPropertyList(items []domain.Property) []PropertyResponse {
	out := make([]PropertyResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPropertyResponse(p))
	}
	return out
}

type AgentResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	CompanyName *string   `json:"company_name"`
	Bio         *string   `json:"bio"`
	Phone       *string   `json:"phone"`
	Website     *string   `json:"website"`
	LogoURL     *string   `json:"logo_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAgentResponse(a *domain.Agent) *AgentResponse {
	if a == nil {
		return nil
	}
	return &AgentResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		CompanyName: a.CompanyName,
		Bio:         a.Bio,
		Phone:       a.Phone,
		Website:     a.Website,
		LogoURL:     a.LogoURL,
		CreatedAt:   a.CreatedAt,
	}
}

type CompanyResponse struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	CompanyName       string    `json:"company_name"`
	ContactPersonName string    `json:"contact_person_name"`
	PhoneNumber       *string   `json:"phone_number"`
	Email             string    `json:"email"`
	CreatedAt         time.Time `json:"created_at"`
}

func toCompanyResponse(c *domain.RealEstateCompany) *CompanyResponse {
	if c == nil {
		return nil
	}
	return &CompanyResponse{
		ID:                c.ID,
		UserID:            c.UserID,
		CompanyName:       c.CompanyName,
		ContactPersonName: c.ContactPersonName,
		PhoneNumber:       c.PhoneNumber,
		Email:             c.Email,
		CreatedAt:         c.CreatedAt,
	}
}

type ProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	AvatarURL *string   `json:"avatar_url"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toProfileResponse(p *domain.UserProfile) *ProfileResponse {
	if p == nil {
		return nil
	}
	return &ProfileResponse{
		ID:        p.ID,
		Email:     p.Email,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		Role:      string(p.Role),
		CreatedAt: p.CreatedAt,
	}
}

type AuthResponse struct {
	Token string           `json:"token"`
	User  *ProfileResponse `json:"user"`
}

type PropertyDetailsResponse struct {
	Property   PropertyResponse `json:"property"`
	Agent      *AgentResponse   `json:"agent"`
	IsFavorite bool             `json:"is_favorite"`
}

type ToggleFavoriteResponse struct {
	Status     string `json:"status"`
	IsFavorite bool   `json:"is_favorite"`
}

type FavoriteResponse struct {
	ID         uuid.UUID         `json:"id"`
	PropertyID uuid.UUID         `json:"property_id"`
	CreatedAt  time.Time         `json:"created_at"`
	Property   *PropertyResponse `json:"property,omitempty"`
}

func toFavoriteList(items []domain.Favorite) []FavoriteResponse {
	out := make([]FavoriteResponse, 0, len(items))
	for _, f := range items {
		resp := FavoriteResponse{ID: f.ID, PropertyID: f.PropertyID, CreatedAt: f.CreatedAt}
		if f.Property != nil {
			p := toPropertyResponse(*f.Property)
			resp.Property = &p
		}
		out = append(out, resp)
	}
	return out
}

type RecentlyViewedResponse struct {
	PropertyID uuid.UUID         `json:"property_id"`
	ViewedAt   time.Time         `json:"viewed_at"`
	Property   *PropertyResponse `json:"property,omitempty"`
}

type SavedSearchResponse struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	ListingType string           `json:"listing_type"`
	Filter      ListingFilterDTO `json:"filter"`
	CreatedAt   time.Time        `json:"created_at"`
}

func toSavedSearchResponse(s domain.SavedSearch) SavedSearchResponse {
	return SavedSearchResponse{
		ID:          s.ID,
		Name:        s.Name,
		ListingType: string(s.ListingType),
		Filter:      filterToDTO(s.Filter),
		CreatedAt:   s.CreatedAt,
	}
}

func toSavedSearchList(items []domain.SavedSearch) []SavedSearchResponse {
	out := make([]SavedSearchResponse, 0, len(items))
	for _, s := range items {
		out = append(out, toSavedSearchResponse(s))
	}
	return out
}

type UserDashboardResponse struct {
	SavedSearches  []SavedSearchResponse    `json:"saved_searches"`
	RecentlyViewed []RecentlyViewedResponse `json:"recently_viewed"`
	Favorites      []FavoriteResponse       `json:"favorites"`
}

func toUserDashboardResponse(d *domain.UserDashboard) UserDashboardResponse {
	resp := UserDashboardResponse{
		SavedSearches:  toSavedSearchList(d.SavedSearches),
		RecentlyViewed: make([]RecentlyViewedResponse, 0, len(d.RecentlyViewed)),
		Favorites:      toFavoriteList(d.Favorites),
	}
	for _, rv := range d.RecentlyViewed {
		item := RecentlyViewedResponse{PropertyID: rv.PropertyID, ViewedAt: rv.ViewedAt}
		if rv.Property != nil {
			p := toPropertyResponse(*rv.Property)
			item.Property = &p
		}
		resp.RecentlyViewed = append(resp.RecentlyViewed, item)
	}
	return resp
}

type IdentityResponse struct {
	Kind      string     `json:"kind"`
	AgentID   *uuid.UUID `json:"agent_id,omitempty"`
	CompanyID *uuid.UUID `json:"company_id,omitempty"`
}

func toIdentityResponse(i domain.Identity) IdentityResponse {
	agentID, companyID := i.OwnerRefs()
	return IdentityResponse{Kind: i.Kind.String(), AgentID: agentID, CompanyID: companyID}
}

type ListingStatsResponse struct {
	Total     int   `json:"total"`
	Published int   `json:"published"`
	Draft     int   `json:"draft"`
	Views     int64 `json:"views"`
}

type AgentDashboardResponse struct {
	Identity   IdentityResponse     `json:"identity"`
	Agent      *AgentResponse       `json:"agent"`
	Company    *CompanyResponse     `json:"company"`
	Properties []PropertyResponse   `json:"properties"`
	Stats      ListingStatsResponse `json:"stats"`
}

type AgentPageResponse struct {
	Agent      *AgentResponse     `json:"agent"`
	Properties []PropertyResponse `json:"properties"`
}

type UploadReportResponse struct {
	URLs    []string `json:"urls"`
	Skipped []string `json:"skipped"`
}

type LogoUploadResponse struct {
	URL string `json:"url"`
}

type AdminOverviewResponse struct {
	Properties []PropertyResponse `json:"properties"`
	Profiles   []ProfileResponse  `json:"profiles"`
	Agents     []AgentResponse    `json:"agents"`
	Companies  []CompanyResponse  `json:"companies"`
}

func toAdminOverviewResponse(o *domain.AdminOverview) AdminOverviewResponse {
	resp := AdminOverviewResponse{
		Properties: toPropertyList(o.Properties),
		Profiles:   make([]ProfileResponse, 0, len(o.Profiles)),
		Agents:     make([]AgentResponse, 0, len(o.Agents)),
		Companies:  toCompanyList(o.Companies),
	}
	for i := range o.Profiles {
		resp.Profiles = append(resp.Profiles, *toProfileResponse(&o.Profiles[i]))
	}
	for i := range o.Agents {
		resp.Agents = append(resp.Agents, *toAgentResponse(&o.Agents[i]))
	}
	return resp
}

func toCompanyList(items []domain.RealEstateCompany) []CompanyResponse {
	out := make([]CompanyResponse, 0, len(items))
	for i := range items {
		out = append(out, *toCompanyResponse(&items[i]))
	}
	return out
}

type CompanyOnboardingResponse struct {
	Company *CompanyResponse `json:"company"`
	Agent   *AgentResponse   `json:"agent"`
	User    *ProfileResponse `json:"user"`
}
