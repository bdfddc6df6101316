package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

var errStoreDown = errors.New("store is down")

// propertyStore хранит объявления в памяти и повторяет SQL предикат поиска.
type propertyStore struct {
	mu         sync.Mutex
	items      map[uuid.UUID]*domain.Property
	findErr    error
	viewsErr   error
	appendErr  error
	extraRows  []domain.Property
	queryCount int
	// afterFind вызывается, когда выборка уже снята, но еще не вернулась вызывающему.
	afterFind func()
}

func newPropertyStore(props ...*domain.Property) *propertyStore {
	s := &propertyStore{items: map[uuid.UUID]*domain.Property{}}
	for _, p := range props {
		s.items[p.ID] = p
	}
	return s
}

func (s *propertyStore) sorted(keep func(domain.Property) bool) []domain.Property {
	out := []domain.Property{}
	for _, p := range s.items {
		if keep(*p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *propertyStore) FindPublished(_ context.Context, lt domain.ListingType, f domain.ListingFilter) ([]domain.Property, error) {
	defer s.runAfterFind()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryCount++
	if s.findErr != nil {
		return nil, s.findErr
	}
	out := s.sorted(func(p domain.Property) bool { return f.Matches(lt, p) })
	return append(out, s.extraRows...), nil
}

func (s *propertyStore) FindFeatured(_ context.Context, limit int) ([]domain.Property, error) {
	defer s.runAfterFind()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryCount++
	if s.findErr != nil {
		return nil, s.findErr
	}
	out := s.sorted(func(p domain.Property) bool { return p.Status == domain.StatusPublished })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *propertyStore) FindPublishedCities(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryCount++
	if s.findErr != nil {
		return nil, s.findErr
	}
	seen := map[string]bool{}
	cities := []string{}
	for _, p := range s.items {
		if p.Status == domain.StatusPublished && !seen[p.City] {
			seen[p.City] = true
			cities = append(cities, p.City)
		}
	}
	sort.Strings(cities)
	return cities, nil
}

func (s *propertyStore) runAfterFind() {
	if s.afterFind != nil {
		s.afterFind()
	}
}

func (s *propertyStore) FindByID(_ context.Context, id uuid.UUID) (*domain.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	p, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *propertyStore) FindByOwner(_ context.Context, owner domain.PropertyOwnerFilter) ([]domain.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(p domain.Property) bool {
		if owner.PublishedOnly && p.Status != domain.StatusPublished {
			return false
		}
		byAgent := owner.AgentID != nil && p.AgentID != nil && *p.AgentID == *owner.AgentID
		byCompany := owner.CompanyID != nil && p.CompanyID != nil && *p.CompanyID == *owner.CompanyID
		return byAgent || byCompany
	}), nil
}

func (s *propertyStore) FindAll(_ context.Context) ([]domain.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(domain.Property) bool { return true }), nil
}

func (s *propertyStore) FindByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Property{}
	for _, id := range ids {
		if p, ok := s.items[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *propertyStore) Create(_ context.Context, p *domain.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.items[p.ID] = &cp
	return nil
}

func (s *propertyStore) Update(_ context.Context, p *domain.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	s.items[p.ID] = &cp
	return nil
}

func (s *propertyStore) UpdateStatus(_ context.Context, id uuid.UUID, status domain.PropertyStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	return nil
}

func (s *propertyStore) AppendImages(_ context.Context, id uuid.UUID, urls []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	p, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Images = append(p.Images, urls...)
	return nil
}

func (s *propertyStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *propertyStore) IncrementViews(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewsErr != nil {
		return s.viewsErr
	}
	p, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Views++
	return nil
}

func (s *propertyStore) get(id uuid.UUID) domain.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.items[id]
}

// agentStore обеспечивает уникальность user_id так же, как уникальный индекс в БД.
type agentStore struct {
	mu        sync.Mutex
	byUser    map[uuid.UUID]domain.Agent
	createErr error
	inserts   int
}

func newAgentStore(agents ...domain.Agent) *agentStore {
	s := &agentStore{byUser: map[uuid.UUID]domain.Agent{}}
	for _, a := range agents {
		s.byUser[a.UserID] = a
	}
	return s
}

func (s *agentStore) FindByUserID(_ context.Context, userID uuid.UUID) (*domain.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byUser[userID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *agentStore) FindByID(_ context.Context, id uuid.UUID) (*domain.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.byUser {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (s *agentStore) FindAll(_ context.Context) ([]domain.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Agent{}
	for _, a := range s.byUser {
		out = append(out, a)
	}
	return out, nil
}

func (s *agentStore) CreateIfAbsent(_ context.Context, agent *domain.Agent) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return false, s.createErr
	}
	if _, ok := s.byUser[agent.UserID]; ok {
		return false, nil
	}
	s.byUser[agent.UserID] = *agent
	s.inserts++
	return true, nil
}

func (s *agentStore) Upsert(_ context.Context, agent *domain.Agent) (*domain.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byUser[agent.UserID]; ok {
		agent.ID = existing.ID
		agent.CreatedAt = existing.CreatedAt
	}
	s.byUser[agent.UserID] = *agent
	out := *agent
	return &out, nil
}

func (s *agentStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byUser)
}

type companyStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]domain.RealEstateCompany
	err   error
}

func newCompanyStore(companies ...domain.RealEstateCompany) *companyStore {
	s := &companyStore{items: map[uuid.UUID]domain.RealEstateCompany{}}
	for _, c := range companies {
		s.items[c.ID] = c
	}
	return s
}

func (s *companyStore) FindByUserID(_ context.Context, userID uuid.UUID) (*domain.RealEstateCompany, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, c := range s.items {
		if c.UserID == userID {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (s *companyStore) FindByID(_ context.Context, id uuid.UUID) (*domain.RealEstateCompany, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *companyStore) FindAll(_ context.Context) ([]domain.RealEstateCompany, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.RealEstateCompany{}
	for _, c := range s.items {
		out = append(out, c)
	}
	return out, nil
}

func (s *companyStore) Update(_ context.Context, company *domain.RealEstateCompany) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[company.ID] = *company
	return nil
}

func (s *companyStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

type profileStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]domain.UserProfile
}

func newProfileStore(profiles ...domain.UserProfile) *profileStore {
	s := &profileStore{items: map[uuid.UUID]domain.UserProfile{}}
	for _, p := range profiles {
		s.items[p.ID] = p
	}
	return s
}

func (s *profileStore) FindByID(_ context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *profileStore) FindAll(_ context.Context) ([]domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.UserProfile{}
	for _, p := range s.items {
		out = append(out, p)
	}
	return out, nil
}

func (s *profileStore) UpdateRole(_ context.Context, id uuid.UUID, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Role = role
	s.items[id] = p
	return nil
}

func (s *profileStore) add(p domain.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[p.ID] = p
}

// accountStore сохраняет учетную запись и профиль вместе.
type accountStore struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
	profiles *profileStore
	onboards []*domain.CompanyOnboarding
}

func newAccountStore(profiles *profileStore) *accountStore {
	return &accountStore{accounts: map[string]domain.Account{}, profiles: profiles}
}

func (s *accountStore) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[email]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *accountStore) Create(_ context.Context, account *domain.Account, profile *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.Email]; ok {
		return domain.ErrEmailInUse
	}
	s.accounts[account.Email] = *account
	s.profiles.add(*profile)
	return nil
}

func (s *accountStore) Onboard(ctx context.Context, o *domain.CompanyOnboarding) error {
	if err := s.Create(ctx, o.Account, o.Profile); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onboards = append(s.onboards, o)
	return nil
}

type favoriteKey struct {
	user     uuid.UUID
	property uuid.UUID
}

type favoritesStore struct {
	mu    sync.Mutex
	pairs map[favoriteKey]domain.Favorite
	err   error
}

func newFavoritesStore() *favoritesStore {
	return &favoritesStore{pairs: map[favoriteKey]domain.Favorite{}}
}

func (s *favoritesStore) Add(_ context.Context, userID, propertyID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	k := favoriteKey{userID, propertyID}
	if _, ok := s.pairs[k]; ok {
		return nil
	}
	s.pairs[k] = domain.Favorite{ID: uuid.New(), UserID: userID, PropertyID: propertyID, CreatedAt: time.Now()}
	return nil
}

func (s *favoritesStore) Remove(_ context.Context, userID, propertyID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	k := favoriteKey{userID, propertyID}
	if _, ok := s.pairs[k]; !ok {
		return false, nil
	}
	delete(s.pairs, k)
	return true, nil
}

func (s *favoritesStore) RemoveByID(_ context.Context, userID, favoriteID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, f := range s.pairs {
		if f.ID == favoriteID && f.UserID == userID {
			delete(s.pairs, k)
			return true, nil
		}
	}
	return false, nil
}

func (s *favoritesStore) Exists(_ context.Context, userID, propertyID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pairs[favoriteKey{userID, propertyID}]
	return ok, nil
}

func (s *favoritesStore) FindByUser(_ context.Context, userID uuid.UUID, limit int) ([]domain.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Favorite{}
	for _, f := range s.pairs {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *favoritesStore) FindPropertyIDsByUser(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uuid.UUID
	for k := range s.pairs {
		if k.user == userID {
			out = append(out, k.property)
		}
	}
	return out, nil
}

func (s *favoritesStore) count(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.pairs {
		if k.user == userID {
			n++
		}
	}
	return n
}

type recentlyViewedStore struct {
	mu       sync.Mutex
	viewedAt map[favoriteKey]time.Time
	err      error
}

func newRecentlyViewedStore() *recentlyViewedStore {
	return &recentlyViewedStore{viewedAt: map[favoriteKey]time.Time{}}
}

func (s *recentlyViewedStore) Touch(_ context.Context, userID, propertyID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.viewedAt[favoriteKey{userID, propertyID}] = time.Now()
	return nil
}

func (s *recentlyViewedStore) FindByUser(_ context.Context, userID uuid.UUID, limit int) ([]domain.RecentlyViewed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.RecentlyViewed{}
	for k, at := range s.viewedAt {
		if k.user == userID {
			out = append(out, domain.RecentlyViewed{UserID: k.user, PropertyID: k.property, ViewedAt: at})
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *recentlyViewedStore) rows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.viewedAt)
}

type savedSearchStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]domain.SavedSearch
}

func newSavedSearchStore() *savedSearchStore {
	return &savedSearchStore{items: map[uuid.UUID]domain.SavedSearch{}}
}

func (s *savedSearchStore) Create(_ context.Context, search *domain.SavedSearch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[search.ID] = *search
	return nil
}

func (s *savedSearchStore) FindByUser(_ context.Context, userID uuid.UUID) ([]domain.SavedSearch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.SavedSearch{}
	for _, ss := range s.items {
		if ss.UserID == userID {
			out = append(out, ss)
		}
	}
	return out, nil
}

func (s *savedSearchStore) FindByID(_ context.Context, userID, id uuid.UUID) (*domain.SavedSearch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.items[id]
	if !ok || ss.UserID != userID {
		return nil, nil
	}
	return &ss, nil
}

func (s *savedSearchStore) Delete(_ context.Context, userID, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.items[id]
	if !ok || ss.UserID != userID {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

// memoryCache повторяет схему поколений Redis адаптера.
type memoryCache struct {
	mu            sync.Mutex
	generation    int
	pages         map[string][]domain.Property
	invalidations int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{pages: map[string][]domain.Property{}}
}

func (c *memoryCache) GetListings(_ context.Context, key string) (port.ListingPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	token := fmt.Sprintf("%d|%s", c.generation, key)
	p, ok := c.pages[token]
	return port.ListingPage{Items: p, Hit: ok, Token: token}, nil
}

func (c *memoryCache) SetListings(_ context.Context, token string, properties []domain.Property) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token == "" {
		return nil
	}
	c.pages[token] = properties
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.invalidations++
	return nil
}

// size считает только страницы текущего поколения.
func (c *memoryCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := fmt.Sprintf("%d|", c.generation)
	n := 0
	for token := range c.pages {
		if strings.HasPrefix(token, prefix) {
			n++
		}
	}
	return n
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []string{}
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingMetrics struct {
	mu          sync.Mutex
	provisioned map[string]int
	toggles     map[domain.ToggleOutcome]int
	views       map[bool]int
	queries     map[domain.FetchState]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		provisioned: map[string]int{},
		toggles:     map[domain.ToggleOutcome]int{},
		views:       map[bool]int{},
		queries:     map[domain.FetchState]int{},
	}
}

func (m *recordingMetrics) AgentProvisioned(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.provisioned[outcome]++
}

func (m *recordingMetrics) FavoriteToggled(outcome domain.ToggleOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toggles[outcome]++
}

func (m *recordingMetrics) ViewTracked(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views[success]++
}

func (m *recordingMetrics) ListingQuery(_ string, state domain.FetchState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries[state]++
}

// memoryStorage - объектное хранилище в памяти; файлы с именем из failOn не сохраняются.
type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failOn  map[string]bool
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, failOn: map[string]bool{}}
}

func (s *memoryStorage) Put(_ context.Context, objectPath string, content io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	if s.failOn[string(data)] {
		return "", errStoreDown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	url := "http://media.test/" + objectPath
	s.objects[url] = data
	return url, nil
}

func (s *memoryStorage) DeleteByURL(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, url)
	s.deleted = append(s.deleted, url)
	return nil
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateToken(ctx context.Context, account *domain.Account, role domain.Role, ttl time.Duration) (string, error) {
	args := m.Called(ctx, account, role, ttl)
	return args.String(0), args.Error(1)
}

func (m *mockTokenService) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*domain.Claims)
	return claims, args.Error(1)
}

type mockRevocation struct {
	mock.Mock
}

func (m *mockRevocation) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return m.Called(ctx, tokenID, expiresAt).Error(0)
}

func (m *mockRevocation) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func publishedProperty(lt domain.ListingType, city string, price float64, created time.Time) *domain.Property {
	return &domain.Property{
		ID:           uuid.New(),
		Title:        "Listing in " + city,
		PropertyType: domain.PropertyTypeApartment,
		ListingType:  lt,
		Price:        price,
		City:         city,
		Status:       domain.StatusPublished,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int             { return &v }
