package usecase

import (
	"context"
	"testing"

	"marketplace-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listingFixture struct {
	properties *propertyStore
	agents     *agentStore
	companies  *companyStore
	profiles   *profileStore
	cache      *memoryCache
	publisher  *recordingPublisher
	storage    *memoryStorage
	identity   *ResolveIdentityUseCase
}

func newListingFixture() *listingFixture {
	f := &listingFixture{
		properties: newPropertyStore(),
		agents:     newAgentStore(),
		companies:  newCompanyStore(),
		profiles:   newProfileStore(),
		cache:      newMemoryCache(),
		publisher:  &recordingPublisher{},
		storage:    newMemoryStorage(),
	}
	f.identity = NewResolveIdentityUseCase(f.agents, f.companies, f.publisher, newRecordingMetrics())
	return f
}

func (f *listingFixture) createUseCase() *CreatePropertyUseCase {
	return NewCreatePropertyUseCase(f.identity, f.profiles, f.agents, f.properties, f.cache, f.publisher)
}

func (f *listingFixture) updateUseCase() *UpdatePropertyUseCase {
	return NewUpdatePropertyUseCase(f.identity, f.profiles, f.companies, f.properties, f.cache)
}

func (f *listingFixture) statusUseCase() *UpdatePropertyStatusUseCase {
	return NewUpdatePropertyStatusUseCase(f.identity, f.profiles, f.companies, f.properties, f.cache, f.publisher)
}

func (f *listingFixture) deleteUseCase() *DeletePropertyUseCase {
	return NewDeletePropertyUseCase(f.identity, f.profiles, f.companies, f.properties, f.storage, f.cache, f.publisher)
}

func (f *listingFixture) addAgent() (userID uuid.UUID, agent domain.Agent) {
	userID = uuid.New()
	agent = domain.Agent{ID: uuid.New(), UserID: userID}
	f.agents.byUser[userID] = agent
	f.profiles.add(domain.UserProfile{ID: userID, Role: domain.RoleAgent})
	return userID, agent
}

func (f *listingFixture) addAdmin() uuid.UUID {
	id := uuid.New()
	f.profiles.add(domain.UserProfile{ID: id, Role: domain.RoleAdmin})
	return id
}

func validInput() domain.PropertyInput {
	return domain.PropertyInput{
		Title:        "Sea view apartment",
		PropertyType: domain.PropertyTypeApartment,
		ListingType:  domain.ListingTypeBuy,
		Price:        1250000,
		Bed:          intPtr(2),
		City:         "dubai marina",
		Latitude:     floatPtr(25.08),
		Longitude:    floatPtr(55.14),
	}
}

func TestCreatePropertyAsAgent(t *testing.T) {
	f := newListingFixture()
	userID, agent := f.addAgent()

	p, err := f.createUseCase().Execute(context.Background(), userID, validInput())
	require.NoError(t, err)

	require.NotNil(t, p.AgentID)
	assert.Equal(t, agent.ID, *p.AgentID)
	assert.Nil(t, p.CompanyID)
	assert.Equal(t, domain.StatusDraft, p.Status)
	assert.Equal(t, "Dubai Marina", p.City)
	assert.NotEmpty(t, p.Geohash)
	assert.Equal(t, 1, f.cache.invalidations)
	assert.Equal(t, []string{domain.EventPropertyCreated}, f.publisher.types())

	stored, err := f.properties.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestCreatePropertyAsCompanyProvisionsAgent(t *testing.T) {
	f := newListingFixture()
	userID := uuid.New()
	company := newCompany(userID)
	f.companies.items[company.ID] = company

	p, err := f.createUseCase().Execute(context.Background(), userID, validInput())
	require.NoError(t, err)

	agent, err := f.agents.FindByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, agent)
	require.NotNil(t, p.AgentID)
	assert.Equal(t, agent.ID, *p.AgentID)
	require.NotNil(t, p.CompanyID)
	assert.Equal(t, company.ID, *p.CompanyID)
}

func TestCreatePropertyAsCompanyWithoutAgent(t *testing.T) {
	f := newListingFixture()
	f.agents.createErr = errStoreDown
	userID := uuid.New()
	company := newCompany(userID)
	f.companies.items[company.ID] = company

	p, err := f.createUseCase().Execute(context.Background(), userID, validInput())
	require.NoError(t, err)
	assert.Nil(t, p.AgentID)
	require.NotNil(t, p.CompanyID)
	assert.Equal(t, company.ID, *p.CompanyID)
}

func TestCreatePropertyIneligible(t *testing.T) {
	f := newListingFixture()
	userID := uuid.New()
	f.profiles.add(domain.UserProfile{ID: userID, Role: domain.RoleUser})

	_, err := f.createUseCase().Execute(context.Background(), userID, validInput())
	assert.ErrorIs(t, err, domain.ErrIneligibleIdentity)
	assert.Empty(t, f.properties.items)
}

func TestCreatePropertyAdminWithoutIdentity(t *testing.T) {
	f := newListingFixture()
	adminID := f.addAdmin()

	p, err := f.createUseCase().Execute(context.Background(), adminID, validInput())
	require.NoError(t, err)
	assert.Nil(t, p.AgentID)
	assert.Nil(t, p.CompanyID)
}

func TestCreatePropertyPublishedRightAway(t *testing.T) {
	f := newListingFixture()
	userID, _ := f.addAgent()
	in := validInput()
	in.Status = domain.StatusPublished

	p, err := f.createUseCase().Execute(context.Background(), userID, in)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, p.Status)
	assert.Equal(t, domain.StatusPublished, f.properties.get(p.ID).Status)

	listings := NewFindListingsUseCase(f.properties, f.cache, newRecordingMetrics())
	result, err := listings.Execute(context.Background(), "buy", domain.ListingFilter{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, p.ID, result.Items[0].ID)
}

func TestCreatePropertyRejectsClosedStatus(t *testing.T) {
	f := newListingFixture()
	userID, _ := f.addAgent()
	in := validInput()
	in.Status = domain.StatusSold

	_, err := f.createUseCase().Execute(context.Background(), userID, in)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.properties.items)
}

func TestCreatePropertyAdminAssignsAgent(t *testing.T) {
	f := newListingFixture()
	adminID := f.addAdmin()
	_, agent := f.addAgent()
	in := validInput()
	in.AgentID = &agent.ID

	p, err := f.createUseCase().Execute(context.Background(), adminID, in)
	require.NoError(t, err)
	require.NotNil(t, p.AgentID)
	assert.Equal(t, agent.ID, *p.AgentID)
	assert.Nil(t, p.CompanyID)
}

func TestCreatePropertyAdminAssignsUnknownAgent(t *testing.T) {
	f := newListingFixture()
	adminID := f.addAdmin()
	in := validInput()
	unknown := uuid.New()
	in.AgentID = &unknown

	_, err := f.createUseCase().Execute(context.Background(), adminID, in)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.properties.items)
}

func TestCreatePropertyAgentCannotAssignAgent(t *testing.T) {
	f := newListingFixture()
	userID, _ := f.addAgent()
	_, other := f.addAgent()
	in := validInput()
	in.AgentID = &other.ID

	_, err := f.createUseCase().Execute(context.Background(), userID, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, f.properties.items)
}

func TestCreatePropertyRejectsInvalidInput(t *testing.T) {
	f := newListingFixture()
	userID, _ := f.addAgent()
	in := validInput()
	in.Price = 0

	_, err := f.createUseCase().Execute(context.Background(), userID, in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdatePropertyAccess(t *testing.T) {
	f := newListingFixture()
	ownerID, _ := f.addAgent()
	strangerID, _ := f.addAgent()
	adminID := f.addAdmin()

	created, err := f.createUseCase().Execute(context.Background(), ownerID, validInput())
	require.NoError(t, err)
	require.NoError(t, f.properties.AppendImages(context.Background(), created.ID, []string{"http://media.test/a.jpg"}))

	in := validInput()
	in.Title = "Updated title"

	_, err = f.updateUseCase().Execute(context.Background(), strangerID, created.ID, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := f.updateUseCase().Execute(context.Background(), ownerID, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Updated title", updated.Title)
	assert.Equal(t, []string{"http://media.test/a.jpg"}, updated.Images, "images survive an update without images")

	in.Title = "Admin title"
	_, err = f.updateUseCase().Execute(context.Background(), adminID, created.ID, in)
	require.NoError(t, err)

	_, err = f.updateUseCase().Execute(context.Background(), ownerID, uuid.New(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompanyKeepsAccessToListingsCreatedWithoutAgent(t *testing.T) {
	f := newListingFixture()
	f.agents.createErr = errStoreDown
	userID := uuid.New()
	company := newCompany(userID)
	f.companies.items[company.ID] = company

	created, err := f.createUseCase().Execute(context.Background(), userID, validInput())
	require.NoError(t, err)
	require.Nil(t, created.AgentID)

	// Агент появляется позже; объявление по-прежнему принадлежит компании
	f.agents.createErr = nil
	_, err = f.identity.Execute(context.Background(), userID)
	require.NoError(t, err)

	require.NoError(t, f.statusUseCase().Execute(context.Background(), userID, created.ID, domain.StatusPublished))
	assert.Equal(t, domain.StatusPublished, f.properties.get(created.ID).Status)
}

func TestUpdatePropertyStatus(t *testing.T) {
	f := newListingFixture()
	ownerID, _ := f.addAgent()
	created, err := f.createUseCase().Execute(context.Background(), ownerID, validInput())
	require.NoError(t, err)
	uc := f.statusUseCase()

	require.NoError(t, uc.Execute(context.Background(), ownerID, created.ID, domain.StatusPublished))
	assert.Equal(t, domain.StatusPublished, f.properties.get(created.ID).Status)

	require.NoError(t, uc.Execute(context.Background(), ownerID, created.ID, domain.StatusPublished))
	assert.Equal(t, []string{domain.EventPropertyCreated, domain.EventPropertyStatusChanged}, f.publisher.types())

	assert.ErrorIs(t, uc.Execute(context.Background(), ownerID, created.ID, "expired"), domain.ErrValidation)
}

func TestDeletePropertyRemovesImages(t *testing.T) {
	f := newListingFixture()
	ownerID, _ := f.addAgent()
	created, err := f.createUseCase().Execute(context.Background(), ownerID, validInput())
	require.NoError(t, err)
	images := []string{"http://media.test/1.jpg", "http://media.test/2.jpg"}
	require.NoError(t, f.properties.AppendImages(context.Background(), created.ID, images))

	require.NoError(t, f.deleteUseCase().Execute(context.Background(), ownerID, created.ID))

	stored, err := f.properties.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.ElementsMatch(t, images, f.storage.deleted)
	assert.Contains(t, f.publisher.types(), domain.EventPropertyDeleted)
}
