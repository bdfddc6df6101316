package rest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	goodToken = "good-token"
	badToken  = "bad-token"
)

type testAPI struct {
	userID       uuid.UUID
	authenticate *mockAuthenticate
	authorize    *mockAuthorize
	find         *mockFindListings
	featured     *mockFeaturedListings
	cities       *mockListCities
	details      *mockPropertyDetails
	toggle       *mockToggleFavorite
	create       *mockCreateProperty
	uploadImages *mockUploadImages
	overview     *mockAdminOverview
	mediaRoot    string
	health       HealthChecker
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	api := &testAPI{
		userID:       uuid.New(),
		authenticate: &mockAuthenticate{},
		authorize:    &mockAuthorize{},
		find:         &mockFindListings{},
		featured:     &mockFeaturedListings{},
		cities:       &mockListCities{},
		details:      &mockPropertyDetails{},
		toggle:       &mockToggleFavorite{},
		create:       &mockCreateProperty{},
		uploadImages: &mockUploadImages{},
		overview:     &mockAdminOverview{},
	}
	api.authenticate.On("Execute", mock.Anything, goodToken).
		Return(&domain.Claims{UserID: api.userID, Email: "user@example.com", Role: domain.RoleUser}, nil).Maybe()
	api.authenticate.On("Execute", mock.Anything, badToken).
		Return(nil, domain.ErrTokenInvalid).Maybe()
	return api
}

func (api *testAPI) router() http.Handler {
	return NewRouter(RouterConfig{
		Handlers: Handlers{
			Auth:          NewAuthHandlers(nil, nil, nil, nil),
			Listings:      NewListingHandlers(api.find, api.featured, api.details, api.cities),
			Properties:    NewPropertyHandlers(api.create, nil, nil, nil, api.uploadImages, nil, 1<<20),
			Favorites:     NewFavoritesHandlers(api.toggle, nil, nil, nil),
			SavedSearches: NewSavedSearchHandlers(nil, nil, nil, nil),
			Agents:        NewAgentHandlers(nil, nil, nil, nil, nil, nil),
			Admin:         NewAdminHandlers(api.overview, nil, nil, nil, nil, nil),
		},
		Auth:           NewAuthMiddleware(api.authenticate, api.authorize),
		Logger:         contextkeys.LoggerFromContext(context.Background()),
		Health:         api.health,
		MediaRoot:      api.mediaRoot,
		AllowedOrigins: []string{"*"},
	})
}

func (api *testAPI) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	api.router().ServeHTTP(rec, req)
	return rec
}

func withToken(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", domain.NewValidationError("bad price"), http.StatusBadRequest},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"revoked token", domain.ErrTokenRevoked, http.StatusUnauthorized},
		{"ineligible identity", domain.ErrIneligibleIdentity, http.StatusForbidden},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"wrapped not found", errors.Join(errors.New("lookup"), domain.ErrNotFound), http.StatusNotFound},
		{"email in use", domain.ErrEmailInUse, http.StatusConflict},
		{"conflict", domain.ErrConflict, http.StatusConflict},
		{"unknown", errors.New("pool exhausted"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := statusForError(tt.err)
			assert.Equal(t, tt.code, code)
		})
	}

	_, text := statusForError(errors.New("password=secret"))
	assert.Equal(t, "Internal server error", text)
}

func TestGetListingsEmptyReturnsEmptyArray(t *testing.T) {
	api := newTestAPI(t)
	api.find.On("Execute", mock.Anything, "buy", mock.MatchedBy(func(f domain.ListingFilter) bool {
		return f.City == "Dubai"
	})).Return(domain.FetchResult[domain.Property]{State: domain.FetchEmpty}, nil)

	rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/listings/buy?city=Dubai", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	api.find.AssertExpectations(t)
}

func TestGetListingsFound(t *testing.T) {
	api := newTestAPI(t)
	property := domain.Property{ID: uuid.New(), Title: "Flat", ListingType: domain.ListingTypeRent, Price: 900, City: "Abu Dhabi"}
	api.find.On("Execute", mock.Anything, "rent", mock.Anything).
		Return(domain.NewFetchResult([]domain.Property{property}, nil), nil)

	rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/listings/rent", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), property.ID.String())
	assert.Contains(t, rec.Body.String(), `"listing_type":"rent"`)
}

func TestGetListingsFailedIsBadGateway(t *testing.T) {
	api := newTestAPI(t)
	api.find.On("Execute", mock.Anything, "buy", mock.Anything).
		Return(domain.NewFetchResult[domain.Property](nil, errors.New("connection refused")), nil)

	rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/listings/buy", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestGetListingsUnknownTypeIsBadRequest(t *testing.T) {
	api := newTestAPI(t)
	api.find.On("Execute", mock.Anything, "lease", mock.Anything).
		Return(domain.FetchResult[domain.Property]{}, domain.NewValidationError("unknown listing type %q", "lease"))

	rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/listings/lease", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetFeaturedFailedIsBadGateway(t *testing.T) {
	api := newTestAPI(t)
	api.featured.On("Execute", mock.Anything).
		Return(domain.NewFetchResult[domain.Property](nil, errors.New("timeout")))

	rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/listings/featured", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	api.find.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetCities(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		api := newTestAPI(t)
		api.cities.On("Execute", mock.Anything).Return(domain.NewFetchResult([]string{"Abu Dhabi", "Dubai"}, nil))

		rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/listings/cities", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `["Abu Dhabi","Dubai"]`, rec.Body.String())
		api.find.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty", func(t *testing.T) {
		api := newTestAPI(t)
		api.cities.On("Execute", mock.Anything).Return(domain.NewFetchResult[string](nil, nil))

		rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/listings/cities", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("failed", func(t *testing.T) {
		api := newTestAPI(t)
		api.cities.On("Execute", mock.Anything).Return(domain.NewFetchResult[string](nil, errors.New("connection refused")))

		rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/listings/cities", nil))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestPropertyDetailsViewer(t *testing.T) {
	propertyID := uuid.New()
	details := &domain.PropertyDetails{Property: &domain.Property{ID: propertyID, Title: "Villa"}}

	t.Run("anonymous", func(t *testing.T) {
		api := newTestAPI(t)
		api.details.On("Execute", mock.Anything, propertyID, (*uuid.UUID)(nil)).Return(details, nil)

		rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/properties/"+propertyID.String(), nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"is_favorite":false`)
		api.details.AssertExpectations(t)
	})

	t.Run("authenticated", func(t *testing.T) {
		api := newTestAPI(t)
		api.details.On("Execute", mock.Anything, propertyID, mock.MatchedBy(func(v *uuid.UUID) bool {
			return v != nil && *v == api.userID
		})).Return(details, nil)

		req := withToken(httptest.NewRequest(http.MethodGet, "/api/v1/properties/"+propertyID.String(), nil), goodToken)
		rec := api.do(req)

		assert.Equal(t, http.StatusOK, rec.Code)
		api.details.AssertExpectations(t)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		api := newTestAPI(t)

		req := withToken(httptest.NewRequest(http.MethodGet, "/api/v1/properties/"+propertyID.String(), nil), badToken)
		rec := api.do(req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		api.details.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed id", func(t *testing.T) {
		api := newTestAPI(t)

		rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/properties/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing property", func(t *testing.T) {
		api := newTestAPI(t)
		api.details.On("Execute", mock.Anything, propertyID, (*uuid.UUID)(nil)).Return(nil, domain.ErrNotFound)

		rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/properties/"+propertyID.String(), nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestToggleFavorite(t *testing.T) {
	propertyID := uuid.New()
	path := "/api/v1/favorites/" + propertyID.String() + "/toggle"

	t.Run("requires authorization header", func(t *testing.T) {
		api := newTestAPI(t)

		rec := api.do(httptest.NewRequest(http.MethodPost, path, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		api.toggle.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("added", func(t *testing.T) {
		api := newTestAPI(t)
		api.toggle.On("Execute", mock.Anything, api.userID, propertyID).Return(domain.FavoriteAdded, nil)

		rec := api.do(withToken(httptest.NewRequest(http.MethodPost, path, nil), goodToken))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"added","is_favorite":true}`, rec.Body.String())
	})

	t.Run("removed", func(t *testing.T) {
		api := newTestAPI(t)
		api.toggle.On("Execute", mock.Anything, api.userID, propertyID).Return(domain.FavoriteRemoved, nil)

		rec := api.do(withToken(httptest.NewRequest(http.MethodPost, path, nil), goodToken))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"removed","is_favorite":false}`, rec.Body.String())
	})

	t.Run("unknown property", func(t *testing.T) {
		api := newTestAPI(t)
		api.toggle.On("Execute", mock.Anything, api.userID, propertyID).Return(domain.ToggleOutcome(""), domain.ErrNotFound)

		rec := api.do(withToken(httptest.NewRequest(http.MethodPost, path, nil), goodToken))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	api := newTestAPI(t)
	api.authorize.On("Execute", mock.Anything, api.userID, domain.RoleAdmin).Return(domain.ErrForbidden)

	rec := api.do(withToken(httptest.NewRequest(http.MethodGet, "/api/v1/admin/overview", nil), goodToken))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	api.overview.AssertNotCalled(t, "Execute", mock.Anything)
}

func TestAdminOverviewForAdmin(t *testing.T) {
	api := newTestAPI(t)
	api.authorize.On("Execute", mock.Anything, api.userID, domain.RoleAdmin).Return(nil)
	api.overview.On("Execute", mock.Anything).Return(&domain.AdminOverview{}, nil)

	rec := api.do(withToken(httptest.NewRequest(http.MethodGet, "/api/v1/admin/overview", nil), goodToken))

	assert.Equal(t, http.StatusOK, rec.Code)
	api.overview.AssertExpectations(t)
}

func TestCreateProperty(t *testing.T) {
	t.Run("schema violation", func(t *testing.T) {
		api := newTestAPI(t)
		body := `{"title":"Flat","property_type":"apartment","listing_type":"buy","price":-5,"city":"Dubai"}`

		req := httptest.NewRequest(http.MethodPost, "/api/v1/properties", strings.NewReader(body))
		rec := api.do(withToken(req, goodToken))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		api.create.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("latitude without longitude", func(t *testing.T) {
		api := newTestAPI(t)
		body := `{"title":"Flat","property_type":"apartment","listing_type":"buy","price":5,"city":"Dubai","latitude":25.2}`

		req := httptest.NewRequest(http.MethodPost, "/api/v1/properties", strings.NewReader(body))
		rec := api.do(withToken(req, goodToken))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("created", func(t *testing.T) {
		api := newTestAPI(t)
		created := &domain.Property{ID: uuid.New(), Title: "Flat", City: "Dubai", Price: 5000}
		api.create.On("Execute", mock.Anything, api.userID, mock.MatchedBy(func(in domain.PropertyInput) bool {
			return in.Title == "Flat" && in.ListingType == domain.ListingTypeBuy && in.Price == 5000
		})).Return(created, nil)
		body := `{"title":"Flat","property_type":"apartment","listing_type":"buy","price":5000,"city":"Dubai"}`

		req := httptest.NewRequest(http.MethodPost, "/api/v1/properties", strings.NewReader(body))
		rec := api.do(withToken(req, goodToken))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), created.ID.String())
		api.create.AssertExpectations(t)
	})

	t.Run("published with assigned agent", func(t *testing.T) {
		api := newTestAPI(t)
		agentID := uuid.New()
		created := &domain.Property{ID: uuid.New(), Title: "Villa", City: "Dubai", Price: 600000, Status: domain.StatusPublished, AgentID: &agentID}
		api.create.On("Execute", mock.Anything, api.userID, mock.MatchedBy(func(in domain.PropertyInput) bool {
			return in.Status == domain.StatusPublished && in.AgentID != nil && *in.AgentID == agentID
		})).Return(created, nil)
		body := `{"title":"Villa","property_type":"villa","listing_type":"buy","price":600000,"city":"Dubai",` +
			`"status":"published","agent_id":"` + agentID.String() + `"}`

		req := httptest.NewRequest(http.MethodPost, "/api/v1/properties", strings.NewReader(body))
		rec := api.do(withToken(req, goodToken))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"published"`)
		api.create.AssertExpectations(t)
	})

	t.Run("closed status", func(t *testing.T) {
		api := newTestAPI(t)
		body := `{"title":"Flat","property_type":"apartment","listing_type":"buy","price":5,"city":"Dubai","status":"sold"}`

		req := httptest.NewRequest(http.MethodPost, "/api/v1/properties", strings.NewReader(body))
		rec := api.do(withToken(req, goodToken))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		api.create.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("assignment by non-admin", func(t *testing.T) {
		api := newTestAPI(t)
		api.create.On("Execute", mock.Anything, api.userID, mock.Anything).Return(nil, domain.ErrForbidden)
		body := `{"title":"Flat","property_type":"apartment","listing_type":"buy","price":5,"city":"Dubai",` +
			`"agent_id":"` + uuid.NewString() + `"}`

		req := httptest.NewRequest(http.MethodPost, "/api/v1/properties", strings.NewReader(body))
		rec := api.do(withToken(req, goodToken))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("ineligible identity", func(t *testing.T) {
		api := newTestAPI(t)
		api.create.On("Execute", mock.Anything, api.userID, mock.Anything).Return(nil, domain.ErrIneligibleIdentity)
		body := `{"title":"Flat","property_type":"apartment","listing_type":"rent","price":100,"city":"Dubai"}`

		req := httptest.NewRequest(http.MethodPost, "/api/v1/properties", strings.NewReader(body))
		rec := api.do(withToken(req, goodToken))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestUpdatePropertyRejectsCreateOnlyFields(t *testing.T) {
	api := newTestAPI(t)
	body := `{"title":"Flat","property_type":"apartment","listing_type":"buy","price":5,"city":"Dubai","status":"published"}`

	req := httptest.NewRequest(http.MethodPut, "/api/v1/properties/"+uuid.NewString(), strings.NewReader(body))
	rec := api.do(withToken(req, goodToken))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "only on creation")
}

func TestUploadImagesMultipart(t *testing.T) {
	api := newTestAPI(t)
	propertyID := uuid.New()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	for _, name := range []string{"a.jpg", "b.png"} {
		part, err := form.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = io.WriteString(part, "image-bytes-"+name)
		require.NoError(t, err)
	}
	require.NoError(t, form.Close())

	api.uploadImages.On("Execute", mock.Anything, api.userID, propertyID, mock.MatchedBy(func(files []domain.UploadFile) bool {
		return len(files) == 2 && files[0].Filename == "a.jpg" && files[1].Filename == "b.png"
	})).Return(&domain.UploadReport{URLs: []string{"http://media/a.jpg"}, Skipped: []string{"b.png"}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/properties/"+propertyID.String()+"/images", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := api.do(withToken(req, goodToken))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"urls":["http://media/a.jpg"],"skipped":["b.png"]}`, rec.Body.String())
	api.uploadImages.AssertExpectations(t)
}

func TestUploadImagesWithoutFiles(t *testing.T) {
	api := newTestAPI(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("note", "empty"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/properties/"+uuid.NewString()+"/images", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := api.do(withToken(req, goodToken))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTraceIDHeader(t *testing.T) {
	api := newTestAPI(t)
	api.featured.On("Execute", mock.Anything).Return(domain.FetchResult[domain.Property]{State: domain.FetchEmpty})

	traceID := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/listings/featured", nil)
	req.Header.Set(traceIDHeader, traceID)
	rec := api.do(req)
	assert.Equal(t, traceID, rec.Header().Get(traceIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/listings/featured", nil)
	req.Header.Set(traceIDHeader, "not-a-uuid")
	rec = api.do(req)
	generated := rec.Header().Get(traceIDHeader)
	assert.NotEqual(t, "not-a-uuid", generated)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	api.health = fakePinger{}
	rec := api.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	api.health = fakePinger{err: errors.New("db down")}
	rec = api.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMediaServing(t *testing.T) {
	api := newTestAPI(t)
	api.mediaRoot = t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(api.mediaRoot, "properties"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(api.mediaRoot, "properties", "a.txt"), []byte("hello"), 0o644))

	rec := api.do(httptest.NewRequest(http.MethodGet, "/media/properties/a.txt", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())

	rec = api.do(httptest.NewRequest(http.MethodGet, "/media/properties/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"route not found"}`, rec.Body.String())
}
