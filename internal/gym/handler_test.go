package gym

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, params ListParams) ([]GymWithDistance, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]GymWithDistance), args.Error(1)
}

func (m *MockService) Search(ctx context.Context, params ListParams) ([]GymWithDistance, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]GymWithDistance), args.Error(1)
}

func (m *MockService) GetByID(ctx context.Context, id int) (*Gym, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Gym), args.Error(1)
}

func (m *MockService) Create(ctx context.Context, req CreateGymRequest) (*Gym, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Gym), args.Error(1)
}

func (m *MockService) Update(ctx context.Context, id int, req UpdateGymRequest) (*Gym, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Gym), args.Error(1)
}

func setupGymRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)

	router := gin.New()
	router.GET("/api/gyms", h.ListGyms)
	router.GET("/api/gyms/search", h.SearchGyms)
	router.GET("/api/gyms/:gymID", h.GetGym)
	router.POST("/api/admin/gyms", h.CreateGym)
	router.PATCH("/api/admin/gyms/:gymID", h.UpdateGym)
	return router
}

func TestListGyms_Handler(t *testing.T) {
	svc := new(MockService)
	router := setupGymRouter(svc)

	d := 1.25
	svc.On("List", mock.Anything, mock.MatchedBy(func(p ListParams) bool {
		return p.Lat != nil && *p.Lat == -23.55 && p.RadiusKm == 5
	})).Return([]GymWithDistance{{ID: 1, Name: "Near Gym", DistanceKm: &d}}, nil)

	req := httptest.NewRequest("GET", "/api/gyms?lat=-23.55&lon=-46.63&radius=5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body []GymWithDistance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "Near Gym", body[0].Name)
	assert.Equal(t, 1.25, *body[0].DistanceKm)
}

func TestListGyms_Handler_LatWithoutLon(t *testing.T) {
	svc := new(MockService)
	router := setupGymRouter(svc)

	req := httptest.NewRequest("GET", "/api/gyms?lat=-23.55", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "List")
}

func TestSearchGyms_Handler_MissingQuery(t *testing.T) {
	svc := new(MockService)
	router := setupGymRouter(svc)

	req := httptest.NewRequest("GET", "/api/gyms/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetGym_Handler_NotFound(t *testing.T) {
	svc := new(MockService)
	router := setupGymRouter(svc)

	svc.On("GetByID", mock.Anything, 99).Return(nil, ErrGymNotFound)

	req := httptest.NewRequest("GET", "/api/gyms/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateGym_Handler(t *testing.T) {
	svc := new(MockService)
	router := setupGymRouter(svc)

	svc.On("Create", mock.Anything, mock.MatchedBy(func(r CreateGymRequest) bool {
		return r.Name == "Iron Temple" && r.MaxCapacity == 80
	})).Return(&Gym{ID: 3, Name: "Iron Temple", MaxCapacity: 80}, nil)

	payload := map[string]interface{}{
		"name":                "Iron Temple",
		"address":             "Av. Paulista 1000",
		"phone":               "11 99999-0000",
		"latitude":            -23.5611,
		"longitude":           -46.6564,
		"open_hours_weekdays": "06:00-22:00",
		"open_hours_weekends": "08:00-18:00",
		"max_capacity":        80,
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest("POST", "/api/admin/gyms", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateGym_Handler_MissingFields(t *testing.T) {
	svc := new(MockService)
	router := setupGymRouter(svc)

	req := httptest.NewRequest("POST", "/api/admin/gyms", bytes.NewBufferString(`{"name":"X"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Create")
}

func TestUpdateGym_Handler_PartialBody(t *testing.T) {
	svc := new(MockService)
	router := setupGymRouter(svc)

	svc.On("Update", mock.Anything, 3, mock.MatchedBy(func(r UpdateGymRequest) bool {
		return r.Name != nil && *r.Name == "Renamed" && r.Address == nil
	})).Return(&Gym{ID: 3, Name: "Renamed"}, nil)

	req := httptest.NewRequest("PATCH", "/api/admin/gyms/3", bytes.NewBufferString(`{"name":"Renamed"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
