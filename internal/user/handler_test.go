package user

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

func (m *MockService) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockService) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockService) GetByID(ctx context.Context, userID int) (*User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockService) UpdateMe(ctx context.Context, userID int, req UpdateRequest) (*User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockService) GetStats(ctx context.Context, userID int) (*Stats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Stats), args.Error(1)
}

func (m *MockService) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*User), args.Error(2)
}

func setupUserRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)

	router := gin.New()
	router.POST("/api/auth/register", h.Register)
	router.POST("/api/auth/login", h.Login)
	router.GET("/api/users/me", func(c *gin.Context) {
		c.Set("user_id", 1)
		h.GetMe(c)
	})
	router.PUT("/api/users/me", func(c *gin.Context) {
		c.Set("user_id", 1)
		h.UpdateMe(c)
	})
	return router
}

func TestRegister_Handler_Conflict(t *testing.T) {
	svc := new(MockService)
	router := setupUserRouter(svc)

	svc.On("Register", mock.Anything, mock.Anything).Return(nil, "", "", ErrEmailExists)

	body, _ := json.Marshal(RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Phone: "11 98888-7777", Password: "secret1",
	})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_Handler_InvalidBody(t *testing.T) {
	svc := new(MockService)
	router := setupUserRouter(svc)

	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBufferString(`{"email":"bad"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation failed")
	svc.AssertNotCalled(t, "Register")
}

func TestLogin_Handler_Success(t *testing.T) {
	svc := new(MockService)
	router := setupUserRouter(svc)

	svc.On("Login", mock.Anything, LoginRequest{Email: "ana@example.com", Password: "secret1"}).
		Return(&User{ID: 1, Email: "ana@example.com"}, "access", "refresh", nil)

	body, _ := json.Marshal(LoginRequest{Email: "ana@example.com", Password: "secret1"})
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
}

func TestGetMe_Handler(t *testing.T) {
	svc := new(MockService)
	router := setupUserRouter(svc)

	svc.On("GetByID", mock.Anything, 1).Return(&User{ID: 1, Name: "Ana"}, nil)

	req := httptest.NewRequest("GET", "/api/users/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateMe_Handler_EmailConflict(t *testing.T) {
	svc := new(MockService)
	router := setupUserRouter(svc)

	svc.On("UpdateMe", mock.Anything, 1, mock.Anything).Return(nil, ErrEmailExists)

	req := httptest.NewRequest("PUT", "/api/users/me", bytes.NewBufferString(`{"email":"taken@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
