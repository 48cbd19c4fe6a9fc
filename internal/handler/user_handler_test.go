package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"collabtask/internal/auth"
	"collabtask/internal/handler"
	"collabtask/internal/logging"
	"collabtask/internal/model"
	"collabtask/internal/repository"
	"collabtask/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	args := m.Called(ctx, ids)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) FindByName(ctx context.Context, name string) (*model.User, error) {
	args := m.Called(ctx, name)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func setupTest() (*gin.Engine, *MockUserRepository) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mockRepo := new(MockUserRepository)

	log := logging.Discard()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	userHandler := handler.NewUserHandler(service.NewIdentityService(mockRepo, tokens, log), log)

	r.POST("/signup", userHandler.Signup)
	r.POST("/login", userHandler.Login)
	r.GET("/users", userHandler.List)
	return r, mockRepo
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func errorMessage(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	msg, _ := body["error"].(string)
	return msg
}

func TestSignup_Success(t *testing.T) {
	// Arrange
	router, mockRepo := setupTest()
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, repository.ErrUserNotFound)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	reqBody := service.SignupInput{Name: "Test User", Email: "Test@Example.com", Password: "password123"}

	// Act
	resp := postJSON(router, "/signup", reqBody)

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)

	var response service.AuthResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.NotEmpty(t, response.Token)
	assert.NotEmpty(t, response.UserID)
	assert.Equal(t, "Test User", response.Name)
	assert.Equal(t, "test@example.com", response.Email)
	assert.NotContains(t, resp.Body.String(), "password")

	mockRepo.AssertExpectations(t)
}

func TestSignup_UserAlreadyExists(t *testing.T) {
	router, mockRepo := setupTest()
	existing := &model.User{ID: uuid.New(), Email: "existing@example.com", Name: "Existing User"}
	mockRepo.On("FindByEmail", mock.Anything, "existing@example.com").Return(existing, nil)

	resp := postJSON(router, "/signup", service.SignupInput{Name: "Test", Email: "existing@example.com", Password: "pw"})

	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "User with this email already exists", errorMessage(t, resp))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignup_InvalidBody(t *testing.T) {
	router, _ := setupTest()

	req, _ := http.NewRequest("POST", "/signup", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Invalid input", errorMessage(t, resp))
}

func TestSignup_StorageFailure(t *testing.T) {
	router, mockRepo := setupTest()
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, errors.New("connection refused"))

	resp := postJSON(router, "/signup", service.SignupInput{Name: "Test", Email: "test@example.com", Password: "pw"})

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "Internal server error", errorMessage(t, resp))
	assert.NotContains(t, resp.Body.String(), "connection refused")
}

func TestLogin(t *testing.T) {
	router, mockRepo := setupTest()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	user := &model.User{ID: uuid.New(), Email: "test@example.com", Name: "Test User", HashedPassword: hash}
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)
	mockRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrUserNotFound)

	t.Run("success", func(t *testing.T) {
		resp := postJSON(router, "/login", service.LoginInput{Email: "test@example.com", Password: "password123"})

		assert.Equal(t, http.StatusOK, resp.Code)
		var response service.AuthResult
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
		assert.Equal(t, user.ID.String(), response.UserID)
		assert.NotEmpty(t, response.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := postJSON(router, "/login", service.LoginInput{Email: "test@example.com", Password: "wrong"})

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, "Invalid credentials", errorMessage(t, resp))
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := postJSON(router, "/login", service.LoginInput{Email: "nobody@example.com", Password: "password123"})

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, "Invalid credentials", errorMessage(t, resp))
	})
}

func TestListUsers(t *testing.T) {
	router, mockRepo := setupTest()
	alice := model.User{ID: uuid.New(), Name: "Alice", Email: "a@x.com", HashedPassword: "secret-hash", AvatarURL: "a.png"}
	mockRepo.On("List", mock.Anything).Return([]model.User{alice}, nil)

	req, _ := http.NewRequest("GET", "/users", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Users []service.UserSummary `json:"users"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, []service.UserSummary{{UserID: alice.ID.String(), Username: "Alice", Avatar: "a.png"}}, body.Users)
	assert.NotContains(t, resp.Body.String(), "secret-hash")
}
