package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"authgate/internal/auth"
	apperrors "authgate/internal/errors"
	"authgate/internal/handler"
	"authgate/internal/model"
	"authgate/internal/router"
	"authgate/internal/service"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, firstName, lastName, email, password string) (*model.User, *service.TokenPair, error)
	loginFn    func(ctx context.Context, email, password string) (*model.User, *service.TokenPair, error)
	refreshFn  func(ctx context.Context, refreshToken string) (string, error)
	logoutFn   func(ctx context.Context, refreshToken string) error
}

func (s *stubAuthService) Register(ctx context.Context, firstName, lastName, email, password string) (*model.User, *service.TokenPair, error) {
	return s.registerFn(ctx, firstName, lastName, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*model.User, *service.TokenPair, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubAuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.logoutFn(ctx, refreshToken)
}

type noopTokenStore struct{}

func (noopTokenStore) StoreRefreshToken(context.Context, string, uint, string, time.Duration) error {
	return nil
}
func (noopTokenStore) GetRefreshToken(context.Context, string) (uint, string, error) {
	return 0, "", errors.New("not found")
}
func (noopTokenStore) DeleteRefreshToken(context.Context, string) error            { return nil }
func (noopTokenStore) BlacklistAccessToken(context.Context, string, time.Duration) error {
	return nil
}
func (noopTokenStore) IsAccessTokenBlacklisted(context.Context, string) (bool, error) {
	return false, nil
}

// newTestApp wires an echo instance with the service's validator, error
// boundary and auth routes, backed by the stubbed auth service. Routes are
// mounted directly rather than via router.Register so each test gets a fresh
// app without re-registering prometheus collectors.
func newTestApp(t *testing.T, svc service.AuthService) (*echo.Echo, *auth.JWTService) {
	t.Helper()

	jwtService := auth.NewJWTService("test-secret", 0, 0)
	authHandler := handler.NewAuthHandler(svc, jwtService, noopTokenStore{})

	e := echo.New()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = router.NewHTTPErrorHandler(zerolog.Nop())
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)
	e.POST("/api/auth/refresh", authHandler.Refresh)
	e.POST("/api/auth/logout", authHandler.Logout)
	return e, jwtService
}

func issuedPair(t *testing.T, jwtService *auth.JWTService, userID uint) *service.TokenPair {
	t.Helper()
	accessToken, err := jwtService.GenerateAccessToken(userID, model.RoleCustomer)
	assert.NoError(t, err)
	_, refreshToken, err := jwtService.GenerateRefreshToken(userID, model.RoleCustomer)
	assert.NoError(t, err)
	return &service.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRegister_Success(t *testing.T) {
	var jwtService *auth.JWTService
	registered := 0

	stub := &stubAuthService{
		registerFn: func(ctx context.Context, firstName, lastName, email, password string) (*model.User, *service.TokenPair, error) {
			registered++
			assert.Equal(t, "Shiva", firstName)
			assert.Equal(t, "Pal", lastName)
			assert.Equal(t, "shivapal108941@gmail.com", email)
			assert.Equal(t, "secret@1234", password)
			user := &model.User{ID: 1, FirstName: firstName, LastName: lastName, Email: email, Role: model.RoleCustomer}
			return user, issuedPair(t, jwtService, user.ID), nil
		},
	}
	e, js := newTestApp(t, stub)
	jwtService = js

	rec := postJSON(e, "/api/auth/register",
		`{"firstName":"Shiva","lastName":"Pal","email":"shivapal108941@gmail.com","password":"secret@1234"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, registered)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["id"])
	assert.Equal(t, "customer", resp["role"])

	cookies := rec.Result().Cookies()
	for _, name := range []string{"accessToken", "refreshToken"} {
		cookie := cookieByName(cookies, name)
		assert.NotNil(t, cookie, "missing cookie %s", name)
		assert.True(t, cookie.HttpOnly)
		assert.Len(t, strings.Split(cookie.Value, "."), 3, "cookie %s is not JWT-shaped", name)
	}
}

func TestRegister_TrimsWhitespaceBeforeService(t *testing.T) {
	var jwtService *auth.JWTService
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, firstName, lastName, email, password string) (*model.User, *service.TokenPair, error) {
			assert.Equal(t, "shivapal108941@gmail.com", email)
			user := &model.User{ID: 1, Email: email, Role: model.RoleCustomer}
			return user, issuedPair(t, jwtService, user.ID), nil
		},
	}
	e, js := newTestApp(t, stub)
	jwtService = js

	rec := postJSON(e, "/api/auth/register",
		`{"firstName":"Shiva","lastName":"Pal","email":"  shivapal108941@gmail.com  ","password":"secret@1234"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRegister_EmptyEmail(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, firstName, lastName, email, password string) (*model.User, *service.TokenPair, error) {
			t.Fatal("service must not be called on validation failure")
			return nil, nil, nil
		},
	}
	e, _ := newTestApp(t, stub)

	rec := postJSON(e, "/api/auth/register",
		`{"firstName":"Shiva","lastName":"Pal","email":"","password":"secret@1234"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope apperrors.Envelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Errors)
	assert.Equal(t, "email", envelope.Errors[0].Path)
	assert.Equal(t, "body", envelope.Errors[0].Location)
	assert.Empty(t, rec.Result().Cookies())
}

func TestRegister_AllFieldsMissing(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, firstName, lastName, email, password string) (*model.User, *service.TokenPair, error) {
			t.Fatal("service must not be called on validation failure")
			return nil, nil, nil
		},
	}
	e, _ := newTestApp(t, stub)

	rec := postJSON(e, "/api/auth/register", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope apperrors.Envelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Errors, 4)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, firstName, lastName, email, password string) (*model.User, *service.TokenPair, error) {
			return nil, nil, apperrors.ErrEmailTaken
		},
	}
	e, _ := newTestApp(t, stub)

	rec := postJSON(e, "/api/auth/register",
		`{"firstName":"Shiva","lastName":"Pal","email":"shivapal108941@gmail.com","password":"secret@1234"}`)

	// Duplicate email is a 400 on this API, not a 409.
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope apperrors.Envelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Errors, 1)
	assert.Equal(t, apperrors.TypeConflict, envelope.Errors[0].Type)
	assert.Equal(t, "email", envelope.Errors[0].Path)
	assert.Empty(t, rec.Result().Cookies())
}

func TestRegister_PersistenceFailureIsOpaque500(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, firstName, lastName, email, password string) (*model.User, *service.TokenPair, error) {
			return nil, nil, errors.New("dial tcp 10.0.0.5:3306: connection refused")
		},
	}
	e, _ := newTestApp(t, stub)

	rec := postJSON(e, "/api/auth/register",
		`{"firstName":"Shiva","lastName":"Pal","email":"shivapal108941@gmail.com","password":"secret@1234"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var envelope apperrors.Envelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Errors, 1)
	assert.Equal(t, apperrors.TypeInternal, envelope.Errors[0].Type)
	assert.Equal(t, "internal server error", envelope.Errors[0].Msg)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*model.User, *service.TokenPair, error) {
			return nil, nil, apperrors.ErrInvalidCredentials
		},
	}
	e, _ := newTestApp(t, stub)

	rec := postJSON(e, "/api/auth/login", `{"email":"a@example.com","password":"wrong-password"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var envelope apperrors.Envelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, apperrors.TypeUnauthorized, envelope.Errors[0].Type)
}

func TestRefresh_FromCookie(t *testing.T) {
	var jwtService *auth.JWTService
	stub := &stubAuthService{
		refreshFn: func(ctx context.Context, refreshToken string) (string, error) {
			return jwtService.GenerateAccessToken(1, model.RoleCustomer)
		},
	}
	e, js := newTestApp(t, stub)
	jwtService = js

	_, refreshToken, err := jwtService.GenerateRefreshToken(1, model.RoleCustomer)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refreshToken})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	cookie := cookieByName(rec.Result().Cookies(), "accessToken")
	assert.NotNil(t, cookie)
	assert.Len(t, strings.Split(cookie.Value, "."), 3)
}

func TestLogout_ClearsCookies(t *testing.T) {
	var jwtService *auth.JWTService
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, refreshToken string) error { return nil },
	}
	e, js := newTestApp(t, stub)
	jwtService = js

	_, refreshToken, err := jwtService.GenerateRefreshToken(1, model.RoleCustomer)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refreshToken})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	for _, name := range []string{"accessToken", "refreshToken"} {
		cookie := cookieByName(rec.Result().Cookies(), name)
		assert.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
	}
}
