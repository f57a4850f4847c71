package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/agrotrack/livestock_tracker/internal/hash"
	"github.com/agrotrack/livestock_tracker/internal/middleware"
	"github.com/agrotrack/livestock_tracker/internal/models"
	"github.com/agrotrack/livestock_tracker/internal/repo"
	"github.com/agrotrack/livestock_tracker/internal/service"
	"github.com/agrotrack/livestock_tracker/internal/tokens"
)

var testSecret = []byte("test-secret")

type testEnv struct {
	T    *testing.T
	E    *echo.Echo
	DB   *gorm.DB
	Auth *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.RevokedToken{}, &models.Shipment{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: db}
	hasher := hash.New(bcrypt.MinCost)
	issuer := &tokens.Issuer{Secret: testSecret, TTL: 24 * time.Hour}

	authSvc := &service.AuthService{Repo: gormRepo, Hasher: hasher, Issuer: issuer}

	e := echo.New()
	Register(e, &Deps{
		Auth:  &AuthHTTP{Svc: authSvc},
		Users: &UserHTTP{Svc: &service.UserService{Repo: gormRepo, Hasher: hasher}},
		Reports: &ReportHTTP{
			Shipments: &service.ShipmentService{Repo: gormRepo},
			Reports:   &service.ReportService{Repo: gormRepo},
		},
		AuthMw: middleware.NewAuth(authSvc),
	})

	return &testEnv{T: t, E: e, DB: db, Auth: authSvc}
}

func (env *testEnv) seedUser(username, password, role string, active bool) *models.User {
	env.T.Helper()

	digest, err := env.Auth.Hasher.HashPassword(password)
	require.NoError(env.T, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@x.com",
		PasswordHash: digest,
		Role:         role,
		Active:       active,
	}
	require.NoError(env.T, env.Auth.Repo.CreateUser(context.Background(), user))
	return user
}

func (env *testEnv) request(method, path, token string, body any) *httptest.ResponseRecorder {
	env.T.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(env.T, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(username, password string) string {
	env.T.Helper()

	rec := env.request(http.MethodPost, "/login", "", LoginRequest{
		Username: username,
		Password: password,
	})
	require.Equal(env.T, http.StatusOK, rec.Code)

	var resp TokenResponse
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(env.T, "bearer", resp.TokenType)
	require.NotEmpty(env.T, resp.AccessToken)
	return resp.AccessToken
}
