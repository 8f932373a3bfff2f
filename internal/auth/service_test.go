// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/neighborly/internal/core"
	"github.com/carterperez-dev/neighborly/internal/middleware"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*UserInfo
	seq   int
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*UserInfo)}
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, a NewAccount) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == a.Email {
			return nil, fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}
	m.seq++
	u := &UserInfo{
		ID:           fmt.Sprintf("user-%d", m.seq),
		Email:        a.Email,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		PasswordHash: a.PasswordHash,
		Role:         a.Role,
		CommunityID:  a.CommunityID,
		Building:     a.Building,
		Unit:         a.Unit,
		CreatedAt:    time.Now(),
	}
	m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

type stubResidences struct {
	buildings map[string][]string
}

func (s *stubResidences) ValidateResidence(_ context.Context, communityID, building string) error {
	buildings, ok := s.buildings[communityID]
	if !ok {
		return fmt.Errorf("%w: community does not exist", core.ErrInvalidInput)
	}
	for _, b := range buildings {
		if b == building {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown building", core.ErrInvalidInput)
}

const communityID = "6f1c2a8e-1b7d-4f4e-9a55-0c1e2d3f4a5b"

func newTestService(t *testing.T) (*Service, *memUsers) {
	t.Helper()
	users := newMemUsers()
	residences := &stubResidences{buildings: map[string][]string{
		communityID: {"Tower A", "Tower B"},
	}}
	return NewService(newTestJWTManager(t), users, residences, nil), users
}

func registration(email string, role core.Role) RegisterRequest {
	return RegisterRequest{
		Email:       email,
		Password:    "correct horse battery",
		FirstName:   "Asha",
		LastName:    "Rao",
		Role:        string(role),
		CommunityID: communityID,
		Building:    "Tower A",
		Unit:        "1204",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	resp, err := svc.Register(ctx, registration("Asha@Example.com", core.RoleProvider))
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", resp.User.Email)
	assert.Equal(t, core.RoleProvider, resp.User.Role)
	assert.Equal(t, "Bearer", resp.Tokens.TokenType)
	assert.Equal(t, 900, resp.Tokens.ExpiresIn)

	claims, err := svc.jwt.VerifyAccessToken(ctx, resp.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, communityID, claims.CommunityID)

	login, err := svc.Login(ctx, LoginRequest{
		Email:    "asha@example.com",
		Password: "correct horse battery",
	}, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterRejects(t *testing.T) {
	ctx := context.Background()

	unknownBuilding := registration("b@example.com", core.RoleCustomer)
	unknownBuilding.Building = "Tower Z"

	unknownCommunity := registration("c@example.com", core.RoleCustomer)
	unknownCommunity.CommunityID = "00000000-0000-0000-0000-000000000000"

	tests := []struct {
		name string
		req  RegisterRequest
		want core.Kind
	}{
		{"admin self-registration", registration("a@example.com", core.RoleAdmin), core.KindValidation},
		{"unknown building", unknownBuilding, core.KindValidation},
		{"unknown community", unknownCommunity, core.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users := newTestService(t)
			_, err := svc.Register(ctx, tt.req)
			assert.Equal(t, tt.want, core.ErrorKind(err))
			assert.Zero(t, users.count())
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestService(t)

	_, err := svc.Register(ctx, registration("dup@example.com", core.RoleCustomer))
	require.NoError(t, err)

	_, err = svc.Register(ctx, registration("DUP@example.com", core.RoleProvider))
	assert.True(t, errors.Is(err, ErrEmailExists))
	assert.Equal(t, core.KindConflict, core.ErrorKind(err))
	assert.Equal(t, 1, users.count())
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Register(ctx, registration("u@example.com", core.RoleCustomer))
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "u@example.com", Password: "wrong password"}, "")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "whatever123"}, "")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	assert.Equal(t, core.KindUnauthorized, core.ErrorKind(err))
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	resp, err := svc.Register(ctx, registration("p@example.com", core.RoleCustomer))
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, resp.User.ID, "not it", "brand new secret")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	require.NoError(t, svc.ChangePassword(ctx, resp.User.ID, "correct horse battery", "brand new secret"))

	_, err = svc.Login(ctx, LoginRequest{Email: "p@example.com", Password: "brand new secret"}, "")
	assert.NoError(t, err)
}

func TestHandler_RegisterLoginMe(t *testing.T) {
	svc, _ := newTestService(t)
	h := NewHandler(svc)

	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.Authenticator(svc.jwt))

	body := `{"email":"h@example.com","password":"correct horse battery","first_name":"Ravi",` +
		`"last_name":"K","role":"customer","community_id":"` + communityID + `",` +
		`"building":"Tower B","unit":"301"}`

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"h@example.com","password":"wrong-password"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "h@example.com",
		Password: "correct horse battery",
	}, "")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Tokens.AccessToken)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"first_name":"Ravi"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
