package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) CreateUser(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockUserRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockUserRepository) ListUsers(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]User), args.Error(1)
}

func (m *mockUserRepository) UpdateUser(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func newTestService(repo Repository) *Service {
	return NewService(repo, "test-secret", time.Hour, zap.NewNop())
}

func activeUser(password string) *User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &User{
		ID:           uuid.New(),
		Email:        "loja@example.com",
		PasswordHash: string(hash),
		FullName:     "Loja Centro",
		Role:         RoleLoja,
		Active:       true,
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := new(mockUserRepository)
	repo.On("GetUserByEmail", mock.Anything, "novo@example.com").Return(nil, nil)
	repo.On("CreateUser", mock.Anything, mock.AnythingOfType("*auth.User")).Return(nil)

	svc := newTestService(repo)
	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "novo@example.com",
		Password: "senha-segura",
		FullName: "Novo Vendedor",
		Role:     RoleVendedor,
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.NotEqual(t, "senha-segura", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("senha-segura")))
	assert.True(t, user.Active)
	repo.AssertExpectations(t)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	existing := activeUser("whatever")
	repo := new(mockUserRepository)
	repo.On("GetUserByEmail", mock.Anything, existing.Email).Return(existing, nil)

	svc := newTestService(repo)
	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    existing.Email,
		Password: "outra-senha",
		FullName: "Duplicado",
		Role:     RoleVendedor,
	})

	assert.ErrorIs(t, err, ErrEmailTaken)
	repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestLoginIssuesParsableToken(t *testing.T) {
	user := activeUser("senha-certa")
	repo := new(mockUserRepository)
	repo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

	svc := newTestService(repo)
	token, got, err := svc.Login(context.Background(), user.Email, "senha-certa")

	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	identity, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, RoleLoja, identity.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	user := activeUser("senha-certa")
	repo := new(mockUserRepository)
	repo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

	svc := newTestService(repo)
	_, _, err := svc.Login(context.Background(), user.Email, "senha-errada")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := new(mockUserRepository)
	repo.On("GetUserByEmail", mock.Anything, "ninguem@example.com").Return(nil, nil)

	svc := newTestService(repo)
	_, _, err := svc.Login(context.Background(), "ninguem@example.com", "qualquer")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	user := activeUser("senha-certa")
	user.Active = false
	repo := new(mockUserRepository)
	repo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

	svc := newTestService(repo)
	_, _, err := svc.Login(context.Background(), user.Email, "senha-certa")

	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(new(mockUserRepository))

	_, err := svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	user := activeUser("senha")
	repo := new(mockUserRepository)
	repo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

	issuer := NewService(repo, "secret-a", time.Hour, zap.NewNop())
	token, _, err := issuer.Login(context.Background(), user.Email, "senha")
	require.NoError(t, err)

	verifier := NewService(repo, "secret-b", time.Hour, zap.NewNop())
	_, err = verifier.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHasPermissionHierarchy(t *testing.T) {
	assert.True(t, HasPermission(RoleMaster, RoleVendedor))
	assert.True(t, HasPermission(RoleLoja, RoleVendedor))
	assert.True(t, HasPermission(RoleLoja, RoleLoja))
	assert.False(t, HasPermission(RoleVendedor, RoleLoja))
	assert.False(t, HasPermission(RoleVendedor, RoleMaster))
}
