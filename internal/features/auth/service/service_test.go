package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-portal-backend/internal/common/config"
	"trading-portal-backend/internal/features/auth/models"
)

type fakeUserRepo struct {
	byID    map[string]*models.User
	byEmail map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	copied := *user
	r.byID[user.ID] = &copied
	r.byEmail[user.Email] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, errors.New("user not found")
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.byID[user.ID]; !ok {
		return errors.New("user not found")
	}
	copied := *user
	r.byID[user.ID] = &copied
	r.byEmail[user.Email] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	user, ok := r.byID[id]
	if !ok {
		return errors.New("user not found")
	}
	delete(r.byEmail, user.Email)
	delete(r.byID, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*models.User, error) {
	result := make([]*models.User, 0, len(r.byID))
	for _, u := range r.byID {
		copied := *u
		result = append(result, &copied)
	}
	return result, nil
}

type fakeSessionRepo struct {
	sessions map[string]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*models.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *models.Session, _ time.Duration) error {
	r.sessions[session.Token] = session
	return nil
}

func (r *fakeSessionRepo) Get(_ context.Context, token string) (*models.Session, error) {
	session, ok := r.sessions[token]
	if !ok {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, token string) error {
	delete(r.sessions, token)
	return nil
}

type fakeGoogleVerifier struct {
	user *GoogleUser
	err  error
}

func (v *fakeGoogleVerifier) Verify(_ context.Context, _ string) (*GoogleUser, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.user, nil
}

type authFixture struct {
	service  AuthService
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	google   *fakeGoogleVerifier
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.Session.TTL = 168 * time.Hour

	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	google := &fakeGoogleVerifier{err: errors.New("verifier not configured")}

	return &authFixture{
		service:  NewAuthService(users, sessions, google, cfg),
		users:    users,
		sessions: sessions,
		google:   google,
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and starts session", func(t *testing.T) {
		f := newAuthFixture(t)

		user, token, err := f.service.Register(ctx, &models.RegisterRequest{
			Email:    "alice@example.com",
			Password: "Sup3rSecret!",
			Name:     "Alice",
			Country:  "IN",
		})
		require.NoError(t, err)
		require.NotEmpty(t, token)

		assert.Equal(t, "alice@example.com", user.Email)
		assert.False(t, user.IsAdmin)

		resolved, err := f.service.ResolveSession(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, resolved.ID)

		// Пароль хранится только в виде хэша
		stored, _ := f.users.GetByID(ctx, user.ID)
		assert.NotEqual(t, "Sup3rSecret!", stored.PasswordHash)
		assert.NotEmpty(t, stored.PasswordHash)
	})

	t.Run("duplicate email is refused case-insensitively", func(t *testing.T) {
		f := newAuthFixture(t)

		_, _, err := f.service.Register(ctx, &models.RegisterRequest{
			Email:    "alice@example.com",
			Password: "Sup3rSecret!",
		})
		require.NoError(t, err)

		_, _, err = f.service.Register(ctx, &models.RegisterRequest{
			Email:    "Alice@Example.COM",
			Password: "Sup3rSecret!",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("enforces password policy", func(t *testing.T) {
		f := newAuthFixture(t)

		for _, password := range []string{
			"short1!A",         // валидный нижний порог длины, должен пройти
			"nouppercase1!",    // нет верхнего регистра
			"NOLOWERCASE1!",    // нет нижнего регистра
			"NoDigitsHere!",    // нет цифры
			"NoSpecials123",    // нет спецсимвола
			"WayTooLongPass1!x", // длиннее 15
		} {
			_, _, err := f.service.Register(ctx, &models.RegisterRequest{
				Email:    "p@example.com",
				Password: password,
			})
			if password == "short1!A" {
				assert.NoError(t, err)
				continue
			}
			assert.Error(t, err, "password %q should be rejected", password)
		}
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		f := newAuthFixture(t)

		_, _, err := f.service.Register(ctx, &models.RegisterRequest{
			Email:    "not-an-email",
			Password: "Sup3rSecret!",
		})
		assert.Error(t, err)
	})
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()

	register := func(t *testing.T, f *authFixture) {
		t.Helper()
		_, _, err := f.service.Register(ctx, &models.RegisterRequest{
			Email:    "alice@example.com",
			Password: "Sup3rSecret!",
		})
		require.NoError(t, err)
	}

	t.Run("valid credentials start a fresh session", func(t *testing.T) {
		f := newAuthFixture(t)
		register(t, f)

		user, token, err := f.service.SignIn(ctx, &models.SigninRequest{
			Email:    "alice@example.com",
			Password: "Sup3rSecret!",
		})
		require.NoError(t, err)
		require.NotEmpty(t, token)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		f := newAuthFixture(t)
		register(t, f)

		_, _, err := f.service.SignIn(ctx, &models.SigninRequest{
			Email:    "ALICE@example.com",
			Password: "Sup3rSecret!",
		})
		assert.NoError(t, err)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		f := newAuthFixture(t)
		register(t, f)

		_, _, wrongPass := f.service.SignIn(ctx, &models.SigninRequest{
			Email:    "alice@example.com",
			Password: "WrongPass1!",
		})
		assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)

		_, _, unknown := f.service.SignIn(ctx, &models.SigninRequest{
			Email:    "nobody@example.com",
			Password: "Sup3rSecret!",
		})
		assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	})

	t.Run("google-only user has no local password", func(t *testing.T) {
		f := newAuthFixture(t)
		f.google.err = nil
		f.google.user = &GoogleUser{Email: "bob@example.com", Sub: "google-sub-1"}

		_, _, err := f.service.SignInWithGoogle(ctx, "credential")
		require.NoError(t, err)

		_, _, err = f.service.SignIn(ctx, &models.SigninRequest{
			Email:    "bob@example.com",
			Password: "Anything123!",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestSignInWithGoogle(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user on first sign-in", func(t *testing.T) {
		f := newAuthFixture(t)
		f.google.err = nil
		f.google.user = &GoogleUser{
			Email:     "Carol@Example.com",
			FirstName: "Carol",
			LastName:  "Jones",
			Sub:       "google-sub-7",
		}

		user, token, err := f.service.SignInWithGoogle(ctx, "credential")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		assert.Equal(t, "carol@example.com", user.Email)
		assert.Equal(t, "Carol Jones", user.Name)

		stored, err := f.users.GetByEmail(ctx, "carol@example.com")
		require.NoError(t, err)
		assert.Equal(t, "google-sub-7", stored.GoogleID)
	})

	t.Run("links google identity to an existing local user", func(t *testing.T) {
		f := newAuthFixture(t)

		registered, _, err := f.service.Register(ctx, &models.RegisterRequest{
			Email:    "alice@example.com",
			Password: "Sup3rSecret!",
		})
		require.NoError(t, err)

		f.google.err = nil
		f.google.user = &GoogleUser{Email: "alice@example.com", Sub: "google-sub-9"}

		user, _, err := f.service.SignInWithGoogle(ctx, "credential")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)

		stored, _ := f.users.GetByID(ctx, registered.ID)
		assert.Equal(t, "google-sub-9", stored.GoogleID)
		// Локальный пароль при привязке сохраняется
		assert.NotEmpty(t, stored.PasswordHash)
	})

	t.Run("verifier failure aborts sign-in", func(t *testing.T) {
		f := newAuthFixture(t)
		f.google.err = errors.New("token expired")

		_, _, err := f.service.SignInWithGoogle(ctx, "credential")
		assert.Error(t, err)
	})
}

func TestSignOut(t *testing.T) {
	ctx := context.Background()

	f := newAuthFixture(t)
	_, token, err := f.service.Register(ctx, &models.RegisterRequest{
		Email:    "alice@example.com",
		Password: "Sup3rSecret!",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.SignOut(ctx, token))

	_, err = f.service.ResolveSession(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUpdateName(t *testing.T) {
	ctx := context.Background()

	f := newAuthFixture(t)
	user, _, err := f.service.Register(ctx, &models.RegisterRequest{
		Email:    "alice@example.com",
		Password: "Sup3rSecret!",
		Name:     "Alice",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.UpdateName(ctx, user.ID, "  Alice Cooper  "))

	stored, _ := f.users.GetByID(ctx, user.ID)
	assert.Equal(t, "Alice Cooper", stored.Name)

	assert.Error(t, f.service.UpdateName(ctx, user.ID, "   "))
	assert.ErrorIs(t, f.service.UpdateName(ctx, "missing", "Bob"), ErrUserNotFound)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	f := newAuthFixture(t)
	user, _, err := f.service.Register(ctx, &models.RegisterRequest{
		Email:    "alice@example.com",
		Password: "Sup3rSecret!",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteUser(ctx, user.ID))
	assert.ErrorIs(t, f.service.DeleteUser(ctx, user.ID), ErrUserNotFound)

	// Email освобождается для повторной регистрации
	_, _, err = f.service.Register(ctx, &models.RegisterRequest{
		Email:    "alice@example.com",
		Password: "Sup3rSecret!",
	})
	assert.NoError(t, err)
}
