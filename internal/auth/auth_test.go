package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lexhour/lexhour/internal/models"
)

// memoryUsers is a minimal in-memory UserStorage for tests.
type memoryUsers struct {
	byEmail map[string]*models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: make(map[string]*models.User)}
}

func (m *memoryUsers) CreateUser(_ context.Context, user *models.User) error {
	m.byEmail[user.Email] = user
	return nil
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.byEmail[email], nil
}

func (m *memoryUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	authn := NewPasswordAuthenticator(newMemoryUsers())

	t.Run("rejects weak password", func(t *testing.T) {
		_, err := authn.Register(ctx, "a@firm.test", "A", "short")
		if !errors.Is(err, ErrWeakPassword) {
			t.Errorf("err = %v, want ErrWeakPassword", err)
		}
	})

	t.Run("register then authenticate", func(t *testing.T) {
		user, err := authn.Register(ctx, "counsel@firm.test", "Counsel", "correct horse")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if user.ID == "" || user.PasswordHash == "correct horse" {
			t.Errorf("expected generated ID and hashed password, got %+v", user)
		}

		got, err := authn.Authenticate(ctx, "counsel@firm.test", "correct horse")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("authenticated user = %s, want %s", got.ID, user.ID)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := authn.Register(ctx, "counsel@firm.test", "Again", "correct horse")
		if !errors.Is(err, ErrEmailExists) {
			t.Errorf("err = %v, want ErrEmailExists", err)
		}
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		_, err := authn.Authenticate(ctx, "counsel@firm.test", "wrong")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("err = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestTokenManagerRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret-key", time.Hour)
	user := &models.User{ID: "u1", Email: "counsel@firm.test"}

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "counsel@firm.test" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenManagerRejectsExpired(t *testing.T) {
	manager := NewTokenManager("test-secret-key", -time.Minute)
	token, err := manager.Generate(&models.User{ID: "u1", Email: "x@firm.test"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestTokenManagerRejectsForeignSignature(t *testing.T) {
	issuer := NewTokenManager("key-one", time.Hour)
	verifier := NewTokenManager("key-two", time.Hour)

	token, err := issuer.Generate(&models.User{ID: "u1", Email: "x@firm.test"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := verifier.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}
