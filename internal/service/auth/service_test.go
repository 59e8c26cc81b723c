package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"nexuscart/internal/domain"
	tokenrepo "nexuscart/internal/repository/token"
)

type memUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*domain.User{}}
}

func (m *memUserRepo) Create(_ context.Context, u domain.User) (*domain.User, error) {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, domain.ErrAlreadyExists
		}
	}
	m.nextID++
	u.ID = fmt.Sprintf("u%d", m.nextID)
	m.users[u.ID] = &u
	out := u
	return &out, nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) SetRole(_ context.Context, email string, role domain.Role) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			u.Role = role
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memTokenRepo struct {
	tokens map[string]tokenrepo.Token
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: map[string]tokenrepo.Token{}}
}

func (m *memTokenRepo) Create(_ context.Context, t tokenrepo.Token) error {
	if _, ok := m.tokens[t.Token]; ok {
		return domain.ErrAlreadyExists
	}
	m.tokens[t.Token] = t
	return nil
}

func (m *memTokenRepo) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	t, ok := m.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *memTokenRepo) Delete(_ context.Context, token string) error {
	if _, ok := m.tokens[token]; !ok {
		return domain.ErrNotFound
	}
	delete(m.tokens, token)
	return nil
}

func TestSignupNormalizesEmailAndDefaultsRole(t *testing.T) {
	svc := New(newMemUserRepo(), newMemTokenRepo())

	u, err := svc.Signup(context.Background(), "  Alice@Example.COM ", "Secret123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.Role != domain.RoleUser {
		t.Fatalf("expected role user, got %q", u.Role)
	}
	if u.PasswordHash == "Secret123" || u.PasswordHash == "" {
		t.Fatalf("password must be hashed")
	}
}

func TestSignupRejectsWeakPasswords(t *testing.T) {
	svc := New(newMemUserRepo(), newMemTokenRepo())

	cases := []string{
		"short1A",     // too short
		"alllower123", // no uppercase
		"ALLUPPER123", // no lowercase
		"NoDigitsHere",
	}
	for _, password := range cases {
		if _, err := svc.Signup(context.Background(), "a@b.com", password); err == nil {
			t.Errorf("password %q: expected rejection", password)
		}
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := New(newMemUserRepo(), newMemTokenRepo())

	if _, err := svc.Signup(context.Background(), "a@b.com", "Secret123"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := svc.Signup(context.Background(), "A@B.com", "Secret123"); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestLoginAndTokenRoundtrip(t *testing.T) {
	svc := New(newMemUserRepo(), newMemTokenRepo())

	signedUp, err := svc.Signup(context.Background(), "a@b.com", "Secret123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	u, token, err := svc.Login(context.Background(), "a@b.com", "Secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.ID != signedUp.ID || token == "" {
		t.Fatalf("unexpected login result: %+v token=%q", u, token)
	}

	resolved, err := svc.LookupByToken(context.Background(), token)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if resolved.ID != signedUp.ID {
		t.Fatalf("token resolved to wrong user: %s", resolved.ID)
	}

	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.LookupByToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}
	// Revoking again stays quiet.
	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("repeat logout: %v", err)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	svc := New(newMemUserRepo(), newMemTokenRepo())

	if _, _, err := svc.Login(context.Background(), "nobody@b.com", "Secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}

	if _, err := svc.Signup(context.Background(), "a@b.com", "Secret123"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "a@b.com", "WrongPass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestExpiredTokenIsRejectedAndDeleted(t *testing.T) {
	users := newMemUserRepo()
	tokens := newMemTokenRepo()
	svc := New(users, tokens)

	u, err := svc.Signup(context.Background(), "a@b.com", "Secret123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	tokens.tokens["stale"] = tokenrepo.Token{
		Token:     "stale",
		UserID:    u.ID,
		Kind:      "access",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	if _, err := svc.LookupByToken(context.Background(), "stale"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
	if _, ok := tokens.tokens["stale"]; ok {
		t.Fatalf("expired token should have been deleted")
	}
}

func TestNonAccessTokenRejected(t *testing.T) {
	users := newMemUserRepo()
	tokens := newMemTokenRepo()
	svc := New(users, tokens)

	u, err := svc.Signup(context.Background(), "a@b.com", "Secret123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	tokens.tokens["other"] = tokenrepo.Token{
		Token:     "other",
		UserID:    u.ID,
		Kind:      "refresh",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	if _, err := svc.LookupByToken(context.Background(), "other"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for non-access token, got %v", err)
	}
}
