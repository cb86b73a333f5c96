package service

import (
	"context"
	"errors"
	"testing"

	"github.com/scoreboard/scoreboard/internal/auth"
	"github.com/scoreboard/scoreboard/internal/kv"
	"github.com/scoreboard/scoreboard/internal/metrics"
	"github.com/scoreboard/scoreboard/internal/repository"
)

type authTestEnv struct {
	svc      *AuthService
	users    *repository.UserStore
	recorder *metrics.InMemoryRecorder
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()

	users := repository.NewUserStore(kv.NewMemoryTable("users"))
	tokens := repository.NewTokenStore(kv.NewMemoryTable("tokens"))
	recorder := metrics.NewInMemory()
	svc := NewAuthService(users, auth.NewPasswordManager("test-pepper"), auth.NewManager(tokens, auth.ManagerOptions{}), recorder)

	return &authTestEnv{svc: svc, users: users, recorder: recorder}
}

func TestAuthService_RegisterAndAuthenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newAuthTestEnv(t)

	user, err := env.svc.Register(ctx, RegisterInput{Username: "alice", Password: "s3cret"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.PassHash == "s3cret" || user.PassHash == "" {
		t.Fatal("password must be stored hashed")
	}

	grant, err := env.svc.Authenticate(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if len(grant.Key) != auth.AccessKeyLen || len(grant.RefreshKey) != auth.RefreshKeyLen {
		t.Errorf("unexpected grant key lengths: %d/%d", len(grant.Key), len(grant.RefreshKey))
	}

	owner, ok, err := env.svc.CheckToken(ctx, grant.Key)
	if err != nil {
		t.Fatalf("CheckToken failed: %v", err)
	}
	if !ok || owner != "alice" {
		t.Errorf("CheckToken = (%q, %v), want (alice, true)", owner, ok)
	}

	snap := env.recorder.Snapshot()
	if snap.AuthSuccesses != 1 || snap.TokensIssued != 1 || snap.TokenChecksValid != 1 {
		t.Errorf("unexpected counters: %+v", snap)
	}
}

func TestAuthService_AuthenticateErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newAuthTestEnv(t)

	if _, err := env.svc.Register(ctx, RegisterInput{Username: "bob", Password: "right"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := env.users.Create(ctx, "corrupt", "not-a-hash"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"missing username", "", "right", ErrMissingCredentials},
		{"missing password", "bob", "", ErrMissingCredentials},
		{"unknown user", "nobody", "right", ErrUnknownUser},
		{"wrong password", "bob", "wrong", ErrBadPassword},
		{"malformed stored hash", "corrupt", "anything", ErrBadPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grant, err := env.svc.Authenticate(ctx, tt.username, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if grant != nil {
				t.Error("no grant should be issued on failure")
			}
		})
	}

	snap := env.recorder.Snapshot()
	if snap.AuthUnknownUsers != 1 || snap.AuthBadPasswords != 2 || snap.TokensIssued != 0 {
		t.Errorf("unexpected counters: %+v", snap)
	}
}

func TestAuthService_CheckTokenUnknown(t *testing.T) {
	t.Parallel()

	env := newAuthTestEnv(t)

	owner, ok, err := env.svc.CheckToken(context.Background(), "no-such-token")
	if err != nil {
		t.Fatalf("CheckToken failed: %v", err)
	}
	if ok || owner != "" {
		t.Errorf("CheckToken = (%q, %v), want (\"\", false)", owner, ok)
	}
	if env.recorder.Snapshot().TokenChecksInvalid != 1 {
		t.Error("expected invalid check to be counted")
	}
}

func TestAuthService_RegisterExisting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newAuthTestEnv(t)

	if _, err := env.svc.Register(ctx, RegisterInput{Username: "carol", Password: "first"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := env.svc.Register(ctx, RegisterInput{Username: "carol", Password: "second"}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if _, err := env.svc.Authenticate(ctx, "carol", "first"); err != nil {
		t.Errorf("original password should still work: %v", err)
	}

	if _, err := env.svc.Register(ctx, RegisterInput{Username: "carol", Password: "second", Overwrite: true}); err != nil {
		t.Fatalf("Register with overwrite failed: %v", err)
	}
	if _, err := env.svc.Authenticate(ctx, "carol", "first"); !errors.Is(err, ErrBadPassword) {
		t.Errorf("old password should fail after overwrite, got %v", err)
	}
	if _, err := env.svc.Authenticate(ctx, "carol", "second"); err != nil {
		t.Errorf("new password should work: %v", err)
	}
}

func TestAuthService_RegisterMissingFields(t *testing.T) {
	t.Parallel()

	env := newAuthTestEnv(t)

	if _, err := env.svc.Register(context.Background(), RegisterInput{Username: "dave"}); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestAuthService_Seed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newAuthTestEnv(t)

	created, err := env.svc.Seed(ctx, "admin", "first")
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if !created {
		t.Error("first Seed should create the user")
	}

	created, err = env.svc.Seed(ctx, "admin", "second")
	if err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}
	if created {
		t.Error("second Seed must not replace the user")
	}

	if _, err := env.svc.Authenticate(ctx, "admin", "first"); err != nil {
		t.Errorf("seeded password should work: %v", err)
	}
	if _, err := env.svc.Seed(ctx, "", ""); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials, got %v", err)
	}
}
