package auth

import (
	"context"
	"testing"
	"time"

	"github.com/ashwinyue/next-fans/internal/errs"
	"github.com/ashwinyue/next-fans/internal/repository"
	"github.com/ashwinyue/next-fans/internal/testutil"
)

func newTestService(t *testing.T) *Service {
	svc, err := NewService(repository.NewRepositories(testutil.NewTestDB(t)), "test-secret")
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestRegisterLoginValidate(t *testing.T) {
	ctx := context.Background()
	assert := testutil.NewAssertHelper(t)
	svc := newTestService(t)

	user, err := svc.Register(ctx, &RegisterRequest{Username: "agency", Email: "Ops@Agency.io", Password: "secret123"})
	assert.NoError(err)
	assert.Equal("ops@agency.io", user.Email)

	_, err = svc.Register(ctx, &RegisterRequest{Username: "agency", Email: "other@agency.io", Password: "secret123"})
	assert.Equal(errs.CodeConflict, errs.Code(err))

	_, err = svc.Login(ctx, &LoginRequest{Email: "ops@agency.io", Password: "wrong-pass"})
	assert.Equal(errs.CodeAuth, errs.Code(err))

	resp, err := svc.Login(ctx, &LoginRequest{Email: "ops@agency.io", Password: "secret123"})
	assert.NoError(err)

	got, err := svc.ValidateToken(ctx, resp.Token)
	assert.NoError(err)
	assert.Equal(user.ID, got.ID)

	// 刷新令牌不能当访问令牌使用
	_, err = svc.ValidateToken(ctx, resp.RefreshToken)
	assert.Equal(errs.CodeAuth, errs.Code(err))

	refreshed, err := svc.RefreshToken(ctx, resp.RefreshToken)
	assert.NoError(err)
	assert.True(refreshed.Token != "")
}

func TestValidateTokenExpired(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if _, err := svc.Register(ctx, &RegisterRequest{Username: "agency", Email: "ops@agency.io", Password: "secret123"}); err != nil {
		t.Fatal(err)
	}
	resp, err := svc.Login(ctx, &LoginRequest{Email: "ops@agency.io", Password: "secret123"})
	if err != nil {
		t.Fatal(err)
	}

	svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	if _, err := svc.ValidateToken(ctx, resp.Token); errs.Code(err) != errs.CodeAuth {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}

	other, _ := NewService(svc.repo, "another-secret")
	if _, err := other.ValidateToken(ctx, resp.RefreshToken); errs.Code(err) != errs.CodeAuth {
		t.Fatalf("expected token signed with another key to be rejected, got %v", err)
	}
}
