package creator

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/ashwinyue/next-fans/internal/errs"
	"github.com/ashwinyue/next-fans/internal/repository"
	"github.com/ashwinyue/next-fans/internal/service/credential"
	"github.com/ashwinyue/next-fans/internal/testutil"
)

func newTestService(t *testing.T, withCipher bool) *Service {
	var cipher *credential.Cipher
	if withCipher {
		c, err := credential.NewCipher("0123456789abcdef0123456789abcdef")
		if err != nil {
			t.Fatal(err)
		}
		cipher = c
	}
	return NewService(repository.NewRepositories(testutil.NewTestDB(t)), cipher, zap.NewNop())
}

func TestCreateAndOwnership(t *testing.T) {
	ctx := context.Background()
	assert := testutil.NewAssertHelper(t)
	svc := newTestService(t, true)

	c, err := svc.Create(ctx, "owner-1", &CreateRequest{Name: " Luna ", PlatformAccountID: "acct_1"})
	assert.NoError(err)
	assert.Equal("Luna", c.Name)

	_, err = svc.Create(ctx, "owner-1", &CreateRequest{Name: "  "})
	assert.True(errs.IsValidation(err))

	got, err := svc.Get(ctx, "owner-1", c.ID)
	assert.NoError(err)
	assert.Equal(c.ID, got.ID)

	_, err = svc.Get(ctx, "owner-2", c.ID)
	assert.True(errs.IsNotFound(err), "other owners must not see the creator")

	list, err := svc.List(ctx, "owner-1")
	assert.NoError(err)
	assert.Equal(1, len(list))

	ids, err := svc.IDs(ctx)
	assert.NoError(err)
	assert.Equal(1, len(ids))
}

func TestCredentialRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert := testutil.NewAssertHelper(t)
	svc := newTestService(t, true)

	c, err := svc.Create(ctx, "owner-1", &CreateRequest{Name: "Luna", PlatformAccountID: "acct_1"})
	assert.NoError(err)

	acct, err := svc.Account(ctx, c.ID)
	assert.NoError(err)
	assert.Equal("", acct.Token)

	assert.NoError(svc.SetCredential(ctx, "owner-1", c.ID, "ofapi_token"))
	assert.True(errs.IsNotFound(svc.SetCredential(ctx, "owner-2", c.ID, "x")))

	stored, err := svc.repo.Creator.GetByID(ctx, c.ID)
	assert.NoError(err)
	assert.True(stored.EncryptedCredential != "ofapi_token", "credential must be stored encrypted")

	acct, err = svc.Account(ctx, c.ID)
	assert.NoError(err)
	assert.Equal("acct_1", acct.ID)
	assert.Equal("ofapi_token", acct.Token)
}

func TestCredentialRequiresKey(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, false)

	c, err := svc.Create(ctx, "owner-1", &CreateRequest{Name: "Luna"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.SetCredential(ctx, "owner-1", c.ID, "token"); !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Account(ctx, c.ID); !errs.IsValidation(err) {
		t.Fatalf("expected missing platform account to be rejected, got %v", err)
	}
}
