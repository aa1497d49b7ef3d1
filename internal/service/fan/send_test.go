package fan

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ashwinyue/next-fans/internal/errs"
	"github.com/ashwinyue/next-fans/internal/model"
	"github.com/ashwinyue/next-fans/internal/service/platform"
	"github.com/ashwinyue/next-fans/internal/testutil"
)

type fakeAccounts struct{}

func (fakeAccounts) Account(ctx context.Context, creatorID string) (platform.Account, error) {
	return platform.Account{ID: "acct_1", Token: "tok"}, nil
}

type fakeMessenger struct {
	sent      []*platform.OutboundMessage
	fanIDs    []string
	typingErr error
	sendErr   error
}

func (m *fakeMessenger) SendMessage(ctx context.Context, acct platform.Account, fanPlatformID string, msg *platform.OutboundMessage) (*platform.SentMessage, error) {
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.sent = append(m.sent, msg)
	m.fanIDs = append(m.fanIDs, fanPlatformID)
	return &platform.SentMessage{ID: "pm-out-1", CreatedAt: testNow}, nil
}

func (m *fakeMessenger) SetTyping(ctx context.Context, acct platform.Account, fanPlatformID string) error {
	return m.typingErr
}

type fakeMedia struct{}

func (fakeMedia) URLs(ctx context.Context, keys []string) ([]string, error) {
	urls := make([]string, len(keys))
	for i, k := range keys {
		urls[i] = "https://cdn.test/" + k + "?sig=1"
	}
	return urls, nil
}

func TestSendPPVAtTierPrice(t *testing.T) {
	ctx := context.Background()
	assert := testutil.NewAssertHelper(t)
	_, repos := newTestService(t)

	f := testutil.Fan(model.TierVIP, 40, testNow.Add(-time.Hour))
	assert.NoError(repos.Fan.Create(ctx, f))
	item := testutil.SingleItem("s1", 19.99, 4)
	item.MediaKeys = []string{"creator-1/a.jpg"}
	seedItem(t, repos, item)

	messenger := &fakeMessenger{typingErr: errors.New("typing unavailable")}
	sender := NewSender(repos, fakeAccounts{}, messenger, fakeMedia{}, zap.NewNop())

	msg, err := sender.Send(ctx, "creator-1", f.ID, &SendRequest{Text: "solo para ti", CatalogItemID: "s1"})
	assert.NoError(err)
	assert.Equal(1, len(messenger.sent))
	assert.Equal(f.PlatformFanID, messenger.fanIDs[0])
	assert.Equal(23.99, messenger.sent[0].Price)
	assert.Equal("https://cdn.test/creator-1/a.jpg?sig=1", messenger.sent[0].MediaURLs[0])

	assert.Equal(model.SenderModel, msg.Sender)
	assert.True(msg.IsPPV)
	assert.Equal("pm-out-1", *msg.PlatformMessageID)

	got, err := repos.Fan.GetByID(ctx, "creator-1", f.ID)
	assert.NoError(err)
	assert.Equal(1, got.MessageCount)
	assert.True(got.LastMessageAt.Equal(testNow))
}

func TestSendFailures(t *testing.T) {
	ctx := context.Background()
	assert := testutil.NewAssertHelper(t)
	_, repos := newTestService(t)

	f := testutil.Fan(model.TierFree, 0, testNow)
	assert.NoError(repos.Fan.Create(ctx, f))

	messenger := &fakeMessenger{sendErr: errs.Upstream("platform request failed", errors.New("status 502"))}
	sender := NewSender(repos, fakeAccounts{}, messenger, fakeMedia{}, zap.NewNop())

	_, err := sender.Send(ctx, "creator-1", f.ID, &SendRequest{Text: "  "})
	assert.True(errs.IsValidation(err))

	_, err = sender.Send(ctx, "creator-1", "missing", &SendRequest{Text: "hola"})
	assert.True(errs.IsNotFound(err))

	_, err = sender.Send(ctx, "creator-1", f.ID, &SendRequest{Text: "hola", CatalogItemID: "missing"})
	assert.True(errs.IsNotFound(err))

	_, err = sender.Send(ctx, "creator-1", f.ID, &SendRequest{Text: "hola"})
	assert.Equal(errs.CodeUpstream, errs.Code(err))

	msgs, err := repos.Message.ListBefore(ctx, f.ID, nil, 10)
	assert.NoError(err)
	assert.Equal(0, len(msgs))
}
