package suggestion

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ashwinyue/next-fans/internal/errs"
	fanmodel "github.com/ashwinyue/next-fans/internal/model"
	"github.com/ashwinyue/next-fans/internal/repository"
	"github.com/ashwinyue/next-fans/internal/service/priority"
	"github.com/ashwinyue/next-fans/internal/service/usage"
	"github.com/ashwinyue/next-fans/internal/testutil"
)

// ========== Mock ChatModel ==========

type mockChatModel struct {
	response  string
	err       error
	callCount int
	lastInput []*schema.Message
}

func (m *mockChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.callCount++
	m.lastInput = messages
	if m.err != nil {
		return nil, m.err
	}
	return &schema.Message{Role: schema.Assistant, Content: m.response}, nil
}

func (m *mockChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, nil
}

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	repos *repository.Repositories
	llm   *mockChatModel
	fan   *fanmodel.Fan
}

func newFixture(t *testing.T, limit int, response string) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := repository.NewRepositories(testutil.NewTestDB(t))

	creator := &fanmodel.Creator{ID: "creator-1", OwnerID: "u1", Name: "Luna", Persona: "playful, uses emojis"}
	if err := repos.Creator.Create(ctx, creator); err != nil {
		t.Fatal(err)
	}
	fan := testutil.Fan(fanmodel.TierWhale, 150, now.Add(-time.Minute))
	fan.Name = "Carlos"
	if err := repos.Fan.Create(ctx, fan); err != nil {
		t.Fatal(err)
	}
	for _, m := range []*fanmodel.ChatMessage{
		testutil.Message(fan.ID, fanmodel.SenderModel, "hola amor", now.Add(-10*time.Minute)),
		testutil.Message(fan.ID, fanmodel.SenderFan, "quiero ver algo caliente", now.Add(-time.Minute)),
	} {
		if err := repos.Message.Create(ctx, m); err != nil {
			t.Fatal(err)
		}
	}
	for _, item := range []fanmodel.CatalogItem{
		testutil.SessionItem("beach-0", "beach", 0, 0),
		testutil.SessionItem("beach-1", "beach", 1, 20),
		testutil.SingleItem("s1", 10, 4),
	} {
		item := item
		if err := repos.Catalog.Create(ctx, &item); err != nil {
			t.Fatal(err)
		}
	}
	if err := repos.Purchase.Create(ctx, &fanmodel.Purchase{ID: "p1", CreatorID: "creator-1", FanID: fan.ID, CatalogItemID: "beach-0", Price: 0, PurchasedAt: now.Add(-time.Hour)}); err != nil {
		t.Fatal(err)
	}

	llm := &mockChatModel{response: response}
	svc := NewService(repos, usage.NewDBLimiter(repos.Usage, limit), llm, nil, zap.NewNop())
	svc.now = func() time.Time { return now }
	return &fixture{svc: svc, repos: repos, llm: llm, fan: fan}
}

func TestSuggest(t *testing.T) {
	ctx := context.Background()
	assert := testutil.NewAssertHelper(t)
	f := newFixture(t, 5, "```json\n{\"message\":\"Te tengo algo especial 😈\",\"offer\":true,\"fan_info\":\"works as a pilot\",\"reasoning\":\"hot lead\"}\n```")

	s, err := f.svc.Suggest(ctx, "creator-1", f.fan.ID)
	assert.NoError(err)
	assert.Equal("Te tengo algo especial 😈", s.Message)
	assert.True(s.Offer)
	assert.Equal(priority.PriorityUrgent, s.Semaphore.Priority)
	assert.Equal(KindSessionNext, s.Recommendation.Kind)
	assert.Equal("beach-1", s.Recommendation.Item.ID)
	assert.Equal(30.0, s.Recommendation.Price)
	assert.Equal(4, s.Quota.Remaining)
	assert.Equal(1, f.llm.callCount)

	// 提示词包含上下文
	assert.Equal(2, len(f.llm.lastInput))
	assert.True(strings.Contains(f.llm.lastInput[0].Content, "Luna"))
	user := f.llm.lastInput[1].Content
	assert.True(strings.Contains(user, "$30.00"), user)
	assert.True(strings.Index(user, "hola amor") < strings.Index(user, "quiero ver algo caliente"), "history should be oldest first")

	fan, err := f.repos.Fan.GetByID(ctx, "creator-1", f.fan.ID)
	assert.NoError(err)
	assert.Equal("works as a pilot", fan.Notes)
}

func TestSuggestNotFound(t *testing.T) {
	f := newFixture(t, 5, `{"message":"hi"}`)

	_, err := f.svc.Suggest(context.Background(), "creator-1", "missing")
	if !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	_, err = f.svc.Suggest(context.Background(), "nobody", f.fan.ID)
	if !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if f.llm.callCount != 0 {
		t.Error("llm should not be called")
	}
}

func TestSuggestRateLimited(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, `{"message":"hi"}`)

	if _, err := f.svc.Suggest(ctx, "creator-1", f.fan.ID); err != nil {
		t.Fatal(err)
	}
	_, err := f.svc.Suggest(ctx, "creator-1", f.fan.ID)
	var rl *errs.RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if rl.Limit != 1 || rl.Remaining != 0 {
		t.Errorf("unexpected quota %+v", rl)
	}
	if f.llm.callCount != 1 {
		t.Errorf("llm calls = %d, want 1", f.llm.callCount)
	}
}

func TestSuggestUpstreamFailures(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, 5, "")
	f.llm.err = errors.New("status 503")
	_, err := f.svc.Suggest(ctx, "creator-1", f.fan.ID)
	if errs.Code(err) != errs.CodeUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if f.llm.callCount != 1 {
		t.Errorf("failed calls must not be retried, got %d calls", f.llm.callCount)
	}

	f = newFixture(t, 5, "Sorry, I can't help with that.")
	_, err = f.svc.Suggest(ctx, "creator-1", f.fan.ID)
	if errs.Code(err) != errs.CodeUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
	var fail *ParseFailure
	if !errors.As(err, &fail) || fail.Raw != "Sorry, I can't help with that." {
		t.Errorf("expected ParseFailure with raw text, got %v", err)
	}
}

func TestSuggestNotesAreBestEffort(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5, `{"message":"hola","fan_info":"birthday in May"}`)

	// 让粉丝表的更新失败，建议仍然返回
	err := f.repos.DB.Callback().Update().Before("gorm:update").Register("test:fail_fans", func(tx *gorm.DB) {
		if tx.Statement.Table == "fans" {
			_ = tx.AddError(errors.New("disk full"))
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	s, err := f.svc.Suggest(ctx, "creator-1", f.fan.ID)
	if err != nil {
		t.Fatalf("notes failure must not fail the suggestion: %v", err)
	}
	if s.Message != "hola" || s.FanInfo != "birthday in May" {
		t.Errorf("unexpected suggestion %+v", s)
	}
}

func TestSuggestSupportNeverOffers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5, `{"message":"lo siento mucho","offer":true}`)
	msg := testutil.Message(f.fan.ID, fanmodel.SenderFan, "mi abuela murió", now)
	if err := f.repos.Message.Create(ctx, msg); err != nil {
		t.Fatal(err)
	}

	s, err := f.svc.Suggest(ctx, "creator-1", f.fan.ID)
	if err != nil {
		t.Fatal(err)
	}
	if s.Semaphore.Priority != priority.PrioritySupport {
		t.Errorf("priority = %d, want support", s.Semaphore.Priority)
	}
	if s.Recommendation != nil || s.Offer {
		t.Error("support conversations must not carry an offer")
	}
}
