package fan

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ashwinyue/next-fans/internal/errs"
	"github.com/ashwinyue/next-fans/internal/model"
	"github.com/ashwinyue/next-fans/internal/repository"
	"github.com/ashwinyue/next-fans/internal/service/dedup"
	"github.com/ashwinyue/next-fans/internal/service/priority"
	"github.com/ashwinyue/next-fans/internal/testutil"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *repository.Repositories) {
	repos := repository.NewRepositories(testutil.NewTestDB(t))
	svc := NewService(repos, dedup.New(100), zap.NewNop())
	svc.now = func() time.Time { return testNow }

	err := repos.Creator.Create(context.Background(), &model.Creator{
		ID: "creator-1", OwnerID: "owner-1", Name: "Luna", PlatformAccountID: "acct_1",
	})
	if err != nil {
		t.Fatal(err)
	}
	return svc, repos
}

func seedItem(t *testing.T, repos *repository.Repositories, item model.CatalogItem) {
	t.Helper()
	if err := repos.Catalog.Create(context.Background(), &item); err != nil {
		t.Fatal(err)
	}
}

func TestListRanked(t *testing.T) {
	ctx := context.Background()
	assert := testutil.NewAssertHelper(t)
	svc, repos := newTestService(t)

	quiet := testutil.Fan(model.TierFree, 0, testNow.Add(-time.Hour))
	whale := testutil.Fan(model.TierWhale, 150, testNow.Add(-time.Minute))
	assert.NoError(repos.Fan.Create(ctx, quiet))
	assert.NoError(repos.Fan.Create(ctx, whale))
	assert.NoError(repos.Message.Create(ctx, testutil.Message(quiet.ID, model.SenderModel, "hola", testNow.Add(-time.Hour))))
	assert.NoError(repos.Message.Create(ctx, testutil.Message(whale.ID, model.SenderFan, "quiero un video", testNow.Add(-time.Minute))))

	ranked, err := svc.ListRanked(ctx, "creator-1")
	assert.NoError(err)
	assert.Equal(2, len(ranked))
	assert.Equal(whale.ID, ranked[0].Fan.ID)
	assert.Equal(priority.PriorityUrgent, ranked[0].Semaphore.Priority)
	assert.Equal("quiero un video", ranked[0].LastMessage.Text)
}

func TestUpdateAndHistory(t *testing.T) {
	ctx := context.Background()
	assert := testutil.NewAssertHelper(t)
	svc, repos := newTestService(t)

	f := testutil.Fan(model.TierFree, 0, testNow)
	assert.NoError(repos.Fan.Create(ctx, f))
	for i := 0; i < 5; i++ {
		assert.NoError(repos.Message.Create(ctx, testutil.Message(f.ID, model.SenderFan, string(rune('a'+i)), testNow.Add(time.Duration(i)*time.Minute))))
	}

	name, tier := "Carlos", "vip"
	updated, err := svc.Update(ctx, "creator-1", f.ID, &UpdateRequest{Name: &name, Tier: &tier})
	assert.NoError(err)
	assert.Equal("Carlos", updated.Name)
	assert.Equal(model.TierVIP, updated.Tier)

	bad := "platinum"
	_, err = svc.Update(ctx, "creator-1", f.ID, &UpdateRequest{Tier: &bad})
	assert.True(errs.IsValidation(err))

	_, err = svc.Update(ctx, "creator-2", f.ID, &UpdateRequest{Name: &name})
	assert.True(errs.IsNotFound(err))

	before := testNow.Add(4 * time.Minute)
	msgs, err := svc.History(ctx, "creator-1", f.ID, &before, 2)
	assert.NoError(err)
	assert.Equal(2, len(msgs))
	assert.Equal("c", msgs[0].Text)
	assert.Equal("d", msgs[1].Text)

	all, err := svc.History(ctx, "creator-1", f.ID, nil, 0)
	assert.NoError(err)
	assert.Equal(5, len(all))
	assert.Equal("a", all[0].Text)
}

func TestRecordPurchasePromotesTier(t *testing.T) {
	ctx := context.Background()
	assert := testutil.NewAssertHelper(t)
	svc, repos := newTestService(t)

	f := testutil.Fan(model.TierFree, 15, testNow)
	assert.NoError(repos.Fan.Create(ctx, f))
	seedItem(t, repos, testutil.SingleItem("s1", 10, 3))

	p, err := svc.RecordPurchase(ctx, "creator-1", f.ID, &PurchaseRequest{CatalogItemID: "s1"})
	assert.NoError(err)
	assert.Equal(10.0, p.Price)

	got, err := repos.Fan.GetByID(ctx, "creator-1", f.ID)
	assert.NoError(err)
	assert.Equal(25.0, got.SpentTotal)
	assert.Equal(model.TierVIP, got.Tier)

	_, err = svc.RecordPurchase(ctx, "creator-1", f.ID, &PurchaseRequest{CatalogItemID: "missing"})
	assert.True(errs.IsNotFound(err))

	// 失败的事务不能留下消费
	got, err = repos.Fan.GetByID(ctx, "creator-1", f.ID)
	assert.NoError(err)
	assert.Equal(25.0, got.SpentTotal)

	ids, err := repos.Purchase.ItemIDsByFan(ctx, f.ID)
	assert.NoError(err)
	assert.Equal(1, len(ids))
}

func TestIngestMessage(t *testing.T) {
	ctx := context.Background()
	assert := testutil.NewAssertHelper(t)
	svc, repos := newTestService(t)
	seedItem(t, repos, testutil.SingleItem("s1", 12, 3))

	in := &InboundMessage{
		AccountID: "acct_1",
		MessageID: "pm-1",
		FanID:     "of-fan-9",
		FanName:   "Marco",
		Sender:    "fan",
		Text:      "hola guapa",
		SentAt:    testNow,
	}
	res, err := svc.IngestMessage(ctx, in)
	assert.NoError(err)
	assert.False(res.Duplicate)
	assert.Equal("Marco", res.Fan.Name)
	assert.Equal(1, res.Fan.MessageCount)

	again, err := svc.IngestMessage(ctx, in)
	assert.NoError(err)
	assert.True(again.Duplicate)

	// 进程重启后只能依靠数据库判重
	svc.seen = dedup.New(10)
	again, err = svc.IngestMessage(ctx, in)
	assert.NoError(err)
	assert.True(again.Duplicate)

	paid := &InboundMessage{
		AccountID:     "acct_1",
		MessageID:     "pm-2",
		FanID:         "of-fan-9",
		Sender:        "model",
		Text:          "para ti",
		SentAt:        testNow.Add(time.Minute),
		IsPPV:         true,
		Price:         25,
		Purchased:     true,
		CatalogItemID: "s1",
	}
	res, err = svc.IngestMessage(ctx, paid)
	assert.NoError(err)
	assert.True(res.Purchase != nil)
	assert.Equal(25.0, res.Purchase.Price)
	assert.Equal(25.0, res.Fan.SpentTotal)
	assert.Equal(model.TierVIP, res.Fan.Tier)
	assert.Equal(2, res.Fan.MessageCount)

	_, err = svc.IngestMessage(ctx, &InboundMessage{AccountID: "acct_x", MessageID: "pm-3", FanID: "f", Sender: "fan"})
	assert.True(errs.IsNotFound(err))
}

func TestIngestFailureAllowsRetry(t *testing.T) {
	ctx := context.Background()
	assert := testutil.NewAssertHelper(t)
	svc, _ := newTestService(t)

	in := &InboundMessage{
		AccountID:     "acct_1",
		MessageID:     "pm-1",
		FanID:         "of-fan-9",
		Sender:        "fan",
		Purchased:     true,
		CatalogItemID: "missing",
	}
	_, err := svc.IngestMessage(ctx, in)
	assert.True(errs.IsNotFound(err))

	// 失败的投递不会被记为已处理，修正后的重试照常入库
	in.Purchased = false
	res, err := svc.IngestMessage(ctx, in)
	assert.NoError(err)
	assert.False(res.Duplicate)
}

func TestIngestDuplicateAcrossInstances(t *testing.T) {
	ctx := context.Background()
	assert := testutil.NewAssertHelper(t)
	first, repos := newTestService(t)
	seedItem(t, repos, testutil.SingleItem("s1", 12, 3))

	// 另一个实例有自己的内存集合，只能依靠唯一索引判重
	second := NewService(repos, dedup.New(10), zap.NewNop())
	second.now = first.now

	in := &InboundMessage{
		AccountID:     "acct_1",
		MessageID:     "pm-paid",
		FanID:         "of-fan-9",
		Sender:        "model",
		SentAt:        testNow,
		IsPPV:         true,
		Price:         30,
		Purchased:     true,
		CatalogItemID: "s1",
	}
	res, err := first.IngestMessage(ctx, in)
	assert.NoError(err)
	assert.False(res.Duplicate)

	res, err = second.IngestMessage(ctx, in)
	assert.NoError(err)
	assert.True(res.Duplicate)

	f, err := repos.Fan.GetByPlatformID(ctx, "creator-1", "of-fan-9")
	assert.NoError(err)
	assert.Equal(30.0, f.SpentTotal)
	assert.Equal(1, f.MessageCount)

	purchases, err := repos.Purchase.ListByFan(ctx, f.ID)
	assert.NoError(err)
	assert.Equal(1, len(purchases))

	// 判重后内存集合也记住了该消息
	assert.True(second.seen.Contains("creator-1:pm-paid"))
}

func TestRecalculateTiers(t *testing.T) {
	ctx := context.Background()
	svc, repos := newTestService(t)

	if err := repos.Fan.Create(ctx, testutil.Fan(model.TierFree, 120, testNow)); err != nil {
		t.Fatal(err)
	}
	changed, err := svc.RecalculateTiers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if changed != 1 {
		t.Fatalf("changed = %d, want 1", changed)
	}
}
