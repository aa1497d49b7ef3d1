package catalog

import (
	"reflect"
	"testing"

	"github.com/ashwinyue/next-fans/internal/model"
	"github.com/ashwinyue/next-fans/internal/testutil"
)

func ptr(item model.CatalogItem) *model.CatalogItem {
	return &item
}

func sampleCatalog() []*model.CatalogItem {
	return []*model.CatalogItem{
		ptr(testutil.SessionItem("beach-2", "beach", 2, 30)),
		ptr(testutil.SingleItem("s1", 12, 3)),
		ptr(testutil.SessionItem("gym-0", "gym", 0, 0)),
		ptr(testutil.SessionItem("beach-0", "beach", 0, 0)),
		{ID: "raw-1", CreatorID: "creator-1", Title: "untagged"},
		ptr(testutil.SessionItem("beach-1", "beach", 1, 15)),
		ptr(testutil.SingleItem("s2", 8, 2)),
	}
}

func sessionIDs(g Grouping) map[string][]string {
	out := make(map[string][]string)
	for _, s := range g.Sessions {
		for _, p := range s.Parts {
			out[s.ID] = append(out[s.ID], p.ID)
		}
	}
	return out
}

func TestGroupCatalog(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	items := sampleCatalog()
	items[3].SessionName = "Beach day"
	items[0].SessionName = "Beach (old name)"

	g := GroupCatalog(items)

	assert.Equal(2, len(g.Sessions))
	assert.Equal("beach", g.Sessions[0].ID)
	assert.Equal("gym", g.Sessions[1].ID)
	// 名称取首个出现的成员
	assert.Equal("Beach (old name)", g.Sessions[0].Name)

	want := map[string][]string{
		"beach": {"beach-0", "beach-1", "beach-2"},
		"gym":   {"gym-0"},
	}
	if got := sessionIDs(g); !reflect.DeepEqual(got, want) {
		t.Errorf("sessions = %v, want %v", got, want)
	}

	assert.Equal(2, len(g.Singles))
	assert.Equal("s1", g.Singles[0].ID)
	assert.Equal("s2", g.Singles[1].ID)

	inbox := Inbox(items)
	assert.Equal(1, len(inbox))
	assert.Equal("raw-1", inbox[0].ID)
}

func TestGroupCatalogIdempotent(t *testing.T) {
	items := sampleCatalog()
	first := GroupCatalog(items)
	second := GroupCatalog(items)

	if !reflect.DeepEqual(sessionIDs(first), sessionIDs(second)) {
		t.Fatal("grouping the same list twice should give the same sessions")
	}
	for i := range first.Sessions {
		if first.Sessions[i].ID != second.Sessions[i].ID {
			t.Fatalf("session order changed at %d", i)
		}
	}
}

func TestGroupCatalogEmpty(t *testing.T) {
	g := GroupCatalog(nil)
	if g.Sessions == nil || g.Singles == nil {
		t.Fatal("empty grouping should use empty slices")
	}
	if g.Find("missing") != nil {
		t.Fatal("expected no session")
	}
}

func TestClearedSessionLeavesGrouping(t *testing.T) {
	items := sampleCatalog()
	// 解散会话后的行状态
	for _, it := range items {
		if it.SessionID != nil && *it.SessionID == "beach" {
			it.SessionID = nil
			it.StepNumber = nil
			it.SessionName = ""
			it.BasePrice = 0
		}
	}

	g := GroupCatalog(items)
	if g.Find("beach") != nil {
		t.Fatal("cleared session should not be grouped")
	}
	if got := len(Inbox(items)); got != 4 {
		t.Errorf("inbox size = %d, want 4", got)
	}
}
