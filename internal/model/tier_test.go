package model

import "testing"

func TestTierOrdering(t *testing.T) {
	if !TierWhale.AtLeast(TierVIP) || !TierVIP.AtLeast(TierFree) {
		t.Fatal("tiers must be ordered Free < VIP < Whale")
	}
	if TierFree.AtLeast(TierWhale) {
		t.Fatal("Free must not rank at least Whale")
	}
}

func TestTierPriceMultiplier(t *testing.T) {
	tests := []struct {
		tier Tier
		want float64
	}{
		{TierFree, 1.0},
		{TierVIP, 1.2},
		{TierWhale, 1.5},
	}
	for _, tt := range tests {
		if got := tt.tier.PriceMultiplier(); got != tt.want {
			t.Errorf("%s multiplier = %v, want %v", tt.tier, got, tt.want)
		}
	}
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier("Whale")
	if err != nil || tier != TierWhale {
		t.Fatalf("ParseTier(Whale) = %v, %v", tier, err)
	}
	if _, err := ParseTier("platinum"); err == nil {
		t.Fatal("expected error for unknown tier")
	}
	if Tier(7).Valid() {
		t.Error("Tier(7) should be invalid")
	}
}

func TestTierForSpend(t *testing.T) {
	tests := []struct {
		spent float64
		want  Tier
	}{
		{0, TierFree},
		{19.99, TierFree},
		{20, TierVIP},
		{99.99, TierVIP},
		{100, TierWhale},
	}
	for _, tt := range tests {
		if got := TierForSpend(tt.spent); got != tt.want {
			t.Errorf("TierForSpend(%v) = %s, want %s", tt.spent, got, tt.want)
		}
	}
}

func TestCatalogItemOrganized(t *testing.T) {
	sid := "s1"
	step := 0
	part := CatalogItem{SessionID: &sid, StepNumber: &step}
	single := CatalogItem{IsSingle: true}
	loose := CatalogItem{SessionID: &sid}

	if !part.InSession() || !part.Organized() {
		t.Error("session part should be organized")
	}
	if !single.Organized() || single.InSession() {
		t.Error("single should be organized but not in a session")
	}
	if loose.Organized() {
		t.Error("item without step number is unorganized")
	}
}
