package catalog

import (
	"math"

	"github.com/ashwinyue/next-fans/internal/model"
)

// PurchasedSet 粉丝已购买的内容 ID
type PurchasedSet map[string]struct{}

// NewPurchasedSet 由内容 ID 列表构造
func NewPurchasedSet(ids []string) PurchasedSet {
	set := make(PurchasedSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has 是否已购买
func (p PurchasedSet) Has(id string) bool {
	_, ok := p[id]
	return ok
}

// UnlockedLevel 已解锁到的分集
// 为已购买分集中最大的 step 加一；一集都没买时为 0，只能看到免费预告。
func UnlockedLevel(s *Session, purchased PurchasedSet) int {
	level := 0
	for _, part := range s.Parts {
		if purchased.Has(part.ID) && *part.StepNumber+1 > level {
			level = *part.StepNumber + 1
		}
	}
	return level
}

// Started 粉丝是否买过该会话的任意一集
func Started(s *Session, purchased PurchasedSet) bool {
	for _, part := range s.Parts {
		if purchased.Has(part.ID) {
			return true
		}
	}
	return false
}

// ResolveNextPart 返回下一集可推荐的内容
// 不跳集，不重复推荐已购买的分集，没有可推荐时返回 nil。
func ResolveNextPart(s *Session, purchased PurchasedSet) *model.CatalogItem {
	if s == nil {
		return nil
	}
	level := UnlockedLevel(s, purchased)
	for _, part := range s.Parts {
		if *part.StepNumber >= level && !purchased.Has(part.ID) {
			return part
		}
	}
	return nil
}

// PriceForTier 按粉丝等级计算展示价格，精确到分
// base_price 本身不变
func PriceForTier(base float64, tier model.Tier) float64 {
	return math.Round(base*tier.PriceMultiplier()*100) / 100
}
