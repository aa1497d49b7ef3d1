package suggestion

import (
	"github.com/ashwinyue/next-fans/internal/model"
	"github.com/ashwinyue/next-fans/internal/service/catalog"
	"github.com/ashwinyue/next-fans/internal/service/priority"
)

// 推荐来源
const (
	KindSessionNext  = "session_next"
	KindSingle       = "single"
	KindSessionStart = "session_start"
)

// Recommendation 建议推送的内容
type Recommendation struct {
	Kind        string             `json:"kind"`
	Item        *model.CatalogItem `json:"item"`
	Price       float64            `json:"price"`
	SessionName string             `json:"session_name,omitempty"`
	Step        *int               `json:"step,omitempty"`
}

// Recommend 按规则挑选要推荐的内容，不需要推荐时返回 nil
// 优先级：进行中会话的下一集，最便宜的未购单品，未开始会话的第 0 集
func Recommend(fan *model.Fan, sem priority.Semaphore, g catalog.Grouping, purchased catalog.PurchasedSet) *Recommendation {
	if sem.Priority == priority.PrioritySupport {
		return nil
	}

	for _, s := range g.Sessions {
		if !catalog.Started(s, purchased) {
			continue
		}
		if next := catalog.ResolveNextPart(s, purchased); next != nil {
			return newRecommendation(KindSessionNext, next, fan.Tier, s.Name)
		}
	}

	var cheapest *model.CatalogItem
	for _, item := range g.Singles {
		if purchased.Has(item.ID) {
			continue
		}
		if cheapest == nil || item.BasePrice < cheapest.BasePrice {
			cheapest = item
		}
	}
	if cheapest != nil {
		return newRecommendation(KindSingle, cheapest, fan.Tier, "")
	}

	for _, s := range g.Sessions {
		if catalog.Started(s, purchased) {
			continue
		}
		if next := catalog.ResolveNextPart(s, purchased); next != nil {
			return newRecommendation(KindSessionStart, next, fan.Tier, s.Name)
		}
	}
	return nil
}

func newRecommendation(kind string, item *model.CatalogItem, tier model.Tier, sessionName string) *Recommendation {
	return &Recommendation{
		Kind:        kind,
		Item:        item,
		Price:       catalog.PriceForTier(item.BasePrice, tier),
		SessionName: sessionName,
		Step:        item.StepNumber,
	}
}
