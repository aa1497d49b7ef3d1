package priority

import (
	"sort"
	"time"

	"github.com/ashwinyue/next-fans/internal/model"
)

// RankedFan 带信号灯的粉丝
type RankedFan struct {
	Fan         *model.Fan         `json:"fan"`
	LastMessage *model.ChatMessage `json:"last_message"`
	Semaphore   Semaphore          `json:"semaphore"`
}

// RankFans 为每个粉丝附上最近一条消息和信号灯，按优先级降序排列
// 同优先级保持输入顺序
func RankFans(fans []*model.Fan, messages []*model.ChatMessage, now time.Time) []RankedFan {
	latest := LatestByFan(messages)

	ranked := make([]RankedFan, 0, len(fans))
	for _, f := range fans {
		last := latest[f.ID]
		ranked = append(ranked, RankedFan{
			Fan:         f,
			LastMessage: last,
			Semaphore:   Classify(f, last, now),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Semaphore.Priority > ranked[j].Semaphore.Priority
	})
	return ranked
}

// LatestByFan 取每个粉丝时间最新的消息
func LatestByFan(messages []*model.ChatMessage) map[string]*model.ChatMessage {
	latest := make(map[string]*model.ChatMessage)
	for _, m := range messages {
		if cur, ok := latest[m.FanID]; !ok || m.SentAt.After(cur.SentAt) {
			latest[m.FanID] = m
		}
	}
	return latest
}
