// Package priority 计算粉丝的销售优先级（信号灯）并排序
package priority

import (
	"time"

	"github.com/ashwinyue/next-fans/internal/model"
	"github.com/ashwinyue/next-fans/internal/service/keyword"
)

// 优先级
const (
	PriorityNormal     = 0
	PriorityCaution    = 1
	PriorityReactivate = 2
	PriorityWaiting    = 3
	PrioritySellNow    = 4
	PrioritySupport    = 5
	PriorityUrgent     = 6
)

// 判定阈值
const (
	urgentWindowMinutes = 2.0
	waitingMinutes      = 30.0
	sellNowMinSpend     = 50.0
	sellNowMaxDays      = 7.0
	reactivateDays      = 30.0
	reactivateMinSpend  = 20.0
	cautionMaxSpend     = 20.0
	chattyMessageCount  = 20
	minutesPerDay       = 1440.0
)

// Semaphore 信号灯结果
type Semaphore struct {
	Color       string `json:"color"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Action      string `json:"action"`
}

var semaphores = map[int]Semaphore{
	PriorityUrgent: {
		Color:       "🔥",
		Label:       "urgent",
		Description: "Whale with buying intent, active right now",
		Priority:    PriorityUrgent,
		Action:      "sell now",
	},
	PrioritySupport: {
		Color:       "🟣",
		Label:       "support",
		Description: "Fan is going through something sensitive",
		Priority:    PrioritySupport,
		Action:      "give support",
	},
	PrioritySellNow: {
		Color:       "🟢",
		Label:       "sell",
		Description: "Proven spender showing buying intent",
		Priority:    PrioritySellNow,
		Action:      "sell now",
	},
	PriorityWaiting: {
		Color:       "🟡",
		Label:       "waiting",
		Description: "Fan has been waiting for a reply",
		Priority:    PriorityWaiting,
		Action:      "respond",
	},
	PriorityReactivate: {
		Color:       "🔵",
		Label:       "reactivate",
		Description: "Former spender inactive for over a month",
		Priority:    PriorityReactivate,
		Action:      "reactivate",
	},
	PriorityCaution: {
		Color:       "🔴",
		Label:       "caution",
		Description: "Low spend or asking for free content",
		Priority:    PriorityCaution,
		Action:      "caution, possible time-waster",
	},
	PriorityNormal: {
		Color:       "⚪",
		Label:       "normal",
		Description: "Nothing stands out",
		Priority:    PriorityNormal,
		Action:      "chat normally",
	},
}

// ForPriority 返回优先级对应的信号灯
func ForPriority(p int) Semaphore {
	if s, ok := semaphores[p]; ok {
		return s
	}
	return semaphores[PriorityNormal]
}

// Classify 计算粉丝信号灯
//
// 条件按顺序判断，先命中者生效，顺序本身就是平局规则。
// 距今时间按 fan.LastMessageAt 计算，为空视为 Unix 纪元。
// last 为空时不做关键词判断。
// 消费低于 20 的粉丝不会进入 4、6 两档，即使等级被手动设为大客户。
//
// 待产品确认：
//   - 顺序使长期沉默的低消费粉丝落在 1（谨慎）而不是 2（唤回）。
//   - urgent 档额外要求消费不低于 20，只影响手动升级的大客户。
func Classify(fan *model.Fan, last *model.ChatMessage, now time.Time) Semaphore {
	lastAt := time.Unix(0, 0).UTC()
	if fan.LastMessageAt != nil {
		lastAt = *fan.LastMessageAt
	}
	minutes := now.Sub(lastAt).Minutes()
	days := minutes / minutesPerDay

	var text string
	var fromFan bool
	if last != nil {
		text = last.Text
		fromFan = last.Sender == model.SenderFan
	}
	sales := keyword.Contains(text, keyword.SalesIntent)

	switch {
	case keyword.Contains(text, keyword.SensitiveTopic):
		return semaphores[PrioritySupport]
	case minutes < urgentWindowMinutes && fan.Tier.AtLeast(model.TierWhale) && sales &&
		fan.SpentTotal >= cautionMaxSpend:
		return semaphores[PriorityUrgent]
	case fan.Tier.AtLeast(model.TierWhale) && fan.SpentTotal >= sellNowMinSpend && sales && days < sellNowMaxDays:
		return semaphores[PrioritySellNow]
	case fromFan && minutes > waitingMinutes:
		return semaphores[PriorityWaiting]
	case days > reactivateDays && fan.SpentTotal >= reactivateMinSpend:
		return semaphores[PriorityReactivate]
	case fan.SpentTotal < cautionMaxSpend ||
		keyword.Contains(text, keyword.FreeRequest) ||
		(fan.MessageCount > chattyMessageCount && fan.SpentTotal == 0):
		return semaphores[PriorityCaution]
	default:
		return semaphores[PriorityNormal]
	}
}
