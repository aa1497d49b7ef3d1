package model

import (
	"fmt"
	"strings"
)

// Tier 粉丝消费等级，按顺序比较
type Tier int

const (
	TierFree  Tier = iota // 免费
	TierVIP               // VIP
	TierWhale             // 大客户
)

// 等级消费阈值
const (
	VIPSpendThreshold   = 20.0
	WhaleSpendThreshold = 100.0
)

var tierNames = map[Tier]string{
	TierFree:  "free",
	TierVIP:   "vip",
	TierWhale: "whale",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Valid 是否为已知等级
func (t Tier) Valid() bool {
	_, ok := tierNames[t]
	return ok
}

// AtLeast 等级是否不低于 other
func (t Tier) AtLeast(other Tier) bool {
	return t >= other
}

// PriceMultiplier 发送时的价格系数，base_price 不变
func (t Tier) PriceMultiplier() float64 {
	switch t {
	case TierWhale:
		return 1.5
	case TierVIP:
		return 1.2
	default:
		return 1.0
	}
}

// ParseTier 解析等级名称
func ParseTier(s string) (Tier, error) {
	for t, name := range tierNames {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return TierFree, fmt.Errorf("unknown tier: %q", s)
}

// TierForSpend 根据累计消费计算等级
func TierForSpend(spent float64) Tier {
	switch {
	case spent >= WhaleSpendThreshold:
		return TierWhale
	case spent >= VIPSpendThreshold:
		return TierVIP
	default:
		return TierFree
	}
}
