// Package keyword 对聊天文本做关键词子串匹配
//
// 只做小写后的子串包含判断，不分词也不做词干还原，
// 所以 "mal" 会命中 "animal"，这是已知限制。
package keyword

import "strings"

// Set 关键词集合，关键词必须为小写
type Set []string

// SalesIntent 购买意向
var SalesIntent = Set{
	"quiero", "hot", "custom", "caliente", "video", "foto", "photo",
	"pic", "nude", "desnud", "show me", "enséñame", "ensename",
	"cuánto", "cuanto", "price", "precio", "buy", "comprar", "ppv",
}

// SensitiveTopic 敏感话题，出现时不做销售
var SensitiveTopic = Set{
	"murió", "murio", "falleció", "fallecio", "funeral", "hospital",
	"depressed", "depresión", "depresion", "suicid", "cancer", "cáncer",
	"triste", "lonely", "passed away", "mal",
}

// FreeRequest 索要免费内容
var FreeRequest = Set{
	"gratis", "free", "sample", "muestra", "regalo", "gift",
}

// Contains 文本中是否包含集合里的任一关键词（忽略大小写）
func Contains(text string, set Set) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range set {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Match 返回文本命中的关键词，用于提示词上下文
func Match(text string, set Set) []string {
	lower := strings.ToLower(text)
	var hits []string
	for _, kw := range set {
		if strings.Contains(lower, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}
