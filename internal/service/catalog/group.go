// Package catalog 组织创作者的内容目录：会话分集、单品和收件箱
package catalog

import (
	"sort"

	"github.com/ashwinyue/next-fans/internal/model"
)

// Session 由相同 session_id 的内容组成的虚拟分组
type Session struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Parts       []*model.CatalogItem `json:"parts"`
}

// Grouping 目录分组结果
type Grouping struct {
	Sessions []*Session           `json:"sessions"`
	Singles  []*model.CatalogItem `json:"singles"`
}

// GroupCatalog 把平铺的内容划分为会话和单品
// 会话按首次出现的顺序排列，分集按 step 升序，名称和描述取首个成员的值。
// 未组织的内容不出现在结果中，见 Inbox。
func GroupCatalog(items []*model.CatalogItem) Grouping {
	g := Grouping{
		Sessions: []*Session{},
		Singles:  []*model.CatalogItem{},
	}
	index := make(map[string]*Session)

	for _, item := range items {
		switch {
		case item.InSession():
			s, ok := index[*item.SessionID]
			if !ok {
				s = &Session{
					ID:          *item.SessionID,
					Name:        item.SessionName,
					Description: item.SessionDescription,
				}
				index[s.ID] = s
				g.Sessions = append(g.Sessions, s)
			}
			s.Parts = append(s.Parts, item)
		case item.IsSingle:
			g.Singles = append(g.Singles, item)
		}
	}

	for _, s := range g.Sessions {
		sort.SliceStable(s.Parts, func(i, j int) bool {
			return *s.Parts[i].StepNumber < *s.Parts[j].StepNumber
		})
	}
	return g
}

// Inbox 返回未归入会话也不是单品的内容
func Inbox(items []*model.CatalogItem) []*model.CatalogItem {
	inbox := []*model.CatalogItem{}
	for _, item := range items {
		if !item.Organized() {
			inbox = append(inbox, item)
		}
	}
	return inbox
}

// Find 按 ID 查找会话
func (g Grouping) Find(sessionID string) *Session {
	for _, s := range g.Sessions {
		if s.ID == sessionID {
			return s
		}
	}
	return nil
}
