// Package dedup 记录最近处理过的平台消息 ID，避免重复入库
package dedup

import (
	"container/list"
	"sync"
)

// DefaultCapacity 默认容量
const DefaultCapacity = 10000

// Set 有界的 LRU 集合，并发安全
type Set struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

// New 创建集合，capacity <= 0 时使用默认容量
func New(capacity int) *Set {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Set{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Contains 判断 key 是否已记录，命中时移到最近使用的位置
func (s *Set) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[key]
	if ok {
		s.order.MoveToFront(el)
	}
	return ok
}

// Add 记录 key，超出容量时淘汰最久未使用的 key
// 只应在消息确认入库后调用
func (s *Set) Add(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[key]; ok {
		s.order.MoveToFront(el)
		return
	}

	s.items[key] = s.order.PushFront(key)
	if s.order.Len() > s.capacity {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.items, oldest.Value.(string))
	}
}

// Len 当前大小
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
