package dedup

import (
	"fmt"
	"sync"
	"testing"
)

func TestContainsAndAdd(t *testing.T) {
	s := New(2)

	if s.Contains("a") {
		t.Fatal("a should be new")
	}
	s.Add("a")
	if !s.Contains("a") {
		t.Fatal("a should be recorded")
	}
	s.Add("b")
	// a 刚被访问过，c 进入后淘汰 b
	s.Contains("a")
	s.Add("c")

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if !s.Contains("a") {
		t.Error("a should survive eviction")
	}
	if s.Contains("b") {
		t.Error("b should have been evicted")
	}
}

func TestAddTwice(t *testing.T) {
	s := New(0)
	s.Add("a")
	s.Add("a")
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestConcurrentAdd(t *testing.T) {
	s := New(1000)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("msg-%d", j)
				if !s.Contains(key) {
					s.Add(key)
				}
			}
		}()
	}
	wg.Wait()

	if s.Len() != 100 {
		t.Errorf("Len() = %d, want 100", s.Len())
	}
}
