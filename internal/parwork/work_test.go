package parwork

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunnerRunsEveryItem(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	r := NewRunner(items)
	var sum int64
	errs := r.Run(3, func(item int) error {
		atomic.AddInt64(&sum, int64(item))
		return nil
	})
	if len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	if sum != 15 {
		t.Errorf("sum = %d, want 15", sum)
	}
}

func TestRunnerFailFastStopsNewDispatch(t *testing.T) {
	items := make([]int, 200)
	for i := range items {
		items[i] = i
	}
	r := NewRunner(items)
	var ran int64
	errs := r.Run(4, func(item int) error {
		atomic.AddInt64(&ran, 1)
		if item == 0 {
			return errors.New("boom")
		}
		time.Sleep(time.Millisecond)
		return nil
	})
	if len(errs) == 0 {
		t.Fatal("expected at least one error")
	}
	if ran >= int64(len(items)) {
		t.Errorf("ran = %d, expected fewer than all %d items after fail-fast", ran, len(items))
	}
}

func TestRunnerEmptyItems(t *testing.T) {
	r := NewRunner[int](nil)
	errs := r.Run(4, func(item int) error { return nil })
	if len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
}
