package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/hintcheck/hintcheck/pkg/hinterr"
)

func TestMemoGetOrCompute(t *testing.T) {
	var m Memo[string, int]

	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := m.GetOrCompute("k", compute)
		if err != nil {
			t.Fatalf("GetOrCompute error: %v", err)
		}
		if v != 42 {
			t.Fatalf("GetOrCompute = %d, want 42", v)
		}
	}
	if calls != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}
	if n := m.Len(); n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
}

func TestMemoErrorsNotCached(t *testing.T) {
	var m Memo[string, int]

	boom := errors.New("boom")
	calls := 0
	if _, err := m.GetOrCompute("k", func() (int, error) {
		calls++
		return 0, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("GetOrCompute error = %v, want boom", err)
	}
	if _, ok := m.Get("k"); ok {
		t.Fatal("failed computation was stored")
	}

	// A later successful computation for the same key must run and stick.
	v, err := m.GetOrCompute("k", func() (int, error) {
		calls++
		return 7, nil
	})
	if err != nil || v != 7 {
		t.Fatalf("GetOrCompute = %d, %v, want 7, nil", v, err)
	}
	if calls != 2 {
		t.Errorf("compute ran %d times, want 2", calls)
	}
}

func TestMemoConcurrentConvergence(t *testing.T) {
	var m Memo[int, *int]

	const goroutines = 32
	results := make([]*int, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := m.GetOrCompute(0, func() (*int, error) {
				n := i
				return &n, nil
			})
			if err != nil {
				t.Errorf("GetOrCompute error: %v", err)
				return
			}
			results[i] = v
		}(i)
	}
	wg.Wait()

	// All callers must observe the same stored pointer, whichever goroutine
	// won the insert race.
	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Fatalf("caller %d observed %p, caller 0 observed %p", i, results[i], results[0])
		}
	}
	if n := m.Len(); n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
}

func TestFragmentsEviction(t *testing.T) {
	f, err := NewFragments(2)
	if err != nil {
		t.Fatalf("NewFragments error: %v", err)
	}

	renders := 0
	render := func(s string) func() string {
		return func() string {
			renders++
			return s
		}
	}

	f.GetOrRender("a", render("A"))
	f.GetOrRender("b", render("B"))
	if got := f.GetOrRender("a", render("A")); got != "A" || renders != 2 {
		t.Fatalf("hit on a: got %q after %d renders", got, renders)
	}

	// b is now least recently used and should fall out.
	f.GetOrRender("c", render("C"))
	if n := f.Len(); n != 2 {
		t.Fatalf("Len() = %d, want 2", n)
	}
	f.GetOrRender("b", render("B"))
	if renders != 4 {
		t.Errorf("renders = %d, want 4 (b evicted and re-rendered)", renders)
	}
}

func TestFragmentsRerenderIsConsistent(t *testing.T) {
	f, err := NewFragments(1)
	if err != nil {
		t.Fatalf("NewFragments error: %v", err)
	}

	render := func() string { return fmt.Sprintf("frag(%s)", "x") }
	first := f.GetOrRender("x", render)
	f.GetOrRender("y", func() string { return "frag(y)" })
	again := f.GetOrRender("x", render)
	if first != again {
		t.Errorf("re-rendered fragment %q differs from original %q", again, first)
	}
}

func TestFragmentsBadCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		if _, err := NewFragments(capacity); !errors.Is(err, hinterr.ErrInternal) {
			t.Errorf("NewFragments(%d) error = %v, want an internal cache error", capacity, err)
		}
	}
}
