package endpoint

import (
	"context"
	"sync"
)

// Fixed replays scripted endpoint lists, one per call. Once the script is
// exhausted the last list is repeated. A nil list with a non nil error in the
// same position makes that call fail.
type Fixed struct {
	mu    sync.Mutex
	lists [][]string
	errs  []error
	calls int
}

// NewFixed returns a lister which yields each of lists in turn
func NewFixed(lists ...[]string) *Fixed {
	return &Fixed{lists: lists}
}

// FailOn makes the call at index (zero based) return err
func (f *Fixed) FailOn(index int, err error) *Fixed {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.errs) <= index {
		f.errs = append(f.errs, nil)
	}
	f.errs[index] = err
	return f
}

// List returns the next scripted list
func (f *Fixed) List(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := f.calls
	f.calls++

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if call < len(f.errs) && f.errs[call] != nil {
		return nil, f.errs[call]
	}
	if len(f.lists) == 0 {
		return nil, nil
	}
	if call >= len(f.lists) {
		call = len(f.lists) - 1
	}
	return append([]string(nil), f.lists[call]...), nil
}

// Calls returns how many times List has been invoked
func (f *Fixed) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
