package refresh

import (
	"context"
	"crypto/subtle"
	"sync"

	"github.com/jrsteele09/go-jwt-server/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a process-local Repo. Each login has its own lock, so
// operations on different logins never contend.
type InMemoryRepo struct {
	entries sync.Map // login -> *entry
}

type entry struct {
	mu    sync.Mutex
	token string
	set   bool
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{}
}

func (r *InMemoryRepo) entry(login string, create bool) *entry {
	if e, ok := r.entries.Load(login); ok {
		return e.(*entry)
	}
	if !create {
		return nil
	}
	e, _ := r.entries.LoadOrStore(login, &entry{})
	return e.(*entry)
}

func (r *InMemoryRepo) Get(_ context.Context, login string) (string, error) {
	e := r.entry(login, false)
	if e == nil {
		return "", errors.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.set {
		return "", errors.ErrNotFound
	}
	return e.token, nil
}

func (r *InMemoryRepo) Put(_ context.Context, login, token string) error {
	e := r.entry(login, true)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.token = token
	e.set = true
	return nil
}

func (r *InMemoryRepo) CompareAndSwap(_ context.Context, login, expected, next string) (bool, error) {
	e := r.entry(login, false)
	if e == nil {
		return false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.set || subtle.ConstantTimeCompare([]byte(e.token), []byte(expected)) != 1 {
		return false, nil
	}
	e.token = next
	return true, nil
}

// Snapshot copies the current login to token mapping
func (r *InMemoryRepo) Snapshot() map[string]string {
	out := make(map[string]string)
	r.entries.Range(func(k, v any) bool {
		e := v.(*entry)
		e.mu.Lock()
		if e.set {
			out[k.(string)] = e.token
		}
		e.mu.Unlock()
		return true
	})
	return out
}
