package refreshrepofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-jwt-server/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

// FakeRefreshTokenRepo wraps an in-memory repo, counts writes and can be told to fail
type FakeRefreshTokenRepo struct {
	inner *refresh.InMemoryRepo
	lock  sync.Mutex

	getErr  error
	putErr  error
	swapErr error

	puts  int
	swaps int
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{
		inner: refresh.NewInMemoryRepo(),
	}
}

func (tr *FakeRefreshTokenRepo) Get(ctx context.Context, login string) (string, error) {
	tr.lock.Lock()
	err := tr.getErr
	tr.lock.Unlock()
	if err != nil {
		return "", err
	}
	return tr.inner.Get(ctx, login)
}

func (tr *FakeRefreshTokenRepo) Put(ctx context.Context, login, token string) error {
	tr.lock.Lock()
	err := tr.putErr
	tr.puts++
	tr.lock.Unlock()
	if err != nil {
		return err
	}
	return tr.inner.Put(ctx, login, token)
}

func (tr *FakeRefreshTokenRepo) CompareAndSwap(ctx context.Context, login, expected, next string) (bool, error) {
	tr.lock.Lock()
	err := tr.swapErr
	tr.swaps++
	tr.lock.Unlock()
	if err != nil {
		return false, err
	}
	return tr.inner.CompareAndSwap(ctx, login, expected, next)
}

// Writes returns how many Put and CompareAndSwap calls were made
func (tr *FakeRefreshTokenRepo) Writes() (puts, swaps int) {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	return tr.puts, tr.swaps
}

func (tr *FakeRefreshTokenRepo) Snapshot() map[string]string {
	return tr.inner.Snapshot()
}

// SetErrors sets the errors returned by subsequent calls
func (tr *FakeRefreshTokenRepo) SetErrors(getErr, putErr, swapErr error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.getErr, tr.putErr, tr.swapErr = getErr, putErr, swapErr
}
