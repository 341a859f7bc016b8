package refresh

import "context"

// Repo keeps the single currently valid refresh token per login.
// Writing a new token for a login supersedes the previous one.
type Repo interface {
	// Get returns the stored token for login, or errors.ErrNotFound.
	Get(ctx context.Context, login string) (string, error)

	// Put stores token for login, overwriting any previous value.
	Put(ctx context.Context, login, token string) error

	// CompareAndSwap replaces the stored token with next only if it currently
	// equals expected. It reports whether the swap happened. The read and the
	// write are atomic with respect to other calls for the same login.
	CompareAndSwap(ctx context.Context, login, expected, next string) (bool, error)
}
