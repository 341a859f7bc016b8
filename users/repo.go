package users

// UserRepo is the read side of the user directory. GetByLogin returns
// errors.ErrNotFound from internal/errors when no identity matches.
type UserRepo interface {
	GetByLogin(login string) (*User, error)
}
