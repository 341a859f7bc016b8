package fakeuserrepo

import (
	"sort"
	"sync"

	"github.com/jrsteele09/go-jwt-server/internal/errors"
	"github.com/jrsteele09/go-jwt-server/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users map[string]*users.User // login to user
	lock  sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users: make(map[string]*users.User),
	}
}

// NewSeededUserRepo returns the default development directory
func NewSeededUserRepo() *FakeUserRepo {
	ur := NewFakeUserRepo()
	for _, u := range SeedUsers() {
		_ = ur.Upsert(u)
	}
	return ur
}

// SeedUsers returns the built-in development identities
func SeedUsers() []*users.User {
	return []*users.User{
		{Login: "anton", PasswordHash: "1234", FirstName: "Антон", LastName: "Иванов", Roles: []users.RoleType{users.RoleUser}},
		{Login: "ivan", PasswordHash: "12345", FirstName: "Сергей", LastName: "Петров", Roles: []users.RoleType{users.RoleUser}},
		{Login: "admin", PasswordHash: "admin", FirstName: "Admin", Roles: []users.RoleType{users.RoleAdmin, users.RoleUser}},
	}
}

func (ur *FakeUserRepo) Upsert(user *users.User) error {
	if user == nil || user.Login == "" {
		return errors.ErrInvalidCredentials
	}
	ur.lock.Lock()
	defer ur.lock.Unlock()

	ur.users[user.Login] = user.Clone()
	return nil
}

func (ur *FakeUserRepo) Delete(login string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, ok := ur.users[login]; !ok {
		return errors.ErrNotFound
	}
	delete(ur.users, login)
	return nil
}

func (ur *FakeUserRepo) GetByLogin(login string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[login]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return u.Clone(), nil
}

func (ur *FakeUserRepo) List() []*users.User {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0, len(ur.users))
	for _, v := range ur.users {
		userList = append(userList, v.Clone())
	}

	sort.Slice(userList, func(i, j int) bool {
		return userList[i].Login < userList[j].Login
	})
	return userList
}
