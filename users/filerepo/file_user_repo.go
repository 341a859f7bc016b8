// Package filerepo serves the user directory from a JSON file and reloads it
// when the file changes on disk.
package filerepo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jrsteele09/go-jwt-server/internal/errors"
	"github.com/jrsteele09/go-jwt-server/users"
	"github.com/rs/zerolog/log"
)

var _ users.UserRepo = (*Repo)(nil)

const reloadDelay = 250 * time.Millisecond

type Repo struct {
	path    string
	users   map[string]*users.User
	lock    sync.RWMutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New loads the directory at path. The file holds a JSON array of users.
func New(path string) (*Repo, error) {
	r := &Repo{path: path}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the file. The previous directory is kept if the file is unreadable or invalid.
func (r *Repo) Reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read users file %s: %w", r.path, err)
	}

	var list []*users.User
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("decode users file %s: %w", r.path, err)
	}

	loaded := make(map[string]*users.User, len(list))
	for _, u := range list {
		if u == nil || u.Login == "" {
			return fmt.Errorf("users file %s: entry without login", r.path)
		}
		if _, dup := loaded[u.Login]; dup {
			return fmt.Errorf("users file %s: duplicate login %q", r.path, u.Login)
		}
		loaded[u.Login] = u
	}

	r.lock.Lock()
	r.users = loaded
	r.lock.Unlock()
	return nil
}

func (r *Repo) GetByLogin(login string) (*users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	u, ok := r.users[login]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return u.Clone(), nil
}

func (r *Repo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.users)
}

// Watch reloads the directory whenever the file is written, created or replaced.
// The parent directory is watched so editors that rename over the file are seen.
func (r *Repo) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		_ = watcher.Close()
		return err
	}

	r.watcher = watcher
	r.done = make(chan struct{})
	reload := make(chan struct{}, 1)
	go r.scheduleReload(reload)
	go r.handleWatcher(reload)
	return nil
}

// Close stops watching the file
func (r *Repo) Close() error {
	if r.watcher == nil {
		return nil
	}
	close(r.done)
	return r.watcher.Close()
}

func (r *Repo) handleWatcher(reload chan<- struct{}) {
	target := filepath.Clean(r.path)
	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				select {
				case reload <- struct{}{}:
				default:
				}
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Str("path", r.path).Msg("users file watcher error")
		}
	}
}

func (r *Repo) scheduleReload(reload <-chan struct{}) {
	var timer *time.Timer
	var c <-chan time.Time
	for {
		select {
		case <-r.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-reload:
			if timer != nil {
				timer.Reset(reloadDelay)
			} else {
				timer = time.NewTimer(reloadDelay)
				c = timer.C
			}
		case <-c:
			c = nil
			timer = nil
			if err := r.Reload(); err != nil {
				log.Error().Err(err).Msg("users file reload failed, keeping previous directory")
				continue
			}
			log.Info().Str("path", r.path).Int("users", r.Len()).Msg("users file reloaded")
		}
	}
}
