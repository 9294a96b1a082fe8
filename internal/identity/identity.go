package identity

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"fitprime-classes/internal/apperror"
	"fitprime-classes/internal/schedule"
)

// Store persists the session user.
type Store interface {
	SessionUser(ctx context.Context) (*schedule.User, error)
	SaveSessionUser(ctx context.Context, user schedule.User) error
	ClearSessionUser(ctx context.Context) error
}

// Change is published after every successful sign-in or sign-out.
// User is nil after a sign-out.
type Change struct {
	User *schedule.User
}

// Context owns the current-user identity. Readers only call Current; the
// identity changes through SignIn and SignOut, which persist first and then
// notify subscribers.
type Context struct {
	store Store
	admin bool

	mu   sync.RWMutex
	user *schedule.User

	subMu  sync.Mutex
	nextID int
	subs   map[int]chan Change
}

// Load reads the persisted session user once. admin enables the admin
// report endpoints for this daemon.
func Load(ctx context.Context, store Store, admin bool) (*Context, error) {
	user, err := store.SessionUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	if user != nil {
		log.Printf("Restored session for user %s", user.ID)
	}
	return &Context{
		store: store,
		admin: admin,
		user:  user,
		subs:  make(map[int]chan Change),
	}, nil
}

// Current returns a copy of the signed-in user, or nil.
func (c *Context) Current() *schedule.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// IsAdmin reports whether admin reports are available.
func (c *Context) IsAdmin() bool {
	return c.admin
}

// SignIn persists user as the session user and notifies subscribers.
func (c *Context) SignIn(ctx context.Context, user schedule.User) error {
	user.ID = strings.TrimSpace(user.ID)
	if user.ID == "" {
		return apperror.Validation("id", "el usuario no tiene id")
	}

	c.mu.Lock()
	if err := c.store.SaveSessionUser(ctx, user); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("sign in %s: %w", user.ID, err)
	}
	c.user = &user
	c.mu.Unlock()

	log.Printf("User %s signed in", user.ID)
	u := user
	c.publish(Change{User: &u})
	return nil
}

// SignOut forgets the session user and notifies subscribers.
func (c *Context) SignOut(ctx context.Context) error {
	c.mu.Lock()
	if err := c.store.ClearSessionUser(ctx); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("sign out: %w", err)
	}
	was := c.user
	c.user = nil
	c.mu.Unlock()

	if was != nil {
		log.Printf("User %s signed out", was.ID)
	}
	c.publish(Change{})
	return nil
}

// Subscribe returns a channel that receives identity changes and a function
// that ends the subscription. A slow reader only sees the latest change.
func (c *Context) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, 1)

	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.subMu.Unlock()

	return ch, func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
	}
}

func (c *Context) publish(change Change) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- change:
		default:
			// Drop the stale change so the latest one fits.
			select {
			case <-ch:
			default:
			}
			ch <- change
		}
	}
}
