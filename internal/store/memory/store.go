// Package memory is an in-process implementation of core.Store.
//
// A unit of work applies its writes to a private copy of the data, so its own
// reads see them while other readers do not. Commit replays the recorded
// writes against the latest committed data under a lock, which re-checks
// every constraint; a conflicting concurrent commit makes the later Commit
// fail as a whole.
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/members/internal/core"
	"github.com/JonMunkholm/members/internal/domain"
)

// Store holds committed data.
type Store struct {
	mu     sync.RWMutex
	live   *state
	nextID atomic.Int64
}

var _ core.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{live: &state{}}
}

// Begin starts a unit of work over the current committed data.
func (s *Store) Begin(ctx context.Context) (core.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	base := s.live.clone()
	s.mu.RUnlock()

	return &unit{store: s, base: base, state: base.clone()}, nil
}

// Snapshot returns a read-only copy of the committed data.
func (s *Store) Snapshot(ctx context.Context) (core.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &snapshot{state: s.live.clone()}, nil
}

// Seed runs fn in a unit of work and commits it. It is a convenience for
// tests and demo data.
func (s *Store) Seed(ctx context.Context, fn func(core.Repositories) error) error {
	uow, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Abort(ctx)

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

// SoftDelete marks a committed record as deleted. kind is one of team,
// skill, position, user or project.
func (s *Store) SoftDelete(kind string, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.live.clone()
	found := false
	switch kind {
	case "team":
		found = markDeleted(next.teams, id, at, func(t *domain.Team) (int64, **time.Time) { return t.ID, &t.DeletedAt })
	case "skill":
		found = markDeleted(next.skills, id, at, func(x *domain.Skill) (int64, **time.Time) { return x.ID, &x.DeletedAt })
	case "position":
		found = markDeleted(next.positions, id, at, func(p *domain.Position) (int64, **time.Time) { return p.ID, &p.DeletedAt })
	case "user":
		found = markDeleted(next.users, id, at, func(u *domain.User) (int64, **time.Time) { return u.ID, &u.DeletedAt })
	case "project":
		found = markDeleted(next.projects, id, at, func(p *domain.Project) (int64, **time.Time) { return p.ID, &p.DeletedAt })
	default:
		return fmt.Errorf("memory: cannot soft-delete %q", kind)
	}
	if !found {
		return fmt.Errorf("memory: %s %d not found", kind, id)
	}
	s.live = next
	return nil
}

func markDeleted[T any](items []T, id int64, at time.Time, fields func(*T) (int64, **time.Time)) bool {
	for i := range items {
		itemID, deletedAt := fields(&items[i])
		if itemID == id && *deletedAt == nil {
			t := at
			*deletedAt = &t
			return true
		}
	}
	return false
}

type snapshot struct {
	*state
}

func (snapshot) Release(context.Context) error { return nil }

type op func(*state) error

// unit is a core.UnitOfWork. Reads go to the embedded working state.
type unit struct {
	*state
	store  *Store
	base   *state
	ops    []op
	closed bool
}

func (u *unit) apply(o op) error {
	if u.closed {
		return core.ErrUnitOfWorkClosed
	}
	if err := o(u.state); err != nil {
		return err
	}
	u.ops = append(u.ops, o)
	return nil
}

// save validates the record, assigns its ID and applies insert. The ID is
// cleared again when the insert fails.
func save[T any](u *unit, rec *T, id *int64, insert func(*state, T) error) error {
	if err := domain.Validate(rec); err != nil {
		return err
	}
	if *id == 0 {
		*id = u.store.nextID.Add(1)
	}
	value := *rec
	err := u.apply(func(st *state) error { return insert(st, value) })
	if err != nil {
		*id = 0
	}
	return err
}

func (u *unit) SaveTeam(_ context.Context, t *domain.Team) error {
	return save(u, t, &t.ID, (*state).insertTeam)
}

func (u *unit) SaveSkill(_ context.Context, s *domain.Skill) error {
	return save(u, s, &s.ID, (*state).insertSkill)
}

func (u *unit) SavePosition(_ context.Context, p *domain.Position) error {
	return save(u, p, &p.ID, (*state).insertPosition)
}

func (u *unit) SaveUser(_ context.Context, usr *domain.User) error {
	return save(u, usr, &usr.ID, (*state).insertUser)
}

func (u *unit) SaveUserSkill(_ context.Context, us *domain.UserSkill) error {
	return save(u, us, &us.ID, (*state).insertUserSkill)
}

func (u *unit) SaveProject(_ context.Context, p *domain.Project) error {
	return save(u, p, &p.ID, (*state).insertProject)
}

func (u *unit) SaveProjectMember(_ context.Context, m *domain.ProjectMember) error {
	return save(u, m, &m.ID, (*state).insertMember)
}

// Savepoint undoes fn's writes when it fails by replaying the writes made
// before it onto the starting data.
func (u *unit) Savepoint(_ context.Context, fn func() error) error {
	if u.closed {
		return core.ErrUnitOfWorkClosed
	}
	mark := len(u.ops)
	if err := fn(); err != nil {
		rebuilt := u.base.clone()
		for _, o := range u.ops[:mark] {
			if rerr := o(rebuilt); rerr != nil {
				return fmt.Errorf("memory: restore savepoint: %w", rerr)
			}
		}
		*u.state = *rebuilt
		u.ops = u.ops[:mark]
		return err
	}
	return nil
}

func (u *unit) Commit(ctx context.Context) error {
	if u.closed {
		return core.ErrUnitOfWorkClosed
	}
	u.closed = true

	if err := ctx.Err(); err != nil {
		return err
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	next := u.store.live.clone()
	for _, o := range u.ops {
		if err := o(next); err != nil {
			return fmt.Errorf("memory: commit conflict: %w", err)
		}
	}
	u.store.live = next
	return nil
}

func (u *unit) Abort(context.Context) error {
	if u.closed {
		return nil
	}
	u.closed = true
	u.ops = nil
	return nil
}
