package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/jhoicas/POS-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo operadores en memoria. El username es único sin distinguir mayúsculas.
type UserRepo struct{ b binding }

func NewUserRepository(s *Store) *UserRepo { return &UserRepo{b: s.bind()} }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.b.do(func(st *state) error {
		if _, ok := st.users[u.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.users {
			if equalFoldTrim(other.Username, u.Username) {
				return domain.ErrDuplicate
			}
		}
		st.users[u.ID] = copyUser(*u)
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.b.do(func(st *state) error {
		if u, ok := st.users[id]; ok {
			c := copyUser(u)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	var out *entity.User
	err := r.b.do(func(st *state) error {
		for _, u := range st.users {
			if equalFoldTrim(u.Username, username) {
				c := copyUser(u)
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	return r.b.do(func(st *state) error {
		cur, ok := st.users[u.ID]
		if !ok {
			return domain.ErrUserNotFound
		}
		for id, other := range st.users {
			if id != u.ID && equalFoldTrim(other.Username, u.Username) {
				return domain.ErrDuplicate
			}
		}
		next := copyUser(*u)
		next.CreatedAt = cur.CreatedAt
		st.users[u.ID] = next
		return nil
	})
}

func (r *UserRepo) List(_ context.Context) ([]*entity.User, error) {
	return r.filter(func(entity.User) bool { return true })
}

func (r *UserRepo) ListByRole(_ context.Context, role string) ([]*entity.User, error) {
	return r.filter(func(u entity.User) bool { return u.Role == role })
}

func (r *UserRepo) TouchLastAccess(_ context.Context, id string, at time.Time) error {
	return r.b.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		u.LastAccess = &at
		st.users[id] = u
		return nil
	})
}

func (r *UserRepo) filter(keep func(entity.User) bool) ([]*entity.User, error) {
	var out []*entity.User
	err := r.b.do(func(st *state) error {
		for _, u := range st.users {
			if keep(u) {
				c := copyUser(u)
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, err
}

func copyUser(u entity.User) entity.User {
	if u.LastAccess != nil {
		at := *u.LastAccess
		u.LastAccess = &at
	}
	return u
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
