package repofake

import (
	"sync"

	"github.com/jrsteele09/go-session-client/session"
)

var _ session.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory session.Repo for tests.
type FakeSessionRepo struct {
	lock      sync.RWMutex
	persisted *session.PersistedSession

	SaveErr   error
	LoadErr   error
	DeleteErr error
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

func (r *FakeSessionRepo) Save(persisted *session.PersistedSession) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	copied := *persisted
	r.persisted = &copied
	return nil
}

func (r *FakeSessionRepo) Load() (*session.PersistedSession, error) {
	if r.LoadErr != nil {
		return nil, r.LoadErr
	}
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.persisted == nil {
		return nil, nil
	}
	copied := *r.persisted
	return &copied, nil
}

func (r *FakeSessionRepo) Delete() error {
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	r.persisted = nil
	return nil
}
