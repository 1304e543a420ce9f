package transfer

import (
	"sync"
	"time"

	"github.com/David-Botos/content-migrate/pkg/model"
	"github.com/David-Botos/content-migrate/pkg/store"
)

// dryRunPlan holds what a dry run would have written, so later rows see
// earlier rows' writes as they would in a real run. It mirrors the store's
// uniqueness rules: user ids and emails, record keys.
type dryRunPlan struct {
	mu      sync.Mutex
	users   []model.User
	records map[string]struct{}
	now     func() time.Time
}

func newDryRunPlan() *dryRunPlan {
	return &dryRunPlan{records: make(map[string]struct{}), now: time.Now}
}

// addUser plans a user. It returns false when the id or email is taken.
func (p *dryRunPlan) addUser(u model.User) (*model.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, existing := range p.users {
		if existing.ID == u.ID || existing.Email == u.Email {
			return nil, false
		}
	}
	now := p.now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	p.users = append(p.users, u)
	return &u, true
}

func (p *dryRunPlan) findUser(criteria store.UserCriteria) (*model.User, bool) {
	if criteria.IsEmpty() {
		return nil, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, u := range p.users {
		if criteria.ID != "" && u.ID != criteria.ID {
			continue
		}
		if criteria.Email != "" && u.Email != criteria.Email {
			continue
		}
		found := u
		return &found, true
	}
	return nil, false
}

// firstUser returns the planned user created earliest
func (p *dryRunPlan) firstUser() (*model.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.users) == 0 {
		return nil, false
	}
	first := p.users[0]
	for _, u := range p.users[1:] {
		if u.CreatedAt.Before(first.CreatedAt) {
			first = u
		}
	}
	return &first, true
}

func planKey(entity model.EntityType, id string) string {
	return string(entity) + "/" + id
}

// addRecord plans a record. It returns false when the key is already planned.
func (p *dryRunPlan) addRecord(entity model.EntityType, id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := planKey(entity, id)
	if _, ok := p.records[key]; ok {
		return false
	}
	p.records[key] = struct{}{}
	return true
}

func (p *dryRunPlan) hasRecord(entity model.EntityType, id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.records[planKey(entity, id)]
	return ok
}
