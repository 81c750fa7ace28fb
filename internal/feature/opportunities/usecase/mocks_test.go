package usecase

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/domain/entity"
	userentity "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/domain/entity"
	usersuc "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/usecase"
)

// mockOpportunityRepository keeps opportunities in memory. Any XxxFunc that is
// set replaces the default behavior of its method.
type mockOpportunityRepository struct {
	mu     sync.Mutex
	nextID int
	items  map[string]*entity.Opportunity

	CreateFunc       func(o *entity.Opportunity) error
	FindByIDFunc     func(id string) (*entity.Opportunity, error)
	ListFunc         func(filter entity.Filter, sort entity.Sort, offset, limit int) ([]entity.Opportunity, error)
	CountFunc        func(filter entity.Filter) (int64, error)
	UpdateStatusFunc func(id string, status entity.Status, at time.Time) error
	AddMemberFunc    func(opportunityID, playerID string, kind entity.MemberKind, at time.Time) (bool, error)
}

func newMockOpportunityRepository() *mockOpportunityRepository {
	return &mockOpportunityRepository{items: map[string]*entity.Opportunity{}}
}

func (m *mockOpportunityRepository) seed(o entity.Opportunity) *entity.Opportunity {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	if o.ID == "" {
		o.ID = strconv.Itoa(m.nextID)
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Date(2025, 1, 1, 0, 0, m.nextID, 0, time.UTC)
	}
	cp := o
	m.items[o.ID] = &cp
	return &cp
}

func (m *mockOpportunityRepository) Create(_ context.Context, o *entity.Opportunity) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(o)
	}
	*o = *m.seed(*o)
	return nil
}

func (m *mockOpportunityRepository) FindByID(_ context.Context, id string) (*entity.Opportunity, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.items[id]
	if !ok {
		return nil, ErrOpportunityNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOpportunityRepository) List(_ context.Context, filter entity.Filter, s entity.Sort, offset, limit int) ([]entity.Opportunity, error) {
	if m.ListFunc != nil {
		return m.ListFunc(filter, s, offset, limit)
	}
	all := m.matching(filter)
	sort.Slice(all, func(i, j int) bool {
		a, _ := strconv.Atoi(all[i].ID)
		b, _ := strconv.Atoi(all[j].ID)
		if s == entity.SortNewest && !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return a > b
	})
	if offset >= len(all) {
		return []entity.Opportunity{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *mockOpportunityRepository) Count(_ context.Context, filter entity.Filter) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(filter)
	}
	return int64(len(m.matching(filter))), nil
}

func (m *mockOpportunityRepository) UpdateStatus(_ context.Context, id string, status entity.Status, at time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(id, status, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.items[id]
	if !ok {
		return ErrOpportunityNotFound
	}
	o.Status = status
	o.UpdatedAt = at
	return nil
}

func (m *mockOpportunityRepository) AddMember(_ context.Context, opportunityID, playerID string, kind entity.MemberKind, at time.Time) (bool, error) {
	if m.AddMemberFunc != nil {
		return m.AddMemberFunc(opportunityID, playerID, kind, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.items[opportunityID]
	if !ok {
		return false, ErrOpportunityNotFound
	}
	if o.HasMember(kind, playerID) {
		return false, nil
	}
	if kind == entity.MemberJoined {
		o.JoinedPlayers = append(o.JoinedPlayers, playerID)
	} else {
		o.RegisteredPlayers = append(o.RegisteredPlayers, playerID)
	}
	o.UpdatedAt = at
	return true, nil
}

func (m *mockOpportunityRepository) matching(f entity.Filter) []entity.Opportunity {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Opportunity{}
	for _, o := range m.items {
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.OrganizerID != "" && o.OrganizerID != f.OrganizerID {
			continue
		}
		if f.RegisteredPlayerID != "" && !o.HasMember(entity.MemberRegistered, f.RegisteredPlayerID) {
			continue
		}
		if f.JoinedPlayerID != "" && !o.HasMember(entity.MemberJoined, f.JoinedPlayerID) {
			continue
		}
		if f.EventAfter != nil && (o.EventDate == nil || !o.EventDate.After(*f.EventAfter)) {
			continue
		}
		if f.EventBefore != nil && (o.EventDate == nil || !o.EventDate.Before(*f.EventBefore)) {
			continue
		}
		out = append(out, *o)
	}
	return out
}

// mockUserLookup is a mock implementation of UserLookup backed by a fixed set of users.
type mockUserLookup struct {
	users map[string]userentity.User

	FindByIDFunc  func(id string) (*userentity.User, error)
	FindByIDsFunc func(ids []string) ([]userentity.User, error)
}

func newMockUserLookup(users ...userentity.User) *mockUserLookup {
	m := &mockUserLookup{users: map[string]userentity.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserLookup) FindByID(_ context.Context, id string) (*userentity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(id)
	}
	u, ok := m.users[id]
	if !ok {
		return nil, usersuc.ErrUserNotFound
	}
	return &u, nil
}

func (m *mockUserLookup) FindByIDs(_ context.Context, ids []string) ([]userentity.User, error) {
	if m.FindByIDsFunc != nil {
		return m.FindByIDsFunc(ids)
	}
	out := []userentity.User{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}
