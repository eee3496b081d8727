package web

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"iptv-reseller-store/internal/domain"
	"iptv-reseller-store/internal/domain/model"
	"iptv-reseller-store/internal/domain/ports/adapter"
	"iptv-reseller-store/internal/domain/ports/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// --- Mock Repositories (Ports) ---

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo { return &mockUserRepo{users: make(map[string]*model.User)} }

func (m *mockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockUserRepo) AddPoints(ctx context.Context, tx repository.Tx, id string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	u.Points += delta
	return u.Points, nil
}

type mockPlanRepo struct {
	mu    sync.Mutex
	order []string
	plans map[string]*model.Plan
}

func newMockPlanRepo() *mockPlanRepo { return &mockPlanRepo{plans: make(map[string]*model.Plan)} }

func (m *mockPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[p.ID]; !ok {
		m.order = append([]string{p.ID}, m.order...)
	}
	cp := *p
	m.plans[p.ID] = &cp
	return nil
}

func (m *mockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Plan, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.plans[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockPlanRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.plans, id)
	keep := m.order[:0]
	for _, v := range m.order {
		if v != id {
			keep = append(keep, v)
		}
	}
	m.order = keep
	return nil
}

type mockCodeRepo struct {
	mu    sync.Mutex
	order []string
	codes map[string]*model.Code
}

func newMockCodeRepo() *mockCodeRepo { return &mockCodeRepo{codes: make(map[string]*model.Code)} }

func (m *mockCodeRepo) SaveBatch(ctx context.Context, tx repository.Tx, codes []*model.Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range codes {
		if _, ok := m.codes[c.ID]; !ok {
			m.order = append([]string{c.ID}, m.order...)
		}
		cp := *c
		m.codes[c.ID] = &cp
	}
	return nil
}

func (m *mockCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Code, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCodeRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Code, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Code, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.codes[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockCodeRepo) ReserveUnused(ctx context.Context, tx repository.Tx, planID, clientID string, at time.Time) (*model.Code, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.order) - 1; i >= 0; i-- {
		c := m.codes[m.order[i]]
		if c.PlanID != planID || c.IsUsed {
			continue
		}
		c.IsUsed = true
		by := clientID
		c.UsedBy = &by
		t := at
		c.UsedAt = &t
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrNoAvailableCodes
}

type mockPurchaseRepo struct {
	mu    sync.Mutex
	items []*model.Purchase
}

func newMockPurchaseRepo() *mockPurchaseRepo { return &mockPurchaseRepo{} }

func (m *mockPurchaseRepo) Save(ctx context.Context, tx repository.Tx, p *model.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.items = append([]*model.Purchase{&cp}, m.items...)
	return nil
}

func (m *mockPurchaseRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Purchase, 0, len(m.items))
	for _, p := range m.items {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockPurchaseRepo) ListByClient(ctx context.Context, tx repository.Tx, clientID string) ([]*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Purchase
	for _, p := range m.items {
		if p.ClientID == clientID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// mockTxManager runs the function directly; handler tests do not exercise
// rollback semantics.
type mockTxManager struct{}

func (mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

// --- Auth boundary fakes ---

type mockGateway struct {
	mu       sync.Mutex
	accounts map[string]adapter.Principal // email -> principal
	pwords   map[string]string
	events   chan adapter.SessionEvent
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		accounts: make(map[string]adapter.Principal),
		pwords:   make(map[string]string),
		events:   make(chan adapter.SessionEvent, 16),
	}
}

func (g *mockGateway) addAccount(id, email, name, password string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.accounts[email] = adapter.Principal{ID: id, Email: email, Name: name}
	g.pwords[email] = password
}

func (g *mockGateway) Session(ctx context.Context) (*adapter.Session, error) {
	return nil, domain.ErrNotFound
}

func (g *mockGateway) SignIn(ctx context.Context, email, password string) (*adapter.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.accounts[email]
	if !ok || g.pwords[email] != password {
		return nil, domain.ErrInvalidCredentials
	}
	return &adapter.Session{Token: "tok-" + p.ID, Principal: p, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (g *mockGateway) SignUp(ctx context.Context, name, email, password string) (*adapter.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.accounts[email]; ok {
		return nil, domain.ErrAlreadyExists
	}
	p := adapter.Principal{ID: "principal-" + email, Email: email, Name: name}
	g.accounts[email] = p
	g.pwords[email] = password
	sess := &adapter.Session{Token: "tok-" + p.ID, Principal: p, ExpiresAt: time.Now().Add(time.Hour)}
	g.events <- adapter.SessionEvent{Kind: adapter.SessionSignedIn, Session: sess}
	return sess, nil
}

func (g *mockGateway) SignOut(ctx context.Context) error {
	g.events <- adapter.SessionEvent{Kind: adapter.SessionSignedOut}
	return nil
}

func (g *mockGateway) Events() <-chan adapter.SessionEvent { return g.events }
func (g *mockGateway) Close() error                        { return nil }

type mockSnapshots struct{}

func (mockSnapshots) Save(ctx context.Context, token string, u model.User) error { return nil }
func (mockSnapshots) Load(ctx context.Context) (string, *model.User, error) {
	return "", nil, domain.ErrNotFound
}
func (mockSnapshots) Clear(ctx context.Context) error { return nil }
