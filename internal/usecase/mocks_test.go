package usecase

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

// snapshotter lets the in-memory transaction manager roll repositories back
// when the transactional function fails.
type snapshotter interface {
	snapshot() any
	restore(any)
}

// memUserRepo is a small in-memory implementation used by unit tests.
type memUserRepo struct {
	mu        sync.RWMutex
	order     []string
	store     map[string]*model.User
	saveErr   error
	pointsErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[string]*model.User)}
}

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[u.ID]; !ok {
		m.order = append([]string{u.ID}, m.order...)
	}
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.User, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.store[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memUserRepo) AddPoints(ctx context.Context, tx repository.Tx, id string, delta int64) (int64, error) {
	if m.pointsErr != nil {
		return 0, m.pointsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	u.Points += delta
	return u.Points, nil
}

type memUserState struct {
	order []string
	store map[string]*model.User
}

func (m *memUserRepo) snapshot() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := memUserState{order: append([]string(nil), m.order...), store: make(map[string]*model.User, len(m.store))}
	for k, v := range m.store {
		cp := *v
		st.store[k] = &cp
	}
	return st
}

func (m *memUserRepo) restore(s any) {
	st := s.(memUserState)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = st.order
	m.store = st.store
}

type memPlanRepo struct {
	mu      sync.RWMutex
	order   []string
	store   map[string]*model.Plan
	saveErr error
	findErr error
	listErr error
	delErr  error
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{store: make(map[string]*model.Plan)}
}

func (m *memPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[p.ID]; !ok {
		m.order = append([]string{p.ID}, m.order...)
	}
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Plan, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.store[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memPlanRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if m.delErr != nil {
		return m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	keep := m.order[:0]
	for _, v := range m.order {
		if v != id {
			keep = append(keep, v)
		}
	}
	m.order = keep
	return nil
}

type memCodeRepo struct {
	mu       sync.RWMutex
	order    []string
	store    map[string]*model.Code
	batchErr error
}

func newMemCodeRepo() *memCodeRepo {
	return &memCodeRepo{store: make(map[string]*model.Code)}
}

func (m *memCodeRepo) SaveBatch(ctx context.Context, tx repository.Tx, codes []*model.Code) error {
	if m.batchErr != nil {
		return m.batchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range codes {
		if _, ok := m.store[c.ID]; !ok {
			m.order = append([]string{c.ID}, m.order...)
		}
		cp := *c
		m.store[c.ID] = &cp
	}
	return nil
}

func (m *memCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Code, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCodeRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Code, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Code, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.store[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memCodeRepo) ReserveUnused(ctx context.Context, tx repository.Tx, planID, clientID string, at time.Time) (*model.Code, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Oldest first, like the SQL reservation.
	for i := len(m.order) - 1; i >= 0; i-- {
		c := m.store[m.order[i]]
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

type memCodeState struct {
	order []string
	store map[string]*model.Code
}

func (m *memCodeRepo) snapshot() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := memCodeState{order: append([]string(nil), m.order...), store: make(map[string]*model.Code, len(m.store))}
	for k, v := range m.store {
		cp := *v
		st.store[k] = &cp
	}
	return st
}

func (m *memCodeRepo) restore(s any) {
	st := s.(memCodeState)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = st.order
	m.store = st.store
}

type memPurchaseRepo struct {
	mu      sync.RWMutex
	items   []*model.Purchase
	saveErr error
}

func newMemPurchaseRepo() *memPurchaseRepo { return &memPurchaseRepo{} }

func (m *memPurchaseRepo) Save(ctx context.Context, tx repository.Tx, p *model.Purchase) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.items = append([]*model.Purchase{&cp}, m.items...)
	return nil
}

func (m *memPurchaseRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Purchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Purchase, 0, len(m.items))
	for _, p := range m.items {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memPurchaseRepo) ListByClient(ctx context.Context, tx repository.Tx, clientID string) ([]*model.Purchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Purchase
	for _, p := range m.items {
		if p.ClientID == clientID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memPurchaseState struct{ items []*model.Purchase }

func (m *memPurchaseRepo) snapshot() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := memPurchaseState{items: make([]*model.Purchase, 0, len(m.items))}
	for _, p := range m.items {
		cp := *p
		st.items = append(st.items, &cp)
	}
	return st
}

func (m *memPurchaseRepo) restore(s any) {
	st := s.(memPurchaseState)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = st.items
}

// memTxManager emulates transactional rollback by snapshotting the mem repos
// before fn runs and restoring them when fn fails.
type memTxManager struct {
	repos []snapshotter
}

func newMemTxManager(repos ...snapshotter) *memTxManager {
	return &memTxManager{repos: repos}
}

func (m *memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	states := make([]any, len(m.repos))
	for i, r := range m.repos {
		states[i] = r.snapshot()
	}
	if err := fn(ctx, repository.NoTX); err != nil {
		for i, r := range m.repos {
			r.restore(states[i])
		}
		return err
	}
	return nil
}

// fakeGateway is a scriptable adapter.AuthGateway.
type fakeGateway struct {
	mu          sync.Mutex
	sessionSess *adapter.Session
	sessionErr  error
	signInSess  *adapter.Session
	signInErr   error
	signUpErr   error
	signOutErr  error
	signInCalls int
	signUpCalls int
	events      chan adapter.SessionEvent
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		sessionErr: domain.ErrNotFound,
		events:     make(chan adapter.SessionEvent, 16),
	}
}

func (g *fakeGateway) Session(ctx context.Context) (*adapter.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sessionSess, g.sessionErr
}

func (g *fakeGateway) SignIn(ctx context.Context, email, password string) (*adapter.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.signInCalls++
	if g.signInErr != nil {
		return nil, g.signInErr
	}
	return g.signInSess, nil
}

func (g *fakeGateway) SignUp(ctx context.Context, name, email, password string) (*adapter.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.signUpCalls++
	if g.signUpErr != nil {
		return nil, g.signUpErr
	}
	sess := &adapter.Session{
		Token:     "tok-" + email,
		Principal: adapter.Principal{ID: "principal-" + email, Email: email, Name: name},
		ExpiresAt: time.Now().Add(time.Hour),
	}
	g.events <- adapter.SessionEvent{Kind: adapter.SessionSignedIn, Session: sess}
	return sess, nil
}

func (g *fakeGateway) SignOut(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.signOutErr
}

func (g *fakeGateway) Events() <-chan adapter.SessionEvent { return g.events }
func (g *fakeGateway) Close() error                        { return nil }

// fakeSnapshots records session snapshot writes.
type fakeSnapshots struct {
	mu         sync.Mutex
	saveCalls  int
	clearCalls int
	lastToken  string
	lastUser   model.User
	loadToken  string
	loadUser   *model.User
	saveErr    error
}

func (f *fakeSnapshots) Save(ctx context.Context, token string, u model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saveCalls++
	f.lastToken = token
	f.lastUser = u
	return nil
}

func (f *fakeSnapshots) Load(ctx context.Context) (string, *model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadUser == nil {
		return "", nil, domain.ErrNotFound
	}
	cp := *f.loadUser
	return f.loadToken, &cp, nil
}

func (f *fakeSnapshots) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
	return nil
}

func (f *fakeSnapshots) last() (string, model.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastToken, f.lastUser
}

// countReloader counts Schedule calls.
type countReloader struct {
	mu    sync.Mutex
	count int
}

func (r *countReloader) Schedule() {
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
}

func (r *countReloader) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
