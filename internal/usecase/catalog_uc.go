package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"iptv-reseller-store/internal/domain"
	"iptv-reseller-store/internal/domain/model"
	"iptv-reseller-store/internal/domain/ports/repository"
	"iptv-reseller-store/internal/infra/logging"
	"iptv-reseller-store/internal/infra/metrics"
)

// ReloadScheduler marks the cache dirty for a reconciling reload.
type ReloadScheduler interface {
	Schedule()
}

// CatalogStore caches the four collections and exposes the mutating
// operations, including the purchase transaction. Mutations update the
// cache optimistically and schedule a reconciling reload to pick up
// server-side defaults and concurrent writes from other instances.
type CatalogStore struct {
	users     repository.UserRepository
	plans     repository.PlanRepository
	codes     repository.CodeRepository
	purchases repository.PurchaseRepository
	tm        repository.TransactionManager
	session   CurrentSession
	log       *zerolog.Logger

	reloader ReloadScheduler

	mu        sync.RWMutex
	userCache []*model.User
	planCache []*model.Plan
	codeCache []*model.Code
	purCache  []*model.Purchase
	loading   bool
}

func NewCatalogStore(
	users repository.UserRepository,
	plans repository.PlanRepository,
	codes repository.CodeRepository,
	purchases repository.PurchaseRepository,
	tm repository.TransactionManager,
	session CurrentSession,
	logger *zerolog.Logger,
) *CatalogStore {
	return &CatalogStore{
		users:     users,
		plans:     plans,
		codes:     codes,
		purchases: purchases,
		tm:        tm,
		session:   session,
		log:       logger,
	}
}

// BindReloader attaches the reconciling reloader. Wiring happens after
// construction because the reloader's work function is this store's LoadAll.
func (c *CatalogStore) BindReloader(r ReloadScheduler) { c.reloader = r }

// LoadAll fetches the four collections in parallel. Each fetch is
// independently fault-tolerant: a failure is logged and the previous
// (possibly stale or empty) data for that collection is kept. One loading
// flag covers the whole batch.
func (c *CatalogStore) LoadAll(ctx context.Context) {
	defer logging.TraceDuration(c.log, "CatalogStore.LoadAll")()

	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		if us, err := c.users.ListAll(ctx, repository.NoTX); err != nil {
			c.log.Error().Err(err).Msg("load users failed")
		} else {
			c.mu.Lock()
			c.userCache = us
			c.mu.Unlock()
		}
	}()
	go func() {
		defer wg.Done()
		if ps, err := c.plans.ListAll(ctx, repository.NoTX); err != nil {
			c.log.Error().Err(err).Msg("load plans failed")
		} else {
			c.mu.Lock()
			c.planCache = ps
			c.mu.Unlock()
		}
	}()
	go func() {
		defer wg.Done()
		if cs, err := c.codes.ListAll(ctx, repository.NoTX); err != nil {
			c.log.Error().Err(err).Msg("load codes failed")
		} else {
			c.mu.Lock()
			c.codeCache = cs
			c.mu.Unlock()
		}
	}()
	go func() {
		defer wg.Done()
		if ps, err := c.purchases.ListAll(ctx, repository.NoTX); err != nil {
			c.log.Error().Err(err).Msg("load purchases failed")
		} else {
			c.mu.Lock()
			c.purCache = ps
			c.mu.Unlock()
		}
	}()
	wg.Wait()
}

func (c *CatalogStore) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// --- cached collection accessors (copies) ---

func (c *CatalogStore) Users() []*model.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copySlice(c.userCache)
}

func (c *CatalogStore) Plans() []*model.Plan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copySlice(c.planCache)
}

func (c *CatalogStore) Codes() []*model.Code {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copySlice(c.codeCache)
}

func (c *CatalogStore) Purchases() []*model.Purchase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copySlice(c.purCache)
}

func (c *CatalogStore) PurchasesByClient(clientID string) []*model.Purchase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*model.Purchase
	for _, p := range c.purCache {
		if p.ClientID == clientID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out
}

// CreatePlan inserts the plan and prepends it to the cache. Field
// validation is the caller's concern.
func (c *CatalogStore) CreatePlan(ctx context.Context, p *model.Plan) bool {
	defer logging.TraceDuration(c.log, "CatalogStore.CreatePlan")()

	if err := c.plans.Save(ctx, repository.NoTX, p); err != nil {
		c.log.Error().Err(err).Msg("create plan failed")
		return false
	}

	c.mu.Lock()
	cp := *p
	c.planCache = append([]*model.Plan{&cp}, c.planCache...)
	c.mu.Unlock()

	c.scheduleReload()
	return true
}

// UpdatePlan applies a partial update and merges the result into the cache.
func (c *CatalogStore) UpdatePlan(ctx context.Context, id string, patch model.PlanPatch) bool {
	defer logging.TraceDuration(c.log, "CatalogStore.UpdatePlan")()

	existing, err := c.plans.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		c.log.Error().Err(err).Str("plan_id", id).Msg("update plan: lookup failed")
		return false
	}
	updated := patch.Apply(*existing)
	if err := c.plans.Save(ctx, repository.NoTX, &updated); err != nil {
		c.log.Error().Err(err).Str("plan_id", id).Msg("update plan failed")
		return false
	}

	c.mu.Lock()
	for i, p := range c.planCache {
		if p.ID == id {
			cp := updated
			c.planCache[i] = &cp
			break
		}
	}
	c.mu.Unlock()

	c.scheduleReload()
	return true
}

// DeletePlan deletes remotely, then evicts the plan and all of its codes
// from the cache. Failures are logged only; callers get no signal.
func (c *CatalogStore) DeletePlan(ctx context.Context, id string) {
	defer logging.TraceDuration(c.log, "CatalogStore.DeletePlan")()

	if err := c.plans.Delete(ctx, repository.NoTX, id); err != nil {
		c.log.Error().Err(err).Str("plan_id", id).Msg("delete plan failed")
		return
	}

	c.mu.Lock()
	plans := c.planCache[:0]
	for _, p := range c.planCache {
		if p.ID != id {
			plans = append(plans, p)
		}
	}
	c.planCache = plans
	codes := c.codeCache[:0]
	for _, cd := range c.codeCache {
		if cd.PlanID != id {
			codes = append(codes, cd)
		}
	}
	c.codeCache = codes
	c.mu.Unlock()

	c.scheduleReload()
}

// AddCodes bulk-imports redemption codes for a plan, one per input line.
// Lines are trimmed and blank lines discarded.
func (c *CatalogStore) AddCodes(ctx context.Context, planID string, lines []string) ([]*model.Code, error) {
	defer logging.TraceDuration(c.log, "CatalogStore.AddCodes")()

	var batch []*model.Code
	for _, line := range lines {
		value := strings.TrimSpace(line)
		if value == "" {
			continue
		}
		code, err := model.NewCode("", planID, value)
		if err != nil {
			return nil, err
		}
		batch = append(batch, code)
	}
	if len(batch) == 0 {
		return nil, nil
	}

	if err := c.codes.SaveBatch(ctx, repository.NoTX, batch); err != nil {
		c.log.Error().Err(err).Str("plan_id", planID).Msg("add codes failed")
		return nil, err
	}
	metrics.AddCodesImported(len(batch))

	c.mu.Lock()
	merged := make([]*model.Code, 0, len(batch)+len(c.codeCache))
	for _, cd := range batch {
		cp := *cd
		merged = append(merged, &cp)
	}
	c.codeCache = append(merged, c.codeCache...)
	c.mu.Unlock()

	c.scheduleReload()
	return batch, nil
}

// GenerateCodes creates n random codes for the plan and imports them.
func (c *CatalogStore) GenerateCodes(ctx context.Context, planID string, n int) ([]*model.Code, error) {
	if n <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		v, err := generateCode()
		if err != nil {
			return nil, err
		}
		lines = append(lines, v)
	}
	return c.AddCodes(ctx, planID, lines)
}

// PurchasePlan redeems one unused code of the plan for the client: the code
// reservation, the purchase insert, and the points credit run in a single
// database transaction, so partial failure leaves no consumed code behind.
// The plan must exist and be active.
func (c *CatalogStore) PurchasePlan(ctx context.Context, clientID, planID string) (*model.Purchase, error) {
	defer logging.TraceDuration(c.log, "CatalogStore.PurchasePlan")()

	var (
		purchase   *model.Purchase
		code       *model.Code
		reward     int64
		newBalance int64
	)
	err := c.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		plan, err := c.plans.FindByID(ctx, tx, planID)
		if err != nil {
			return err
		}
		if !plan.IsActive {
			return domain.ErrPlanInactive
		}

		code, err = c.codes.ReserveUnused(ctx, tx, planID, clientID, time.Now().UTC())
		if err != nil {
			return err
		}

		purchase, err = model.NewPurchase(clientID, planID, code.ID, plan.Price, plan.PointsReward, model.PurchaseStatusCompleted)
		if err != nil {
			return err
		}
		if err := c.purchases.Save(ctx, tx, purchase); err != nil {
			return err
		}

		reward = plan.PointsReward
		newBalance, err = c.users.AddPoints(ctx, tx, clientID, reward)
		return err
	})
	if err != nil {
		metrics.IncPurchase(purchaseResult(err))
		c.log.Warn().Err(err).Str("client_id", clientID).Str("plan_id", planID).Msg("purchase failed")
		return nil, err
	}

	c.applyPurchase(code, purchase, newBalance)
	c.refreshSessionUser(ctx, clientID, newBalance)

	metrics.IncPurchase("completed")
	metrics.AddPointsCredited(reward)
	c.log.Info().
		Str("client_id", clientID).
		Str("plan_id", planID).
		Str("code_id", code.ID).
		Int64("points", reward).
		Msg("purchase completed")

	c.scheduleReload()
	return purchase, nil
}

// UpdateUserPoints credits (or debits) a user's balance atomically and
// keeps the cache and the persisted session snapshot consistent.
func (c *CatalogStore) UpdateUserPoints(ctx context.Context, userID string, delta int64) error {
	defer logging.TraceDuration(c.log, "CatalogStore.UpdateUserPoints")()

	newBalance, err := c.users.AddPoints(ctx, repository.NoTX, userID, delta)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("update points failed")
		return err
	}
	if delta > 0 {
		metrics.AddPointsCredited(delta)
	}

	c.mu.Lock()
	for i, u := range c.userCache {
		if u.ID == userID {
			cp := *u
			cp.Points = newBalance
			c.userCache[i] = &cp
			break
		}
	}
	c.mu.Unlock()

	c.refreshSessionUser(ctx, userID, newBalance)
	return nil
}

func (c *CatalogStore) applyPurchase(code *model.Code, purchase *model.Purchase, newBalance int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, cd := range c.codeCache {
		if cd.ID == code.ID {
			cp := *code
			c.codeCache[i] = &cp
			break
		}
	}
	pp := *purchase
	c.purCache = append([]*model.Purchase{&pp}, c.purCache...)
	for i, u := range c.userCache {
		if u.ID == purchase.ClientID {
			cp := *u
			cp.Points = newBalance
			c.userCache[i] = &cp
			break
		}
	}
}

func (c *CatalogStore) refreshSessionUser(ctx context.Context, userID string, newBalance int64) {
	if c.session == nil {
		return
	}
	cur := c.session.Current()
	if cur == nil || cur.ID != userID {
		return
	}
	cur.Points = newBalance
	c.session.RefreshUser(ctx, *cur)
}

func (c *CatalogStore) scheduleReload() {
	if c.reloader != nil {
		c.reloader.Schedule()
	}
}

func purchaseResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "no_plan"
	case errors.Is(err, domain.ErrPlanInactive):
		return "plan_inactive"
	case errors.Is(err, domain.ErrNoAvailableCodes):
		return "no_codes"
	default:
		return "error"
	}
}

func copySlice[T any](in []*T) []*T {
	out := make([]*T, 0, len(in))
	for _, v := range in {
		cp := *v
		out = append(out, &cp)
	}
	return out
}
