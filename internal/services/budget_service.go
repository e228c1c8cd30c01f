package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"kesho/internal/amqp"
	"kesho/internal/cache"
	"kesho/internal/clock"
	"kesho/internal/core"
	"kesho/internal/log"
	"kesho/internal/notify"
	"kesho/internal/store"
)

// ErrNoNotificationMatch is returned when a notification cannot be committed
// because it is not a confirmed payment with an amount.
var ErrNoNotificationMatch = errors.New("notification does not describe a confirmed payment")

// Publisher announces persisted ledger revisions.
type Publisher interface {
	PublishLedgerChanged(ctx context.Context, msg *amqp.LedgerChanged) error
}

// NotificationPreview is a parsed notification plus the category it would
// be filed under.
type NotificationPreview struct {
	notify.Candidate
	Category       string `json:"category"`
	Note           string `json:"note"`
	CategoryExists bool   `json:"categoryExists"`
}

// BudgetService owns the ledger. Every mutation runs on a copy of the
// current state, is saved, and only then replaces the in-memory state, so
// memory never runs ahead of the store.
type BudgetService struct {
	mu          sync.Mutex
	store       store.StateStore
	publisher   Publisher
	clock       clock.Clock
	parser      *notify.Parser
	categorizer *notify.Categorizer
	logger      *log.Logger

	loaded   bool
	state    core.BudgetState
	revision int64
}

type Option func(*BudgetService)

func WithPublisher(p Publisher) Option {
	return func(s *BudgetService) { s.publisher = p }
}

func WithClock(c clock.Clock) Option {
	return func(s *BudgetService) { s.clock = c }
}

func WithCategorizer(c *notify.Categorizer) Option {
	return func(s *BudgetService) { s.categorizer = c }
}

func WithLogger(l *log.Logger) Option {
	return func(s *BudgetService) { s.logger = l }
}

// NewBudgetService panics only if the embedded keyword table is broken,
// which would be a build defect.
func NewBudgetService(st store.StateStore, opts ...Option) *BudgetService {
	s := &BudgetService{store: st}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = clock.System{}
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentLedger)
	}
	if s.categorizer == nil {
		c, err := notify.LoadEmbedded()
		if err != nil {
			panic(err)
		}
		s.categorizer = c
	}
	s.parser = notify.NewParser(s.clock)
	return s
}

// Load reads the persisted ledger. With nothing persisted yet it starts a
// fresh ledger for the current month with the default categories and saves it.
func (s *BudgetService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *BudgetService) loadLocked(ctx context.Context) error {
	doc, err := s.store.Load(ctx, core.StateKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		fresh := core.NewState(core.MonthToken(s.clock.Now()))
		data, err := core.EncodeState(fresh)
		if err != nil {
			return err
		}
		if err := s.store.Save(ctx, core.StateKey, data); err != nil {
			return fmt.Errorf("save initial state: %w", err)
		}
		s.state = fresh
		s.logger.InfoContext(ctx, "Started new ledger",
			log.FieldMonth, fresh.Month,
			"categories", len(fresh.Categories))
	case err != nil:
		return fmt.Errorf("load state: %w", err)
	default:
		state, err := core.DecodeState(doc)
		if err != nil {
			return fmt.Errorf("load state: %w", err)
		}
		s.state = state
		s.logger.InfoContext(ctx, "Loaded ledger",
			log.FieldMonth, state.Month,
			"categories", len(state.Categories),
			"onboarded", state.Onboarded())
	}
	s.loaded = true
	return nil
}

func (s *BudgetService) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.loadLocked(ctx)
}

// Loaded reports whether the ledger has been read from the store.
func (s *BudgetService) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// State returns a copy of the current ledger.
func (s *BudgetService) State(ctx context.Context) (core.BudgetState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return core.BudgetState{}, err
	}
	return s.state.Clone(), nil
}

// Overview returns the read model the renderer and report consume.
func (s *BudgetService) Overview(ctx context.Context) (core.Overview, error) {
	state, err := s.State(ctx)
	if err != nil {
		return core.Overview{}, err
	}
	return state.Summarize(), nil
}

// apply runs op against a copy, saves it, swaps it in and announces it.
// A failure at any step leaves the current state untouched. The event is
// published after the lock is released so a slow or redialling broker never
// stalls other mutations; events may then arrive out of revision order,
// which the report worker tolerates since it reloads the store.
func (s *BudgetService) apply(ctx context.Context, op string, fields log.LogFields, fn func(core.BudgetState) (core.BudgetState, error)) error {
	revision, month, err := s.commit(ctx, op, fields, fn)
	if err != nil {
		return err
	}

	if err := s.publish(ctx, op, revision, month); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger change",
			log.FieldOperation, op,
			log.FieldRevision, revision,
			log.FieldError, err)
		// The change is durable; the report catches up on the next event.
	}
	return nil
}

// commit is the locked half of apply. It returns the new revision and the
// ledger month for the change event.
func (s *BudgetService) commit(ctx context.Context, op string, fields log.LogFields, fn func(core.BudgetState) (core.BudgetState, error)) (int64, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return 0, "", err
	}

	next, err := fn(s.state)
	if err != nil {
		return 0, "", err
	}
	if err := next.CheckInvariants(); err != nil {
		return 0, "", fmt.Errorf("%s: %w", op, err)
	}

	doc, err := core.EncodeState(next)
	if err != nil {
		return 0, "", err
	}
	if err := s.store.Save(ctx, core.StateKey, doc); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist ledger, change discarded",
			fields.WithOperation(op).WithError(err).ToSlice()...)
		return 0, "", fmt.Errorf("save state: %w", err)
	}

	s.state = next
	s.revision++

	s.logger.InfoContext(ctx, "Ledger updated",
		fields.WithOperation(op).WithRevision(s.revision, next.Month).ToSlice()...)
	return s.revision, next.Month, nil
}

func (s *BudgetService) publish(ctx context.Context, op string, revision int64, month string) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.PublishLedgerChanged(ctx, amqp.NewLedgerChanged(revision, op, month))
}

// SetIncome records income and re-allocates every budget.
func (s *BudgetService) SetIncome(ctx context.Context, income core.Money) (core.AllocationResult, error) {
	var result core.AllocationResult
	err := s.apply(ctx, log.OpSetIncome, log.NewFields(), func(st core.BudgetState) (core.BudgetState, error) {
		next, res, err := st.SetIncome(income)
		result = res
		return next, err
	})
	if err != nil {
		return core.AllocationResult{}, err
	}
	for _, g := range result.Skipped {
		s.logger.WarnContext(ctx, "Group has no categories, share left unallocated",
			log.FieldGroup, g,
			log.FieldAmountCents, income.Cents*core.GroupShare(g)/100,
			log.FieldError, core.ErrEmptyGroupAllocation)
	}
	return result, nil
}

// UpdateBudgets sets income and individual budgets without re-allocating.
func (s *BudgetService) UpdateBudgets(ctx context.Context, income core.Money, budgets map[string]core.Money) error {
	return s.apply(ctx, log.OpUpdateBudgets, log.NewFields(), func(st core.BudgetState) (core.BudgetState, error) {
		return st.UpdateBudgets(income, budgets)
	})
}

func (s *BudgetService) AddCategory(ctx context.Context, name string, group core.Group) (core.Category, error) {
	var created core.Category
	err := s.apply(ctx, log.OpAddCategory, log.NewFields().WithCategory(name), func(st core.BudgetState) (core.BudgetState, error) {
		next, err := st.AddCategory(name, group)
		if err != nil {
			return st, err
		}
		created = next.Categories[len(next.Categories)-1]
		return next, nil
	})
	return created, err
}

func (s *BudgetService) RenameCategory(ctx context.Context, oldName, newName string) error {
	return s.apply(ctx, log.OpRenameCategory, log.NewFields().WithCategory(oldName), func(st core.BudgetState) (core.BudgetState, error) {
		return st.RenameCategory(oldName, newName)
	})
}

func (s *BudgetService) SetBudget(ctx context.Context, name string, amount core.Money) error {
	return s.apply(ctx, log.OpSetBudget, log.NewFields().WithCategory(name), func(st core.BudgetState) (core.BudgetState, error) {
		return st.SetBudget(name, amount)
	})
}

// UpdateCategory sets the budget and then renames, in one step. Nil fields
// are left alone.
func (s *BudgetService) UpdateCategory(ctx context.Context, name string, newName *string, budget *core.Money) (core.Category, error) {
	op := log.OpSetBudget
	if newName != nil {
		op = log.OpRenameCategory
	}
	var updated core.Category
	err := s.apply(ctx, op, log.NewFields().WithCategory(name), func(st core.BudgetState) (core.BudgetState, error) {
		next := st
		var err error
		if budget != nil {
			if next, err = next.SetBudget(name, *budget); err != nil {
				return st, err
			}
		}
		final := name
		if newName != nil {
			if next, err = next.RenameCategory(name, *newName); err != nil {
				return st, err
			}
			final = strings.TrimSpace(*newName)
		}
		c, ok := next.Category(final)
		if !ok {
			return st, fmt.Errorf("%w: %q", core.ErrCategoryNotFound, name)
		}
		updated = c
		return next, nil
	})
	return updated, err
}

// RemoveCategory deletes the category and everything recorded against it.
// Callers are expected to have confirmed with the user.
func (s *BudgetService) RemoveCategory(ctx context.Context, name string) (core.Category, error) {
	var removed core.Category
	err := s.apply(ctx, log.OpRemoveCategory, log.NewFields().WithCategory(name), func(st core.BudgetState) (core.BudgetState, error) {
		next, c, err := st.RemoveCategory(name)
		removed = c
		return next, err
	})
	if err != nil {
		return core.Category{}, err
	}
	if len(removed.Transactions) > 0 {
		s.logger.WarnContext(ctx, "Removed category with recorded spend",
			log.FieldCategory, removed.Name,
			log.FieldAmountCents, removed.Spent.Cents,
			"transactions", len(removed.Transactions))
	}
	return removed, nil
}

func (s *BudgetService) AddTransaction(ctx context.Context, category string, amount core.Money, date core.Date, note string) (core.Transaction, error) {
	var added core.Transaction
	fields := log.NewFields().WithCategory(category)
	err := s.apply(ctx, log.OpAddTransaction, fields, func(st core.BudgetState) (core.BudgetState, error) {
		next, tx, err := st.AddTransaction(category, core.NewTransaction(amount, date, note))
		if err != nil {
			return st, err
		}
		added = tx
		fields.WithTransaction(tx.ID, tx.Amount.Cents)
		return next, nil
	})
	return added, err
}

func (s *BudgetService) EditTransaction(ctx context.Context, id string, upd core.TransactionUpdate) (core.Transaction, error) {
	var edited core.Transaction
	fields := log.NewFields().WithCategory(upd.Category).WithTransaction(id, upd.Amount.Cents)
	err := s.apply(ctx, log.OpEditTransaction, fields, func(st core.BudgetState) (core.BudgetState, error) {
		next, tx, err := st.EditTransaction(id, upd)
		edited = tx
		return next, err
	})
	return edited, err
}

func (s *BudgetService) DeleteTransaction(ctx context.Context, id string) error {
	fields := log.NewFields()
	return s.apply(ctx, log.OpDeleteTransaction, fields, func(st core.BudgetState) (core.BudgetState, error) {
		next, ref, err := st.DeleteTransaction(id)
		if err != nil {
			return st, err
		}
		fields.WithCategory(ref.Category).WithTransaction(id, ref.Transaction.Amount.Cents)
		return next, nil
	})
}

// PreviewNotification parses and categorises text without touching the
// ledger. It may be called on every keystroke.
func (s *BudgetService) PreviewNotification(ctx context.Context, text string) (NotificationPreview, bool, error) {
	candidate, ok := s.parser.Parse(text)
	if !ok {
		return NotificationPreview{}, false, nil
	}
	state, err := s.State(ctx)
	if err != nil {
		return NotificationPreview{}, false, err
	}
	category := s.categorizer.Categorize(candidate.Payee)
	_, exists := state.Category(category)
	return NotificationPreview{
		Candidate:      candidate,
		Category:       category,
		Note:           notify.NoteFor(candidate.Payee),
		CategoryExists: exists,
	}, true, nil
}

// CommitNotification re-parses text and records it as a transaction.
func (s *BudgetService) CommitNotification(ctx context.Context, text string) (NotificationPreview, core.Transaction, error) {
	candidate, ok := s.parser.Parse(text)
	if !ok {
		return NotificationPreview{}, core.Transaction{}, ErrNoNotificationMatch
	}
	preview := NotificationPreview{
		Candidate: candidate,
		Category:  s.categorizer.Categorize(candidate.Payee),
		Note:      notify.NoteFor(candidate.Payee),
	}

	tx, err := s.AddTransaction(ctx, preview.Category, candidate.Amount, candidate.Date, preview.Note)
	if err != nil {
		return preview, core.Transaction{}, fmt.Errorf("commit notification: %w", err)
	}
	preview.CategoryExists = true

	s.logger.InfoContext(ctx, "Imported M-Pesa notification",
		log.FieldOperation, log.OpImportNotice,
		log.FieldPayee, candidate.Payee,
		log.FieldCategory, preview.Category,
		log.FieldTransactionID, tx.ID)
	return preview, tx, nil
}

// PayeeCacheStats reports the categoriser's payee memo counters.
func (s *BudgetService) PayeeCacheStats() cache.Stats {
	return s.categorizer.CacheStats()
}

// Close releases the publisher when it holds a connection.
func (s *BudgetService) Close() error {
	if c, ok := s.publisher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
