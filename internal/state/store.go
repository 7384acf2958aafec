// Package state owns the citizen's session and the in-memory domain store that
// every view reads from and mutates through.
package state

import (
	"fmt"
	"slices"
	"sync"

	"github.com/sadopc/civic/internal/clock"
	"github.com/sadopc/civic/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Operations is the command surface views depend on.
type Operations interface {
	Snapshot() domain.UserData
	TopUp(amount decimal.Decimal) error
	PayTaxes(ids ...int64) []int64
	PayUtility(name domain.UtilityName) error
	ToggleAutoPay(name domain.UtilityName) (bool, error)

	// Epoch identifies the data generation; Reset starts a new one.
	Epoch() uint64
	// Within runs commit only if the store is still in epoch.
	Within(epoch uint64, commit func() error) error
}

// Store is the single source of truth for UserData. Mutations replace the
// whole snapshot, so a published value is never modified afterwards.
type Store struct {
	// gate is held for reading by commits and for writing by Reset. Lock
	// order is gate, then mu.
	gate  sync.RWMutex
	epoch uint64

	mu   sync.Mutex
	seed func() domain.UserData
	data domain.UserData
	subs map[int]chan domain.UserData
	next int

	clock clock.Clock
	log   *zap.Logger
}

var _ Operations = (*Store)(nil)

// NewStore seeds the store from seed, which is called again on every Reset.
func NewStore(seed func() domain.UserData, c clock.Clock, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		seed:  seed,
		data:  seed().Clone(),
		subs:  make(map[int]chan domain.UserData),
		clock: c,
		log:   log,
	}
}

func (s *Store) Snapshot() domain.UserData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Reset discards all session changes and restores the seed. Commits begun in
// an earlier epoch are refused afterwards.
func (s *Store) Reset() {
	s.gate.Lock()
	defer s.gate.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.data = s.seed().Clone()
	s.log.Info("store reset", zap.Uint64("epoch", s.epoch))
	s.publish()
}

func (s *Store) Epoch() uint64 {
	s.gate.RLock()
	defer s.gate.RUnlock()
	return s.epoch
}

func (s *Store) Within(epoch uint64, commit func() error) error {
	s.gate.RLock()
	defer s.gate.RUnlock()
	if s.epoch != epoch {
		s.log.Info("stale commit refused", zap.Uint64("epoch", epoch), zap.Uint64("current", s.epoch))
		return fmt.Errorf("commit in epoch %d: %w", epoch, domain.ErrCancelled)
	}
	return commit()
}

// Subscribe returns a channel that receives the latest snapshot after every
// change. Slow readers only see the most recent value. cancel closes the channel.
func (s *Store) Subscribe() (<-chan domain.UserData, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	ch := make(chan domain.UserData, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// publish must be called with s.mu held.
func (s *Store) publish() {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.data.Clone()
	}
}

// apply validates next and swaps it in; an invalid snapshot is never observable.
func (s *Store) apply(next domain.UserData) error {
	if err := next.Validate(); err != nil {
		return fmt.Errorf("apply mutation: %w", err)
	}
	s.data = next
	s.publish()
	return nil
}

// TopUp adds amount to the transport card balance.
func (s *Store) TopUp(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("top up %s: %w", amount, domain.ErrInvalidAmount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.Clone()
	next.Transport.Balance = next.Transport.Balance.Add(amount)
	if err := s.apply(next); err != nil {
		return err
	}
	s.log.Info("transport topped up",
		zap.String("amount", amount.StringFixed(2)),
		zap.String("balance", next.Transport.Balance.StringFixed(2)),
	)
	return nil
}

// PayTaxes marks every listed unpaid tax as paid today and returns the ids
// that changed. Unknown and already paid ids are ignored.
func (s *Store) PayTaxes(ids ...int64) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := domain.Day(s.clock.Now())
	next := s.data.Clone()
	var paid []int64
	for i := range next.Taxes {
		t := &next.Taxes[i]
		if !slices.Contains(ids, t.ID) || t.Status == domain.TaxPaid {
			continue
		}
		d := today
		t.Status = domain.TaxPaid
		t.PaymentDate = &d
		paid = append(paid, t.ID)
	}
	if len(paid) == 0 {
		return nil
	}
	if err := s.apply(next); err != nil {
		s.log.Error("pay taxes rejected", zap.Error(err))
		return nil
	}
	s.log.Info("taxes paid", zap.Int64s("ids", paid))
	return paid
}

// PayUtility marks a billable utility as paid today. Paying an already paid
// utility is a no-op.
func (s *Store) PayUtility(name domain.UtilityName) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.Clone()
	i := utilityIndex(next.Utilities, name)
	if i < 0 {
		return fmt.Errorf("pay utility %q: %w", name, domain.ErrUtilityNotFound)
	}
	u := &next.Utilities[i]
	if !u.Billable() {
		return fmt.Errorf("pay utility %q: %w", name, domain.ErrNotBillable)
	}
	if u.Status == domain.UtilityPaid {
		return nil
	}
	today := domain.Day(s.clock.Now())
	u.Status = domain.UtilityPaid
	u.PaymentDate = &today
	if err := s.apply(next); err != nil {
		return err
	}
	s.log.Info("utility paid", zap.String("utility", string(name)))
	return nil
}

// ToggleAutoPay flips the auto-pay flag of the named utility and returns the
// new value.
func (s *Store) ToggleAutoPay(name domain.UtilityName) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.Clone()
	i := utilityIndex(next.Utilities, name)
	if i < 0 {
		return false, fmt.Errorf("toggle auto-pay %q: %w", name, domain.ErrUtilityNotFound)
	}
	next.Utilities[i].AutoPay = !next.Utilities[i].AutoPay
	on := next.Utilities[i].AutoPay
	if err := s.apply(next); err != nil {
		return false, err
	}
	s.log.Info("auto-pay toggled", zap.String("utility", string(name)), zap.Bool("enabled", on))
	return on, nil
}

func utilityIndex(us []domain.Utility, name domain.UtilityName) int {
	return slices.IndexFunc(us, func(u domain.Utility) bool { return u.Name == name })
}
