// Package order implements the order-commitment state machine.
//
// A Session owns one cart, one availability set and at most one commitment.
// Committing a non-empty cart yields an opaque redemption token and arms a
// single stock-out timer. Any cart edit while the commitment is Pending
// invalidates it with CauseCartChanged; a stock-out that touches the cart
// invalidates it with CauseItemsUnavailable.
//
// Thread-safety model:
//   - Session is single-writer and NOT safe for concurrent use
//   - the Scheduler must deliver timer callbacks on the owning goroutine
//     (engine.Engine enqueues them; testutil.ManualScheduler runs them inline
//     on Advance)
//
// INVARIANTS:
//   - a live timer exists iff the commitment is Pending
//   - a snapshot never changes after Commit
//   - an invalidated commitment has exactly one cause, set once
//   - an item in the availability set cannot be added
package order

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/qrorder/internal/catalog"
)

// DefaultStockOutDelay is how long after a commit the simulated stock-out fires.
const DefaultStockOutDelay = 10 * time.Second

// maxTokenAttempts bounds retries when the generator repeats a used token.
const maxTokenAttempts = 8

// Session is one customer's ordering session.
type Session struct {
	catalog   *catalog.Catalog
	scheduler Scheduler
	selector  Selector
	tokens    TokenGenerator
	notifiers Notifiers
	clock     Sequencer
	delay     time.Duration
	logger    *slog.Logger

	cart        Cart
	unavailable Availability
	commitment  *Commitment // nil means StatusNone
	timer       Timer       // non-nil iff commitment is Pending
	generation  uint64      // bumped by every Commit; guards stale fires
	issued      map[string]struct{}
}

// Option configures a Session.
type Option func(*Session)

// WithSelector sets the stock-out selection strategy.
//
// Default: RandomSelector capped at DefaultMaxPicks.
func WithSelector(sel Selector) Option {
	return func(s *Session) {
		s.selector = sel
	}
}

// WithTokenGenerator sets the redemption token source.
//
// Default: RandomTokens.
func WithTokenGenerator(gen TokenGenerator) Option {
	return func(s *Session) {
		s.tokens = gen
	}
}

// WithNotifier registers a notifier. May be repeated; notifiers are called
// in registration order.
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		s.notifiers = append(s.notifiers, n)
	}
}

// WithStockOutDelay sets the delay between Commit and the simulated stock-out.
//
// Default: 10s (DefaultStockOutDelay).
func WithStockOutDelay(d time.Duration) Option {
	return func(s *Session) {
		s.delay = d
	}
}

// WithClock sets the source of event sequence numbers.
func WithClock(c Sequencer) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// NewSession creates an empty session over cat. Timer callbacks are armed
// through scheduler.
//
// Panics if cat or scheduler is nil.
func NewSession(cat *catalog.Catalog, scheduler Scheduler, opts ...Option) *Session {
	if cat == nil || scheduler == nil {
		panic("order: NewSession requires a catalog and a scheduler")
	}
	s := &Session{
		catalog:   cat,
		scheduler: scheduler,
		selector:  NewRandomSelector(DefaultMaxPicks, nil),
		tokens:    RandomTokens{},
		clock:     NewClock(),
		delay:     DefaultStockOutDelay,
		logger:    slog.Default(),
		issued:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalog the session sells from.
func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// Add puts qty units of itemID in the cart.
//
// Fails with CodeInvalidArgument for qty <= 0 or an unknown id, and also when
// the line would go past MaxLineQuantity. A sold-out item fails with
// CodeItemUnavailable. A Pending commitment is
// invalidated before the line changes.
func (s *Session) Add(itemID string, qty int) error {
	if qty <= 0 {
		return s.reject(newError(CodeInvalidArgument, itemID, "quantity must be positive, got %d", qty))
	}
	item, ok := s.catalog.Item(itemID)
	if !ok {
		return s.reject(unknownItem(itemID))
	}
	if s.unavailable.Has(itemID) {
		return s.reject(newError(CodeItemUnavailable, itemID, "%s is sold out", item.Name))
	}
	if have := s.cart.Quantity(itemID); qty > MaxLineQuantity-have {
		return s.reject(newError(CodeInvalidArgument, itemID,
			"quantity would exceed %d (have %d, adding %d)", MaxLineQuantity, have, qty))
	}

	s.invalidate(CauseCartChanged)
	n := s.cart.add(item, qty)
	s.emit(Event{Type: EventAdded, ItemID: itemID, Quantity: n})
	return nil
}

// Decrement removes one unit of itemID, deleting the line at zero.
//
// Fails with CodeInvalidArgument for an unknown id and CodeNotFound when the
// item has no line.
func (s *Session) Decrement(itemID string) error {
	if !s.catalog.Has(itemID) {
		return s.reject(unknownItem(itemID))
	}
	if !s.cart.Contains(itemID) {
		return s.reject(newError(CodeNotFound, itemID, "item is not in the cart"))
	}

	s.invalidate(CauseCartChanged)
	remaining, _ := s.cart.decrement(itemID)
	s.emit(Event{Type: EventDecremented, ItemID: itemID, Quantity: remaining})
	return nil
}

// Remove deletes the line for itemID. Removing an absent line still counts as
// a cart edit.
func (s *Session) Remove(itemID string) error {
	if !s.catalog.Has(itemID) {
		return s.reject(unknownItem(itemID))
	}

	s.invalidate(CauseCartChanged)
	s.cart.remove(itemID)
	s.emit(Event{Type: EventRemoved, ItemID: itemID})
	return nil
}

// Clear empties the cart and the availability set. The commitment, if any,
// stays in place (invalidated if it was Pending).
func (s *Session) Clear() {
	s.invalidate(CauseCartChanged)
	s.cart.clear()
	s.unavailable.reset()
	s.emit(Event{Type: EventCleared})
}

// Restart starts selection over: the commitment is discarded, and the cart and
// availability set are emptied.
func (s *Session) Restart() {
	s.disarm()
	s.commitment = nil
	s.cart.clear()
	s.unavailable.reset()
	s.emit(Event{Type: EventRestarted})
}

// Commit snapshots the cart under a fresh token and arms the stock-out timer.
// Any previous commitment and its timer are discarded.
//
// Fails with CodeEmptyCart when the cart is empty and CodeTokenExhausted when
// the generator keeps returning used tokens. On failure nothing changes.
func (s *Session) Commit() (Commitment, error) {
	if s.cart.IsEmpty() {
		return Commitment{}, s.reject(newError(CodeEmptyCart, "", "cannot commit an empty cart"))
	}
	token, err := s.newToken()
	if err != nil {
		return Commitment{}, s.reject(err)
	}

	s.disarm()
	s.generation++
	gen := s.generation
	s.commitment = &Commitment{
		Token:    token,
		Snapshot: s.cart.Clone(),
		Status:   StatusPending,
		Cause:    CauseNone,
	}
	s.timer = s.scheduler.Schedule(s.delay, func() { s.fire(gen) })

	s.logger.Info("order committed",
		"token", token,
		"items", s.cart.Count(),
		"total", s.cart.Total(),
		"delay", s.delay,
	)
	s.emit(Event{Type: EventCommitted, Token: token})
	return s.commitment.clone(), nil
}

// MarkUnavailable adds ids to the availability set.
//
// If the commitment is Pending and any id is in the cart, it is invalidated
// with CauseItemsUnavailable. Matching lines are removed from the cart in
// every case. Fails with CodeInvalidArgument, changing nothing, if any id is
// unknown.
func (s *Session) MarkUnavailable(ids ...string) error {
	for _, id := range ids {
		if !s.catalog.Has(id) {
			return s.reject(unknownItem(id))
		}
	}
	s.markUnavailable(dedupe(ids), false)
	return nil
}

// IsUnavailable reports whether itemID is sold out.
func (s *Session) IsUnavailable(itemID string) bool {
	return s.unavailable.Has(itemID)
}

// Unavailable returns the sold-out ids, sorted.
func (s *Session) Unavailable() []string {
	return s.unavailable.IDs()
}

// Cart returns a copy of the live cart.
func (s *Session) Cart() Cart {
	return s.cart.Clone()
}

// Count returns the number of units in the cart.
func (s *Session) Count() int {
	return s.cart.Count()
}

// Total returns the cart total in minor units.
func (s *Session) Total() int64 {
	return s.cart.Total()
}

// Commitment returns a copy of the current commitment. The boolean is false
// when there is none, in which case the returned value has StatusNone.
func (s *Session) Commitment() (Commitment, bool) {
	if s.commitment == nil {
		return Commitment{Status: StatusNone, Cause: CauseNone}, false
	}
	return s.commitment.clone(), true
}

// Status returns the current commitment status.
func (s *Session) Status() Status {
	if s.commitment == nil {
		return StatusNone
	}
	return s.commitment.Status
}

// Verify reports whether token belongs to the current Pending commitment.
// It is a read-only staff check and changes nothing.
func (s *Session) Verify(token string) bool {
	return token != "" &&
		s.commitment != nil &&
		s.commitment.Status == StatusPending &&
		s.commitment.Token == token
}

// LiveTimers returns how many stock-out timers are armed: 0 or 1.
func (s *Session) LiveTimers() int {
	if s.timer != nil {
		return 1
	}
	return 0
}

// View is a render-time snapshot of a session.
type View struct {
	Cart          Cart
	Commitment    Commitment
	HasCommitment bool
	Unavailable   []string
}

// View returns a consistent copy of everything a front-end renders.
func (s *Session) View() View {
	c, ok := s.Commitment()
	return View{
		Cart:          s.Cart(),
		Commitment:    c,
		HasCommitment: ok,
		Unavailable:   s.Unavailable(),
	}
}

// fire runs the simulated stock-out for the commitment of generation gen.
func (s *Session) fire(gen uint64) {
	if gen != s.generation || s.commitment == nil || s.commitment.Status != StatusPending {
		s.logger.Debug("stale stock-out timer ignored",
			"generation", gen,
			"current", s.generation,
			"status", s.Status(),
		)
		return
	}
	s.timer = nil

	candidates := s.commitment.Snapshot.IDs()
	slices.Sort(candidates)
	picked := sanitize(s.selector.Select(slices.Clone(candidates)), candidates)

	s.logger.Info("simulated stock-out",
		"token", s.commitment.Token,
		"items", picked,
	)
	s.markUnavailable(picked, true)
}

// markUnavailable applies a stock-out. fromTimer forces invalidation of the
// Pending commitment even if the cart no longer holds any picked item.
func (s *Session) markUnavailable(ids []string, fromTimer bool) {
	added := s.unavailable.mark(ids)

	affects := fromTimer || slices.ContainsFunc(ids, s.cart.Contains)
	if affects {
		s.invalidate(CauseItemsUnavailable)
	}

	removed := s.cart.removeAll(ids)
	if s.commitment != nil {
		for _, id := range ids {
			if s.commitment.Snapshot.Contains(id) && !slices.Contains(s.commitment.Withdrawn, id) {
				s.commitment.Withdrawn = append(s.commitment.Withdrawn, id)
			}
		}
	}

	if len(added) == 0 && len(removed) == 0 {
		return
	}
	s.emit(Event{
		Type:      EventStockOut,
		ItemIDs:   slices.Clone(ids),
		ItemNames: s.catalog.Names(ids),
	})
}

// invalidate moves a Pending commitment to Invalidated. It is a no-op in any
// other state.
func (s *Session) invalidate(cause Cause) {
	if s.commitment == nil || s.commitment.Status != StatusPending {
		return
	}
	s.disarm()
	s.commitment.Status = StatusInvalidated
	s.commitment.Cause = cause

	s.logger.Info("commitment invalidated",
		"token", s.commitment.Token,
		"cause", cause,
	)
	s.emit(Event{Type: EventInvalidated, Token: s.commitment.Token, Cause: cause})
}

// disarm cancels the outstanding timer, if any.
func (s *Session) disarm() {
	if s.timer == nil {
		return
	}
	if !s.timer.Stop() {
		s.logger.Debug("stock-out timer already fired; its callback will be ignored")
	}
	s.timer = nil
}

func (s *Session) newToken() (string, error) {
	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		token := s.tokens.Generate()
		if token == "" {
			continue
		}
		if _, used := s.issued[token]; used {
			s.logger.Debug("token collision, retrying", "attempt", attempt)
			continue
		}
		s.issued[token] = struct{}{}
		return token, nil
	}
	return "", newError(CodeTokenExhausted, "", "no unique token after %d attempts", maxTokenAttempts)
}

func (s *Session) emit(e Event) {
	e.Seq = s.clock.Next()
	s.notifiers.Notify(e)
}

func (s *Session) reject(err *Error) error {
	s.logger.Debug("operation rejected",
		"code", err.Code,
		"item", err.ItemID,
		"message", err.Message,
	)
	s.emit(Event{Type: EventRejected, ItemID: err.ItemID, Code: err.Code})
	return err
}

func unknownItem(itemID string) *Error {
	return newError(CodeInvalidArgument, itemID, "unknown item %q", itemID)
}

// sanitize keeps the members of candidates that the selector picked, without
// duplicates, in candidate order. An empty result falls back to the first
// candidate so a stock-out always takes something.
func sanitize(picked, candidates []string) []string {
	var out []string
	for _, id := range candidates {
		if slices.Contains(picked, id) {
			out = append(out, id)
		}
	}
	if len(out) == 0 && len(candidates) > 0 {
		out = []string{candidates[0]}
	}
	return out
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// String summarizes the session state for logs.
func (s *Session) String() string {
	return fmt.Sprintf("session{status=%s lines=%d count=%d unavailable=%d}",
		s.Status(), s.cart.Len(), s.cart.Count(), s.unavailable.Len())
}
