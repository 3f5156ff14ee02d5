package kiosk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/roach88/qrorder/internal/catalog"
	"github.com/roach88/qrorder/internal/order"
)

// Option configures a Model.
type Option func(*config)

type config struct {
	scheduler   order.Scheduler
	sessionOpts []order.Option
	theme       Theme
	keys        KeyMap
}

// WithScheduler replaces the program-backed timer scheduler. Tests pass a
// manual scheduler and drive time themselves.
func WithScheduler(s order.Scheduler) Option {
	return func(c *config) {
		c.scheduler = s
	}
}

// WithSessionOptions forwards options to order.NewSession.
func WithSessionOptions(opts ...order.Option) Option {
	return func(c *config) {
		c.sessionOpts = append(c.sessionOpts, opts...)
	}
}

// WithTheme sets the colour palette.
func WithTheme(t Theme) Option {
	return func(c *config) {
		c.theme = t
	}
}

// WithKeyMap sets the key bindings.
func WithKeyMap(k KeyMap) Option {
	return func(c *config) {
		c.keys = k
	}
}

// Model implements tea.Model for one kiosk session.
type Model struct {
	session *order.Session
	catalog *catalog.Catalog
	items   []catalog.Item

	// program is set when the model uses the default scheduler.
	program *programScheduler
	feed    *feed

	keys   KeyMap
	theme  Theme
	cursor int
	width  int
}

// New builds a kiosk over cat with a fresh session.
func New(cat *catalog.Catalog, opts ...Option) Model {
	cfg := config{theme: DefaultTheme, keys: DefaultKeyMap}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := Model{
		catalog: cat,
		items:   cat.Items(),
		feed:    newFeed(cat),
		keys:    cfg.keys,
		theme:   cfg.theme,
	}
	scheduler := cfg.scheduler
	if scheduler == nil {
		m.program = &programScheduler{}
		scheduler = m.program
	}

	sessionOpts := append([]order.Option{order.WithNotifier(m.feed)}, cfg.sessionOpts...)
	m.session = order.NewSession(cat, scheduler, sessionOpts...)
	return m
}

// Session exposes the underlying session for inspection.
func (m Model) Session() *order.Session {
	return m.session
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fireMsg:
		msg.fire()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.feed.err = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Add):
		m.report(m.session.Add(m.selected().ID, 1))
	case key.Matches(msg, m.keys.Decrement):
		m.report(m.session.Decrement(m.selected().ID))
	case key.Matches(msg, m.keys.Remove):
		m.report(m.session.Remove(m.selected().ID))
	case key.Matches(msg, m.keys.Clear):
		m.session.Clear()
	case key.Matches(msg, m.keys.Commit):
		_, err := m.session.Commit()
		m.report(err)
	case key.Matches(msg, m.keys.Restart):
		m.session.Restart()
	}
	return m, nil
}

func (m Model) selected() catalog.Item {
	return m.items[m.cursor]
}

// report turns a session error into the message shown under the cart.
func (m Model) report(err error) {
	if err == nil {
		return
	}
	var oe *order.Error
	if !errors.As(err, &oe) {
		m.feed.err = err.Error()
		return
	}
	switch oe.Code {
	case order.CodeItemUnavailable:
		m.feed.err = "Sorry, that item just sold out."
	case order.CodeEmptyCart:
		m.feed.err = "Add something to the cart first."
	case order.CodeNotFound:
		m.feed.err = "That item is not in the cart."
	default:
		m.feed.err = oe.Message
	}
}

// Run starts an interactive program for m and blocks until the user quits
// or ctx is cancelled.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	program := tea.NewProgram(m, opts...)
	if m.program != nil {
		m.program.attach(program.Send)
	}
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// feed turns session events into the one-line notice at the bottom of the
// screen. It is shared by every copy of the Model.
type feed struct {
	catalog *catalog.Catalog
	notice  string
	err     string
}

func newFeed(cat *catalog.Catalog) *feed {
	return &feed{catalog: cat}
}

func (f *feed) Notify(e order.Event) {
	switch e.Type {
	case order.EventAdded, order.EventDecremented:
		f.notice = fmt.Sprintf("%s: %d in cart", f.name(e.ItemID), e.Quantity)
	case order.EventRemoved:
		f.notice = fmt.Sprintf("%s removed", f.name(e.ItemID))
	case order.EventCleared:
		f.notice = "Cart emptied"
	case order.EventCommitted:
		f.notice = "Order ready. Show the code to staff."
	case order.EventInvalidated:
		if e.Cause == order.CauseItemsUnavailable {
			f.notice = "Your order code is void: some items sold out."
		} else {
			f.notice = "Your order code is void because the cart changed."
		}
	case order.EventStockOut:
		f.notice = "Sold out: " + strings.Join(e.ItemNames, ", ")
	case order.EventRestarted:
		f.notice = "Welcome! Pick something from the menu."
	}
}

func (f *feed) name(id string) string {
	return f.catalog.Names([]string{id})[0]
}
