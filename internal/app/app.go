// Package app contains the root application model.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/caseview/internal/config"
	"github.com/zjrosen/caseview/internal/contentview"
	"github.com/zjrosen/caseview/internal/flags"
	"github.com/zjrosen/caseview/internal/keys"
	"github.com/zjrosen/caseview/internal/log"
	"github.com/zjrosen/caseview/internal/pubsub"
	"github.com/zjrosen/caseview/internal/ui/shared/logoverlay"
	"github.com/zjrosen/caseview/internal/ui/styles"
	"github.com/zjrosen/caseview/internal/ui/toaster"
	"github.com/zjrosen/caseview/internal/ui/tree"
	"github.com/zjrosen/caseview/internal/watcher"
)

// Invalidator drops cached content after the case changed on disk.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Options wires the application to an open case.
type Options struct {
	Config   config.Config
	Flags    *flags.Registry
	Registry *contentview.Registry
	Loader   tree.Loader
	// Source is optional.
	Source Invalidator
	// Busy must be the counter handed to the registry's coordinators.
	Busy     *Busy
	CaseName string
	// DBPath is watched for changes when auto refresh is on.
	DBPath string
	Debug  bool
}

// Model is the root application state.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg      config.Config
	flags    *flags.Registry
	registry *contentview.Registry
	source   Invalidator
	busy     *Busy
	caseName string

	tree    *tree.Model
	loadErr error

	// windows[0] is the primary; shown indexes the window on screen.
	windows []*window
	shown   int

	keys    keys.KeyMap
	help    help.Model
	spinner spinner.Model
	width   int
	height  int

	toaster       toaster.Model
	toastDuration time.Duration

	debugMode   bool
	logOverlay  logoverlay.Model
	logListener *log.LogListener

	selections        *pubsub.Broker[contentview.Node]
	selectionListener *pubsub.ContinuousListener[contentview.Node]
	windowListener    *pubsub.ContinuousListener[contentview.InstanceEvent]

	watcherHandle   *watcher.Watcher
	changes         *pubsub.Broker[watcher.Change]
	watcherListener *pubsub.ContinuousListener[watcher.Change]
}

// New creates the application model and loads the case tree. The current
// tree selection is published so the primary window opens showing it.
func New(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())

	busy := opts.Busy
	if busy == nil {
		busy = NewBusy()
	}
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = lipgloss.NewStyle().Foreground(styles.SpinnerColor)

	m := Model{
		ctx:           ctx,
		cancel:        cancel,
		cfg:           opts.Config,
		flags:         opts.Flags,
		registry:      opts.Registry,
		source:        opts.Source,
		busy:          busy,
		caseName:      opts.CaseName,
		tree:          tree.New(opts.Loader),
		keys:          keys.DefaultKeyMap(),
		help:          help.New(),
		spinner:       sp,
		toaster:       toaster.New(),
		toastDuration: toaster.DefaultDuration,
		debugMode:     opts.Debug,
		logOverlay:    logoverlay.New(logoverlay.DefaultCapacity),
		selections:    pubsub.NewBroker[contentview.Node](),
	}
	m.windows = []*window{newWindow(opts.Registry.Default())}

	if opts.Debug {
		m.logListener = log.NewListener(ctx)
	}
	m.selectionListener = pubsub.NewContinuousListener(ctx, m.selections)
	m.windowListener = pubsub.NewContinuousListener(ctx, opts.Registry.Events())

	if opts.Config.AutoRefresh && opts.DBPath != "" {
		m.startWatcher(opts.DBPath)
	}

	if err := m.tree.Load(); err != nil {
		m.loadErr = err
	}
	m.publishSelection()
	return m
}

func (m *Model) startWatcher(dbPath string) {
	changes := pubsub.NewBroker[watcher.Change]()
	cfg := watcher.DefaultConfig(dbPath)
	cfg.Publisher = changes

	w, err := watcher.New(cfg)
	if err != nil {
		log.ErrorErr(log.CatWatcher, "Auto refresh disabled", err)
		return
	}
	if _, err := w.Start(); err != nil {
		log.ErrorErr(log.CatWatcher, "Auto refresh disabled", err)
		_ = w.Stop()
		return
	}
	m.watcherHandle = w
	m.changes = changes
	m.watcherListener = pubsub.NewContinuousListener(m.ctx, changes)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.selectionListener.ListenLatest(),
		m.windowListener.Listen(),
		m.watcherListener.Listen(),
		m.logListener.Listen(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.logOverlay.SetSize(msg.Width, msg.Height)
		m.layout()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case log.LogEvent:
		m.logOverlay.Append(msg.Payload)
		return m, m.logListener.Listen()

	case pubsub.Event[contentview.Node]:
		cmd := m.enqueue(m.windows[0], op{kind: opSelect, node: msg.Payload})
		return m, tea.Batch(cmd, m.selectionListener.ListenLatest())

	case pubsub.Event[contentview.InstanceEvent]:
		switch msg.Type {
		case pubsub.OpenedEvent:
			m.addWindow(msg.Payload.Coordinator)
		case pubsub.ClosedEvent:
			m.removeWindow(msg.Payload.Coordinator)
		}
		return m, m.windowListener.Listen()

	case pubsub.Event[watcher.Change]:
		log.Info(log.CatWatcher, "Reloading case", "events", msg.Payload.Events)
		cmd := m.reload()
		return m, tea.Batch(cmd, m.watcherListener.Listen())

	case opDoneMsg:
		i := m.findWindow(msg.coord)
		if i < 0 {
			// Closed while the op ran.
			return m, nil
		}
		cmd := m.finish(m.windows[i], msg)
		if msg.err != nil {
			return m, tea.Batch(cmd, m.opFailed(msg.kind, msg.err))
		}
		return m, cmd

	case windowOpenedMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatUI, "Opening window", msg.err)
			return m, m.toast("Could not open window: "+msg.err.Error(), toaster.StyleError)
		}
		i := m.addWindow(msg.coord)
		m.windows[i].snap = msg.snap
		m.shown = i
		return m, nil

	case windowClosedMsg:
		m.removeWindow(msg.coord)
		if msg.err != nil {
			log.ErrorErr(log.CatUI, "Closing window", msg.err, "window", msg.coord.Label())
			return m, m.toast("Window closed with errors", toaster.StyleWarn)
		}
		return m, m.toast("Closed "+msg.coord.Label(), toaster.StyleInfo)

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case logoverlay.CloseMsg:
		m.logOverlay.Hide()
		return m, nil

	case tea.MouseMsg:
		if m.logOverlay.Visible() {
			return m, nil
		}
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		if m.debugMode && key.Matches(msg, m.keys.Logs) {
			m.logOverlay.Toggle()
			return m, nil
		}
		if m.logOverlay.Visible() {
			var cmd tea.Cmd
			m.logOverlay, cmd = m.logOverlay.Update(msg)
			return m, cmd
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.tree.MoveCursor(-1) {
			m.publishSelection()
		}

	case key.Matches(msg, m.keys.Down):
		if m.tree.MoveCursor(1) {
			m.publishSelection()
		}

	case key.Matches(msg, m.keys.Expand):
		moved, err := m.tree.Expand()
		if err != nil {
			return m, m.toast("Could not expand: "+err.Error(), toaster.StyleError)
		}
		if moved {
			m.publishSelection()
		}

	case key.Matches(msg, m.keys.Collapse):
		if m.tree.Collapse() {
			m.publishSelection()
		}

	case key.Matches(msg, m.keys.NextTab):
		return m, m.cycleTab(1)

	case key.Matches(msg, m.keys.PrevTab):
		return m, m.cycleTab(-1)

	case key.Matches(msg, m.keys.OpenWindow):
		return m, m.openWindow()

	case key.Matches(msg, m.keys.CycleWindow):
		if len(m.windows) > 1 {
			m.shown = (m.shown + 1) % len(m.windows)
		}

	case key.Matches(msg, m.keys.CloseWindow):
		return m, m.closeWindow()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.reload()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	w := m.shownWindow()
	if w == nil {
		return nil
	}
	for i := range w.snap.tabs {
		if z := zone.Get(tabZoneID(i)); z != nil && z.InBounds(msg) {
			return m.activateTab(w, i)
		}
	}
	return nil
}

// publishSelection announces the tree selection; the primary window picks
// it up through its listener.
func (m *Model) publishSelection() {
	if c := m.tree.Selected(); c != nil {
		m.selections.Publish(pubsub.SelectedEvent, c)
		return
	}
	m.selections.Publish(pubsub.SelectedEvent, nil)
}

func (m *Model) cycleTab(dir int) tea.Cmd {
	w := m.shownWindow()
	if w == nil || w.closed {
		return nil
	}
	i, ok := w.snap.nextEnabled(dir)
	if !ok {
		return nil
	}
	return m.activateTab(w, i)
}

func (m *Model) activateTab(w *window, i int) tea.Cmd {
	if i < len(w.snap.tabs) && !w.snap.tabs[i].enabled {
		return m.toast(w.snap.tabs[i].title+" cannot show this item", toaster.StyleWarn)
	}
	// Shown at once; the op confirms it.
	w.snap.active, w.snap.hasActive = i, true
	return m.enqueue(w, op{kind: opTab, tab: i})
}

func (m *Model) openWindow() tea.Cmd {
	if !m.flags.Enabled(flags.FlagSecondaryWindows) {
		return m.toast("Secondary windows are disabled", toaster.StyleWarn)
	}
	c := m.tree.Selected()
	if c == nil {
		return m.toast("Nothing selected", toaster.StyleWarn)
	}
	return openSecondary(m.ctx, m.registry, c.Name(), c)
}

func (m *Model) closeWindow() tea.Cmd {
	w := m.shownWindow()
	if w == nil {
		return nil
	}
	if !w.coord.IsPrimary() {
		return closeSecondary(m.ctx, m.registry, w.coord)
	}
	if m.flags.Enabled(flags.FlagCloseGuard) && !m.registry.CanClose(w.coord) {
		log.Info(log.CatUI, "Refused to close primary window")
		return m.toast("The content window stays open while the case has data sources", toaster.StyleWarn)
	}
	return m.enqueue(w, op{kind: opClose})
}

// reload drops cached content, re-reads the tree and shows every window's
// node again with fresh data.
func (m *Model) reload() tea.Cmd {
	if m.source != nil {
		if err := m.source.Invalidate(m.ctx); err != nil {
			log.ErrorErr(log.CatCache, "Invalidating content cache", err)
		}
	}
	if err := m.tree.Load(); err != nil {
		m.loadErr = err
		return m.toast("Reloading case failed", toaster.StyleError)
	}
	m.loadErr = nil

	var cmds []tea.Cmd
	if !m.windows[0].closed {
		m.publishSelection()
	}
	for _, w := range m.windows[1:] {
		cmds = append(cmds, m.enqueue(w, op{kind: opSelect, node: w.node}))
	}
	return tea.Batch(cmds...)
}

func (m *Model) opFailed(kind opKind, err error) tea.Cmd {
	if errors.Is(err, contentview.ErrSlotDisabled) {
		return m.toast("Viewer cannot show this item", toaster.StyleWarn)
	}
	log.ErrorErr(log.CatUI, "Viewer operation failed", err, "op", kind)
	return m.toast(fmt.Sprintf("Viewer error: %v", err), toaster.StyleError)
}

func (m *Model) toast(message string, style toaster.Style) tea.Cmd {
	var cmd tea.Cmd
	m.toaster, cmd = m.toaster.Show(message, style, m.toastDuration)
	return cmd
}

// Close releases the viewers of every window and stops background work.
func (m *Model) Close() error {
	var errs []error
	for _, w := range m.windows {
		if err := w.coord.Close(context.Background()); err != nil {
			errs = append(errs, err)
		}
	}
	m.cancel()
	if m.watcherHandle != nil {
		errs = append(errs, m.watcherHandle.Stop())
		m.changes.Close()
	}
	m.selections.Close()
	m.registry.Shutdown()
	return errors.Join(errs...)
}
