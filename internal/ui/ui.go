package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/message"

	"github.com/osse101/marketsync/internal/domain"
	"github.com/osse101/marketsync/internal/feed"
	"github.com/osse101/marketsync/internal/prefs"
)

const (
	defaultRefresh = time.Second
	nameWidth      = 48

	noticeConnect    = "Connect requested"
	noticeDisconnect = "Disconnected"
	noticeSuspend    = "Suspended, resume to reconnect"
	noticeResume     = "Resume requested"
	noticeTopicsFmt  = "Topics: %s"
	noticeNotSaved   = "Topics applied but not saved: %v"
	noticeTopicError = "Topics rejected: %v"
)

// Controller is the part of the coordinator the terminal drives.
type Controller interface {
	Connect()
	Disconnect()
	SuspendWithAutoRestore()
	Resume()
	SetTopics(topics domain.TopicSet) error
	Topics() domain.TopicSet
	Items() []domain.Item
	Status() feed.Status
}

// Options configures the UI.
type Options struct {
	Controller Controller
	Prefs      prefs.Prefs
	// Refresh is how often the status line is re-read. Zero means one second.
	Refresh time.Duration
}

// Model is the Bubble Tea model for the status screen.
type Model struct {
	ctrl    Controller
	keys    keyMap
	styles  styles
	printer *message.Printer
	maxRows int
	refresh time.Duration

	status    feed.Status
	items     []domain.Item
	alert     string
	notice    string
	updatedAt time.Time

	width    int
	showHelp bool
}

// New creates a model reading its initial state from opts.Controller.
func New(opts Options) Model {
	p := opts.Prefs
	if p.MaxRows <= 0 || p.PriceLocale == "" {
		d := prefs.Defaults()
		if p.MaxRows <= 0 {
			p.MaxRows = d.MaxRows
		}
		if p.PriceLocale == "" {
			p.PriceLocale = d.PriceLocale
		}
	}
	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = defaultRefresh
	}

	m := Model{
		ctrl:    opts.Controller,
		keys:    defaultKeyMap(),
		styles:  defaultStyles(),
		printer: newPrinter(p.PriceLocale),
		maxRows: p.MaxRows,
		refresh: refresh,
	}
	if m.ctrl != nil {
		m.status = m.ctrl.Status()
		m.items = m.ctrl.Items()
	}
	return m
}

// Messages

type itemsMsg []domain.Item

type connectionMsg struct {
	state    domain.ConnectionState
	previous domain.ConnectionState
}

type alertMsg string

type reachabilityMsg bool

type tickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.refresh)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case itemsMsg:
		m.items = []domain.Item(msg)
		m.status.ItemCount = len(msg)
		m.updatedAt = time.Now()
		return m, nil

	case connectionMsg:
		m.status.Connection = msg.state
		if msg.state == domain.Connected {
			m.alert = ""
		}
		return m, nil

	case alertMsg:
		m.alert = string(msg)
		return m, nil

	case reachabilityMsg:
		m.status.Reachable = bool(msg)
		return m, nil

	case tickMsg:
		m.refreshStatus()
		return m, tickCmd(m.refresh)
	}

	return m, nil
}

func (m *Model) refreshStatus() {
	if m.ctrl != nil {
		m.status = m.ctrl.Status()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case m.ctrl == nil:
		return m, nil
	case key.Matches(msg, m.keys.Connect):
		m.ctrl.Connect()
		m.notice = noticeConnect
	case key.Matches(msg, m.keys.Disconnect):
		m.ctrl.Disconnect()
		m.notice = noticeDisconnect
	case key.Matches(msg, m.keys.Suspend):
		m.ctrl.SuspendWithAutoRestore()
		m.notice = noticeSuspend
	case key.Matches(msg, m.keys.Resume):
		m.ctrl.Resume()
		m.notice = noticeResume
	case key.Matches(msg, m.keys.Topic):
		m.toggleTopic(msg.String())
	}
	m.refreshStatus()
	return m, nil
}

// toggleTopic flips the topic at the 1-based position named by k in
// domain.AllTopics.
func (m *Model) toggleTopic(k string) {
	idx := int(k[0] - '1')
	if idx < 0 || idx >= len(domain.AllTopics) {
		return
	}
	topic := domain.AllTopics[idx]

	current := m.ctrl.Topics()
	var next domain.TopicSet
	if current.Contains(topic) {
		next = current.Difference(domain.TopicSet{topic})
	} else {
		next = domain.NewTopicSet(append(append(domain.TopicSet{}, current...), topic)...)
	}

	err := m.ctrl.SetTopics(next)
	switch {
	case err == nil:
		m.notice = fmt.Sprintf(noticeTopicsFmt, topicList(next))
	case errors.Is(err, domain.ErrUnknownTopic):
		m.notice = fmt.Sprintf(noticeTopicError, err)
	default:
		m.notice = fmt.Sprintf(noticeNotSaved, err)
	}
}

func topicList(set domain.TopicSet) string {
	if len(set) == 0 {
		return "none"
	}
	return strings.Join(set.Strings(), ", ")
}

// View implements tea.Model.
func (m Model) View() string {
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("marketsync"))
	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	if m.alert != "" {
		b.WriteString(m.styles.Bad.Render("! " + m.alert))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(m.styles.Muted.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderItems())
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("? help  q quit"))
	return b.String()
}

func (m Model) renderStatus() string {
	s := m.styles
	conn := s.Warn
	switch m.status.Connection {
	case domain.Connected:
		conn = s.Good
	case domain.NotConnected, domain.Disconnected:
		conn = s.Bad
	}

	reach := s.Good.Render("online")
	if !m.status.Reachable {
		reach = s.Bad.Render("offline")
	}

	policy := policyLabel(m.status.Policy)
	if m.status.Dormant {
		policy += " (dormant)"
	}

	lines := []string{
		s.Label.Render("Connection ") + conn.Render(m.status.Connection.String()),
		s.Label.Render("Policy     ") + policy,
		s.Label.Render("Network    ") + reach,
		s.Label.Render("Topics     ") + strings.Join(m.topicChips(), " "),
		s.Label.Render("Items      ") + fmt.Sprintf("%d", m.status.ItemCount),
	}
	if m.status.DecodeFailures > 0 {
		lines = append(lines, s.Label.Render("Bad events ")+s.Warn.Render(fmt.Sprintf("%d", m.status.DecodeFailures)))
	}
	return strings.Join(lines, "\n") + "\n"
}

// topicChips renders every known topic with its toggle key, highlighting the
// desired ones.
func (m Model) topicChips() []string {
	desired := domain.NewTopicSet()
	for _, t := range m.status.Topics {
		desired = append(desired, domain.Topic(t))
	}
	chips := make([]string, 0, len(domain.AllTopics))
	for i, t := range domain.AllTopics {
		label := fmt.Sprintf("%d:%s", i+1, t)
		if desired.Contains(t) {
			chips = append(chips, m.styles.Good.Render("["+label+"]"))
		} else {
			chips = append(chips, m.styles.Muted.Render(" "+label+" "))
		}
	}
	return chips
}

func (m Model) renderItems() string {
	if len(m.items) == 0 {
		return m.styles.Muted.Render("No items yet") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.styles.Header.Render(fmt.Sprintf("%-8s %-*s %12s", "Game", nameWidth, "Item", "Price")))
	b.WriteString("\n")

	rows := m.items
	if len(rows) > m.maxRows {
		rows = rows[:m.maxRows]
	}
	for _, it := range rows {
		b.WriteString(fmt.Sprintf("%-8s %-*s ", truncate(it.Category, 8), nameWidth, truncate(it.DisplayName, nameWidth)))
		b.WriteString(m.styles.Price.Render(fmt.Sprintf("%12s", formatPrice(m.printer, it.Price))))
		b.WriteString("\n")
	}
	if hidden := len(m.items) - len(rows); hidden > 0 {
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("… %d more", hidden)))
		b.WriteString("\n")
	}
	if !m.updatedAt.IsZero() {
		b.WriteString(m.styles.Muted.Render("updated " + m.updatedAt.Format("15:04:05")))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHelp() string {
	var rows []string
	rows = append(rows, m.styles.Title.Render("Keys"), "")
	for _, b := range m.keys.helpBindings() {
		h := b.Help()
		rows = append(rows, m.styles.KeyHint.Render(fmt.Sprintf("%-6s", h.Key))+" "+h.Desc)
	}
	rows = append(rows, "", m.styles.Muted.Render("any key to close"))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
