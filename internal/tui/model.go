// Package tui is the terminal rendition of the dashboard served over SSH.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cryptopulse/internal/chat"
	"cryptopulse/internal/domain"
	"cryptopulse/internal/format"
	"cryptopulse/internal/render"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Data is the dashboard's read side.
type Data interface {
	Ticker() (domain.AssetList, bool)
	Market() (domain.MarketSnapshot, bool)
	Sentiment() (domain.SentimentReading, bool)
	Movers() (domain.Movers, bool)
	News() (domain.NewsFeed, bool)
}

type ThemeStore interface {
	Mode() domain.ThemeMode
	Toggle(ctx context.Context) (domain.ThemeMode, error)
}

type Services struct {
	Data      Data
	Theme     ThemeStore
	Chat      *chat.Bot
	TickerIDs []string
	Username  string
}

const (
	refreshEvery = 5 * time.Second
	chatTimeout  = 5 * time.Second
	chatLines    = 6
	newsItems    = 8
)

type focus int

const (
	focusDashboard focus = iota
	focusChat
)

type tickMsg time.Time

type themeMsg struct {
	mode domain.ThemeMode
	err  error
}

type chatMsg struct {
	user  chat.Message
	reply chat.Message
	err   error
}

func tickEvery() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type AppModel struct {
	svc        Services
	width      int
	height     int
	focus      focus
	mode       domain.ThemeMode
	styles     styles
	input      textinput.Model
	viewport   viewport.Model
	transcript *chat.Transcript
	status     string
	now        func() time.Time
}

func NewAppModel(svc Services) *AppModel {
	mode := domain.ThemeLight
	if svc.Theme != nil {
		mode = svc.Theme.Mode()
	}
	in := textinput.New()
	in.Placeholder = "Type a message..."
	in.CharLimit = 280
	in.Prompt = "> "

	m := &AppModel{
		svc:        svc,
		mode:       mode,
		styles:     newStyles(mode),
		input:      in,
		viewport:   viewport.New(80, 20),
		transcript: chat.NewTranscript(50),
		now:        time.Now,
	}
	m.refresh()
	return m
}

// SetSize resizes the layout to the terminal.
func (m *AppModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-2-chatLines, 3)
	m.input.Width = max(width-4, 10)
	m.refresh()
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(tickEvery(), textinput.Blink)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tickEvery()

	case themeMsg:
		if msg.err != nil {
			m.status = "Theme not saved: " + msg.err.Error()
			return m, nil
		}
		m.mode = msg.mode
		m.styles = newStyles(msg.mode)
		m.status = ""
		m.refresh()
		return m, nil

	case chatMsg:
		if msg.err != nil {
			m.status = "Chat: " + msg.err.Error()
			return m, nil
		}
		m.transcript.Append(msg.user, msg.reply)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.focus == focusChat {
			return m.updateChat(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "t":
			return m, m.toggleTheme()
		case "c", "/":
			m.focus = focusChat
			return m, m.input.Focus()
		case "r":
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *AppModel) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = focusDashboard
		m.input.Blur()
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if text == "" {
			return m, nil
		}
		return m, m.send(text)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *AppModel) toggleTheme() tea.Cmd {
	store := m.svc.Theme
	if store == nil {
		return func() tea.Msg { return themeMsg{mode: m.mode.Toggle()} }
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		mode, err := store.Toggle(ctx)
		return themeMsg{mode: mode, err: err}
	}
}

func (m *AppModel) send(text string) tea.Cmd {
	bot := m.svc.Chat
	if bot == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		defer cancel()
		user, reply, err := bot.Respond(ctx, text)
		return chatMsg{user: user, reply: reply, err: err}
	}
}

// refresh rebuilds the scrollable body from the dashboard's latest data.
func (m *AppModel) refresh() {
	m.viewport.SetContent(m.renderBody())
}

func (m *AppModel) View() string {
	if m.width == 0 {
		return render.LoadingText
	}
	who := ""
	if m.svc.Username != "" {
		who = "  " + m.svc.Username
	}
	header := m.styles.header.Width(m.width).MaxWidth(m.width).Render(
		fmt.Sprintf(" CryptoPulse%s  %s  %s ", who, m.now().Format("15:04:05"), m.mode))

	help := " q quit  t theme  c chat  r refresh  up/dn scroll"
	if m.focus == focusChat {
		help = " enter send  esc back"
	}
	if m.status != "" {
		help += "  |  " + m.status
	}
	footer := m.styles.footer.Width(m.width).MaxWidth(m.width).Render(help)

	return header + "\n" + m.viewport.View() + "\n" + m.renderChat() + "\n" + footer
}

func (m *AppModel) renderBody() string {
	if m.svc.Data == nil {
		return ""
	}
	var b strings.Builder
	s := m.styles

	b.WriteString(s.section.Render("Ticker") + "\n")
	if list, ok := m.svc.Data.Ticker(); ok {
		parts := make([]string, 0, len(m.svc.TickerIDs))
		for _, item := range render.TickerItems(m.svc.TickerIDs, list) {
			part := s.symbol.Render(item.Symbol) + " " + s.price.Render(item.Price)
			if item.HasChange {
				part += " " + s.change(item.ChangeClass).Render("("+item.Change+")")
			}
			parts = append(parts, part)
		}
		b.WriteString(wrap(parts, m.width) + "\n\n")
	} else {
		b.WriteString(s.dim.Render(render.LoadingText) + "\n\n")
	}

	b.WriteString(s.section.Render("Market") + "\n")
	if snap, ok := m.svc.Data.Market(); ok {
		fmt.Fprintf(&b, "Market Cap %s   24h Volume %s   BTC Dominance %s\n",
			s.price.Render(format.WholeUSD(snap.TotalMarketCapUSD)),
			s.price.Render(format.WholeUSD(snap.Total24hVolumeUSD)),
			s.price.Render(format.Dominance(snap.BTCDominancePct)))
	} else {
		b.WriteString(s.dim.Render(render.LoadingText) + "\n")
	}
	if r, ok := m.svc.Data.Sentiment(); ok {
		b.WriteString("Fear & Greed " + m.sentimentStyle(r.Value).Render(render.SentimentLabel(r)) + "\n\n")
	} else {
		b.WriteString("Fear & Greed " + s.dim.Render(render.LoadingText) + "\n\n")
	}

	if mv, ok := m.svc.Data.Movers(); ok {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			m.moverColumn("Top Gainers", mv.Gainers),
			"    ",
			m.moverColumn("Top Losers", mv.Losers),
		) + "\n\n")
	} else {
		b.WriteString(s.section.Render("Movers") + "\n" + s.dim.Render(render.LoadingText) + "\n\n")
	}

	b.WriteString(s.section.Render("News") + "\n")
	feed, ok := m.svc.Data.News()
	switch {
	case !ok:
		b.WriteString(s.dim.Render(render.NewsLoadingText) + "\n")
	case len(feed) == 0:
		b.WriteString(s.dim.Render(render.NewsEmptyText) + "\n")
	default:
		for _, card := range render.NewsCards(feed, m.now(), newsItems) {
			b.WriteString(s.price.Render(card.Title) + "\n")
			b.WriteString(s.dim.Render(card.Source+" · "+card.Age) + "\n")
			if card.Preview != "" {
				b.WriteString(card.Preview + "\n")
			}
			b.WriteString(s.dim.Render(card.URL) + "\n\n")
		}
	}
	return b.String()
}

func (m *AppModel) moverColumn(title string, quotes []domain.AssetQuote) string {
	s := m.styles
	lines := []string{s.section.Render(title)}
	for _, q := range quotes {
		change := s.dim.Render(format.PercentPtr(q.Change24hPct))
		if q.HasChange() {
			change = s.change(format.ChangeClass(*q.Change24hPct)).Render(format.Percent(*q.Change24hPct))
		}
		lines = append(lines, fmt.Sprintf("%-6s %12s %s", strings.ToUpper(q.Symbol), format.Price(q.PriceUSD), change))
	}
	return strings.Join(lines, "\n")
}

func (m *AppModel) sentimentStyle(value int) lipgloss.Style {
	switch render.SentimentBucket(value) {
	case "extreme-fear", "fear":
		return m.styles.loss
	case "greed", "extreme-greed":
		return m.styles.gain
	default:
		return m.styles.price
	}
}

func (m *AppModel) renderChat() string {
	s := m.styles
	var lines []string
	for _, msg := range m.transcript.Messages() {
		style := s.bot
		if msg.Role == chat.RoleUser {
			style = s.user
		}
		for _, line := range strings.Split(msg.Text, "\n") {
			lines = append(lines, style.Render(line))
		}
	}
	keep := chatLines - 1
	if len(lines) > keep {
		lines = lines[len(lines)-keep:]
	}
	for len(lines) < keep {
		lines = append([]string{""}, lines...)
	}
	input := s.dim.Render("press c to chat")
	if m.focus == focusChat {
		input = m.input.View()
	}
	return strings.Join(append(lines, input), "\n")
}

// wrap joins parts with spacing, breaking lines before width is exceeded.
func wrap(parts []string, width int) string {
	if width <= 0 {
		return strings.Join(parts, "   ")
	}
	var b strings.Builder
	lineWidth := 0
	for _, p := range parts {
		w := lipgloss.Width(p)
		if lineWidth > 0 && lineWidth+3+w > width {
			b.WriteString("\n")
			lineWidth = 0
		}
		if lineWidth > 0 {
			b.WriteString("   ")
			lineWidth += 3
		}
		b.WriteString(p)
		lineWidth += w
	}
	return b.String()
}
