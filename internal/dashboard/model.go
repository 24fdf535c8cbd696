// Package dashboard реализует терминальный дашборд на BubbleTea: статус связи
// с устройством, карточки последнего показания, оповещения и график поля.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"proby/internal/analytics"
	"proby/internal/liveness"
	"proby/internal/models"
	"proby/internal/poller"
)

const clearTimeout = 10 * time.Second

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFaint    = lipgloss.Color("236")
	colorTick     = lipgloss.Color("239")
	colorFooterBg = lipgloss.Color("235")
	colorOk       = lipgloss.Color("78")
	colorOkDim    = lipgloss.Color("22")
	colorInfo     = lipgloss.Color("75")
	colorWarn     = lipgloss.Color("220")
	colorCrit     = lipgloss.Color("196")
)

// ── Messages ─────────────────────────────────────────────────────────

// SnapshotMsg новый снимок от цикла опроса
type SnapshotMsg struct {
	Snapshot poller.Snapshot
}

type clearedMsg struct {
	snap    poller.Snapshot
	deleted int64
	err     error
}

// Actions действия пользователя, требующие цикла опроса или API
type Actions interface {
	Reconnect() poller.Snapshot
	Clear(ctx context.Context) (poller.Snapshot, int64, error)
}

// ── Model ────────────────────────────────────────────────────────────

// Model BubbleTea модель дашборда
type Model struct {
	actions    Actions
	schema     models.Schema
	table      analytics.Table
	snap       poller.Snapshot
	selected   int
	confirming bool
	notice     string
	width      int
	height     int
}

// New создает модель с начальным снимком
func New(actions Actions, schema models.Schema, table analytics.Table, initial poller.Snapshot) Model {
	return Model{
		actions: actions,
		schema:  schema.Ordered(),
		table:   table,
		snap:    initial,
	}
}

// Selected выбранное для графика поле
func (m Model) Selected() models.Field {
	if len(m.schema) == 0 {
		return ""
	}
	return m.schema[m.selected%len(m.schema)]
}

// ── Commands ─────────────────────────────────────────────────────────

func (m Model) clearCmd() tea.Cmd {
	actions := m.actions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), clearTimeout)
		defer cancel()

		snap, deleted, err := actions.Clear(ctx)
		return clearedMsg{snap: snap, deleted: deleted, err: err}
	}
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return m, tea.Quit
		}

		if m.confirming {
			m.confirming = false
			if key == "y" || key == "Y" {
				m.notice = "Clearing readings..."
				return m, m.clearCmd()
			}
			m.notice = "Clear cancelled"
			return m, nil
		}

		switch key {
		case "q":
			return m, tea.Quit
		case "r":
			m.snap = m.actions.Reconnect()
			m.notice = "Reconnecting..."
		case "c":
			m.confirming = true
			m.notice = ""
		case "tab":
			if len(m.schema) > 0 {
				m.selected = (m.selected + 1) % len(m.schema)
			}
		case "shift+tab":
			if len(m.schema) > 0 {
				m.selected = (m.selected + len(m.schema) - 1) % len(m.schema)
			}
		case "1", "2", "3", "4", "5", "6":
			idx := int(key[0] - '1')
			if idx < len(m.schema) {
				m.selected = idx
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case SnapshotMsg:
		m.snap = msg.Snapshot
		if m.notice == "Reconnecting..." && m.snap.Status != liveness.Paused {
			m.notice = ""
		}

	case clearedMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("Clear failed: %v", msg.err)
			return m, nil
		}
		m.snap = msg.snap
		m.notice = fmt.Sprintf("Deleted %d readings", msg.deleted)
	}

	return m, nil
}

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string

	sections = append(sections, m.renderTitleBar(contentWidth))

	if m.snap.Err != nil {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Width(contentWidth).
			Padding(0, 1).
			Render(fmt.Sprintf("ERROR: %v", m.snap.Err)))
	}

	if m.snap.Status == liveness.Paused {
		sections = append(sections, m.renderNotFound(contentWidth))
	}

	latest, ok := m.snap.Latest()
	if !ok {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(colorDim).
			Width(contentWidth).
			Align(lipgloss.Center).
			Padding(1, 0).
			Render("Waiting for sensor readings..."))
	} else {
		sections = append(sections, m.renderCards(latest, contentWidth))
	}

	sections = append(sections, m.renderAlerts(contentWidth))

	if ok {
		sections = append(sections, m.renderChart(contentWidth))
	}

	sections = append(sections, m.renderFooter(contentWidth))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.height > 0 {
		lines := strings.Split(content, "\n")
		if len(lines) > m.height {
			content = strings.Join(lines[:m.height], "\n")
		}
	}

	return content
}

func statusBadge(s liveness.Status) string {
	switch s {
	case liveness.Connected:
		return lipgloss.NewStyle().Foreground(colorOk).Bold(true).Render("● Connected")
	case liveness.Paused:
		return lipgloss.NewStyle().Foreground(colorCrit).Bold(true).Render("✕ Device not found")
	default:
		return lipgloss.NewStyle().Foreground(colorWarn).Render("○ Searching for device...")
	}
}

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("PROBY MONITOR")

	dimS := lipgloss.NewStyle().Foreground(colorDim)

	statusParts := []string{statusBadge(m.snap.Status)}
	if !m.snap.LastUpdate.IsZero() {
		statusParts = append(statusParts, dimS.Render("updated "+m.snap.LastUpdate.Format("15:04:05")))
	}
	statusParts = append(statusParts, dimS.Render(fmt.Sprintf("polls %d", m.snap.Polls)))

	right := strings.Join(statusParts, dimS.Render(" │ "))

	gap := width - lipgloss.Width(logo) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + strings.Repeat(" ", gap) + right)
}

func (m Model) renderNotFound(width int) string {
	msg := fmt.Sprintf("Device not found: no new readings for %d polls. Polling is paused.", m.snap.State.Unchanged())
	hint := lipgloss.NewStyle().Foreground(colorLabel).Render("Press r to reconnect.")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCrit).
		Foreground(colorCrit).
		Padding(0, 1).
		Width(width).
		Render(msg + "\n" + hint)
}

func (m Model) renderCards(latest models.Reading, width int) string {
	if len(m.schema) == 0 {
		return ""
	}

	alerted := make(map[models.Field]analytics.Severity)
	for _, a := range m.snap.Alerts {
		if a.Field != "" {
			alerted[a.Field] = a.Severity
		}
	}

	cardWidth := width/len(m.schema) - 2
	if cardWidth < 14 {
		cardWidth = 14
	}

	titleS := lipgloss.NewStyle().Foreground(colorLabel).Bold(true)
	dimS := lipgloss.NewStyle().Foreground(colorDim)

	cards := make([]string, 0, len(m.schema))
	for i, f := range m.schema {
		info, _ := f.Info()

		value := dimS.Render("--")
		if v, ok := latest.Value(f); ok {
			r, hasRange := m.table[f]
			value = lipgloss.NewStyle().
				Foreground(ValueColor(v, r, hasRange)).
				Bold(true).
				Render(f.Format(v) + info.Unit)
		}

		rangeText := "no threshold"
		if r, ok := m.table[f]; ok {
			rangeText = r.Describe(f)
		}

		border := colorBorder
		if i == m.selected%len(m.schema) {
			border = colorTitleFg
		}
		if sev, ok := alerted[f]; ok {
			border = severityColor(sev)
		}

		cards = append(cards, lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1).
			Width(cardWidth).
			Render(titleS.Render(truncate(info.Title, cardWidth-2))+"\n"+value+"\n"+dimS.Render(truncate(rangeText, cardWidth-2))))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func severityColor(s analytics.Severity) lipgloss.Color {
	switch s {
	case analytics.SeverityError:
		return colorCrit
	case analytics.SeverityWarning:
		return colorWarn
	default:
		return colorInfo
	}
}

func (m Model) renderAlerts(width int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)

	rows := []string{lipgloss.NewStyle().Bold(true).Foreground(colorLabel).Render("Alerts")}

	if len(m.snap.Alerts) == 0 {
		rows = append(rows, lipgloss.NewStyle().Foreground(colorOk).Render("All readings within optimal range"))
	}
	for _, a := range m.snap.Alerts {
		tag := lipgloss.NewStyle().
			Foreground(severityColor(a.Severity)).
			Bold(true).
			Render(fmt.Sprintf("%-9s", strings.ToUpper(string(a.Severity))))
		rows = append(rows, tag+" "+a.Message+dimS.Render("  ("+a.Threshold+")"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderChart(width int) string {
	field := m.Selected()
	info, _ := field.Info()
	series := analytics.Summarize(m.snap.Readings, field)
	r, hasRange := m.table[field]

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	valS := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	chartWidth := width - 6
	if chartWidth > 140 {
		chartWidth = 140
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(colorTitleFg).Render(info.Title) +
		dimS.Render(fmt.Sprintf("  last %d readings", len(series.Points)))

	rows := []string{header}

	if series.Empty() {
		rows = append(rows, dimS.Render("No "+strings.ToLower(info.Title)+" readings"))
	} else {
		lo, hi := chartBounds(series, r, hasRange)
		rows = append(rows, RenderSparkline(series.Points, chartWidth, lo, hi, r, hasRange))
		if timeline := RenderTimeline(series.Points, chartWidth); strings.TrimSpace(timeline) != "" {
			rows = append(rows, timeline)
		}
		rows = append(rows, RenderRangeScale(series.Last, lo, hi, r, hasRange, chartWidth))

		stats := dimS.Render("last ") + valS.Render(field.Format(series.Last)+info.Unit) +
			dimS.Render("  avg ") + valS.Render(field.Format(series.Avg)) +
			dimS.Render("  lo ") + valS.Render(field.Format(series.Min)) +
			dimS.Render("  pk ") + valS.Render(field.Format(series.Peak))
		if hasRange {
			stats += dimS.Render("  range ") + lipgloss.NewStyle().Foreground(colorWarn).Render(r.Describe(field))
		}
		rows = append(rows, stats)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderFooter(width int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	labelS := lipgloss.NewStyle().Foreground(colorLabel)

	var left string
	switch {
	case m.confirming:
		left = lipgloss.NewStyle().Foreground(colorCrit).Bold(true).Render("Delete all readings? (y/n)")
	case m.notice != "":
		left = labelS.Render(m.notice)
	}

	keys := dimS.Render("q") + labelS.Render(":quit") +
		dimS.Render("  r") + labelS.Render(":reconnect") +
		dimS.Render("  c") + labelS.Render(":clear") +
		dimS.Render("  tab/1-6") + labelS.Render(":field")

	gap := width - lipgloss.Width(left) - lipgloss.Width(keys) - 4
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(left + strings.Repeat(" ", gap) + keys)
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if len([]rune(s)) <= w {
		return s
	}
	r := []rune(s)
	if w <= 3 {
		return string(r[:w])
	}
	return string(r[:w-1]) + "…"
}
