// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/todo-go/internal/task"
	"github.com/nibzard/todo-go/internal/view"
)

// Options configures the TUI.
type Options struct {
	Status     task.Status
	Sort       task.SortKey
	Tags       string
	UrgentDays int
	// Now overrides the clock used for due labels and the default due date.
	Now func() time.Time
}

// RunTUI starts the TUI over store.
func RunTUI(ctx context.Context, store *task.Store, opts Options) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := newTUIModel(store, opts)
	defer store.SetOnChange(nil)
	return runProgram(ctx, model)
}

func runProgram(ctx context.Context, model *tuiModel) error {
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeTagFilter
)

// Form field order.
const (
	fieldText = iota
	fieldDue
	fieldPriority
	fieldTags
	fieldCount
)

var fieldLabels = [fieldCount]string{"Task", "Due", "Priority", "Tags"}

var (
	statusCycle = []task.Status{task.StatusAll, task.StatusActive, task.StatusCompleted}
	sortCycle   = []task.SortKey{task.SortNone, task.SortDueDate, task.SortPriority, task.SortAdded}
)

type tuiModel struct {
	store      *task.Store
	now        func() time.Time
	urgentDays int
	styles     view.Styles

	query  task.Query
	rows   []view.Row
	stats  task.Stats
	cursor int

	mode      mode
	inputs    [fieldCount]textinput.Model
	focus     int
	tagInput  textinput.Model
	notice    string
	showHelp  bool
	lastError error
}

func newTUIModel(store *task.Store, opts Options) *tuiModel {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	m := &tuiModel{
		store:      store,
		now:        now,
		urgentDays: opts.UrgentDays,
		styles:     view.NewStyles(lipgloss.DefaultRenderer()),
		query: task.Query{
			Status: opts.Status,
			Sort:   opts.Sort,
			Tags:   opts.Tags,
		},
		stats: store.Stats(),
	}
	if m.query.Status == "" {
		m.query.Status = task.StatusAll
	}

	for i := range m.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 200
		m.inputs[i] = in
	}
	m.inputs[fieldText].Placeholder = "What needs doing?"
	m.inputs[fieldDue].Placeholder = task.DateLayout
	m.inputs[fieldPriority].Placeholder = "high, medium, low"
	m.inputs[fieldTags].Placeholder = "work, home"
	m.resetForm()

	m.tagInput = textinput.New()
	m.tagInput.Prompt = "Tags: "
	m.tagInput.Placeholder = "comma separated"

	store.SetOnChange(func(st task.Stats) {
		m.stats = st
	})
	m.refresh()
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeAdd:
		return m.updateForm(key)
	case modeTagFilter:
		return m.updateTagFilter(key)
	}

	m.notice = ""
	switch key.String() {
	case "q":
		return m, tea.Quit
	case "?", "h":
		m.showHelp = !m.showHelp
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "a":
		m.mode = modeAdd
		m.focus = fieldText
		return m, m.focusField()
	case " ", "space", "x":
		if row, ok := m.selected(); ok {
			_, err := m.store.Toggle(row.ID)
			m.setError(err)
			m.refresh()
		}
	case "d":
		if row, ok := m.selected(); ok {
			m.setError(m.store.Delete(row.ID))
			m.refresh()
		}
	case "C":
		removed, err := m.store.ClearCompleted()
		m.setError(err)
		if err == nil {
			m.notice = fmt.Sprintf("Cleared %d completed task(s)", removed)
		}
		m.refresh()
	case "f":
		m.query.Status = nextStatus(m.query.Status)
		m.refresh()
	case "s":
		m.query.Sort = nextSort(m.query.Sort)
		m.refresh()
	case "/":
		m.mode = modeTagFilter
		m.tagInput.SetValue(m.query.Tags)
		m.tagInput.CursorEnd()
		return m, m.tagInput.Focus()
	}
	return m, nil
}

func (m *tuiModel) updateForm(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.mode = modeList
		m.blurForm()
		m.notice = ""
		return m, nil
	case "tab", "down":
		m.focus = (m.focus + 1) % fieldCount
		return m, m.focusField()
	case "shift+tab", "up":
		m.focus = (m.focus + fieldCount - 1) % fieldCount
		return m, m.focusField()
	case "enter":
		return m, m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(key)
	return m, cmd
}

// submit adds the task described by the form. The form stays open when the
// input is rejected.
func (m *tuiModel) submit() tea.Cmd {
	today := task.Today(m.now())
	priority, err := task.ParsePriority(m.inputs[fieldPriority].Value())
	if err != nil {
		m.notice = err.Error()
		m.focus = fieldPriority
		return m.focusField()
	}

	in := task.Input{
		Text:     m.inputs[fieldText].Value(),
		DueDate:  task.ClampDueDate(m.inputs[fieldDue].Value(), today),
		Priority: string(priority),
		Tags:     m.inputs[fieldTags].Value(),
	}
	_, err = m.store.Add(in)
	if errors.Is(err, task.ErrEmptyText) {
		m.notice = "Please enter a task!"
		m.focus = fieldText
		return m.focusField()
	}
	m.setError(err)
	if err == nil {
		m.notice = "Task added"
	}
	m.resetForm()
	m.blurForm()
	m.mode = modeList
	m.refresh()
	return nil
}

func (m *tuiModel) updateTagFilter(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.mode = modeList
		m.tagInput.Blur()
		return m, nil
	case "enter":
		m.query.Tags = strings.TrimSpace(m.tagInput.Value())
		m.mode = modeList
		m.tagInput.Blur()
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.tagInput, cmd = m.tagInput.Update(key)
	return m, cmd
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.mode)
		return b.String()
	}

	writeQuery(&b, m.query)
	switch m.mode {
	case modeAdd:
		m.writeForm(&b)
	case modeTagFilter:
		b.WriteString(m.tagInput.View() + "\n\n")
	}
	m.writeRows(&b)
	b.WriteString(view.StatsLine(m.stats) + "\n\n")
	if m.notice != "" {
		b.WriteString(m.notice + "\n\n")
	}
	writeFooter(&b, m.mode)
	return b.String()
}

func (m *tuiModel) refresh() {
	m.rows = view.Project(m.store.FilterAndSort(m.query), m.now(), m.urgentDays)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) selected() (view.Row, bool) {
	if len(m.rows) == 0 {
		return view.Row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *tuiModel) setError(err error) {
	m.lastError = err
	if err != nil {
		m.notice = "Error: " + err.Error()
	}
}

func (m *tuiModel) resetForm() {
	m.inputs[fieldText].SetValue("")
	m.inputs[fieldDue].SetValue(task.Today(m.now()))
	m.inputs[fieldPriority].SetValue(string(task.PriorityMedium))
	m.inputs[fieldTags].SetValue("")
	m.focus = fieldText
}

func (m *tuiModel) focusField() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.focus {
			cmd = m.inputs[i].Focus()
			m.inputs[i].CursorEnd()
			continue
		}
		m.inputs[i].Blur()
	}
	return cmd
}

func (m *tuiModel) blurForm() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func nextStatus(s task.Status) task.Status {
	for i, st := range statusCycle {
		if st == s {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return task.StatusAll
}

func nextSort(k task.SortKey) task.SortKey {
	for i, sk := range sortCycle {
		if sk == k {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return task.SortNone
}

func writeTitle(b *strings.Builder) {
	title := "Todo"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeQuery(b *strings.Builder, q task.Query) {
	sortLabel := string(q.Sort)
	if sortLabel == "" {
		sortLabel = "none"
	}
	tags := q.Tags
	if tags == "" {
		tags = "-"
	}
	b.WriteString(fmt.Sprintf("Show: %s | Sort: %s | Tags: %s\n\n", q.Status, sortLabel, tags))
}

func (m *tuiModel) writeForm(b *strings.Builder) {
	b.WriteString("New Task\n\n")
	for i, in := range m.inputs {
		marker := " "
		if i == m.focus {
			marker = ">"
		}
		b.WriteString(fmt.Sprintf(" %s %-9s %s\n", marker, fieldLabels[i]+":", in.View()))
	}
	b.WriteString("\n")
}

func (m *tuiModel) writeRows(b *strings.Builder) {
	if len(m.rows) == 0 {
		b.WriteString("  No tasks.\n\n")
		return
	}
	for i, row := range m.rows {
		marker := "  "
		if i == m.cursor && m.mode == modeList {
			marker = "> "
		}
		b.WriteString(marker + m.styles.Line(row) + "\n")
	}
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  up/k down/j  Move the cursor\n")
	b.WriteString("  a            Add a task (tab switches field, enter saves, esc cancels)\n")
	b.WriteString("  space, x     Toggle the selected task\n")
	b.WriteString("  d            Delete the selected task\n")
	b.WriteString("  C            Clear completed tasks\n")
	b.WriteString("  f            Cycle status filter (all, active, completed)\n")
	b.WriteString("  s            Cycle sort (none, dueDate, priority, added)\n")
	b.WriteString("  /            Filter by tags\n\n")
}

func writeFooter(b *strings.Builder, m mode) {
	switch m {
	case modeAdd:
		b.WriteString("enter to save | tab to switch field | esc to cancel\n")
	case modeTagFilter:
		b.WriteString("enter to apply | esc to cancel\n")
	default:
		b.WriteString("Press h for help | a to add | q to quit\n")
	}
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
