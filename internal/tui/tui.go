// Package tui provides a terminal user interface for task management.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todobreeze/internal/manager"
	"todobreeze/task"
)

// Controller is the subset of manager operations the TUI needs.
type Controller interface {
	Tasks() []task.Task
	Add(ctx context.Context, draft manager.Draft) (task.Task, error)
	Toggle(ctx context.Context, id string) (task.Task, *task.Task, error)
	Delete(ctx context.Context, id string) error
}

// Mode indicates the current input mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAdd
	ModeFilter
	ModeHelp
	ModeConfirmDelete
)

// Model represents the TUI state
type Model struct {
	controller Controller
	ctx        context.Context

	// Data
	tasks       []task.Task
	filteredIdx []int // indices into tasks slice for filtered view

	// Selection
	cursor int

	// Mode and input
	mode      Mode
	textInput textinput.Model
	filter    string

	// UI dimensions
	width  int
	height int

	// Styles
	paneStyle      lipgloss.Style
	selectedStyle  lipgloss.Style
	completedStyle lipgloss.Style
	overdueStyle   lipgloss.Style
	subtaskStyle   lipgloss.Style
	tagStyle       lipgloss.Style
	helpStyle      lipgloss.Style
	dialogStyle    lipgloss.Style
	statusBarStyle lipgloss.Style
}

// Message types
type tasksLoadedMsg struct {
	tasks []task.Task
}

type errMsg struct {
	err error
}

// New creates a new TUI model
func New(c Controller) *Model {
	ti := textinput.New()
	ti.Placeholder = "Enter text..."
	ti.CharLimit = 256

	return &Model{
		controller: c,
		ctx:        context.Background(),
		textInput:  ti,
		mode:       ModeNormal,
		paneStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		selectedStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		completedStyle: lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(lipgloss.Color("240")),
		overdueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")),
		subtaskStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		tagStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("110")),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		dialogStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
		statusBarStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1),
	}
}

// Init initializes the TUI
func (m *Model) Init() tea.Cmd {
	return m.loadTasks()
}

func (m *Model) loadTasks() tea.Cmd {
	return func() tea.Msg {
		return tasksLoadedMsg{m.controller.Tasks()}
	}
}

func (m *Model) addTask(title string) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.controller.Add(m.ctx, manager.Draft{Title: title}); err != nil {
			return errMsg{err}
		}
		return tasksLoadedMsg{m.controller.Tasks()}
	}
}

func (m *Model) toggleTask(id string) tea.Cmd {
	return func() tea.Msg {
		if _, _, err := m.controller.Toggle(m.ctx, id); err != nil {
			return errMsg{err}
		}
		return tasksLoadedMsg{m.controller.Tasks()}
	}
}

func (m *Model) deleteTask(id string) tea.Cmd {
	return func() tea.Msg {
		if err := m.controller.Delete(m.ctx, id); err != nil {
			return errMsg{err}
		}
		return tasksLoadedMsg{m.controller.Tasks()}
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tasksLoadedMsg:
		m.tasks = msg.tasks
		m.applyFilter()
		return m, nil

	case errMsg:
		// Errors surface through the CLI path; the TUI just reloads
		return m, m.loadTasks()

	case tea.KeyMsg:
		switch m.mode {
		case ModeAdd:
			return m.handleAddMode(msg)
		case ModeFilter:
			return m.handleFilterMode(msg)
		case ModeHelp:
			return m.handleHelpMode(msg)
		case ModeConfirmDelete:
			return m.handleConfirmDeleteMode(msg)
		}

		// Normal mode key handling
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "j":
			if m.cursor < len(m.filteredIdx)-1 {
				m.cursor++
			}
			return m, nil

		case "a":
			m.mode = ModeAdd
			m.textInput.Reset()
			m.textInput.Placeholder = "New task title..."
			m.textInput.Focus()
			return m, textinput.Blink

		case "c", " ":
			if t := m.selected(); t != nil {
				return m, m.toggleTask(t.ID)
			}
			return m, nil

		case "d":
			if m.selected() != nil {
				m.mode = ModeConfirmDelete
			}
			return m, nil

		case "/":
			m.mode = ModeFilter
			m.textInput.Reset()
			m.textInput.SetValue(m.filter)
			m.textInput.Placeholder = "Search..."
			m.textInput.Focus()
			return m, textinput.Blink

		case "?":
			m.mode = ModeHelp
			return m, nil
		}
	}

	if m.mode == ModeAdd || m.mode == ModeFilter {
		m.textInput, cmd = m.textInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) selected() *task.Task {
	if len(m.filteredIdx) == 0 || m.cursor >= len(m.filteredIdx) {
		return nil
	}
	return &m.tasks[m.filteredIdx[m.cursor]]
}

func (m *Model) handleAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.Type {
	case tea.KeyEnter:
		value := m.textInput.Value()
		m.mode = ModeNormal
		if value != "" {
			return m, m.addTask(value)
		}
		return m, nil

	case tea.KeyEsc:
		m.mode = ModeNormal
		return m, nil
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *Model) handleFilterMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.Type {
	case tea.KeyEnter:
		m.filter = m.textInput.Value()
		m.applyFilter()
		m.mode = ModeNormal
		return m, nil

	case tea.KeyEsc:
		m.filter = ""
		m.applyFilter()
		m.mode = ModeNormal
		return m, nil
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *Model) handleHelpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.mode = ModeNormal
		return m, nil
	}
	if msg.String() == "q" {
		m.mode = ModeNormal
	}
	return m, nil
}

func (m *Model) handleConfirmDeleteMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = ModeNormal
		if t := m.selected(); t != nil {
			if m.cursor >= len(m.filteredIdx)-1 && m.cursor > 0 {
				m.cursor--
			}
			return m, m.deleteTask(t.ID)
		}
		return m, nil

	case "n", "N", "esc":
		m.mode = ModeNormal
		return m, nil
	}

	if msg.Type == tea.KeyEsc {
		m.mode = ModeNormal
	}
	return m, nil
}

func (m *Model) applyFilter() {
	m.filteredIdx = nil
	f := task.Filter{Search: m.filter}
	for i := range m.tasks {
		if m.filter == "" || f.Matches(&m.tasks[i]) {
			m.filteredIdx = append(m.filteredIdx, i)
		}
	}
	if m.cursor >= len(m.filteredIdx) {
		m.cursor = 0
	}
}

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		m.width = 80
		m.height = 24
	}

	var b strings.Builder

	content := m.renderTaskPane(m.width - 6)
	pane := m.paneStyle.Width(m.width - 2).Height(m.height - 4).Render(content)

	b.WriteString(pane)
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	switch m.mode {
	case ModeAdd:
		return m.centerDialog(m.dialogStyle.Render(
			"Add New Task\n\n" +
				m.textInput.View() + "\n\n" +
				m.helpStyle.Render("Enter: confirm  Esc: cancel"),
		))
	case ModeFilter:
		return m.centerDialog(m.dialogStyle.Render(
			"Search Tasks\n\n" +
				m.textInput.View() + "\n\n" +
				m.helpStyle.Render("Enter: search  Esc: clear"),
		))
	case ModeHelp:
		return m.centerDialog(m.dialogStyle.Render(helpText))
	case ModeConfirmDelete:
		return m.centerDialog(m.dialogStyle.Render(
			"Delete selected task?\n\n" +
				m.helpStyle.Render("y: yes  n: no"),
		))
	}

	return b.String()
}

const helpText = `Help - Key Bindings

Navigation:
  j/↓    Move down
  k/↑    Move up

Actions:
  a      Add new task
  c      Toggle task completion
  d      Delete task (with confirm)
  /      Search tasks

General:
  ?      Show this help
  q      Quit

Press any key to close`

func (m *Model) renderTaskPane(width int) string {
	var b strings.Builder
	b.WriteString("Tasks\n")
	b.WriteString(strings.Repeat("─", max(width, 1)))
	b.WriteString("\n")

	if len(m.filteredIdx) == 0 {
		b.WriteString("No tasks\n")
		return b.String()
	}

	for fi, taskIdx := range m.filteredIdx {
		m.renderTask(&b, &m.tasks[taskIdx], fi)
	}
	return b.String()
}

func (m *Model) renderTask(b *strings.Builder, t *task.Task, filterIdx int) {
	cursor := " "
	if filterIdx == m.cursor {
		cursor = ">"
	}

	status := "[ ]"
	if t.Completed {
		status = "[✓]"
	}

	title := t.Title
	if t.Completed {
		title = m.completedStyle.Render(title)
	} else if filterIdx == m.cursor {
		title = m.selectedStyle.Render(title)
	}

	line := cursor + " " + status + " " + title
	if t.Due != "" {
		due := "due " + t.Due
		if !t.Completed && t.Due < todayDate() {
			due = m.overdueStyle.Render(due)
		}
		line += "  " + due
	}
	if len(t.Tags) > 0 {
		line += "  " + m.tagStyle.Render("#"+strings.Join(t.Tags, " #"))
	}
	b.WriteString(line + "\n")

	for _, sub := range t.Subtasks {
		mark := "[ ]"
		if sub.Completed {
			mark = "[✓]"
		}
		b.WriteString("    " + m.subtaskStyle.Render("└─"+mark+" "+sub.Title) + "\n")
	}
}

func (m *Model) renderStatusBar() string {
	done := 0
	for _, t := range m.tasks {
		if t.Completed {
			done++
		}
	}
	left := statusSummary(done, len(m.tasks))

	right := "q:quit  ?:help"
	if m.filter != "" {
		right = "Filter: " + m.filter + "  " + right
	}

	padding := m.width - len(left) - len(right) - 2
	if padding < 1 {
		padding = 1
	}
	return m.statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", padding) + right)
}

func todayDate() string {
	return time.Now().Format(task.DateFormat)
}

func statusSummary(done, total int) string {
	return fmt.Sprintf("%d/%d done", done, total)
}

func (m *Model) centerDialog(dialog string) string {
	lines := strings.Split(dialog, "\n")
	dialogHeight := len(lines)
	dialogWidth := 0
	for _, line := range lines {
		if len(line) > dialogWidth {
			dialogWidth = len(line)
		}
	}

	topPad := (m.height - dialogHeight) / 2
	leftPad := (m.width - dialogWidth) / 2
	if topPad < 0 {
		topPad = 0
	}
	if leftPad < 0 {
		leftPad = 0
	}

	var b strings.Builder
	for i := 0; i < topPad; i++ {
		b.WriteString("\n")
	}
	for _, line := range lines {
		b.WriteString(strings.Repeat(" ", leftPad))
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
