// Package ui provides the terminal interface for the task API.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskflow/core/internal/client"
	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/domain/validation"
)

const (
	toastTTL       = 3 * time.Second
	requestTimeout = 10 * time.Second
)

// TaskAPI is the part of the API client the UI uses.
type TaskAPI interface {
	List(ctx context.Context) ([]entities.Task, error)
	Create(ctx context.Context, t client.NewTask) (*entities.Task, error)
	Update(ctx context.Context, id int64, changes client.TaskChanges) (*entities.Task, error)
	Delete(ctx context.Context, id int64) error
}

// Run starts the terminal UI and blocks until the user quits.
func Run(ctx context.Context, api TaskAPI) error {
	program := tea.NewProgram(NewModel(api), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

type mode int

const (
	modeList mode = iota
	modeCreate
	modeEditDate
)

// Create form fields, in tab order.
const (
	fieldTitle = iota
	fieldDescription
	fieldStatus
	fieldDueDate
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Description", "Status", "Due date"}

type toast struct {
	text  string
	isErr bool
	seq   int
}

// Model is the bubbletea model of the task list.
type Model struct {
	api       TaskAPI
	validator *validation.TaskValidator

	tasks   []entities.Task
	cursor  int
	loading bool

	mode    mode
	form    [fieldCount]string
	focus   int
	dateBuf string

	toast    toast
	toastSeq int
}

type tasksLoadedMsg struct {
	tasks []entities.Task
	err   error
}

type taskCreatedMsg struct {
	task *entities.Task
	err  error
}

type taskUpdatedMsg struct {
	task *entities.Task
	err  error
}

type taskDeletedMsg struct {
	id  int64
	err error
}

type toastExpiredMsg struct {
	seq int
}

// NewModel builds the model; Init loads the task list.
func NewModel(api TaskAPI) *Model {
	return &Model{
		api:       api,
		validator: validation.New(),
		loading:   true,
	}
}

func (m *Model) Init() tea.Cmd {
	return m.loadTasks()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeCreate:
			return m, m.updateCreate(msg)
		case modeEditDate:
			return m, m.updateEditDate(msg)
		default:
			return m, m.updateList(msg)
		}

	case tasksLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.notify("Failed to load tasks.", true)
		}
		m.tasks = msg.tasks
		m.clampCursor()

	case taskCreatedMsg:
		if msg.err != nil {
			return m, m.notify("Error: "+msg.err.Error(), true)
		}
		m.tasks = append(m.tasks, *msg.task)
		m.cursor = len(m.tasks) - 1
		return m, m.notify("Task created!", false)

	case taskUpdatedMsg:
		if msg.err != nil {
			return m, m.notify("Error: "+msg.err.Error(), true)
		}
		for i := range m.tasks {
			if m.tasks[i].ID == msg.task.ID {
				m.tasks[i] = *msg.task
			}
		}
		return m, m.notify("Task updated!", false)

	case taskDeletedMsg:
		if msg.err != nil {
			return m, m.notify("Error: "+msg.err.Error(), true)
		}
		kept := m.tasks[:0]
		for _, t := range m.tasks {
			if t.ID != msg.id {
				kept = append(kept, t)
			}
		}
		m.tasks = kept
		m.clampCursor()
		return m, m.notify("Task deleted.", false)

	case toastExpiredMsg:
		if msg.seq == m.toast.seq {
			m.toast = toast{}
		}
	}

	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "r", "f5":
		m.loading = true
		return m.loadTasks()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case "n":
		m.mode = modeCreate
		m.form = [fieldCount]string{fieldStatus: string(entities.TaskStatusOpen)}
		m.focus = fieldTitle
	case "s":
		if t, ok := m.selected(); ok {
			return m.updateTask(t.ID, client.TaskChanges{Status: string(t.Status.Next())})
		}
	case "e":
		if t, ok := m.selected(); ok {
			m.mode = modeEditDate
			m.dateBuf = t.DueDate.String()
		}
	case "d":
		if t, ok := m.selected(); ok {
			return m.deleteTask(t.ID)
		}
	}
	return nil
}

func (m *Model) updateCreate(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		return nil
	case tea.KeyTab, tea.KeyDown:
		m.focus = (m.focus + 1) % fieldCount
		return nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.focus = (m.focus + fieldCount - 1) % fieldCount
		return nil
	case tea.KeyEnter:
		return m.submitCreate()
	}

	if m.focus == fieldStatus {
		switch msg.Type {
		case tea.KeySpace, tea.KeyRight:
			m.form[fieldStatus] = string(entities.TaskStatus(m.form[fieldStatus]).Next())
		case tea.KeyLeft:
			// previous = next twice around a ring of three
			s := entities.TaskStatus(m.form[fieldStatus])
			m.form[fieldStatus] = string(s.Next().Next())
		}
		return nil
	}

	m.form[m.focus] = editText(m.form[m.focus], msg)
	return nil
}

func (m *Model) submitCreate() tea.Cmd {
	title, desc := m.form[fieldTitle], m.form[fieldDescription]
	status, due := m.form[fieldStatus], m.form[fieldDueDate]

	// The server result always wins; this only avoids obviously doomed requests.
	msgs := m.validator.Validate(validation.Candidate{
		Title:       &title,
		Description: &desc,
		Status:      &status,
		DueDate:     &due,
	}, validation.ModeFull)
	if len(msgs) > 0 {
		return m.notify(strings.Join(msgs, " "), true)
	}

	m.mode = modeList
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		task, err := api.Create(ctx, client.NewTask{Title: title, Description: desc, Status: status, DueDate: due})
		return taskCreatedMsg{task: task, err: err}
	}
}

func (m *Model) updateEditDate(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		return nil
	case tea.KeyEnter:
		t, ok := m.selected()
		if !ok {
			m.mode = modeList
			return nil
		}
		due := m.dateBuf
		if msgs := m.validator.Validate(validation.Candidate{DueDate: &due}, validation.ModePartial); len(msgs) > 0 {
			return m.notify(strings.Join(msgs, " "), true)
		}
		if due == "" {
			return m.notify("Due date is required.", true)
		}
		m.mode = modeList
		return m.updateTask(t.ID, client.TaskChanges{DueDate: due})
	}

	m.dateBuf = editText(m.dateBuf, msg)
	return nil
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("TaskFlow") + "\n\n")

	switch m.mode {
	case modeCreate:
		m.writeForm(&b)
	default:
		m.writeList(&b)
	}

	if m.toast.text != "" {
		style := successStyle
		if m.toast.isErr {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(m.toast.text) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render(m.help()) + "\n")
	return b.String()
}

func (m *Model) writeList(b *strings.Builder) {
	if m.loading {
		b.WriteString("Loading tasks...\n")
		return
	}
	if len(m.tasks) == 0 {
		b.WriteString("No tasks available\n")
		return
	}

	for i, t := range m.tasks {
		due := t.DueDate.String()
		if due == "" {
			due = "No due date"
		}
		line := fmt.Sprintf("%-4d %-40s %-12s %s", t.ID, truncate(t.Title, 40), t.Status, due)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> "+line) + "\n")
			if t.Description != "" {
				b.WriteString("     " + truncate(t.Description, 70) + "\n")
			}
			if m.mode == modeEditDate {
				b.WriteString(fmt.Sprintf("     New due date (YYYY-MM-DD): %s_\n", m.dateBuf))
			}
			continue
		}
		b.WriteString("  " + line + "\n")
	}
}

func (m *Model) writeForm(b *strings.Builder) {
	b.WriteString("Create a new task\n\n")
	for i := 0; i < fieldCount; i++ {
		cursor := "  "
		if i == m.focus {
			cursor = "> "
		}
		value := m.form[i]
		if i == m.focus && i != fieldStatus {
			value += "_"
		}
		b.WriteString(fmt.Sprintf("%s%-12s %s\n", cursor, fieldLabels[i]+":", value))
	}
}

func (m *Model) help() string {
	switch m.mode {
	case modeCreate:
		return "tab next field | space cycle status | enter save | esc cancel"
	case modeEditDate:
		return "enter save | esc cancel"
	default:
		return "n new | s cycle status | e edit due date | d delete | r refresh | q quit"
	}
}

func (m *Model) loadTasks() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		tasks, err := api.List(ctx)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m *Model) updateTask(id int64, changes client.TaskChanges) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		task, err := api.Update(ctx, id, changes)
		return taskUpdatedMsg{task: task, err: err}
	}
}

func (m *Model) deleteTask(id int64) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return taskDeletedMsg{id: id, err: api.Delete(ctx, id)}
	}
}

// notify shows a toast and schedules its removal.
func (m *Model) notify(text string, isErr bool) tea.Cmd {
	m.toastSeq++
	seq := m.toastSeq
	m.toast = toast{text: text, isErr: isErr, seq: seq}
	return tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func (m *Model) selected() (entities.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return entities.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func editText(s string, msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyBackspace:
		r := []rune(s)
		if len(r) > 0 {
			return string(r[:len(r)-1])
		}
	case tea.KeySpace:
		return s + " "
	case tea.KeyRunes:
		return s + string(msg.Runes)
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
