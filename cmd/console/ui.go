package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/conditions"
	"github.com/jwebster45206/turn-engine/pkg/engine"
)

const statusPollInterval = time.Second

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config        *ConsoleConfig
	client        *http.Client
	queueViewport viewport.Model
	metaViewport  viewport.Model
	ready         bool
	width         int
	height        int
	err           error
	notice        string

	subjectID string
	subject   *actor.SubjectSpec
	queue     *action.Envelope
	status    *engine.Status

	// Subject selection state
	showSubjectModal bool
	subjects         []string
	selectedSubject  int
	loadingSubjects  bool

	// Quit confirmation state
	showQuitModal bool
}

type subjectsLoadedMsg struct {
	subjects []string
	err      error
}

type subjectPickedMsg struct {
	subject *actor.SubjectSpec
	queue   *action.Envelope
	err     error
}

type queueLoadedMsg struct {
	queue *action.Envelope
	err   error
}

type statusMsg struct {
	status *engine.Status
	err    error
}

type runTriggeredMsg struct {
	status *engine.Status
	err    error
}

type exportDoneMsg struct {
	err error
}

type statusTickMsg struct{}

var (
	queuePanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	disabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // yellow
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

var titleCaser = cases.Title(language.English)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	queueVp := viewport.New(50, 20)
	queueVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:           cfg,
		client:           client,
		queueViewport:    queueVp,
		metaViewport:     metaVp,
		showSubjectModal: true,
		loadingSubjects:  true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadSubjects()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showSubjectModal {
		return m.updateSubjectModal(msg)
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		qvCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.queueViewport, qvCmd = m.queueViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(qvCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.writeQueueContent()
		m.metaViewport.SetContent(m.writeMetadata())
		m.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		}
		switch msg.String() {
		case "q":
			m.showQuitModal = true
			return m, nil
		case "r":
			m.notice = "Triggering run..."
			return m, m.triggerRun()
		case "s":
			m.notice = "Stopping run..."
			return m, m.stopRun()
		case "g":
			m.notice = "Refreshing queue..."
			return m, m.refreshQueue()
		case "e":
			m.notice = "Exporting queue..."
			return m, m.exportToClipboard()
		}

	case queueLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.queue = msg.queue
			m.notice = "Queue refreshed"
		}
		m.writeQueueContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case runTriggeredMsg:
		if msg.err != nil {
			m.err = msg.err
			m.notice = ""
		} else {
			m.err = nil
			m.status = msg.status
			m.notice = "Run triggered"
		}
		m.metaViewport.SetContent(m.writeMetadata())

	case exportDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.notice = ""
		} else {
			m.err = nil
			m.notice = "Queue copied to clipboard"
		}
		m.metaViewport.SetContent(m.writeMetadata())

	case statusMsg:
		if msg.err == nil {
			m.status = msg.status
			m.metaViewport.SetContent(m.writeMetadata())
		}

	case statusTickMsg:
		return m, tea.Batch(m.pollStatus(), statusTick())
	}

	m.queueViewport, qvCmd = m.queueViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(qvCmd, mvCmd)
}

func (m *ConsoleUI) resize() {
	queueWidth := int(float64(m.width)*0.65) - 4
	metaWidth := m.width - queueWidth - 6

	m.queueViewport.Width = queueWidth - 2
	m.queueViewport.Height = m.height - 5
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
}

// writeQueueContent renders the stored queue into the left viewport.
func (m *ConsoleUI) writeQueueContent() {
	width := m.queueViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("TURN ENGINE") + "\n\n")
	content.WriteString(fmt.Sprintf("Action queue for %s\n\n", m.subjectID))
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	if m.queue == nil || len(m.queue.Actions) == 0 {
		content.WriteString(disabledStyle.Render("No queue stored for this subject.") + "\n")
		m.queueViewport.SetContent(content.String())
		return
	}

	if !m.queue.Enabled {
		content.WriteString(errorStyle.Render("Queue is disabled and will not execute.") + "\n\n")
	}

	for _, a := range m.queue.Actions {
		line := formatAction(a)
		if a.Enabled {
			content.WriteString(actionStyle.Render(line))
		} else {
			content.WriteString(disabledStyle.Render(line + "  (disabled)"))
		}
		content.WriteString("\n")

		if detail := formatActionDetail(a); detail != "" {
			content.WriteString(disabledStyle.Render(wordwrap.String("      "+detail, width)) + "\n")
		}
	}

	m.queueViewport.SetContent(content.String())
}

func formatAction(a action.Action) string {
	label := titleCaser.String(strings.ReplaceAll(string(a.Type), "_", " "))
	return fmt.Sprintf("  %2d. %s", a.Order, label)
}

func formatActionDetail(a action.Action) string {
	var parts []string

	switch {
	case a.Movement != nil:
		switch {
		case len(a.Movement.Waypoints) > 0:
			parts = append(parts, fmt.Sprintf("%d waypoint(s)", len(a.Movement.Waypoints)))
		case a.Movement.TargetType == action.MoveToToken:
			parts = append(parts, "to "+a.Movement.TargetID)
		default:
			parts = append(parts, "to nearest enemy")
		}
	case a.Attack != nil:
		parts = append(parts, "with "+a.Attack.ItemRef)
		if a.Attack.TargetID != "" {
			parts = append(parts, "at "+a.Attack.TargetID)
		}
	case a.Item != nil:
		parts = append(parts, "use "+a.Item.ItemRef)
	}

	if a.Condition.Kind != "" && a.Condition.Kind != conditions.Always {
		cond := strings.ReplaceAll(string(a.Condition.Kind), "_", " ")
		if a.Condition.Threshold != "" {
			cond += " " + a.Condition.Threshold
		}
		if a.Condition.Ref != "" {
			cond += " " + a.Condition.Ref
		}
		parts = append(parts, "if "+cond)
	}

	if a.OnSuccess != nil {
		parts = append(parts, "on success → branch")
	}
	if a.OnFailure != nil {
		parts = append(parts, "on failure → branch")
	}

	return strings.Join(parts, ", ")
}

func (m *ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SUBJECT") + "\n\n")

	if m.subject != nil {
		name := m.subject.Name
		if name == "" {
			name = m.subject.ID
		}
		content.WriteString(name + "\n")
		content.WriteString(fmt.Sprintf("HP: %d/%d  AC: %d\n", m.subject.HP, m.subject.MaxHP, m.subject.AC))
		content.WriteString(fmt.Sprintf("Speed: %d ft\n", m.subject.Speed))
		if m.subject.Disposition != "" {
			content.WriteString("Disposition: " + titleCaser.String(string(m.subject.Disposition)) + "\n")
		}
		content.WriteString("\n")
	}

	content.WriteString(titleStyle.Render("ENGINE") + "\n\n")
	switch {
	case m.status == nil:
		content.WriteString("Status unknown\n\n")
	case m.status.Executing:
		content.WriteString(runningStyle.Render("EXECUTING") + "\n")
		content.WriteString("Subject: " + m.status.SubjectID + "\n")
		content.WriteString(fmt.Sprintf("Actions done: %d\n\n", m.status.ActionsCompleted))
	default:
		content.WriteString("Idle\n\n")
	}

	if m.err != nil {
		content.WriteString(errorStyle.Render(wordwrap.String("Error: "+m.err.Error(), m.metaViewport.Width)) + "\n\n")
	} else if m.notice != "" {
		content.WriteString(noticeStyle.Render(m.notice) + "\n\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• r: Run queue\n")
	content.WriteString("• s: Stop run\n")
	content.WriteString("• g: Refresh queue\n")
	content.WriteString("• e: Export to clipboard\n")
	content.WriteString("• q: Quit\n")

	return content.String()
}

func (m ConsoleUI) loadSubjects() tea.Cmd {
	return func() tea.Msg {
		subjects, err := listSubjects(m.client, m.config.APIBaseURL)
		return subjectsLoadedMsg{subjects, err}
	}
}

func (m ConsoleUI) pickSubject(subjectID string) tea.Cmd {
	return func() tea.Msg {
		subject, err := getSubject(m.client, m.config.APIBaseURL, subjectID)
		if err != nil {
			return subjectPickedMsg{nil, nil, err}
		}
		queue, err := getQueue(m.client, m.config.APIBaseURL, subjectID)
		return subjectPickedMsg{subject, queue, err}
	}
}

func (m ConsoleUI) refreshQueue() tea.Cmd {
	return func() tea.Msg {
		queue, err := getQueue(m.client, m.config.APIBaseURL, m.subjectID)
		return queueLoadedMsg{queue, err}
	}
}

func (m ConsoleUI) triggerRun() tea.Cmd {
	return func() tea.Msg {
		status, err := triggerRun(m.client, m.config.APIBaseURL, m.subjectID)
		return runTriggeredMsg{status, err}
	}
}

func (m ConsoleUI) stopRun() tea.Cmd {
	return func() tea.Msg {
		status, err := stopRun(m.client, m.config.APIBaseURL)
		return runTriggeredMsg{status, err}
	}
}

func (m ConsoleUI) pollStatus() tea.Cmd {
	return func() tea.Msg {
		status, err := getRunStatus(m.client, m.config.APIBaseURL)
		return statusMsg{status, err}
	}
}

func (m ConsoleUI) exportToClipboard() tea.Cmd {
	return func() tea.Msg {
		data, err := exportQueue(m.client, m.config.APIBaseURL, m.subjectID)
		if err != nil {
			return exportDoneMsg{err}
		}
		return exportDoneMsg{clipboard.WriteAll(string(data))}
	}
}

func (m ConsoleUI) updateSubjectModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case subjectsLoadedMsg:
		m.loadingSubjects = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.subjects = msg.subjects
		}

	case subjectPickedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.subject = msg.subject
			m.subjectID = msg.subject.ID
			m.queue = msg.queue
			m.showSubjectModal = false
			m.resize()
			m.writeQueueContent()
			m.metaViewport.SetContent(m.writeMetadata())
			m.ready = true
			return m, tea.Batch(m.pollStatus(), statusTick())
		}

	case tea.KeyMsg:
		if m.loadingSubjects {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.selectedSubject > 0 {
				m.selectedSubject--
			}
		case tea.KeyDown:
			if m.selectedSubject < len(m.subjects)-1 {
				m.selectedSubject++
			}
		case tea.KeyEnter:
			if len(m.subjects) > 0 {
				return m, m.pickSubject(m.subjects[m.selectedSubject])
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Console?"))
	content.WriteString("\n\n")
	content.WriteString("Any active run keeps executing on the server.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderSubjectModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loadingSubjects {
		content.WriteString(modalTitleStyle.Render("Loading Subjects..."))
		content.WriteString("\n\n")
		content.WriteString(promptStyle.Render("Fetching the subject library..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to load subjects: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else {
		content.WriteString(modalTitleStyle.Render("Select a Subject"))
		content.WriteString("\n\n")

		for i, subject := range m.subjects {
			if i == m.selectedSubject {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", subject)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", subject)))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showSubjectModal {
		return m.renderSubjectModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	queueWidth := int(float64(m.width)*0.65) - 4
	metaWidth := m.width - queueWidth - 6

	queuePanel := queuePanelStyle.Width(queueWidth).Height(m.height - 3).Render(
		m.queueViewport.View(),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, queuePanel, metaPanel)
}

// statusTick schedules the next engine status poll.
func statusTick() tea.Cmd {
	return tea.Tick(statusPollInterval, func(time.Time) tea.Msg {
		return statusTickMsg{}
	})
}
