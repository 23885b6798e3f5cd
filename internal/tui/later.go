package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alanbriolat/download-prompt"
)

const timeLayout = "2006-01-02 15:04"

type choiceItem struct {
	kind        download_prompt.SchedulingKind
	title       string
	description string
}

func (i choiceItem) Title() string       { return i.title }
func (i choiceItem) Description() string { return i.description }
func (i choiceItem) FilterValue() string { return i.title }

type laterModel struct {
	req       download_prompt.LaterDialogRequest
	choices   list.Model
	timeInput textinput.Model
	editing   bool
	errorMsg  string
	res       result
}

func newLaterModel(req download_prompt.LaterDialogRequest, now time.Time) *laterModel {
	items := []list.Item{
		choiceItem{download_prompt.ScheduleNow, "Download now", "Start the download straight away"},
		choiceItem{download_prompt.ScheduleOnWifi, "On Wi-Fi", "Wait until you're connected to Wi-Fi"},
	}
	if req.ShowDateTimePicker {
		items = append(items, choiceItem{download_prompt.ScheduleAt, "Choose a time", "Start at a date and time you pick"})
	}
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(0)
	choices := list.New(items, delegate, defaultWidth, defaultHeight)
	choices.Title = "Download later?"
	choices.SetShowStatusBar(false)
	choices.SetFilteringEnabled(false)
	choices.SetShowHelp(false)
	for i, item := range items {
		if item.(choiceItem).kind == req.InitialChoice.Kind {
			choices.Select(i)
		}
	}

	timeInput := textinput.New()
	timeInput.Placeholder = timeLayout
	timeInput.CharLimit = len(timeLayout)
	start := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location()).Add(time.Hour)
	if req.InitialChoice.Kind == download_prompt.ScheduleAt {
		start = req.InitialChoice.At
	}
	timeInput.SetValue(start.Format(timeLayout))

	return &laterModel{
		req:       req,
		choices:   choices,
		timeInput: timeInput,
	}
}

func (m *laterModel) result() result {
	return m.res
}

func (m *laterModel) Init() tea.Cmd {
	return nil
}

func (m *laterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.choices.SetSize(msg.Width-2, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateTime(msg)
		}
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m.finish(result{kind: resultCancel})
		case "enter":
			if m.selected() == download_prompt.ScheduleAt {
				m.editing = true
				return m, m.timeInput.Focus()
			}
			return m.finish(result{kind: resultChoice, choice: m.current()})
		case "e":
			if m.req.AllowEditLocation {
				return m.finish(result{kind: resultEdit, choice: m.current()})
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.choices, cmd = m.choices.Update(msg)
	return m, cmd
}

func (m *laterModel) updateTime(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.finish(result{kind: resultCancel})
	case "esc":
		m.editing = false
		m.errorMsg = ""
		m.timeInput.Blur()
		return m, nil
	case "enter":
		at, err := m.parseTime()
		if err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		return m.finish(result{kind: resultChoice, choice: download_prompt.At(at)})
	}
	var cmd tea.Cmd
	m.timeInput, cmd = m.timeInput.Update(msg)
	return m, cmd
}

func (m *laterModel) finish(res result) (tea.Model, tea.Cmd) {
	m.res = res
	return m, tea.Quit
}

func (m *laterModel) selected() download_prompt.SchedulingKind {
	if item, ok := m.choices.SelectedItem().(choiceItem); ok {
		return item.kind
	}
	return download_prompt.ScheduleNow
}

// current is the highlighted choice, which is what "edit location" carries over.
func (m *laterModel) current() download_prompt.SchedulingChoice {
	switch m.selected() {
	case download_prompt.ScheduleOnWifi:
		return download_prompt.OnWifi()
	case download_prompt.ScheduleAt:
		if at, err := m.parseTime(); err == nil {
			return download_prompt.At(at)
		}
		return download_prompt.Now()
	default:
		return download_prompt.Now()
	}
}

func (m *laterModel) parseTime() (time.Time, error) {
	at, err := time.ParseInLocation(timeLayout, strings.TrimSpace(m.timeInput.Value()), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("enter a time like %s", timeLayout)
	}
	return at, nil
}

func (m *laterModel) View() string {
	var b strings.Builder
	if m.req.Subtitle != "" {
		b.WriteString(subtitleStyle.Render(m.req.Subtitle))
		b.WriteString("\n\n")
	}
	if m.editing {
		b.WriteString(titleStyle.Render("Start the download at"))
		b.WriteString("\n")
		b.WriteString(m.timeInput.View())
	} else {
		b.WriteString(m.choices.View())
	}
	if m.errorMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errorMsg))
	}
	hints := []string{"enter: confirm", "esc: cancel"}
	if m.req.AllowEditLocation && !m.editing {
		hints = append(hints, "e: edit location")
	}
	if m.req.PromptStatus == download_prompt.PromptStatusShowInitial {
		hints = append(hints, "stop asking: download-prompt prefs set --prompt-status dont_show")
	}
	b.WriteString(hintStyle.Render(strings.Join(hints, " • ")))
	return b.String()
}
