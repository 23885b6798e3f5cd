package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alanbriolat/download-prompt"
)

var reasonMessages = map[download_prompt.LocationDialogReason]string{
	download_prompt.LocationDialogFirstTime:          "Choose where to save downloads.",
	download_prompt.LocationDialogLocationFull:       "Not enough space in the download location.",
	download_prompt.LocationDialogLocationNotFound:   "The download location can't be found.",
	download_prompt.LocationDialogNameConflict:       "A file with this name already exists.",
	download_prompt.LocationDialogNameTooLong:        "The file name is too long.",
	download_prompt.LocationDialogNoWriteAccess:      "Can't write to the download location.",
	download_prompt.LocationDialogLocationSuggestion: "Not much space left here. Another location has more room.",
}

type directoryItem struct {
	dir download_prompt.DirectoryOption
}

func (i directoryItem) Title() string { return i.dir.Name }
func (i directoryItem) Description() string {
	return fmt.Sprintf("%s (%s free)", i.dir.Location, download_prompt.FormatBytes(i.dir.AvailableSpace))
}
func (i directoryItem) FilterValue() string { return i.dir.Name }

type locationModel struct {
	req       download_prompt.LocationDialogRequest
	dirs      list.Model
	pathInput textinput.Model
	// onList is true while the directory list has focus rather than the path input.
	onList   bool
	errorMsg string
	res      result
}

func newLocationModel(req download_prompt.LocationDialogRequest, dirs []download_prompt.DirectoryOption) *locationModel {
	items := make([]list.Item, len(dirs))
	for i, dir := range dirs {
		items[i] = directoryItem{dir}
	}
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(0)
	dirList := list.New(items, delegate, defaultWidth, defaultHeight)
	dirList.Title = "Save to"
	dirList.SetShowStatusBar(false)
	dirList.SetFilteringEnabled(false)
	dirList.SetShowHelp(false)
	// Highlight the directory with the most room when steering away from the default
	if req.Reason == download_prompt.LocationDialogLocationSuggestion {
		best := 0
		for i, dir := range dirs {
			if dir.AvailableSpace > dirs[best].AvailableSpace {
				best = i
			}
		}
		dirList.Select(best)
	}

	pathInput := textinput.New()
	pathInput.Placeholder = "path/to/file"
	pathInput.SetValue(req.SuggestedPath)

	m := &locationModel{
		req:       req,
		dirs:      dirList,
		pathInput: pathInput,
		onList:    len(dirs) > 0,
	}
	if !m.onList {
		m.pathInput.Focus()
	}
	return m
}

func (m *locationModel) result() result {
	return m.res
}

func (m *locationModel) Init() tea.Cmd {
	if !m.onList {
		return textinput.Blink
	}
	return nil
}

func (m *locationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.dirs.SetSize(msg.Width-2, msg.Height-10)
		m.pathInput.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m.finish(result{kind: resultCancel})
		case "tab":
			if len(m.dirs.Items()) == 0 {
				return m, nil
			}
			m.onList = !m.onList
			if m.onList {
				m.pathInput.Blur()
				return m, nil
			}
			return m, m.pathInput.Focus()
		case "enter":
			if m.onList {
				return m.pickDirectory()
			}
			return m.pickPath()
		}
	}

	var cmd tea.Cmd
	if m.onList {
		m.dirs, cmd = m.dirs.Update(msg)
	} else {
		m.pathInput, cmd = m.pathInput.Update(msg)
	}
	return m, cmd
}

// pickDirectory keeps the file name and moves it into the highlighted directory.
func (m *locationModel) pickDirectory() (tea.Model, tea.Cmd) {
	item, ok := m.dirs.SelectedItem().(directoryItem)
	if !ok {
		return m, nil
	}
	name := filepath.Base(strings.TrimSpace(m.pathInput.Value()))
	if name == "." || name == string(filepath.Separator) {
		name = filepath.Base(m.req.SuggestedPath)
	}
	return m.finish(result{kind: resultPath, path: filepath.Join(item.dir.Location, name)})
}

func (m *locationModel) pickPath() (tea.Model, tea.Cmd) {
	path := strings.TrimSpace(m.pathInput.Value())
	if path == "" {
		m.errorMsg = "enter a path to save to"
		return m, nil
	}
	return m.finish(result{kind: resultPath, path: path})
}

func (m *locationModel) finish(res result) (tea.Model, tea.Cmd) {
	m.res = res
	return m, tea.Quit
}

func (m *locationModel) View() string {
	var b strings.Builder
	if msg, ok := reasonMessages[m.req.Reason]; ok {
		b.WriteString(titleStyle.Render(msg))
		b.WriteString("\n")
	}
	if m.req.TotalBytes > 0 {
		b.WriteString(subtitleStyle.Render("File size: " + download_prompt.FormatBytes(m.req.TotalBytes)))
		b.WriteString("\n")
	}
	if m.req.IsIncognito {
		b.WriteString(warningStyle.Render("Incognito: the downloaded file will be visible to anyone using this device."))
		b.WriteString("\n")
	}
	if len(m.dirs.Items()) > 0 {
		b.WriteString(m.dirs.View())
		b.WriteString("\n")
	}
	b.WriteString(m.pathInput.View())
	if m.errorMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errorMsg))
	}
	hints := []string{"enter: save", "esc: cancel"}
	if len(m.dirs.Items()) > 0 {
		hints = append(hints, "tab: switch between list and path")
	}
	b.WriteString(hintStyle.Render(strings.Join(hints, " • ")))
	return b.String()
}
