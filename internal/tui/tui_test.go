package tui

import (
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	assert_ "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanbriolat/download-prompt"
)

var testNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.Local)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestLaterModel_Choose(t *testing.T) {
	tests := []struct {
		name     string
		initial  download_prompt.SchedulingChoice
		keys     []string
		expected result
	}{
		{"default is now", download_prompt.Now(), []string{"enter"}, result{kind: resultChoice, choice: download_prompt.Now()}},
		{"initial choice kept", download_prompt.OnWifi(), []string{"enter"}, result{kind: resultChoice, choice: download_prompt.OnWifi()}},
		{"move down", download_prompt.Now(), []string{"down", "enter"}, result{kind: resultChoice, choice: download_prompt.OnWifi()}},
		{"cancel", download_prompt.OnWifi(), []string{"esc"}, result{kind: resultCancel}},
		{"edit carries selection", download_prompt.Now(), []string{"down", "e"}, result{kind: resultEdit, choice: download_prompt.OnWifi()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newLaterModel(download_prompt.LaterDialogRequest{
				InitialChoice:     tt.initial,
				AllowEditLocation: true,
			}, testNow)
			var cmd tea.Cmd
			for _, k := range tt.keys {
				_, cmd = m.Update(key(k))
			}
			assert_.True(t, isQuit(cmd))
			assert_.Equal(t, tt.expected, m.result())
		})
	}
}

func TestLaterModel_EditUnavailable(t *testing.T) {
	m := newLaterModel(download_prompt.LaterDialogRequest{}, testNow)
	_, cmd := m.Update(key("e"))
	assert_.False(t, isQuit(cmd))
	assert_.Equal(t, resultNone, m.result().kind)
	assert_.NotContains(t, m.View(), "edit location")
}

func TestLaterModel_PickTime(t *testing.T) {
	assert := assert_.New(t)
	m := newLaterModel(download_prompt.LaterDialogRequest{
		InitialChoice:      download_prompt.OnWifi(),
		ShowDateTimePicker: true,
		Subtitle:           "This file is large (500.00 MB).",
	}, testNow)
	assert.Contains(m.View(), "500.00 MB")

	m.Update(key("down"))
	m.Update(key("enter"))
	require.True(t, m.editing)
	// Defaults to the next full hour
	assert.Equal("2026-10-15 10:00", m.timeInput.Value())

	m.timeInput.SetValue("tomorrow")
	_, cmd := m.Update(key("enter"))
	assert.False(isQuit(cmd))
	assert.NotEmpty(m.errorMsg)

	m.timeInput.SetValue("2026-10-16 07:15")
	_, cmd = m.Update(key("enter"))
	assert.True(isQuit(cmd))
	assert.Equal(result{
		kind:   resultChoice,
		choice: download_prompt.At(time.Date(2026, 10, 16, 7, 15, 0, 0, time.Local)),
	}, m.result())
}

func TestLaterModel_TimeEscapeReturnsToList(t *testing.T) {
	m := newLaterModel(download_prompt.LaterDialogRequest{
		InitialChoice:      download_prompt.At(testNow),
		ShowDateTimePicker: true,
	}, testNow)
	m.Update(key("enter"))
	require.True(t, m.editing)
	_, cmd := m.Update(key("esc"))
	assert_.False(t, isQuit(cmd))
	assert_.False(t, m.editing)
}

func testDirectories() []download_prompt.DirectoryOption {
	return []download_prompt.DirectoryOption{
		{Name: "Internal", Location: "/storage/Download", AvailableSpace: download_prompt.GB},
		{Name: "SD card", Location: "/sdcard/Download", AvailableSpace: 50 * download_prompt.GB},
	}
}

func TestLocationModel_PickDirectory(t *testing.T) {
	m := newLocationModel(download_prompt.LocationDialogRequest{
		Reason:        download_prompt.LocationDialogNameConflict,
		SuggestedPath: "/storage/Download/file.bin",
	}, testDirectories())
	assert_.Contains(t, m.View(), "already exists")
	m.Update(key("down"))
	_, cmd := m.Update(key("enter"))
	assert_.True(t, isQuit(cmd))
	assert_.Equal(t, result{kind: resultPath, path: "/sdcard/Download/file.bin"}, m.result())
}

func TestLocationModel_SuggestionHighlightsRoomiest(t *testing.T) {
	m := newLocationModel(download_prompt.LocationDialogRequest{
		Reason:        download_prompt.LocationDialogLocationSuggestion,
		SuggestedPath: "/storage/Download/file.bin",
		IsIncognito:   true,
	}, testDirectories())
	assert_.Contains(t, m.View(), "Incognito")
	m.Update(key("enter"))
	assert_.Equal(t, "/sdcard/Download/file.bin", m.result().path)
}

func TestLocationModel_EditPath(t *testing.T) {
	assert := assert_.New(t)
	m := newLocationModel(download_prompt.LocationDialogRequest{SuggestedPath: "/storage/Download/file.bin"}, testDirectories())
	m.Update(key("tab"))
	require.False(t, m.onList)

	m.pathInput.SetValue("  ")
	_, cmd := m.Update(key("enter"))
	assert.False(isQuit(cmd))
	assert.NotEmpty(m.errorMsg)

	m.pathInput.SetValue("/tmp/renamed.bin")
	_, cmd = m.Update(key("enter"))
	assert.True(isQuit(cmd))
	assert.Equal(result{kind: resultPath, path: "/tmp/renamed.bin"}, m.result())
}

func TestLocationModel_NoDirectories(t *testing.T) {
	m := newLocationModel(download_prompt.LocationDialogRequest{SuggestedPath: "/dl/file.bin"}, nil)
	assert_.False(t, m.onList)
	m.Update(key("tab"))
	assert_.False(t, m.onList)
	_, cmd := m.Update(key("esc"))
	assert_.True(t, isQuit(cmd))
	assert_.Equal(t, resultCancel, m.result().kind)
}

// send delivers msg to the open dialog, standing in for a key press on the terminal.
func (r *runner) send(msg tea.Msg) {
	r.mu.Lock()
	run := r.current
	r.mu.Unlock()
	if run != nil {
		run.program.Send(msg)
	}
}

func newTestDialogs() *Dialogs {
	return New(download_prompt.StaticCatalog(testDirectories()),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)
}

func TestDialogs_Later(t *testing.T) {
	d := newTestDialogs()
	choices := make(chan download_prompt.SchedulingChoice, 1)
	err := d.Later().Show(context.Background(), download_prompt.LaterDialogRequest{InitialChoice: download_prompt.OnWifi()}, download_prompt.LaterDialogCallbacks{
		OnChoice:       func(c download_prompt.SchedulingChoice) { choices <- c },
		OnCancel:       func() { t.Error("unexpected cancel") },
		OnEditLocation: func(download_prompt.SchedulingChoice) { t.Error("unexpected edit") },
	})
	require.NoError(t, err)
	d.send(key("enter"))
	select {
	case c := <-choices:
		assert_.Equal(t, download_prompt.OnWifi(), c)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "no choice delivered")
	}
}

func TestDialogs_DismissAndBusy(t *testing.T) {
	d := newTestDialogs()
	fail := download_prompt.LaterDialogCallbacks{
		OnChoice:       func(download_prompt.SchedulingChoice) { t.Error("unexpected choice") },
		OnCancel:       func() { t.Error("unexpected cancel") },
		OnEditLocation: func(download_prompt.SchedulingChoice) { t.Error("unexpected edit") },
	}
	require.NoError(t, d.Later().Show(context.Background(), download_prompt.LaterDialogRequest{}, fail))

	err := d.Location().Show(context.Background(), download_prompt.LocationDialogRequest{SuggestedPath: "/dl/f"}, download_prompt.LocationDialogCallbacks{})
	assert_.ErrorIs(t, err, ErrBusy)

	// Dismissing the other kind of dialog does nothing
	d.Location().Dismiss()
	d.Later().Dismiss()

	paths := make(chan string, 1)
	require.NoError(t, d.Location().Show(context.Background(), download_prompt.LocationDialogRequest{SuggestedPath: "/dl/f"}, download_prompt.LocationDialogCallbacks{
		OnPath:   func(path string) { paths <- path },
		OnCancel: func() { t.Error("unexpected cancel") },
	}))
	d.send(key("enter"))
	select {
	case path := <-paths:
		assert_.Equal(t, "/storage/Download/f", path)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "no path delivered")
	}
}
