package flow

import (
	"testing"
	"time"

	assert_ "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alanbriolat/download-prompt"
)

type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) RecordLaterUIEvent(event download_prompt.LaterUIEvent) {
	m.Called(event)
}

func (m *mockMetrics) RecordLaterChoice(choice download_prompt.SchedulingKind, totalBytes uint64) {
	m.Called(choice, totalBytes)
}

func (m *mockMetrics) RecordSuggestionShown() {
	m.Called()
}

func (m *mockMetrics) RecordSuggestionChoice(accepted bool) {
	m.Called(accepted)
}

const defaultPath = "/storage/Download/file.bin"

func testConfig() download_prompt.Config {
	config := download_prompt.DefaultConfig
	config.DefaultDirectory = "/storage/Download"
	return config
}

func testRequest() download_prompt.DownloadRequest {
	return download_prompt.DownloadRequest{
		TotalBytes:           10 * download_prompt.MB,
		ConnectionType:       download_prompt.ConnectionWifi,
		LocationDialogReason: download_prompt.LocationDialogDefault,
		SuggestedPath:        defaultPath,
		LaterDialogSupported: true,
	}
}

// ok checks an event was accepted, wrapping the handler's result pair.
func ok(t *testing.T) func([]Effect, error) []Effect {
	return func(effects []Effect, err error) []Effect {
		t.Helper()
		require.NoError(t, err)
		require.NotEmpty(t, effects)
		return effects
	}
}

func outcomeOf(t *testing.T, effects []Effect) download_prompt.Outcome {
	t.Helper()
	require.Len(t, effects, 1)
	emit, ok := effects[0].(EmitOutcome)
	require.True(t, ok, "expected EmitOutcome, got %v", effects[0])
	return emit.Outcome
}

func TestTransitions(t *testing.T) {
	assert := assert_.New(t)
	assert.True(CanTransition(StateInit, StateAwaitingLater))
	assert.True(CanTransition(StateAwaitingLocation, StateAwaitingLater))
	assert.False(CanTransition(StateAwaitingLater, StateAwaitingLater))
	assert.False(CanTransition(StateTerminal, StateInit))
	assert.False(CanTransition(State("bogus"), StateTerminal))
	assert.ErrorIs(ValidateTransition(StateTerminal, StateAwaitingLater), ErrInvalidTransition)
	assert.NoError(ValidateTransition(StateAwaitingLater, StateTerminal))
	for from, targets := range ValidTransitions {
		assert.NotContains(targets, StateInit, "nothing returns to init from %s", from)
	}
	assert.True(StateAwaitingLater.HasDialog())
	assert.False(StateTerminal.HasDialog())
}

func TestMachine_FirstDialog(t *testing.T) {
	tests := []struct {
		name      string
		enabled   bool
		supported bool
		expected  State
	}{
		{"later enabled and supported", true, true, StateAwaitingLater},
		{"later disabled", false, true, StateAwaitingLocation},
		{"later unsupported", true, false, StateAwaitingLocation},
		{"both off", false, false, StateAwaitingLocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert_.New(t)
			config := testConfig()
			config.LaterDialogEnabled = tt.enabled
			req := testRequest()
			req.LaterDialogSupported = tt.supported
			m := NewMachine(Options{Config: config})
			effects := ok(t)(m.Start(req))
			assert.Equal(tt.expected, m.State())
			require.Len(t, effects, 1)
			if tt.expected == StateAwaitingLater {
				assert.IsType(ShowLaterDialog{}, effects[0])
			} else {
				assert.IsType(ShowLocationDialog{}, effects[0])
			}
		})
	}
}

func TestMachine_DefaultReasonCompletesFromLater(t *testing.T) {
	assert := assert_.New(t)
	metrics := &mockMetrics{}
	metrics.On("RecordLaterUIEvent", download_prompt.LaterDialogShow).Once()
	metrics.On("RecordLaterChoice", download_prompt.ScheduleOnWifi, uint64(500*download_prompt.MB)).Once()

	req := testRequest()
	req.TotalBytes = 500 * download_prompt.MB
	req.ConnectionType = download_prompt.ConnectionCellular2G
	m := NewMachine(Options{Config: testConfig(), Metrics: metrics})

	effects := ok(t)(m.Start(req))
	require.Len(t, effects, 1)
	show := effects[0].(ShowLaterDialog)
	assert.Contains(show.Request.Subtitle, "2G")
	assert.Equal(download_prompt.Now(), show.Request.InitialChoice)

	outcome := outcomeOf(t, ok(t)(m.LaterChoice(download_prompt.OnWifi())))
	assert.Equal(download_prompt.Outcome{Path: defaultPath, OnlyOnWifi: true}, outcome)
	assert.True(outcome.StartTime.IsNone())
	assert.Equal(StateTerminal, m.State())
	assert.False(m.Active())
	metrics.AssertExpectations(t)
}

func TestMachine_NonDefaultReasonShowsLocationAfterLater(t *testing.T) {
	assert := assert_.New(t)
	req := testRequest()
	req.LocationDialogReason = download_prompt.LocationDialogNameConflict
	m := NewMachine(Options{Config: testConfig()})

	ok(t)(m.Start(req))
	at := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)
	effects := ok(t)(m.LaterChoice(download_prompt.At(at)))
	require.Len(t, effects, 1)
	show := effects[0].(ShowLocationDialog)
	assert.Equal(download_prompt.LocationDialogNameConflict, show.Request.Reason)
	assert.Equal(defaultPath, show.Request.SuggestedPath)

	outcome := outcomeOf(t, ok(t)(m.LocationPath("/sdcard/file (1).bin")))
	assert.Equal("/sdcard/file (1).bin", outcome.Path)
	assert.False(outcome.OnlyOnWifi)
	assert.Equal(at, outcome.StartTime.Unwrap())
}

func TestMachine_NameConflictCancel(t *testing.T) {
	assert := assert_.New(t)
	config := testConfig()
	config.LaterDialogEnabled = false
	req := testRequest()
	req.LocationDialogReason = download_prompt.LocationDialogNameConflict
	req.IsIncognito = true
	m := NewMachine(Options{Config: config})

	effects := ok(t)(m.Start(req))
	show := effects[0].(ShowLocationDialog)
	assert.True(show.Request.IsIncognito)
	assert.Equal(uint64(10*download_prompt.MB), show.Request.TotalBytes)

	assert.Equal(download_prompt.Cancelled(), outcomeOf(t, ok(t)(m.LocationCancel())))
}

func TestMachine_LaterCancel(t *testing.T) {
	metrics := &mockMetrics{}
	metrics.On("RecordLaterUIEvent", download_prompt.LaterDialogShow).Once()
	metrics.On("RecordLaterUIEvent", download_prompt.LaterDialogCancel).Once()
	m := NewMachine(Options{Config: testConfig(), Metrics: metrics})
	ok(t)(m.Start(testRequest()))
	assert_.Equal(t, download_prompt.Cancelled(), outcomeOf(t, ok(t)(m.LaterCancel())))
	metrics.AssertExpectations(t)
}

func TestMachine_EditLoop(t *testing.T) {
	assert := assert_.New(t)
	m := NewMachine(Options{Config: testConfig(), AllowEditLocation: true})
	ok(t)(m.Start(testRequest()))

	// Edit click carries the unconfirmed selection, and swaps dialogs
	effects := ok(t)(m.EditLocation(download_prompt.OnWifi()))
	require.Len(t, effects, 2)
	assert.Equal(DismissLaterDialog{}, effects[0])
	assert.IsType(ShowLocationDialog{}, effects[1])
	assert.True(m.Snapshot().EditRequested)
	assert.Equal(StateAwaitingLocation, m.State())

	// Picking a location goes back to the scheduling dialog with the prior selection
	effects = ok(t)(m.LocationPath("/sdcard/Download/file.bin"))
	require.Len(t, effects, 1)
	show := effects[0].(ShowLaterDialog)
	assert.Equal(download_prompt.OnWifi(), show.Request.InitialChoice)
	assert.True(show.Request.AllowEditLocation)
	assert.False(m.Snapshot().EditRequested)

	outcome := outcomeOf(t, ok(t)(m.LaterChoice(download_prompt.Now())))
	assert.Equal(download_prompt.Outcome{Path: "/sdcard/Download/file.bin"}, outcome)
}

func TestMachine_EditLoopCancelReturnsToLater(t *testing.T) {
	assert := assert_.New(t)
	m := NewMachine(Options{Config: testConfig(), AllowEditLocation: true})
	ok(t)(m.Start(testRequest()))
	ok(t)(m.EditLocation(download_prompt.OnWifi()))

	effects := ok(t)(m.LocationCancel())
	show := effects[0].(ShowLaterDialog)
	assert.Equal(download_prompt.OnWifi(), show.Request.InitialChoice)
	assert.Equal(defaultPath, m.Snapshot().Path)

	// A second cancel outside the edit loop ends the flow
	outcome := outcomeOf(t, ok(t)(m.LaterCancel()))
	assert.True(outcome.Cancelled)
}

func TestMachine_EditUnavailable(t *testing.T) {
	m := NewMachine(Options{Config: testConfig()})
	ok(t)(m.Start(testRequest()))
	_, err := m.EditLocation(download_prompt.Now())
	assert_.ErrorIs(t, err, ErrEditUnavailable)
	assert_.Equal(t, StateAwaitingLater, m.State())
}

func TestMachine_Suggestion(t *testing.T) {
	assert := assert_.New(t)
	metrics := &mockMetrics{}
	metrics.On("RecordSuggestionShown").Once()
	metrics.On("RecordLaterUIEvent", mock.Anything)
	metrics.On("RecordLaterChoice", mock.Anything, mock.Anything)
	metrics.On("RecordSuggestionChoice", true).Once()

	calls := 0
	m := NewMachine(Options{
		Config:  testConfig(),
		Metrics: metrics,
		ShouldSuggest: func(download_prompt.DownloadRequest) bool {
			calls++
			return true
		},
		AllowEditLocation: true,
	})
	ok(t)(m.Start(testRequest()))
	assert.Equal(download_prompt.LocationDialogLocationSuggestion, m.Snapshot().Request.LocationDialogReason)

	// Suggestion reason means the location dialog follows the scheduling choice
	effects := ok(t)(m.LaterChoice(download_prompt.Now()))
	show := effects[0].(ShowLocationDialog)
	assert.Equal(download_prompt.LocationDialogLocationSuggestion, show.Request.Reason)

	outcomeOf(t, ok(t)(m.LocationPath("/sdcard/Download/file.bin")))
	assert.Equal(1, calls)
	assert.Equal(download_prompt.LocationDialogLocationSuggestion, m.Snapshot().Request.LocationDialogReason)
	metrics.AssertExpectations(t)
}

func TestMachine_SuggestionDeclined(t *testing.T) {
	metrics := &mockMetrics{}
	metrics.On("RecordSuggestionShown").Once()
	metrics.On("RecordSuggestionChoice", false).Once()
	config := testConfig()
	config.LaterDialogEnabled = false
	m := NewMachine(Options{
		Config:        config,
		Metrics:       metrics,
		ShouldSuggest: func(download_prompt.DownloadRequest) bool { return true },
	})
	ok(t)(m.Start(testRequest()))
	// Renaming the file within the default directory is still declining
	outcomeOf(t, ok(t)(m.LocationPath("/storage/Download/renamed.bin")))
	metrics.AssertExpectations(t)
}

func TestMachine_SuggestionNotApplied(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		reason  download_prompt.LocationDialogReason
	}{
		{"feature disabled", false, download_prompt.LocationDialogDefault},
		{"non-default reason kept", true, download_prompt.LocationDialogLocationFull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testConfig()
			config.LocationSuggestionEnabled = tt.enabled
			req := testRequest()
			req.LocationDialogReason = tt.reason
			m := NewMachine(Options{
				Config:        config,
				ShouldSuggest: func(download_prompt.DownloadRequest) bool { return true },
			})
			ok(t)(m.Start(req))
			assert_.Equal(t, tt.reason, m.Snapshot().Request.LocationDialogReason)
		})
	}
}

func TestMachine_CancelBeforeStart(t *testing.T) {
	assert := assert_.New(t)
	m := NewMachine(Options{Config: testConfig()})
	outcome := outcomeOf(t, ok(t)(m.Cancel()))
	assert.True(outcome.Cancelled)

	_, err := m.Start(testRequest())
	assert.ErrorIs(err, ErrInactive)
	_, err = m.Cancel()
	assert.ErrorIs(err, ErrInactive)
}

func TestMachine_CancelClosesOpenDialog(t *testing.T) {
	assert := assert_.New(t)
	m := NewMachine(Options{Config: testConfig(), AllowEditLocation: true})
	ok(t)(m.Start(testRequest()))
	ok(t)(m.EditLocation(download_prompt.Now()))

	effects := ok(t)(m.Cancel())
	require.Len(t, effects, 2)
	assert.Equal(DismissLocationDialog{}, effects[0])
	assert.Equal(EmitOutcome{download_prompt.Cancelled()}, effects[1])
}

func TestMachine_EventsAfterTerminalIgnored(t *testing.T) {
	assert := assert_.New(t)
	m := NewMachine(Options{Config: testConfig(), AllowEditLocation: true})
	ok(t)(m.Start(testRequest()))
	outcomeOf(t, ok(t)(m.LaterChoice(download_prompt.Now())))

	for _, f := range []func() ([]Effect, error){
		func() ([]Effect, error) { return m.LaterChoice(download_prompt.Now()) },
		m.LaterCancel,
		func() ([]Effect, error) { return m.EditLocation(download_prompt.Now()) },
		func() ([]Effect, error) { return m.LocationPath("/x") },
		m.LocationCancel,
		m.Cancel,
	} {
		effects, err := f()
		assert.ErrorIs(err, ErrInactive)
		assert.Empty(effects)
	}
}

func TestMachine_UnexpectedEvent(t *testing.T) {
	m := NewMachine(Options{Config: testConfig()})
	ok(t)(m.Start(testRequest()))
	_, err := m.LocationPath("/x")
	assert_.ErrorIs(t, err, ErrUnexpectedEvent)
	assert_.True(t, m.Active())
}

func TestSubtitle(t *testing.T) {
	tests := []struct {
		name       string
		connection download_prompt.ConnectionType
		totalBytes uint64
		minSize    uint64
		contains   string
	}{
		{"2g", download_prompt.ConnectionCellular2G, 1, 200 * download_prompt.MB, "slow 2G"},
		{"bluetooth beats size", download_prompt.ConnectionBluetooth, download_prompt.GB, 200 * download_prompt.MB, "slow Bluetooth"},
		{"large file", download_prompt.ConnectionCellular4G, 500 * download_prompt.MB, 200 * download_prompt.MB, "500.00 MB"},
		{"exactly at threshold", download_prompt.ConnectionWifi, 200 * download_prompt.MB, 200 * download_prompt.MB, "200.00 MB"},
		{"below threshold", download_prompt.ConnectionWifi, 100 * download_prompt.MB, 200 * download_prompt.MB, ""},
		{"threshold disabled", download_prompt.ConnectionWifi, download_prompt.GB, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := download_prompt.DownloadRequest{ConnectionType: tt.connection, TotalBytes: tt.totalBytes}
			subtitle := Subtitle(req, tt.minSize)
			if tt.contains == "" {
				assert_.Empty(t, subtitle)
			} else {
				assert_.Contains(t, subtitle, tt.contains)
			}
		})
	}
}
