package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alanbriolat/download-prompt"
	"github.com/alanbriolat/download-prompt/generic"
	"github.com/alanbriolat/download-prompt/internal/flow"
	"github.com/alanbriolat/download-prompt/internal/lpc"
	"github.com/alanbriolat/download-prompt/internal/pubsub"
	"github.com/alanbriolat/download-prompt/internal/sync_"
)

type SessionID string

func NewSessionID() SessionID {
	return SessionID(generic.Unwrap(uuid.NewRandom()).String())
}

type eventKind int

const (
	laterChoice eventKind = iota
	laterCancel
	laterEdit
	locationPath
	locationCancel
)

func (k eventKind) String() string {
	switch k {
	case laterChoice:
		return "later_choice"
	case laterCancel:
		return "later_cancel"
	case laterEdit:
		return "later_edit"
	case locationPath:
		return "location_path"
	case locationCancel:
		return "location_cancel"
	default:
		return fmt.Sprintf("eventKind(%d)", int(k))
	}
}

// dialogEvent is a dialog result, tagged with the dialog visit it belongs to.
type dialogEvent struct {
	kind   eventKind
	visit  uint64
	choice download_prompt.SchedulingChoice
	path   string
}

type snapshotCommand = lpc.Command[struct{}, flow.Snapshot]

// Session is one run of the prompt flow for one download request.
type Session struct {
	ID SessionID

	manager   *Manager
	config    Config
	sink      download_prompt.OutcomeSink
	hostCtx   context.Context
	ctx       context.Context
	ctxCancel context.CancelFunc
	log       *zap.SugaredLogger

	events pubsub.Publisher[Event]

	// Owned by the run goroutine.
	machine *flow.Machine
	visit   uint64

	emitted         sync_.Event
	outcome         *sync_.RWMutexed[generic.Option[download_prompt.Outcome]]
	final           *sync_.RWMutexed[flow.Snapshot]
	done            chan struct{}
	inbox           chan dialogEvent
	snapshotCommand chan *snapshotCommand
}

func newSession(m *Manager, config Config, hostCtx context.Context, sink download_prompt.OutcomeSink) *Session {
	ctx, cancel := context.WithCancel(m.ctx)
	id := NewSessionID()
	s := &Session{
		ID: id,

		manager:   m,
		config:    config,
		sink:      sink,
		hostCtx:   hostCtx,
		ctx:       ctx,
		ctxCancel: cancel,
		log:       zap.S().Named("session").With("session_id", id),

		events: pubsub.NewPublisher[Event](),

		outcome:         sync_.NewRWMutexed(generic.None[download_prompt.Outcome]()),
		final:           sync_.NewRWMutexed(flow.Snapshot{State: flow.StateInit, Active: true}),
		done:            make(chan struct{}),
		inbox:           make(chan dialogEvent, pubsub.DefaultSubscriberBufSize),
		snapshotCommand: make(chan *snapshotCommand),
	}
	return s
}

func (s *Session) String() string {
	return fmt.Sprintf("Session{ID:\"%s\"}", s.ID)
}

// discard releases a session that was never run.
func (s *Session) discard() {
	s.ctxCancel()
	s.events.Close()
}

func (s *Session) Subscribe() (pubsub.ReceiverCloser[Event], error) {
	return s.events.Subscribe()
}

// Snapshot returns the current flow state, or the final state once the session has ended.
func (s *Session) Snapshot(ctx context.Context) (flow.Snapshot, error) {
	cmd := lpc.NewCommand[struct{}, flow.Snapshot](struct{}{})
	select {
	case s.snapshotCommand <- cmd:
		return cmd.Wait(ctx)
	case <-s.done:
		return s.final.Get(), nil
	case <-ctx.Done():
		return flow.Snapshot{}, ctx.Err()
	}
}

// Outcome is Some once the session has delivered its outcome.
func (s *Session) Outcome() generic.Option[download_prompt.Outcome] {
	return s.outcome.Get()
}

// Destroy reports that the host surface went away. A session that has not finished emits Cancelled.
func (s *Session) Destroy() {
	s.ctxCancel()
}

// Close is Destroy, waiting until the session has finished.
func (s *Session) Close(ctx context.Context) error {
	s.ctxCancel()
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) dialogContext() context.Context {
	return download_prompt.WithLogger(s.ctx, s.log.Desugar())
}
