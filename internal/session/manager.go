package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/alanbriolat/download-prompt"
	"github.com/alanbriolat/download-prompt/internal/pubsub"
	"github.com/alanbriolat/download-prompt/internal/suggest"
	"github.com/alanbriolat/download-prompt/internal/sync_"
)

var (
	ErrManagerClosed    = errors.New("manager closed")
	ErrNoDialogService  = errors.New("dialog service not configured")
	ErrDuplicateSession = errors.New("duplicate session ID")
)

type Config struct {
	Prompt   download_prompt.Config
	Database Database
	Catalog  download_prompt.DirectoryCatalog
	Metrics  download_prompt.Metrics
	// Handoff is consulted before any dialog is shown; nil never hands off.
	Handoff        download_prompt.HandoffPolicy
	Suggest        suggest.Policy
	Host           download_prompt.Host
	LaterDialog    download_prompt.LaterDialogService
	LocationDialog download_prompt.LocationDialogService
}

// DefaultConfig has everything except the dialog services, which must always be supplied.
var DefaultConfig = Config{
	Prompt:   download_prompt.DefaultConfig,
	Database: NilDatabase{},
	Catalog:  download_prompt.StaticCatalog(nil),
	Metrics:  download_prompt.NilMetrics{},
	Host:     download_prompt.AlwaysAlive,
}

type sessionsByID = map[SessionID]*Session

// Manager runs any number of independent prompt sessions and publishes their events.
type Manager struct {
	config    Config
	prompt    *sync_.RWMutexed[download_prompt.Config]
	ctx       context.Context
	ctxCancel context.CancelFunc
	log       *zap.SugaredLogger

	sessions *sync_.RWMutexed[sessionsByID]
	events   pubsub.Publisher[Event]
}

func New(config Config, ctx context.Context) (*Manager, error) {
	if config.LaterDialog == nil || config.LocationDialog == nil {
		return nil, ErrNoDialogService
	}
	if config.Database == nil {
		config.Database = DefaultConfig.Database
	}
	if config.Catalog == nil {
		config.Catalog = DefaultConfig.Catalog
	}
	if config.Metrics == nil {
		config.Metrics = DefaultConfig.Metrics
	}
	if config.Host == nil {
		config.Host = DefaultConfig.Host
	}
	ctx, cancel := context.WithCancel(ctx)
	m := &Manager{
		config:    config,
		prompt:    sync_.NewRWMutexed(config.Prompt),
		ctx:       ctx,
		ctxCancel: cancel,
		log:       zap.S().Named("manager"),

		sessions: sync_.NewRWMutexed(make(sessionsByID)),
		events:   pubsub.NewPublisher[Event](),
	}
	return m, nil
}

func (m *Manager) Subscribe() (pubsub.ReceiverCloser[Event], error) {
	return m.events.Subscribe()
}

// SubscribeFiltered is Subscribe, receiving only the events accepted by filter.
func (m *Manager) SubscribeFiltered(filter func(Event) bool) (pubsub.ReceiverCloser[Event], error) {
	return m.events.SubscribeFiltered(filter)
}

// SetPromptConfig replaces the configuration used by sessions started from now on.
func (m *Manager) SetPromptConfig(config download_prompt.Config) {
	m.prompt.Set(config)
	m.log.Debugf("prompt config updated: %+v", config)
}

func (m *Manager) PromptConfig() download_prompt.Config {
	return m.prompt.Get()
}

// Start validates req and runs a new session for it. Exactly one outcome will be delivered to sink, unless an error
// is returned, in which case no session exists and sink is never called.
func (m *Manager) Start(ctx context.Context, req download_prompt.DownloadRequest, sink download_prompt.OutcomeSink) (*Session, error) {
	select {
	case <-m.ctx.Done():
		return nil, ErrManagerClosed
	default:
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	config := m.config
	config.Prompt = m.prompt.Get()
	if prefs, err := m.config.Database.ReadPreferences(); err != nil {
		m.log.Warnf("failed to read preferences, using defaults: %v", err)
	} else {
		config.Prompt = prefs.Apply(config.Prompt)
	}

	s := newSession(m, config, ctx, sink)
	err := m.sessions.Locked(func(sessions *sessionsByID) error {
		if *sessions == nil {
			return ErrManagerClosed
		} else if _, ok := (*sessions)[s.ID]; ok {
			return ErrDuplicateSession
		}
		(*sessions)[s.ID] = s
		return nil
	})
	if err != nil {
		s.discard()
		return nil, err
	}
	_ = s.events.AddSubscriber(m.events, false)
	m.log.Debugf("session added: %v", s)
	s.events.Send(SessionStarted{sessionEvent{s}, req})
	go s.run(req)
	return s, nil
}

func (m *Manager) ListSessions() []*Session {
	var list []*Session
	_ = m.sessions.RLocked(func(sessions *sessionsByID) error {
		list = make([]*Session, 0, len(*sessions))
		for _, s := range *sessions {
			list = append(list, s)
		}
		return nil
	})
	return list
}

func (m *Manager) GetSession(id SessionID) (s *Session) {
	_ = m.sessions.RLocked(func(sessions *sessionsByID) error {
		s = (*sessions)[id]
		return nil
	})
	return s
}

func (m *Manager) remove(s *Session) {
	_ = m.sessions.Locked(func(sessions *sessionsByID) error {
		delete(*sessions, s.ID)
		return nil
	})
}

// Close tears down every session, each emitting Cancelled if it had not finished, then stops publishing events. An
// error lists the sessions that did not stop before ctx ended.
func (m *Manager) Close(ctx context.Context) error {
	m.ctxCancel()
	sessions := m.sessions.Swap(nil)
	var mu sync.Mutex
	var result error
	var wg sync.WaitGroup
	wg.Add(len(sessions))
	for _, s := range sessions {
		go func(s *Session) {
			defer wg.Done()
			if err := s.Close(ctx); err != nil {
				mu.Lock()
				result = multierror.Append(result, fmt.Errorf("session %v: %w", s.ID, err))
				mu.Unlock()
			}
		}(s)
	}
	wg.Wait()
	m.events.Close()
	return result
}
