// Package history keeps usage metrics of the prompt flow in a sqlite database.
package history

import (
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"moul.io/zapgorm2"

	"github.com/alanbriolat/download-prompt"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const queueSize = 256

var (
	ErrClosed = errors.New("history closed")
)

// Store records metrics without blocking the caller: records are queued and written by a background goroutine.
// Records that arrive while the queue is full are dropped.
type Store struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	now func() time.Time

	// mu guards sending on queue against Close.
	mu     sync.RWMutex
	closed bool
	queue  chan interface{}
	done   chan struct{}
}

var _ download_prompt.Metrics = (*Store)(nil)

func Open(path string) (*Store, error) {
	logger := zapgorm2.New(zap.L().Named("gorm"))
	logger.IgnoreRecordNotFoundError = true
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("failed to open %v: %w", path, err)
	}
	s := &Store{
		db:    db,
		log:   zap.S().Named("history"),
		queue: make(chan interface{}, queueSize),
		done:  make(chan struct{}),
		now:   time.Now,
	}
	if err := s.migrate(); err != nil {
		s.closeDB()
		return nil, err
	}
	go s.run()
	return s, nil
}

func (s *Store) migrate() error {
	s.log.Debug("running database migrations")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	fs, err := iofs.New(embedMigrations, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", fs, "sqlite3", driver)
	if err != nil {
		return err
	}
	err = m.Up()
	switch err {
	case nil:
		s.log.Debug("database migration complete")
	case migrate.ErrNoChange:
		s.log.Debug("no database migration required")
	default:
		return err
	}
	return nil
}

func (s *Store) run() {
	defer close(s.done)
	for item := range s.queue {
		switch item := item.(type) {
		case chan struct{}:
			close(item)
		default:
			if err := s.db.Create(item).Error; err != nil {
				s.log.Warnf("failed to record %T: %v", item, err)
			}
		}
	}
}

func (s *Store) enqueue(record interface{}) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.log.Debugf("store closed, dropped %T", record)
		return
	}
	select {
	case s.queue <- record:
	default:
		s.log.Warnf("queue full, dropped %T", record)
	}
}

// Sync waits until everything recorded so far has been written.
func (s *Store) Sync() {
	marker := make(chan struct{})
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return
	}
	s.queue <- marker
	s.mu.RUnlock()
	<-marker
}

// Close writes everything queued so far and closes the database. Records made afterwards are dropped.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()
	<-s.done
	return s.closeDB()
}

func (s *Store) closeDB() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) RecordLaterUIEvent(event download_prompt.LaterUIEvent) {
	s.enqueue(&LaterUIEvent{Event: event.String(), CreatedAt: s.now()})
}

func (s *Store) RecordLaterChoice(choice download_prompt.SchedulingKind, totalBytes uint64) {
	s.enqueue(&LaterChoice{Choice: choice.String(), TotalBytes: totalBytes, CreatedAt: s.now()})
}

func (s *Store) RecordSuggestionShown() {
	s.enqueue(&SuggestionEvent{Event: SuggestionShown, CreatedAt: s.now()})
}

func (s *Store) RecordSuggestionChoice(accepted bool) {
	event := SuggestionDeclined
	if accepted {
		event = SuggestionAccepted
	}
	s.enqueue(&SuggestionEvent{Event: event, CreatedAt: s.now()})
}

type countRow struct {
	Name  string
	Count int64
	Bytes uint64
}

// Stats summarises everything recorded since since (zero time for everything).
func (s *Store) Stats(since time.Time) (Stats, error) {
	stats := Stats{
		LaterUIEvents: make(map[string]int64),
		LaterChoices:  make(map[string]int64),
		LaterBytes:    make(map[string]uint64),
		Suggestions:   make(map[string]int64),
	}
	var rows []countRow
	if err := s.db.Model(&LaterUIEvent{}).Select("event AS name, count(*) AS count").
		Where("created_at >= ?", since).Group("event").Scan(&rows).Error; err != nil {
		return Stats{}, fmt.Errorf("failed to count later dialog events: %w", err)
	}
	for _, row := range rows {
		stats.LaterUIEvents[row.Name] = row.Count
	}
	rows = nil
	if err := s.db.Model(&LaterChoice{}).Select("choice AS name, count(*) AS count, sum(total_bytes) AS bytes").
		Where("created_at >= ?", since).Group("choice").Scan(&rows).Error; err != nil {
		return Stats{}, fmt.Errorf("failed to count later dialog choices: %w", err)
	}
	for _, row := range rows {
		stats.LaterChoices[row.Name] = row.Count
		stats.LaterBytes[row.Name] = row.Bytes
	}
	rows = nil
	if err := s.db.Model(&SuggestionEvent{}).Select("event AS name, count(*) AS count").
		Where("created_at >= ?", since).Group("event").Scan(&rows).Error; err != nil {
		return Stats{}, fmt.Errorf("failed to count suggestion events: %w", err)
	}
	for _, row := range rows {
		stats.Suggestions[row.Name] = row.Count
	}
	return stats, nil
}
