package session

import (
	"github.com/alanbriolat/download-prompt"
	"github.com/alanbriolat/download-prompt/generic"
	"github.com/alanbriolat/download-prompt/internal/flow"
	"github.com/alanbriolat/download-prompt/internal/sync_"
)

func (s *Session) run(req download_prompt.DownloadRequest) {
	defer s.finish()
	s.machine = s.newMachine()
	s.start(req)

	for s.machine.Active() {
		select {
		case <-s.ctx.Done():
			s.teardown()
		case <-s.hostCtx.Done():
			s.teardown()
		case cmd := <-s.snapshotCommand:
			_ = cmd.Respond(s.machine.Snapshot())
		case ev := <-s.inbox:
			s.handle(ev)
		}
	}
}

func (s *Session) newMachine() *flow.Machine {
	dirs, err := s.config.Catalog.Directories(s.ctx)
	if err != nil {
		s.log.Warnf("problem listing directories: %v", err)
	}
	prompt := s.config.Prompt
	policy := s.config.Suggest
	return flow.NewMachine(flow.Options{
		Config:            prompt,
		Metrics:           s.config.Metrics,
		AllowEditLocation: len(dirs) > 1,
		ShouldSuggest: func(req download_prompt.DownloadRequest) bool {
			return policy.ShouldSuggest(dirs, prompt.DefaultDirectory, req.TotalBytes)
		},
	})
}

func (s *Session) start(req download_prompt.DownloadRequest) {
	switch {
	case s.ctx.Err() != nil || s.hostCtx.Err() != nil:
		s.teardown()
	case !s.config.Host.Alive():
		s.log.Info("host is gone, cancelling")
		s.teardown()
	case s.config.Handoff != nil && s.config.Handoff.TryHandle(s.dialogContext(), req):
		s.log.Info("download handed off, cancelling")
		s.teardown()
	default:
		s.update("start", func() ([]flow.Effect, error) {
			return s.machine.Start(req)
		})
	}
}

func (s *Session) teardown() {
	s.update("teardown", s.machine.Cancel)
}

func (s *Session) finish() {
	s.final.Set(s.machine.Snapshot())
	s.manager.remove(s)
	s.ctxCancel()
	s.events.Send(SessionRemoved{sessionEvent{s}})
	s.events.Close()
	close(s.done)
}

// update runs one machine event to completion: publishing the state change and carrying out its effects.
func (s *Session) update(name string, f func() ([]flow.Effect, error)) {
	old := s.machine.Snapshot()
	effects, err := f()
	if err != nil {
		s.log.Debugf("ignored %s: %v", name, err)
		return
	}
	if next := s.machine.Snapshot(); next != old {
		s.log.Debugf("%s: %s -> %s", name, old.State, next.State)
		s.final.Set(next)
		s.events.Send(FlowUpdated{sessionEvent{s}, old, next})
	}
	s.apply(effects)
}

func (s *Session) apply(effects []flow.Effect) {
	for _, effect := range effects {
		switch e := effect.(type) {
		case flow.ShowLaterDialog:
			if !s.checkHost() {
				return
			}
			s.showLater(e.Request)
		case flow.ShowLocationDialog:
			if !s.checkHost() {
				return
			}
			s.showLocation(e.Request)
		case flow.DismissLaterDialog:
			s.config.LaterDialog.Dismiss()
		case flow.DismissLocationDialog:
			s.config.LocationDialog.Dismiss()
		case flow.EmitOutcome:
			s.emit(e.Outcome)
		default:
			s.log.Errorf("unhandled effect: %v", effect)
		}
	}
}

// checkHost cancels the flow if the host went away since the last dialog.
func (s *Session) checkHost() bool {
	if s.config.Host.Alive() {
		return true
	}
	s.log.Info("host is gone, cancelling")
	s.teardown()
	return false
}

// newVisit starts a dialog visit, returning a function that queues the first result of the visit and drops the rest.
func (s *Session) newVisit() (uint64, *sync_.Event, func(dialogEvent)) {
	s.visit++
	visit := s.visit
	var once sync_.Event
	post := func(ev dialogEvent) {
		if !once.Set() {
			s.log.Debugf("ignored repeated %v from dialog visit %d", ev.kind, visit)
			return
		}
		ev.visit = visit
		select {
		case s.inbox <- ev:
		case <-s.done:
		}
	}
	return visit, &once, post
}

func (s *Session) showLater(req download_prompt.LaterDialogRequest) {
	visit, once, post := s.newVisit()
	cb := download_prompt.LaterDialogCallbacks{
		OnChoice: func(choice download_prompt.SchedulingChoice) {
			post(dialogEvent{kind: laterChoice, choice: choice})
		},
		OnCancel: func() {
			post(dialogEvent{kind: laterCancel})
		},
		OnEditLocation: func(current download_prompt.SchedulingChoice) {
			// The dialog stays open, so this must not use up the visit's one result
			if !req.AllowEditLocation {
				s.log.Debugf("ignored %v from dialog visit %d: edit location not offered", laterEdit, visit)
				return
			}
			post(dialogEvent{kind: laterEdit, choice: current})
		},
	}
	if err := s.config.LaterDialog.Show(s.dialogContext(), req, cb); err != nil {
		s.log.Warnf("failed to show later dialog: %v", err)
		if once.Set() {
			s.handle(dialogEvent{kind: laterCancel, visit: visit})
		}
		return
	}
	s.events.Send(DialogShown{sessionEvent{s}, DialogLater})
}

func (s *Session) showLocation(req download_prompt.LocationDialogRequest) {
	visit, once, post := s.newVisit()
	cb := download_prompt.LocationDialogCallbacks{
		OnPath: func(path string) {
			post(dialogEvent{kind: locationPath, path: path})
		},
		OnCancel: func() {
			post(dialogEvent{kind: locationCancel})
		},
	}
	if err := s.config.LocationDialog.Show(s.dialogContext(), req, cb); err != nil {
		s.log.Warnf("failed to show location dialog: %v", err)
		if once.Set() {
			s.handle(dialogEvent{kind: locationCancel, visit: visit})
		}
		return
	}
	s.events.Send(DialogShown{sessionEvent{s}, DialogLocation})
}

func (s *Session) handle(ev dialogEvent) {
	if ev.visit != s.visit {
		s.log.Debugf("ignored stale %v from dialog visit %d", ev.kind, ev.visit)
		return
	}
	switch ev.kind {
	case laterChoice:
		s.update(ev.kind.String(), func() ([]flow.Effect, error) {
			return s.machine.LaterChoice(ev.choice)
		})
	case laterCancel:
		s.update(ev.kind.String(), s.machine.LaterCancel)
	case laterEdit:
		s.update(ev.kind.String(), func() ([]flow.Effect, error) {
			return s.machine.EditLocation(ev.choice)
		})
	case locationPath:
		s.update(ev.kind.String(), func() ([]flow.Effect, error) {
			return s.machine.LocationPath(ev.path)
		})
	case locationCancel:
		s.update(ev.kind.String(), s.machine.LocationCancel)
	}
}

// emit delivers the outcome, at most once.
func (s *Session) emit(outcome download_prompt.Outcome) {
	if !s.emitted.Set() {
		s.log.Debugf("ignored second outcome: %v", outcome)
		return
	}
	s.outcome.Set(generic.Some(outcome))
	s.log.Infof("outcome: %v", outcome)
	outcome.Deliver(s.sink)
	s.events.Send(OutcomeEmitted{sessionEvent{s}, outcome})
}
