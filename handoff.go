package download_prompt

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/alanbriolat/download-prompt/generic"
)

var (
	ErrDuplicateHandler = errors.New("duplicate handler name")
	ErrInvalidHandler   = errors.New("invalid handler")
	ErrNoMatch          = errors.New("no handler matched the request")
	ErrUnknownHandler   = errors.New("unknown handler")
)

var (
	PriorityHighest int16 = math.MinInt16
	PriorityDefault int16 = 0
	PriorityLowest  int16 = math.MaxInt16
)

// HandoffPolicy is an optional pre-check run before any dialog: if it handles the request, the download is passed to
// something other than the backend and the session ends without showing UI.
type HandoffPolicy interface {
	TryHandle(ctx context.Context, req DownloadRequest) bool
}

// A Handoff is a matched request that can be launched in an external program.
type Handoff interface {
	Launch(ctx context.Context) error
	String() string
}

// MatchFunc returns a Handoff if it can take the request, or an error explaining why not.
type MatchFunc = func(DownloadRequest) (Handoff, error)

// A Handler matches requests it knows how to pass on.
type Handler struct {
	Name  string
	Match MatchFunc
	// Priority of the handler, lower (including negative) means matching earlier.
	Priority int16
}

func (h Handler) WithPriority(priority int16) Handler {
	h.Priority = priority
	return h
}

// HandoffRegistry is a collection of Handler instances tried in priority order. The zero value is an empty registry
// that handles nothing.
type HandoffRegistry struct {
	handlers   []*Handler
	handlerMap map[string]*Handler
}

// Add registers a Handler. Handler.Name and Handler.Match must be set, and Handler.Name must be unique.
func (r *HandoffRegistry) Add(h Handler) error {
	if r.handlerMap == nil {
		r.handlerMap = make(map[string]*Handler)
	}
	if h.Name == "" || h.Match == nil {
		return ErrInvalidHandler
	}
	if _, ok := r.handlerMap[h.Name]; ok {
		return ErrDuplicateHandler
	}
	r.handlerMap[h.Name] = &h
	r.handlers = append(r.handlers, r.handlerMap[h.Name])
	r.sortByPriority()
	return nil
}

// MustAdd wraps Add but panics if there is an error.
func (r *HandoffRegistry) MustAdd(h Handler) {
	generic.Unwrap_(r.Add(h))
}

// List returns the names of registered handlers in priority order.
func (r *HandoffRegistry) List() []string {
	names := make([]string, 0, len(r.handlers))
	for _, h := range r.handlers {
		names = append(names, h.Name)
	}
	return names
}

// SetPriority adjusts the priority of a named Handler.
func (r *HandoffRegistry) SetPriority(name string, priority int16) error {
	h, ok := r.handlerMap[name]
	if !ok {
		return ErrUnknownHandler
	}
	h.Priority = priority
	r.sortByPriority()
	return nil
}

// Match tries each Handler in priority order. If none matches, the error lists why each one declined.
func (r *HandoffRegistry) Match(req DownloadRequest) (Handoff, string, error) {
	var result error
	for _, h := range r.handlers {
		handoff, err := h.Match(req)
		if handoff != nil && err == nil {
			return handoff, h.Name, nil
		}
		if err == nil {
			err = ErrNoMatch
		}
		result = multierror.Append(result, multierror.Prefix(err, fmt.Sprintf("[%v]", h.Name)))
	}
	if result == nil {
		result = ErrNoMatch
	}
	return nil, "", result
}

// TryHandle launches the first matching handoff. A failed launch counts as not handled, so the normal flow continues.
func (r *HandoffRegistry) TryHandle(ctx context.Context, req DownloadRequest) bool {
	log := Logger(ctx).Sugar().Named("handoff")
	handoff, name, err := r.Match(req)
	if err != nil {
		log.Debugf("no handoff: %v", err)
		return false
	}
	if err := handoff.Launch(ctx); err != nil {
		log.Warnf("[%v] failed to launch %v: %v", name, handoff, err)
		return false
	}
	log.Infof("[%v] handed off %v", name, handoff)
	return true
}

func (r *HandoffRegistry) sortByPriority() {
	sort.SliceStable(r.handlers, func(i, j int) bool {
		return r.handlers[i].Priority < r.handlers[j].Priority
	})
}
