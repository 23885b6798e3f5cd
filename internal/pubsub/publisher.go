package pubsub

import (
	"errors"
	"sync"
)

const (
	DefaultPublisherBufSize  = 16
	DefaultSubscriberBufSize = 16
)

var (
	ErrPublisherClosed = errors.New("publisher closed")
)

type Publisher[T any] interface {
	SenderCloser[T]
	// AddSubscriber registers an existing sender; if close is true it is closed along with the publisher.
	AddSubscriber(s SenderCloser[T], close bool) error
	Subscribe() (ReceiverCloser[T], error)
	SubscribeFiltered(filter func(T) bool) (ReceiverCloser[T], error)
}

type subscriber[T any] struct {
	SenderCloser[T]
	close bool
}

type publisher[T any] struct {
	mu          sync.Mutex
	ch          Channel[T]
	running     sync.WaitGroup // Goroutines in progress
	pending     sync.WaitGroup // Messages not yet sent to all subscribers
	subscribers map[SenderCloser[T]]subscriber[T]
	closed      bool
}

func NewPublisher[T any]() Publisher[T] {
	return NewPublisherBufSize[T](DefaultPublisherBufSize)
}

func NewPublisherBufSize[T any](bufSize int) Publisher[T] {
	p := &publisher[T]{
		ch:          NewChannel[T](bufSize),
		subscribers: make(map[SenderCloser[T]]subscriber[T]),
	}
	p.running.Add(1)
	go func() {
		defer p.running.Done()
		for v := range p.ch.Receive() {
			// Snapshot the subscribers so that adding new ones is never blocked on a slow receiver
			for _, s := range p.snapshot() {
				if ok := s.Send(v); !ok {
					p.unsubscribe(s)
				}
			}
			p.pending.Done()
		}
	}()
	return p
}

// Send will publish the value to all subscribers.
func (p *publisher[T]) Send(msg T) bool {
	p.pending.Add(1)
	if ok := p.ch.Send(msg); !ok {
		// Message was not sent, so don't wait for it
		p.pending.Done()
		return false
	}
	return true
}

func (p *publisher[T]) Subscribe() (ReceiverCloser[T], error) {
	return p.SubscribeFiltered(nil)
}

// SubscribeFiltered creates a new subscriber that only receives messages accepted by filter (nil accepts everything).
func (p *publisher[T]) SubscribeFiltered(filter func(T) bool) (ReceiverCloser[T], error) {
	c := NewChannel[T](DefaultSubscriberBufSize)
	if err := p.AddSubscriber(NewFilteredSender[T](c, filter), true); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *publisher[T]) AddSubscriber(s SenderCloser[T], close bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}
	p.subscribers[s] = subscriber[T]{SenderCloser: s, close: close}
	return nil
}

func (p *publisher[T]) snapshot() []SenderCloser[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	list := make([]SenderCloser[T], 0, len(p.subscribers))
	for s := range p.subscribers {
		list = append(list, s)
	}
	return list
}

func (p *publisher[T]) unsubscribe(s SenderCloser[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.subscribers, s)
}

// Close idempotently shuts down the publisher, flushing pending messages and closing subscribers added with close=true.
func (p *publisher[T]) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.ch.Close()
	p.pending.Wait()
	p.running.Wait()

	p.mu.Lock()
	subscribers := p.subscribers
	p.subscribers = make(map[SenderCloser[T]]subscriber[T])
	p.mu.Unlock()
	for _, s := range subscribers {
		if s.close {
			s.Close()
		}
	}
}

func (p *publisher[T]) Closed() <-chan struct{} {
	return p.ch.Closed()
}
