package location

import (
	"sync"
	"time"
)

// PushSource is a Source fed from outside, typically by a browser posting
// geolocation readings over HTTP. Each subscription runs a watchdog that
// reports Timeout when no fix arrives within maxWait.
type PushSource struct {
	maxWait time.Duration

	mu     sync.Mutex
	nextID int
	subs   map[int]*pushSub
}

type pushSub struct {
	src      *PushSource
	id       int
	onUpdate func(Fix)
	onError  func(error)
	watchdog *time.Timer
}

// NewPushSource creates a source; a non-positive maxWait uses DefaultMaxWait
func NewPushSource(maxWait time.Duration) *PushSource {
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	return &PushSource{
		maxWait: maxWait,
		subs:    make(map[int]*pushSub),
	}
}

func (p *PushSource) Subscribe(onUpdate func(Fix), onError func(error)) (Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	s := &pushSub{src: p, id: p.nextID, onUpdate: onUpdate, onError: onError}
	s.watchdog = time.AfterFunc(p.maxWait, s.expire)
	p.subs[s.id] = s
	return s, nil
}

// Push delivers a fix to every subscriber and re-arms their watchdogs
func (p *PushSource) Push(fix Fix) {
	if fix.Time.IsZero() {
		fix.Time = time.Now()
	}
	for _, s := range p.snapshot() {
		s.watchdog.Reset(p.maxWait)
		s.onUpdate(fix)
	}
}

// Fail delivers an error to every subscriber
func (p *PushSource) Fail(err *Error) {
	for _, s := range p.snapshot() {
		s.onError(err)
	}
}

// Subscribers returns the number of live subscriptions
func (p *PushSource) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

func (p *PushSource) snapshot() []*pushSub {
	p.mu.Lock()
	defer p.mu.Unlock()
	subs := make([]*pushSub, 0, len(p.subs))
	for _, s := range p.subs {
		subs = append(subs, s)
	}
	return subs
}

func (s *pushSub) live() bool {
	s.src.mu.Lock()
	defer s.src.mu.Unlock()
	_, ok := s.src.subs[s.id]
	return ok
}

func (s *pushSub) expire() {
	if !s.live() {
		return
	}
	s.onError(&Error{Code: Timeout, Message: "no position fix within " + s.src.maxWait.String()})
	s.watchdog.Reset(s.src.maxWait)
}

func (s *pushSub) Unsubscribe() {
	s.src.mu.Lock()
	delete(s.src.subs, s.id)
	s.src.mu.Unlock()
	s.watchdog.Stop()
}
