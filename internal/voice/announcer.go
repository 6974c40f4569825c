// Package voice is the boundary to speech output. Speaking is best effort:
// an announcer that cannot speak drops the text and never reports an error
// to the caller.
package voice

import (
	"log"
	"sync"

	"github.com/ksai0398/railway-navigation-app/internal/station"
)

// Announcer speaks instruction text
type Announcer interface {
	Announce(text string, lang station.Lang)
	Stop()
}

// Nop discards every announcement
type Nop struct{}

func (Nop) Announce(string, station.Lang) {}
func (Nop) Stop()                         {}

// Logger writes announcements to the standard logger
type Logger struct{}

func (Logger) Announce(text string, lang station.Lang) {
	log.Printf("Voice [%s]: %s", lang, text)
}

func (Logger) Stop() {}

// Multi fans announcements out to several announcers
type Multi []Announcer

func (m Multi) Announce(text string, lang station.Lang) {
	for _, a := range m {
		a.Announce(text, lang)
	}
}

func (m Multi) Stop() {
	for _, a := range m {
		a.Stop()
	}
}

// Tracker wraps an Announcer and remembers whether something is being
// spoken. Speech stays "in flight" until Stop or Done is called.
type Tracker struct {
	next Announcer

	mu       sync.Mutex
	speaking bool
	lastText string
	lastLang station.Lang
}

// NewTracker wraps next; a nil next behaves like Nop
func NewTracker(next Announcer) *Tracker {
	if next == nil {
		next = Nop{}
	}
	return &Tracker{next: next}
}

func (t *Tracker) Announce(text string, lang station.Lang) {
	t.mu.Lock()
	t.speaking = true
	t.lastText = text
	t.lastLang = lang
	t.mu.Unlock()

	t.safely(func() { t.next.Announce(text, lang) })
}

func (t *Tracker) Stop() {
	t.mu.Lock()
	t.speaking = false
	t.mu.Unlock()

	t.safely(t.next.Stop)
}

// Done marks the current utterance as finished without cancelling it
func (t *Tracker) Done() {
	t.mu.Lock()
	t.speaking = false
	t.mu.Unlock()
}

// Speaking reports whether an utterance is in flight
func (t *Tracker) Speaking() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.speaking
}

// Last returns the most recent announcement
func (t *Tracker) Last() (string, station.Lang) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastText, t.lastLang
}

// safely runs f and swallows a panic from a misbehaving speech backend
func (t *Tracker) safely(f func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Voice: announcer failed, continuing silently: %v", r)
		}
	}()
	f()
}
