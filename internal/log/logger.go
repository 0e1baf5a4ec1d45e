package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// EventLogger is the interface for logging session events.
type EventLogger interface {
	Log(event SessionEvent)
	Events() []SessionEvent
}

// --- MemoryLogger: stores events in memory for test assertions and replay ---

type MemoryLogger struct {
	mu     sync.Mutex
	events []SessionEvent
	seq    int
	subs   map[int]func(SessionEvent)
	nextID int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event SessionEvent) {
	l.notify(l.record(event))
}

func (l *MemoryLogger) record(event SessionEvent) SessionEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	event.Seq = l.seq
	event.Kind = event.Type.String()
	l.events = append(l.events, event)
	return event
}

// notify runs subscribers outside the lock, so they may call back into the logger.
func (l *MemoryLogger) notify(event SessionEvent) {
	l.mu.Lock()
	fns := make([]func(SessionEvent), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(event)
	}
}

// Subscribe registers fn for every later event. The returned func unregisters it.
func (l *MemoryLogger) Subscribe(fn func(SessionEvent)) (cancel func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.subs == nil {
		l.subs = make(map[int]func(SessionEvent))
	}
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}
}

func (l *MemoryLogger) Events() []SessionEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]SessionEvent(nil), l.events...)
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []SessionEvent {
	var result []SessionEvent
	for _, e := range l.Events() {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() SessionEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return SessionEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event SessionEvent) {
	event = l.MemoryLogger.record(event)
	fmt.Fprintln(l.w, FormatEvent(event))
	l.MemoryLogger.notify(event)
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e SessionEvent) string {
	id := e.Session
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("#%-3d %-8s %-20s| %s", e.Seq, id, e.Type, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []SessionEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewGenerationStartedEvent(session string, count int, replace bool) SessionEvent {
	verb := "add"
	if replace {
		verb = "replace"
	}
	return SessionEvent{
		Session: session,
		Type:    EventGenerationStarted,
		Details: fmt.Sprintf("generating %d board(s) (%s)", count, verb),
	}
}

func NewGenerationFailedEvent(session, message string) SessionEvent {
	return SessionEvent{
		Session: session,
		Type:    EventGenerationFailed,
		Details: message,
	}
}

func NewBoardsAddedEvent(session string, first, n, total int) SessionEvent {
	return SessionEvent{
		Session: session,
		Type:    EventBoardsAdded,
		Board:   first,
		Count:   total,
		Details: fmt.Sprintf("added boards %d-%d", first, first+n-1),
	}
}

func NewBoardsReplacedEvent(session string, total int) SessionEvent {
	return SessionEvent{
		Session: session,
		Type:    EventBoardsReplaced,
		Count:   total,
		Details: fmt.Sprintf("replaced collection with %d board(s)", total),
	}
}

func NewBoardDeletedEvent(session string, board, total int) SessionEvent {
	return SessionEvent{
		Session: session,
		Type:    EventBoardDeleted,
		Board:   board,
		Count:   total,
		Details: fmt.Sprintf("deleted board %d", board),
	}
}

func NewBoardMovedEvent(session string, from, to, total int) SessionEvent {
	return SessionEvent{
		Session: session,
		Type:    EventBoardMoved,
		Board:   to,
		Count:   total,
		Details: fmt.Sprintf("moved board %d to %d", from, to),
	}
}

func NewVulnerabilityChangedEvent(session string, board int, vul string) SessionEvent {
	return SessionEvent{
		Session: session,
		Type:    EventVulnerabilityChanged,
		Board:   board,
		Details: fmt.Sprintf("board %d vulnerability → %s", board, vul),
	}
}

func NewPolicyChangedEvent(session, policy string) SessionEvent {
	return SessionEvent{
		Session: session,
		Type:    EventPolicyChanged,
		Details: fmt.Sprintf("vulnerability policy → %s", policy),
	}
}

func NewBoardsClearedEvent(session string) SessionEvent {
	return SessionEvent{
		Session: session,
		Type:    EventBoardsCleared,
		Details: "cleared all boards",
	}
}

func NewConstraintIgnoredEvent(session, issue string) SessionEvent {
	return SessionEvent{
		Session: session,
		Type:    EventConstraintIgnored,
		Details: issue,
	}
}
