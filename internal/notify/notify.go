package notify

import (
	"log"
	"sync"
	"time"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notice is a transient, user-visible notification. Notices never block the
// publisher: slow subscribers drop messages instead of stalling playback.
type Notice struct {
	Severity Severity  `json:"severity"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

type Notifier struct {
	mu   sync.Mutex
	subs map[int]chan Notice
	next int
}

func New() *Notifier {
	return &Notifier{subs: make(map[int]chan Notice)}
}

func (n *Notifier) Publish(severity Severity, title, message string) {
	notice := Notice{
		Severity: severity,
		Title:    title,
		Message:  message,
		At:       time.Now().UTC(),
	}

	if severity == SeverityError {
		log.Printf("notify: %s: %s", title, message)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- notice:
		default:
		}
	}
}

func (n *Notifier) Info(title, message string) {
	n.Publish(SeverityInfo, title, message)
}

func (n *Notifier) Success(title, message string) {
	n.Publish(SeveritySuccess, title, message)
}

func (n *Notifier) Error(title, message string) {
	n.Publish(SeverityError, title, message)
}

// Subscribe registers a buffered listener. The returned cancel func must be
// called to release it.
func (n *Notifier) Subscribe() (<-chan Notice, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++

	ch := make(chan Notice, 16)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if existing, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(existing)
		}
	}

	return ch, cancel
}
