package livesync

import (
	"sync"
	"time"
)

// Level severidad de un aviso al usuario.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice aviso visible para el usuario (toast en la web, línea en consola).
type Notice struct {
	Level   Level
	Title   string
	Message string
	At      time.Time
}

// Notifier presenta avisos al usuario.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapta una función a Notifier.
type NotifierFunc func(Notice)

// Notify implementa Notifier.
func (f NotifierFunc) Notify(n Notice) { f(n) }

// Recorder guarda los avisos recibidos (tests y consola).
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implementa Notifier.
func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

// Notices copia de lo recibido.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Count avisos de un nivel.
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, x := range r.notices {
		if x.Level == level {
			n++
		}
	}
	return n
}
