package transpile

import (
	"log/slog"
	"sync"
)

// Deprecation is a one-time advisory notice about use of a superseded
// configuration key. It never blocks a build.
type Deprecation struct {
	Key     string
	Message string
}

// DeprecationSink receives deprecation notices. Implementations must be safe
// for concurrent use.
type DeprecationSink interface {
	Notify(Deprecation)
}

// DeprecationSinkFunc adapts a plain function to DeprecationSink.
type DeprecationSinkFunc func(Deprecation)

// Notify dispatches to the underlying function.
func (f DeprecationSinkFunc) Notify(d Deprecation) {
	if f != nil {
		f(d)
	}
}

type noopDeprecationSink struct{}

func (noopDeprecationSink) Notify(Deprecation) {}

// DeprecationSinks fans a notice out to zero or more sinks.
type DeprecationSinks []DeprecationSink

// Notify forwards the notice to all sinks, skipping nil entries.
func (s DeprecationSinks) Notify(d Deprecation) {
	for _, sink := range s {
		if sink != nil {
			sink.Notify(d)
		}
	}
}

// SlogDeprecationSink writes notices through the supplied structured logger,
// falling back to slog.Default when logger is nil.
func SlogDeprecationSink(logger *slog.Logger) DeprecationSink {
	return DeprecationSinkFunc(func(d Deprecation) {
		l := logger
		if l == nil {
			l = slog.Default()
		}
		l.Warn("deprecated option", "key", d.Key, "message", d.Message)
	})
}

// DeprecationLog guards notice emission so any given key is reported at most
// once per log instance. The log is append-only; entries survive repeated
// resolution within one process lifetime and are reset only by constructing a
// fresh log (or by process restart for the shared default).
type DeprecationLog struct {
	mu   sync.Mutex
	seen map[string]bool
	sink DeprecationSink
}

// NewDeprecationLog constructs a log emitting through sink. A nil sink makes
// the log silent while still tracking seen keys.
func NewDeprecationLog(sink DeprecationSink) *DeprecationLog {
	if sink == nil {
		sink = noopDeprecationSink{}
	}
	return &DeprecationLog{
		seen: make(map[string]bool),
		sink: sink,
	}
}

// Emit records the notice, forwarding it to the sink only the first time its
// key is seen.
func (l *DeprecationLog) Emit(d Deprecation) {
	if l == nil {
		return
	}
	l.mu.Lock()
	if l.seen == nil {
		l.seen = make(map[string]bool)
	}
	first := !l.seen[d.Key]
	l.seen[d.Key] = true
	l.mu.Unlock()
	if first {
		l.sink.Notify(d)
	}
}

// EmitTo behaves like Emit but forwards first-seen notices to sink instead of
// the log's own sink. The once-per-key guard is shared either way.
func (l *DeprecationLog) EmitTo(sink DeprecationSink, d Deprecation) {
	if l == nil {
		return
	}
	if sink == nil {
		l.Emit(d)
		return
	}
	l.mu.Lock()
	if l.seen == nil {
		l.seen = make(map[string]bool)
	}
	first := !l.seen[d.Key]
	l.seen[d.Key] = true
	l.mu.Unlock()
	if first {
		sink.Notify(d)
	}
}

// Seen reports whether a notice for key was already emitted.
func (l *DeprecationLog) Seen(key string) bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen[key]
}

var defaultDeprecations = NewDeprecationLog(SlogDeprecationSink(nil))
