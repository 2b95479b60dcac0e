package transpile

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestDeprecationLogEmitsOncePerKey(t *testing.T) {
	var seen []Deprecation
	log := newRecordingLog(&seen)

	d := Deprecation{Key: "babel", Message: "use transpile"}
	log.Emit(d)
	log.Emit(d)
	log.Emit(Deprecation{Key: "compileModules", Message: "use transpile.compileModules"})

	if len(seen) != 2 {
		t.Fatalf("expected 2 notices, got %v", seen)
	}
	if !log.Seen("babel") || !log.Seen("compileModules") {
		t.Fatal("expected both keys recorded as seen")
	}
	if log.Seen("never") {
		t.Fatal("unexpected seen key")
	}
}

func TestDeprecationLogEmitToSharesGuard(t *testing.T) {
	log := NewDeprecationLog(nil)

	var a, b []Deprecation
	sinkA := DeprecationSinkFunc(func(d Deprecation) { a = append(a, d) })
	sinkB := DeprecationSinkFunc(func(d Deprecation) { b = append(b, d) })

	d := Deprecation{Key: "babel"}
	log.EmitTo(sinkA, d)
	log.EmitTo(sinkB, d)

	if len(a) != 1 || len(b) != 0 {
		t.Fatalf("expected the guard shared across sinks, got a=%v b=%v", a, b)
	}
}

func TestDeprecationSinksFanOut(t *testing.T) {
	var a, b []Deprecation
	sinks := DeprecationSinks{
		DeprecationSinkFunc(func(d Deprecation) { a = append(a, d) }),
		nil,
		DeprecationSinkFunc(func(d Deprecation) { b = append(b, d) }),
	}
	sinks.Notify(Deprecation{Key: "babel"})
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected both sinks notified, got a=%v b=%v", a, b)
	}
}

func TestSlogDeprecationSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	sink := SlogDeprecationSink(logger)
	sink.Notify(Deprecation{Key: "babel.includePolyfill", Message: "use transpile.includePolyfill"})

	out := buf.String()
	if !strings.Contains(out, "babel.includePolyfill") || !strings.Contains(out, "deprecated option") {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestNilDeprecationLogIsInert(t *testing.T) {
	var log *DeprecationLog
	log.Emit(Deprecation{Key: "babel"})
	log.EmitTo(DeprecationSinkFunc(func(Deprecation) { t.Fatal("sink must not fire") }), Deprecation{Key: "babel"})
	if log.Seen("babel") {
		t.Fatal("nil log cannot have seen anything")
	}
}
