package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context identifies the options namespace a payload was read from.
type Context struct {
	Namespace string
}

// PreHook lets callers normalise the raw payload before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the hydrated struct after
// decoding.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts loosely typed option payloads into strongly typed structs.
type Decoder[T any] struct {
	preHooks     []PreHook
	postHooks    []PostHook[T]
	configureDec []func(*json.Decoder)
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithUseNumber enables json.Decoder.UseNumber during decoding.
func WithUseNumber[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.UseNumber()
		})
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into the target struct T applying configured hooks.
// Unknown payload keys are ignored; the caller decides what may leak through.
func (d *Decoder[T]) Decode(ctx Context, payload map[string]any) (T, error) {
	var zero T

	if payload == nil {
		return zero, fmt.Errorf("hydrate: payload is nil for namespace %q", ctx.Namespace)
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, payload)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre hook for namespace %q: %w", ctx.Namespace, err)
		}
		if next != nil {
			payload = next
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return zero, fmt.Errorf("hydrate: encode namespace %q: %w", ctx.Namespace, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	for _, configure := range d.configureDec {
		configure(dec)
	}

	var value T
	if err := dec.Decode(&value); err != nil {
		return zero, fmt.Errorf("hydrate: decode namespace %q: %w", ctx.Namespace, err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &value); err != nil {
			return zero, fmt.Errorf("hydrate: post hook for namespace %q: %w", ctx.Namespace, err)
		}
	}

	return value, nil
}
