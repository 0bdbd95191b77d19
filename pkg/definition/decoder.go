package definition

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Context carries identifiers tied to a definition payload.
type Context struct {
	// Source names where the payload came from, usually a file path.
	Source string
}

// PreHook lets callers mutate or normalise the payload before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the decoded definition.
type PostHook func(Context, *Definition) error

// DecoderOption configures a Decoder instance.
type DecoderOption func(*Decoder)

// Decoder converts raw payloads into component definitions.
type Decoder struct {
	preHooks     []PreHook
	postHooks    []PostHook
	configureDec []func(*json.Decoder)
}

// WithPreHook applies hook prior to decoding.
func WithPreHook(hook PreHook) DecoderOption {
	return func(d *Decoder) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook(hook PostHook) DecoderOption {
	return func(d *Decoder) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithDisallowUnknownFields rejects payload keys Definition does not know.
func WithDisallowUnknownFields() DecoderOption {
	return func(d *Decoder) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.DisallowUnknownFields()
		})
	}
}

// WithNameValidation rejects definitions whose name (or nested component
// id) is not a valid component name.
func WithNameValidation() DecoderOption {
	return WithPostHook(validateNames)
}

// NewDecoder builds a decoder from opts.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// DecodeYAML parses a YAML document and decodes it.
func (d *Decoder) DecodeYAML(ctx Context, raw []byte) (Definition, error) {
	var payload map[string]any
	if err := yaml.Unmarshal(raw, &payload); err != nil {
		return Definition{}, fmt.Errorf("definition: parse yaml %q: %w", ctx.Source, err)
	}
	return d.Decode(ctx, payload)
}

// DecodeJSON parses a JSON document and decodes it.
func (d *Decoder) DecodeJSON(ctx Context, raw []byte) (Definition, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Definition{}, fmt.Errorf("definition: parse json %q: %w", ctx.Source, err)
	}
	return d.Decode(ctx, payload)
}

// Decode converts payload into a Definition applying configured hooks.
func (d *Decoder) Decode(ctx Context, payload map[string]any) (Definition, error) {
	if payload == nil {
		return Definition{}, fmt.Errorf("definition: payload is nil for %q", ctx.Source)
	}

	current, err := clonePayload(payload)
	if err != nil {
		return Definition{}, fmt.Errorf("definition: clone payload for %q: %w", ctx.Source, err)
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return Definition{}, fmt.Errorf("definition: pre-hook for %q failed: %w", ctx.Source, err)
		}
		if next != nil {
			current = next
		}
	}

	buffer, err := json.Marshal(current)
	if err != nil {
		return Definition{}, fmt.Errorf("definition: marshal payload for %q: %w", ctx.Source, err)
	}
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	for _, configure := range d.configureDec {
		configure(decoder)
	}
	var result Definition
	if err := decoder.Decode(&result); err != nil {
		return Definition{}, fmt.Errorf("definition: decode %q: %w", ctx.Source, err)
	}
	if result.File == "" {
		result.File = ctx.Source
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return Definition{}, fmt.Errorf("definition: post-hook for %q failed: %w", ctx.Source, err)
		}
	}

	return result, nil
}

func clonePayload(payload map[string]any) (map[string]any, error) {
	buffer, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(buffer, &out); err != nil {
		return nil, err
	}
	return out, nil
}
