package activity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// VerbPrefix namespaces every component activity verb.
const VerbPrefix = "component."

// Event describes a component lifecycle occurrence fanned out to hooks.
// IDs are strings so sinks can map them onto their own id types.
type Event struct {
	Verb       string
	ActorID    string
	TenantID   string
	ObjectType string
	ObjectID   string
	Channel    string
	// Component is the bare name of the component involved, if any.
	Component string
	// CorrelationID groups the events of one framework instance.
	CorrelationID string
	Metadata      map[string]any
	OccurredAt    time.Time
}

// Deliverable reports whether a normalized event names a verb and the
// constructor or instance it concerns.
func (e Event) Deliverable() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}

// ActivityHook receives normalized activity events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify calls fn.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []ActivityHook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify normalizes event and delivers it to every hook. Events that are not
// deliverable are dropped; hook failures are joined.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	event = NormalizeEvent(event)
	if !event.Deliverable() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	errs := make([]error, 0, len(h))
	for _, hook := range h {
		if hook != nil {
			errs = append(errs, hook.Notify(ctx, event))
		}
	}
	return errors.Join(errs...)
}

// NormalizeEvent puts event into the shape hooks receive:
//   - the verb is lower-cased and carries VerbPrefix
//   - a missing object type is inferred from the verb
//   - a formatted name such as "<UserCard>" is reduced to "UserCard"
//
// Remaining string fields are trimmed, metadata is copied and a missing
// timestamp is set to now.
func NormalizeEvent(event Event) Event {
	out := event
	out.Verb = qualifyVerb(event.Verb)
	out.ObjectType = strings.TrimSpace(event.ObjectType)
	if out.ObjectType == "" {
		out.ObjectType = objectTypeFor(out.Verb)
	}
	out.ObjectID = strings.TrimSpace(event.ObjectID)
	out.Component = strings.Trim(strings.TrimSpace(event.Component), "<>")
	out.ActorID = strings.TrimSpace(event.ActorID)
	out.TenantID = strings.TrimSpace(event.TenantID)
	out.Channel = strings.TrimSpace(event.Channel)
	out.CorrelationID = strings.TrimSpace(event.CorrelationID)
	out.Metadata = cloneMap(event.Metadata)
	if out.OccurredAt.IsZero() {
		out.OccurredAt = time.Now()
	}
	return out
}

func qualifyVerb(verb string) string {
	verb = strings.ToLower(strings.TrimSpace(verb))
	if verb == "" || strings.HasPrefix(verb, VerbPrefix) {
		return verb
	}
	return VerbPrefix + verb
}

// objectTypeFor maps instance verbs to ObjectInstance and every other
// component verb to ObjectConstructor.
func objectTypeFor(verb string) string {
	switch {
	case verb == "":
		return ""
	case strings.HasPrefix(verb, VerbPrefix+"instance."):
		return ObjectInstance
	default:
		return ObjectConstructor
	}
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
