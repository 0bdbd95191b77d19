package activity

import (
	"strconv"
	"strings"
	"time"
)

// Object types reported by component events.
const (
	ObjectConstructor = "component.constructor"
	ObjectInstance    = "component.instance"
)

// ComponentEventInput describes the common fields of component lifecycle
// events. CID identifies the constructor; UID the instance, when one exists.
type ComponentEventInput struct {
	ActorID    string
	TenantID   string
	Channel    string
	CID        int
	SuperCID   int
	UID        int
	Name       string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildComponentExtendedEvent reports a constructor derived from its parent.
func BuildComponentExtendedEvent(input ComponentEventInput) Event {
	event := buildConstructorEvent("component.extended", input)
	event.Metadata = ensureMetadata(event.Metadata)
	event.Metadata["super_cid"] = input.SuperCID
	return event
}

// BuildOptionsResolvedEvent reports a constructor whose options were
// re-merged after an ancestor changed.
func BuildOptionsResolvedEvent(input ComponentEventInput) Event {
	event := buildConstructorEvent("component.options.resolved", input)
	event.Metadata = ensureMetadata(event.Metadata)
	event.Metadata["super_cid"] = input.SuperCID
	return event
}

// BuildAssetRegisteredEvent reports a component, directive or filter added
// to a constructor's registry.
func BuildAssetRegisteredEvent(input ComponentEventInput) Event {
	return buildConstructorEvent("component.asset.registered", input)
}

// BuildInstanceCreatedEvent reports an instance that finished initializing.
func BuildInstanceCreatedEvent(input ComponentEventInput) Event {
	event := buildEvent("component.instance.created", ObjectInstance, strconv.Itoa(input.UID), input)
	event.Metadata = ensureMetadata(event.Metadata)
	event.Metadata["cid"] = input.CID
	return event
}

func buildConstructorEvent(verb string, input ComponentEventInput) Event {
	return buildEvent(verb, ObjectConstructor, strconv.Itoa(input.CID), input)
}

func buildEvent(verb, objectType, objectID string, input ComponentEventInput) Event {
	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Component:  strings.TrimSpace(input.Name),
		Metadata:   cloneMap(input.Metadata),
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
