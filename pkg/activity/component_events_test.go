package activity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildComponentExtendedEvent(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	event := BuildComponentExtendedEvent(ComponentEventInput{
		CID:        3,
		SuperCID:   1,
		Name:       " Foo ",
		Metadata:   map[string]any{"source": "test"},
		OccurredAt: at,
	})

	assert.Equal(t, "component.extended", event.Verb)
	assert.Equal(t, ObjectConstructor, event.ObjectType)
	assert.Equal(t, "3", event.ObjectID)
	assert.Equal(t, "Foo", event.Component)
	assert.Equal(t, 1, event.Metadata["super_cid"])
	assert.Equal(t, "test", event.Metadata["source"])
	assert.True(t, event.OccurredAt.Equal(at))
}

func TestBuildEventsDoNotShareMetadata(t *testing.T) {
	meta := map[string]any{"asset_kind": "filter"}
	event := BuildAssetRegisteredEvent(ComponentEventInput{CID: 0, Metadata: meta})
	event.Metadata["asset_kind"] = "changed"

	assert.Equal(t, "filter", meta["asset_kind"])
	assert.Equal(t, "0", event.ObjectID, "the root constructor is cid 0")
}

func TestBuildOptionsResolvedEvent(t *testing.T) {
	event := BuildOptionsResolvedEvent(ComponentEventInput{CID: 5, SuperCID: 2})
	assert.Equal(t, "component.options.resolved", event.Verb)
	assert.Equal(t, 2, event.Metadata["super_cid"])
}

func TestBuildInstanceCreatedEvent(t *testing.T) {
	capture := &CaptureHook{}
	event := BuildInstanceCreatedEvent(ComponentEventInput{CID: 4, UID: 9, Name: "Bar"})

	require.NoError(t, (Hooks{capture}).Notify(context.Background(), event))
	got := capture.Filter("component.instance.created")
	require.Len(t, got, 1, capture.Verbs())
	assert.Equal(t, ObjectInstance, got[0].ObjectType)
	assert.Equal(t, "9", got[0].ObjectID)
	assert.Equal(t, 4, got[0].Metadata["cid"])
}
