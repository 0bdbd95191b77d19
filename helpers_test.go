package component

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(t *testing.T, opts ...Option) (*Framework, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	fw := New(append([]Option{WithLogger(zap.New(core))}, opts...)...)
	return fw, logs
}

func warnCount(logs *observer.ObservedLogs, msg string) int {
	return logs.FilterMessage(msg).FilterLevelExact(zapcore.WarnLevel).Len()
}

// countingPolicy wraps the default policy and counts top-level merges.
type countingPolicy struct {
	inner      MergePolicy
	calls      int
	withVM     int
	lastParent *Options
}

func newCountingPolicy() *countingPolicy {
	return &countingPolicy{inner: DefaultMergePolicy(zap.NewNop(), false)}
}

func (p *countingPolicy) Merge(parent, child *Options, vm *Instance) (*Options, error) {
	p.calls++
	if vm != nil {
		p.withVM++
	}
	p.lastParent = parent
	return p.inner.Merge(parent, child, vm)
}

func named(name string) *Options {
	return NewOptions().With(KeyName, name)
}
