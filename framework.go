package component

import (
	"context"

	"github.com/goliatone/go-component/pkg/activity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Framework owns the root constructor, the constructor cache and the id
// sequences. A Framework and everything derived from it must be used from a
// single goroutine.
type Framework struct {
	cfg           config
	id            string
	root          *Constructor
	nextCID       int
	nextUID       int
	ctorCache     map[ctorCacheKey]*Constructor
	mergePolicy   MergePolicy
	collaborators Collaborators
	evaluators    map[evaluatorKey]Evaluator
	emitter       *activity.Emitter
}

// ctorCacheKey identifies a derived constructor by descriptor identity and
// parent id.
type ctorCacheKey struct {
	descriptor *Options
	superID    int
}

// New builds a framework with its root constructor (cid 0).
func New(opts ...Option) *Framework {
	cfg := applyOptions(opts)
	fw := &Framework{
		cfg:        cfg,
		id:         uuid.NewString(),
		nextCID:    1,
		ctorCache:  map[ctorCacheKey]*Constructor{},
		evaluators: map[evaluatorKey]Evaluator{},
		emitter: activity.NewEmitter(cfg.activityHooks, activity.Config{
			Enabled: true,
			Channel: cfg.activityChannel,
		}),
	}
	fw.mergePolicy = cfg.merge
	if fw.mergePolicy == nil {
		fw.mergePolicy = newMergePolicy(cfg.logger, cfg.production, cfg.validateName, cfg.strategies)
	}
	fw.collaborators = defaultCollaborators(fw).override(cfg.collaborators)

	root := &Constructor{fw: fw, id: 0, proto: newPrototype(nil)}
	root.options = NewOptions().
		With(KeyComponents, NewRegistry(nil)).
		With(KeyDirectives, NewRegistry(nil)).
		With(KeyFilters, NewRegistry(nil)).
		With(KeyBase, root)
	if cfg.functions != nil {
		root.options.Set(KeyFunctions, cfg.functions)
	}
	fw.root = root
	return fw
}

// Root returns the base constructor.
func (fw *Framework) Root() *Constructor {
	return fw.root
}

// ID identifies the framework in emitted activity events.
func (fw *Framework) ID() string {
	return fw.id
}

// Production reports whether the production strategy is selected.
func (fw *Framework) Production() bool {
	return fw.cfg.production
}

// Logger returns the diagnostic logger.
func (fw *Framework) Logger() *zap.Logger {
	return fw.cfg.logger
}

// MergePolicy returns the configured merge policy.
func (fw *Framework) MergePolicy() MergePolicy {
	return fw.mergePolicy
}

func (fw *Framework) merge(parent, child *Options, vm *Instance) (*Options, error) {
	return fw.mergePolicy.Merge(parent, child, vm)
}

// warn reports a development diagnostic. Production skips it.
func (fw *Framework) warn(msg string, fields ...zap.Field) {
	if fw.cfg.production {
		return
	}
	fw.cfg.logger.Warn(msg, fields...)
}

func (fw *Framework) warnComponent(vm *Instance, msg string, fields ...zap.Field) {
	if fw.cfg.production {
		return
	}
	fields = append(fields, zap.String("component", FormatComponentName(vm, true)))
	fw.cfg.logger.Warn(msg, fields...)
}

func (fw *Framework) validateComponentName(name string) {
	if err := fw.cfg.validateName(name); err != nil {
		fw.warn("invalid component name", zap.String("name", name), zap.Error(err))
	}
}

func (fw *Framework) perfEnabled() bool {
	return !fw.cfg.production && fw.cfg.performance && fw.cfg.perf != nil
}

// emit forwards an activity event. Hook failures are logged and never
// interrupt the caller.
func (fw *Framework) emit(event activity.Event) {
	if !fw.emitter.Enabled() {
		return
	}
	event.CorrelationID = fw.id
	if err := fw.emitter.Emit(context.Background(), event); err != nil {
		fw.cfg.logger.Warn("activity hook failed",
			zap.String("verb", event.Verb),
			zap.Error(err))
	}
}
