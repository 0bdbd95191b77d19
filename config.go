package component

import (
	"github.com/goliatone/go-component/pkg/activity"
	"go.uber.org/zap"
)

// Option configures a Framework.
type Option func(*config)

type config struct {
	production      bool
	performance     bool
	perf            Perf
	logger          *zap.Logger
	merge           MergePolicy
	strategies      map[string]Strategy
	validateName    NameValidator
	collaborators   Collaborators
	errorHandler    ErrorHandler
	evaluator       Evaluator
	programCache    ProgramCache
	functions       *FunctionRegistry
	activityHooks   activity.Hooks
	activityChannel string
}

func applyOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.validateName == nil {
		cfg.validateName = ValidateComponentName
	}
	return cfg
}

// ErrorHandler receives errors raised by hooks, watchers and renders after
// errorCaptured hooks had their chance.
type ErrorHandler func(err error, vm *Instance, info string)

// NameValidator checks a component name. A non-nil error is reported as a
// warning.
type NameValidator func(name string) error

// WithProduction selects the production strategy: development checks and
// warnings are skipped and the instance is its own render proxy.
func WithProduction(production bool) Option {
	return func(cfg *config) {
		cfg.production = production
	}
}

// WithPerformance enables init timing through the configured Perf.
func WithPerformance(enabled bool) Option {
	return func(cfg *config) {
		cfg.performance = enabled
	}
}

// WithPerf installs the mark/measure instrumentation.
func WithPerf(perf Perf) Option {
	return func(cfg *config) {
		cfg.perf = perf
	}
}

// WithLogger sets the diagnostic logger. A nil logger keeps the no-op default.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithMergePolicy replaces the configuration merge policy.
func WithMergePolicy(policy MergePolicy) Option {
	return func(cfg *config) {
		cfg.merge = policy
	}
}

// WithMergeStrategy registers a strategy for a custom option key on the
// default merge policy.
func WithMergeStrategy(key string, strategy Strategy) Option {
	return func(cfg *config) {
		if key == "" || strategy == nil {
			return
		}
		if cfg.strategies == nil {
			cfg.strategies = map[string]Strategy{}
		}
		cfg.strategies[key] = strategy
	}
}

// WithNameValidator replaces the component name validator.
func WithNameValidator(validator NameValidator) Option {
	return func(cfg *config) {
		cfg.validateName = validator
	}
}

// WithCollaborators overrides initialization collaborators. Nil fields keep
// the defaults.
func WithCollaborators(c Collaborators) Option {
	return func(cfg *config) {
		cfg.collaborators = c
	}
}

// WithErrorHandler sets the global error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(cfg *config) {
		cfg.errorHandler = handler
	}
}

// WithEvaluator sets the default evaluator for expression computed
// properties.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *config) {
		cfg.evaluator = e
	}
}

// WithActivityHooks attaches activity hooks. Nil entries are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *config) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel sets the channel stamped on emitted activity events.
func WithActivityChannel(channel string) Option {
	return func(cfg *config) {
		cfg.activityChannel = channel
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
