package component

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-component/pkg/activity"
	"go.uber.org/zap"
)

// Constructor is a component type. Instances are created with New or
// NewInternal; subtypes with Extend.
type Constructor struct {
	fw      *Framework
	id      int
	options *Options
	super   *Constructor
	proto   *Prototype

	// superOptions is the parent options handle this constructor was last
	// merged against.
	superOptions *Options
	// extendOptions is the descriptor this constructor was derived from.
	extendOptions *Options
	// sealedOptions is a shallow copy of options taken right after the
	// initial merge.
	sealedOptions *Options

	installedPlugins []Plugin
}

// ID returns the constructor id. The root constructor is 0.
func (c *Constructor) ID() int {
	return c.id
}

// Options returns the current merged options without re-resolving them.
// Use ResolveOptions to pick up ancestor changes.
func (c *Constructor) Options() *Options {
	return c.options
}

// Super returns the parent constructor, nil for the root.
func (c *Constructor) Super() *Constructor {
	return c.super
}

// Prototype returns the accessor table shared by all instances.
func (c *Constructor) Prototype() *Prototype {
	return c.proto
}

// ExtendOptions returns the descriptor c was derived from.
func (c *Constructor) ExtendOptions() *Options {
	return c.extendOptions
}

// SealedOptions returns the snapshot of options taken at derivation.
func (c *Constructor) SealedOptions() *Options {
	return c.sealedOptions
}

// SuperOptions returns the parent options handle c was last merged against.
func (c *Constructor) SuperOptions() *Options {
	return c.superOptions
}

// Framework returns the framework owning c.
func (c *Constructor) Framework() *Framework {
	return c.fw
}

// Extend derives a subtype of c from descriptor. Extending the same
// parent with the same descriptor value returns the same constructor.
// A nil descriptor is treated as an empty one.
func (c *Constructor) Extend(descriptor *Options) (*Constructor, error) {
	if descriptor == nil {
		descriptor = NewOptions()
	}
	fw := c.fw
	key := ctorCacheKey{descriptor: descriptor, superID: c.id}
	if cached, ok := fw.ctorCache[key]; ok {
		return cached, nil
	}

	name := descriptor.Name()
	if name == "" {
		name = c.options.Name()
	}
	if !fw.cfg.production && name != "" {
		fw.validateComponentName(name)
	}

	sub := &Constructor{
		fw:    fw,
		id:    fw.nextCID,
		super: c,
		proto: newPrototype(c.proto),
	}
	fw.nextCID++

	options, err := fw.merge(c.options, descriptor, nil)
	if err != nil {
		return nil, err
	}
	sub.options = options

	// Accessors are defined once on the constructor prototype rather than on
	// every instance.
	if props := options.Props(); len(props) > 0 {
		initPropAccessors(sub, props)
	}
	if computed := options.Computed(); len(computed) > 0 {
		if err := initComputedAccessors(sub, computed); err != nil {
			return nil, err
		}
	}

	if name != "" {
		registerSelf(sub, options, name)
	}

	sub.superOptions = c.options
	sub.extendOptions = descriptor
	sub.sealedOptions = options.shallowCopy()

	fw.ctorCache[key] = sub
	fw.emit(activity.BuildComponentExtendedEvent(activity.ComponentEventInput{
		CID:      sub.id,
		SuperCID: c.id,
		Name:     name,
	}))
	return sub, nil
}

// MustExtend is Extend for package-level declarations; it panics on error.
func (c *Constructor) MustExtend(descriptor *Options) *Constructor {
	sub, err := c.Extend(descriptor)
	if err != nil {
		panic(fmt.Errorf("component: extend cid %d: %w", c.id, err))
	}
	return sub
}

func initPropAccessors(c *Constructor, props Props) {
	accessors := c.fw.collaborators.Accessors
	for _, key := range sortedKeys(props) {
		accessors.InstallProxyAccessor(c.proto, SourceProps, key)
	}
}

func initComputedAccessors(c *Constructor, computed ComputedSet) error {
	accessors := c.fw.collaborators.Accessors
	for _, key := range sortedKeys(computed) {
		if err := accessors.InstallComputedAccessor(c, key, computed[key]); err != nil {
			return fmt.Errorf("component: computed %q: %w", key, err)
		}
	}
	return nil
}

// registerSelf makes a named constructor resolvable from its own templates.
func registerSelf(c *Constructor, options *Options, name string) {
	components := options.Components()
	if components == nil {
		components = NewRegistry(nil)
		options.Set(KeyComponents, components)
	}
	components.Register(name, c)
}

// Mixin merges mixin into the options of c. The options handle changes, so
// descendants re-merge the next time they resolve their options.
func (c *Constructor) Mixin(mixin *Options) error {
	merged, err := c.fw.merge(c.options, mixin, nil)
	if err != nil {
		return err
	}
	c.options = merged
	return nil
}

// Plugin installs global functionality on a constructor.
type Plugin interface {
	Install(c *Constructor, args ...any) error
}

// PluginFunc adapts a function to Plugin. Functions have no identity, so a
// bare PluginFunc is installed on every Use; wrap it with NewPlugin to get
// install-once behaviour.
type PluginFunc func(c *Constructor, args ...any) error

// Install implements Plugin.
func (f PluginFunc) Install(c *Constructor, args ...any) error {
	if f == nil {
		return nil
	}
	return f(c, args...)
}

type pluginHandle struct {
	fn PluginFunc
}

func (p *pluginHandle) Install(c *Constructor, args ...any) error {
	return p.fn.Install(c, args...)
}

// NewPlugin returns a Plugin whose identity is the returned value. Using it
// twice on the same constructor installs it once.
func NewPlugin(fn PluginFunc) Plugin {
	return &pluginHandle{fn: fn}
}

// Use installs plugin once per constructor. Plugins are the same when they
// compare equal; plugins that cannot be compared (bare functions) are
// installed every time.
func (c *Constructor) Use(plugin Plugin, args ...any) error {
	if plugin == nil {
		return nil
	}
	for _, installed := range c.installedPlugins {
		if samePlugin(installed, plugin) {
			return nil
		}
	}
	if err := plugin.Install(c, args...); err != nil {
		return err
	}
	c.installedPlugins = append(c.installedPlugins, plugin)
	return nil
}

func samePlugin(a, b Plugin) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}

// RegisterComponent registers a component under id. A descriptor is named
// after id when unnamed and extended from the root constructor.
func (c *Constructor) RegisterComponent(id string, definition any) (any, error) {
	return c.registerAsset(AssetComponent, id, definition)
}

// RegisterDirective registers a directive. A bare DirectiveHook serves as
// both Bind and Update.
func (c *Constructor) RegisterDirective(id string, definition any) (any, error) {
	return c.registerAsset(AssetDirective, id, definition)
}

// RegisterFilter registers a filter.
func (c *Constructor) RegisterFilter(id string, definition Filter) (any, error) {
	return c.registerAsset(AssetFilter, id, definition)
}

// Asset returns the asset registered under id, looking through ancestors.
func (c *Constructor) Asset(kind AssetKind, id string) (any, bool) {
	return ResolveAsset(c.options, kind, id)
}

func (c *Constructor) registerAsset(kind AssetKind, id string, definition any) (any, error) {
	fw := c.fw
	if isUnset(definition) {
		return nil, fmt.Errorf("%w: %s %q has no definition", ErrInvalidOption, kind, id)
	}
	switch kind {
	case AssetComponent:
		if !fw.cfg.production {
			fw.validateComponentName(id)
		}
		if descriptor, ok := definition.(*Options); ok {
			if descriptor.Name() == "" {
				descriptor.Set(KeyName, id)
			}
			base := c.options.Base()
			if base == nil {
				base = fw.root
			}
			ctor, err := base.Extend(descriptor)
			if err != nil {
				return nil, err
			}
			definition = ctor
		}
	case AssetDirective:
		normalized, err := normalizeDirective(definition)
		if err != nil {
			return nil, err
		}
		definition = normalized
	}

	reg := c.options.Registry(kind)
	if reg == nil {
		reg = NewRegistry(nil)
		c.options.Set(kind.OptionKey(), reg)
	}
	reg.Register(id, definition)

	fw.emit(activity.BuildAssetRegisteredEvent(activity.ComponentEventInput{
		CID:  c.id,
		Name: c.options.Name(),
		Metadata: map[string]any{
			"asset_kind": string(kind),
			"asset_id":   id,
		},
	}))
	fw.cfg.logger.Debug("asset registered",
		zap.String("kind", string(kind)),
		zap.String("id", id),
		zap.Int("cid", c.id))
	return definition, nil
}
