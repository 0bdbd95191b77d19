package component

import (
	"github.com/goliatone/go-component/pkg/activity"
	"go.uber.org/zap"
)

// ResolveOptions returns the effective options of c, re-merging against the
// parent when the parent's options handle changed since c was derived or
// last resolved. Keys modified on c after derivation are carried into the
// re-merge. Resolution walks the ancestor chain lazily; an unchanged chain
// returns the existing options value.
func (c *Constructor) ResolveOptions() (*Options, error) {
	options := c.options
	if c.super == nil {
		return options, nil
	}
	superOptions, err := c.super.ResolveOptions()
	if err != nil {
		return nil, err
	}
	if superOptions == c.superOptions {
		return options, nil
	}

	// Late modifications are folded into the descriptor so the re-merge does
	// not drop them.
	if modified := c.resolveModifiedOptions(); modified != nil {
		for _, key := range modified.Keys() {
			value, _ := modified.Own(key)
			c.extendOptions.Set(key, value)
		}
	}
	options, err = c.fw.merge(superOptions, c.extendOptions, nil)
	if err != nil {
		return nil, err
	}
	c.superOptions = superOptions
	c.options = options
	if name := options.Name(); name != "" {
		registerSelf(c, options, name)
	}

	c.fw.cfg.logger.Debug("constructor options re-resolved",
		zap.Int("cid", c.id),
		zap.Int("super_cid", c.super.id))
	c.fw.emit(activity.BuildOptionsResolvedEvent(activity.ComponentEventInput{
		CID:      c.id,
		SuperCID: c.super.id,
		Name:     options.Name(),
	}))
	return options, nil
}

// ResolveConstructorOptions is the package-level form of
// Constructor.ResolveOptions.
func ResolveConstructorOptions(c *Constructor) (*Options, error) {
	return c.ResolveOptions()
}

// resolveModifiedOptions collects the groups of the current options that no
// longer match the sealed snapshot. Comparison is per group identity; changes
// made inside a group without replacing it are not seen.
func (c *Constructor) resolveModifiedOptions() *Options {
	var modified *Options
	latest := c.options
	sealed := c.sealedOptions
	for _, key := range latest.Keys() {
		current, _ := latest.ownGroup(key)
		baseline, _ := sealed.ownGroup(key)
		if !sameGroup(current, baseline) {
			if modified == nil {
				modified = NewOptions()
			}
			modified.Set(key, unboxGroup(current))
		}
	}
	return modified
}
