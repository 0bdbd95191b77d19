package component

import (
	"errors"

	"go.uber.org/zap"
)

// Proxy is the property view render functions use.
type Proxy interface {
	Get(key string) (any, error)
	Set(key string, value any) error
}

// devProxy reports reads of properties the instance does not define.
type devProxy struct {
	vm *Instance
}

func initProxy(vm *Instance) error {
	vm.renderProxy = devProxy{vm: vm}
	return nil
}

func (p devProxy) Get(key string) (any, error) {
	value, err := p.vm.Get(key)
	if errors.Is(err, ErrPropertyNotFound) {
		p.warnNonPresent(key)
	}
	return value, err
}

func (p devProxy) Set(key string, value any) error {
	return p.vm.Set(key, value)
}

func (p devProxy) warnNonPresent(key string) {
	p.vm.fw.warnComponent(p.vm, "property or method is not defined on the instance but referenced during render",
		zap.String("property", key))
}
