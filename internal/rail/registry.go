package rail

import (
	"fmt"
)

// Registry 支付方式到渠道适配器的注册表，启动时填充
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry 创建注册表
func NewRegistry(adapters ...Adapter) *Registry {
	m := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.WayCode()] = a
	}
	return &Registry{adapters: m}
}

// Resolve 按支付方式代码精确查找适配器，未注册时报错
func (r *Registry) Resolve(payWayCode string) (Adapter, error) {
	a, ok := r.adapters[payWayCode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPayWay, payWayCode)
	}
	return a, nil
}
