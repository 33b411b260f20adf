package router

import (
	"sort"
	"sync"

	"car-rental-api/internal/transport/http/ez"
)

// APIModule 按鉴权分组挂载自己的路由
type APIModule interface{ MountAPI(ez.Groups) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

type Registry struct {
	mu   sync.RWMutex
	mods []APIModule
}

func (r *Registry) Register(mods ...APIModule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mods = append(r.mods, mods...)
}

// MountAll 按优先级挂载所有已注册模块
func (r *Registry) MountAll(g ez.Groups) {
	r.mu.RLock()
	mods := append([]APIModule(nil), r.mods...)
	r.mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(g)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
