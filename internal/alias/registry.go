// Package alias 维护进程内的名字别名表：启动时加载一次，之后读多写少。
package alias

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry 别名表。key 为小写输入名，value 为规范名
type Registry struct {
	mu      sync.RWMutex
	aliases map[string]string
}

// NewRegistry 创建别名表，mapping 的 key 会被转为小写
func NewRegistry(mapping map[string]string) *Registry {
	r := &Registry{}
	r.Replace(mapping)
	return r
}

// Resolve 返回 name 的规范名；查找不区分大小写，未登记的名字原样返回（去掉首尾空白）
func (r *Registry) Resolve(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	r.mu.RLock()
	canonical, ok := r.aliases[strings.ToLower(name)]
	r.mu.RUnlock()
	if ok {
		return canonical
	}
	return name
}

// Replace 整体替换别名表
func (r *Registry) Replace(mapping map[string]string) {
	next := normalize(mapping)
	r.mu.Lock()
	r.aliases = next
	r.mu.Unlock()
}

// Snapshot 返回别名表副本
func (r *Registry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		out[k] = v
	}
	return out
}

// Len 别名数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.aliases)
}

func normalize(mapping map[string]string) map[string]string {
	out := make(map[string]string, len(mapping))
	for k, v := range mapping {
		key := strings.ToLower(strings.TrimSpace(k))
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	return out
}

// ParseMapping 解析别名文件。支持两种格式：
//
//	{"bob": "Robert"}             平铺：别名 -> 规范名
//	{"Robert": ["bob", "bobby"]}  分组：规范名 -> 别名列表（规范名本身也登记为别名）
func ParseMapping(data []byte) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("解析别名文件失败: %w", err)
	}

	// 按 key 排序，保证分组格式中重复别名的处理结果稳定
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(raw))
	for _, k := range keys {
		var single string
		if err := json.Unmarshal(raw[k], &single); err == nil {
			out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(single)
			continue
		}
		var variants []string
		if err := json.Unmarshal(raw[k], &variants); err != nil {
			return nil, fmt.Errorf("别名 %q 的值既不是字符串也不是字符串数组", k)
		}
		canonical := strings.TrimSpace(k)
		out[strings.ToLower(canonical)] = canonical
		for _, v := range variants {
			out[strings.ToLower(strings.TrimSpace(v))] = canonical
		}
	}
	return normalize(out), nil
}
