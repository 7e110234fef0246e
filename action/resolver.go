// Package action resolves the callables timers invoke when they fire.
package action

import (
	"errors"
	"fmt"
	"sync"
)

var ErrUnresolved = errors.New("action not resolved")

// Func 定时器到期时调用的函数, args为定义中归一化后的参数
type Func func(args ...any) error

// Resolver 根据名字(和可选的库名)找到可调用的函数
type Resolver interface {
	Resolve(action, library string) (Func, error)
}

// ResolverFunc 适配普通函数为Resolver
type ResolverFunc func(action, library string) (Func, error)

func (f ResolverFunc) Resolve(action, library string) (Func, error) {
	return f(action, library)
}

// Table 按 library.action 注册的函数表, library为空表示默认命名空间
type Table struct {
	mu    sync.RWMutex
	funcs map[tableKey]Func
}

type tableKey struct {
	library string
	action  string
}

func (k tableKey) String() string {
	if k.library == "" {
		return k.action
	}
	return k.library + "." + k.action
}

func NewTable() *Table {
	return &Table{funcs: make(map[tableKey]Func)}
}

func (t *Table) Register(library, action string, fn Func) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.funcs[tableKey{library: library, action: action}] = fn
}

// RegisterFunc 注册无参数无返回值的函数, 调用时忽略参数
func (t *Table) RegisterFunc(library, action string, fn func()) {
	t.Register(library, action, func(...any) error {
		fn()
		return nil
	})
}

func (t *Table) Resolve(action, library string) (Func, error) {
	if action == "" {
		return nil, fmt.Errorf("%w: empty action name", ErrUnresolved)
	}
	k := tableKey{library: library, action: action}
	t.mu.RLock()
	fn, ok := t.funcs[k]
	t.mu.RUnlock()
	if !ok || fn == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnresolved, k)
	}
	return fn, nil
}
