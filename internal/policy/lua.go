package policy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// LuaFunctionName is the global function a policy script must define. It
// receives (zoom, min, max) and returns the limited zoom.
const LuaFunctionName = "limit_zoom"

// DefaultLuaTimeout bounds a single call into the policy script.
const DefaultLuaTimeout = 50 * time.Millisecond

// ErrNoLimitFunction is returned when a script does not define
// limit_zoom.
var ErrNoLimitFunction = errors.New("policy script does not define " + LuaFunctionName)

// Lua is a zoom policy implemented by a sandboxed Lua script.
//
// gopher-lua states are not goroutine-safe; calls are serialized by mu.
// Any script failure falls back to the configured fallback policy, so a
// broken script never stalls zooming.
type Lua struct {
	mu       sync.Mutex
	L        *lua.LState
	fallback Func
	timeout  time.Duration
	failures int
}

// LuaOption configures a Lua policy.
type LuaOption func(*Lua)

// WithFallback sets the policy used when the script fails.
func WithFallback(fn Func) LuaOption {
	return func(p *Lua) {
		if fn != nil {
			p.fallback = fn
		}
	}
}

// WithTimeout sets the per-call execution timeout.
func WithTimeout(d time.Duration) LuaOption {
	return func(p *Lua) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// LoadLuaFile creates a policy from a script file.
func LoadLuaFile(path string, opts ...LuaOption) (*Lua, error) {
	return newLua(func(L *lua.LState) error { return L.DoFile(path) }, opts)
}

// LoadLuaString creates a policy from script source.
func LoadLuaString(code string, opts ...LuaOption) (*Lua, error) {
	return newLua(func(L *lua.LState) error { return L.DoString(code) }, opts)
}

func newLua(load func(*lua.LState) error, opts []LuaOption) (*Lua, error) {
	p := &Lua{
		fallback: Clamp,
		timeout:  DefaultLuaTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	if err := load(L); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading policy script: %w", err)
	}
	if fn := L.GetGlobal(LuaFunctionName); fn.Type() != lua.LTFunction {
		L.Close()
		return nil, ErrNoLimitFunction
	}

	p.L = L
	return p, nil
}

// openSafeLibraries opens only the libraries a pure function needs.
// io, os, debug and package stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// Limit calls limit_zoom and clamps its result to [min, max].
func (p *Lua) Limit(zoom, min, max float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.L == nil {
		return p.fallback(zoom, min, max)
	}

	v, err := p.call(zoom, min, max)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		p.failures++
		return p.fallback(zoom, min, max)
	}
	return Clamp(v, min, max)
}

func (p *Lua) call(zoom, min, max float64) (v float64, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	p.L.SetContext(ctx)
	defer p.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	top := p.L.GetTop()
	err = p.L.CallByParam(lua.P{
		Fn:      p.L.GetGlobal(LuaFunctionName),
		NRet:    1,
		Protect: true,
	}, lua.LNumber(zoom), lua.LNumber(min), lua.LNumber(max))
	if err != nil {
		p.L.SetTop(top)
		return 0, err
	}

	ret := p.L.Get(-1)
	p.L.Pop(1)

	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("%s returned %s, want number", LuaFunctionName, ret.Type())
	}
	return float64(n), nil
}

// Func returns the policy as a Func.
func (p *Lua) Func() Func {
	return p.Limit
}

// Failures returns how many calls fell back because the script failed.
func (p *Lua) Failures() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures
}

// Close releases the Lua state. Limit keeps working through the fallback.
func (p *Lua) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.L != nil {
		p.L.Close()
		p.L = nil
	}
}
