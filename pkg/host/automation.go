package host

import (
	"errors"
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/justyntemme/ladderfilter/pkg/framework/debug"
	"github.com/justyntemme/ladderfilter/pkg/framework/param"
)

// ErrNoAutomate is returned when a script does not define automate(t).
var ErrNoAutomate = errors.New("automation: script defines no automate(t) function")

// Automation runs a Lua script that moves parameters over time.
//
// The script defines automate(t), called before every block with the block
// start time in seconds. Inside it:
//
//	set(key, value)  writes a parameter by key, clamped to its range
//	get(key)         reads a parameter by key
//	mode(id)         selects a filter menu id; returns false if refused
//
// Automation is not safe for concurrent use; only the render goroutine
// calls Step.
type Automation struct {
	state    *lua.LState
	automate lua.LValue
	params   *param.Registry
	selectFn func(id int) bool
	log      *debug.Logger
}

// NewAutomation compiles src. selectMode validates and applies menu ids for
// mode(); without it mode() raises a script error.
func NewAutomation(src, name string, params *param.Registry, selectMode func(id int) bool) (*Automation, error) {
	a := &Automation{
		state:    lua.NewState(),
		params:   params,
		selectFn: selectMode,
		log:      debug.Default().Named("automation"),
	}
	a.state.SetGlobal("set", a.state.NewFunction(a.luaSet))
	a.state.SetGlobal("get", a.state.NewFunction(a.luaGet))
	a.state.SetGlobal("mode", a.state.NewFunction(a.luaMode))

	fn, err := a.state.LoadString(src)
	if err != nil {
		a.state.Close()
		return nil, fmt.Errorf("automation %s: %w", name, err)
	}
	a.state.Push(fn)
	if err := a.state.PCall(0, lua.MultRet, nil); err != nil {
		a.state.Close()
		return nil, fmt.Errorf("automation %s: %w", name, err)
	}

	a.automate = a.state.GetGlobal("automate")
	if a.automate.Type() != lua.LTFunction {
		a.state.Close()
		return nil, fmt.Errorf("%w (%s)", ErrNoAutomate, name)
	}

	a.log.Info("loaded %s", name)
	return a, nil
}

// LoadAutomation reads and compiles a script file.
func LoadAutomation(path string, params *param.Registry, selectMode func(id int) bool) (*Automation, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("automation: %w", err)
	}
	return NewAutomation(string(src), path, params, selectMode)
}

// Step calls automate(t).
func (a *Automation) Step(t float64) error {
	err := a.state.CallByParam(lua.P{
		Fn:      a.automate,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(t))
	if err != nil {
		return fmt.Errorf("automate(%.3f): %w", t, err)
	}
	return nil
}

// Close releases the Lua state.
func (a *Automation) Close() {
	a.state.Close()
}

func (a *Automation) parameter(L *lua.LState) *param.Parameter {
	key := L.CheckString(1)
	p := a.params.GetByKey(key)
	if p == nil {
		L.ArgError(1, fmt.Sprintf("unknown parameter %q", key))
	}
	return p
}

func (a *Automation) luaSet(L *lua.LState) int {
	p := a.parameter(L)
	p.Set(float64(L.CheckNumber(2)))
	return 0
}

func (a *Automation) luaGet(L *lua.LState) int {
	p := a.parameter(L)
	L.Push(lua.LNumber(p.Get()))
	return 1
}

func (a *Automation) luaMode(L *lua.LState) int {
	id := L.CheckInt(1)
	if a.selectFn == nil {
		L.RaiseError("mode() is not available")
		return 0
	}
	L.Push(lua.LBool(a.selectFn(id)))
	return 1
}
