// Package luabind exposes an Announcement to Lua scripts running on
// gopher-lua.
//
// Register installs a global table (default "announce") with:
//
//	announce.on(name, fn)    -> id
//	announce.once(name, fn)  -> id
//	announce.off(id)         -> bool
//	announce.emit(name, ...) -> nil
//	announce.count(name)     -> number
//
// gopher-lua's LState is not goroutine-safe. Lua listeners are called from
// the Announcement's scheduler, so the scheduler must run on the goroutine
// that owns the LState.
package luabind

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/announcement/internal/event"
	"github.com/dshills/announcement/internal/event/topic"
)

// DefaultGlobal is the name of the global table installed by Register.
const DefaultGlobal = "announce"

// Module implements the announce Lua API.
type Module struct {
	a         *event.Announcement
	sub       *event.Subscriber
	namespace topic.Topic
	global    string
	logger    logrus.FieldLogger

	mu         sync.Mutex
	L          *lua.LState
	handlerTbl *lua.LTable // Table storing handler functions to prevent GC
	handlerKey string      // Global key for handler table
}

// Option configures a Module.
type Option func(*Module)

// WithNamespace prefixes every event name used from Lua with ns, so that
// announce.emit("saved") emits "ns.saved".
func WithNamespace(ns string) Option {
	return func(m *Module) {
		m.namespace = topic.Topic(ns)
	}
}

// WithGlobal sets the name of the global table.
func WithGlobal(name string) Option {
	return func(m *Module) {
		if name != "" {
			m.global = name
		}
	}
}

// WithLogger sets the logger for Lua errors. A nil logger is ignored.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(m *Module) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a module bound to a.
func New(a *event.Announcement, opts ...Option) *Module {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	m := &Module{
		a:      a,
		sub:    event.NewSubscriber(a),
		global: DefaultGlobal,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.handlerKey = "_" + m.global + "_handlers"
	return m
}

// Register installs the module into L.
func (m *Module) Register(L *lua.LState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sub.IsClosed() {
		return ErrModuleClosed
	}
	if m.L != nil {
		return ErrAlreadyRegistered
	}
	m.L = L

	m.handlerTbl = L.NewTable()
	L.SetGlobal(m.handlerKey, m.handlerTbl)

	mod := L.NewTable()
	L.SetField(mod, "on", L.NewFunction(m.on))
	L.SetField(mod, "once", L.NewFunction(m.once))
	L.SetField(mod, "off", L.NewFunction(m.off))
	L.SetField(mod, "emit", L.NewFunction(m.emit))
	L.SetField(mod, "count", L.NewFunction(m.count))
	L.SetGlobal(m.global, mod)
	return nil
}

// Close removes every listener registered from Lua and releases the
// handler references. Listener invocations already scheduled become
// no-ops.
func (m *Module) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.sub.Close(); err != nil {
		return err
	}
	if m.L != nil {
		m.L.SetGlobal(m.handlerKey, lua.LNil)
		m.L.SetGlobal(m.global, lua.LNil)
	}
	m.L = nil
	m.handlerTbl = nil
	return nil
}

// Name resolves a Lua event name against the namespace.
func (m *Module) Name(name string) string {
	return string(topic.Join(string(m.namespace), name))
}

// on(name, handler) -> id
func (m *Module) on(L *lua.LState) int {
	return m.subscribe(L, false)
}

// once(name, handler) -> id
func (m *Module) once(L *lua.LState) int {
	return m.subscribe(L, true)
}

func (m *Module) subscribe(L *lua.LState, once bool) int {
	name := L.CheckString(1)
	handler := L.CheckFunction(2)

	if name == "" {
		L.ArgError(1, "event name cannot be empty")
		return 0
	}
	full := m.Name(name)

	var id string
	fn := func(args ...any) {
		m.call(id, full, args, once)
	}

	var l *event.Listener
	if once {
		l = m.sub.Once(full, fn)
	} else {
		l = m.sub.On(full, fn)
	}
	if l == nil {
		L.RaiseError("%s: module is closed", m.global)
		return 0
	}
	id = l.ID()

	m.mu.Lock()
	if m.handlerTbl != nil {
		m.handlerTbl.RawSetString(id, handler)
	}
	m.mu.Unlock()

	L.Push(lua.LString(id))
	return 1
}

// off(id) -> bool
func (m *Module) off(L *lua.LState) int {
	id := L.CheckString(1)

	if id == "" {
		L.ArgError(1, "listener ID cannot be empty")
		return 0
	}

	l := m.sub.Lookup(id)
	if l == nil {
		L.Push(lua.LFalse)
		return 1
	}
	removed := m.sub.Off(l)
	m.release(id)

	L.Push(lua.LBool(removed))
	return 1
}

// emit(name, ...) -> nil
func (m *Module) emit(L *lua.LState) int {
	name := L.CheckString(1)

	if name == "" {
		L.ArgError(1, "event name cannot be empty")
		return 0
	}

	args := make([]any, 0, L.GetTop()-1)
	for i := 2; i <= L.GetTop(); i++ {
		arg, err := lvalueToAny(L.Get(i))
		if err != nil {
			L.ArgError(i, err.Error())
			return 0
		}
		args = append(args, arg)
	}

	m.a.Emit(m.Name(name), args...)
	return 0
}

// count(name) -> number
func (m *Module) count(L *lua.LState) int {
	name := L.CheckString(1)
	L.Push(lua.LNumber(m.a.ListenerCount(m.Name(name))))
	return 1
}

// call invokes the Lua handler stored under id.
func (m *Module) call(id, name string, args []any, once bool) {
	m.mu.Lock()
	L := m.L
	handlerTbl := m.handlerTbl
	m.mu.Unlock()

	if L == nil || handlerTbl == nil {
		return // Module closed
	}

	handler := handlerTbl.RawGetString(id)
	if once {
		m.release(id)
	}
	if handler.Type() != lua.LTFunction {
		return // Handler was removed
	}

	largs := make([]lua.LValue, len(args))
	for i, arg := range args {
		largs[i] = anyToLValue(L, arg)
	}

	if err := L.CallByParam(lua.P{
		Fn:      handler,
		NRet:    0,
		Protect: true,
	}, largs...); err != nil {
		m.logger.WithFields(logrus.Fields{
			"event":      name,
			"listenerID": id,
		}).WithError(err).Error("Lua listener failed")
	}
}

// release drops the handler reference for id.
func (m *Module) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handlerTbl != nil {
		m.handlerTbl.RawSetString(id, lua.LNil)
	}
}
