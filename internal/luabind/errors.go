package luabind

import "errors"

var (
	// ErrModuleClosed is returned when registering a closed module.
	ErrModuleClosed = errors.New("lua module is closed")

	// ErrAlreadyRegistered is returned when a module is registered twice.
	ErrAlreadyRegistered = errors.New("lua module is already registered")

	// ErrCyclicTable is returned when a table passed to emit contains itself.
	ErrCyclicTable = errors.New("table contains itself")

	// ErrTableTooDeep is returned when a table passed to emit nests deeper
	// than MaxTableDepth.
	ErrTableTooDeep = errors.New("table nesting too deep")
)
