package event

import "reflect"

// Marker classifies commands for typed dispatch. A handler registered for a
// Marker receives every dispatched command whose dynamic type is the marker
// type or, when the marker is an interface type, implements it.
//
// Interfaces are how a command family is expressed:
//
//	type UserCommand interface{ userID() string }
//
//	a.Handle(event.MarkerOf[UserCommand](), auditAll)       // every UserCommand
//	a.Handle(event.MarkerOf[RegisterUser](), sendWelcome)   // RegisterUser only
//
// Values and pointers are distinct: a handler for RegisterUser does not see
// *RegisterUser. MarkerOf[any]() matches every non-nil command.
type Marker struct {
	typ reflect.Type
}

// MarkerOf returns the marker for type T.
func MarkerOf[T any]() Marker {
	return Marker{typ: reflect.TypeOf((*T)(nil)).Elem()}
}

// MarkerFor returns the marker for the dynamic type of v.
// A nil v yields the zero Marker.
func MarkerFor(v any) Marker {
	if v == nil {
		return Marker{}
	}
	return Marker{typ: reflect.TypeOf(v)}
}

// Type returns the underlying reflect.Type, or nil for the zero Marker.
func (m Marker) Type() reflect.Type {
	return m.typ
}

// IsZero reports whether m is the zero Marker.
func (m Marker) IsZero() bool {
	return m.typ == nil
}

// String returns the type name.
func (m Marker) String() string {
	if m.typ == nil {
		return "<nil>"
	}
	return m.typ.String()
}

// Matches reports whether cmd is an instance of the marker type.
func (m Marker) Matches(cmd any) bool {
	if m.typ == nil || cmd == nil {
		return false
	}
	t := reflect.TypeOf(cmd)
	if t == m.typ {
		return true
	}
	return m.typ.Kind() == reflect.Interface && t.Implements(m.typ)
}
