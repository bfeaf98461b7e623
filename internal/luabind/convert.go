package luabind

import (
	"fmt"
	"math"
	"strconv"

	lua "github.com/yuin/gopher-lua"
)

// mapToTable converts a Go map to a Lua table.
func mapToTable(L *lua.LState, data map[string]any) *lua.LTable {
	tbl := L.NewTable()
	for k, v := range data {
		tbl.RawSetString(k, anyToLValue(L, v))
	}
	return tbl
}

// anyToLValue converts a Go value to a Lua value. Values without a Lua
// counterpart are passed as their fmt representation.
func anyToLValue(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []string:
		tbl := L.NewTable()
		for i, item := range val {
			tbl.RawSetInt(i+1, lua.LString(item))
		}
		return tbl
	case []any:
		tbl := L.NewTable()
		for i, item := range val {
			tbl.RawSetInt(i+1, anyToLValue(L, item))
		}
		return tbl
	case map[string]any:
		return mapToTable(L, val)
	case fmt.Stringer:
		return lua.LString(val.String())
	default:
		return lua.LString(fmt.Sprintf("%v", val))
	}
}

// MaxTableDepth is the deepest table nesting emit converts.
const MaxTableDepth = 64

// lvalueToAny converts a Lua value to a Go value. Tables whose keys are
// exactly 1..n become []any and other tables map[string]any. Tables that
// contain themselves or nest deeper than MaxTableDepth are rejected.
func lvalueToAny(v lua.LValue) (any, error) {
	return convertValue(v, make(map[*lua.LTable]struct{}), 0)
}

func convertValue(v lua.LValue, path map[*lua.LTable]struct{}, depth int) (any, error) {
	if v == nil || v == lua.LNil {
		return nil, nil
	}

	switch val := v.(type) {
	case lua.LBool:
		return bool(val), nil
	case lua.LNumber:
		return float64(val), nil
	case lua.LString:
		return string(val), nil
	case *lua.LTable:
		return tableToAny(val, path, depth+1)
	default:
		return v.String(), nil
	}
}

func tableToAny(tbl *lua.LTable, path map[*lua.LTable]struct{}, depth int) (any, error) {
	if _, ok := path[tbl]; ok {
		return nil, ErrCyclicTable
	}
	if depth > MaxTableDepth {
		return nil, ErrTableTooDeep
	}
	path[tbl] = struct{}{}
	defer delete(path, tbl)

	// Keys are distinct, so n positive integer keys no larger than n are
	// exactly 1..n.
	n, maxIdx := 0, 0
	isArray := true
	tbl.ForEach(func(k, _ lua.LValue) {
		n++
		idx, ok := arrayIndex(k)
		if !ok {
			isArray = false
			return
		}
		maxIdx = max(maxIdx, idx)
	})

	var err error
	if isArray && n > 0 && maxIdx == n {
		arr := make([]any, n)
		tbl.ForEach(func(k, v lua.LValue) {
			if err != nil {
				return
			}
			idx, _ := arrayIndex(k)
			arr[idx-1], err = convertValue(v, path, depth)
		})
		if err != nil {
			return nil, err
		}
		return arr, nil
	}

	result := make(map[string]any, n)
	tbl.ForEach(func(k, v lua.LValue) {
		if err != nil {
			return
		}
		result[keyString(k)], err = convertValue(v, path, depth)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// arrayIndex returns k as a positive integer index.
func arrayIndex(k lua.LValue) (int, bool) {
	num, ok := k.(lua.LNumber)
	if !ok {
		return 0, false
	}
	f := float64(num)
	if f < 1 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func keyString(k lua.LValue) string {
	switch kv := k.(type) {
	case lua.LString:
		return string(kv)
	case lua.LNumber:
		f := float64(kv)
		if f == math.Trunc(f) && math.Abs(f) < 1e15 {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return k.String()
	}
}
