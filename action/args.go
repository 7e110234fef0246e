package action

import "reflect"

// NormalizeArgs 将定义中的参数统一成有序参数列表.
// nil为空列表; 切片和数组展开为多个参数; 其他值(标量/map)作为单个参数.
// 需要把一个列表作为单个参数传入时, 外面再包一层: []any{[]any{1, 2}}
func NormalizeArgs(v any) []any {
	if v == nil {
		return []any{}
	}
	switch x := v.(type) {
	case []any:
		return append([]any{}, x...)
	case []byte:
		return []any{x}
	case string:
		return []any{x}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{v}
}
