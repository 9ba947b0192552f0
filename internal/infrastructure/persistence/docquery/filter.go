package docquery

import (
	"cmp"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/JoeShih716/case-common/internal/core/ports"
)

// Compiled 是已正規化數值的 filters，可重複用於多份文件
type Compiled []ports.Filter

// Compile 正規化每個 Filter.Value 並檢查運算子
func Compile(filters []ports.Filter) (Compiled, error) {
	out := make(Compiled, 0, len(filters))
	for _, f := range filters {
		if !supported(f.Op) {
			return nil, fmt.Errorf("%w: %q", ports.ErrUnsupportedOperator, f.Op)
		}
		v, err := NormalizeValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", f.Field, err)
		}
		if f.Op == ports.OpIn || f.Op == ports.OpNotIn || f.Op == ports.OpArrayContainsAny {
			if _, ok := v.([]any); !ok {
				return nil, fmt.Errorf("filter %s: operator %q needs a list value", f.Field, f.Op)
			}
		}
		out = append(out, ports.Filter{Field: f.Field, Op: f.Op, Value: v})
	}
	return out, nil
}

func supported(op ports.Operator) bool {
	switch op {
	case ports.OpEqual, ports.OpNotEqual, ports.OpLess, ports.OpLessEqual,
		ports.OpGreater, ports.OpGreaterEqual, ports.OpIn, ports.OpNotIn,
		ports.OpArrayContains, ports.OpArrayContainsAny:
		return true
	}
	return false
}

// Match 回傳正規化後的文件是否符合所有條件
func (c Compiled) Match(doc map[string]any) bool {
	for _, f := range c {
		if !matchOne(doc, f) {
			return false
		}
	}
	return true
}

func matchOne(doc map[string]any, f ports.Filter) bool {
	got, ok := lookup(doc, f.Field)
	if !ok {
		// Firestore 的所有運算子都不會比對到不存在的欄位
		return false
	}
	switch f.Op {
	case ports.OpEqual:
		return equal(got, f.Value)
	case ports.OpNotEqual:
		return got != nil && !equal(got, f.Value)
	case ports.OpLess, ports.OpLessEqual, ports.OpGreater, ports.OpGreaterEqual:
		cmp, ok := compare(got, f.Value)
		if !ok {
			return false
		}
		switch f.Op {
		case ports.OpLess:
			return cmp < 0
		case ports.OpLessEqual:
			return cmp <= 0
		case ports.OpGreater:
			return cmp > 0
		default:
			return cmp >= 0
		}
	case ports.OpIn:
		return containsAny([]any{got}, f.Value.([]any))
	case ports.OpNotIn:
		return got != nil && !containsAny([]any{got}, f.Value.([]any))
	case ports.OpArrayContains:
		arr, ok := got.([]any)
		return ok && containsAny(arr, []any{f.Value})
	case ports.OpArrayContainsAny:
		arr, ok := got.([]any)
		return ok && containsAny(arr, f.Value.([]any))
	}
	return false
}

// lookup 支援以 "." 分隔的巢狀欄位，例如 "payload.volume"
func lookup(doc map[string]any, field string) (any, bool) {
	if v, ok := doc[field]; ok {
		return v, true
	}
	parts := strings.Split(field, ".")
	var cur any = doc
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[p]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func containsAny(haystack, needles []any) bool {
	for _, h := range haystack {
		for _, n := range needles {
			if equal(h, n) {
				return true
			}
		}
	}
	return false
}

func equal(a, b any) bool {
	if cmp, ok := compare(a, b); ok {
		return cmp == 0
	}
	return reflect.DeepEqual(a, b)
}

// compare 只比較同型別的值 (數字、字串、布林)；
// 兩個字串都是 RFC3339 時間時以時間比較，避免小數秒位數不同造成字典序錯誤。
func compare(a, b any) (int, bool) {
	switch av := a.(type) {
	case int64:
		switch bv := b.(type) {
		case int64:
			return cmp.Compare(av, bv), true
		case float64:
			return cmp.Compare(float64(av), bv), true
		}
		return 0, false
	case float64:
		switch bv := b.(type) {
		case float64:
			return cmp.Compare(av, bv), true
		case int64:
			return cmp.Compare(av, float64(bv)), true
		}
		return 0, false
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		if at, err := time.Parse(time.RFC3339Nano, av); err == nil {
			if bt, err := time.Parse(time.RFC3339Nano, bv); err == nil {
				return at.Compare(bt), true
			}
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}
