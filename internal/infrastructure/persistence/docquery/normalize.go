// Package docquery 提供非 Firestore 後端共用的文件處理:
// JSON 正規化、Firestore 風格的 merge、路徑檢查與 client 端的 Filter 比對。
package docquery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/JoeShih716/case-common/internal/core/ports"
)

// Normalize 把文件轉成 JSON 形狀的值 (string, int64, float64, bool, nil, []any, map[string]any)。
// 整數保持為 int64 (不經過 float64，超過 2^53 的值也不會失真)，其餘數字為 float64；
// 時間一律轉為 UTC 的 RFC3339Nano 字串，讓各後端回傳相同的資料形狀。
func Normalize(data map[string]any) (map[string]any, error) {
	if data == nil {
		return map[string]any{}, nil
	}
	b, err := json.Marshal(utcTimes(data))
	if err != nil {
		return nil, fmt.Errorf("normalize document: %w", err)
	}
	out, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("normalize document: %w", err)
	}
	return out, nil
}

// NormalizeValue 與 Normalize 相同，但作用在單一值 (Filter.Value)
func NormalizeValue(v any) (any, error) {
	b, err := json.Marshal(utcTimes(v))
	if err != nil {
		return nil, fmt.Errorf("normalize value: %w", err)
	}
	var out any
	if err := decodeJSON(b, &out); err != nil {
		return nil, fmt.Errorf("normalize value: %w", err)
	}
	return numbers(out), nil
}

// Decode 解析已儲存的 JSON 文件，數字規則與 Normalize 相同
func Decode(raw []byte) (map[string]any, error) {
	var out map[string]any
	if err := decodeJSON(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return map[string]any{}, nil
	}
	for k, v := range out {
		out[k] = numbers(v)
	}
	return out, nil
}

func decodeJSON(raw []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(out)
}

// numbers 把 json.Number 換成 int64 (整數) 或 float64
func numbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, val := range t {
			t[k] = numbers(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = numbers(val)
		}
		return t
	}
	return v
}

func utcTimes(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = utcTimes(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = utcTimes(val)
		}
		return out
	}
	return v
}

// Clone 深拷貝 JSON 形狀的文件
func Clone(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Clone(t)
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	}
	return v
}

// Merge 以 Firestore set(merge) 的語意合併: data 中的欄位覆寫 dst，
// 兩邊都是 map 的欄位遞迴合併，其他欄位保持不變。dst 會被修改並回傳。
func Merge(dst, data map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(data))
	}
	for k, v := range data {
		src, srcIsMap := v.(map[string]any)
		cur, curIsMap := dst[k].(map[string]any)
		if srcIsMap && curIsMap {
			dst[k] = Merge(cur, src)
			continue
		}
		dst[k] = cloneValue(v)
	}
	return dst
}

// ValidateCollection 檢查集合路徑: 以斜線分隔、段數為奇數且沒有空段
func ValidateCollection(collection string) error {
	if collection == "" {
		return fmt.Errorf("%w: empty path", ports.ErrInvalidPath)
	}
	parts := strings.Split(collection, "/")
	if len(parts)%2 == 0 {
		return fmt.Errorf("%w: %q points to a document", ports.ErrInvalidPath, collection)
	}
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("%w: %q has an empty segment", ports.ErrInvalidPath, collection)
		}
	}
	return nil
}

// ValidateID 檢查文件 ID 不為空且不含斜線
func ValidateID(id string) error {
	if id == "" || strings.Contains(id, "/") {
		return fmt.Errorf("%w: invalid document id %q", ports.ErrInvalidPath, id)
	}
	return nil
}

// Prepare 檢查寫入的路徑並正規化資料，後端在套用任何寫入前先對每筆呼叫
func Prepare(w ports.Write) (ports.Write, error) {
	if err := ValidateCollection(w.Collection); err != nil {
		return w, err
	}
	if err := ValidateID(w.ID); err != nil {
		return w, err
	}
	if w.Kind == ports.WriteSet {
		data, err := Normalize(w.Data)
		if err != nil {
			return w, err
		}
		w.Data = data
	}
	return w, nil
}
