package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// fieldSpec 描述一個儲存欄位: mapstructure tag 的名稱即儲存 key，
// 帶有 omitempty 的欄位視為選填 (可省略或為 null)。
type fieldSpec struct {
	key      string
	optional bool
	index    []int
}

var (
	specCache sync.Map // reflect.Type -> []fieldSpec
	validate  = newValidator()
)

type enumValue interface {
	Valid() bool
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// enum: 欄位型別必須實作 Valid() 並落在封閉集合內
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(enumValue)
		return ok && e.Valid()
	})
	return v
}

func specOf(t reflect.Type) []fieldSpec {
	if cached, ok := specCache.Load(t); ok {
		return cached.([]fieldSpec)
	}
	specs := make([]fieldSpec, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous || !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		specs = append(specs, fieldSpec{
			key:      name,
			optional: strings.Contains(opts, "omitempty"),
			index:    f.Index,
		})
	}
	specCache.Store(t, specs)
	return specs
}

var currencyType = reflect.TypeOf(Currency(""))

// legacyCurrencyHook 去除貨幣欄位的 "Currency." 前綴 (歷史遺留格式)
func legacyCurrencyHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != currencyType || from.Kind() != reflect.String {
		return data, nil
	}
	return strings.TrimPrefix(reflect.ValueOf(data).String(), legacyCurrencyPrefix), nil
}

var (
	giftTypeType = reflect.TypeOf(GiftType(""))
	statusType   = reflect.TypeOf(CaseOpeningStatus(""))
)

// legacyTagHook 把舊版的 GiftType / CaseOpeningStatus 值換成現行的值
func legacyTagHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if (to != giftTypeType && to != statusType) || from.Kind() != reflect.String {
		return data, nil
	}
	if tag, ok := legacyTags[reflect.ValueOf(data).String()]; ok {
		return tag, nil
	}
	return data, nil
}

func decodeValue(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			legacyCurrencyHook,
			legacyTagHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
		Result: out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// decodeStruct 逐欄位解碼，讓錯誤可以指出是哪一個欄位。
// out 必須是 struct 指標；回傳實際出現在 data 中的欄位。
func decodeStruct(record string, data map[string]any, out any) ([]string, error) {
	v := reflect.ValueOf(out).Elem()
	present := make([]string, 0, len(data))
	for _, f := range specOf(v.Type()) {
		raw, ok := data[f.key]
		if !ok || raw == nil {
			if f.optional {
				if ok {
					present = append(present, f.key)
				}
				continue
			}
			return nil, &ValidationError{Record: record, Field: f.key, Reason: "field required"}
		}
		if err := decodeValue(raw, v.FieldByIndex(f.index).Addr().Interface()); err != nil {
			return nil, &ValidationError{Record: record, Field: f.key, Reason: err.Error()}
		}
		present = append(present, f.key)
	}
	return present, nil
}

func validateStruct(record string, v any) error {
	return validateFields(record, v, nil)
}

// validateFields 執行結構驗證；keep 不為 nil 時只回報 keep 接受的欄位
func validateFields(record string, v any, keep func(key string) bool) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Record: record, Reason: err.Error()}
	}
	for _, fe := range verrs {
		if keep != nil && !keep(fe.Field()) {
			continue
		}
		return &ValidationError{
			Record: record,
			Field:  fe.Field(),
			Reason: fmt.Sprintf("value %v failed %q check", fe.Value(), fe.Tag()),
		}
	}
	return nil
}

// Validate 檢查記錄在寫入前是否合法。
//
// 追蹤中的記錄只檢查已標記的欄位，部分更新裡沒碰過的欄位維持零值是合法的；
// 未追蹤的記錄 (struct literal) 代表整份文件，所有欄位都必須通過檢查。
//
// 回傳值:
//
//	error: 列舉值不合法時回傳 *ValidationError
func Validate(rec Record) error {
	if !rec.Tracked() {
		return validateStruct(rec.CollectionName(), rec)
	}
	return validateFields(rec.CollectionName(), rec, rec.IsSet)
}

// extraDecoder 由需要自訂解碼的記錄實作 (例如 Gift 的 payload)
type extraDecoder interface {
	decodeExtra(data map[string]any) ([]string, error)
}

// Decode 將文件欄位解碼為記錄，並寫回文件 ID。
// 解碼後的記錄處於追蹤狀態，出現在文件中的欄位皆視為已設定。
//
// 參數:
//
//	id: string - 文件 ID
//	data: map[string]any - 文件欄位
//	rec: Record - 目標記錄 (通常為剛配置的零值指標)
//
// 回傳值:
//
//	error: 缺少必填欄位、型別不符或列舉值不合法時回傳 *ValidationError
func Decode(id string, data map[string]any, rec Record) error {
	record := rec.CollectionName()
	present, err := decodeStruct(record, data, rec)
	if err != nil {
		return err
	}
	if ex, ok := rec.(extraDecoder); ok {
		keys, err := ex.decodeExtra(data)
		if err != nil {
			return err
		}
		present = append(present, keys...)
	}
	if err := validateStruct(record, rec); err != nil {
		return err
	}
	rec.SetID(id)
	rec.Track()
	rec.MarkSet(present...)
	return nil
}

// prepare 是 NewXxx 建構子的共用流程:
// 驗證列舉欄位，並把必填欄位與非零值的選填欄位標記為已設定。
func prepare(rec Record) error {
	if err := validateStruct(rec.CollectionName(), rec); err != nil {
		return err
	}
	v := reflect.ValueOf(rec).Elem()
	keys := make([]string, 0, v.NumField())
	for _, f := range specOf(v.Type()) {
		if !f.optional || !v.FieldByIndex(f.index).IsZero() {
			keys = append(keys, f.key)
		}
	}
	rec.Track()
	rec.MarkSet(keys...)
	return nil
}
