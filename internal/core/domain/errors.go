package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument 參數不符合預期 (例如 Gift payload 不是已知的型別)
var ErrInvalidArgument = errors.New("invalid argument")

// ValidationError 記錄建立或解碼時的結構驗證失敗
type ValidationError struct {
	Record string // 集合名稱
	Field  string // 出錯的欄位 (儲存欄位名稱)
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Record != "" && e.Field != "":
		return fmt.Sprintf("validation failed for %s.%s: %s", e.Record, e.Field, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
	case e.Record != "":
		return fmt.Sprintf("validation failed for %s: %s", e.Record, e.Reason)
	}
	return "validation failed: " + e.Reason
}
