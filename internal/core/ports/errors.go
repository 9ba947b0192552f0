package ports

import "errors"

// 定義 Ports 層級通用的錯誤，由各 DocumentStore 實作回傳
var (
	ErrUnsupportedOperator = errors.New("unsupported filter operator")
	ErrInvalidPath         = errors.New("invalid collection path")
	ErrStoreClosed         = errors.New("document store closed")
)
