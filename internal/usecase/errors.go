package usecase

import (
	"errors"
	"fmt"

	"finepharma/internal/domain/model"
)

// ストア操作が返すエラー種別。ハンドラ側でHTTPステータスに写像する。
var (
	// 400 入力不備（空の明細、負の価格、不正な数量など）
	ErrValidation = errors.New("validation error")
	// 404 参照先が解決できない
	ErrNotFound = errors.New("not found")
	// 400 ステータス集合の外
	ErrInvalidStatus = errors.New("invalid order status")
	// 409 集合内だが許されない遷移（後退・終端からの変更）
	ErrInvalidTransition = errors.New("invalid status transition")
	// 403 ロール不足、または自己保護ルール違反
	ErrUnauthorized = errors.New("unauthorized")
	// 409 重複作成
	ErrAlreadyExists = errors.New("already exists")
	// 500
	ErrInternal = errors.New("internal error")
)

// 注文時の在庫不足。どの商品が足りないかを持つ。
type InsufficientStockError struct {
	ProductName string
	Requested   int64
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.ProductName)
}

// 呼び出し側の識別情報（IDとロールのクレーム）
type Actor struct {
	ID   int64
	Name string
	Role model.Role
}
