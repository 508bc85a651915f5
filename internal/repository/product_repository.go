package repository

import (
	"context"
	"errors"

	"finepharma/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page       int
	Limit      int
	Q          string
	Category   string
	Sort       string
	ActiveOnly bool
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	// ソフト削除＝statusをinactiveにする
	SetStatus(ctx context.Context, id int64, status model.ProductStatus, actorID int64) error

	// stock <= low_stock_threshold のもの
	ListLowStock(ctx context.Context) ([]model.Product, error)
}
