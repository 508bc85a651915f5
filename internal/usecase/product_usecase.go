package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finepharma/internal/domain/model"
	"finepharma/internal/pricing"
	"finepharma/internal/rbac"
	repo "finepharma/internal/repository"
	"finepharma/internal/watch"
)

type ProductUsecase struct {
	products  repo.ProductRepository
	inventory repo.InventoryRepository
	audit     repo.AuditLogRepository
	hub       *watch.Hub
}

func NewProductUsecase(products repo.ProductRepository, inventory repo.InventoryRepository, audit repo.AuditLogRepository, hub *watch.Hub) *ProductUsecase {
	return &ProductUsecase{products: products, inventory: inventory, audit: audit, hub: hub}
}

type ProductInput struct {
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	Price             float64 `json:"price"`
	WholesalePrice    float64 `json:"wholesale_price"`
	Stock             int64   `json:"stock"`
	LowStockThreshold int64   `json:"low_stock_threshold"`
	GSTRatePct        float64 `json:"gst_rate_pct"`
	HSNCode           string  `json:"hsn_code"`
	Pack              string  `json:"pack"`
	Description       string  `json:"description"`
}

type ProductListInput struct {
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
	Q        string `query:"q"`
	Category string `query:"category"`
	Sort     string `query:"sort"`
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name required", ErrValidation)
	}
	if strings.TrimSpace(in.Category) == "" {
		return fmt.Errorf("%w: category required", ErrValidation)
	}
	if in.Price < 0 || in.WholesalePrice < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: stock must be >= 0", ErrValidation)
	}
	if in.LowStockThreshold < 0 {
		return fmt.Errorf("%w: low stock threshold must be >= 0", ErrValidation)
	}
	if in.GSTRatePct < 0 {
		return fmt.Errorf("%w: gst rate must be >= 0", ErrValidation)
	}
	return nil
}

// List は公開カタログ。顧客にはactiveのみ、admin/staffにはinactiveも見せる。
func (u *ProductUsecase) List(ctx context.Context, actor Actor, in ProductListInput) (ProductListOutput, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	q := repo.ProductListQuery{
		Page:       page,
		Limit:      limit,
		Q:          strings.TrimSpace(in.Q),
		Category:   strings.TrimSpace(in.Category),
		Sort:       in.Sort,
		ActiveOnly: !rbac.Can(actor.Role, rbac.ActionUpdateStock),
	}
	items, total, err := u.products.List(ctx, q)
	if err != nil {
		return ProductListOutput{}, err
	}
	return ProductListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// Get は1件取得。inactiveは顧客には存在しない扱い。
func (u *ProductUsecase) Get(ctx context.Context, actor Actor, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, fmt.Errorf("%w: invalid product id", ErrValidation)
	}
	p, err := u.products.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Product{}, ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	if p.Status != model.ProductStatusActive && !rbac.Can(actor.Role, rbac.ActionUpdateStock) {
		return model.Product{}, ErrNotFound
	}
	return p, nil
}

func (u *ProductUsecase) Create(ctx context.Context, actor Actor, in ProductInput) (model.Product, error) {
	if !rbac.Can(actor.Role, rbac.ActionCreateProduct) {
		return model.Product{}, ErrUnauthorized
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	p := model.Product{
		Name:              strings.TrimSpace(in.Name),
		Category:          strings.TrimSpace(in.Category),
		Price:             pricing.Round2(in.Price),
		WholesalePrice:    pricing.Round2(in.WholesalePrice),
		Stock:             in.Stock,
		LowStockThreshold: in.LowStockThreshold,
		GSTRatePct:        in.GSTRatePct,
		HSNCode:           strings.TrimSpace(in.HSNCode),
		Pack:              strings.TrimSpace(in.Pack),
		Description:       in.Description,
		Status:            model.ProductStatusActive,
		UpdatedByID:       actor.ID,
	}
	if p.LowStockThreshold == 0 {
		p.LowStockThreshold = 10
	}
	if p.GSTRatePct == 0 {
		p.GSTRatePct = pricing.DefaultLineGSTPct
	}
	if p.HSNCode == "" {
		p.HSNCode = pricing.DefaultHSNCode
	}

	created, err := u.products.Create(ctx, p)
	if err != nil {
		return model.Product{}, err
	}

	u.hub.Notify(watch.TopicProducts)
	return created, nil
}

func (u *ProductUsecase) Update(ctx context.Context, actor Actor, id int64, in ProductInput) (model.Product, error) {
	if !rbac.Can(actor.Role, rbac.ActionUpdateProduct) {
		return model.Product{}, ErrUnauthorized
	}
	if id <= 0 {
		return model.Product{}, fmt.Errorf("%w: invalid product id", ErrValidation)
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	p, err := u.products.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Product{}, ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Category = strings.TrimSpace(in.Category)
	p.Price = pricing.Round2(in.Price)
	p.WholesalePrice = pricing.Round2(in.WholesalePrice)
	p.LowStockThreshold = in.LowStockThreshold
	p.GSTRatePct = in.GSTRatePct
	p.HSNCode = strings.TrimSpace(in.HSNCode)
	p.Pack = strings.TrimSpace(in.Pack)
	p.Description = in.Description
	p.UpdatedByID = actor.ID
	// 在庫はここでは触らない。UpdateStock経由のみ。

	if err := u.products.Update(ctx, p); err != nil {
		return model.Product{}, err
	}

	u.hub.Notify(watch.TopicProducts)
	return p, nil
}

// UpdateStock は在庫の直接設定（棚卸し・入荷）。
// 差分を調整履歴と監査ログに残す。
func (u *ProductUsecase) UpdateStock(ctx context.Context, actor Actor, productID int64, newStock int64, reason string) error {
	if !rbac.Can(actor.Role, rbac.ActionUpdateStock) {
		return ErrUnauthorized
	}
	if productID <= 0 {
		return fmt.Errorf("%w: invalid product id", ErrValidation)
	}
	if newStock < 0 {
		return fmt.Errorf("%w: stock must be >= 0", ErrValidation)
	}
	if strings.TrimSpace(reason) == "" {
		reason = "manual adjustment"
	}

	p, err := u.products.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := u.inventory.SetStock(ctx, productID, newStock); err != nil {
		return err
	}
	if err := u.inventory.CreateAdjustment(ctx, model.StockAdjustment{
		ProductID:   productID,
		ActorUserID: actor.ID,
		Delta:       newStock - p.Stock,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}); err != nil {
		return err
	}
	if err := u.audit.Create(ctx, model.AuditLog{
		ActorUserID:  actor.ID,
		ActorRole:    actor.Role,
		Action:       model.AuditActionUpdateStock,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   fmt.Sprintf(`{"stock":%d}`, p.Stock),
		AfterJSON:    fmt.Sprintf(`{"stock":%d}`, newStock),
		CreatedAt:    time.Now(),
	}); err != nil {
		return err
	}

	u.hub.Notify(watch.TopicProducts)
	return nil
}

// Delete はソフト削除。レコードは消さずにinactiveへ落とす。
// 既存の注文明細からの参照を壊さないため。
func (u *ProductUsecase) Delete(ctx context.Context, actor Actor, id int64) error {
	if !rbac.Can(actor.Role, rbac.ActionDeleteProduct) {
		return ErrUnauthorized
	}
	if id <= 0 {
		return fmt.Errorf("%w: invalid product id", ErrValidation)
	}

	err := u.products.SetStatus(ctx, id, model.ProductStatusInactive, actor.ID)
	if err == repo.ErrNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	u.hub.Notify(watch.TopicProducts)
	return nil
}

// LowStock は発注判断用の低在庫一覧（admin/staff）
func (u *ProductUsecase) LowStock(ctx context.Context, actor Actor) ([]model.Product, error) {
	if !rbac.Can(actor.Role, rbac.ActionUpdateStock) {
		return nil, ErrUnauthorized
	}
	return u.products.ListLowStock(ctx)
}

// Subscribe はカタログのライブ購読。可視性はactorのロールに従う。
func (u *ProductUsecase) Subscribe(ctx context.Context, actor Actor, in ProductListInput, fn func(ProductListOutput)) (func(), error) {
	out, err := u.List(ctx, actor, in)
	if err != nil {
		return nil, err
	}

	ch, cancel := u.hub.Subscribe(watch.TopicProducts)
	fn(out)

	go func() {
		for {
			select {
			case <-ctx.Done():
				cancel()
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				out, err := u.List(ctx, actor, in)
				if err != nil {
					continue
				}
				fn(out)
			}
		}
	}()
	return cancel, nil
}
