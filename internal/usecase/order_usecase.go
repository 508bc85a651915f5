package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finepharma/internal/bizid"
	"finepharma/internal/domain/model"
	"finepharma/internal/infra/cache"
	"finepharma/internal/logger"
	"finepharma/internal/pricing"
	"finepharma/internal/rbac"
	repo "finepharma/internal/repository"
	"finepharma/internal/watch"

	"go.uber.org/zap"
)

const orderStatsCacheKey = "stats:orders"
const statsCacheTTL = 30 * time.Second

// 業務キーの採番リトライ上限
const idRetryLimit = 5

type OrderUsecase struct {
	tx    repo.TransactionManager
	hub   *watch.Hub
	stats cache.StatsCache
}

func NewOrderUsecase(tx repo.TransactionManager, hub *watch.Hub, stats cache.StatsCache) *OrderUsecase {
	return &OrderUsecase{tx: tx, hub: hub, stats: stats}
}

type OrderLineInput struct {
	ProductID int64 `json:"product_id"`
	Qty       int64 `json:"qty"`
}

type OrderItemOutput struct {
	ProductID  int64   `json:"product_id"`
	Name       string  `json:"name"`
	Qty        int64   `json:"qty"`
	UnitPrice  float64 `json:"unit_price"`
	TaxRatePct float64 `json:"tax_rate_pct"`
	HSNCode    string  `json:"hsn_code"`
	Pack       string  `json:"pack"`
}

type OrderOutput struct {
	ID            int64             `json:"id"`
	OrderID       string            `json:"order_id"`
	CustomerID    int64             `json:"customer_id"`
	Status        string            `json:"status"`
	TotalAmount   float64           `json:"total_amount"`
	UpdatedByRole string            `json:"updated_by_role"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Items         []OrderItemOutput `json:"items"`
}

// Place は注文確定。検証→採番→在庫減算→金額確定→保存を1トランザクションで行う。
// 在庫チェックと減算は条件付きUPDATEなので、並行注文でも売り越さない。
// 金額は必ずサーバ側で計算する（クライアントの合計は信用しない）。
func (u *OrderUsecase) Place(ctx context.Context, customer Actor, lines []OrderLineInput) (OrderOutput, error) {
	if customer.ID <= 0 {
		return OrderOutput{}, ErrUnauthorized
	}
	if len(lines) == 0 {
		return OrderOutput{}, fmt.Errorf("%w: order items required", ErrValidation)
	}
	for _, l := range lines {
		if l.ProductID <= 0 {
			return OrderOutput{}, fmt.Errorf("%w: invalid product id", ErrValidation)
		}
		if l.Qty <= 0 {
			return OrderOutput{}, fmt.Errorf("%w: qty must be > 0", ErrValidation)
		}
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orderID, err := nextOrderID(ctx, r)
		if err != nil {
			return err
		}

		// 商品ごとにスナップショットを取りつつ在庫を減らす。
		// 途中で足りなければTxごと巻き戻る。
		orderItems := make([]model.OrderItem, 0, len(lines))
		priceLines := make([]pricing.LineItem, 0, len(lines))

		for _, l := range lines {
			p, err := r.Products().FindByID(ctx, l.ProductID)
			if err == repo.ErrNotFound {
				return fmt.Errorf("%w: product %d", ErrNotFound, l.ProductID)
			}
			if err != nil {
				return err
			}
			if p.Status != model.ProductStatusActive {
				return fmt.Errorf("%w: product %q is not available", ErrValidation, p.Name)
			}

			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, p.ID, l.Qty)
			if err != nil {
				return err
			}
			if !ok {
				return &InsufficientStockError{ProductName: p.Name, Requested: l.Qty, Available: p.Stock}
			}

			orderItems = append(orderItems, model.OrderItem{
				ProductID:  p.ID,
				Name:       p.Name,
				Qty:        l.Qty,
				UnitPrice:  p.Price,
				TaxRatePct: p.GSTRatePct,
				HSNCode:    p.HSNCode,
				Pack:       p.Pack,
			})
			priceLines = append(priceLines, pricing.LineItem{
				Qty:        l.Qty,
				UnitPrice:  p.Price,
				TaxRatePct: p.GSTRatePct,
			})
		}

		totals := pricing.ComputeTotals(priceLines, 0, 0, 0)

		now := time.Now()
		order := model.Order{
			OrderID:       orderID,
			CustomerID:    customer.ID,
			Status:        model.OrderStatusPending,
			TotalAmount:   totals.Grand,
			UpdatedByRole: model.RoleCustomer,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		docID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return err
		}
		if err := r.OrderItems().CreateBulk(ctx, docID, orderItems); err != nil {
			return err
		}

		order.ID = docID
		out = toOrderOutput(order, orderItems)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.hub.Notify(watch.TopicOrders)
	u.hub.Notify(watch.TopicProducts)
	return out, nil
}

// 重複したら採番し直す。5桁乱数なので通常1回で決まる。
func nextOrderID(ctx context.Context, r repo.TxRepos) (string, error) {
	for i := 0; i < idRetryLimit; i++ {
		id := bizid.New(bizid.DefaultPrefix)
		_, found, err := r.Orders().FindByOrderID(ctx, id)
		if err != nil {
			return "", err
		}
		if !found {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: could not allocate order id", ErrInternal)
}

var statusRank = map[model.OrderStatus]int{
	model.OrderStatusPending:    0,
	model.OrderStatusProcessing: 1,
	model.OrderStatusShipped:    2,
	model.OrderStatusDelivered:  3,
}

// 前進のみ許可（スキップは可）。cancelledはpending/processingからだけ。
// delivered/cancelledは終端。
func canTransition(from, to model.OrderStatus) bool {
	if from == model.OrderStatusDelivered || from == model.OrderStatusCancelled {
		return false
	}
	if to == model.OrderStatusCancelled {
		return from == model.OrderStatusPending || from == model.OrderStatusProcessing
	}
	fr, fok := statusRank[from]
	tr, tok := statusRank[to]
	return fok && tok && tr > fr
}

// UpdateStatus はステータス更新。cancelledにしたときは在庫を戻す。
func (u *OrderUsecase) UpdateStatus(ctx context.Context, actor Actor, orderDocID int64, newStatus string) error {
	if !rbac.Can(actor.Role, rbac.ActionUpdateOrderStatus) {
		return ErrUnauthorized
	}
	if orderDocID <= 0 {
		return fmt.Errorf("%w: invalid order id", ErrValidation)
	}

	status := model.OrderStatus(strings.TrimSpace(newStatus))
	if !model.IsValidOrderStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderDocID)
		if err == repo.ErrNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		// 同じ値なら何もしない
		if o.Status == status {
			return nil
		}
		if !canTransition(o.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
		}

		// キャンセル時は在庫戻し
		if status == model.OrderStatusCancelled {
			items, err := r.OrderItems().ListByOrderID(ctx, orderDocID)
			if err != nil {
				return err
			}
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Qty); err != nil {
					return err
				}
			}
		}

		if err := r.Orders().UpdateStatus(ctx, orderDocID, status, actor.Role); err != nil {
			return err
		}

		beforeJSON := fmt.Sprintf(`{"status":%q}`, o.Status)
		afterJSON := fmt.Sprintf(`{"status":%q}`, status)
		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.ID,
			ActorRole:    actor.Role,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderDocID,
			BeforeJSON:   beforeJSON,
			AfterJSON:    afterJSON,
			CreatedAt:    time.Now(),
		})
	})
	if err != nil {
		return err
	}

	u.hub.Notify(watch.TopicOrders)
	return nil
}

func (u *OrderUsecase) GetByID(ctx context.Context, actor Actor, orderDocID int64) (OrderOutput, error) {
	if orderDocID <= 0 {
		return OrderOutput{}, fmt.Errorf("%w: invalid order id", ErrValidation)
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderDocID)
		if err == repo.ErrNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return u.loadOrderOutput(ctx, r, actor, o, &out)
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 業務キー（FPW-YYYY-#####）で1件
func (u *OrderUsecase) GetByOrderID(ctx context.Context, actor Actor, orderID string) (OrderOutput, error) {
	if strings.TrimSpace(orderID) == "" {
		return OrderOutput{}, fmt.Errorf("%w: order id required", ErrValidation)
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, found, err := r.Orders().FindByOrderID(ctx, strings.TrimSpace(orderID))
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		return u.loadOrderOutput(ctx, r, actor, o, &out)
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 顧客は自分の注文だけ。他人のは「存在しない扱い」。
func (u *OrderUsecase) loadOrderOutput(ctx context.Context, r repo.TxRepos, actor Actor, o model.Order, out *OrderOutput) error {
	if !rbac.Can(actor.Role, rbac.ActionViewAllOrders) && o.CustomerID != actor.ID {
		return ErrNotFound
	}
	items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return err
	}
	*out = toOrderOutput(o, items)
	return nil
}

func (u *OrderUsecase) ListByCustomer(ctx context.Context, customerID int64) ([]OrderOutput, error) {
	if customerID <= 0 {
		return []OrderOutput{}, ErrUnauthorized
	}

	var outs []OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		outs, err = u.collect(ctx, r, orders)
		return err
	})
	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// 全注文（admin/staff）。statusやcustomerでの絞り込みもここ。
func (u *OrderUsecase) ListAll(ctx context.Context, actor Actor, f repo.OrderListFilter) ([]OrderOutput, error) {
	if !rbac.Can(actor.Role, rbac.ActionViewAllOrders) {
		return []OrderOutput{}, ErrUnauthorized
	}
	if f.Status != "" && !model.IsValidOrderStatus(model.OrderStatus(f.Status)) {
		return []OrderOutput{}, fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
	}

	var outs []OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().List(ctx, f)
		if err != nil {
			return err
		}
		outs, err = u.collect(ctx, r, orders)
		return err
	})
	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) collect(ctx context.Context, r repo.TxRepos, orders []model.Order) ([]OrderOutput, error) {
	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		outs = append(outs, toOrderOutput(o, items))
	}
	return outs, nil
}

// Statistics は全注文の集計。「今日」はローカルの日付境界。
func (u *OrderUsecase) Statistics(ctx context.Context, actor Actor) (repo.OrderStats, error) {
	if !rbac.Can(actor.Role, rbac.ActionViewAllOrders) {
		return repo.OrderStats{}, ErrUnauthorized
	}

	var stats repo.OrderStats
	if ok, err := u.stats.Get(ctx, orderStatsCacheKey, &stats); err == nil && ok {
		return stats, nil
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		stats, err = r.Orders().Statistics(ctx, startOfToday())
		return err
	})
	if err != nil {
		return repo.OrderStats{}, err
	}

	if err := u.stats.Set(ctx, orderStatsCacheKey, stats, statsCacheTTL); err != nil {
		logger.FromCtx(ctx).Warn("order stats cache set failed", zap.Error(err))
	}
	return stats, nil
}

// SubscribeAll は全注文のライブ購読（admin/staff）。
// 変更のたびに全量スナップショットをコールバックに渡す。差分は送らない。
// 解除は返り値のcancelで明示的に行う。
func (u *OrderUsecase) SubscribeAll(ctx context.Context, actor Actor, fn func([]OrderOutput)) (func(), error) {
	if !rbac.Can(actor.Role, rbac.ActionViewAllOrders) {
		return nil, ErrUnauthorized
	}
	return u.subscribe(ctx, func() ([]OrderOutput, error) {
		return u.ListAll(ctx, actor, repo.OrderListFilter{})
	}, fn)
}

// SubscribeCustomer は自分の注文のライブ購読。
func (u *OrderUsecase) SubscribeCustomer(ctx context.Context, customerID int64, fn func([]OrderOutput)) (func(), error) {
	if customerID <= 0 {
		return nil, ErrUnauthorized
	}
	return u.subscribe(ctx, func() ([]OrderOutput, error) {
		return u.ListByCustomer(ctx, customerID)
	}, fn)
}

func (u *OrderUsecase) subscribe(ctx context.Context, snapshot func() ([]OrderOutput, error), fn func([]OrderOutput)) (func(), error) {
	outs, err := snapshot()
	if err != nil {
		return nil, err
	}

	ch, cancel := u.hub.Subscribe(watch.TopicOrders)
	// 購読直後に現時点の全量を1回流す
	fn(outs)

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
				outs, err := snapshot()
				if err != nil {
					logger.FromCtx(ctx).Warn("order snapshot refresh failed", zap.Error(err))
					continue
				}
				fn(outs)
			}
		}
	}()
	return cancel, nil
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID:  it.ProductID,
			Name:       it.Name,
			Qty:        it.Qty,
			UnitPrice:  it.UnitPrice,
			TaxRatePct: it.TaxRatePct,
			HSNCode:    it.HSNCode,
			Pack:       it.Pack,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		OrderID:       o.OrderID,
		CustomerID:    o.CustomerID,
		Status:        string(o.Status),
		TotalAmount:   o.TotalAmount,
		UpdatedByRole: string(o.UpdatedByRole),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Items:         outItems,
	}
}
