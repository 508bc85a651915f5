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

const invoiceStatsCacheKey = "stats:invoices"

type InvoiceUsecase struct {
	tx    repo.TransactionManager
	hub   *watch.Hub
	stats cache.StatsCache
}

func NewInvoiceUsecase(tx repo.TransactionManager, hub *watch.Hub, stats cache.StatsCache) *InvoiceUsecase {
	return &InvoiceUsecase{tx: tx, hub: hub, stats: stats}
}

type GenerateInvoiceInput struct {
	OrderDocID int64   `json:"order_doc_id"`
	Discount   float64 `json:"discount"`
	Notes      string  `json:"notes"`
}

type InvoiceItemOutput struct {
	ProductID   int64   `json:"product_id"`
	Name        string  `json:"name"`
	Qty         int64   `json:"qty"`
	MRP         float64 `json:"mrp"`
	Rate        float64 `json:"rate"`
	DiscountPct float64 `json:"discount_pct"`
	HSNCode     string  `json:"hsn_code"`
	GSTRatePct  float64 `json:"gst_rate_pct"`
	Pack        string  `json:"pack"`
}

type InvoiceOutput struct {
	ID              int64               `json:"id"`
	InvoiceID       string              `json:"invoice_id"`
	OrderID         string              `json:"order_id"`
	OrderDocID      int64               `json:"order_doc_id"`
	CustomerID      int64               `json:"customer_id"`
	CustomerName    string              `json:"customer_name"`
	CustomerEmail   string              `json:"customer_email"`
	CustomerAddress string              `json:"customer_address"`
	Subtotal        float64             `json:"subtotal"`
	Tax             float64             `json:"tax"`
	TaxRate         float64             `json:"tax_rate"`
	Discount        float64             `json:"discount"`
	FinalAmount     float64             `json:"final_amount"`
	Status          string              `json:"status"`
	Notes           string              `json:"notes"`
	GeneratedAt     time.Time           `json:"generated_at"`
	GeneratedByName string              `json:"generated_by_name"`
	Items           []InvoiceItemOutput `json:"items"`
}

// Generate は注文から請求書を起こす。1注文につき1枚。
// すでに発行済みなら新しく作らず既存の1枚を返す（エラーにしない）。
// 金額は注文の明細から再計算するので、請求書と注文の合計は必ず一致する。
func (u *InvoiceUsecase) Generate(ctx context.Context, actor Actor, in GenerateInvoiceInput) (InvoiceOutput, error) {
	if !rbac.Can(actor.Role, rbac.ActionGenerateInvoice) {
		return InvoiceOutput{}, ErrUnauthorized
	}
	if in.OrderDocID <= 0 {
		return InvoiceOutput{}, fmt.Errorf("%w: invalid order id", ErrValidation)
	}
	if in.Discount < 0 {
		return InvoiceOutput{}, fmt.Errorf("%w: discount must be >= 0", ErrValidation)
	}

	var out InvoiceOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, in.OrderDocID)
		if err == repo.ErrNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		// 発行済みチェック。uniqueIndexが最後の砦だが、通常はここで拾う。
		if existing, found, err := r.Invoices().FindByOrderDocID(ctx, order.ID); err != nil {
			return err
		} else if found {
			items, err := r.InvoiceItems().ListByInvoiceID(ctx, existing.ID)
			if err != nil {
				return err
			}
			out = toInvoiceOutput(existing, items)
			return nil
		}

		orderItems, err := r.OrderItems().ListByOrderID(ctx, order.ID)
		if err != nil {
			return err
		}

		customer, err := r.Users().FindByID(ctx, order.CustomerID)
		if err != nil && err != repo.ErrNotFound {
			return err
		}
		customerName := customer.Name
		if strings.TrimSpace(customerName) == "" {
			customerName = "Customer"
		}

		// 明細から再計算。明細に税率が入っていればそれを使い、
		// 1行も無ければ一律2.5%×2の慣行に落とす。
		var subtotal, lineTax float64
		hasLineRates := false
		for _, it := range orderItems {
			subtotal += float64(it.Qty) * it.UnitPrice
			if it.TaxRatePct > 0 {
				hasLineRates = true
				lineTax += float64(it.Qty) * it.UnitPrice * it.TaxRatePct / 100
			}
		}
		subtotal = pricing.Round2(subtotal)

		var totalTax float64
		if hasLineRates {
			totalTax = pricing.Round2(lineTax)
		} else {
			totalTax = pricing.FlatTax(subtotal, pricing.DefaultRatePerComponent)
		}

		final := pricing.Round2(subtotal + totalTax - in.Discount)
		if final < 0 {
			final = 0
		}

		invoiceID, err := nextInvoiceID(ctx, r)
		if err != nil {
			return err
		}

		inv := model.Invoice{
			InvoiceID:       invoiceID,
			OrderID:         order.OrderID,
			OrderDocID:      order.ID,
			CustomerID:      order.CustomerID,
			CustomerName:    customerName,
			CustomerEmail:   customer.Email,
			CustomerAddress: customer.Address,
			Subtotal:        subtotal,
			// 片側成分で保存する。表示側がCGST/SGSTの2行に倍化する。
			Tax:             pricing.PerComponentTax(totalTax),
			TaxRate:         pricing.DefaultRatePerComponent,
			Discount:        pricing.Round2(in.Discount),
			FinalAmount:     final,
			Status:          model.InvoiceStatusPending,
			Notes:           in.Notes,
			GeneratedAt:     time.Now(),
			GeneratedByID:   actor.ID,
			GeneratedByName: actor.Name,
		}
		invID, err := r.Invoices().Create(ctx, inv)
		if err != nil {
			return err
		}

		invItems := make([]model.InvoiceItem, 0, len(orderItems))
		for _, it := range orderItems {
			hsn := it.HSNCode
			if hsn == "" {
				hsn = pricing.DefaultHSNCode
			}
			gst := it.TaxRatePct
			if gst == 0 {
				gst = pricing.DefaultLineGSTPct
			}
			invItems = append(invItems, model.InvoiceItem{
				ProductID:   it.ProductID,
				Name:        it.Name,
				Qty:         it.Qty,
				MRP:         it.UnitPrice,
				Rate:        it.UnitPrice,
				DiscountPct: 0,
				HSNCode:     hsn,
				GSTRatePct:  gst,
				Pack:        it.Pack,
			})
		}
		if err := r.InvoiceItems().CreateBulk(ctx, invID, invItems); err != nil {
			return err
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.ID,
			ActorRole:    actor.Role,
			Action:       model.AuditActionGenerateInvoice,
			ResourceType: model.AuditResourceInvoice,
			ResourceID:   invID,
			AfterJSON:    fmt.Sprintf(`{"invoice_id":%q,"order_id":%q,"final_amount":%.2f}`, invoiceID, order.OrderID, final),
			CreatedAt:    time.Now(),
		}); err != nil {
			return err
		}

		inv.ID = invID
		out = toInvoiceOutput(inv, invItems)
		return nil
	})
	if err != nil {
		return InvoiceOutput{}, err
	}

	u.hub.Notify(watch.TopicInvoices)
	return out, nil
}

func nextInvoiceID(ctx context.Context, r repo.TxRepos) (string, error) {
	for i := 0; i < idRetryLimit; i++ {
		id := bizid.New(bizid.DefaultPrefix)
		_, found, err := r.Invoices().FindByInvoiceID(ctx, id)
		if err != nil {
			return "", err
		}
		if !found {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: could not allocate invoice id", ErrInternal)
}

func (u *InvoiceUsecase) GetByID(ctx context.Context, actor Actor, id int64) (InvoiceOutput, error) {
	if id <= 0 {
		return InvoiceOutput{}, fmt.Errorf("%w: invalid invoice id", ErrValidation)
	}

	var out InvoiceOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		inv, err := r.Invoices().FindByID(ctx, id)
		if err == repo.ErrNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return u.loadInvoiceOutput(ctx, r, actor, inv, &out)
	})
	if err != nil {
		return InvoiceOutput{}, err
	}
	return out, nil
}

func (u *InvoiceUsecase) GetByInvoiceID(ctx context.Context, actor Actor, invoiceID string) (InvoiceOutput, error) {
	if strings.TrimSpace(invoiceID) == "" {
		return InvoiceOutput{}, fmt.Errorf("%w: invoice id required", ErrValidation)
	}

	var out InvoiceOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		inv, found, err := r.Invoices().FindByInvoiceID(ctx, strings.TrimSpace(invoiceID))
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		return u.loadInvoiceOutput(ctx, r, actor, inv, &out)
	})
	if err != nil {
		return InvoiceOutput{}, err
	}
	return out, nil
}

// 注文の業務キーから発行済み請求書を引く
func (u *InvoiceUsecase) GetByOrderID(ctx context.Context, actor Actor, orderID string) (InvoiceOutput, error) {
	if strings.TrimSpace(orderID) == "" {
		return InvoiceOutput{}, fmt.Errorf("%w: order id required", ErrValidation)
	}

	var out InvoiceOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		inv, found, err := r.Invoices().FindByOrderID(ctx, strings.TrimSpace(orderID))
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		return u.loadInvoiceOutput(ctx, r, actor, inv, &out)
	})
	if err != nil {
		return InvoiceOutput{}, err
	}
	return out, nil
}

// 顧客は自分宛の請求書だけ見える
func (u *InvoiceUsecase) loadInvoiceOutput(ctx context.Context, r repo.TxRepos, actor Actor, inv model.Invoice, out *InvoiceOutput) error {
	if !rbac.Can(actor.Role, rbac.ActionViewAllInvoices) && inv.CustomerID != actor.ID {
		return ErrNotFound
	}
	items, err := r.InvoiceItems().ListByInvoiceID(ctx, inv.ID)
	if err != nil {
		return err
	}
	*out = toInvoiceOutput(inv, items)
	return nil
}

func (u *InvoiceUsecase) ListByCustomer(ctx context.Context, customerID int64) ([]InvoiceOutput, error) {
	if customerID <= 0 {
		return []InvoiceOutput{}, ErrUnauthorized
	}

	var outs []InvoiceOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		invs, err := r.Invoices().ListByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		outs, err = u.collect(ctx, r, invs)
		return err
	})
	if err != nil {
		return []InvoiceOutput{}, err
	}
	return outs, nil
}

func (u *InvoiceUsecase) ListAll(ctx context.Context, actor Actor) ([]InvoiceOutput, error) {
	if !rbac.Can(actor.Role, rbac.ActionViewAllInvoices) {
		return []InvoiceOutput{}, ErrUnauthorized
	}

	var outs []InvoiceOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		invs, err := r.Invoices().ListAll(ctx)
		if err != nil {
			return err
		}
		outs, err = u.collect(ctx, r, invs)
		return err
	})
	if err != nil {
		return []InvoiceOutput{}, err
	}
	return outs, nil
}

func (u *InvoiceUsecase) collect(ctx context.Context, r repo.TxRepos, invs []model.Invoice) ([]InvoiceOutput, error) {
	outs := make([]InvoiceOutput, 0, len(invs))
	for _, inv := range invs {
		items, err := r.InvoiceItems().ListByInvoiceID(ctx, inv.ID)
		if err != nil {
			return nil, err
		}
		outs = append(outs, toInvoiceOutput(inv, items))
	}
	return outs, nil
}

func (u *InvoiceUsecase) Statistics(ctx context.Context, actor Actor) (repo.InvoiceStats, error) {
	if !rbac.Can(actor.Role, rbac.ActionViewAllInvoices) {
		return repo.InvoiceStats{}, ErrUnauthorized
	}

	var stats repo.InvoiceStats
	if ok, err := u.stats.Get(ctx, invoiceStatsCacheKey, &stats); err == nil && ok {
		return stats, nil
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		stats, err = r.Invoices().Statistics(ctx, startOfToday())
		return err
	})
	if err != nil {
		return repo.InvoiceStats{}, err
	}

	if err := u.stats.Set(ctx, invoiceStatsCacheKey, stats, statsCacheTTL); err != nil {
		logger.FromCtx(ctx).Warn("invoice stats cache set failed", zap.Error(err))
	}
	return stats, nil
}

// SubscribeAll は全請求書のライブ購読（admin/staff）。全量スナップショット方式。
func (u *InvoiceUsecase) SubscribeAll(ctx context.Context, actor Actor, fn func([]InvoiceOutput)) (func(), error) {
	if !rbac.Can(actor.Role, rbac.ActionViewAllInvoices) {
		return nil, ErrUnauthorized
	}
	return u.subscribe(ctx, func() ([]InvoiceOutput, error) {
		return u.ListAll(ctx, actor)
	}, fn)
}

func (u *InvoiceUsecase) SubscribeCustomer(ctx context.Context, customerID int64, fn func([]InvoiceOutput)) (func(), error) {
	if customerID <= 0 {
		return nil, ErrUnauthorized
	}
	return u.subscribe(ctx, func() ([]InvoiceOutput, error) {
		return u.ListByCustomer(ctx, customerID)
	}, fn)
}

func (u *InvoiceUsecase) subscribe(ctx context.Context, snapshot func() ([]InvoiceOutput, error), fn func([]InvoiceOutput)) (func(), error) {
	outs, err := snapshot()
	if err != nil {
		return nil, err
	}

	ch, cancel := u.hub.Subscribe(watch.TopicInvoices)
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
					logger.FromCtx(ctx).Warn("invoice snapshot refresh failed", zap.Error(err))
					continue
				}
				fn(outs)
			}
		}
	}()
	return cancel, nil
}

func toInvoiceOutput(inv model.Invoice, items []model.InvoiceItem) InvoiceOutput {
	outItems := make([]InvoiceItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, InvoiceItemOutput{
			ProductID:   it.ProductID,
			Name:        it.Name,
			Qty:         it.Qty,
			MRP:         it.MRP,
			Rate:        it.Rate,
			DiscountPct: it.DiscountPct,
			HSNCode:     it.HSNCode,
			GSTRatePct:  it.GSTRatePct,
			Pack:        it.Pack,
		})
	}

	return InvoiceOutput{
		ID:              inv.ID,
		InvoiceID:       inv.InvoiceID,
		OrderID:         inv.OrderID,
		OrderDocID:      inv.OrderDocID,
		CustomerID:      inv.CustomerID,
		CustomerName:    inv.CustomerName,
		CustomerEmail:   inv.CustomerEmail,
		CustomerAddress: inv.CustomerAddress,
		Subtotal:        inv.Subtotal,
		Tax:             inv.Tax,
		TaxRate:         inv.TaxRate,
		Discount:        inv.Discount,
		FinalAmount:     inv.FinalAmount,
		Status:          string(inv.Status),
		Notes:           inv.Notes,
		GeneratedAt:     inv.GeneratedAt,
		GeneratedByName: inv.GeneratedByName,
		Items:           outItems,
	}
}
