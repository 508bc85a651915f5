package pricing

import "math"

// GSTの既定値（CGST/SGSTは片側ずつ）
const (
	DefaultRatePerComponent = 2.5
	DefaultLineGSTPct       = 5.00
	DefaultHSNCode          = "3004"
)

type LineItem struct {
	Qty        int64
	UnitPrice  float64
	TaxRatePct float64
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Discount float64 `json:"discount"`
	Extra    float64 `json:"extra"`
	Shipping float64 `json:"shipping"`
	Grand    float64 `json:"grand_total"`
}

// 小数2桁（パイサ）に丸める
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeTotals は明細ごとの税率で税額を出して合算する。
// 混在税率のカートをそのまま扱える。符号チェックは呼び出し側。
// 空の明細は全項目ゼロ（エラーにしない）。
func ComputeTotals(lines []LineItem, discount, extra, shipping float64) Totals {
	var subtotal, tax float64
	for _, l := range lines {
		amount := float64(l.Qty) * l.UnitPrice
		subtotal += amount
		tax += amount * l.TaxRatePct / 100
	}

	grand := subtotal + tax + extra + shipping - discount
	if grand < 0 {
		grand = 0
	}

	return Totals{
		Subtotal: Round2(subtotal),
		Tax:      Round2(tax),
		Discount: Round2(discount),
		Extra:    Round2(extra),
		Shipping: Round2(shipping),
		Grand:    Round2(grand),
	}
}

// FlatTax は一律レート（片側×2）での総GST額
func FlatTax(taxable, ratePerComponent float64) float64 {
	return Round2(taxable * (ratePerComponent * 2) / 100)
}

// PerComponentTax は保存用の片側成分。
// 請求書のtax欄は総GSTの半分で持ち、表示側がCGST/SGSTの2行に展開する。
func PerComponentTax(totalTax float64) float64 {
	return Round2(totalTax / 2)
}
