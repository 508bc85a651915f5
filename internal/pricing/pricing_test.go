package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotals(t *testing.T) {
	lines := []LineItem{
		{Qty: 2, UnitPrice: 100, TaxRatePct: 5},  // 200 + 10
		{Qty: 1, UnitPrice: 250, TaxRatePct: 12}, // 250 + 30
	}

	got := ComputeTotals(lines, 0, 0, 0)

	assert.InDelta(t, 450.0, got.Subtotal, 0.01)
	assert.InDelta(t, 40.0, got.Tax, 0.01)
	assert.InDelta(t, 490.0, got.Grand, 0.01)
}

func TestComputeTotals_DiscountExtraShipping(t *testing.T) {
	lines := []LineItem{{Qty: 1, UnitPrice: 100, TaxRatePct: 5}}

	got := ComputeTotals(lines, 20, 3, 40)

	// 100 + 5 + 3 + 40 - 20
	assert.InDelta(t, 128.0, got.Grand, 0.01)
}

func TestComputeTotals_EmptyLines(t *testing.T) {
	got := ComputeTotals(nil, 0, 0, 0)

	assert.Zero(t, got.Subtotal)
	assert.Zero(t, got.Tax)
	assert.Zero(t, got.Grand)
}

func TestComputeTotals_GrandClampedAtZero(t *testing.T) {
	lines := []LineItem{{Qty: 1, UnitPrice: 10}}

	got := ComputeTotals(lines, 100, 0, 0)

	assert.Zero(t, got.Grand)
}

func TestFlatTaxConvention(t *testing.T) {
	// 1000に対して2.5%×2成分=50、保存する片側は25
	total := FlatTax(1000, DefaultRatePerComponent)
	assert.InDelta(t, 50.0, total, 0.01)
	assert.InDelta(t, 25.0, PerComponentTax(total), 0.01)
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 10.56, Round2(10.555), 0.001)
	assert.InDelta(t, 0.1, Round2(0.1+0.2-0.2), 0.001)
}
