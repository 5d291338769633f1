package domain

// Portfolio holds the free balances of the two session assets as observed
// this cycle. Fills mutate it on the venue side; the core only reads it.
type Portfolio struct {
	BaseFree  float64
	QuoteFree float64
}

// TotalValue is the portfolio's worth in quote-currency terms at the given
// mid price.
func (p Portfolio) TotalValue(mid float64) float64 {
	return p.QuoteFree + p.BaseFree*mid
}

// AssetRatio is the signed inventory skew: how far the base-currency share
// of the portfolio sits from the 50/50 target. Positive means base-heavy,
// negative means quote-heavy, range roughly [-0.5, 0.5].
func (p Portfolio) AssetRatio(mid float64) float64 {
	total := p.TotalValue(mid)
	if total <= 0 {
		return 0
	}
	return (p.BaseFree*mid)/total - 0.5
}
