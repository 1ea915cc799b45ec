package priority

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/azlan18/iDEA/internal/domain"
)

var now = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func ptrInt(v int) *int           { return &v }
func ptrFloat(v float64) *float64 { return &v }
func yearsAgo(y float64) *time.Time {
	t := now.Add(-time.Duration(y * float64(yearDuration)))
	return &t
}

func TestScore_EmptyAttributesUseLowestTiers(t *testing.T) {
	got := Explain(domain.CustomerAttributes{}, now)
	assert.Equal(t, Breakdown{Tier: 5, Total: 5}, got)
}

func TestScore_MaximumIsCapped(t *testing.T) {
	attrs := domain.CustomerAttributes{
		Tier:            domain.CustomerTierPremium,
		AccountOpenedAt: yearsAgo(10),
		CreditScore:     ptrInt(850),
		AverageHoldings: ptrFloat(5_000_000),
		IsActive:        true,
		AvgMonthlySpend: ptrFloat(250_000),
	}
	got := Explain(attrs, now)
	assert.Equal(t, 20, got.Tier)
	assert.Equal(t, 20, got.AccountAge)
	assert.Equal(t, 20, got.CreditScore)
	assert.Equal(t, 20, got.Holdings)
	assert.Equal(t, 20, got.Activity)
	assert.Equal(t, MaxScore, got.Total)
}

func TestScore_FactorBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		attrs domain.CustomerAttributes
		want  int
	}{
		{"high tier", domain.CustomerAttributes{Tier: domain.CustomerTierHigh}, 15},
		{"medium tier", domain.CustomerAttributes{Tier: domain.CustomerTierMedium}, 10},
		{"unknown tier", domain.CustomerAttributes{Tier: "Gold"}, 5},
		{"three year account", domain.CustomerAttributes{AccountOpenedAt: yearsAgo(3.5)}, 5 + 15},
		{"one year account", domain.CustomerAttributes{AccountOpenedAt: yearsAgo(1.2)}, 5 + 10},
		{"new account", domain.CustomerAttributes{AccountOpenedAt: yearsAgo(0.5)}, 5},
		{"future account date", domain.CustomerAttributes{AccountOpenedAt: yearsAgo(-1)}, 5},
		{"credit 700", domain.CustomerAttributes{CreditScore: ptrInt(700)}, 5 + 15},
		{"credit 600", domain.CustomerAttributes{CreditScore: ptrInt(600)}, 5 + 10},
		{"credit 599", domain.CustomerAttributes{CreditScore: ptrInt(599)}, 5},
		{"holdings 1.5M", domain.CustomerAttributes{AverageHoldings: ptrFloat(1_500_000)}, 5 + 15},
		{"holdings 1M", domain.CustomerAttributes{AverageHoldings: ptrFloat(1_000_000)}, 5 + 10},
		{"holdings 500k", domain.CustomerAttributes{AverageHoldings: ptrFloat(500_000)}, 5 + 5},
		{"active only", domain.CustomerAttributes{IsActive: true}, 5 + 10},
		{"moderate spend inactive", domain.CustomerAttributes{AvgMonthlySpend: ptrFloat(60_000)}, 5 + 5},
		{"active high spend", domain.CustomerAttributes{IsActive: true, AvgMonthlySpend: ptrFloat(100_000)}, 5 + 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.attrs, now))
		})
	}
}

func TestScore_IsDeterministic(t *testing.T) {
	attrs := domain.CustomerAttributes{Tier: domain.CustomerTierMedium, CreditScore: ptrInt(720), IsActive: true}
	first := Score(attrs, now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(attrs, now))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.LessOrEqual(t, first, MaxScore)
}

func TestBucket(t *testing.T) {
	assert.Equal(t, "Low", Bucket(0))
	assert.Equal(t, "Low", Bucket(30))
	assert.Equal(t, "Medium", Bucket(31))
	assert.Equal(t, "Medium", Bucket(70))
	assert.Equal(t, "High", Bucket(71))
}
