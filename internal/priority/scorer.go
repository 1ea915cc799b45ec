// Package priority computes the 0-100 customer priority score carried on tickets.
package priority

import (
	"time"

	"github.com/azlan18/iDEA/internal/domain"
)

const (
	// MaxScore caps the total.
	MaxScore = 100
	// factorCap caps every individual factor.
	factorCap = 20
)

const yearDuration = 365 * 24 * time.Hour

// Breakdown exposes each factor's contribution next to the capped total.
type Breakdown struct {
	Tier        int `json:"tier"`
	AccountAge  int `json:"account_age"`
	CreditScore int `json:"credit_score"`
	Holdings    int `json:"holdings"`
	Activity    int `json:"activity"`
	Total       int `json:"total"`
}

// Score returns the capped priority score for attrs evaluated at now.
func Score(attrs domain.CustomerAttributes, now time.Time) int {
	return Explain(attrs, now).Total
}

// Explain computes the per-factor breakdown. It performs no I/O.
func Explain(attrs domain.CustomerAttributes, now time.Time) Breakdown {
	b := Breakdown{
		Tier:        tierPoints(attrs.Tier),
		AccountAge:  accountAgePoints(attrs.AccountOpenedAt, now),
		CreditScore: creditPoints(attrs.CreditScore),
		Holdings:    holdingsPoints(attrs.AverageHoldings),
		Activity:    activityPoints(attrs.IsActive, attrs.AvgMonthlySpend),
	}
	total := b.Tier + b.AccountAge + b.CreditScore + b.Holdings + b.Activity
	if total > MaxScore {
		total = MaxScore
	}
	b.Total = total
	return b
}

func tierPoints(tier domain.CustomerTier) int {
	switch tier {
	case domain.CustomerTierPremium:
		return 20
	case domain.CustomerTierHigh:
		return 15
	case domain.CustomerTierMedium:
		return 10
	default:
		return 5
	}
}

func accountAgePoints(openedAt *time.Time, now time.Time) int {
	if openedAt == nil || openedAt.After(now) {
		return 0
	}
	years := float64(now.Sub(*openedAt)) / float64(yearDuration)
	switch {
	case years >= 5:
		return 20
	case years >= 3:
		return 15
	case years >= 1:
		return 10
	default:
		return 0
	}
}

func creditPoints(score *int) int {
	if score == nil {
		return 0
	}
	switch {
	case *score >= 800:
		return 20
	case *score >= 700:
		return 15
	case *score >= 600:
		return 10
	default:
		return 0
	}
}

func holdingsPoints(holdings *float64) int {
	if holdings == nil {
		return 0
	}
	switch {
	case *holdings >= 2_000_000:
		return 20
	case *holdings >= 1_500_000:
		return 15
	case *holdings >= 1_000_000:
		return 10
	case *holdings >= 500_000:
		return 5
	default:
		return 0
	}
}

func activityPoints(active bool, spend *float64) int {
	points := 0
	if active {
		points += 10
	}
	if spend != nil {
		switch {
		case *spend >= 100_000:
			points += 10
		case *spend >= 50_000:
			points += 5
		}
	}
	if points > factorCap {
		points = factorCap
	}
	return points
}

// Priority bucket labels.
const (
	BucketLow    = "Low"
	BucketMedium = "Medium"
	BucketHigh   = "High"
)

// Bucket labels a score for dashboards: Low (<=30), Medium (<=70), High.
func Bucket(score int) string {
	switch {
	case score <= 30:
		return BucketLow
	case score <= 70:
		return BucketMedium
	default:
		return BucketHigh
	}
}
