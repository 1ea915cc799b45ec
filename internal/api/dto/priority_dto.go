package dto

import (
	"time"

	"github.com/azlan18/iDEA/internal/domain"
	"github.com/azlan18/iDEA/internal/priority"
)

// PriorityScoreRequest carries precomputed customer attributes.
type PriorityScoreRequest struct {
	Tier            string     `json:"tier"`
	AccountOpenedAt *time.Time `json:"account_opened_at"`
	CreditScore     *int       `json:"credit_score"`
	AverageHoldings *float64   `json:"average_holdings"`
	IsActive        bool       `json:"is_active"`
	AvgMonthlySpend *float64   `json:"avg_monthly_spend"`
}

// Attributes converts the request into scorer input.
func (r PriorityScoreRequest) Attributes() domain.CustomerAttributes {
	return domain.CustomerAttributes{
		Tier:            domain.CustomerTier(r.Tier),
		AccountOpenedAt: r.AccountOpenedAt,
		CreditScore:     r.CreditScore,
		AverageHoldings: r.AverageHoldings,
		IsActive:        r.IsActive,
		AvgMonthlySpend: r.AvgMonthlySpend,
	}
}

// PriorityScoreResponse is the score with its factor breakdown.
type PriorityScoreResponse struct {
	Score     int                `json:"score"`
	Bucket    string             `json:"bucket"`
	Breakdown priority.Breakdown `json:"breakdown"`
}
