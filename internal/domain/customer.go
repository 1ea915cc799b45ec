package domain

import "time"

// CustomerTier is the bank's relationship tier for a customer.
type CustomerTier string

const (
	CustomerTierPremium CustomerTier = "Premium"
	CustomerTierHigh    CustomerTier = "High"
	CustomerTierMedium  CustomerTier = "Medium"
	CustomerTierLow     CustomerTier = "Low"
)

// CustomerAttributes are precomputed risk/priority inputs supplied by upstream systems.
// Nil pointers mean the factor is unknown and contributes its lowest tier.
type CustomerAttributes struct {
	Tier            CustomerTier
	AccountOpenedAt *time.Time
	CreditScore     *int
	AverageHoldings *float64
	IsActive        bool
	AvgMonthlySpend *float64
}
