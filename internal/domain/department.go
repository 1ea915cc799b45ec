package domain

import "strings"

// Domain is a department label a ticket belongs to and an agent may serve.
type Domain string

const (
	DomainRetailBanking Domain = "Retail Banking & Customer Support"
	DomainLoanCredit    Domain = "Loan & Credit Department"
	DomainPayments      Domain = "Payments & Clearing Department"
	DomainWealth        Domain = "Wealth Management & Deposit Services"
	DomainCompliance    Domain = "Regulatory & Compliance Department"
)

// AllDomains lists the closed domain set in display order.
var AllDomains = []Domain{
	DomainRetailBanking,
	DomainLoanCredit,
	DomainPayments,
	DomainWealth,
	DomainCompliance,
}

// ParseDomain matches a label against the closed set, ignoring surrounding space and case.
func ParseDomain(raw string) (Domain, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, d := range AllDomains {
		if strings.EqualFold(string(d), trimmed) {
			return d, true
		}
	}
	return "", false
}

// Valid reports whether d is one of the closed set.
func (d Domain) Valid() bool {
	for _, candidate := range AllDomains {
		if candidate == d {
			return true
		}
	}
	return false
}
