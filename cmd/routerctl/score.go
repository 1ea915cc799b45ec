package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/azlan18/iDEA/internal/domain"
	"github.com/azlan18/iDEA/internal/priority"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute a customer priority score",
	RunE:  runScore,
}

var (
	scoreTier     string
	scoreOpened   string
	scoreCredit   int
	scoreHoldings float64
	scoreActive   bool
	scoreSpend    float64
)

func init() {
	scoreCmd.Flags().StringVar(&scoreTier, "tier", "", "Customer tier (Premium, High, Medium, Low)")
	scoreCmd.Flags().StringVar(&scoreOpened, "opened", "", "Account opening date, YYYY-MM-DD")
	scoreCmd.Flags().IntVar(&scoreCredit, "credit", 0, "Credit score")
	scoreCmd.Flags().Float64Var(&scoreHoldings, "holdings", 0, "Average holdings")
	scoreCmd.Flags().BoolVar(&scoreActive, "active", false, "Customer is active")
	scoreCmd.Flags().Float64Var(&scoreSpend, "spend", 0, "Average monthly spend")
}

func runScore(cmd *cobra.Command, _ []string) error {
	attrs := domain.CustomerAttributes{
		Tier:     domain.CustomerTier(scoreTier),
		IsActive: scoreActive,
	}
	flags := cmd.Flags()
	if flags.Changed("opened") {
		opened, err := time.Parse("2006-01-02", scoreOpened)
		if err != nil {
			return fmt.Errorf("invalid --opened: %w", err)
		}
		attrs.AccountOpenedAt = &opened
	}
	if flags.Changed("credit") {
		credit := scoreCredit
		attrs.CreditScore = &credit
	}
	if flags.Changed("holdings") {
		holdings := scoreHoldings
		attrs.AverageHoldings = &holdings
	}
	if flags.Changed("spend") {
		spend := scoreSpend
		attrs.AvgMonthlySpend = &spend
	}

	breakdown := priority.Explain(attrs, time.Now())
	out := struct {
		Score     int                `json:"score"`
		Bucket    string             `json:"bucket"`
		Breakdown priority.Breakdown `json:"breakdown"`
	}{breakdown.Total, priority.Bucket(breakdown.Total), breakdown}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
