package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/azlan18/iDEA/internal/roster"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Inspect agent rosters",
}

var rosterCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate a roster file, or print the built-in roster",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRosterCheck,
}

func init() {
	rosterCmd.AddCommand(rosterCheckCmd)
}

func runRosterCheck(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	agents, err := roster.Load(path)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROLE\tPASSWORD\tDOMAINS")
	for _, a := range agents {
		domains := make([]string, 0, len(a.EligibleDomains))
		for _, d := range a.EligibleDomains {
			domains = append(domains, string(d))
		}
		password := "no"
		if a.PasswordHash != "" {
			password = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Role, password, strings.Join(domains, ", "))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d agents OK\n", len(agents))
	return nil
}
