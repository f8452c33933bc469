package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmarg/reseat/config"
	"github.com/pmarg/reseat/infra/store"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent commit audit entries",
	RunE:  runAudit,
}

func init() {
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "maximum entries to show")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	entries, err := st.ListAudit(context.Background(), auditLimit)
	if err != nil {
		return fmt.Errorf("list audit: %w", err)
	}
	for _, e := range entries {
		kind := "commit"
		if e.Reverted {
			kind = "revert"
		}
		fmt.Printf("%s %s by %s (%s, %d moves)\n",
			e.CreatedAt.Format(time.RFC3339), kind, e.ActorID, e.ID, len(e.Moves))
		for _, m := range e.Moves {
			from := m.FromBusID
			if from == "" {
				from = "(unassigned)"
			}
			to := m.ToBusID
			if to == "" {
				to = "(unassigned)"
			}
			fmt.Printf("  %s: %s -> %s [%s]\n", m.StudentID, from, to, m.Shift)
		}
	}
	return nil
}
