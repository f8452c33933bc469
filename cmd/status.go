package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pmarg/reseat/config"
	"github.com/pmarg/reseat/core/model"
	"github.com/pmarg/reseat/infra/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-bus seat usage",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	snap, err := st.Snapshot(context.Background())
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BUS\tSCHEDULE\tCAPACITY\tA\tB\tBOTH\tSTATE")
	for _, b := range snap.BusList() {
		state := "active"
		switch {
		case b.OnTrip:
			state = "on trip"
		case !b.Active:
			state = "inactive"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			b.ID, b.Shift, b.Capacity,
			b.Load(model.ShiftA), b.Load(model.ShiftB), b.Load(model.ShiftBoth), state)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	unassigned := 0
	for _, s := range snap.Students {
		if !s.Assigned() {
			unassigned++
		}
	}
	fmt.Printf("\n%d students, %d unassigned\n", len(snap.Students), unassigned)
	return nil
}
