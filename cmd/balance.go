package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmarg/reseat/config"
	"github.com/pmarg/reseat/core/assign"
	"github.com/pmarg/reseat/core/commit"
	"github.com/pmarg/reseat/core/events"
	coremetrics "github.com/pmarg/reseat/core/metrics"
	"github.com/pmarg/reseat/core/model"
	"github.com/pmarg/reseat/core/plan"
	"github.com/pmarg/reseat/core/staging"
	"github.com/pmarg/reseat/infra/logger"
	"github.com/pmarg/reseat/infra/metrics"
	"github.com/pmarg/reseat/infra/store"
	"github.com/pmarg/reseat/internal/eventbus"
)

var balanceDryRun bool

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Allocate unassigned students and commit the result",
	RunE:  runBalance,
}

func init() {
	balanceCmd.Flags().BoolVar(&balanceDryRun, "dry-run", false, "preview net changes without committing")
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.SetGlobalLevel(cfg.Logging.Level)
	logg := logger.New("balance")

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logg.Errorf("store close: %v", err)
		}
	}()

	snap, err := st.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	var pending []model.Student
	for _, s := range snap.StudentList() {
		if !s.Assigned() && !s.Locked {
			pending = append(pending, s)
		}
	}
	if len(pending) == 0 {
		logg.Infof("no unassigned students, nothing to do")
		return nil
	}

	sink, err := metrics.NewFromConfig(cfg.Metrics, logg)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, cfg.Metrics.PrometheusAddr); err != nil {
				logg.Errorf("prometheus server: %v", err)
			}
		}()
	}

	var alloc assign.Allocator
	res := alloc.Allocate(pending, snap.BusList())
	for _, u := range res.Unassigned {
		logg.Warnf("student %s left unassigned: %s", u.StudentID, u.Reason)
	}
	if ar, ok := sink.(coremetrics.AllocationRecorder); ok {
		if err := ar.RecordAllocation(coremetrics.AllocationEvent{
			Assigned:      len(res.Assignments),
			Unassigned:    len(res.Unassigned),
			BalanceStdDev: res.Balance.StdDev,
			Time:          time.Now(),
		}); err != nil {
			logg.Errorf("allocation metrics error: %v", err)
		}
	}

	session := staging.NewSession()
	for _, s := range pending {
		busID, ok := res.Assignments[s.ID]
		if !ok {
			continue
		}
		if _, err := session.Stage(s, busID); err != nil {
			logg.Warnf("skip staging %s: %v", s.ID, err)
		}
	}

	changes := plan.ComputeNetChanges(session.List(), snap)
	if !changes.HasChanges() {
		logg.Infof("staged %d operations but net effect is empty (%d no-ops)", session.Len(), changes.RemovedNoOpCount())
		return nil
	}
	validation := plan.Validate(changes, snap, cfg.Plan)
	for _, is := range validation.Warnings {
		logg.Warnf("%s", is.Message)
	}
	if !validation.IsValid() {
		for _, is := range validation.Errors {
			logg.Errorf("%s", is.Message)
		}
		return fmt.Errorf("validation failed with %d errors", len(validation.Errors))
	}
	if balanceDryRun {
		for _, busID := range changes.BusIDs() {
			ch := changes.Changes[busID]
			logg.Infof("bus %s: +%d -%d", busID, len(ch.Added), len(ch.Removed))
		}
		logg.Infof("dry run, not committing")
		return nil
	}

	bus := eventbus.New()
	defer bus.Close()
	committer, err := commit.NewCommitter(st, logg, sink, bus)
	if err != nil {
		return err
	}
	actor := commit.Actor{ID: "cli", Metadata: map[string]string{"host": hostname()}}
	result, err := committer.Commit(ctx, changes, actor)
	if err != nil {
		if _, ok := err.(*commit.ConflictError); ok {
			return fmt.Errorf("commit lost a concurrency race, re-run to retry: %w", err)
		}
		return fmt.Errorf("commit: %w", err)
	}
	bus.Publish(events.StagingClearedEvent{Operations: session.Clear(), Time: time.Now()})
	logg.Infof("committed %d moves, audit entry %s", len(result.Moves), result.AuditID)
	return nil
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
