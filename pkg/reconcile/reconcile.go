// Package reconcile finishes or fails intents that a workflow left behind and
// audits every group vault against its invariants.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/vault-wallet/pkg/groupvault"
	"github.com/chris/vault-wallet/pkg/metrics"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/scheduler"
	"github.com/chris/vault-wallet/pkg/storage"
)

// DefaultStuckThreshold is how old an unfinished intent must be before it is touched.
const DefaultStuckThreshold = 20 * time.Minute

// Resumer drives one intent to a terminal state.
type Resumer interface {
	Resume(ctx context.Context, intent *models.Intent) (groupvault.Outcome, error)
}

// Reconciler processes stuck intents and audits vaults.
type Reconciler struct {
	Store   storage.WorkflowStore
	Resumer Resumer
	// Scheduler, when set, receives stuck intents instead of resuming them in-process.
	Scheduler scheduler.IntentScheduler
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	Threshold time.Duration
	// Repair resets a mismatched vault total to the sum of its members.
	Repair bool
	Now    func() time.Time
}

// Violation is one failed invariant check on a vault.
type Violation struct {
	GroupVaultId string
	Check        string
	Detail       string
	Repaired     bool
}

const (
	CheckTotalMismatch = "total_mismatch"
	CheckLeaderCount   = "leader_count"
)

// Report summarises one reconciliation pass.
type Report struct {
	Stuck      int
	Enqueued   int
	Applied    int
	Failed     int
	Skipped    int
	Errors     int
	Audited    int
	Violations []Violation
}

func (r *Reconciler) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Reconciler) threshold() time.Duration {
	if r.Threshold <= 0 {
		return DefaultStuckThreshold
	}
	return r.Threshold
}

// RunOnce processes stuck intents and then audits every vault. One bad intent or
// vault does not stop the pass.
func (r *Reconciler) RunOnce(ctx context.Context) (*Report, error) {
	report := &Report{}
	if err := r.ProcessStuck(ctx, report); err != nil {
		return report, err
	}
	if err := r.Audit(ctx, report); err != nil {
		return report, err
	}

	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	r.Metrics.MarkReconciled(now)
	r.logger().Info("reconciliation finished",
		slog.Int("stuck", report.Stuck),
		slog.Int("enqueued", report.Enqueued),
		slog.Int("applied", report.Applied),
		slog.Int("failed", report.Failed),
		slog.Int("skipped", report.Skipped),
		slog.Int("errors", report.Errors),
		slog.Int("audited", report.Audited),
		slog.Int("violations", len(report.Violations)))
	return report, nil
}

// ProcessStuck enqueues or resumes every intent older than the threshold.
func (r *Reconciler) ProcessStuck(ctx context.Context, report *Report) error {
	stuck, err := r.Store.GetStuckIntents(ctx, r.threshold())
	if err != nil {
		return fmt.Errorf("failed to get stuck intents: %w", err)
	}
	report.Stuck += len(stuck)

	for i := range stuck {
		intent := &stuck[i]
		log := r.logger().With(slog.String("intent_id", intent.Id), slog.String("kind", string(intent.Kind)),
			slog.String("status", string(intent.Status)))

		if r.Scheduler != nil {
			if err := r.Scheduler.ScheduleIntent(ctx, intent); err != nil {
				log.Error("failed to re-enqueue intent", slog.Any("error", err))
				report.Errors++
				r.Metrics.RecordReconciledIntent(string(intent.Kind), "error")
				continue
			}
			report.Enqueued++
			r.Metrics.RecordReconciledIntent(string(intent.Kind), "enqueued")
			continue
		}

		outcome, err := r.Resumer.Resume(ctx, intent)
		if err != nil {
			log.Error("failed to resume intent", slog.Any("error", err))
			report.Errors++
			r.Metrics.RecordReconciledIntent(string(intent.Kind), "error")
			continue
		}
		switch outcome {
		case groupvault.OutcomeApplied:
			report.Applied++
		case groupvault.OutcomeFailed:
			report.Failed++
		default:
			report.Skipped++
		}
		r.Metrics.RecordReconciledIntent(string(intent.Kind), string(outcome))
		log.Info("resumed intent", slog.String("outcome", string(outcome)))
	}
	return nil
}

// Audit checks total == sum of contributions and at most one leader for every vault.
func (r *Reconciler) Audit(ctx context.Context, report *Report) error {
	vaults, err := r.Store.ListAllGroupVaults(ctx)
	if err != nil {
		return fmt.Errorf("failed to list group vaults for audit: %w", err)
	}

	for i := range vaults {
		vault := &vaults[i]
		members, err := r.Store.ListMembers(ctx, vault.Id)
		if err != nil {
			r.logger().Error("failed to list members for audit", slog.String("group_vault_id", vault.Id), slog.Any("error", err))
			report.Errors++
			continue
		}
		report.Audited++

		var sum models.Cents
		leaders := 0
		for _, m := range members {
			sum += m.ContributionBalance
			if m.IsLeader {
				leaders++
			}
		}

		if sum != vault.TotalBalance {
			v := Violation{
				GroupVaultId: vault.Id,
				Check:        CheckTotalMismatch,
				Detail:       fmt.Sprintf("total %d, members sum %d", vault.TotalBalance, sum),
			}
			if r.Repair {
				v.Repaired = r.repairTotal(ctx, vault, sum)
			}
			r.violation(report, v)
		}
		if leaders > 1 {
			r.violation(report, Violation{
				GroupVaultId: vault.Id,
				Check:        CheckLeaderCount,
				Detail:       fmt.Sprintf("%d members flagged as leader", leaders),
			})
		}
	}
	return nil
}

func (r *Reconciler) violation(report *Report, v Violation) {
	report.Violations = append(report.Violations, v)
	r.Metrics.RecordViolation(v.Check)
	r.logger().Warn("group vault invariant violated",
		slog.String("group_vault_id", v.GroupVaultId),
		slog.String("check", v.Check),
		slog.String("detail", v.Detail),
		slog.Bool("repaired", v.Repaired))
}

func (r *Reconciler) repairTotal(ctx context.Context, vault *models.GroupVault, sum models.Cents) bool {
	err := r.Store.RepairTotal(ctx, vault.Id, vault.Version, sum)
	if err == nil {
		return true
	}
	if errors.Is(err, storage.ErrConditionFailed) {
		r.logger().Info("vault changed during audit, repair skipped", slog.String("group_vault_id", vault.Id))
	} else {
		r.logger().Error("failed to repair vault total", slog.String("group_vault_id", vault.Id), slog.Any("error", err))
	}
	return false
}
