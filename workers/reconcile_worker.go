// workers/reconcile_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"team-manage-system/models"
	"team-manage-system/services"

	"gorm.io/gorm"
)

// RedemptionReconcileWorker repairs the acknowledged partial-failure class: a
// code marked consumed whose side effects never fully landed (client crashed
// or navigated away between the conditional update and the follow-up writes).
// That covers both missing relationship rows and a redeemer profile left
// unbound. The repairs are idempotent, so re-running them for every affected
// code is always safe. The client-side resumable retry stays the fast path;
// this sweep just bounds how long an orphaned consumption can linger.
type RedemptionReconcileWorker struct {
	db          *gorm.DB
	codeService *services.AccessCodeService
	interval    time.Duration
	minAge      time.Duration // leave the in-flight window to the client retry
}

func NewRedemptionReconcileWorker(db *gorm.DB, codeService *services.AccessCodeService) *RedemptionReconcileWorker {
	return &RedemptionReconcileWorker{
		db:          db,
		codeService: codeService,
		interval:    5 * time.Minute,
		minAge:      2 * time.Minute,
	}
}

func (w *RedemptionReconcileWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Redemption Reconcile Worker (consumed codes → missing relationships)…")
	go w.run(ctx)
}

func (w *RedemptionReconcileWorker) run(ctx context.Context) {
	// Initial pass catches anything left over from before the last restart.
	if err := w.sweep(); err != nil {
		log.Printf("⚠️ Initial reconcile sweep failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 Redemption Reconcile Worker stopped")
			return
		case <-ticker.C:
			if err := w.sweep(); err != nil {
				log.Printf("[RECONCILE] ⚠️ sweep failed: %v", err)
			}
		}
	}
}

// sweep finds consumed codes whose side effects are incomplete — athlete
// codes missing their CoachAthlete or UserSport row, or any code whose
// redeemer's profile was never bound to the role/organization — and re-runs
// the repair for them.
func (w *RedemptionReconcileWorker) sweep() error {
	cutoff := time.Now().Add(-w.minAge)

	var codes []models.AccessCode
	err := w.db.Raw(`
		SELECT ac.*
		FROM access_codes ac
		WHERE ac.used_at IS NOT NULL
		  AND ac.used_at <= ?
		  AND (
		    (
		      ac.role = ?
		      AND ac.sport_id IS NOT NULL
		      AND (
		        NOT EXISTS (
		          SELECT 1 FROM coach_athletes ca
		          WHERE ca.coach_id = ac.created_by
		            AND ca.athlete_id = ac.used_by
		            AND ca.sport_id = ac.sport_id
		            AND ca.organization_id = ac.organization_id
		        )
		        OR NOT EXISTS (
		          SELECT 1 FROM user_sports us
		          WHERE us.user_id = ac.used_by
		            AND us.sport_id = ac.sport_id
		            AND us.organization_id = ac.organization_id
		        )
		      )
		    )
		    OR EXISTS (
		      SELECT 1 FROM profiles p
		      WHERE p.external_user_id = ac.used_by
		        AND (p.role = '' OR p.organization_id IS NULL)
		    )
		  )
	`, cutoff, models.RoleAthlete).Scan(&codes).Error
	if err != nil {
		return err
	}
	if len(codes) == 0 {
		return nil
	}

	repaired := 0
	for i := range codes {
		code := &codes[i]
		if code.UsedBy == nil {
			// Consumed row without a consumer shouldn't exist; log and move on.
			log.Printf("[RECONCILE] ⚠️ code %s consumed with no used_by, skipping", code.Code)
			continue
		}
		if err := w.codeService.RepairRedemption(code, *code.UsedBy); err != nil {
			log.Printf("[RECONCILE] ⚠️ failed to repair code %s: %v", code.Code, err)
			continue
		}
		repaired++
	}
	log.Printf("[RECONCILE] ✅ repaired %d/%d orphaned redemption(s)", repaired, len(codes))
	return nil
}
