package service

import (
	"context"
	"log"

	"gorm.io/gorm"
)

/* =========================================================
   Student center sync

   The customer-facing application keeps its own denormalized
   hold flag. The primary-store commit is the durability
   boundary; this update is fire-and-forget, so the two
   stores can diverge until the next successful sync. No
   retry queue here.
========================================================= */

// ClearRemoteHold clears the on-hold flag in the student center database
// for the matching (account, course) row. Failures are logged, never
// surfaced: the financial record has already been committed locally.
func ClearRemoteHold(ctx context.Context, remote *gorm.DB, accountID *int64, courseCode string) {
	if remote == nil {
		log.Println("[REMOTE SYNC] remote database not configured, skipping hold sync")
		return
	}
	if accountID == nil {
		log.Println("[REMOTE SYNC] enrollment has no student center account, skipping hold sync")
		return
	}

	err := remote.WithContext(ctx).
		Exec("UPDATE students SET on_hold = 0 WHERE account_id = ? AND course_code = ?",
			*accountID, courseCode).Error
	if err != nil {
		log.Printf("[REMOTE SYNC] error updating student center status account=%d course=%s: %v",
			*accountID, courseCode, err)
	}
}
