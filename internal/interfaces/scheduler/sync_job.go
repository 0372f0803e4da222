package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"centavo/internal/domain/notification"
	"centavo/internal/domain/sync"
)

// UserSyncJob syncs all linked items for a single user and pushes a
// notification when the sync brought in new data.
type UserSyncJob struct {
	userID      int64
	syncService *sync.Service
	notifier    *notification.Service
}

// NewUserSyncJob creates a sync job for a user. notifier may be nil.
func NewUserSyncJob(userID int64, syncService *sync.Service, notifier *notification.Service) *UserSyncJob {
	return &UserSyncJob{
		userID:      userID,
		syncService: syncService,
		notifier:    notifier,
	}
}

// Execute runs the sync and reports how many transactions changed.
func (j *UserSyncJob) Execute(ctx context.Context) error {
	changed, err := j.syncService.SyncAllForUser(ctx, j.userID)
	if err != nil {
		return fmt.Errorf("sync failed for user %d: %w", j.userID, err)
	}

	log.Printf("Sync for user %d completed: %d transactions changed", j.userID, changed)

	if changed > 0 && j.notifier != nil {
		if err := j.notifier.SendSyncComplete(ctx, j.userID, changed); err != nil {
			log.Printf("Failed to notify user %d after sync: %v", j.userID, err)
		}
	}

	return nil
}

// UserID returns the user ID associated with this job.
func (j *UserSyncJob) UserID() string {
	return strconv.FormatInt(j.userID, 10)
}

// Description returns a human-readable description of the job.
func (j *UserSyncJob) Description() string {
	return fmt.Sprintf("Item sync for user %d", j.userID)
}
