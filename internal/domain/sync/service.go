package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"centavo/internal/domain/item"
	"centavo/internal/infrastructure/provider"
)

var (
	syncTracer      = otel.Tracer("centavo/sync")
	syncMeter       = otel.Meter("centavo/sync")
	syncPages, _    = syncMeter.Int64Counter("sync.pages.total", metric.WithDescription("Pages fetched from the provider"))
	syncChanges, _  = syncMeter.Int64Counter("sync.changes.total", metric.WithDescription("Transactions inserted or updated by sync"))
	syncDuration, _ = syncMeter.Float64Histogram("sync.item.duration", metric.WithDescription("Per-item sync duration in seconds"), metric.WithUnit("s"))
)

// ErrSyncInProgress is returned when an item is already being synced by
// another caller. The in-flight sync covers the same data, so callers should
// treat this as a no-op rather than a failure.
var ErrSyncInProgress = errors.New("sync already in progress for this item")

// freshnessWindow bounds how often one item is fetched from the provider.
const freshnessWindow = 24 * time.Hour

// Service drives incremental synchronization: the per-item paginated loop and
// the per-user orchestration across items.
type Service struct {
	client       provider.ClientInterface
	itemRepo     item.Repository
	accounts     *AccountReconciler
	transactions *TransactionReconciler
	locks        *lockRegistry
	now          func() time.Time
}

// NewService creates a new sync service
func NewService(client provider.ClientInterface, itemRepo item.Repository, accounts *AccountReconciler, transactions *TransactionReconciler) *Service {
	return &Service{
		client:       client,
		itemRepo:     itemRepo,
		accounts:     accounts,
		transactions: transactions,
		locks:        newLockRegistry(),
		now:          time.Now,
	}
}

// SyncItem drains all pending pages for one item owned by a user and returns
// the number of transactions added or modified. Returns item.ErrItemNotFound
// when no such item exists for that user; callers log it and treat it as a
// no-op rather than a hard failure.
func (s *Service) SyncItem(ctx context.Context, itemID, userID int64) (int, error) {
	it, err := s.itemRepo.GetForUser(ctx, itemID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load item %d: %w", itemID, err)
	}
	if it == nil {
		log.Printf("User %d: item %d not found, nothing to sync", userID, itemID)
		return 0, item.ErrItemNotFound
	}

	return s.syncItem(ctx, it)
}

// SyncAllForUser runs the sync loop for every item a user has linked,
// sequentially. Items fetched less than 24 hours ago are skipped. A failure
// in one item is logged and does not stop the remaining items; the returned
// total reflects only successfully completed items.
func (s *Service) SyncAllForUser(ctx context.Context, userID int64) (int, error) {
	items, err := s.itemRepo.ListByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list items for user %d: %w", userID, err)
	}

	total := 0
	for _, it := range items {
		if s.isFresh(it) {
			log.Printf("User %d: item %d (%s) fetched %s ago, skipping", userID, it.ID, it.InstitutionName,
				s.now().Sub(*it.LastFetchedAt).Round(time.Minute))
			continue
		}

		changed, err := s.syncItem(ctx, it)
		if err != nil {
			if errors.Is(err, ErrSyncInProgress) {
				log.Printf("User %d: item %d already syncing, skipping", userID, it.ID)
				continue
			}
			log.Printf("User %d: sync failed for item %d (provider item %s): %v", userID, it.ID, it.ProviderItemID, err)
			continue
		}
		total += changed
	}

	return total, nil
}

// SyncOneByExternalID runs the sync loop for the single item the provider
// named in a webhook payload. Unlike the bulk path there is nothing to
// isolate failures from, so errors propagate to the caller.
func (s *Service) SyncOneByExternalID(ctx context.Context, providerItemID string) (int, error) {
	it, err := s.itemRepo.GetByProviderItemID(ctx, providerItemID)
	if err != nil {
		return 0, fmt.Errorf("failed to load item %s: %w", providerItemID, err)
	}
	if it == nil {
		log.Printf("Provider item %s is not linked, ignoring", providerItemID)
		return 0, item.ErrItemNotFound
	}

	return s.syncItem(ctx, it)
}

// isFresh reports whether the item was fetched within the freshness window.
// A nil last-fetched timestamp means the cursor stream was reset (or never
// started) and the item is always due.
func (s *Service) isFresh(it *item.Item) bool {
	return it.LastFetchedAt != nil && s.now().Sub(*it.LastFetchedAt) < freshnessWindow
}

// syncItem is the inner pagination loop: fetch a page with the stored cursor,
// persist the new checkpoint, reconcile the page, repeat while the provider
// reports more pages. The checkpoint is written before the page payload is
// processed, so a crash mid-page resumes from a same-or-slightly-stale cursor
// without losing pagination position. Any error aborts the loop; the last
// committed checkpoint is the resumption point on the next invocation.
func (s *Service) syncItem(ctx context.Context, it *item.Item) (total int, err error) {
	if !s.locks.TryAcquire(it.ID) {
		return 0, ErrSyncInProgress
	}
	defer s.locks.Release(it.ID)

	runID := uuid.NewString()
	start := s.now()

	ctx, span := syncTracer.Start(ctx, "sync.item", trace.WithAttributes(
		attribute.Int64("item.id", it.ID),
		attribute.Int64("user.id", it.UserID),
		attribute.String("sync.run_id", runID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		syncDuration.Record(ctx, time.Since(start).Seconds())
		span.End()
	}()

	log.Printf("Sync %s: starting item %d (%s) for user %d", runID, it.ID, it.InstitutionName, it.UserID)

	cursor := ""
	if it.Cursor != nil {
		cursor = *it.Cursor
	}

	pages := 0
	for {
		page, err := s.client.TransactionsSync(ctx, it.AccessToken, cursor)
		if err != nil {
			return total, fmt.Errorf("provider fetch failed for item %d: %w", it.ID, err)
		}
		pages++
		syncPages.Add(ctx, 1)

		// Commit the checkpoint before touching the payload.
		cp := item.NewCheckpoint(page.NextCursor, s.now())
		if err := s.itemRepo.SaveCheckpoint(ctx, it.ID, cp); err != nil {
			return total, fmt.Errorf("failed to persist checkpoint for item %d: %w", it.ID, err)
		}
		cursor = page.NextCursor

		if _, err := s.accounts.Reconcile(ctx, page.Accounts, it.ID, it.UserID); err != nil {
			return total, err
		}

		processed, err := s.transactions.Reconcile(ctx, page.Added, page.Modified, removedIDs(page.Removed), it.UserID)
		if err != nil {
			return total, err
		}
		total += processed

		if !page.HasMore {
			break
		}
		// Safe cancellation point: the checkpoint for this page is durable.
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}

	syncChanges.Add(ctx, int64(total))
	log.Printf("Sync %s: item %d done, %d pages, %d transactions added/modified", runID, it.ID, pages, total)
	return total, nil
}

func removedIDs(removed []provider.RemovedTransaction) []string {
	if len(removed) == 0 {
		return nil
	}
	ids := make([]string, 0, len(removed))
	for _, r := range removed {
		ids = append(ids, r.TransactionID)
	}
	return ids
}
