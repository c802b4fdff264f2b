package usage

import (
	"context"

	"gorm.io/gorm"

	"github.com/bridgeos/bridgeos/internal/domain"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

type Repo interface {
	// Get returns (creating a zeroed row on first read if missing) the
	// manager's counter, per spec §4.7.
	Get(ctx context.Context, tx *gorm.DB, managerID int64) (*domain.UsageTracking, error)
	// Increment performs the single atomic UPDATE named in §4.7: no
	// read-then-write, computed and returned in one statement.
	Increment(ctx context.Context, tx *gorm.DB, managerID int64, freeLimit int64) (*domain.UsageTracking, error)
	Reset(ctx context.Context, tx *gorm.DB, managerID int64) error
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepo(db *gorm.DB, log *logger.Logger) Repo {
	return &repo{db: db, log: log.With("repo", "usage.Repo")}
}

func (r *repo) Get(ctx context.Context, tx *gorm.DB, managerID int64) (*domain.UsageTracking, error) {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	var out domain.UsageTracking
	err := txx.WithContext(ctx).
		Where(domain.UsageTracking{ManagerID: managerID}).
		FirstOrCreate(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Increment uses a raw UPDATE ... RETURNING so messages_sent and
// is_blocked are computed server-side in the same statement (spec §4.7:
// "single atomic UPDATE", not read-modify-write).
func (r *repo) Increment(ctx context.Context, tx *gorm.DB, managerID int64, freeLimit int64) (*domain.UsageTracking, error) {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	// Ensure the row exists before the UPDATE so a first-ever message
	// doesn't silently no-op.
	if _, err := r.Get(ctx, txx, managerID); err != nil {
		return nil, err
	}

	var out domain.UsageTracking
	err := txx.WithContext(ctx).Raw(`
		UPDATE usage_tracking
		SET messages_sent = messages_sent + 1,
		    is_blocked = (messages_sent + 1 >= ?),
		    first_message_at = COALESCE(first_message_at, now()),
		    last_message_at = now()
		WHERE manager_id = ?
		RETURNING manager_id, messages_sent, is_blocked, first_message_at, last_message_at
	`, freeLimit, managerID).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) Reset(ctx context.Context, tx *gorm.DB, managerID int64) error {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(ctx).
		Model(&domain.UsageTracking{}).
		Where("manager_id = ?", managerID).
		Updates(map[string]interface{}{
			"messages_sent": 0,
			"is_blocked":    false,
		}).Error
}
