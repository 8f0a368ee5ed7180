package persistence

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/marketplace/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormQueueRepository implements editors.QueueRepository using GORM.
//
// Every queue is built as a subquery with one row per add-on and the
// columns addon_id, addon_name, addon_type_id, admin_review, site_specific,
// latest_version_id, latest_version and waiting_since. Search filters and
// ordering are applied on that subquery.
type GormQueueRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormQueueRepository creates a new GormQueueRepository
func NewGormQueueRepository(db *gorm.DB) *GormQueueRepository {
	return &GormQueueRepository{db: db, now: time.Now}
}

type queueRecord struct {
	AddonID         uuid.UUID
	AddonName       string
	AddonTypeID     int
	AdminReview     bool
	SiteSpecific    bool
	LatestVersionID uuid.UUID
	LatestVersion   string
	WaitingSince    nullTime
}

const queueColumns = "a.id AS addon_id, a.name AS addon_name, a.type AS addon_type_id, " +
	"a.admin_review AS admin_review, a.site_specific AS site_specific, " +
	"v.id AS latest_version_id, v.version AS latest_version"

func (r *GormQueueRepository) source(ctx context.Context, queue editors.QueueType) (*gorm.DB, error) {
	q := r.db.WithContext(ctx).
		Table("addons AS a").
		Joins("JOIN versions AS v ON v.id = a.latest_version_id").
		Where("a.disabled_by_user = ?", false)

	var statuses []editors.AddonStatus
	switch queue {
	case editors.QueueNominated:
		return q.Select(queueColumns+", COALESCE(v.nominated_at, v.created_at) AS waiting_since").
			Where("a.status IN ?", []editors.AddonStatus{editors.StatusNominated, editors.StatusLiteAndNominated}), nil
	case editors.QueuePending:
		statuses = []editors.AddonStatus{editors.StatusPublic}
	case editors.QueuePrelim:
		statuses = []editors.AddonStatus{editors.StatusLite, editors.StatusUnreviewed}
	default:
		return nil, shared.NewDomainError("INVALID_QUEUE", fmt.Sprintf("Unknown review queue: %s", queue))
	}

	return q.Select(queueColumns+", MIN(f.created_at) AS waiting_since").
		Joins("JOIN files AS f ON f.version_id = v.id AND f.status = ?", editors.StatusUnreviewed).
		Where("a.status IN ?", statuses).
		Group("a.id, a.name, a.type, a.admin_review, a.site_specific, v.id, v.version"), nil
}

func (r *GormQueueRepository) filtered(ctx context.Context, queue editors.QueueType, search editors.QueueSearch) (*gorm.DB, error) {
	inner, err := r.source(ctx, queue)
	if err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx).Table("(?) AS q", inner)

	if text := strings.TrimSpace(search.TextQuery); text != "" {
		q = q.Where("LOWER(q.addon_name) LIKE ?", "%"+strings.ToLower(text)+"%")
	}
	if search.AdminReview != nil {
		q = q.Where("q.admin_review = ?", *search.AdminReview)
	}
	if len(search.AddonTypeIDs) > 0 {
		q = q.Where("q.addon_type_id IN ?", search.AddonTypeIDs)
	}
	if search.ApplicationID != 0 {
		if search.MaxVersion != "" {
			q = q.Where("EXISTS (SELECT 1 FROM version_applications va WHERE va.version_id = q.latest_version_id AND va.application_id = ? AND va.max_version = ?)",
				search.ApplicationID, search.MaxVersion)
		} else {
			q = q.Where("EXISTS (SELECT 1 FROM version_applications va WHERE va.version_id = q.latest_version_id AND va.application_id = ?)",
				search.ApplicationID)
		}
	}
	if search.WaitingTimeDays > 0 {
		bound := search.WaitingBound(r.now())
		if search.WaitingAtLeast {
			q = q.Where("q.waiting_since <= ?", bound)
		} else {
			q = q.Where("q.waiting_since > ?", bound)
		}
	}
	return q, nil
}

// Count returns the number of rows of the queue matching the search
func (r *GormQueueRepository) Count(ctx context.Context, queue editors.QueueType, search editors.QueueSearch) (int64, error) {
	q, err := r.filtered(ctx, queue, search)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count %s queue: %w", queue, err)
	}
	return total, nil
}

// List returns one page of the queue
func (r *GormQueueRepository) List(ctx context.Context, queue editors.QueueType, search editors.QueueSearch, order editors.QueueSort, page shared.PageRequest) ([]editors.QueueRow, error) {
	q, err := r.filtered(ctx, queue, search)
	if err != nil {
		return nil, err
	}

	column := ValidateSortField(order.Field, QueueSortColumns, "waiting_time_days")
	desc := order.Desc
	if column == QueueSortColumns["waiting_time_days"] {
		// More waiting days means an earlier waiting_since.
		desc = !desc
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}

	var records []queueRecord
	if err := q.Select("q.*").
		Order(fmt.Sprintf("%s %s, q.addon_id ASC", column, dir)).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Scan(&records).Error; err != nil {
		return nil, fmt.Errorf("list %s queue: %w", queue, err)
	}

	now := r.now()
	rows := make([]editors.QueueRow, len(records))
	versionIDs := make([]uuid.UUID, len(records))
	for i, rec := range records {
		rows[i] = editors.QueueRow{
			AddonID:         rec.AddonID,
			AddonName:       rec.AddonName,
			AddonTypeID:     editors.AddonType(rec.AddonTypeID),
			AdminReview:     rec.AdminReview,
			SiteSpecific:    rec.SiteSpecific,
			LatestVersionID: rec.LatestVersionID,
			LatestVersion:   rec.LatestVersion,
			WaitingSince:    rec.WaitingSince.Time,
			Applications:    []int{},
			Platforms:       []int{},
		}
		rows[i].SetWaitingTime(now)
		versionIDs[i] = rec.LatestVersionID
	}
	if err := r.attachCompatibility(ctx, rows, versionIDs); err != nil {
		return nil, err
	}
	return rows, nil
}

// attachCompatibility fills the applications and platforms of each row's latest version.
func (r *GormQueueRepository) attachCompatibility(ctx context.Context, rows []editors.QueueRow, versionIDs []uuid.UUID) error {
	if len(versionIDs) == 0 {
		return nil
	}

	type pair struct {
		VersionID uuid.UUID
		Value     int
	}
	var apps, platforms []pair
	if err := r.db.WithContext(ctx).Table("version_applications").
		Select("DISTINCT version_id, application_id AS value").
		Where("version_id IN ?", versionIDs).
		Scan(&apps).Error; err != nil {
		return fmt.Errorf("load queue applications: %w", err)
	}
	if err := r.db.WithContext(ctx).Table("files").
		Select("DISTINCT version_id, platform AS value").
		Where("version_id IN ?", versionIDs).
		Scan(&platforms).Error; err != nil {
		return fmt.Errorf("load queue platforms: %w", err)
	}

	byVersion := func(pairs []pair) map[uuid.UUID][]int {
		out := make(map[uuid.UUID][]int)
		for _, p := range pairs {
			out[p.VersionID] = append(out[p.VersionID], p.Value)
		}
		for _, values := range out {
			sort.Ints(values)
		}
		return out
	}
	appsByVersion := byVersion(apps)
	platformsByVersion := byVersion(platforms)
	for i := range rows {
		if v, ok := appsByVersion[rows[i].LatestVersionID]; ok {
			rows[i].Applications = v
		}
		if v, ok := platformsByVersion[rows[i].LatestVersionID]; ok {
			rows[i].Platforms = v
		}
	}
	return nil
}
