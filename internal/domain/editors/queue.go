package editors

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// QueueType names one of the editor review queues.
type QueueType string

const (
	QueuePending   QueueType = "pending"
	QueueNominated QueueType = "nominated"
	QueuePrelim    QueueType = "prelim"
	QueueModerated QueueType = "moderated"
)

// VersionQueues are the queues that list add-on versions.
var VersionQueues = []QueueType{QueuePending, QueueNominated, QueuePrelim}

// QueueCounts holds the size of every queue keyed by tab name.
type QueueCounts map[QueueType]int64

// QueueRow is one add-on waiting in a version queue.
type QueueRow struct {
	AddonID          uuid.UUID `json:"addon_id"`
	AddonName        string    `json:"addon_name"`
	AddonTypeID      AddonType `json:"addon_type_id"`
	AdminReview      bool      `json:"admin_review"`
	SiteSpecific     bool      `json:"is_site_specific"`
	LatestVersionID  uuid.UUID `json:"latest_version_id"`
	LatestVersion    string    `json:"latest_version"`
	WaitingSince     time.Time `json:"waiting_since"`
	WaitingTimeDays  int       `json:"waiting_time_days"`
	WaitingTimeHours int       `json:"waiting_time_hours"`
	Applications     []int     `json:"applications"`
	Platforms        []int     `json:"platforms"`
}

// SetWaitingTime fills the derived waiting fields relative to now.
func (r *QueueRow) SetWaitingTime(now time.Time) {
	if r.WaitingSince.IsZero() {
		return
	}
	d := now.Sub(r.WaitingSince)
	if d < 0 {
		d = 0
	}
	r.WaitingTimeHours = int(d.Hours())
	r.WaitingTimeDays = r.WaitingTimeHours / 24
}

// QueueSearch narrows a version queue. Zero values mean "no filter".
type QueueSearch struct {
	TextQuery       string
	AdminReview     *bool
	ApplicationID   int
	MaxVersion      string
	WaitingTimeDays int
	WaitingAtLeast  bool
	AddonTypeIDs    []AddonType
}

// IsEmpty reports whether the search applies no filter.
func (s QueueSearch) IsEmpty() bool {
	return s.TextQuery == "" && s.AdminReview == nil && s.ApplicationID == 0 &&
		s.MaxVersion == "" && s.WaitingTimeDays == 0 && len(s.AddonTypeIDs) == 0
}

// WaitingBound returns the waiting_since bound of the waiting time filter.
// With WaitingAtLeast a row matches when it has waited since the bound or
// earlier; otherwise it matches when it started waiting after the bound,
// that is when it has waited WaitingTimeDays whole days or fewer.
func (s QueueSearch) WaitingBound(now time.Time) time.Time {
	days := s.WaitingTimeDays
	if !s.WaitingAtLeast {
		days++
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// ParseWaitingTimeDays parses the waiting time choice: "1".."9" or "10+".
func ParseWaitingTimeDays(raw string) (days int, atLeast bool, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, true
	}
	if raw == "10+" {
		return 10, true, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 9 {
		return 0, false, false
	}
	return n, false, true
}

// QueueSort is a validated ordering of a version queue.
type QueueSort struct {
	Field string
	Desc  bool
}

// DefaultQueueSort lists the longest waiting add-ons first.
const DefaultQueueSort = "-waiting_time_days"

var queueSortFields = map[string]bool{
	"waiting_time_days": true,
	"addon_name":        true,
	"addon_type_id":     true,
	"admin_review":      true,
}

// ParseQueueSort validates a sort key such as "-waiting_time_days".
// Unknown keys fall back to the default ordering.
func ParseQueueSort(raw string) QueueSort {
	raw = strings.TrimSpace(raw)
	desc := strings.HasPrefix(raw, "-")
	field := strings.TrimPrefix(raw, "-")
	if !queueSortFields[field] {
		return ParseQueueSort(DefaultQueueSort)
	}
	return QueueSort{Field: field, Desc: desc}
}

// String renders the sort back into its query form
func (s QueueSort) String() string {
	if s.Desc {
		return "-" + s.Field
	}
	return s.Field
}
