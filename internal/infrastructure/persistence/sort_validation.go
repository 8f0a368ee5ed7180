package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]string, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if column, ok := allowedFields[trimmed]; ok {
		return column
	}
	return allowedFields[defaultField]
}

// QueueSortColumns maps queue sort keys to columns of the queue subquery.
// waiting_time_days is derived from waiting_since, so its direction is inverted
// by the queue repository.
var QueueSortColumns = map[string]string{
	"waiting_time_days": "q.waiting_since",
	"addon_name":        "q.addon_name",
	"addon_type_id":     "q.addon_type_id",
	"admin_review":      "q.admin_review",
}
