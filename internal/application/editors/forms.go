package editors

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/samber/lo"
)

const dateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var fieldMessages = map[string]string{
	"required": "This field is required.",
	"datetime": "Enter a valid date.",
	"number":   "Enter a whole number.",
	"uuid":     "Select a valid choice.",
	"oneof":    "Select a valid choice.",
	"max":      "Ensure this value has fewer characters.",
}

// validateForm runs struct validation and maps failures onto form fields.
func validateForm(form any) editors.FieldErrors {
	errs := editors.FieldErrors{}
	err := validate.Struct(form)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["__all__"] = []string{err.Error()}
		return errs
	}
	for _, fe := range verrs {
		field := fe.Field()
		// dive errors are reported as addon_type_ids[0]
		if i := strings.IndexByte(field, '['); i > 0 {
			field = field[:i]
		}
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = "Invalid value."
		}
		if !lo.Contains(errs[field], msg) {
			errs[field] = append(errs[field], msg)
		}
	}
	return errs
}

func addError(errs editors.FieldErrors, field, msg string) {
	errs[field] = append(errs[field], msg)
}

// dateRange parses an already validated date range form.
func (f DateRangeForm) dateRange() (start, end *time.Time) {
	if f.Start != "" {
		if t, err := time.Parse(dateLayout, f.Start); err == nil {
			start = &t
		}
	}
	if f.End != "" {
		if t, err := time.Parse(dateLayout, f.End); err == nil {
			end = &t
		}
	}
	return start, end
}

// toSearch converts a search form into a queue search, collecting form errors.
func (f *QueueSearchForm) toSearch() (editors.QueueSearch, editors.FieldErrors) {
	errs := validateForm(f)
	var s editors.QueueSearch

	s.TextQuery = strings.TrimSpace(f.TextQuery)
	switch f.AdminReview {
	case "1", "true":
		s.AdminReview = lo.ToPtr(true)
	case "0", "false":
		s.AdminReview = lo.ToPtr(false)
	}
	if f.ApplicationID != "" {
		if id, err := strconv.Atoi(f.ApplicationID); err == nil {
			if _, known := editors.ApplicationNames[id]; known {
				s.ApplicationID = id
			} else {
				addError(errs, "application_id", "Select a valid choice.")
			}
		}
	}
	s.MaxVersion = strings.TrimSpace(f.MaxVersion)
	if s.MaxVersion != "" && f.ApplicationID == "" {
		addError(errs, "application_id", "No application selected")
	}
	days, atLeast, ok := editors.ParseWaitingTimeDays(f.WaitingTimeDays)
	if !ok {
		addError(errs, "waiting_time_days", "Select a valid choice.")
	}
	s.WaitingTimeDays, s.WaitingAtLeast = days, atLeast
	for _, raw := range f.AddonTypeIDs {
		n, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		if _, known := editors.AddonTypeNames[editors.AddonType(n)]; !known {
			addError(errs, "addon_type_ids", "Select a valid choice. "+raw+" is not one of the available choices.")
			continue
		}
		s.AddonTypeIDs = append(s.AddonTypeIDs, editors.AddonType(n))
	}

	if len(errs) > 0 {
		return editors.QueueSearch{}, errs
	}
	return s, nil
}
