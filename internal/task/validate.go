package task

import "strings"

// Mode selects which validation rules apply. Creating runs the duplicate
// title and past-due-date checks; Updating skips both. That asymmetry is
// intentional compatibility behavior: an update may retitle a task into a
// case-insensitive collision or move its due date into the past.
type Mode string

const (
	Creating Mode = "creating"
	Updating Mode = "updating"
)

type ErrorKind string

const (
	KindRequired       ErrorKind = "required"
	KindTooShort       ErrorKind = "too_short"
	KindTooLong        ErrorKind = "too_long"
	KindDuplicateTitle ErrorKind = "duplicate_title"
	KindPastDueDate    ErrorKind = "past_due_date"
	KindInvalid        ErrorKind = "invalid"
)

// FieldError is a blocking validation failure on a single field. Failures
// are collected into a set so every problem is reported together.
type FieldError struct {
	Field string    `json:"field"`
	Kind  ErrorKind `json:"kind"`
}

type AdvisoryKind string

const AdvisoryCompletedWithFutureDueDate AdvisoryKind = "completed_with_future_due_date"

// Advisory is a non-blocking validation outcome. The write proceeds; the
// advisory rides along for display.
type Advisory struct {
	Field string       `json:"field"`
	Kind  AdvisoryKind `json:"kind"`
}

// Input is a candidate task payload before validation. Priority, Status and
// DueDate arrive as plain strings off the wire.
type Input struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	DueDate     *string `json:"dueDate"`
}

// Validated is a payload that passed validation, with the title trimmed and
// defaults applied. It carries no identity or timestamps; the repository
// assigns those.
type Validated struct {
	Title       string
	Description string
	Priority    Priority
	Status      Status
	DueDate     *string
}

const (
	titleMinLen = 3
	titleMaxLen = 200
)

// Validate evaluates a candidate payload. It is pure: the current date and
// the acting owner's existing titles are supplied by the caller, and no
// storage is touched. On success the field-error set is empty and the
// Validated value is usable; advisories may be present either way.
func Validate(in Input, mode Mode, today string, existingTitles []string) (Validated, []FieldError, []Advisory) {
	var (
		errs out
		advs []Advisory
		v    Validated
	)

	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		errs.add("title", KindRequired)
	case len([]rune(title)) < titleMinLen:
		errs.add("title", KindTooShort)
	case len([]rune(in.Title)) > titleMaxLen:
		errs.add("title", KindTooLong)
	case mode == Creating && containsFold(existingTitles, title):
		errs.add("title", KindDuplicateTitle)
	}
	v.Title = title

	v.Description = in.Description

	v.Priority = PriorityMedium
	if strings.TrimSpace(in.Priority) != "" {
		p, ok := ParsePriority(in.Priority)
		if !ok {
			errs.add("priority", KindInvalid)
		} else {
			v.Priority = p
		}
	}

	v.Status = StatusPending
	if strings.TrimSpace(in.Status) != "" {
		s, ok := ParseStatus(in.Status)
		if !ok {
			errs.add("status", KindInvalid)
		} else {
			v.Status = s
		}
	}

	if in.DueDate != nil && strings.TrimSpace(*in.DueDate) != "" {
		due, ok := ParseDate(*in.DueDate)
		if !ok {
			errs.add("dueDate", KindInvalid)
		} else {
			if mode == Creating && due < today {
				errs.add("dueDate", KindPastDueDate)
			}
			v.DueDate = &due
		}
	}

	// Cross-field advisory: completed tasks with a future due date save
	// anyway but the oddity is reported.
	if v.Status == StatusCompleted && v.DueDate != nil && *v.DueDate > today {
		advs = append(advs, Advisory{Field: "dueDate", Kind: AdvisoryCompletedWithFutureDueDate})
	}

	return v, errs.errs, advs
}

type out struct {
	errs []FieldError
}

func (o *out) add(field string, kind ErrorKind) {
	o.errs = append(o.errs, FieldError{Field: field, Kind: kind})
}

func containsFold(titles []string, title string) bool {
	for _, existing := range titles {
		if strings.EqualFold(strings.TrimSpace(existing), title) {
			return true
		}
	}
	return false
}
