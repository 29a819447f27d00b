package service

import (
	"time"

	"gorm.io/datatypes"
)

// DedupeWindow is how far back a submission looks for an earlier record with
// the same key.
const DedupeWindow = 10 * time.Minute

// Action is what a submission does to the store.
type Action int

const (
	ActionInsert Action = iota
	ActionUpdate
	ActionIgnore
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	case ActionIgnore:
		return "ignore"
	default:
		return "unknown"
	}
}

// Decide resolves a submission against the lookback window. found reports
// whether a record with the same key was created inside the window; request is
// the sanitized request note of the new submission.
func Decide(found bool, request string) Action {
	switch {
	case !found:
		return ActionInsert
	case request != "":
		return ActionUpdate
	default:
		return ActionIgnore
	}
}

// Result is returned by a successful submission.
type Result struct {
	ID        string
	Action    Action
	Duplicate bool
	Message   string
}

func newResult(id string, action Action, subject string) *Result {
	r := &Result{ID: id, Action: action, Duplicate: action != ActionInsert}
	switch action {
	case ActionInsert:
		r.Message = subject + " received"
	case ActionUpdate:
		r.Message = "Duplicate " + subject + " updated"
	default:
		r.Message = "Duplicate " + subject + " ignored"
	}
	return r
}

// Options configures the submission services.
type Options struct {
	Window   time.Duration
	Location *time.Location
	Now      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Window <= 0 {
		o.Window = DedupeWindow
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// inquiryDate returns the payload date or, when absent, today in loc.
func inquiryDate(date string, now time.Time, loc *time.Location) (datatypes.Date, error) {
	if date == "" {
		local := now.In(loc)
		return datatypes.Date(time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)), nil
	}
	t, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(t), nil
}
