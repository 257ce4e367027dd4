// Package validation checks task payloads against the field rules shared by the create and
// partial-update flows.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/taskflow/core/internal/domain/entities"
)

// Mode selects which rules apply.
type Mode int

const (
	// ModeFull is used on creation: title, status and due date are required.
	ModeFull Mode = iota
	// ModePartial is used on update: only supplied fields are checked.
	ModePartial
)

// Candidate is a decoded payload before validation. A nil or empty field is absent.
type Candidate struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *string
}

// fullView and partialView carry the rule set of each mode. Field order is message order.
type fullView struct {
	Title       string `validate:"notblank,max=100"`
	Description string `validate:"omitempty,max=500"`
	Status      string `validate:"required,taskstatus"`
	DueDate     string `validate:"required,calendardate,notpast"`
}

type partialView struct {
	Title       string `validate:"omitempty,max=100"`
	Description string `validate:"omitempty,max=500"`
	Status      string `validate:"omitempty,taskstatus"`
	DueDate     string `validate:"omitempty,calendardate,notpast"`
}

var messages = map[string]string{
	"Title.notblank":       "Title is required and must be a non-empty string.",
	"Title.max":            fmt.Sprintf("Title cannot exceed %d characters.", entities.MaxTitleLength),
	"Description.max":      fmt.Sprintf("Description cannot exceed %d characters.", entities.MaxDescriptionLength),
	"Status.required":      "Status is required and must be one of: " + entities.StatusList(),
	"Status.taskstatus":    "Status must be one of: " + entities.StatusList(),
	"DueDate.required":     "Due date is required.",
	"DueDate.calendardate": "Due date must be a valid date.",
	"DueDate.notpast":      "Due date must be today or later.",
}

// TaskValidator validates task candidates. It is safe for concurrent use.
type TaskValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

// Option configures a TaskValidator.
type Option func(*TaskValidator)

// WithClock overrides the time source used by the not-in-the-past rule.
func WithClock(now func() time.Time) Option {
	return func(v *TaskValidator) {
		v.now = now
	}
}

// New creates a task validator
func New(opts ...Option) *TaskValidator {
	v := &TaskValidator{
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	// Registration only fails for empty tags or nil funcs.
	_ = v.validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.validate.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		return entities.TaskStatus(fl.Field().String()).IsValid()
	})
	_ = v.validate.RegisterValidation("calendardate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	_ = v.validate.RegisterValidation("notpast", func(fl validator.FieldLevel) bool {
		d, err := ParseDate(fl.Field().String())
		if err != nil {
			return false
		}
		return !d.Time.Before(today(v.now()))
	})

	return v
}

// Validate returns the ordered list of rule violations; an empty result means valid.
func (v *TaskValidator) Validate(c Candidate, mode Mode) []string {
	var view interface{}
	if mode == ModeFull {
		view = &fullView{
			Title:       deref(c.Title),
			Description: deref(c.Description),
			Status:      deref(c.Status),
			DueDate:     deref(c.DueDate),
		}
	} else {
		view = &partialView{
			Title:       deref(c.Title),
			Description: deref(c.Description),
			Status:      deref(c.Status),
			DueDate:     deref(c.DueDate),
		}
	}

	err := v.validate.Struct(view)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := fe.StructField() + "." + fe.Tag()
		if msg, ok := messages[key]; ok {
			out = append(out, msg)
			continue
		}
		out = append(out, fmt.Sprintf("%s failed the %q rule.", fe.StructField(), fe.Tag()))
	}
	return out
}

// Check is Validate wrapped as an error: nil when valid, *entities.ValidationError otherwise.
func (v *TaskValidator) Check(c Candidate, mode Mode) error {
	if msgs := v.Validate(c, mode); len(msgs) > 0 {
		return &entities.ValidationError{Messages: msgs}
	}
	return nil
}

// ParseDate accepts "YYYY-MM-DD" or an RFC 3339 timestamp and returns its UTC calendar date.
func ParseDate(s string) (entities.Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(entities.DateLayout, s); err == nil {
		return entities.NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return entities.Date{}, fmt.Errorf("invalid date %q", s)
	}
	return entities.NewDate(t), nil
}

// today is the UTC calendar date of now.
func today(now time.Time) time.Time {
	return entities.NewDate(now).Time
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
