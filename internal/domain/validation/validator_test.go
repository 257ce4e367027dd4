package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)

func newTestValidator() *TaskValidator {
	return New(WithClock(func() time.Time { return fixedNow }))
}

func strPtr(s string) *string { return &s }

func TestValidate_ValidFullPayload(t *testing.T) {
	v := newTestValidator()

	errs := v.Validate(Candidate{
		Title:   strPtr("Test task"),
		Status:  strPtr("Open"),
		DueDate: strPtr(fixedNow.AddDate(0, 0, 1).Format("2006-01-02")),
	}, ModeFull)

	assert.Empty(t, errs)
	assert.NoError(t, v.Check(Candidate{
		Title:   strPtr("Test task"),
		Status:  strPtr("Open"),
		DueDate: strPtr("2026-03-16"),
	}, ModeFull))
}

func TestValidate_FullModeRequiredFields(t *testing.T) {
	v := newTestValidator()

	errs := v.Validate(Candidate{}, ModeFull)

	assert.Equal(t, []string{
		"Title is required and must be a non-empty string.",
		"Status is required and must be one of: Open, In Progress, Completed",
		"Due date is required.",
	}, errs)
}

func TestValidate_MissingTitle(t *testing.T) {
	v := newTestValidator()

	for _, title := range []*string{nil, strPtr(""), strPtr("   \t")} {
		errs := v.Validate(Candidate{Title: title, Status: strPtr("Open"), DueDate: strPtr("2026-12-31")}, ModeFull)
		assert.Contains(t, errs, "Title is required and must be a non-empty string.")
	}
}

func TestValidate_InvalidStatusInBothModes(t *testing.T) {
	v := newTestValidator()

	for _, mode := range []Mode{ModeFull, ModePartial} {
		for _, status := range []string{"InvalidStatus", "open", "Done", "In progress"} {
			errs := v.Validate(Candidate{Title: strPtr("Test"), Status: strPtr(status), DueDate: strPtr("2026-12-31")}, mode)
			assert.Contains(t, errs, "Status must be one of: Open, In Progress, Completed", "mode=%d status=%q", mode, status)
		}
	}
}

func TestValidate_InvalidDate(t *testing.T) {
	v := newTestValidator()

	for _, due := range []string{"not-a-date", "2026-02-30", "31/12/2026", "2026-13-01"} {
		for _, mode := range []Mode{ModeFull, ModePartial} {
			errs := v.Validate(Candidate{Title: strPtr("Test"), Status: strPtr("Open"), DueDate: strPtr(due)}, mode)
			assert.Equal(t, []string{"Due date must be a valid date."}, errs, "due=%q", due)
		}
	}
}

func TestValidate_PastDate(t *testing.T) {
	v := newTestValidator()

	yesterday := fixedNow.AddDate(0, 0, -1).Format("2006-01-02")
	errs := v.Validate(Candidate{Title: strPtr("Test task"), Status: strPtr("Open"), DueDate: strPtr(yesterday)}, ModeFull)
	assert.Contains(t, errs, "Due date must be today or later.")

	errs = v.Validate(Candidate{DueDate: strPtr("2020-01-01")}, ModePartial)
	assert.Equal(t, []string{"Due date must be today or later."}, errs)
}

func TestValidate_TodayIsAllowed(t *testing.T) {
	v := newTestValidator()

	errs := v.Validate(Candidate{DueDate: strPtr(fixedNow.Format("2006-01-02"))}, ModePartial)
	assert.Empty(t, errs)

	errs = v.Validate(Candidate{DueDate: strPtr("2026-03-15T00:00:00.000Z")}, ModePartial)
	assert.Empty(t, errs)
}

func TestValidate_LengthCaps(t *testing.T) {
	v := newTestValidator()

	errs := v.Validate(Candidate{
		Title:       strPtr(strings.Repeat("a", 101)),
		Description: strPtr(strings.Repeat("b", 501)),
	}, ModePartial)
	assert.Equal(t, []string{
		"Title cannot exceed 100 characters.",
		"Description cannot exceed 500 characters.",
	}, errs)

	errs = v.Validate(Candidate{
		Title:       strPtr(strings.Repeat("é", 100)),
		Description: strPtr(strings.Repeat("ü", 500)),
	}, ModePartial)
	assert.Empty(t, errs)
}

func TestValidate_PartialModeAllowsEmptyPayload(t *testing.T) {
	v := newTestValidator()

	assert.Empty(t, v.Validate(Candidate{}, ModePartial))
	assert.Empty(t, v.Validate(Candidate{Status: strPtr("Completed")}, ModePartial))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-12-31")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-31", d.String())

	d, err = ParseDate("2025-12-31T23:30:00-02:00")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", d.String())

	_, err = ParseDate("soon")
	assert.Error(t, err)
}
