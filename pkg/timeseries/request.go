package timeseries

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/econ-series/pkg/errors"
)

// DateLayout is the calendar date format used in configs, file names and exports.
const DateLayout = "2006-01-02"

var validate = validator.New()

// Request describes one series fetch.
type Request struct {
	Symbol      string      `validate:"required"`
	Source      Source      `validate:"required,oneof=fred polygon binance parquet"`
	StartDate   time.Time   `validate:"required"`
	EndDate     time.Time   `validate:"required,gtefield=StartDate"`
	Periodicity Periodicity `validate:"required,oneof=daily weekly monthly annual"`
}

// Validate checks the request without touching any provider.
func (r Request) Validate() error {
	if !r.StartDate.IsZero() && !r.EndDate.IsZero() && r.StartDate.After(r.EndDate) {
		return errors.Newf(errors.ErrCodeInvalidParameter,
			"start date %s is after end date %s",
			r.StartDate.Format(DateLayout), r.EndDate.Format(DateLayout))
	}

	if err := validate.Struct(r); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid series request", err)
	}

	return nil
}

// Window returns the inclusive day bounds of the request as UTC midnights.
// Start and end are calendar dates: the day is read in the date's own zone.
func (r Request) Window() (time.Time, time.Time) {
	return calendarDay(r.StartDate), calendarDay(r.EndDate)
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls inside the request window.
func (r Request) Contains(t time.Time) bool {
	start, end := r.Window()

	return !t.Before(start) && !t.After(end)
}

var keyReplacer = strings.NewReplacer("/", "-", "\\", "-", " ", "-", ":", "-")

// Key is a stable, file-name safe identity for the request.
// Format: SOURCE_SYMBOL_START_END_PERIODICITY
func (r Request) Key() string {
	return fmt.Sprintf("%s_%s_%s_%s_%s",
		r.Source,
		keyReplacer.Replace(r.Symbol),
		r.StartDate.Format(DateLayout),
		r.EndDate.Format(DateLayout),
		r.Periodicity)
}
