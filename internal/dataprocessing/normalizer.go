package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"absencecli/internal/errors"
	"absencecli/internal/infrastructure"
	"absencecli/internal/validation"
	"absencecli/pkg/contracts/domain"
)

// RangeSeparator splits the start and end of a clock or date range
const RangeSeparator = " - "

const (
	clockLayout   = "15:04"
	dateLayout    = "2.1.2006"
	secondsPerDay = 24 * 60 * 60
)

var (
	clockToken = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
	dateToken  = regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}$`)

	// anyClock finds clock times glued to other text, e.g. "08:00-09:07"
	anyClock = regexp.MustCompile(`\d{1,2}:\d{2}`)
	// gluedDates finds two dates joined by a bare hyphen, e.g. "01.03.2024-03.03.2024"
	gluedDates = regexp.MustCompile(`\d{1,2}\.\d{1,2}\.\d{4}\s*-\s*\d{1,2}\.\d{1,2}\.\d{4}`)
)

// Parse failure reasons reported in ParseError.Reason
const (
	ReasonManySeparators = "more than one range separator"
	ReasonNoToken        = "no clock time or date next to the range separator"
	ReasonMixedTokens    = "range mixes a clock time and a date"
	ReasonBadClock       = "invalid clock time"
	ReasonBadDate        = "invalid date"
	ReasonEndBeforeStart = "range ends before it starts"
	ReasonLoneClock      = "clock time without a range"
	ReasonGluedRange     = "date range without spaced separator"
)

type tokenShape int

const (
	shapeNone tokenShape = iota
	shapeClock
	shapeDate
)

// DurationNormalizer converts raw attendance rows into durations in school-hours
type DurationNormalizer struct {
	logger *slog.Logger
	rows   *validation.RowValidator
}

// NewDurationNormalizer creates a normalizer. A nil logger falls back to slog.Default.
func NewDurationNormalizer(logger *slog.Logger) *DurationNormalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DurationNormalizer{
		logger: infrastructure.WithComponent(logger, "normalizer"),
		rows:   validation.NewRowValidator(),
	}
}

// Normalize classifies one raw row and converts its absence field.
// It has no side effects besides debug logging.
func (n *DurationNormalizer) Normalize(raw domain.RawEntry) (domain.NormalizedEntry, error) {
	raw.PersonName = strings.TrimSpace(raw.PersonName)
	if msg := n.rows.ValidateRaw(raw); msg != "" {
		return domain.NormalizedEntry{}, errors.NewParseError(raw.Row, raw.AbsenceField, msg, nil)
	}

	duration, kind, err := n.parseDuration(raw.Row, raw.AbsenceField)
	if err != nil {
		return domain.NormalizedEntry{}, err
	}

	entry := domain.NormalizedEntry{
		Row:        raw.Row,
		Duration:   duration,
		Kind:       kind,
		PersonName: raw.PersonName,
		Status:     domain.ParseStatus(raw.StatusText),
		UpdatedAt:  raw.UpdatedAt,
	}
	if msg := n.rows.ValidateNormalized(entry); msg != "" {
		return domain.NormalizedEntry{}, errors.NewParseError(raw.Row, raw.AbsenceField, msg, nil)
	}

	n.logger.Debug("normalized absence entry",
		slog.Int("row", raw.Row),
		slog.String("raw", raw.AbsenceField),
		slog.String("kind", string(kind)),
		slog.Float64("school_hours", duration),
		slog.String("status", entry.Status.String()))

	return entry, nil
}

// NormalizeAll normalizes a batch. Under PolicyFailFast the first failure is
// returned and no entries are; under PolicySkip failing rows are dropped and
// reported in the returned ParseErrors.
func (n *DurationNormalizer) NormalizeAll(ctx context.Context, raws []domain.RawEntry, policy ErrorPolicy) ([]domain.NormalizedEntry, errors.ParseErrors, error) {
	entries := make([]domain.NormalizedEntry, 0, len(raws))
	var skipped errors.ParseErrors

	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		entry, err := n.Normalize(raw)
		if err != nil {
			pe, ok := errors.AsParseError(err)
			if !ok || policy != PolicySkip {
				n.logger.ErrorContext(ctx, "aborting batch on unparseable row",
					slog.Int("row", raw.Row),
					slog.String("error", err.Error()))
				return nil, nil, err
			}
			n.logger.WarnContext(ctx, "skipping unparseable row",
				slog.Int("row", pe.Row),
				slog.String("raw", pe.Raw),
				slog.String("reason", pe.Reason))
			skipped = append(skipped, pe)
			continue
		}
		entries = append(entries, entry)
	}

	n.logger.InfoContext(ctx, "normalized attendance rows",
		slog.Int("rows", len(raws)),
		slog.Int("entries", len(entries)),
		slog.Int("skipped", len(skipped)))

	return entries, skipped, nil
}

// parseDuration classifies the field structurally and returns school-hours
func (n *DurationNormalizer) parseDuration(row int, field string) (float64, domain.DurationKind, error) {
	switch strings.Count(field, RangeSeparator) {
	case 0:
		// anything without a range marker, the empty field included, is a full day
		if anyClock.MatchString(field) {
			return 0, "", errors.NewParseError(row, field, ReasonLoneClock, nil)
		}
		if gluedDates.MatchString(field) {
			return 0, "", errors.NewParseError(row, field, ReasonGluedRange, nil)
		}
		return domain.SchoolHoursPerDay, domain.KindFullDay, nil
	case 1:
	default:
		return 0, "", errors.NewParseError(row, field, ReasonManySeparators, nil)
	}

	left, right, _ := strings.Cut(field, RangeSeparator)
	startTok, startShape := nearestToken(tokens(left), true)
	endTok, endShape := nearestToken(tokens(right), false)

	switch {
	case startShape == shapeNone || endShape == shapeNone:
		return 0, "", errors.NewParseError(row, field, ReasonNoToken, nil)
	case startShape != endShape:
		return 0, "", errors.NewParseError(row, field, ReasonMixedTokens, nil)
	case startShape == shapeClock:
		hours, err := clockRange(startTok, endTok)
		if err != nil {
			return 0, "", toParseError(row, field, err)
		}
		return hours, domain.KindClockRange, nil
	default:
		hours, err := dateRange(startTok, endTok)
		if err != nil {
			return 0, "", toParseError(row, field, err)
		}
		return hours, domain.KindDateRange, nil
	}
}

// rangeError carries a reason until the row is known
type rangeError struct {
	reason string
	cause  error
}

func (e *rangeError) Error() string { return e.reason }

func toParseError(row int, field string, err error) error {
	if re, ok := err.(*rangeError); ok {
		return errors.NewParseError(row, field, re.reason, re.cause)
	}
	return errors.NewParseError(row, field, err.Error(), nil)
}

// clockRange returns (end - start) minutes in school-hours
func clockRange(startTok, endTok string) (float64, error) {
	start, err := time.Parse(clockLayout, startTok)
	if err != nil {
		return 0, &rangeError{ReasonBadClock, err}
	}
	end, err := time.Parse(clockLayout, endTok)
	if err != nil {
		return 0, &rangeError{ReasonBadClock, err}
	}
	if end.Before(start) {
		return 0, &rangeError{reason: ReasonEndBeforeStart}
	}
	return end.Sub(start).Minutes() / domain.SchoolHourMinutes, nil
}

// dateRange counts both boundary days and attributes a full school day to each
func dateRange(startTok, endTok string) (float64, error) {
	start, err := time.ParseInLocation(dateLayout, startTok, time.UTC)
	if err != nil {
		return 0, &rangeError{ReasonBadDate, err}
	}
	end, err := time.ParseInLocation(dateLayout, endTok, time.UTC)
	if err != nil {
		return 0, &rangeError{ReasonBadDate, err}
	}
	if end.Before(start) {
		return 0, &rangeError{reason: ReasonEndBeforeStart}
	}
	// Unix seconds, not end.Sub, which saturates after about 292 years
	days := (end.Unix()-start.Unix())/secondsPerDay + 1
	return float64(days * domain.SchoolHoursPerDay), nil
}

// tokens splits a field fragment into words, dropping parentheses and the
// "Uhr" suffix of clock times
func tokens(s string) []string {
	s = strings.NewReplacer("(", " ", ")", " ").Replace(s)
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimSuffix(f, "Uhr")
		f = strings.TrimRight(f, ",;")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// nearestToken finds the clock or date token closest to the separator:
// the last one on the left side, the first one on the right side
func nearestToken(toks []string, fromEnd bool) (string, tokenShape) {
	for i := range toks {
		tok := toks[i]
		if fromEnd {
			tok = toks[len(toks)-1-i]
		}
		if shape := classify(tok); shape != shapeNone {
			return tok, shape
		}
	}
	return "", shapeNone
}

func classify(tok string) tokenShape {
	switch {
	case clockToken.MatchString(tok):
		return shapeClock
	case dateToken.MatchString(tok):
		return shapeDate
	default:
		return shapeNone
	}
}

// FormatDuration renders a school-hour duration in the given unit the way
// the entry exports show it
func FormatDuration(hours float64, unit domain.Unit) string {
	if unit == domain.UnitMinutes {
		return fmt.Sprintf("%.0f", unit.FromSchoolHours(hours))
	}
	return fmt.Sprintf("%.2f", hours)
}
