package recurrence

import (
	"fmt"

	"github.com/teambition/rrule-go"

	"github.com/hray3182/dayline/internal/models"
)

// Option builds the RFC 5545 recurrence equivalent to the rule. The second
// return value is false for None, which has no RRULE.
//
// RFC 5545 skips months that lack the anchor's day instead of clamping, so
// anchors after the 28th are expressed as "the last of BYMONTHDAY=28..day".
func (r Rule) Option() (rrule.ROption, bool) {
	anchor := models.NormalizeDate(r.Anchor)
	opt := rrule.ROption{
		Interval: 1,
		Dtstart:  anchor,
	}

	switch r.Kind {
	case Daily:
		opt.Freq = rrule.DAILY
	case Weekly:
		opt.Freq = rrule.WEEKLY
	case Monthly:
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday, opt.Bysetpos = clampedMonthDays(anchor.Day())
	case Yearly:
		opt.Freq = rrule.YEARLY
		opt.Bymonth = []int{int(anchor.Month())}
		opt.Bymonthday, opt.Bysetpos = clampedMonthDays(anchor.Day())
	case Weekdays:
		opt.Freq = rrule.DAILY
		opt.Byweekday = []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR}
	case Weekends:
		opt.Freq = rrule.DAILY
		opt.Byweekday = []rrule.Weekday{rrule.SA, rrule.SU}
	default:
		return rrule.ROption{}, false
	}
	return opt, true
}

// RRule renders the rule as an RRULE value without DTSTART, e.g.
// "FREQ=WEEKLY;INTERVAL=1".
func (r Rule) RRule() (string, bool) {
	opt, ok := r.Option()
	if !ok {
		return "", false
	}
	return opt.RRuleString(), true
}

func clampedMonthDays(day int) (days []int, setpos []int) {
	if day <= 28 {
		return []int{day}, nil
	}
	for d := 28; d <= day; d++ {
		days = append(days, d)
	}
	return days, []int{-1}
}

// HumanReadable returns a short English description of the rule
func (r Rule) HumanReadable() string {
	anchor := models.NormalizeDate(r.Anchor)
	switch r.Kind {
	case None:
		return "once on " + models.DateKey(anchor)
	case Daily:
		return "every day"
	case Weekly:
		return "every " + anchor.Weekday().String()
	case Monthly:
		if anchor.Day() > 28 {
			return fmt.Sprintf("monthly on day %d (or the last day)", anchor.Day())
		}
		return fmt.Sprintf("monthly on day %d", anchor.Day())
	case Yearly:
		return "every year on " + anchor.Format("January 2")
	case Weekdays:
		return "every weekday"
	case Weekends:
		return "every weekend day"
	default:
		return r.Kind.String()
	}
}
