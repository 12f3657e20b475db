package recurrence

import (
	"fmt"
	"strings"
)

// Kind is how a rule repeats after its anchor date.
type Kind int

const (
	None Kind = iota
	Daily
	Weekly
	Monthly
	Yearly
	Weekdays
	Weekends
)

var kindNames = map[Kind]string{
	None:     "NONE",
	Daily:    "DAILY",
	Weekly:   "WEEKLY",
	Monthly:  "MONTHLY",
	Yearly:   "YEARLY",
	Weekdays: "WEEKDAYS",
	Weekends: "WEEKENDS",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts the stored names case-insensitively. An empty string
// means None.
func ParseKind(s string) (Kind, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return None, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return None, fmt.Errorf("unknown recurrence kind %q", s)
}
