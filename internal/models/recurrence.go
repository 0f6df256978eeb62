package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/planloop/planloop/internal/common"
)

// Freq is the base unit of a recurrence rule.
type Freq int

const (
	Daily Freq = iota
	Weekly
	Monthly
	Yearly
)

var freqNames = map[Freq]string{
	Daily:   "DAILY",
	Weekly:  "WEEKLY",
	Monthly: "MONTHLY",
	Yearly:  "YEARLY",
}

var freqFromName = map[string]Freq{
	"DAILY":   Daily,
	"WEEKLY":  Weekly,
	"MONTHLY": Monthly,
	"YEARLY":  Yearly,
}

// RecurrenceRule describes how a todo item repeats after completion. It is
// stored and synced in its string form, e.g. "FREQ=WEEKLY;INTERVAL=2".
type RecurrenceRule struct {
	Freq     Freq
	Interval int // default 1; 2 = biweekly when Freq=Weekly
}

// ParseRecurrenceRule parses the string form. An empty string means "does not
// repeat" and is not an error; callers get a zero rule and ok=false.
func ParseRecurrenceRule(s string) (RecurrenceRule, bool, error) {
	if s == "" {
		return RecurrenceRule{}, false, nil
	}

	rule := RecurrenceRule{Interval: 1}
	seenFreq := false

	for _, part := range strings.Split(s, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return RecurrenceRule{}, false, fmt.Errorf("%w: %q", common.ErrorInvalidRecurrence, s)
		}
		switch kv[0] {
		case "FREQ":
			f, ok := freqFromName[kv[1]]
			if !ok {
				return RecurrenceRule{}, false, fmt.Errorf("%w: unknown freq %q", common.ErrorInvalidRecurrence, kv[1])
			}
			rule.Freq = f
			seenFreq = true
		case "INTERVAL":
			n, err := strconv.Atoi(kv[1])
			if err != nil || n < 1 {
				return RecurrenceRule{}, false, fmt.Errorf("%w: interval %q", common.ErrorInvalidRecurrence, kv[1])
			}
			rule.Interval = n
		default:
			return RecurrenceRule{}, false, fmt.Errorf("%w: unknown key %q", common.ErrorInvalidRecurrence, kv[0])
		}
	}

	if !seenFreq {
		return RecurrenceRule{}, false, fmt.Errorf("%w: missing FREQ", common.ErrorInvalidRecurrence)
	}

	return rule, true, nil
}

func (r RecurrenceRule) String() string {
	if r.Interval > 1 {
		return fmt.Sprintf("FREQ=%s;INTERVAL=%d", freqNames[r.Freq], r.Interval)
	}
	return fmt.Sprintf("FREQ=%s", freqNames[r.Freq])
}

// Next returns the occurrence following t.
func (r RecurrenceRule) Next(t time.Time) time.Time {
	interval := r.Interval
	if interval < 1 {
		interval = 1
	}
	switch r.Freq {
	case Daily:
		return t.AddDate(0, 0, interval)
	case Weekly:
		return t.AddDate(0, 0, 7*interval)
	case Monthly:
		return t.AddDate(0, interval, 0)
	default:
		return t.AddDate(interval, 0, 0)
	}
}
