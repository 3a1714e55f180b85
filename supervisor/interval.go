package supervisor

import (
	"regexp"
	"strconv"

	"github.com/spotifreak/spotifreak/errs"
)

var intervalTokenPattern = regexp.MustCompile(`(\d+)([smhd])`)

var unitSeconds = map[string]int{
	"s": 1,
	"m": 60,
	"h": 3600,
	"d": 86400,
}

// ParseInterval parses a concatenation of N{s|m|h|d} tokens with no
// separators (e.g. "1h30m") into a total number of seconds. The total must
// be greater than zero; any unmatched remainder is treated as malformed.
func ParseInterval(expr string) (int, error) {
	if expr == "" {
		return 0, errs.New(errs.ScheduleInvalid, "interval expression is empty")
	}

	matches := intervalTokenPattern.FindAllStringSubmatchIndex(expr, -1)
	if len(matches) == 0 {
		return 0, errs.Newf(errs.ScheduleInvalid, "interval expression %q has no valid tokens", expr)
	}

	total := 0
	consumed := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start != consumed {
			return 0, errs.Newf(errs.ScheduleInvalid, "interval expression %q has unrecognized characters at offset %d", expr, consumed)
		}
		numStr := expr[m[2]:m[3]]
		unit := expr[m[4]:m[5]]
		n, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, errs.Newf(errs.ScheduleInvalid, "interval expression %q has an invalid number %q", expr, numStr)
		}
		total += n * unitSeconds[unit]
		consumed = end
	}

	if consumed != len(expr) {
		return 0, errs.Newf(errs.ScheduleInvalid, "interval expression %q has unrecognized trailing characters", expr)
	}
	if total <= 0 {
		return 0, errs.Newf(errs.ScheduleInvalid, "interval expression %q resolves to a non-positive duration", expr)
	}
	return total, nil
}
