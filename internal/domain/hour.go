package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidHour reports an hour string that does not parse as an integer.
	ErrInvalidHour = errors.New("invalid hour")
	// ErrUnknownPolicy reports an unrecognized zero policy name.
	ErrUnknownPolicy = errors.New("unknown hour zero policy")
)

// ZeroPolicy decides how ModifyHour treats an hour string that starts with "0".
type ZeroPolicy int

const (
	// StripAllZeros deletes every '0' in the string, so "010" becomes 1.
	// This is the behaviour of the notebook helpers the dataset was first
	// prepared with; it is the default until that behaviour is ruled a bug.
	StripAllZeros ZeroPolicy = iota
	// StripLeadingZero removes only the first character, so "010" becomes 10.
	StripLeadingZero
)

func (p ZeroPolicy) String() string {
	switch p {
	case StripAllZeros:
		return "strip-all-zeros"
	case StripLeadingZero:
		return "strip-leading-zero-only"
	default:
		return fmt.Sprintf("ZeroPolicy(%d)", int(p))
	}
}

// ParseZeroPolicy maps "strip-all-zeros" and "strip-leading-zero-only" to
// their policies.
func ParseZeroPolicy(s string) (ZeroPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strip-all-zeros":
		return StripAllZeros, nil
	case "strip-leading-zero-only":
		return StripLeadingZero, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// ModifyHour turns a zero-padded hour string into an int. "00" is 0. Strings
// starting with "0" are rewritten by policy before parsing; anything else is
// parsed as is, so "10" is 10 under either policy.
func ModifyHour(value string, policy ZeroPolicy) (int, error) {
	if value == "00" {
		return 0, nil
	}
	s := value
	if strings.HasPrefix(value, "0") {
		switch policy {
		case StripAllZeros:
			s = strings.ReplaceAll(value, "0", "")
		case StripLeadingZero:
			s = value[1:]
		default:
			return 0, fmt.Errorf("modify hour %q: %w: %v", value, ErrUnknownPolicy, policy)
		}
	}

	h, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("modify hour %q: %w", value, ErrInvalidHour)
	}
	return h, nil
}

// AmOrPm labels hours 0 through 12 inclusive "AM" and everything else "PM".
// Noon counts as AM.
func AmOrPm(hour int) string {
	if hour >= 0 && hour <= 12 {
		return "AM"
	}
	return "PM"
}
