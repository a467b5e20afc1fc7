package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// capacityEpsilon absorbs float noise when summing decimal capacities
// (0.1 + 0.2 against a ceiling of 0.3).
const capacityEpsilon = 1e-9

// ParseCapacity reads the leading decimal number of s the way clients of the
// pipeline have always entered it: "100", "12.5", "100 kW" and "100kW" all
// parse, and anything without a leading number counts as 0.
func ParseCapacity(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && isDigit(s[end]) {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && isDigit(s[end]) {
			end++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	// Optional exponent, only consumed when complete.
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		expDigits := exp
		for exp < len(s) && isDigit(s[exp]) {
			exp++
		}
		if exp > expDigits {
			end = exp
		}
	}
	value, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0
	}
	return value
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// SumCapacity adds up the parsed capacities.
func SumCapacity(values []string) float64 {
	var total float64
	for _, v := range values {
		total += ParseCapacity(v)
	}
	return total
}

// CapacityCheck is the outcome of testing whether additional capacity fits
// under a group's ceiling.
type CapacityCheck struct {
	OK        bool    `json:"ok"`
	Committed float64 `json:"committed"`
	Ceiling   float64 `json:"ceiling"`
	Requested float64 `json:"requested"`
}

// Remaining is the headroom left before the request is applied.
func (c CapacityCheck) Remaining() float64 {
	return c.Ceiling - c.Committed
}

// Err returns a *CapacityExceededError when the check failed.
func (c CapacityCheck) Err() error {
	if c.OK {
		return nil
	}
	return &CapacityExceededError{Check: c}
}

// CheckCapacity tests committed+additional against ceiling.
// members are the capacities of leads already in the group.
func CheckCapacity(ceiling string, members []string, additional float64) CapacityCheck {
	check := CapacityCheck{
		Committed: SumCapacity(members),
		Ceiling:   ParseCapacity(ceiling),
		Requested: additional,
	}
	check.OK = check.Committed+check.Requested <= check.Ceiling+capacityEpsilon
	return check
}

// CapacityExceededError reports a rejected attach or create.
type CapacityExceededError struct {
	Check CapacityCheck
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("group capacity exceeded: committed %s + requested %s > ceiling %s",
		FormatCapacity(e.Check.Committed), FormatCapacity(e.Check.Requested), FormatCapacity(e.Check.Ceiling))
}

// FormatCapacity renders a capacity without trailing zeros.
func FormatCapacity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
