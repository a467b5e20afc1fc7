package domain

import (
	"errors"
	"testing"
)

func TestParseCapacity(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"100", 100},
		{" 12.5 ", 12.5},
		{"100kW", 100},
		{"100 kW", 100},
		{"kW 100", 0},
		{"", 0},
		{"abc", 0},
		{"1e3", 1000},
		{"2e", 2},
		{"-4", -4},
		{".5", 0.5},
		{"12.", 12},
	}
	for _, tc := range cases {
		if got := ParseCapacity(tc.in); got != tc.want {
			t.Errorf("ParseCapacity(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCheckCapacityCeilingScenario(t *testing.T) {
	members := []string{"80"}

	over := CheckCapacity("100", members, 30)
	if over.OK {
		t.Fatal("expected 80+30 to exceed a ceiling of 100")
	}
	if over.Committed != 80 || over.Ceiling != 100 {
		t.Fatalf("unexpected figures %+v", over)
	}
	var exceeded *CapacityExceededError
	if err := over.Err(); !errors.As(err, &exceeded) {
		t.Fatalf("expected CapacityExceededError, got %v", err)
	}

	fits := CheckCapacity("100", members, 20)
	if !fits.OK || fits.Err() != nil {
		t.Fatalf("expected 80+20 to fit, got %+v", fits)
	}
	if fits.Committed+fits.Requested != 100 {
		t.Fatalf("expected committed capacity to become 100, got %v", fits.Committed+fits.Requested)
	}
}

func TestCheckCapacityToleratesFloatNoise(t *testing.T) {
	if !CheckCapacity("0.3", []string{"0.1"}, 0.2).OK {
		t.Fatal("expected 0.1+0.2 to fit under 0.3")
	}
}

func TestCheckCapacityNonNumericMembersCountAsZero(t *testing.T) {
	check := CheckCapacity("50", []string{"n/a", "20"}, 30)
	if !check.OK || check.Committed != 20 {
		t.Fatalf("unexpected %+v", check)
	}
	if check.Remaining() != 30 {
		t.Fatalf("expected remaining 30, got %v", check.Remaining())
	}
}
