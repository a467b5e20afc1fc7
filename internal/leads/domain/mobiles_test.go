package domain

import "testing"

func TestFirstOverlap(t *testing.T) {
	m, ok := FirstOverlap([]string{" +919800000001", "+919800000002"}, []string{"+919800000002 "})
	if !ok || m != "+919800000002" {
		t.Fatalf("expected overlap on +919800000002, got %q %v", m, ok)
	}
	if _, ok := FirstOverlap([]string{"1"}, []string{"2"}); ok {
		t.Fatal("expected no overlap")
	}
	if _, ok := FirstOverlap([]string{"  "}, []string{""}); ok {
		t.Fatal("blank numbers never overlap")
	}
}

func TestTrimMobilesAndSameMobiles(t *testing.T) {
	got := TrimMobiles([]string{" 1 ", "", "2", "1"})
	if len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("unexpected %v", got)
	}
	if !SameMobiles([]string{"1", "2"}, []string{" 2", "1 "}) {
		t.Fatal("expected equal sets")
	}
	if SameMobiles([]string{"1"}, []string{"1", "2"}) {
		t.Fatal("expected different sets")
	}
}
