package strconvx

import "testing"

func TestItoaAtoi(t *testing.T) {
	for _, v := range []int{0, 1, -1, 255, 60000, -99999} {
		s := Itoa(v)
		got, err := Atoi(s)
		if err != nil {
			t.Fatalf("Atoi(%q) error: %v", s, err)
		}
		if got != v {
			t.Fatalf("Itoa/Atoi round trip: want %d, got %d", v, got)
		}
	}
}

func TestParseIntRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "-", "12a", "1.5", " 7"} {
		if _, err := ParseInt(s, 10, 32); err == nil {
			t.Errorf("ParseInt(%q) accepted invalid input", s)
		}
	}
	if _, err := ParseInt("4294967296", 10, 32); err == nil {
		t.Error("ParseInt accepted a value outside 32 bits")
	}
}

func TestAppendInt(t *testing.T) {
	buf := make([]byte, 0, 16)
	buf = append(buf, "brt="...)
	buf = AppendInt(buf, -42, 10)
	if got := string(buf); got != "brt=-42" {
		t.Fatalf("AppendInt = %q", got)
	}
}
