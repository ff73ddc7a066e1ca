package models

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw   string
		want  int64
		valid bool
	}{
		{"9111234567", 9111234567, true},
		{"89111234567", 9111234567, true},
		{"79111234567", 9111234567, true},
		{"+7 911 123-45-67", 9111234567, true},
		{"8 (911) 123-45-67", 9111234567, true},
		{"abc", 0, false},
		{"", 0, false},
		{"1234567890", 0, false},    // not a mobile number
		{"911123456", 0, false},     // too short
		{"91112345678", 0, false},   // too long
		{"591112345678", 0, false},  // unknown prefix
		{"+7 911 123-45-6a", 0, false},
	}

	for _, tc := range tests {
		got, ok := NormalizePhone(tc.raw)
		if ok != tc.valid {
			t.Errorf("NormalizePhone(%q) valid = %v, want %v", tc.raw, ok, tc.valid)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("NormalizePhone(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}
