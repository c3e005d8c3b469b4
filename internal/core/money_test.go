package core

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{"10000", 1000000, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyString(t *testing.T) {
	if s := FromPounds(8000).String(); s != "8000.00" {
		t.Fatalf("unexpected string %q", s)
	}
	if s := (Money{Cents: -150}).String(); s != "-1.50" {
		t.Fatalf("unexpected string %q", s)
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 123456})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"1234.56"` {
		t.Fatalf("unexpected json %s", b)
	}

	var m Money
	for _, in := range []string{`"1234.56"`, `1234.56`} {
		if err := json.Unmarshal([]byte(in), &m); err != nil || m.Cents != 123456 {
			t.Fatalf("%s: got %d err=%v", in, m.Cents, err)
		}
	}
	if err := json.Unmarshal([]byte(`"-3"`), &m); err != nil || m.Cents != -300 {
		t.Fatalf("signed amounts must survive decoding, got %d err=%v", m.Cents, err)
	}
	if err := json.Unmarshal([]byte(`"x"`), &m); err == nil {
		t.Fatalf("expected error for garbage")
	}
}

func TestMoneyJSONRejectsOverflow(t *testing.T) {
	for _, in := range []string{`"184467440737095516.16"`, `1e20`, `"92233720368547758.08"`, `"-92233720368547758.08"`} {
		m := Money{Cents: 42}
		if err := json.Unmarshal([]byte(in), &m); err == nil {
			t.Fatalf("%s: expected error, got %d", in, m.Cents)
		}
		if m.Cents != 42 {
			t.Fatalf("%s: value changed on error to %d", in, m.Cents)
		}
	}
	if _, err := ParseMoney("184467440737095516.16"); err == nil {
		t.Fatalf("expected ParseMoney to reject overflow")
	}
}
