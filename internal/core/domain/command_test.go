package domain

import (
	"math"
	"testing"
)

func TestExpiry_Deadline(t *testing.T) {
	const now = int64(1_700_000_000_000)

	tests := []struct {
		name string
		exp  *Expiry
		want int64
	}{
		{"seconds", ExpireSeconds(2), now + 2000},
		{"millis", ExpireMillis(1500), now + 1500},
		{"zero millis", ExpireMillis(0), now},
		{"max seconds", ExpireSeconds(math.MaxUint32), now + int64(math.MaxUint32)*1000},
		{"saturates", ExpireMillis(math.MaxUint64), math.MaxInt64},
		{"saturates near max", ExpireMillis(math.MaxInt64 - 1), math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.exp.Deadline(now); got != tt.want {
				t.Errorf("Deadline(%d) = %d, want %d", now, got, tt.want)
			}
		})
	}
}

func TestCondition_Allows(t *testing.T) {
	tests := []struct {
		cond    Condition
		present bool
		want    bool
	}{
		{Always, false, true},
		{Always, true, true},
		{OnlyIfAbsent, false, true},
		{OnlyIfAbsent, true, false},
		{OnlyIfPresent, false, false},
		{OnlyIfPresent, true, true},
	}

	for _, tt := range tests {
		if got := tt.cond.Allows(tt.present); got != tt.want {
			t.Errorf("Condition(%d).Allows(%v) = %v, want %v", tt.cond, tt.present, got, tt.want)
		}
	}
}

func TestReplyFromError(t *testing.T) {
	r := ReplyFromError(ErrOption.Withf("Invalid Option: foo"))
	if r.Kind != KindError || r.Text != "Invalid Option: foo" {
		t.Errorf("ReplyFromError(domain) = %+v", r)
	}

	r = ReplyFromError(errPlain("boom"))
	if r.Text != "ERR boom" {
		t.Errorf("ReplyFromError(plain) text = %q, want %q", r.Text, "ERR boom")
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }
