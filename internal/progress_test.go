package internal

import (
	"testing"
	"time"
)

func TestSessionProgress_Ratio(t *testing.T) {
	cfg := DefaultConfig()
	p := NewSessionProgress(10, cfg)
	if p.Ratio() != 0 {
		t.Errorf("Ratio() = %f, want 0", p.Ratio())
	}
	p.Completed = 4
	if p.Ratio() != 0.4 {
		t.Errorf("Ratio() = %f, want 0.4", p.Ratio())
	}

	empty := NewSessionProgress(0, cfg)
	if empty.Ratio() != 0 {
		t.Errorf("Ratio() of empty batch = %f, want 0", empty.Ratio())
	}
}

func TestSessionProgress_BreakDue(t *testing.T) {
	cfg := DefaultConfig() // break every 5
	tests := []struct {
		completed int
		want      bool
	}{
		{0, false},
		{3, false},
		{5, true},
		{6, false},
		{10, true},
	}
	for _, tt := range tests {
		p := NewSessionProgress(20, cfg)
		p.Completed = tt.completed
		if got := p.BreakDue(); got != tt.want {
			t.Errorf("BreakDue() at %d completed = %v, want %v", tt.completed, got, tt.want)
		}
	}

	disabled := DefaultConfig()
	disabled.BreakInterval = 0
	p := NewSessionProgress(20, disabled)
	p.Completed = 5
	if p.BreakDue() {
		t.Error("BreakDue() = true with reminders disabled")
	}
}

func TestSessionProgress_SessionTooLong(t *testing.T) {
	cfg := DefaultConfig()
	p := NewSessionProgress(10, cfg)
	if p.SessionTooLong() {
		t.Error("fresh session reported too long")
	}
	p.StartedAt = time.Now().Add(-time.Duration(cfg.MaxSessionMinutes+1) * time.Minute)
	if !p.SessionTooLong() {
		t.Error("overlong session not flagged")
	}

	cfg.MaxSessionMinutes = 0
	if p.SessionTooLong() {
		t.Error("SessionTooLong() = true with the check disabled")
	}
}

func TestSessionProgress_Summary(t *testing.T) {
	p := NewSessionProgress(8, DefaultConfig())
	p.Completed = 2
	want := "2/8 conversations rated (25.0%)"
	if got := p.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}
