package clock

import "testing"

func TestClockValidation(t *testing.T) {
	tests := []struct {
		name        string
		endTime, dt float64
	}{
		{"zero end time", 0, 1},
		{"negative end time", -10, 1},
		{"zero dt", 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.endTime, tt.dt); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestClockAdvance(t *testing.T) {
	c, err := New(10, 2)
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}

	for i := 0; i < 5; i++ {
		if c.Finished() {
			t.Fatalf("finished after %d steps", i)
		}
		c.Advance()
	}
	if !c.Finished() {
		t.Errorf("not finished at t=%g", c.Time())
	}
	if c.StepIndex() != 5 {
		t.Errorf("step index %d, want 5", c.StepIndex())
	}
}

func TestClockTruncatesAtEndTime(t *testing.T) {
	c, err := New(10, 4)
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}

	c.Advance() // t=4
	c.Advance() // t=8
	if !c.WillBeFinished() {
		t.Error("next step crosses the end but WillBeFinished is false")
	}
	if dt := c.StepSize(); dt != 2 {
		t.Errorf("final step size %g, want 2", dt)
	}
	c.Advance()
	if c.Time() != 10 {
		t.Errorf("overran end time: t=%g", c.Time())
	}
}

func TestClockEpisodes(t *testing.T) {
	c, err := New(100, 4)
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}
	c.SetEpisodeLength(10)

	// Two full steps, then a truncated one onto the boundary.
	c.Advance() // t=4
	c.Advance() // t=8
	if !c.EpisodeWillEnd() {
		t.Error("step crossing the boundary not flagged")
	}
	if dt := c.StepSize(); dt != 2 {
		t.Errorf("truncated step size %g, want 2", dt)
	}
	c.Advance() // t=10
	if !c.EpisodeIsOver() {
		t.Error("episode not over at its boundary")
	}

	c.StartNextEpisode()
	if c.EpisodeIndex() != 1 {
		t.Errorf("episode index %d, want 1", c.EpisodeIndex())
	}
	if c.EpisodeEnd() != 20 {
		t.Errorf("next episode ends at %g, want 20", c.EpisodeEnd())
	}
	if c.EpisodeIsOver() {
		t.Error("fresh episode already over")
	}
}

func TestClockNoEpisodesByDefault(t *testing.T) {
	c, err := New(10, 1)
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}
	if c.EpisodeWillEnd() || c.EpisodeIsOver() {
		t.Error("episode flags set without a schedule")
	}
}
