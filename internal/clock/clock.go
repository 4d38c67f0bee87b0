// Package clock tracks simulation time, the current step size, and
// episode boundaries for a transient run.
package clock

import "fmt"

// Clock is the simulation clock. It owns the current time, the step
// size the driver intends to take next, and an optional episode
// schedule. Episodes split the run into phases of fixed length; a step
// is never allowed to overrun an episode boundary or the end of the
// run, so boundary events land exactly on a time level.
type Clock struct {
	time    float64
	endTime float64
	dt      float64
	stepIdx int

	episodeIdx    int
	episodeStart  float64
	episodeLength float64 // 0 disables episodes
}

func New(endTime, initialDt float64) (*Clock, error) {
	if endTime <= 0 {
		return nil, fmt.Errorf("end time must be positive, got %g", endTime)
	}
	if initialDt <= 0 {
		return nil, fmt.Errorf("initial step size must be positive, got %g", initialDt)
	}
	return &Clock{endTime: endTime, dt: initialDt}, nil
}

func (c *Clock) Time() float64    { return c.time }
func (c *Clock) EndTime() float64 { return c.endTime }
func (c *Clock) StepIndex() int   { return c.stepIdx }

// StepSize returns the step size for the next attempt, truncated so it
// never crosses the episode boundary or the end of the run.
func (c *Clock) StepSize() float64 {
	dt := c.dt
	if remaining := c.endTime - c.time; dt > remaining {
		dt = remaining
	}
	if c.episodeLength > 0 {
		if remaining := c.EpisodeEnd() - c.time; dt > remaining {
			dt = remaining
		}
	}
	return dt
}

func (c *Clock) SetStepSize(v float64) { c.dt = v }

// SetEpisodeLength enables episodes of the given length, starting at
// the current time.
func (c *Clock) SetEpisodeLength(l float64) {
	c.episodeLength = l
	c.episodeStart = c.time
}

func (c *Clock) EpisodeIndex() int { return c.episodeIdx }

func (c *Clock) EpisodeEnd() float64 {
	return c.episodeStart + c.episodeLength
}

// EpisodeWillEnd reports whether the next step lands on or crosses the
// current episode boundary.
func (c *Clock) EpisodeWillEnd() bool {
	if c.episodeLength <= 0 {
		return false
	}
	return c.time+c.dt >= c.EpisodeEnd()
}

// EpisodeIsOver reports whether the current time has reached the
// episode boundary.
func (c *Clock) EpisodeIsOver() bool {
	return c.episodeLength > 0 && c.time >= c.EpisodeEnd()
}

// StartNextEpisode begins a new episode at the current time.
func (c *Clock) StartNextEpisode() {
	c.episodeIdx++
	c.episodeStart = c.time
}

func (c *Clock) Finished() bool {
	return c.time >= c.endTime
}

// WillBeFinished reports whether the next step reaches the end of the run.
func (c *Clock) WillBeFinished() bool {
	return c.time+c.dt >= c.endTime
}

// Advance moves simulation time forward by the (truncated) step size.
// Called by the driver exactly once per converged macro step.
func (c *Clock) Advance() float64 {
	dt := c.StepSize()
	c.time += dt
	c.stepIdx++
	return dt
}
