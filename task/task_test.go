package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/course-navigator/task"
	"github.com/tsinghua-fib-lab/course-navigator/utils/config"
)

func newConfig(agents ...config.Agent) config.Config {
	c := config.Default()
	c.Input.Network = "../data/network.yaml"
	c.Sim.Agents = agents
	return c
}

var straight = config.Agent{
	Route: []string{"1.1.1", "1.1.2", "1.1.3", "1.1.4", "1.1.5", "1.1.6"},
	Speed: 5,
}

func TestRun(t *testing.T) {
	c := newConfig(straight, config.Agent{
		Route:   []string{"2.1.1", "2.1.2", "2.1.3", "2.1.4", "2.1.5"},
		Speed:   5,
		Blocked: "2.1.3",
	})
	ctx := task.NewContext("test", c)
	s := ctx.Run()
	assert.Equal(t, "test", s.Job)
	assert.Equal(t, 2, s.Vehicles)
	assert.Equal(t, 1, s.Arrived)
	assert.Equal(t, 1, s.Stuck)
	assert.Less(t, s.Steps, c.Control.Step.Total)
	assert.Greater(t, s.TravelDistance, 40.0)
	assert.Greater(t, s.TravelTime, 0.0)
	assert.Zero(t, s.Passes)
	assert.GreaterOrEqual(t, s.CrossTrackMax, s.CrossTrackP95)
	assert.GreaterOrEqual(t, s.CrossTrackP95, 0.0)
	assert.Less(t, s.CrossTrackMax, 1.0)
	assert.True(t, ctx.VehicleManager().Finished())
}

func TestRunStopsAtEndStep(t *testing.T) {
	c := newConfig(straight)
	c.Control.Step.Total = 10
	s := task.NewContext("short", c).Run()
	assert.Equal(t, int32(9), s.Steps)
	assert.Zero(t, s.Arrived)
	assert.Zero(t, s.Stuck)
}

func TestNoVehicles(t *testing.T) {
	s := task.NewContext("empty", newConfig()).Run()
	assert.Zero(t, s.Steps)
	assert.Zero(t, s.Vehicles)
	assert.Zero(t, s.CrossTrackMax)
}

func TestNewContextPanics(t *testing.T) {
	c := newConfig(straight)
	c.Input.Network = ""
	assert.Panics(t, func() { task.NewContext("x", c) })
	c.Input.Network = "../data/missing.yaml"
	assert.Panics(t, func() { task.NewContext("x", c) })
	c = newConfig(config.Agent{Route: []string{"9.9.9"}})
	ctx := task.NewContext("x", c)
	require.NotNil(t, ctx.LaneManager())
	assert.Panics(t, func() { ctx.Init() })
}
