package vehicle_test

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/course-navigator/clock"
	"github.com/tsinghua-fib-lab/course-navigator/entity"
	"github.com/tsinghua-fib-lab/course-navigator/entity/lane"
	"github.com/tsinghua-fib-lab/course-navigator/entity/vehicle"
	"github.com/tsinghua-fib-lab/course-navigator/utils/config"
	"github.com/tsinghua-fib-lab/course-navigator/utils/input"
)

type testContext struct {
	clock *clock.Clock
	lm    *lane.Manager
	vm    *vehicle.Manager
	rc    *config.RuntimeConfig
}

func (c *testContext) Clock() *clock.Clock                    { return c.clock }
func (c *testContext) LaneManager() entity.ILaneManager       { return c.lm }
func (c *testContext) VehicleManager() entity.IVehicleManager { return c.vm }
func (c *testContext) RuntimeConfig() *config.RuntimeConfig   { return c.rc }

func newContext(t *testing.T, agents ...config.Agent) *testContext {
	t.Helper()
	network, err := input.Load("../../data/network.yaml")
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Sim.Agents = agents
	ctx := &testContext{clock: clock.New(cfg.Control.Step), rc: config.NewRuntimeConfig(cfg)}
	ctx.lm = lane.NewManager(cfg.Input.PolyLength)
	ctx.lm.Init(network)
	ctx.vm = vehicle.NewManager(ctx)
	require.NoError(t, ctx.vm.Init(cfg.Sim))
	return ctx
}

// run 运行至所有车辆结束，返回所用步数
func (c *testContext) run(steps int) int {
	for i := 1; i <= steps; i++ {
		c.clock.Next()
		c.vm.Prepare()
		c.vm.Update(c.clock.DT)
		if c.vm.Finished() {
			c.vm.Prepare()
			return i
		}
	}
	return steps
}

func ids(t *testing.T, ss ...string) []entity.WaypointID {
	t.Helper()
	return lo.Map(ss, func(s string, _ int) entity.WaypointID {
		id, err := entity.ParseWaypointID(s)
		require.NoError(t, err)
		return id
	})
}

func TestCommander(t *testing.T) {
	ctx := newContext(t)
	c, err := vehicle.NewCommander(ctx.lm, ids(t, "1.1.5", "1.1.6", "1.1.7", "1.2.1", "1.2.2"))
	require.NoError(t, err)
	o := c.Order()
	window := o.IDs()
	assert.Equal(t, ids(t, "1.1.5", "1.1.6", "1.1.7", "1.2.1", "1.2.2", "1.2.2", "1.2.2"), window[:])
	assert.Equal(t, 2, o.NextUturn)
	assert.Equal(t, 4, c.Remaining())

	c.Sync(entity.NewWaypointID(1, 1, 6))
	assert.Equal(t, entity.NewWaypointID(1, 1, 6), o.Waypts[0].ID)
	assert.Equal(t, 1, o.NextUturn)

	// 窗口外的航点不推进
	c.Sync(entity.NewWaypointID(9, 9, 9))
	assert.Equal(t, entity.NewWaypointID(1, 1, 6), o.Waypts[0].ID)
	assert.False(t, c.Done())

	c.Sync(entity.NewWaypointID(1, 2, 2))
	assert.True(t, c.Done())
	assert.Equal(t, -1, o.NextUturn)

	require.NoError(t, c.Reroute(ctx.lm, ids(t, "2.1.1", "2.1.2")))
	assert.Equal(t, int32(1), o.ReplanNum)
	assert.Equal(t, entity.NewWaypointID(2, 1, 1), o.Waypts[0].ID)
	assert.Error(t, c.Reroute(ctx.lm, ids(t, "9.9.9")))
	assert.Equal(t, int32(1), o.ReplanNum)

	_, err = vehicle.NewCommander(ctx.lm, nil)
	assert.Error(t, err)
	_, err = vehicle.NewCommander(ctx.lm, ids(t, "1.1.1", "7.7.7"))
	assert.Error(t, err)
}

func TestInitErrors(t *testing.T) {
	ctx := newContext(t)
	m := vehicle.NewManager(ctx)
	assert.Error(t, m.Init(config.Sim{Agents: []config.Agent{{Route: []string{"1.1"}}}}))
	assert.Error(t, m.Init(config.Sim{Agents: []config.Agent{{Route: []string{"1.1.1", "1.1.2"}, Blocked: "8.8.8"}}}))
	require.NoError(t, m.Init(config.Sim{Agents: []config.Agent{{Route: []string{"1.1.1"}, Speed: 5}}}))
	v, err := m.Get(0)
	require.NoError(t, err)
	assert.True(t, v.Done())
	assert.True(t, m.Finished())
	_, err = m.Get(1)
	assert.Error(t, err)
}

func TestDriveStraight(t *testing.T) {
	ctx := newContext(t, config.Agent{
		Route: []string{"1.1.1", "1.1.2", "1.1.3", "1.1.4", "1.1.5", "1.1.6"},
		Speed: 5,
	})
	steps := ctx.run(1000)
	assert.Less(t, steps, 1000)
	v, err := ctx.vm.Get(0)
	require.NoError(t, err)
	assert.Equal(t, vehicle.Arrived, v.Status())
	assert.Equal(t, entity.NewWaypointID(1, 1, 6), v.NavState().LastWaypt)
	assert.Greater(t, v.Distance(), 40.0)
	assert.NotEmpty(t, v.CrossTrack())
	assert.Less(t, lo.Max(v.CrossTrack()), 0.5)
	assert.Equal(t, int32(1), ctx.vm.Snapshot().NumFinished)
}

func TestStopThenTurnLeft(t *testing.T) {
	ctx := newContext(t, config.Agent{
		Route: []string{"1.1.5", "1.1.6", "1.1.7", "2.1.1", "2.1.2"},
		Speed: 5,
	})
	steps := ctx.run(2000)
	assert.Less(t, steps, 2000)
	v, _ := ctx.vm.Get(0)
	assert.Equal(t, vehicle.Arrived, v.Status())
	assert.Equal(t, 1, v.Stops())
	assert.Equal(t, entity.NewWaypointID(2, 1, 2), v.NavState().LastWaypt)
	assert.Greater(t, v.Estimate().Pos.Y, 10.0)
}

func TestPassObstacle(t *testing.T) {
	ctx := newContext(t, config.Agent{
		Route:   []string{"3.1.1", "3.1.2", "3.1.3", "3.1.4", "3.1.5"},
		Speed:   5,
		Blocked: "3.1.3",
	})
	steps := ctx.run(2000)
	assert.Less(t, steps, 2000)
	v, _ := ctx.vm.Get(0)
	assert.Equal(t, vehicle.Arrived, v.Status())
	assert.Equal(t, 1, v.Passes())
}

func TestBlockedWithoutWayAround(t *testing.T) {
	ctx := newContext(t, config.Agent{
		Route:   []string{"2.1.1", "2.1.2", "2.1.3", "2.1.4", "2.1.5"},
		Speed:   5,
		Blocked: "2.1.3",
	})
	steps := ctx.run(2000)
	assert.Less(t, steps, 2000)
	v, _ := ctx.vm.Get(0)
	assert.Equal(t, vehicle.Stuck, v.Status())
	assert.True(t, v.Done())
	// 在障碍物前保持最小间距
	assert.Less(t, v.Estimate().Pos.Y, 30-ctx.rc.All.Vehicle.MinForwSep)
}

func TestStep(t *testing.T) {
	ctx := newContext(t, config.Agent{Route: []string{"1.1.1", "1.1.2"}, Speed: 5})
	ctx.run(1)
	ctx.vm.Prepare()
	v, _ := ctx.vm.Get(0)
	// 从静止以最大加速度起步
	assert.InDelta(t, 0.2, v.Estimate().V, 1e-9)
	assert.InDelta(t, 0.01, v.Distance(), 1e-9)
}
