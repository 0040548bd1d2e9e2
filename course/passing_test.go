package course_test

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/course-navigator/entity"
	"github.com/tsinghua-fib-lab/course-navigator/utils/input"
)

func TestPassingLaneRightForward(t *testing.T) {
	f := newFixture(t).withLanes()
	f.route("3.1.1", "3.1.2", "3.1.3", "3.1.4", "3.1.5")
	f.at(5, -20, 0, 5)
	f.c.FindTravelLane(false)

	for i := 0; i < 2; i++ {
		require.True(t, f.c.FindPassingLane())
		lane, ok := f.c.PassingLane()
		assert.True(t, ok)
		assert.Equal(t, entity.NewWaypointID(3, 2, 0), lane)
		assert.False(t, f.c.PassingLeft())
	}

	before := f.c.Plan().Clone()
	require.True(t, f.c.SwitchToPassingLane())
	assert.Equal(t, before.IDs(), f.c.PassedLane().IDs())
	aim, ok := f.c.AimPoly()
	require.True(t, ok)
	assert.Equal(t, f.c.Plan()[0].ID, aim.ID)
	assert.True(t, aim.StartWay.SameLane(entity.NewWaypointID(3, 2, 0)))
	start := f.c.StartPassLocation()
	assert.InDelta(t, 8, start.Pos.X, 1e-9)
	assert.InDelta(t, -24, start.Pos.Y, 1e-9)
	assert.InDelta(t, 0, start.Heading, 1e-9)
}

func TestPassingLaneLeftForward(t *testing.T) {
	f := newFixture(t).withLanes()
	f.route("3.2.1", "3.2.2", "3.2.3", "3.2.4", "3.2.5")
	f.at(5, -24, 0, 5)
	f.c.FindTravelLane(false)
	require.True(t, f.c.FindPassingLane())
	lane, _ := f.c.PassingLane()
	assert.Equal(t, entity.NewWaypointID(3, 1, 0), lane)
	assert.True(t, f.c.PassingLeft())
}

func TestPassingLaneLeftBackward(t *testing.T) {
	f := newFixture(t).withLanes()
	f.route(lane11...)
	f.at(5, 0, 0, 5)
	f.c.FindTravelLane(false)
	require.True(t, f.c.FindPassingLane())
	lane, _ := f.c.PassingLane()
	assert.Equal(t, entity.NewWaypointID(1, 2, 0), lane)
	assert.True(t, f.c.PassingLeft())

	require.True(t, f.c.SwitchToPassingLane())
	plan := f.c.Plan()
	// 反向车道翻转后与当前行驶方向一致，且沿行驶方向向前
	for _, p := range plan {
		assert.InDelta(t, 0, entity.Normalize(p.Heading), 1e-9)
	}
	assert.Less(t, plan[0].Midpoint.X, plan[len(plan)-1].Midpoint.X)
	start := f.c.StartPassLocation()
	assert.InDelta(t, 8, start.Pos.X, 1e-9)
	assert.InDelta(t, 4, start.Pos.Y, 1e-9)

	f.c.SignalPass()
	assert.True(t, f.c.NavState().SignalLeft)
	f.c.SignalPassReturn()
	assert.True(t, f.c.NavState().SignalRight)
	assert.False(t, f.c.NavState().SignalLeft)
}

// threeLaneNetwork 路段5：车道2沿y=0向东，车道1在其左侧（y=4），车道3在其右侧（y=-4）
func threeLaneNetwork(t *testing.T, leftForward, rightForward bool) *input.RoadNetwork {
	t.Helper()
	lane := func(id int32, y float64, forward bool) string {
		var b strings.Builder
		fmt.Fprintf(&b, "      - id: %d\n        width: 4\n        waypoints:\n", id)
		for pt := int32(1); pt <= 5; pt++ {
			x := float64(pt-1) * 10
			if !forward {
				x = 40 - x
			}
			fmt.Fprintf(&b, "          - {pt: %d, x: %g, y: %g}\n", pt, x, y)
		}
		return b.String()
	}
	data := "segments:\n  - id: 5\n    lanes:\n" +
		lane(1, 4, leftForward) + lane(2, 0, true) + lane(3, -4, rightForward)
	network, err := input.Parse([]byte(data))
	require.NoError(t, err)
	return network
}

func TestPassingLanePriority(t *testing.T) {
	cases := []struct {
		name                      string
		leftForward, rightForward bool
		want                      int32
		left                      bool
	}{
		{"both forward", true, true, 3, false},
		{"left forward only", true, false, 1, true},
		{"right forward only", false, true, 3, false},
		{"both backward", false, false, 3, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newNetworkFixture(t, threeLaneNetwork(t, tc.leftForward, tc.rightForward)).withLanes()
			f.route("5.2.1", "5.2.2", "5.2.3", "5.2.4", "5.2.5")
			f.at(5, 0, 0, 5)
			f.c.FindTravelLane(false)
			require.True(t, f.c.FindPassingLane())
			lane, ok := f.c.PassingLane()
			require.True(t, ok)
			assert.Equal(t, entity.NewWaypointID(5, tc.want, 0), lane)
			assert.Equal(t, tc.left, f.c.PassingLeft())

			// 反向车道翻转后沿当前行驶方向
			require.True(t, f.c.SwitchToPassingLane())
			for _, p := range f.c.Plan() {
				assert.InDelta(t, 0, entity.Normalize(p.Heading), 1e-9)
			}
		})
	}
}

func TestNoPassingLane(t *testing.T) {
	f := newFixture(t).withLanes()
	f.route("2.1.1", "2.1.2", "2.1.3")
	f.at(70, 11, math.Pi/2, 5)
	f.c.FindTravelLane(false)
	before := f.c.Plan().IDs()
	assert.False(t, f.c.FindPassingLane())
	_, ok := f.c.PassingLane()
	assert.False(t, ok)
	assert.False(t, f.c.SwitchToPassingLane())
	assert.Equal(t, before, f.c.Plan().IDs())
	assert.Contains(t, f.rec.Warnings, "no passing lane available")
}

func TestReplanRoadblock(t *testing.T) {
	f := newFixture(t).withLanes()
	f.route(lane11...)
	f.at(5, 0, 0, 5)
	assert.True(t, f.c.ReplanRoadblock().IsNull())

	f.c.FindTravelLane(false)
	assert.Equal(t, entity.NewWaypointID(1, 2, 0), f.c.ReplanRoadblock())
	assert.False(t, f.c.HasNewWaypoints())

	f.order.ReplanNum++
	assert.True(t, f.c.HasNewWaypoints())
	f.c.ReplanRoadblock()
	assert.False(t, f.c.HasNewWaypoints())

	f.order.Advance()
	assert.True(t, f.c.HasNewWaypoints())
}
