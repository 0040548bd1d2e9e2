package course_test

import (
	"math"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/course-navigator/course"
	"github.com/tsinghua-fib-lab/course-navigator/entity"
	"github.com/tsinghua-fib-lab/course-navigator/utils/config"
)

var lane11 = []string{"1.1.1", "1.1.2", "1.1.3", "1.1.4", "1.1.5", "1.1.6", "1.1.7"}

func TestBeginCycleAdvancesWindow(t *testing.T) {
	f := newFixture(t).withLanes()
	f.route(lane11...)
	f.at(1, 0, 0, 0)
	assert.Equal(t, entity.NewWaypointID(1, 1, 1), f.c.NavState().LastWaypt)
	assert.Equal(t, int32(0), f.c.NavState().CurPoly)

	f.c.SetLastWaypt(entity.NewWaypointID(1, 1, 3))
	f.at(21, 0, 0, 0)
	assert.Equal(t, entity.NewWaypointID(1, 1, 3), f.order.Waypts[0].ID)
	assert.Equal(t, int32(10), f.c.NavState().CurPoly)

	// 窗口中找不到最近到达的航点时最多推进窗口长度减一次
	f.route(lane11...)
	f.c.SetLastWaypt(entity.NewWaypointID(9, 9, 9))
	f.at(1, 50, 0, 0)
	assert.Equal(t, entity.NewWaypointID(1, 1, 7), f.order.Waypts[0].ID)
	assert.Equal(t, int32(-1), f.c.NavState().CurPoly)
}

func TestEndCycle(t *testing.T) {
	f := newFixture(t).withLanes()
	f.route(lane11...)
	f.at(1, 0, 0, 0)
	assert.False(t, f.c.EndCycle())
	assert.Contains(t, f.rec.Warnings, "failed to check for way-point reached!")

	f.at(1, 0, 0, 0)
	f.c.NoWaypointReached()
	assert.True(t, f.c.EndCycle())
}

func TestPlanValidity(t *testing.T) {
	f := newFixture(t).withLanes()
	f.route(lane11...)
	f.at(1, 0, 0, 0)
	assert.False(t, f.c.PlanValid())

	f.c.FindTravelLane(false)
	assert.True(t, f.c.PlanValid())
	assert.Equal(t, lo.RangeFrom(int32(0), 31), f.c.Plan().IDs())

	// 新的多边形快照使规划失效
	f.c.LanesMessage(f.m.Polygons())
	assert.False(t, f.c.PlanValid())
	f.c.FindTravelLane(false)
	assert.True(t, f.c.PlanValid())

	// 指令航点变化使规划失效
	f.order.Waypts[3] = f.order.Waypts[4]
	assert.False(t, f.c.PlanValid())

	// 空规划无效
	f.c.Reset()
	assert.False(t, f.c.PlanValid())
}

func TestPlanWayptLimit(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Course.PlanWayptLimit = 3 }).withLanes()
	f.route(lane11...)
	f.at(1, 0, 0, 0)
	f.c.FindTravelLane(false)
	assert.Equal(t, lo.RangeFrom(int32(0), 11), f.c.Plan().IDs())

	// 超出限制的航点不影响规划有效性
	f.order.Waypts[5] = f.order.Waypts[6]
	assert.True(t, f.c.PlanValid())
}

func TestPlanStopsAtPerimeter(t *testing.T) {
	f := newFixture(t).withLanes()
	o := f.route(lane11...)
	o.Waypts[2].IsPerimeter = true
	f.at(1, 0, 0, 0)
	f.c.FindTravelLane(false)
	assert.Equal(t, lo.RangeFrom(int32(0), 11), f.c.Plan().IDs())
}

func TestPlanThroughIntersection(t *testing.T) {
	f := newFixture(t).withLanes()
	f.route("1.1.6", "1.1.7", "2.1.1", "2.1.2")
	f.at(51, 0, 0, 0)
	f.c.FindTravelLane(false)
	plan := f.c.Plan()
	assert.True(t, lo.SomeBy(plan, func(p entity.Polygon) bool { return p.IsTransition }))
	assert.Equal(t, entity.NewWaypointID(2, 1, 2), plan[len(plan)-1].StartWay)
	// 重复航点不重复添加多边形
	assert.Len(t, lo.Uniq(plan.IDs()), len(plan))
}

func TestEmptySnapshot(t *testing.T) {
	f := newFixture(t)
	f.route(lane11...)
	f.at(0, 0, math.Pi/4, 5)
	f.c.FindTravelLane(true)
	assert.Empty(t, f.c.Plan())
	assert.Contains(t, f.rec.Warnings, "find_travel_lane() has no polygons")

	// 直接朝向下一航点(10, 0)：需要右转
	cmd := entity.ControlCommand{Velocity: 5}
	f.c.DesiredHeading(&cmd, 0)
	assert.Less(t, cmd.YawRate, 0.0)
	assert.InDelta(t, f.cfg.Course.MaxSpeedForSharp, cmd.Velocity, 1e-9)
	assert.Contains(t, f.rec.Warnings, "no lane data available, steer using waypoints.")
}

func TestRejoinAimPolygon(t *testing.T) {
	f := newFixture(t).withLanes()
	f.route(lane11...)
	f.at(1, 3, 0, 0)
	f.c.FindTravelLane(true)
	aim, ok := f.c.AimPoly()
	assert.True(t, ok)
	nearby := f.m.GetClosestPoly(f.c.Plan(), entity.Point{X: 1, Y: 3})
	aimIndex := f.m.GetPolyIndex(f.c.Plan(), aim.ID)
	assert.Greater(t, aimIndex, nearby)
	assert.GreaterOrEqual(t,
		f.m.DistanceAlongLane(f.c.Plan(), f.c.Plan()[nearby].Midpoint, aim.Midpoint),
		f.cfg.Course.MinLaneSteerDist)

	// 规划仍有效时也会清除瞄准多边形
	f.c.FindTravelLane(false)
	_, ok = f.c.AimPoly()
	assert.False(t, ok)
}

func TestDistanceInPlan(t *testing.T) {
	f := newFixture(t).withLanes()
	f.route(lane11...)
	f.at(1, 0, 0, 0)
	assert.InDelta(t, 5, f.c.DistanceInPlan(entity.NewPose(0, 0, 0), entity.Point{X: 3, Y: 4}), 1e-9)
	f.c.FindTravelLane(false)
	assert.InDelta(t, 20, f.c.DistanceInPlan(entity.NewPose(1, 0, 0), entity.Point{X: 21}), 1e-9)
	assert.True(t, f.c.InLane(entity.Point{X: 30, Y: 1}))
	assert.False(t, f.c.InLane(entity.Point{X: 30, Y: 5}))
}

func TestSameLane(t *testing.T) {
	assert.True(t, course.SameLane(entity.NewWaypointID(1, 1, 2), entity.NewWaypointID(1, 1, 3)))
	assert.True(t, course.SameLane(entity.NewWaypointID(1, 1, 3), entity.NewWaypointID(1, 1, 3)))
	assert.False(t, course.SameLane(entity.NewWaypointID(1, 1, 4), entity.NewWaypointID(1, 1, 3)))
	assert.False(t, course.SameLane(entity.NewWaypointID(1, 2, 2), entity.NewWaypointID(1, 1, 3)))
}

func TestPolygonRuns(t *testing.T) {
	polys := entity.PolyList{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 7}, {ID: 9}, {ID: 8}}
	assert.Equal(t, []string{"polygons from 1 to 3", "polygon at 7", "polygons from 9 to 8"}, course.PolygonRuns(polys))
	assert.Empty(t, course.PolygonRuns(nil))
}
