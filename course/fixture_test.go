package course_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/course-navigator/course"
	"github.com/tsinghua-fib-lab/course-navigator/entity"
	"github.com/tsinghua-fib-lab/course-navigator/entity/lane"
	"github.com/tsinghua-fib-lab/course-navigator/utils/config"
	"github.com/tsinghua-fib-lab/course-navigator/utils/input"
)

type fixture struct {
	t     *testing.T
	cfg   config.Config
	m     *lane.Manager
	c     *course.Course
	rec   *course.RecordObserver
	order *entity.Order
}

func newFixture(t *testing.T, mutate ...func(*config.Config)) *fixture {
	t.Helper()
	network, err := input.Load("../data/network.yaml")
	require.NoError(t, err)
	return newNetworkFixture(t, network, mutate...)
}

// newNetworkFixture 以给定路网构造规划器
func newNetworkFixture(t *testing.T, network *input.RoadNetwork, mutate ...func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.Default()
	for _, f := range mutate {
		f(&cfg)
	}
	m := lane.NewManager(cfg.Input.PolyLength)
	m.Init(network)
	rec := &course.RecordObserver{}
	return &fixture{t: t, cfg: cfg, m: m, c: course.New(cfg, m, rec), rec: rec}
}

// withLanes 向规划器发送全部多边形
func (f *fixture) withLanes() *fixture {
	f.c.LanesMessage(f.m.Polygons())
	return f
}

// route 由航点ID构造指令窗口，不足时重复最后一个航点
func (f *fixture) route(ids ...string) *entity.Order {
	f.t.Helper()
	ws := make([]entity.Waypoint, 0, len(ids))
	for _, s := range ids {
		id, err := entity.ParseWaypointID(s)
		require.NoError(f.t, err)
		w, err := f.m.Waypoint(id)
		require.NoError(f.t, err)
		ws = append(ws, w)
	}
	return f.waypts(ws...)
}

// waypts 由航点构造指令窗口，不足时重复最后一个航点
func (f *fixture) waypts(ws ...entity.Waypoint) *entity.Order {
	o := &entity.Order{NextUturn: -1}
	for i := range o.Waypts {
		o.Waypts[i] = ws[min(i, len(ws)-1)]
	}
	f.order = o
	return o
}

// at 以给定位姿与速度开始一个控制周期
func (f *fixture) at(x, y, heading, v float64) {
	pose := entity.NewPose(x, y, heading)
	f.c.BeginCycle(course.Cycle{
		Order:    f.order,
		Odom:     pose,
		Estimate: entity.Estimate{Pose: pose, V: v},
	})
}
