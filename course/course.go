package course

import (
	"math"

	"github.com/tsinghua-fib-lab/course-navigator/entity"
	"github.com/tsinghua-fib-lab/course-navigator/utils/config"
)

// Cycle 一个控制周期的输入快照
// 说明：Order由指挥层持有，导航器在周期内可推进其窗口
type Cycle struct {
	Order    *entity.Order
	Odom     entity.Pose     // 里程计给出的当前位姿
	Estimate entity.Estimate // 控制用的状态估计
	Time     float64         // 周期时刻（秒）
}

// Course 课程规划器
// 功能：每个控制周期维护多边形规划、判定航点到达、规划超车并输出转向与速度指令
// 说明：单线程、同步、按周期驱动，不加锁
type Course struct {
	cfg     config.Course
	vehicle config.Vehicle
	pops    entity.ILaneNetwork
	obs     Observer

	// 周期输入
	order    *entity.Order
	odom     entity.Pose
	estimate entity.Estimate
	time     float64
	nav      entity.NavState

	polygons entity.PolyList // 局部区域的全部多边形
	plan     entity.PolyList // 规划路径
	aim      aimPoly         // 重新汇入车道时的瞄准多边形

	planWaypt       [entity.NOrderWaypts]entity.WaypointID // 规划所依据的航点
	newPlanLanes    bool                                   // 规划之后收到了新的多边形
	waypointChecked bool
	polyIndex       int // 当前位置在polygons中的下标

	// 超车
	adjLane           [2]entity.WaypointID
	adjPolys          [2]entity.PolyList
	passingLane       int
	passingLeft       bool
	passedLane        entity.PolyList
	startPassLocation entity.Pose

	// 路障重规划时保存的指令
	savedWayptID   [entity.NOrderWaypts]entity.WaypointID
	savedReplanNum int32

	stopWaypt entity.Waypoint
	stopPoly  entity.Polygon

	lastError float64
}

// New 创建课程规划器
// 参数：cfg-全局配置（使用其中的Course与Vehicle部分），pops-车道网络几何查询，obs-观测者（nil时丢弃）
func New(cfg config.Config, pops entity.ILaneNetwork, obs Observer) *Course {
	if obs == nil {
		obs = NopObserver{}
	}
	c := &Course{
		cfg:         cfg.Course,
		vehicle:     cfg.Vehicle,
		pops:        pops,
		obs:         obs,
		nav:         entity.NavState{CurPoly: -1},
		polygons:    make(entity.PolyList, 0),
		plan:        make(entity.PolyList, 0),
		passingLane: -1,
		polyIndex:   -1,
	}
	c.Reset()
	return c
}

// BeginCycle 控制周期开始
// 算法说明：
// 1. 定位当前多边形：优先在规划路径中查找（路口处多个连接多边形重叠），再在全部多边形中查找
// 2. 推进指令窗口，使窗口首航点与最近到达的航点一致，最多推进窗口长度减一次
func (c *Course) BeginCycle(in Cycle) {
	c.order = in.Order
	c.odom = in.Odom
	c.estimate = in.Estimate
	c.time = in.Time
	c.waypointChecked = false

	if c.nav.LastWaypt.IsNull() {
		c.nav.LastWaypt = c.order.Waypts[0].ID
	}

	if i := c.pops.GetContainingPoly(c.plan, c.estimate.Pos); i >= 0 {
		c.polyIndex = c.pops.GetPolyIndex(c.polygons, c.plan[i].ID)
	} else {
		c.polyIndex = c.pops.GetContainingPoly(c.polygons, c.estimate.Pos)
	}
	if c.polyIndex < 0 {
		c.nav.CurPoly = -1
	} else {
		c.nav.CurPoly = c.polygons[c.polyIndex].ID
	}

	for limit := entity.NOrderWaypts - 1; limit > 0 && c.order.Waypts[0].ID != c.nav.LastWaypt; limit-- {
		c.obs.Decision("waypoint already reached, advance order", Fields{"waypt": c.order.Waypts[1].ID})
		c.order.Advance()
	}
	for i, w := range c.order.Waypts {
		c.obs.Trace("order", Fields{"i": i, "waypt": w.String()})
	}
}

// EndCycle 控制周期结束
// 返回：本周期是否进行过航点到达判定
func (c *Course) EndCycle() bool {
	if !c.waypointChecked {
		c.obs.Warning("failed to check for way-point reached!", nil)
	}
	return c.waypointChecked
}

// LanesMessage 接收新的多边形快照
// 说明：数据被复制，之后的规划必须重新计算
func (c *Course) LanesMessage(polys entity.PolyList) {
	c.polygons = polys.Clone()
	if len(c.polygons) == 0 {
		c.obs.Warning("empty lanes polygon list received!", nil)
	}
	c.newPlanLanes = true
	c.obs.PolyList("lanes input:", c.polygons)
}

// Reset 清除规划、瞄准多边形与超车起点
func (c *Course) Reset() {
	c.obs.Decision("course reset", nil)
	c.startPassLocation = entity.Pose{}
	c.plan = entity.PolyList{}
	c.aim = noAim
}

// DistanceInPlan 沿规划路径的距离，没有规划时为欧氏距离
func (c *Course) DistanceInPlan(from entity.Pose, to entity.Point) float64 {
	if len(c.plan) == 0 {
		return entity.Distance(from.Pos, to)
	}
	return c.pops.DistanceAlongLane(c.plan, from.Pos, to)
}

// InLane 位置是否在当前规划路径内
func (c *Course) InLane(p entity.Point) bool {
	return c.InPolyList(c.plan, p)
}

// InPolyList 位置是否在给定多边形序列内
func (c *Course) InPolyList(polys entity.PolyList, p entity.Point) bool {
	return c.pops.GetContainingPoly(polys, p) >= 0
}

// SameLane 两个航点是否在同一车道且id1不在id2之后
// 说明：路段可能绕回自身，此时车道相同但点序号递减
func SameLane(id1, id2 entity.WaypointID) bool {
	return id1.SameLane(id2) && id1.Pt <= id2.Pt
}

// NavState 导航状态
func (c *Course) NavState() entity.NavState {
	return c.nav
}

// SetLastWaypt 设置最近到达的航点（用于初始化或指挥层重置）
func (c *Course) SetLastWaypt(id entity.WaypointID) {
	c.nav.LastWaypt = id
}

// Plan 当前规划路径
func (c *Course) Plan() entity.PolyList {
	return c.plan
}

// Polygons 当前多边形快照
func (c *Course) Polygons() entity.PolyList {
	return c.polygons
}

// PassedLane 超车前的规划路径
func (c *Course) PassedLane() entity.PolyList {
	return c.passedLane
}

// PassingLeft 是否向左超车
func (c *Course) PassingLeft() bool {
	return c.passingLeft
}

// StartPassLocation 超车开始的位姿
func (c *Course) StartPassLocation() entity.Pose {
	return c.startPassLocation
}

// StopWaypt 最近一次找到的停车或掉头航点及其所在多边形
func (c *Course) StopWaypt() (entity.Waypoint, entity.Polygon) {
	return c.stopWaypt, c.stopPoly
}

// AimPoly 瞄准多边形，没有时返回false
func (c *Course) AimPoly() (entity.Polygon, bool) {
	if i := c.aim.index(c.pops, c.plan); i >= 0 {
		return c.plan[i], true
	}
	return entity.Polygon{}, false
}

func (c *Course) bumper() entity.Point {
	return entity.PolarToMapXY(entity.Polar{Range: c.vehicle.FrontBumperPx}, c.estimate.Pose)
}

const halfPi = math.Pi / 2
