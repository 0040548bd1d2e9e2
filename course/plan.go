package course

import (
	"github.com/tsinghua-fib-lab/course-navigator/entity"
)

// aimPoly 瞄准多边形的引用，按多边形ID而非下标保存，规划重建后重新解析
type aimPoly struct {
	id    int32
	valid bool
}

var noAim = aimPoly{}

func aimAt(p entity.Polygon) aimPoly {
	return aimPoly{id: p.ID, valid: true}
}

// index 在polys中的下标，没有瞄准多边形或已不在polys中时返回-1
func (a aimPoly) index(pops entity.ILaneNetwork, polys entity.PolyList) int {
	if !a.valid {
		return -1
	}
	return pops.GetPolyIndex(polys, a.id)
}

// PlanValid 当前规划是否仍然有效
// 说明：规划非空、规划后没有新的多边形、且前plan_waypt_limit个航点与指令一致
func (c *Course) PlanValid() bool {
	for i := 0; i < c.cfg.PlanWayptLimit; i++ {
		if c.planWaypt[i] != c.order.Waypts[i].ID {
			return false
		}
	}
	return len(c.plan) > 0 && !c.newPlanLanes
}

func (c *Course) setPlanWaypts() {
	for i := 0; i < c.cfg.PlanWayptLimit; i++ {
		c.planWaypt[i] = c.order.Waypts[i].ID
	}
}

// HasNewWaypoints 指令是否与路障重规划时保存的航点不同
func (c *Course) HasNewWaypoints() bool {
	if c.savedReplanNum != c.order.ReplanNum {
		return true
	}
	for i := range c.order.Waypts {
		if c.savedWayptID[i] != c.order.Waypts[i].ID {
			return true
		}
	}
	return false
}

// FindTravelLane 规划通往后续航点的多边形路径
// 参数：rejoin-车辆当前在车道外，需要选择重新汇入的瞄准多边形
// 算法说明：
// 1. 规划有效时不做改动
// 2. 否则清空规划并记录所依据的航点，没有多边形时直接返回（转向退化为直接朝向航点）
// 3. 先加入首航点所在多边形，再依次加入相邻航点之间的多边形，重复航点跳过
// 4. 到达区域边界航点后停止，规划不进入区域
// 5. rejoin时在规划中寻找瞄准多边形，避免车辆越过后绕回
func (c *Course) FindTravelLane(rejoin bool) {
	if c.PlanValid() {
		c.obs.Decision("find_travel_lane() plan still valid", nil)
	} else {
		c.plan = entity.PolyList{}
		c.aim = noAim
		c.setPlanWaypts()

		if len(c.polygons) == 0 {
			c.obs.Warning("find_travel_lane() has no polygons", nil)
			return
		}

		w := &c.order.Waypts
		c.plan = c.pops.AddPolysForWaypts(c.polygons, c.plan, w[0].ID, w[0].ID)
		for i := 1; i < c.cfg.PlanWayptLimit; i++ {
			if w[i-1].ID != w[i].ID {
				c.plan = c.pops.AddPolysForWaypts(c.polygons, c.plan, w[i-1].ID, w[i].ID)
			}
			if w[i].IsPerimeter {
				break
			}
		}
		c.obs.PolyList("find_travel_lane() plan", c.plan)
	}

	c.newPlanLanes = false
	c.aim = noAim

	if rejoin {
		if i := c.FindAimPolygon(c.plan); i >= 0 {
			c.aim = aimAt(c.plan[i])
			c.obs.Decision("aim polygon selected", Fields{"poly": c.plan[i].ID})
		}
	}
}

// FindAimPolygon 在lane中寻找车辆前方的瞄准多边形
// 算法说明：
// 1. 优先在首航点到下一航点之间的多边形中找距车辆最近的多边形，找不到时在整条lane中找
// 2. 从该多边形向下游至少min_lane_steer_dist处的多边形即为瞄准多边形
// 返回：瞄准多边形在lane中的下标，没有时返回-1
func (c *Course) FindAimPolygon(lane entity.PolyList) int {
	edge := c.pops.AddPolysForWaypts(lane, nil, c.order.Waypts[0].ID, c.order.Waypts[1].ID)
	nearby := c.pops.GetClosestPoly(edge, c.estimate.Pos)
	if nearby < 0 {
		nearby = c.pops.GetClosestPoly(lane, c.estimate.Pos)
	} else {
		nearby = c.pops.GetPolyIndex(lane, edge[nearby].ID)
	}
	if nearby < 0 {
		return -1
	}
	c.obs.Trace("aim point ahead", Fields{"distance": c.cfg.MinLaneSteerDist})
	return c.pops.IndexOfDownstreamPoly(lane, nearby, c.cfg.MinLaneSteerDist)
}
