package course

import (
	"github.com/tsinghua-fib-lab/course-navigator/entity"
)

// FindPassingLane 寻找绕过阻塞车道的相邻车道
// 算法说明：
// 1. 候选车道为下一航点所在车道编号减一、加一的两条车道，编号为0的无效
// 2. 对每条候选车道，取距下一航点最近的多边形，判断其在当前车道左侧还是右侧、同向还是反向（容差90度）
// 3. 反向车道改为收集逆序翻转后的多边形
// 4. 优先级：右侧同向 > 左侧同向 > 右侧反向 > 左侧反向
// 返回：是否找到超车车道，结果保存在超车状态中，不修改当前规划
func (c *Course) FindPassingLane() bool {
	w1 := c.order.Waypts[1]
	c.obs.Decision("find passing lane", Fields{"waypt": w1.ID})

	c.adjLane[0], c.adjLane[1] = w1.ID, w1.ID
	c.adjLane[0].Lane--
	c.adjLane[1].Lane++

	curIndex := c.pops.GetClosestPoly(c.plan, c.estimate.Pos)
	if curIndex < 0 {
		c.obs.Warning("no polygon nearby in plan", nil)
		return false
	}
	cur := c.plan[curIndex]

	side := [2]int{-1, -1}
	var forward [2]bool
	for i := range c.adjLane {
		c.adjLane[i].Pt = 0
		c.adjPolys[i] = entity.PolyList{}
		if c.adjLane[i].Lane == 0 {
			continue
		}
		c.adjPolys[i] = c.pops.AddLanePolys(c.polygons, c.adjPolys[i], c.adjLane[i])
		j := c.pops.GetClosestPoly(c.adjPolys[i], w1.Map)
		if j < 0 {
			continue
		}
		this := c.adjPolys[i][j]
		if c.pops.LeftOfPoly(this, cur) {
			side[entity.LEFT] = i
		} else {
			side[entity.RIGHT] = i
		}
		forward[i] = c.pops.SameDirection(cur, this, halfPi)
		if !forward[i] {
			c.adjPolys[i] = c.pops.AddReverseLanePolys(c.polygons, entity.PolyList{}, c.adjLane[i])
		}
		c.obs.PolyList(c.adjLane[i].LaneName(), c.adjPolys[i])
	}

	left, right := side[entity.LEFT], side[entity.RIGHT]
	switch {
	case right >= 0 && forward[right]:
		c.passingLane = right
	case left >= 0 && forward[left]:
		c.passingLane = left
	case right >= 0:
		c.passingLane = right
	case left >= 0:
		c.passingLane = left
	default:
		c.passingLane = -1
		c.obs.Warning("no passing lane available", Fields{"waypt": w1.ID})
		return false
	}
	c.passingLeft = c.passingLane == left

	direction := "backward"
	if forward[c.passingLane] {
		direction = "forward"
	}
	at := "right"
	if c.passingLeft {
		at = "left"
	}
	c.obs.Decision("passing lane selected", Fields{
		"lane": c.adjLane[c.passingLane].LaneName(), "side": at, "direction": direction,
	})
	return true
}

// PassingLane 选中的超车车道ID，没有时返回false
func (c *Course) PassingLane() (entity.WaypointID, bool) {
	if c.passingLane < 0 {
		return entity.NullWaypointID, false
	}
	return c.adjLane[c.passingLane], true
}

// SwitchToPassingLane 切换到已选中的超车车道
// 算法说明：
// 1. 在超车车道中寻找瞄准多边形，没有或其下游没有多边形时失败且不修改规划
// 2. 保存原规划用于判断何时可以返回，规划替换为从瞄准多边形开始的超车车道多边形
// 3. 超车起点为车辆位置在瞄准多边形中心线上的最近点，方向取瞄准多边形方向
func (c *Course) SwitchToPassingLane() bool {
	if c.passingLane < 0 {
		c.obs.Warning("unable to pass, no passing lane selected", nil)
		return false
	}
	lane := c.adjPolys[c.passingLane]
	i := c.FindAimPolygon(lane)
	if i < 0 {
		c.obs.Warning("unable to pass, no polygon near the aiming point", nil)
		return false
	}
	run := c.pops.CollectPolys(lane, entity.PolyList{}, i)
	if len(run) == 0 {
		c.obs.Warning("no polygons in passing lane past aiming point", nil)
		return false
	}

	c.passedLane = c.plan
	c.plan = run
	c.obs.PolyList("switch_to_passing_lane() plan", c.plan)

	aim := c.plan[0]
	c.aim = aimAt(aim)
	mid := c.pops.GetPolyEdgeMidpoint(aim)
	c.obs.Decision("aiming at polygon", Fields{"poly": aim.ID, "x": mid.X, "y": mid.Y})

	start := c.pops.GetClosestPointToLine(aim.StartMid(), aim.EndMid(), c.estimate.Pos, true)
	c.startPassLocation = entity.Pose{Pos: start, Heading: aim.Heading}
	c.obs.Decision("passing starts", Fields{"x": start.X, "y": start.Y})
	return true
}

// ReplanRoadblock 道路阻塞后的重规划起点
// 说明：保存当前指令用于HasNewWaypoints比较，返回规划中距车辆最近的多边形左侧的反向车道
// 返回：反向车道ID，没有时返回空ID
func (c *Course) ReplanRoadblock() entity.WaypointID {
	c.savedReplanNum = c.order.ReplanNum
	c.savedWayptID = c.order.IDs()

	i := c.pops.GetClosestPoly(c.plan, c.estimate.Pos)
	if i < 0 {
		c.obs.Warning("no polygon nearby in plan for roadblock replan", nil)
		return entity.NullWaypointID
	}
	reverse := c.pops.GetReverseLane(c.polygons, c.plan[i].Midpoint)
	c.obs.Decision("replan from lane", Fields{"lane": reverse.LaneName()})
	return reverse
}
