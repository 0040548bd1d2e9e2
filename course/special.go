package course

import (
	"math"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/tsinghua-fib-lab/course-navigator/entity"
)

// straightTolerance 路口方向判定为直行的航向变化阈值
const straightTolerance = 30 * math.Pi / 180

// SpecialWaypt 窗口中第i个航点是否为特殊航点（停车或掉头）
func (c *Course) SpecialWaypt(i int) bool {
	return c.order.Waypts[i].IsStop || c.UturnWaypt(i)
}

// UturnWaypt 窗口中第i、i+1个航点是否构成掉头
func (c *Course) UturnWaypt(i int) bool {
	if c.order.NextUturn < 0 {
		return false
	}
	return i == c.order.NextUturn
}

// UturnOrderIndex 当前车道内即将到来的掉头航点在窗口中的下标，没有时返回-1
func (c *Course) UturnOrderIndex() int {
	w := &c.order.Waypts
	for i := 1; i < entity.NOrderWaypts-1; i++ {
		if !w[i].ID.SameLane(w[0].ID) {
			break
		}
		if c.UturnWaypt(i) {
			return i
		}
	}
	return -1
}

// UturnDistance 沿规划到掉头航点的距离，没有时返回无穷大
// 说明：找到时记录掉头航点及其所在多边形，供停车线控制器使用
func (c *Course) UturnDistance() float64 {
	i := c.UturnOrderIndex()
	if i < 0 {
		return mathutil.INF
	}
	return c.stopDistance(c.order.Waypts[i], "U-turn")
}

// StopWayptDistance 沿规划到下一个停车航点的距离，没有时返回无穷大
// 参数：sameLane-只考虑与首航点同一车道的航点
func (c *Course) StopWayptDistance(sameLane bool) float64 {
	w := &c.order.Waypts
	for i := 1; i < entity.NOrderWaypts; i++ {
		if sameLane && !w[i].ID.SameLane(w[0].ID) {
			break
		}
		if !w[i].IsStop {
			continue
		}
		if d := c.stopDistance(w[i], "stop"); d < mathutil.INF {
			return d
		}
	}
	return mathutil.INF
}

func (c *Course) stopDistance(w entity.Waypoint, kind string) float64 {
	i := c.pops.GetContainingPoly(c.polygons, w.Map)
	if i < 0 {
		return mathutil.INF
	}
	c.stopPoly = c.polygons[i]
	c.stopWaypt = w
	d := c.DistanceInPlan(c.estimate.Pose, w.Map)
	c.obs.Decision(kind+" waypoint ahead", Fields{"waypt": w.ID, "distance": d})
	return d
}

// IntersectionDirection 通过路口的方向
// 说明：比较首航点与下一航点所在多边形的航向，变化小于30度为直行，正为左转，负为右转
func (c *Course) IntersectionDirection() entity.Direction {
	i0 := c.pops.GetContainingPoly(c.polygons, c.order.Waypts[0].Map)
	i1 := c.pops.GetContainingPoly(c.polygons, c.order.Waypts[1].Map)
	if i0 < 0 || i1 < 0 {
		return entity.Straight
	}
	change := entity.Normalize(c.pops.PolyHeading(c.polygons[i1]) - c.pops.PolyHeading(c.polygons[i0]))
	c.obs.Decision("heading change through intersection", Fields{
		"from": c.order.Waypts[0].ID, "to": c.order.Waypts[1].ID, "change": change,
	})
	switch {
	case math.Abs(change) < straightTolerance:
		return entity.Straight
	case change > 0:
		return entity.Left
	default:
		return entity.Right
	}
}

// LaneChangeDirection 变道方向，按航点ID查找多边形
func (c *Course) LaneChangeDirection() entity.Direction {
	i0 := c.pops.GetWaypointIndex(c.polygons, c.order.Waypts[0].ID)
	i1 := c.pops.GetWaypointIndex(c.polygons, c.order.Waypts[1].ID)
	if i0 < 0 || i1 < 0 {
		return entity.Straight
	}
	if c.pops.LeftOfPoly(c.polygons[i1], c.polygons[i0]) {
		return entity.Left
	}
	return entity.Right
}
