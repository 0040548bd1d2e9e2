package course

import (
	"math"

	"github.com/tsinghua-fib-lab/course-navigator/entity"
)

// NewWaypointReached 确认已到达航点id
func (c *Course) NewWaypointReached(id entity.WaypointID) {
	c.waypointChecked = true
	c.nav.LastWaypt = id
	c.obs.Decision("reached waypoint", Fields{"waypt": id})
}

// NoWaypointReached 确认本周期没有到达新的航点
func (c *Course) NoWaypointReached() {
	c.waypointChecked = true
}

// CheckWaypointReached 按下一航点的类型选择到达判定
// 说明：停车位航点用停车位半径，区域边界航点用垂线判定，
// 区域内航点（车道号为0）用区域半径，其余为车道航点
func (c *Course) CheckWaypointReached() bool {
	w1 := c.order.Waypts[1]
	switch {
	case w1.IsSpot:
		return c.SpotWaypointReached()
	case w1.IsPerimeter:
		return c.ZonePerimeterReached()
	case ZoneWaypt(w1):
		return c.ZoneWaypointReached()
	default:
		return c.LaneWaypointReached()
	}
}

// ZoneWaypt 是否为区域内部的航点，区域内航点不属于任何车道
func ZoneWaypt(w entity.Waypoint) bool {
	return w.ID.Lane == 0 && !w.ID.IsNull()
}

// inFrontOf 车辆是否已越过经过航点、垂直于多边形方向的直线
func (c *Course) inFrontOf(w entity.Waypoint, poly entity.Polygon) (bool, float64) {
	pose := entity.Pose{Pos: w.Map, Heading: c.pops.PolyHeading(poly)}
	b := entity.Bearing(pose, c.odom.Pos)
	return math.Abs(b) < halfPi, b
}

// LaneWaypointReached 车道航点是否到达
// 说明：以航点位置和其所在多边形的方向构成位姿，车辆相对该位姿的方位角在90度以内即为到达；
// 停车与掉头航点只由对应的控制器判定，这里永远返回false
func (c *Course) LaneWaypointReached() bool {
	c.waypointChecked = true
	w1 := c.order.Waypts[1]

	if w1.IsPerimeter {
		return c.ZonePerimeterReached()
	}
	if c.SpecialWaypt(1) {
		return false
	}

	i := c.pops.GetWaypointIndex(c.polygons, w1.ID)
	if i < 0 {
		c.obs.Trace("waypoint polygon not found", Fields{"waypt": w1.ID})
		return false
	}
	if ok, b := c.inFrontOf(w1, c.polygons[i]); ok {
		c.nav.LastWaypt = w1.ID
		c.obs.Decision("reached waypoint", Fields{"waypt": w1.ID, "bearing": b})
		return true
	}
	c.obs.Trace("waypoint not reached", Fields{"cur_poly": c.nav.CurPoly, "last_waypt": c.nav.LastWaypt})
	return false
}

// ZonePerimeterReached 区域边界航点是否到达
// 说明：使用距航点最近的多边形方向做垂线判定；附近没有多边形时，前保险杠进入zone_perimeter_radius即为到达
func (c *Course) ZonePerimeterReached() bool {
	c.waypointChecked = true
	w1 := c.order.Waypts[1]

	i := c.pops.GetClosestPoly(c.polygons, w1.Map)
	if i < 0 {
		return c.radiusReached(w1, c.cfg.ZonePerimeterRadius, "perimeter")
	}
	if ok, b := c.inFrontOf(w1, c.polygons[i]); ok {
		c.nav.LastWaypt = w1.ID
		c.obs.Decision("reached perimeter waypoint", Fields{"waypt": w1.ID, "bearing": b})
		return true
	}
	return false
}

// ZoneWaypointReached 区域航点是否到达：前保险杠距航点不超过zone_waypoint_radius
func (c *Course) ZoneWaypointReached() bool {
	c.waypointChecked = true
	return c.radiusReached(c.order.Waypts[1], c.cfg.ZoneWaypointRadius, "zone")
}

// SpotWaypointReached 停车位航点是否到达：前保险杠距航点不超过spot_waypoint_radius
func (c *Course) SpotWaypointReached() bool {
	c.waypointChecked = true
	return c.radiusReached(c.order.Waypts[1], c.cfg.SpotWaypointRadius, "spot")
}

func (c *Course) radiusReached(w entity.Waypoint, radius float64, kind string) bool {
	d := entity.Distance(c.bumper(), w.Map)
	if d <= radius {
		c.nav.LastWaypt = w.ID
		c.obs.Decision("reached "+kind+" waypoint", Fields{"waypt": w.ID, "distance": d})
		return true
	}
	c.obs.Trace("distance to "+kind+" waypoint", Fields{"waypt": w.ID, "distance": d})
	return false
}
