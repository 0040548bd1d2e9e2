package lane

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/course-navigator/entity"
)

// PolyOps 车道多边形几何查询
// 功能：实现entity.ILaneNetwork，所有操作均为无状态的同步查询
type PolyOps struct{}

var _ entity.ILaneNetwork = PolyOps{}

func toOrb(p entity.Point) orb.Point {
	return orb.Point{p.X, p.Y}
}

func toR2(p entity.Point) r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

func fromR2(p r2.Point) entity.Point {
	return entity.Point{X: p.X, Y: p.Y}
}

// ring 多边形的闭合外环
func ring(p entity.Polygon) orb.Ring {
	return orb.Ring{toOrb(p.P1), toOrb(p.P2), toOrb(p.P3), toOrb(p.P4), toOrb(p.P1)}
}

// Contains 点是否在多边形内（含边界）
func Contains(p entity.Polygon, pt entity.Point) bool {
	r := ring(p)
	op := toOrb(pt)
	if !r.Bound().Contains(op) {
		return false
	}
	return planar.PolygonContains(orb.Polygon{r}, op)
}

func (PolyOps) GetContainingPoly(polys entity.PolyList, p entity.Point) int {
	_, i, ok := lo.FindIndexOf(polys, func(poly entity.Polygon) bool {
		return Contains(poly, p)
	})
	if !ok {
		return -1
	}
	return i
}

// GetClosestPoly 优先返回包含该点的多边形，否则返回中点距离最近的多边形
func (o PolyOps) GetClosestPoly(polys entity.PolyList, p entity.Point) int {
	if i := o.GetContainingPoly(polys, p); i >= 0 {
		return i
	}
	best, bestDist := -1, math.Inf(1)
	for i, poly := range polys {
		if d := entity.Distance(poly.Midpoint, p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func (PolyOps) GetPolyIndex(polys entity.PolyList, id int32) int {
	_, i, ok := lo.FindIndexOf(polys, func(poly entity.Polygon) bool { return poly.ID == id })
	if !ok {
		return -1
	}
	return i
}

// GetWaypointIndex 航点所在的多边形：以该航点为起点的第一个车道多边形
func (PolyOps) GetWaypointIndex(polys entity.PolyList, id entity.WaypointID) int {
	_, i, ok := lo.FindIndexOf(polys, func(poly entity.Polygon) bool {
		return !poly.IsTransition && poly.StartWay == id
	})
	if !ok {
		return -1
	}
	return i
}

func (PolyOps) IndexOfDownstreamPoly(polys entity.PolyList, start int, distance float64) int {
	if start < 0 || start >= len(polys) {
		return -1
	}
	acc := 0.0
	for i := start; i < len(polys)-1; i++ {
		if acc >= distance {
			return i
		}
		acc += entity.Distance(polys[i].Midpoint, polys[i+1].Midpoint)
	}
	return len(polys) - 1
}

// along 点相对多边形中点沿多边形航向的投影距离
func along(poly entity.Polygon, p entity.Point) float64 {
	h := r2.Point{X: math.Cos(poly.Heading), Y: math.Sin(poly.Heading)}
	return toR2(p).Sub(toR2(poly.Midpoint)).Dot(h)
}

// DistanceAlongLane 沿多边形序列的行驶距离，to在from上游时为负
// 算法说明：
// 1. 分别定位from、to所在（或最近）的多边形
// 2. 距离 = 多边形中点链长 - from在起始多边形内的投影 + to在终止多边形内的投影
// 3. 任一点无法定位时退化为欧氏距离
func (o PolyOps) DistanceAlongLane(polys entity.PolyList, from, to entity.Point) float64 {
	i0 := o.GetClosestPoly(polys, from)
	i1 := o.GetClosestPoly(polys, to)
	if i0 < 0 || i1 < 0 {
		return entity.Distance(from, to)
	}
	if i1 < i0 {
		return -forward(polys, i1, i0, to, from)
	}
	return forward(polys, i0, i1, from, to)
}

func forward(polys entity.PolyList, i0, i1 int, from, to entity.Point) float64 {
	d := along(polys[i1], to) - along(polys[i0], from)
	for i := i0; i < i1; i++ {
		d += entity.Distance(polys[i].Midpoint, polys[i+1].Midpoint)
	}
	return d
}

// GetReverseLane 位置左侧、同一路段内方向相反的最近车道
func (o PolyOps) GetReverseLane(polys entity.PolyList, p entity.Point) entity.WaypointID {
	idx := o.GetClosestPoly(polys, p)
	if idx < 0 {
		return entity.NullWaypointID
	}
	cur := polys[idx]
	result, bestDist := entity.NullWaypointID, math.Inf(1)
	for _, poly := range polys {
		if poly.IsTransition ||
			poly.StartWay.Seg != cur.StartWay.Seg ||
			poly.StartWay.SameLane(cur.StartWay) ||
			o.SameDirection(poly, cur, math.Pi/2) ||
			!o.LeftOfPoly(poly, cur) {
			continue
		}
		if d := entity.Distance(poly.Midpoint, p); d < bestDist {
			result, bestDist = poly.StartWay.LaneID(), d
		}
	}
	return result
}

func (PolyOps) PolyHeading(p entity.Polygon) float64 {
	return p.Heading
}

// LeftOfPoly p的中点是否位于ref航向线的左侧
func (PolyOps) LeftOfPoly(p, ref entity.Polygon) bool {
	h := r2.Point{X: math.Cos(ref.Heading), Y: math.Sin(ref.Heading)}
	return h.Cross(toR2(p.Midpoint).Sub(toR2(ref.Midpoint))) > 0
}

func (PolyOps) SameDirection(a, b entity.Polygon, tolerance float64) bool {
	return math.Abs(entity.Normalize(a.Heading-b.Heading)) < tolerance
}

func (PolyOps) GetPolyEdgeMidpoint(p entity.Polygon) entity.Point {
	return p.EndMid()
}

// GetClosestPointToLine 直线（或线段）ab上距p最近的点
func (PolyOps) GetClosestPointToLine(a, b, p entity.Point, segment bool) entity.Point {
	ra, rb := toR2(a), toR2(b)
	ab := rb.Sub(ra)
	n2 := ab.Dot(ab)
	if n2 < entity.Epsilon*entity.Epsilon {
		return a
	}
	t := toR2(p).Sub(ra).Dot(ab) / n2
	if segment {
		t = lo.Clamp(t, 0, 1)
	}
	out := fromR2(ra.Add(ab.Mul(t)))
	out.Z = a.Z
	return out
}

// AddPolysForWaypts 收集从id0到id1的多边形以及id1所在的多边形，已在to中的多边形不重复添加
// 算法说明：
// 1. id0==id1：仅添加该航点所在的多边形
// 2. 同一车道且id0在前：添加点序号区间内的车道多边形
// 3. 否则：添加id0出口到id1入口的路口连接多边形
func (o PolyOps) AddPolysForWaypts(from, to entity.PolyList, id0, id1 entity.WaypointID) entity.PolyList {
	has := lo.SliceToMap(to, func(p entity.Polygon) (int32, struct{}) { return p.ID, struct{}{} })
	add := func(p entity.Polygon) {
		if _, ok := has[p.ID]; !ok {
			to = append(to, p)
			has[p.ID] = struct{}{}
		}
	}
	if id0 != id1 {
		if id0.SameLane(id1) && id0.Pt < id1.Pt {
			for _, p := range from {
				if !p.IsTransition && p.StartWay.SameLane(id0) &&
					p.StartWay.Pt >= id0.Pt && p.EndWay.Pt <= id1.Pt &&
					p.StartWay.Pt < p.EndWay.Pt {
					add(p)
				}
			}
		} else {
			for _, p := range from {
				if p.IsTransition && p.StartWay == id0 && p.EndWay == id1 {
					add(p)
				}
			}
		}
	}
	if i := o.GetWaypointIndex(from, id1); i >= 0 {
		add(from[i])
	}
	return to
}

// AddLanePolys 按顺序添加车道的全部车道多边形
func (PolyOps) AddLanePolys(from, to entity.PolyList, lane entity.WaypointID) entity.PolyList {
	for _, p := range from {
		if !p.IsTransition && p.StartWay.SameLane(lane) {
			to = append(to, p)
		}
	}
	return to
}

// AddReverseLanePolys 逆序添加车道的全部车道多边形，并将每个多边形翻转为反向行驶
func (PolyOps) AddReverseLanePolys(from, to entity.PolyList, lane entity.WaypointID) entity.PolyList {
	for i := len(from) - 1; i >= 0; i-- {
		if p := from[i]; !p.IsTransition && p.StartWay.SameLane(lane) {
			to = append(to, Reverse(p))
		}
	}
	return to
}

// Reverse 翻转多边形的行驶方向，ID不变
func Reverse(p entity.Polygon) entity.Polygon {
	r := p
	r.P1, r.P2, r.P3, r.P4 = p.P3, p.P4, p.P1, p.P2
	r.Heading = entity.Normalize(p.Heading + math.Pi)
	r.StartWay, r.EndWay = p.EndWay, p.StartWay
	return r
}

func (PolyOps) CollectPolys(from, to entity.PolyList, start int) entity.PolyList {
	if start < 0 || start >= len(from) {
		return to
	}
	return append(to, from[start:]...)
}
