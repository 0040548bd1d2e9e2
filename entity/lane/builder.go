package lane

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/course-navigator/entity"
)

// newPoly 沿线段a->b生成一个宽度为width、方向为h的四边形
// 说明：角点顺序为起点左、终点左、终点右、起点右
func newPoly(a, b entity.Point, h, width float64, start, end entity.WaypointID, transition bool) entity.Polygon {
	// 左侧单位法向量乘以半宽
	n := entity.Point{X: -math.Sin(h) * width / 2, Y: math.Cos(h) * width / 2}
	return entity.Polygon{
		ID:           -1,
		P1:           entity.Point{X: a.X + n.X, Y: a.Y + n.Y},
		P2:           entity.Point{X: b.X + n.X, Y: b.Y + n.Y},
		P3:           entity.Point{X: b.X - n.X, Y: b.Y - n.Y},
		P4:           entity.Point{X: a.X - n.X, Y: a.Y - n.Y},
		Midpoint:     entity.Midpoint(a, b),
		Heading:      h,
		StartWay:     start,
		EndWay:       end,
		IsTransition: transition,
	}
}

// pieces 将折线切分为长度不超过maxLength的多边形
// 参数：line-折线，start/end-多边形覆盖的起止航点
// 算法说明：每段折线的长度与方向取自折线的累计长度与分段方向，再按maxLength等分
func pieces(line []geometry.Point, width, maxLength float64, start, end entity.WaypointID, transition bool) entity.PolyList {
	polys := make(entity.PolyList, 0)
	if len(line) < 2 {
		return polys
	}
	lengths := geometry.GetPolylineLengths2D(line)
	directions := geometry.GetPolylineDirections(line)
	for i := 1; i < len(line); i++ {
		a, b := line[i-1], line[i]
		h := directions[i-1].Direction
		k := int(math.Max(1, math.Ceil((lengths[i]-lengths[i-1])/maxLength)))
		for j := 0; j < k; j++ {
			pa := geometry.Blend(a, b, float64(j)/float64(k))
			pb := geometry.Blend(a, b, float64(j+1)/float64(k))
			polys = append(polys, newPoly(pa, pb, h, width, start, end, transition))
		}
	}
	return polys
}

// centerLine 车道航点构成的中心线
func centerLine(ws []entity.Waypoint) []geometry.Point {
	return lo.Map(ws, func(w entity.Waypoint, _ int) geometry.Point { return w.Map })
}

// headingAt 中心线在第i个点处的行驶方向，末点沿用最后一段的方向
func headingAt(directions []geometry.PolylineDirection, i int) float64 {
	if len(directions) == 0 {
		return 0
	}
	return directions[min(i, len(directions)-1)].Direction
}

// laneHeading 车道在第i个航点处的行驶方向
func laneHeading(ws []entity.Waypoint, i int) float64 {
	if len(ws) < 2 {
		return 0
	}
	return headingAt(geometry.GetPolylineDirections(centerLine(ws)), i)
}

// buildLane 生成一条车道的多边形
// 算法说明：
// 1. 相邻航点之间按maxLength切分，多边形覆盖区间为(前一航点, 后一航点)
// 2. 最后一个航点之后追加一个终止多边形，起止航点均为最后一个航点
func buildLane(ws []entity.Waypoint, width, maxLength float64) entity.PolyList {
	if len(ws) < 2 {
		return entity.PolyList{}
	}
	line := centerLine(ws)
	directions := geometry.GetPolylineDirections(line)
	polys := make(entity.PolyList, 0, len(ws)*2)
	for i := 1; i < len(ws); i++ {
		polys = append(polys, pieces(line[i-1:i+1], width, maxLength, ws[i-1].ID, ws[i].ID, false)...)
	}
	last := ws[len(ws)-1]
	h := headingAt(directions, len(ws)-1)
	end := entity.Point{X: last.Map.X + maxLength*math.Cos(h), Y: last.Map.Y + maxLength*math.Sin(h)}
	polys = append(polys, newPoly(last.Map, end, h, width, last.ID, last.ID, false))
	return polys
}

// buildTransition 生成出口到入口的路口连接多边形
// 算法说明：以出口、入口处的车道方向为切线构造三次贝塞尔曲线，按maxLength采样后切分
func buildTransition(from, to entity.Waypoint, fromHeading, toHeading, maxLength float64) entity.PolyList {
	d := entity.Distance(from.Map, to.Map)
	if d < entity.Epsilon {
		return entity.PolyList{}
	}
	c1 := entity.Point{X: from.Map.X + d/3*math.Cos(fromHeading), Y: from.Map.Y + d/3*math.Sin(fromHeading)}
	c2 := entity.Point{X: to.Map.X - d/3*math.Cos(toHeading), Y: to.Map.Y - d/3*math.Sin(toHeading)}
	n := int(math.Max(1, math.Ceil(d/maxLength)))
	line := make([]geometry.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		line = append(line, bezier(from.Map, c1, c2, to.Map, t))
	}
	width := math.Min(from.LaneWidth, to.LaneWidth)
	return pieces(line, width, maxLength, from.ID, to.ID, true)
}

func bezier(p0, p1, p2, p3 entity.Point, t float64) entity.Point {
	a := geometry.Blend(p0, p1, t)
	b := geometry.Blend(p1, p2, t)
	c := geometry.Blend(p2, p3, t)
	return geometry.Blend(geometry.Blend(a, b, t), geometry.Blend(b, c, t), t)
}
