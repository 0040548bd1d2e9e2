package course

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/tsinghua-fib-lab/course-navigator/entity"
)

// spotPair 窗口中第i、i+1个航点是否为同一停车位的入口（点1）与车位点（点2）
func spotPair(w []entity.Waypoint, i int) bool {
	return w[i].IsSpot && w[i+1].IsSpot && w[i].ID.Pt == 1 && w[i+1].ID.Pt == 2
}

// SpotAhead 窗口中是否有停车位
func (c *Course) SpotAhead() bool {
	w := c.order.Waypts[:]
	for i := 0; i < len(w)-1; i++ {
		if spotPair(w, i) {
			return true
		}
	}
	return false
}

// CurrSpot 首航点是否为停车位航点
func (c *Course) CurrSpot() bool {
	return c.order.Waypts[0].IsSpot
}

// SpotPoints 当前指令窗口中停车位周围的障碍点
func (c *Course) SpotPoints() []entity.Point {
	return CalculateSpotPoints(c.order.Waypts[:])
}

// CalculateSpotPoints 计算停车位周围的障碍点
// 算法说明：以车位入口为原点、指向车位点的方向为x轴，车位长度为d，车道宽度为w，
// 依次生成车位两侧、车位末端外2米处的9个点
func CalculateSpotPoints(waypts []entity.Waypoint) []entity.Point {
	points := make([]entity.Point, 0)
	for i := 0; i < len(waypts)-1; i++ {
		if !spotPair(waypts, i) {
			continue
		}
		a, b := waypts[i], waypts[i+1]
		h := math.Atan2(b.Map.Y-a.Map.Y, b.Map.X-a.Map.X)
		d := entity.Distance(a.Map, b.Map)
		w := a.LaneWidth
		local := []r2.Point{
			{X: 0, Y: w / 2},
			{X: d, Y: w / 2},
			{X: d + 2, Y: w},
			{X: d + 2, Y: w / 2},
			{X: d + 2, Y: 0},
			{X: d + 2, Y: -w / 2},
			{X: d + 2, Y: -w},
			{X: d, Y: -w / 2},
			{X: 0, Y: -w / 2},
		}
		for _, p := range local {
			points = append(points, toMap(a.Map, h, p))
		}
	}
	return points
}

// toMap 将以origin为原点、heading为x轴的局部坐标转换为地图坐标
func toMap(origin entity.Point, heading float64, p r2.Point) entity.Point {
	u := r2.Point{X: math.Cos(heading), Y: math.Sin(heading)}
	m := r2.Point{X: origin.X, Y: origin.Y}.Add(u.Mul(p.X)).Add(u.Ortho().Mul(p.Y))
	return entity.Point{X: m.X, Y: m.Y}
}

// toLocal 将地图坐标转换为以origin为原点、heading为x轴的局部坐标
func toLocal(origin entity.Point, heading float64, p entity.Point) r2.Point {
	u := r2.Point{X: math.Cos(heading), Y: math.Sin(heading)}
	d := r2.Point{X: p.X - origin.X, Y: p.Y - origin.Y}
	return r2.Point{X: d.Dot(u), Y: u.Cross(d)}
}
