package entity

import (
	"fmt"

	"github.com/samber/lo"
)

// Polygon 车道多边形单元（四边形）
// 角点约定：P1起点左侧，P2终点左侧，P3终点右侧，P4起点右侧
type Polygon struct {
	ID             int32
	P1, P2, P3, P4 Point
	Midpoint       Point
	Heading        float64 // 行驶方向（弧度）

	StartWay WaypointID // 覆盖区间的起始航点
	EndWay   WaypointID // 覆盖区间的终止航点

	IsTransition bool // 是否为路口内的连接多边形
}

func (p Polygon) String() string {
	return fmt.Sprintf("Polygon %d [%v, %v]", p.ID, p.StartWay, p.EndWay)
}

// StartMid 起始边中点
func (p Polygon) StartMid() Point {
	return Midpoint(p.P1, p.P4)
}

// EndMid 终止边中点
func (p Polygon) EndMid() Point {
	return Midpoint(p.P2, p.P3)
}

// Width 多边形宽度（终止边长度）
func (p Polygon) Width() float64 {
	return Distance(p.P2, p.P3)
}

// Corners 按P1-P2-P3-P4顺序返回角点
func (p Polygon) Corners() []Point {
	return []Point{p.P1, p.P2, p.P3, p.P4}
}

// PolyList 有序多边形序列
type PolyList []Polygon

// IDs 返回所有多边形ID
func (l PolyList) IDs() []int32 {
	return lo.Map(l, func(p Polygon, _ int) int32 { return p.ID })
}

// Clone 深拷贝多边形序列
func (l PolyList) Clone() PolyList {
	if l == nil {
		return nil
	}
	out := make(PolyList, len(l))
	copy(out, l)
	return out
}
