package entity

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
)

// Point 地图平面坐标点
type Point = geometry.Point

// Epsilon 浮点数相等判定阈值
const Epsilon = 1e-5

// EqualEps 判断两个浮点数在Epsilon内相等
func EqualEps(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}


// Normalize 将角度归一化到[-π, π)
func Normalize(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// Distance 两点间的平面欧氏距离
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Midpoint 两点中点
func Midpoint(a, b Point) Point {
	return geometry.Blend(a, b, .5)
}

// Pose 平面位姿
type Pose struct {
	Pos     Point
	Heading float64 // 航向角（弧度），x轴正向为0，逆时针为正
}

// NewPose 创建位姿
func NewPose(x, y, heading float64) Pose {
	return Pose{Pos: Point{X: x, Y: y}, Heading: heading}
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", p.Pos.X, p.Pos.Y, p.Heading)
}

// Bearing 目标点相对于位姿朝向的方位角，范围[-π, π)
func Bearing(from Pose, to Point) float64 {
	return Normalize(math.Atan2(to.Y-from.Pos.Y, to.X-from.Pos.X) - from.Heading)
}

// Polar 以车辆为中心的极坐标
type Polar struct {
	Heading float64 // 相对方位角（弧度）
	Range   float64 // 距离（米）
}

// MapXYToPolar 将地图坐标转换为相对位姿的极坐标
func MapXYToPolar(p Point, from Pose) Polar {
	return Polar{Heading: Bearing(from, p), Range: Distance(from.Pos, p)}
}

// PolarToMapXY 将相对位姿的极坐标转换为地图坐标
func PolarToMapXY(p Polar, from Pose) Point {
	a := from.Heading + p.Heading
	return Point{X: from.Pos.X + p.Range*math.Cos(a), Y: from.Pos.Y + p.Range*math.Sin(a)}
}

// Estimate 里程计给出的车辆状态估计
type Estimate struct {
	Pose
	V       float64 // 纵向速度（米/秒）
	YawRate float64 // 横摆角速度（弧度/秒）
	Time    float64 // 估计对应的时间（秒）
}

// FrontAxle 将后轴中心的状态估计平移到前轴中心
func (e Estimate) FrontAxle(wheelbase float64) Estimate {
	f := e
	f.Pos = PolarToMapXY(Polar{Range: wheelbase}, e.Pose)
	return f
}

// Extrapolate 按当前速度与横摆角速度外推到指定时刻
// 功能：匀速、匀角速度的运动学外推，用于弹簧控制律的预测位置
// 参数：t-目标时刻
// 返回：外推后的状态估计
func (e Estimate) Extrapolate(t float64) Estimate {
	dt := t - e.Time
	if dt <= 0 {
		return e
	}
	out := e
	out.Time = t
	if math.Abs(e.YawRate) < Epsilon {
		out.Pos.X += e.V * dt * math.Cos(e.Heading)
		out.Pos.Y += e.V * dt * math.Sin(e.Heading)
		return out
	}
	r := e.V / e.YawRate
	h := e.Heading + e.YawRate*dt
	out.Pos.X += r * (math.Sin(h) - math.Sin(e.Heading))
	out.Pos.Y -= r * (math.Cos(h) - math.Cos(e.Heading))
	out.Heading = Normalize(h)
	return out
}
