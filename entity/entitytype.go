package entity

import "fmt"

// 方位常量
const (
	LEFT  = 0 // 左侧
	RIGHT = 1 // 右侧
)

// NOrderWaypts 指令中前瞻航点窗口的长度
const NOrderWaypts = 7

// Direction 路口通过方向/变道方向
type Direction int

const (
	Right    Direction = -1 // 右转
	Straight Direction = 0  // 直行
	Left     Direction = 1  // 左转
)

func (d Direction) String() string {
	switch d {
	case Right:
		return "right"
	case Left:
		return "left"
	default:
		return "straight"
	}
}

// ControlCommand 下发给执行层的控制指令
// 功能：每个控制周期的唯一输出，包含期望纵向速度与横摆角速度
type ControlCommand struct {
	Velocity float64 // 期望速度（米/秒）
	YawRate  float64 // 期望横摆角速度（弧度/秒），左转为正
}

func (c ControlCommand) String() string {
	return fmt.Sprintf("ControlCommand{v=%.3f, yaw=%.3f}", c.Velocity, c.YawRate)
}

// NavState 导航器对外发布的状态
// 功能：记录最近到达的航点、当前所在多边形与转向灯，供指挥层与执行层读取
type NavState struct {
	LastWaypt   WaypointID // 最近一次确认到达的航点
	CurPoly     int32      // 当前所在多边形ID，-1表示不在路网内
	SignalLeft  bool       // 左转向灯
	SignalRight bool       // 右转向灯
}
