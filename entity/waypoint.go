package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// WaypointID 路网中的点标识：(路段, 车道, 车道内点序号)
// 序号为0时表示整条车道，全0表示空ID
type WaypointID struct {
	Seg  int32 `yaml:"seg"`
	Lane int32 `yaml:"lane"`
	Pt   int32 `yaml:"pt"`
}

// NullWaypointID 空ID
var NullWaypointID = WaypointID{}

// NewWaypointID 创建航点ID
func NewWaypointID(seg, lane, pt int32) WaypointID {
	return WaypointID{Seg: seg, Lane: lane, Pt: pt}
}

// ParseWaypointID 解析"seg.lane.pt"格式的航点ID
func ParseWaypointID(s string) (WaypointID, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return NullWaypointID, fmt.Errorf("bad waypoint id %q, want seg.lane.pt", s)
	}
	var v [3]int32
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return NullWaypointID, fmt.Errorf("bad waypoint id %q: %w", s, err)
		}
		v[i] = int32(n)
	}
	return WaypointID{Seg: v[0], Lane: v[1], Pt: v[2]}, nil
}

// IsNull 是否为空ID
func (id WaypointID) IsNull() bool {
	return id == NullWaypointID
}

// SameLane 两个ID是否位于同一条车道（不比较点序号）
func (id WaypointID) SameLane(other WaypointID) bool {
	return id.Seg == other.Seg && id.Lane == other.Lane
}

// LaneID 返回车道ID（点序号置0）
func (id WaypointID) LaneID() WaypointID {
	return WaypointID{Seg: id.Seg, Lane: id.Lane}
}

func (id WaypointID) String() string {
	return fmt.Sprintf("%d.%d.%d", id.Seg, id.Lane, id.Pt)
}

// LaneName 车道名称"seg.lane"
func (id WaypointID) LaneName() string {
	return fmt.Sprintf("%d.%d", id.Seg, id.Lane)
}

// Waypoint 指挥层下发的航点，在一个周期内不可变
type Waypoint struct {
	ID        WaypointID
	Map       Point   // 地图坐标
	LaneWidth float64 // 车道宽度（米）

	IsEntry      bool // 路口/区域入口
	IsExit       bool // 路口/区域出口
	IsGoal       bool // 检查点
	IsLaneChange bool // 需要变道
	IsStop       bool // 停止线
	IsPerimeter  bool // 区域边界点
	IsSpot       bool // 停车位点
}

func (w Waypoint) String() string {
	return fmt.Sprintf(
		"%v (%.3f,%.3f), E%d G%d L%d P%d S%d X%d Z%d",
		w.ID, w.Map.X, w.Map.Y,
		b2i(w.IsEntry), b2i(w.IsGoal), b2i(w.IsLaneChange), b2i(w.IsSpot),
		b2i(w.IsStop), b2i(w.IsExit), b2i(w.IsPerimeter),
	)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Order 指挥层指令：固定长度的前瞻航点窗口
type Order struct {
	Waypts    [NOrderWaypts]Waypoint
	ReplanNum int32 // 重规划计数，单调递增
	NextUturn int   // 掉头航点在窗口中的下标，-1表示没有
}

// IDs 窗口内所有航点的ID
func (o *Order) IDs() [NOrderWaypts]WaypointID {
	var ids [NOrderWaypts]WaypointID
	for i := range o.Waypts {
		ids[i] = o.Waypts[i].ID
	}
	return ids
}

// Advance 丢弃窗口头部航点，末尾航点保持重复
func (o *Order) Advance() {
	copy(o.Waypts[:], o.Waypts[1:])
}
