package input

import (
	"fmt"
	"os"
	"sort"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/course-navigator/entity"
	"github.com/tsinghua-fib-lab/course-navigator/utils/config"
	"gopkg.in/yaml.v2"
)

// WaypointSpec 路网文件中的航点
type WaypointSpec struct {
	Pt         int32   `yaml:"pt"`
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	Stop       bool    `yaml:"stop,omitempty"`
	Goal       bool    `yaml:"goal,omitempty"`
	LaneChange bool    `yaml:"lane_change,omitempty"`
	Perimeter  bool    `yaml:"perimeter,omitempty"`
	Spot       bool    `yaml:"spot,omitempty"`
}

// ExitSpec 车道出口：从本车道的From点连接到目标航点To（seg.lane.pt）
type ExitSpec struct {
	From int32  `yaml:"from"`
	To   string `yaml:"to"`
}

// LaneSpec 路网文件中的车道
type LaneSpec struct {
	ID        int32          `yaml:"id"`
	Width     float64        `yaml:"width"`
	Waypoints []WaypointSpec `yaml:"waypoints"`
	Exits     []ExitSpec     `yaml:"exits,omitempty"`
}

// SegmentSpec 路网文件中的路段
type SegmentSpec struct {
	ID    int32      `yaml:"id"`
	Lanes []LaneSpec `yaml:"lanes"`
}

// Exit 解析后的出口连接
type Exit struct {
	From entity.WaypointID
	To   entity.WaypointID
}

// RoadNetwork 路网描述（路段-车道-航点）
// 功能：描述车道中心线上的航点序列与车道间的出入口连接，供车道多边形构建使用
type RoadNetwork struct {
	Segments []SegmentSpec `yaml:"segments"`

	waypts map[entity.WaypointID]entity.Waypoint
	exits  []Exit
}

// Parse 解析路网数据
// 算法说明：
// 1. 严格解析YAML
// 2. 每条车道内航点按点序号排序
// 3. 建立航点索引，检查重复ID
// 4. 解析出口连接，并据此设置航点的出口/入口标志
func Parse(data []byte) (*RoadNetwork, error) {
	n := &RoadNetwork{}
	if err := yaml.UnmarshalStrict(data, n); err != nil {
		return nil, fmt.Errorf("road network parse err: %w", err)
	}
	if err := n.index(); err != nil {
		return nil, err
	}
	return n, nil
}

// Load 从文件加载路网
func Load(path string) (*RoadNetwork, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("road network load err: %w", err)
	}
	return Parse(file)
}

// Init 根据配置加载路网，失败时panic
func Init(c config.Config) *RoadNetwork {
	if c.Input.Network == "" {
		log.Panic("input.network must be specified")
	}
	n, err := Load(c.Input.Network)
	if err != nil {
		log.Panicf("failed to load road network: %v", err)
	}
	log.Infof("road network: %d segments, %d waypoints, %d exits", len(n.Segments), len(n.waypts), len(n.exits))
	return n
}

func (n *RoadNetwork) index() error {
	n.waypts = make(map[entity.WaypointID]entity.Waypoint)
	n.exits = n.exits[:0]
	for si := range n.Segments {
		seg := &n.Segments[si]
		for li := range seg.Lanes {
			lane := &seg.Lanes[li]
			if lane.ID <= 0 {
				return fmt.Errorf("segment %d: lane id must be positive, got %d", seg.ID, lane.ID)
			}
			sort.Slice(lane.Waypoints, func(i, j int) bool {
				return lane.Waypoints[i].Pt < lane.Waypoints[j].Pt
			})
			for _, w := range lane.Waypoints {
				id := entity.NewWaypointID(seg.ID, lane.ID, w.Pt)
				if _, ok := n.waypts[id]; ok {
					return fmt.Errorf("duplicated waypoint %v", id)
				}
				n.waypts[id] = entity.Waypoint{
					ID:           id,
					Map:          entity.Point{X: w.X, Y: w.Y},
					LaneWidth:    lane.Width,
					IsStop:       w.Stop,
					IsGoal:       w.Goal,
					IsLaneChange: w.LaneChange,
					IsPerimeter:  w.Perimeter,
					IsSpot:       w.Spot,
				}
			}
		}
	}
	for _, seg := range n.Segments {
		for _, lane := range seg.Lanes {
			for _, e := range lane.Exits {
				from := entity.NewWaypointID(seg.ID, lane.ID, e.From)
				to, err := entity.ParseWaypointID(e.To)
				if err != nil {
					return err
				}
				fw, ok := n.waypts[from]
				if !ok {
					return fmt.Errorf("exit from unknown waypoint %v", from)
				}
				tw, ok := n.waypts[to]
				if !ok {
					return fmt.Errorf("exit %v to unknown waypoint %v", from, to)
				}
				fw.IsExit = true
				tw.IsEntry = true
				n.waypts[from] = fw
				n.waypts[to] = tw
				n.exits = append(n.exits, Exit{From: from, To: to})
			}
		}
	}
	return nil
}

// Waypoint 按ID查找航点
func (n *RoadNetwork) Waypoint(id entity.WaypointID) (entity.Waypoint, bool) {
	w, ok := n.waypts[id]
	return w, ok
}

// LaneWaypoints 车道内按点序号排列的全部航点
func (n *RoadNetwork) LaneWaypoints(seg, lane int32) []entity.Waypoint {
	for _, s := range n.Segments {
		if s.ID != seg {
			continue
		}
		for _, l := range s.Lanes {
			if l.ID != lane {
				continue
			}
			return lo.Map(l.Waypoints, func(w WaypointSpec, _ int) entity.Waypoint {
				return n.waypts[entity.NewWaypointID(seg, lane, w.Pt)]
			})
		}
	}
	return nil
}

// Exits 全部出口连接
func (n *RoadNetwork) Exits() []Exit {
	return n.exits
}

// HasExit 是否存在from到to的出口连接
func (n *RoadNetwork) HasExit(from, to entity.WaypointID) bool {
	return lo.ContainsBy(n.exits, func(e Exit) bool { return e.From == from && e.To == to })
}
