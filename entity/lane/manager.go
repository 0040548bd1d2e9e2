package lane

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/course-navigator/entity"
	"github.com/tsinghua-fib-lab/course-navigator/utils/input"
)

type laneRef struct {
	seg, lane int32
	width     float64
}

// Manager 车道多边形管理器
// 功能：由路网生成全部车道多边形并提供按ID查找、局部感知查询等功能
type Manager struct {
	PolyOps

	network    *input.RoadNetwork
	polyLength float64

	polygons entity.PolyList
	data     map[int32]int
}

// NewManager 创建车道多边形管理器
// 参数：polyLength-车道多边形最大长度（米）
func NewManager(polyLength float64) *Manager {
	return &Manager{
		polyLength: polyLength,
		polygons:   make(entity.PolyList, 0),
		data:       make(map[int32]int),
	}
}

// Init 由路网生成车道多边形
// 算法说明：
// 1. 按车道并行生成车道多边形
// 2. 按出口连接并行生成路口连接多边形
// 3. 依次拼接后按顺序分配多边形ID，同一车道的多边形ID连续
func (m *Manager) Init(network *input.RoadNetwork) {
	m.network = network
	refs := make([]laneRef, 0)
	for _, seg := range network.Segments {
		for _, l := range seg.Lanes {
			refs = append(refs, laneRef{seg: seg.ID, lane: l.ID, width: l.Width})
		}
	}
	lanes := parallel.GoMap(refs, func(r laneRef) entity.PolyList {
		return buildLane(network.LaneWaypoints(r.seg, r.lane), r.width, m.polyLength)
	})
	transitions := parallel.GoMap(network.Exits(), func(e input.Exit) entity.PolyList {
		return m.buildExit(e)
	})
	m.polygons = lo.Flatten(append(lanes, transitions...))
	for i := range m.polygons {
		m.polygons[i].ID = int32(i)
	}
	m.data = lo.SliceToMap(m.polygons, func(p entity.Polygon) (int32, int) {
		return p.ID, int(p.ID)
	})
	log.Infof("built %d polygons for %d lanes and %d exits", len(m.polygons), len(refs), len(network.Exits()))
}

func (m *Manager) buildExit(e input.Exit) entity.PolyList {
	from := m.network.LaneWaypoints(e.From.Seg, e.From.Lane)
	to := m.network.LaneWaypoints(e.To.Seg, e.To.Lane)
	fi := lo.IndexOf(lo.Map(from, func(w entity.Waypoint, _ int) entity.WaypointID { return w.ID }), e.From)
	ti := lo.IndexOf(lo.Map(to, func(w entity.Waypoint, _ int) entity.WaypointID { return w.ID }), e.To)
	if fi < 0 || ti < 0 {
		log.Panicf("exit %v -> %v refers to unknown waypoint", e.From, e.To)
	}
	return buildTransition(from[fi], to[ti], laneHeading(from, fi), laneHeading(to, ti), m.polyLength)
}

// Polygons 全部车道多边形的副本
func (m *Manager) Polygons() entity.PolyList {
	return m.polygons.Clone()
}

// Get 根据ID获取多边形
func (m *Manager) Get(id int32) (entity.Polygon, error) {
	if i, ok := m.data[id]; !ok {
		return entity.Polygon{}, fmt.Errorf("no id %d in polygon data", id)
	} else {
		return m.polygons[i], nil
	}
}

// Waypoint 根据ID获取航点
func (m *Manager) Waypoint(id entity.WaypointID) (entity.Waypoint, error) {
	if w, ok := m.network.Waypoint(id); !ok {
		return entity.Waypoint{}, fmt.Errorf("no waypoint %v in road network", id)
	} else {
		return w, nil
	}
}

// Network 路网
func (m *Manager) Network() *input.RoadNetwork {
	return m.network
}

// Nearby 模拟局部感知：返回中点在center半径radius内的多边形，保持原有顺序
func (m *Manager) Nearby(center entity.Point, radius float64) entity.PolyList {
	return lo.Filter(m.polygons, func(p entity.Polygon, _ int) bool {
		return entity.Distance(p.Midpoint, center) <= radius
	})
}

// LaneLength 车道中心线长度（按航点折线计算）
func (m *Manager) LaneLength(seg, lane int32) float64 {
	ws := m.network.LaneWaypoints(seg, lane)
	if len(ws) == 0 {
		return 0
	}
	lengths := geometry.GetPolylineLengths2D(centerLine(ws))
	return lengths[len(lengths)-1]
}
