package vehicle

import (
	"fmt"
	"sync"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/course-navigator/entity"
	"github.com/tsinghua-fib-lab/course-navigator/utils/config"
)

// GlobalRuntime 全局运行时数据结构
// 功能：管理全局运行时数据，包括结束的车辆数、总行驶时间、总行驶距离
type GlobalRuntime struct {
	NumFinished    int32   // 已结束的车辆
	TravelTime     float64 // 总行驶时间
	TravelDistance float64 // 总行驶距离
}

// Manager 车辆管理器
// 功能：管理所有仿真车辆，提供创建、查找、初始化、更新等功能
// 说明：每辆车拥有独立的导航器，更新阶段并行执行
type Manager struct {
	ctx entity.ITaskContext

	data     map[int32]*Vehicle
	vehicles []*Vehicle

	snapshot, runtime GlobalRuntime
	runtimeMtx        sync.Mutex
}

// NewManager 创建车辆管理器实例
func NewManager(ctx entity.ITaskContext) *Manager {
	return &Manager{
		ctx:      ctx,
		data:     make(map[int32]*Vehicle),
		vehicles: make([]*Vehicle, 0),
	}
}

// Init 初始化所有车辆
// 功能：根据仿真配置创建车辆，车辆ID为配置中的序号
// 参数：sim-仿真配置
// 返回：配置错误（路线格式错误或航点不存在）
// 说明：使用并行处理提高初始化效率
func (m *Manager) Init(sim config.Sim) error {
	type result struct {
		v   *Vehicle
		err error
	}
	ids := lo.Range(len(sim.Agents))
	results := parallel.GoMap(ids, func(i int) result {
		v, err := newVehicle(m.ctx, m, int32(i), sim.Agents[i], sim.Seed+uint64(i))
		return result{v, err}
	})
	for _, r := range results {
		if r.err != nil {
			return r.err
		}
	}
	m.vehicles = lo.Map(results, func(r result, _ int) *Vehicle { return r.v })
	m.data = lo.SliceToMap(m.vehicles, func(v *Vehicle) (int32, *Vehicle) {
		return v.id, v
	})
	m.runtime = GlobalRuntime{NumFinished: int32(lo.CountBy(m.vehicles, func(v *Vehicle) bool { return v.Done() }))}
	m.snapshot = m.runtime
	log.Infof("Vehicle: %v", len(m.vehicles))
	return nil
}

// Get 根据ID获取车辆
func (m *Manager) Get(id int32) (*Vehicle, error) {
	if v, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in vehicle data", id)
	} else {
		return v, nil
	}
}

// Vehicles 所有车辆，按ID排序
func (m *Manager) Vehicles() []*Vehicle {
	return m.vehicles
}

// 准备阶段：snapshot更新
func (m *Manager) Prepare() {
	parallel.GoFor(m.vehicles, func(v *Vehicle) { v.prepare() })
	m.snapshot = m.runtime
	log.Debug("VehicleManager: prepare done")
}

// 更新阶段
func (m *Manager) Update(dt float64) {
	parallel.GoFor(m.vehicles, func(v *Vehicle) { v.update(dt) })
}

// Finished 所有车辆是否都已结束
func (m *Manager) Finished() bool {
	return lo.EveryBy(m.vehicles, func(v *Vehicle) bool {
		return v.runtime.Status == Arrived || v.runtime.Status == Stuck
	})
}

// CrossTrackErrors 全部车辆的横向偏差采样
func (m *Manager) CrossTrackErrors() []float64 {
	return lo.FlatMap(m.vehicles, func(v *Vehicle, _ int) []float64 { return v.crossTrack })
}

// Snapshot 上一步结束时的全局运行时数据
func (m *Manager) Snapshot() GlobalRuntime {
	return m.snapshot
}

// recordRunning 记录在路上的车辆
func (m *Manager) recordRunning(dt float64, ds float64) {
	m.runtimeMtx.Lock()
	defer m.runtimeMtx.Unlock()
	m.runtime.TravelTime += dt
	m.runtime.TravelDistance += ds
}

// recordFinish 记录车辆结束
func (m *Manager) recordFinish() {
	m.runtimeMtx.Lock()
	defer m.runtimeMtx.Unlock()
	m.runtime.NumFinished++
}
