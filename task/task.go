package task

import (
	"github.com/tsinghua-fib-lab/course-navigator/clock"
	"github.com/tsinghua-fib-lab/course-navigator/entity"
	"github.com/tsinghua-fib-lab/course-navigator/entity/lane"
	"github.com/tsinghua-fib-lab/course-navigator/entity/vehicle"
	"github.com/tsinghua-fib-lab/course-navigator/utils/config"
	"github.com/tsinghua-fib-lab/course-navigator/utils/input"
)

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态，替代原来的全局变量
// 说明：管理时钟、车道快照、车辆与配置
type Context struct {
	// 任务名
	job string

	// 时钟
	clock *clock.Clock

	// 路网输入
	network *input.RoadNetwork
	// Lane管理器
	laneManager *lane.Manager
	// Vehicle管理器
	vehicleManager *vehicle.Manager

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
}

// NewContext 创建新的仿真任务上下文
// 功能：加载路网并创建各类管理器，真正的初始化在Init中完成
// 参数：
//   - job: 任务名称
//   - c: 配置对象
//
// 返回：Context实例
// 说明：路网文件不存在或格式错误时panic
func NewContext(job string, c config.Config) *Context {
	ctx := &Context{job: job}
	ctx.clock = clock.New(c.Control.Step)
	ctx.network = input.Init(c)
	ctx.runtimeConfig = config.NewRuntimeConfig(c)

	ctx.laneManager = lane.NewManager(c.Input.PolyLength)
	ctx.vehicleManager = vehicle.NewManager(ctx)
	return ctx
}

func (ctx *Context) Job() string {
	return ctx.job
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) LaneManager() entity.ILaneManager {
	return ctx.laneManager
}

func (ctx *Context) VehicleManager() entity.IVehicleManager {
	return ctx.vehicleManager
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// Init 初始化时钟、车道多边形与车辆
// 说明：车辆路线引用不存在的航点时panic
func (ctx *Context) Init() {
	ctx.clock.Init()

	ctx.laneManager.Init(ctx.network) // 先完成lane的所有初始化
	log.Infof("Polygon: %v", len(ctx.laneManager.Polygons()))

	// 完成地图构建后，开始构建vehicle
	if err := ctx.vehicleManager.Init(ctx.runtimeConfig.All.Sim); err != nil {
		log.Panicf("failed to init vehicles: %v", err)
	}
}
