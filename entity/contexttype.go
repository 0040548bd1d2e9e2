package entity

import (
	"github.com/tsinghua-fib-lab/course-navigator/clock"
	"github.com/tsinghua-fib-lab/course-navigator/utils/config"
)

// ITaskContext 仿真任务上下文
type ITaskContext interface {
	Clock() *clock.Clock
	LaneManager() ILaneManager
	VehicleManager() IVehicleManager
	RuntimeConfig() *config.RuntimeConfig
}
