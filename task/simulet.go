package task

import "flag"

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 功能：在每个控制周期开始时进行准备工作
// 算法说明：
// 1. 更新时钟：增加内部步数并计算当前时间
// 2. 心跳日志：定期输出系统状态信息
// 3. 车辆管理器：将上一周期的运行时数据写入快照
func (ctx *Context) prepare() {
	ctx.clock.Next()

	if *heartBeatInterval > 0 && ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		s := ctx.vehicleManager.Snapshot()
		log.Infof(
			"STEP: %d(%v) finished: %d/%d",
			ctx.clock.InternalStep, ctx.clock,
			s.NumFinished, len(ctx.vehicleManager.Vehicles()),
		)
	}

	ctx.vehicleManager.Prepare()
}

// update 更新阶段，每步执行一次
// 说明：所有车辆并行执行一个控制周期
func (ctx *Context) update() {
	ctx.vehicleManager.Update(ctx.clock.DT)
}

// Run 运行
// 功能：初始化后逐周期推进，直到所有车辆结束或到达结束步
// 返回：仿真统计
func (ctx *Context) Run() Summary {
	// 初始化
	ctx.Init()
	for !ctx.vehicleManager.Finished() {
		if ctx.clock.InternalStep+1 >= ctx.clock.END_STEP {
			log.Warnf("reach end step %d before all vehicles finished", ctx.clock.END_STEP)
			break
		}
		ctx.prepare()
		ctx.update()
		log.Debugf("step %d: update complete", ctx.clock.InternalStep)
	}
	// 最后一个周期的结果写入快照
	ctx.vehicleManager.Prepare()
	s := ctx.summarize()
	log.Infof("engine complete: %v", s)
	return s
}
