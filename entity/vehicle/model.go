package vehicle

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/course-navigator/entity"
)

const maxAcceleration = 2.0 // 最大加速度（米/秒²）

// 计算本时刻的速度与移动距离
// v(t)=v(t-1)+acc*dt, ds=v(t-1)*dt+acc*dt*dt/2
func computeVAndDistance(v, a, dt float64) (float64, float64) {
	dv := a * dt
	if v+dv < 0 {
		// 刹车到停止
		return 0, v * v / 2 / -a
	}
	return v + dv, (v + dv/2) * dt
}

// step 独轮车运动学模型
// 功能：按控制指令更新状态估计，加速度受最大加速度与最大减速度限制
// 参数：e-当前状态，cmd-控制指令，maxDeceleration-最大减速度，dt-时间步长
// 返回：新的状态与本步行驶距离
// 算法说明：
// 1. 加速度为使速度在一步内达到期望速度所需的加速度，再做限幅
// 2. 以本步平均速度与指令横摆角速度做匀速圆周外推
func step(e entity.Estimate, cmd entity.ControlCommand, maxDeceleration, dt float64) (entity.Estimate, float64) {
	acc := lo.Clamp((cmd.Velocity-e.V)/dt, -maxDeceleration, maxAcceleration)
	v, ds := computeVAndDistance(e.V, acc, dt)
	moving := e
	moving.V = ds / dt
	moving.YawRate = cmd.YawRate
	next := moving.Extrapolate(e.Time + dt)
	next.V = v
	return next, ds
}
