package course

import (
	"math"

	"github.com/tsinghua-fib-lab/course-navigator/entity"
)

// MaxSpeedForSlowDown 在distance内以不超过maxDeceleration的减速度减速到finalSpeed时，当前允许的最大速度
// 算法说明：由Vf^2 = Vi^2 + 2*a*x反解Vi，不超过max；无法在该距离内完成时返回0
func MaxSpeedForSlowDown(finalSpeed, distance, max, maxDeceleration float64) float64 {
	vf2 := finalSpeed * finalSpeed
	tax := 2 * -maxDeceleration * distance
	if tax > vf2 {
		return 0
	}
	return math.Min(max, math.Sqrt(vf2-tax))
}

// MaxSpeedForChangeInHeading 在distance内航向变化dheading且不超过最大横摆角速度时允许的最大速度
// 说明：航向变化越大速度越低，但不低于max_speed_for_sharp，避免为转弯完全停车
func (c *Course) MaxSpeedForChangeInHeading(dheading, distance, max, maxYawRate float64) float64 {
	if entity.EqualEps(dheading, 0) {
		return max
	}
	speed := math.Min(max, math.Max(c.cfg.MaxSpeedForSharp, math.Abs(c.cfg.HeadingChangeRatio*(maxYawRate/dheading))))
	c.obs.Trace("slow for heading", Fields{
		"distance": distance, "dheading": dheading, "max_yaw_rate": maxYawRate, "max": max, "final": speed,
	})
	return speed
}
