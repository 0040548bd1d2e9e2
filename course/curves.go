package course

import (
	"math"

	"github.com/tsinghua-fib-lab/course-navigator/entity"
	"github.com/tsinghua-fib-lab/course-navigator/utils/config"
)

// SlowForCurves 弯道减速控制器
// 功能：扫描车辆前方lookahead_distance内的规划多边形，为每段弯道计算通过速度并提前减速
type SlowForCurves struct {
	course *Course
	cfg    config.Curves

	limitingID int32 // 最近一次限速的弯道起始多边形
}

// NewSlowForCurves 创建弯道减速控制器
func NewSlowForCurves(c *Course, cfg config.Curves) *SlowForCurves {
	return &SlowForCurves{course: c, cfg: cfg, limitingID: -1}
}

// Reset 清除限速状态
func (s *SlowForCurves) Reset() {
	s.limitingID = -1
}

// LimitingID 最近一次限速的弯道起始多边形ID，-1表示没有
func (s *SlowForCurves) LimitingID() int32 {
	return s.limitingID
}

// Control 按前方弯道限制速度
// 返回：速度是否被降低
func (s *SlowForCurves) Control(cmd *entity.ControlCommand) bool {
	c := s.course
	if len(c.plan) == 0 || entity.EqualEps(cmd.Velocity, 0) {
		return false
	}
	start := c.pops.GetClosestPoly(c.plan, c.estimate.Pos)
	if start < 0 {
		return false
	}
	stop := c.pops.IndexOfDownstreamPoly(c.plan, start, s.cfg.LookaheadDistance)
	safe := s.MaxSafeSpeed(c.plan, start, stop, cmd.Velocity)
	safe = math.Min(cmd.Velocity, math.Max(safe, s.cfg.MinSpeed))
	if safe < cmd.Velocity {
		c.obs.Decision("slowing for curve", Fields{"poly": s.limitingID, "from": cmd.Velocity, "to": safe})
		cmd.Velocity = safe
		return true
	}
	return false
}

// MaxSafeSpeed 在polys[start..stop]内通过所有弯道的最大安全速度
// 算法说明：
// 1. 对每个起始多边形j，向下游累计至少min_curve_length得到弯道终点k
// 2. 弯道通过速度由j、k之间的航向变化按MaxSpeedForChangeInHeading计算
// 3. 当前速度需保证在到达j之前以max_deceleration减速到弯道通过速度
// 4. 取所有弯道的最小值，不超过max
func (s *SlowForCurves) MaxSafeSpeed(polys entity.PolyList, start, stop int, max float64) float64 {
	if start < 0 || stop >= len(polys) || start > stop {
		return max
	}
	c := s.course
	speed := max
	dist := 0.0
	for j := start; j < stop; j++ {
		if j > start {
			dist += entity.Distance(polys[j-1].Midpoint, polys[j].Midpoint)
		}
		arc, k := 0.0, j
		for k < stop && arc < s.cfg.MinCurveLength {
			arc += entity.Distance(polys[k].Midpoint, polys[k+1].Midpoint)
			k++
		}
		if arc < s.cfg.MinCurveLength {
			break
		}
		dheading := math.Abs(entity.Normalize(polys[k].Heading - polys[j].Heading))
		curve := c.MaxSpeedForChangeInHeading(dheading, arc, max, c.cfg.MaxYawRate)
		if v := MaxSpeedForSlowDown(curve, dist, max, s.cfg.MaxDeceleration); v < speed {
			speed = v
			s.limitingID = polys[j].ID
		}
	}
	return speed
}
