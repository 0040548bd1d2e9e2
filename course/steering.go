package course

import (
	"math"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/course-navigator/entity"
)

// DesiredHeading 计算跟随规划路径的转向与速度
// 参数：cmd-控制指令，速度为期望速度，返回时更新速度与横摆角速度；
// offsetRatio-横向偏移比例，1使车辆左侧贴近车道左边界，0为车道中心，-1为右边界
// 算法说明：
// 1. 期望速度为0时不做处理
// 2. 有规划时：优先使用仍在规划中的瞄准多边形（下游前瞻距离处有更远的多边形时放弃瞄准多边形），
// 否则使用距车辆最近多边形下游至少min_lane_steer_dist处的多边形；瞄准方向为该多边形到下一多边形的方向
// 3. 没有可用多边形时直接朝向下一航点
// 4. 按航向变化限制速度，再由弹簧控制律计算横摆角速度
func (c *Course) DesiredHeading(cmd *entity.ControlCommand, offsetRatio float64) {
	if entity.EqualEps(cmd.Velocity, 0) {
		return
	}

	var aimPolar entity.Polar
	aimNextHeading, aimDistance := 0.0, 0.0
	aimInPlan := false
	aimIndex := -1

	usedVelocity := c.estimate.V
	targetDist := c.cfg.MinLaneSteerDist

	steerByWaypt := func(reason string) {
		c.obs.Warning(reason, nil)
		aimPolar = c.headForWaypt(targetDist)
		aimDistance = aimPolar.Range
		aimNextHeading = entity.Normalize(c.estimate.Heading + aimPolar.Heading)
	}
	inPlan := func(i int) {
		aimIndex = i
		next, cur := c.plan[i+1].Midpoint, c.plan[i].Midpoint
		aimDistance = entity.Distance(next, cur)
		aimNextHeading = math.Atan2(next.Y-cur.Y, next.X-cur.X)
		aimInPlan = true
	}

	if len(c.plan) == 0 {
		steerByWaypt("no lane data available, steer using waypoints.")
	} else {
		aimIndex = c.aim.index(c.pops, c.plan)
		edge := c.pops.AddPolysForWaypts(c.plan, nil, c.order.Waypts[0].ID, c.order.Waypts[1].ID)
		nearby := c.pops.GetClosestPoly(edge, c.estimate.Pos)
		if nearby >= 0 {
			nearby = c.pops.GetPolyIndex(c.plan, edge[nearby].ID)
		} else {
			nearby = c.pops.GetClosestPoly(c.plan, c.estimate.Pos)
		}

		switch {
		case aimIndex >= 0 && aimIndex < len(c.plan)-1:
			if nearby >= 0 {
				i2 := c.pops.IndexOfDownstreamPoly(c.plan, nearby, targetDist)
				if i2 > aimIndex && i2 < len(c.plan)-1 {
					aimIndex = i2
					c.aim = noAim
				}
			}
			inPlan(aimIndex)
			c.obs.Trace("steering down the lane toward polygon", Fields{"poly": c.plan[aimIndex].ID})
		case nearby >= 0:
			c.obs.Trace("nearby polygon", Fields{"poly": c.plan[nearby].ID})
			if i := c.pops.IndexOfDownstreamPoly(c.plan, nearby, targetDist); i >= 0 && i < len(c.plan)-1 {
				inPlan(i)
				c.obs.Trace("steering toward polygon", Fields{"distance": targetDist, "poly": c.plan[i].ID})
			} else {
				steerByWaypt("no polygon far enough away, steer using waypoints")
			}
		default:
			steerByWaypt("no lane data available, steer using waypoints.")
		}
	}

	c.obs.Trace("desired, current positions", Fields{
		"waypt": c.order.Waypts[1].Map, "pose": c.estimate.Pose.String(),
	})

	fullHeadingChange := math.Abs(entity.Normalize(aimNextHeading - c.estimate.Heading))
	maxSpeed := c.MaxSpeedForChangeInHeading(fullHeadingChange, aimDistance, cmd.Velocity, c.cfg.MaxYawRate)
	cmd.Velocity = math.Min(cmd.Velocity, maxSpeed)

	usedVelocity = math.Max(cmd.Velocity, usedVelocity)
	c.obs.Trace("thresholding speed", Fields{"v": usedVelocity})

	if aimInPlan {
		cmd.YawRate = c.YawSpringSystem(aimPolar, aimIndex, aimNextHeading, c.cfg.MaxYawRate, usedVelocity, offsetRatio)
	} else {
		cmd.YawRate = c.YawSpringSystem(aimPolar, -1, aimNextHeading, c.cfg.MaxYawRate, usedVelocity, 0)
	}
	c.obs.Decision("desired_heading", Fields{"cmd": cmd.String()})
}

// headForWaypt 直接朝向下一个可到达的航点
// 说明：下一航点比targetDist更近时，特殊航点保持当前航向，区域边界航点在车辆越过后视为到达，
// 其余航点改为朝向再下一个航点并视为已到达下一航点，避免车辆折返
func (c *Course) headForWaypt(targetDist float64) entity.Polar {
	w1 := c.order.Waypts[1]
	aim := entity.MapXYToPolar(w1.Map, c.estimate.Pose)
	if aim.Range >= targetDist {
		return aim
	}
	switch {
	case c.SpecialWaypt(1):
		c.obs.Trace("waypt[1] is a special way-point, keep current heading", nil)
		aim.Heading = 0
	case w1.IsPerimeter:
		c.obs.Trace("waypt[1] is a perimeter point", nil)
		if math.Abs(entity.Bearing(c.estimate.Pose, w1.Map)) > halfPi {
			c.NewWaypointReached(w1.ID)
		}
	default:
		aim = entity.MapXYToPolar(c.order.Waypts[2].Map, c.estimate.Pose)
		c.obs.Trace("waypt[1] too close, using waypt[2] instead", Fields{"distance": targetDist})
		c.NewWaypointReached(w1.ID)
	}
	return aim
}

// YawSpringSystem 弹簧反馈控制律
// 参数：aim-瞄准点的极坐标，polyIndex-瞄准多边形在规划中的下标（-1表示没有），
// polyHeading-瞄准方向，maxYaw-最大横摆角速度，velocity-当前速度，offsetRatio-横向偏移比例
// 返回：横摆角速度，始终在[-maxYaw, maxYaw]内
// 算法说明：
// 1. 有瞄准多边形时，将前轴位置按速度外推后变换到多边形坐标系，横向偏移为误差（可按offsetRatio偏置，并限制在车道宽度内），
// 航向误差为外推航向与瞄准方向之差；没有瞄准多边形时误差为0，航向误差为瞄准方位角的相反数
// 2. 航向误差超过90度等奇异情况下，按横向误差（为0时按航向误差）的符号输出最大横摆角速度
// 3. 否则 yaw = -k_theta*sin(θ)/cos(θ) - k_error*error/(v*cos(θ))，误差同号且增大时误差项乘以k_int
func (c *Course) YawSpringSystem(aim entity.Polar, polyIndex int, polyHeading, maxYaw, velocity, offsetRatio float64) float64 {
	errorTerm := 0.0
	theta := -aim.Heading
	velocity = math.Max(velocity, c.vehicle.SteerSpeedMin)

	front := c.estimate.FrontAxle(c.vehicle.Wheelbase)
	front.Time = c.time
	predicted := front.Extrapolate(c.time + velocity*c.cfg.SpringLookahead)

	if polyIndex >= 0 && polyIndex < len(c.plan) {
		poly := c.plan[polyIndex]
		rel := toLocal(poly.Midpoint, polyHeading, predicted.Pos)
		width := poly.Width()

		// 正值表示在中心线左侧，需要向右修正
		errorTerm = rel.Y
		if !entity.EqualEps(offsetRatio, 0) {
			halfLaneWidth := entity.Distance(poly.Midpoint, entity.Midpoint(poly.P1, poly.P2))
			laneSpace := halfLaneWidth - c.vehicle.Width/2
			offset := 0.0
			if laneSpace > 0 {
				offset = offsetRatio * laneSpace
			}
			c.obs.Trace("error offset", Fields{"offset": offset, "half_lane_width": halfLaneWidth, "ratio": offsetRatio})
			errorTerm -= offset
		}
		errorTerm = lo.Clamp(errorTerm, -width, width)
		theta = entity.Normalize(predicted.Heading - polyHeading)
	}

	cth := math.Cos(theta)
	vcth := velocity * cth

	if math.Abs(theta) >= halfPi || entity.EqualEps(cth, 0) || entity.EqualEps(vcth, 0) {
		c.obs.Trace("spring system does not apply", Fields{"theta": theta})
		if entity.EqualEps(errorTerm, 0) {
			if theta < 0 {
				return maxYaw
			}
			return -maxYaw
		}
		if errorTerm > 0 {
			return maxYaw
		}
		return -maxYaw
	}

	d2 := -c.cfg.KTheta * math.Sin(theta) / cth
	d1 := -c.cfg.KError * errorTerm / vcth
	if errorTerm*c.lastError > 0 && mathutil.Abs(errorTerm) > mathutil.Abs(c.lastError) {
		d1 *= c.cfg.KInt
	}
	c.lastError = errorTerm

	yaw := d1 + d2
	c.obs.Trace("heading spring system", Fields{"error": errorTerm, "theta": theta, "d1": d1, "d2": d2, "yaw": yaw})
	return lo.Clamp(yaw, -maxYaw, maxYaw)
}
