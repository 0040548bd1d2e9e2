package vehicle

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/course-navigator/course"
	"github.com/tsinghua-fib-lab/course-navigator/entity"
	"github.com/tsinghua-fib-lab/course-navigator/utils/config"
	"github.com/tsinghua-fib-lab/course-navigator/utils/randengine"
)

const (
	perceptionRadius = 80.0 // 局部感知半径（米）
	obstacleRange    = 30.0 // 开始处理前方障碍物的距离（米）
	stopTolerance    = 0.5  // 前保险杠距停止线小于该距离即视为停在线前（米）
	stopWait         = 1.0  // 停止线前的等待时间（秒）
	stoppedSpeed     = 0.1  // 低于该速度视为静止（米/秒）
	crawlSpeed       = 1.0  // 接近停止线时的最低速度（米/秒）
)

// Status 车辆状态
type Status int

const (
	Following Status = iota // 沿规划行驶
	Passing                 // 在相邻车道超车
	Returning               // 超车后返回原车道
	Stuck                   // 无法超车也无法重规划
	Arrived                 // 到达终点
)

func (s Status) String() string {
	switch s {
	case Following:
		return "following"
	case Passing:
		return "passing"
	case Returning:
		return "returning"
	case Stuck:
		return "stuck"
	default:
		return "arrived"
	}
}

// runtime 车辆运行时数据
type runtime struct {
	entity.Estimate
	Status   Status
	Distance float64 // 累计行驶距离
}

// Vehicle 仿真车辆
// 功能：每个控制周期驱动一次导航器，并以运动学模型执行其输出的控制指令
type Vehicle struct {
	ctx    entity.ITaskContext
	m      *Manager
	id     int32
	speed  float64 // 期望巡航速度
	params config.Vehicle

	cmdr      *Commander
	course    *course.Course
	curves    *course.SlowForCurves
	generator *randengine.Engine // 里程计噪声，以ID为seed
	noise     float64

	obstacle    *entity.Waypoint // 阻塞车道的障碍物
	lanesCenter entity.Point     // 最近一次感知的中心
	hasLanes    bool
	waited      float64 // 在停止线前已等待的时间
	stops       int
	passes      int
	crossTrack  []float64

	runtime  runtime
	snapshot runtime
}

// newVehicle 创建仿真车辆
// 参数：ctx-任务上下文，m-车辆管理器，id-车辆ID，agent-车辆配置，seed-随机数种子
// 说明：车辆位于路线首航点，朝向第二个航点
func newVehicle(ctx entity.ITaskContext, m *Manager, id int32, agent config.Agent, seed uint64) (*Vehicle, error) {
	ids := make([]entity.WaypointID, 0, len(agent.Route))
	for _, s := range agent.Route {
		wid, err := entity.ParseWaypointID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, wid)
	}
	lm := ctx.LaneManager()
	cmdr, err := NewCommander(lm, ids)
	if err != nil {
		return nil, fmt.Errorf("vehicle %d: %w", id, err)
	}
	all := ctx.RuntimeConfig().All
	c := course.New(all, lm, course.NewLogObserver(course.Fields{"vehicle": id}))
	v := &Vehicle{
		ctx:        ctx,
		m:          m,
		id:         id,
		speed:      math.Min(agent.Speed, all.Vehicle.MaxSpeed),
		params:     all.Vehicle,
		cmdr:       cmdr,
		course:     c,
		curves:     course.NewSlowForCurves(c, all.Curves),
		generator:  randengine.New(seed),
		noise:      all.Sim.OdometryNoise,
		crossTrack: make([]float64, 0),
	}
	if agent.Blocked != "" {
		bid, err := entity.ParseWaypointID(agent.Blocked)
		if err != nil {
			return nil, err
		}
		w, err := lm.Waypoint(bid)
		if err != nil {
			return nil, fmt.Errorf("vehicle %d: %w", id, err)
		}
		v.obstacle = &w
	}
	o := cmdr.Order()
	w0, w1 := o.Waypts[0], o.Waypts[1]
	heading := math.Atan2(w1.Map.Y-w0.Map.Y, w1.Map.X-w0.Map.X)
	v.runtime.Pose = entity.Pose{Pos: w0.Map, Heading: heading}
	v.runtime.Time = ctx.Clock().T
	if cmdr.Done() {
		v.runtime.Status = Arrived
	}
	v.snapshot = v.runtime
	return v, nil
}

func (v *Vehicle) ID() int32 {
	return v.id
}

// Estimate 上一步结束时的状态
func (v *Vehicle) Estimate() entity.Estimate {
	return v.snapshot.Estimate
}

func (v *Vehicle) Status() Status {
	return v.snapshot.Status
}

// Done 是否已结束（到达终点或无法继续）
func (v *Vehicle) Done() bool {
	return v.snapshot.Status == Arrived || v.snapshot.Status == Stuck
}

// Distance 累计行驶距离
func (v *Vehicle) Distance() float64 {
	return v.snapshot.Distance
}

// NavState 导航器状态
func (v *Vehicle) NavState() entity.NavState {
	return v.course.NavState()
}

// CrossTrack 每一步相对规划中心线的横向偏差
func (v *Vehicle) CrossTrack() []float64 {
	return v.crossTrack
}

// Stops 在停止线与掉头点的停车次数
func (v *Vehicle) Stops() int {
	return v.stops
}

// Passes 完成的超车次数
func (v *Vehicle) Passes() int {
	return v.passes
}

// prepare 准备阶段：发布上一步的运行时数据
func (v *Vehicle) prepare() {
	v.snapshot = v.runtime
}

// update 更新阶段：执行一个完整的控制周期
// 算法说明：
// 1. 感知局部多边形，构造带噪声的里程计位姿，开始周期
// 2. 按状态规划：正常行驶与返回原车道时规划路径，超车时保持超车车道
// 3. 航点到达判定与转向灯
// 4. 依次施加障碍物、停止线、弯道限速，再计算转向，结束周期
// 5. 执行控制指令并记录横向偏差
func (v *Vehicle) update(dt float64) {
	if v.runtime.Status == Arrived || v.runtime.Status == Stuck {
		return
	}
	lm := v.ctx.LaneManager()
	c := v.course
	t := v.ctx.Clock().T

	v.perceive(lm)
	v.runtime.Time = t
	odom := v.runtime.Pose
	odom.Pos = v.generator.Jitter(odom.Pos, v.noise)
	c.BeginCycle(course.Cycle{Order: v.cmdr.Order(), Odom: odom, Estimate: v.runtime.Estimate, Time: t})

	switch v.runtime.Status {
	case Following:
		c.FindTravelLane(false)
	case Returning:
		c.FindTravelLane(true)
		if c.InLane(v.runtime.Pos) {
			log.Infof("vehicle %d back in lane", v.id)
			c.TurnSignalsOff()
			v.runtime.Status = Following
		}
	}

	c.CheckWaypointReached()
	v.signal()

	cmd := entity.ControlCommand{Velocity: v.speed}
	v.avoidObstacle(lm, &cmd)
	v.stopAt(&cmd, dt)
	v.curves.Control(&cmd)
	c.DesiredHeading(&cmd, 0)
	c.EndCycle()
	v.cmdr.Sync(c.NavState().LastWaypt)

	next, ds := step(v.runtime.Estimate, cmd, v.params.MaxDeceleration, dt)
	v.runtime.Estimate = next
	v.runtime.Distance += ds
	v.m.recordRunning(dt, ds)
	v.recordCrossTrack(lm)

	if v.cmdr.Done() && v.runtime.Status != Stuck {
		log.Infof("vehicle %d arrived at %v after %.1f m", v.id, c.NavState().LastWaypt, v.runtime.Distance)
		v.runtime.Status = Arrived
		v.runtime.V = 0
		v.m.recordFinish()
	}
}

// perceive 车辆移动超过感知半径的一半时重新获取局部多边形
func (v *Vehicle) perceive(lm entity.ILaneManager) {
	if v.hasLanes && entity.Distance(v.lanesCenter, v.runtime.Pos) < perceptionRadius/2 {
		return
	}
	v.course.LanesMessage(lm.Nearby(v.runtime.Pos, perceptionRadius))
	v.lanesCenter = v.runtime.Pos
	v.hasLanes = true
}

// signal 按路口与变道方向设置转向灯
func (v *Vehicle) signal() {
	if v.runtime.Status != Following {
		return
	}
	c := v.course
	w := v.cmdr.Order().Waypts
	switch {
	case w[0].IsLaneChange && w[0].IsExit:
		c.SignalForDirection(c.LaneChangeDirection())
	case w[0].IsExit && w[1].IsEntry:
		c.SignalForDirection(c.IntersectionDirection())
	default:
		c.TurnSignalsOff()
	}
}

// avoidObstacle 前方障碍物处理
// 算法说明：
// 1. 正常行驶且障碍物在规划路径前方obstacleRange内：优先切换到超车车道，
// 否则在障碍物前保持最小间距停车，停稳后按反向车道重规划
// 2. 超车中沿原规划越过障碍物一个车长加最小间距后返回原车道
func (v *Vehicle) avoidObstacle(lm entity.ILaneManager, cmd *entity.ControlCommand) {
	if v.obstacle == nil {
		return
	}
	c := v.course
	switch v.runtime.Status {
	case Following:
		if !c.InLane(v.obstacle.Map) {
			return
		}
		d := c.DistanceInPlan(v.runtime.Pose, v.obstacle.Map)
		if d < 0 || d > obstacleRange {
			return
		}
		if c.FindPassingLane() && c.SwitchToPassingLane() {
			lane, _ := c.PassingLane()
			log.Infof("vehicle %d passing obstacle at %v via lane %s", v.id, v.obstacle.ID, lane.LaneName())
			c.SignalPass()
			v.runtime.Status = Passing
			return
		}
		gap := d - v.params.MinForwSep - v.params.FrontBumperPx
		if gap > stopTolerance {
			limit := course.MaxSpeedForSlowDown(0, gap, cmd.Velocity, v.params.MaxDeceleration)
			cmd.Velocity = math.Min(cmd.Velocity, math.Max(limit, crawlSpeed))
			return
		}
		cmd.Velocity = 0
		if v.runtime.V < stoppedSpeed {
			v.replan(lm)
		}
	case Passing:
		d := lm.DistanceAlongLane(c.PassedLane(), v.runtime.Pos, v.obstacle.Map)
		if d < -(v.params.MinForwSep + v.params.Length) {
			log.Infof("vehicle %d passed obstacle at %v, returning", v.id, v.obstacle.ID)
			c.SignalPassReturn()
			c.Reset()
			c.FindTravelLane(true)
			v.passes++
			v.runtime.Status = Returning
		}
	}
}

// replan 道路阻塞且无法超车时，沿左侧反向车道重新规划路线
func (v *Vehicle) replan(lm entity.ILaneManager) {
	c := v.course
	c.TurnSignalsBothOn()
	reverse := c.ReplanRoadblock()
	if reverse.IsNull() {
		log.Warnf("vehicle %d blocked at %v with no way around", v.id, v.obstacle.ID)
		v.runtime.Status = Stuck
		v.m.recordFinish()
		return
	}
	polys := lm.AddLanePolys(lm.Polygons(), nil, reverse)
	i := lm.GetClosestPoly(polys, v.runtime.Pos)
	if i < 0 {
		v.runtime.Status = Stuck
		v.m.recordFinish()
		return
	}
	ids := lo.Uniq(lo.Map(polys[i:], func(p entity.Polygon, _ int) entity.WaypointID { return p.EndWay }))
	if err := v.cmdr.Reroute(lm, ids); err != nil {
		log.Warnf("vehicle %d reroute failed: %v", v.id, err)
		v.runtime.Status = Stuck
		v.m.recordFinish()
		return
	}
	c.SetLastWaypt(ids[0])
	log.Infof("vehicle %d rerouted to lane %s, new waypoints: %v", v.id, reverse.LaneName(), c.HasNewWaypoints())
	v.obstacle = nil
}

// stopAt 停止线与掉头点
// 说明：按最大减速度在前保险杠到达停止点时停车，停稳等待stopWait后确认到达该航点
func (v *Vehicle) stopAt(cmd *entity.ControlCommand, dt float64) {
	c := v.course
	d := math.Min(c.StopWayptDistance(true), c.UturnDistance())
	if d >= mathutil.INF {
		v.waited = 0
		return
	}
	gap := d - v.params.FrontBumperPx
	limit := course.MaxSpeedForSlowDown(0, gap, cmd.Velocity, v.params.MaxDeceleration)
	if gap > stopTolerance {
		cmd.Velocity = math.Min(cmd.Velocity, math.Max(limit, crawlSpeed))
		return
	}
	if !c.SpecialWaypt(1) {
		return
	}
	cmd.Velocity = 0
	if v.runtime.V >= stoppedSpeed {
		return
	}
	v.waited += dt
	if v.waited >= stopWait {
		w1 := v.cmdr.Order().Waypts[1]
		c.NewWaypointReached(w1.ID)
		v.stops++
		v.waited = 0
	}
}

// recordCrossTrack 记录到最近规划多边形中心线的距离
func (v *Vehicle) recordCrossTrack(lm entity.ILaneManager) {
	plan := v.course.Plan()
	i := lm.GetClosestPoly(plan, v.runtime.Pos)
	if i < 0 {
		return
	}
	p := lm.GetClosestPointToLine(plan[i].StartMid(), plan[i].EndMid(), v.runtime.Pos, false)
	v.crossTrack = append(v.crossTrack, entity.Distance(p, v.runtime.Pos))
}
