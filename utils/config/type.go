package config

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Control 模拟器控制配置
type Control struct {
	Step ControlStep `yaml:"step"`
}

// Input 输入数据配置
type Input struct {
	Network    string  `yaml:"network"`               // 路网文件路径
	PolyLength float64 `yaml:"poly_length,omitempty"` // 车道多边形最大长度（米）
}

// Course 课程规划与转向控制的可调参数
// 说明：未出现的键使用Default()中的默认值
type Course struct {
	LaneChangeSecs      float64 `yaml:"lane_change_secs"`      // 变道时瞄准点的前瞻时间（秒）
	LaneSteerTime       float64 `yaml:"lane_steer_time"`       // 朝多边形转向的前瞻时间（秒）
	HeadingChangeRatio  float64 `yaml:"heading_change_ratio"`  // 航向变化限速系数
	TurningLatency      float64 `yaml:"turning_latency"`       // 转向延迟（秒）
	KError              float64 `yaml:"turning_offset_tune"`   // 横向误差增益
	KTheta              float64 `yaml:"turning_heading_tune"`  // 航向误差增益，0表示取sqrt(k_error/2)
	YawRatio            float64 `yaml:"yaw_ratio"`
	KInt                float64 `yaml:"turning_int_tune"`      // 误差持续增大时的积分放大系数
	MinLaneChangeDist   float64 `yaml:"min_lane_change_dist"`  // 变道最小瞄准距离（米），0表示取最小跟车距离+前保险杠
	MinLaneSteerDist    float64 `yaml:"min_lane_steer_dist"`   // 转向最小前瞻距离（米），0表示取前保险杠
	PlanWayptLimit      int     `yaml:"plan_waypt_limit"`      // 参与规划的航点数，仅用于测试截断规划
	MaxSpeedForSharp    float64 `yaml:"max_speed_for_sharp"`   // 急转弯时的最低限速（米/秒）
	SpringLookahead     float64 `yaml:"spring_lookahead"`      // 弹簧控制律的预测系数
	MaxYawRate          float64 `yaml:"real_max_yaw_rate"`     // 最大横摆角速度，0表示取车辆参数
	ZoneWaypointRadius  float64 `yaml:"zone_waypoint_radius"`  // 区域航点到达半径（米）
	ZonePerimeterRadius float64 `yaml:"zone_perimeter_radius"` // 区域边界点到达半径（米）
	SpotWaypointRadius  float64 `yaml:"spot_waypoint_radius"`  // 停车位航点到达半径（米）
}

// Curves 弯道减速控制器配置
type Curves struct {
	LookaheadDistance float64 `yaml:"lookahead_distance"`                // 前方扫描距离（米）
	MaxDeceleration   float64 `yaml:"max_deceleration"`                  // 最大减速度（米/秒²）
	MinSpeed          float64 `yaml:"min_speed_when_slowing_for_curves"` // 弯道最低速度（米/秒）
	MinCurveLength    float64 `yaml:"min_curve_length"`                  // 判定为弯道的最小长度（米）
}

// Vehicle 车辆物理参数
type Vehicle struct {
	Length          float64 `yaml:"length"`           // 车长（米）
	Width           float64 `yaml:"width"`            // 车宽（米）
	Wheelbase       float64 `yaml:"wheelbase"`        // 轴距（米）
	FrontBumperPx   float64 `yaml:"front_bumper_px"`  // 后轴中心到前保险杠的距离（米）
	MinForwSep      float64 `yaml:"min_forw_sep"`     // 行驶中最小前向间距（米）
	SteerSpeedMin   float64 `yaml:"steer_speed_min"`  // 转向控制律使用的最低速度（米/秒）
	MaxYawRate      float64 `yaml:"max_yaw_rate"`     // 最大横摆角速度（弧度/秒）
	MaxDeceleration float64 `yaml:"max_deceleration"` // 最大减速度（米/秒²）
	MaxSpeed        float64 `yaml:"max_speed"`        // 最大速度（米/秒）
}

// Agent 仿真车辆配置
type Agent struct {
	Route   []string `yaml:"route"`             // 航点序列，格式seg.lane.pt
	Speed   float64  `yaml:"speed"`             // 期望巡航速度（米/秒）
	Blocked string   `yaml:"blocked,omitempty"` // 被障碍物阻塞的航点（可选）
}

// Sim 仿真配置
type Sim struct {
	Seed          uint64  `yaml:"seed"`
	OdometryNoise float64 `yaml:"odometry_noise"` // 里程计位置噪声标准差（米）
	Agents        []Agent `yaml:"agents"`
}

// Config YAML配置文件的根结构
type Config struct {
	Control Control `yaml:"control"` // 模拟过程控制
	Input   Input   `yaml:"input"`   // 输入
	Course  Course  `yaml:"course"`  // 课程规划
	Curves  Curves  `yaml:"curves"`  // 弯道减速
	Vehicle Vehicle `yaml:"vehicle"` // 车辆参数
	Sim     Sim     `yaml:"sim"`     // 仿真车辆
}
