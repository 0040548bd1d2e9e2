package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v2"
)

// orderWaypts 指令航点窗口长度，与entity.NOrderWaypts一致
const orderWaypts = 7

// RuntimeConfig 运行时配置
// 功能：存储仿真运行时的配置信息
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
}

// NewRuntimeConfig 根据配置初始化运行时配置
func NewRuntimeConfig(config Config) *RuntimeConfig {
	rc := &RuntimeConfig{}

	rc.All = config
	rc.C = config.Control

	return rc
}

// DefaultVehicle 默认车辆参数
func DefaultVehicle() Vehicle {
	return Vehicle{
		Length:          4.8,
		Width:           2.0,
		Wheelbase:       2.85,
		FrontBumperPx:   3.6,
		MinForwSep:      10,
		SteerSpeedMin:   1.0,
		MaxYawRate:      0.6,
		MaxDeceleration: 4.0,
		MaxSpeed:        15,
	}
}

// DefaultCourse 默认课程规划参数
// 说明：KTheta、MinLaneChangeDist、MinLaneSteerDist、MaxYawRate依赖其他参数，由Normalize补全
func DefaultCourse() Course {
	return Course{
		LaneChangeSecs:      2.0,
		LaneSteerTime:       2.0,
		HeadingChangeRatio:  0.75,
		TurningLatency:      1.0,
		KError:              0.1,
		YawRatio:            0.75,
		KInt:                1.5,
		PlanWayptLimit:      orderWaypts,
		MaxSpeedForSharp:    3.0,
		SpringLookahead:     0.0,
		ZoneWaypointRadius:  1.0,
		ZonePerimeterRadius: 2.0,
		SpotWaypointRadius:  0.5,
	}
}

// DefaultCurves 默认弯道减速参数
func DefaultCurves() Curves {
	return Curves{
		LookaheadDistance: 50,
		MaxDeceleration:   1.0,
		MinSpeed:          3.0,
		MinCurveLength:    5.0,
	}
}

// Default 返回填充了全部默认值的配置
func Default() Config {
	c := Config{
		Control: Control{Step: ControlStep{Start: 0, Total: 3000, Interval: 0.1}},
		Input:   Input{PolyLength: 2.0},
		Course:  DefaultCourse(),
		Curves:  DefaultCurves(),
		Vehicle: DefaultVehicle(),
	}
	c.Normalize()
	return c
}

// Normalize 补全依赖其他参数的默认值并修正越界参数
// 算法说明：
// 1. k_theta未设置时取sqrt(k_error/2)
// 2. 最小变道距离默认为最小前向间距+前保险杠，最小转向距离默认为前保险杠
// 3. plan_waypt_limit越界时恢复为窗口长度
func (c *Config) Normalize() {
	co := &c.Course
	if co.KTheta <= 0 {
		co.KTheta = math.Sqrt(co.KError / 2)
	}
	if co.MinLaneChangeDist <= 0 {
		co.MinLaneChangeDist = c.Vehicle.MinForwSep + c.Vehicle.FrontBumperPx
	}
	if co.MinLaneSteerDist <= 0 {
		co.MinLaneSteerDist = c.Vehicle.FrontBumperPx
	}
	if co.PlanWayptLimit < 2 || co.PlanWayptLimit > orderWaypts {
		co.PlanWayptLimit = orderWaypts
	}
	if co.MaxYawRate <= 0 {
		co.MaxYawRate = c.Vehicle.MaxYawRate
	}
	if c.Input.PolyLength <= 0 {
		c.Input.PolyLength = 2.0
	}
}

// Parse 从YAML数据解析配置，未出现的键保留默认值
func Parse(data []byte) (Config, error) {
	c := Default()
	// 依赖项需要在用户值覆盖后重新推导
	c.Course.KTheta = 0
	c.Course.MinLaneChangeDist = 0
	c.Course.MinLaneSteerDist = 0
	c.Course.MaxYawRate = 0
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("config parse err: %w", err)
	}
	c.Normalize()
	return c, nil
}

// Load 从文件加载配置
func Load(path string) (Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config file load err: %w", err)
	}
	return Parse(file)
}
