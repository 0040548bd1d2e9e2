package task

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/course-navigator/entity/vehicle"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary 仿真统计
type Summary struct {
	Job   string
	Steps int32 // 运行的控制周期数

	Vehicles int // 车辆总数
	Arrived  int // 到达终点的车辆数
	Stuck    int // 被阻塞且无法绕行的车辆数

	TravelTime     float64 // 总行驶时间（秒）
	TravelDistance float64 // 总行驶距离（米）
	Stops          int     // 停车线/掉头点停车次数
	Passes         int     // 完成的超车次数

	// 横向偏差（米）
	CrossTrackMean float64
	CrossTrackStd  float64
	CrossTrackP95  float64
	CrossTrackMax  float64
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"job=%s steps=%d vehicles=%d arrived=%d stuck=%d time=%.1fs distance=%.1fm stops=%d passes=%d cte(mean=%.3f std=%.3f p95=%.3f max=%.3f)",
		s.Job, s.Steps, s.Vehicles, s.Arrived, s.Stuck,
		s.TravelTime, s.TravelDistance, s.Stops, s.Passes,
		s.CrossTrackMean, s.CrossTrackStd, s.CrossTrackP95, s.CrossTrackMax,
	)
}

// summarize 汇总车辆管理器快照与全部横向偏差采样
func (ctx *Context) summarize() Summary {
	vs := ctx.vehicleManager.Vehicles()
	g := ctx.vehicleManager.Snapshot()
	s := Summary{
		Job:            ctx.job,
		Steps:          ctx.clock.Elapsed(),
		Vehicles:       len(vs),
		Arrived:        lo.CountBy(vs, func(v *vehicle.Vehicle) bool { return v.Status() == vehicle.Arrived }),
		Stuck:          lo.CountBy(vs, func(v *vehicle.Vehicle) bool { return v.Status() == vehicle.Stuck }),
		TravelTime:     g.TravelTime,
		TravelDistance: g.TravelDistance,
		Stops:          lo.SumBy(vs, func(v *vehicle.Vehicle) int { return v.Stops() }),
		Passes:         lo.SumBy(vs, func(v *vehicle.Vehicle) int { return v.Passes() }),
	}
	cte := ctx.vehicleManager.CrossTrackErrors()
	if len(cte) == 0 {
		return s
	}
	sorted := slices.Clone(cte)
	slices.Sort(sorted)
	if len(sorted) > 1 {
		s.CrossTrackMean, s.CrossTrackStd = stat.MeanStdDev(sorted, nil)
	} else {
		s.CrossTrackMean = sorted[0]
	}
	s.CrossTrackP95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	s.CrossTrackMax = floats.Max(sorted)
	return s
}
