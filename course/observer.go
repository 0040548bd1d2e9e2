package course

import (
	"fmt"
	"strings"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/course-navigator/entity"
)

// Fields 观测事件的附加字段
type Fields = logrus.Fields

// Observer 课程规划的观测者
// 功能：在每个决策之后被调用，记录规划、到达判定、超车与转向等信息
// 说明：规划逻辑本身不直接写日志，便于独立测试
type Observer interface {
	PolyList(label string, polys entity.PolyList) // 多边形序列
	Decision(event string, fields Fields)         // 规划决策
	Trace(event string, fields Fields)            // 控制律细节
	Warning(event string, fields Fields)          // 降级运行的情况
}

// NopObserver 丢弃所有事件
type NopObserver struct{}

func (NopObserver) PolyList(string, entity.PolyList) {}
func (NopObserver) Decision(string, Fields)          {}
func (NopObserver) Trace(string, Fields)             {}
func (NopObserver) Warning(string, Fields)           {}

// LogObserver 将事件转发到logrus
type LogObserver struct {
	entry *logrus.Entry
}

// NewLogObserver 创建日志观测者
// 参数：fields-附加到每条日志上的字段（例如车辆ID），可为nil
func NewLogObserver(fields Fields) *LogObserver {
	return &LogObserver{entry: log.WithFields(fields)}
}

func (o *LogObserver) PolyList(label string, polys entity.PolyList) {
	if !o.entry.Logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	if len(polys) == 0 {
		o.entry.Debugf("%s no polygons at all", label)
		return
	}
	for _, run := range PolygonRuns(polys) {
		o.entry.Debugf("%s %s", label, run)
	}
}

func (o *LogObserver) Decision(event string, fields Fields) {
	o.entry.WithFields(fields).Debug(event)
}

func (o *LogObserver) Trace(event string, fields Fields) {
	o.entry.WithFields(fields).Trace(event)
}

func (o *LogObserver) Warning(event string, fields Fields) {
	o.entry.WithFields(fields).Warn(event)
}

// PolygonRuns 将多边形ID序列压缩为连续区间的描述
// 说明：相邻ID相差1（递增或递减）视为同一区间
func PolygonRuns(polys entity.PolyList) []string {
	runs := make([]string, 0)
	for i := 0; i < len(polys); i++ {
		start := i
		for i+1 < len(polys) && mathutil.Abs(polys[i+1].ID-polys[i].ID) == 1 {
			i++
		}
		if start == i {
			runs = append(runs, fmt.Sprintf("polygon at %d", polys[i].ID))
		} else {
			runs = append(runs, fmt.Sprintf("polygons from %d to %d", polys[start].ID, polys[i].ID))
		}
	}
	return runs
}

// RecordObserver 记录所有事件，供调用方检查
type RecordObserver struct {
	Events   []string
	Warnings []string
}

func (r *RecordObserver) PolyList(label string, polys entity.PolyList) {
	r.Events = append(r.Events, label+": "+strings.Join(PolygonRuns(polys), ", "))
}

func (r *RecordObserver) Decision(event string, _ Fields) {
	r.Events = append(r.Events, event)
}

func (r *RecordObserver) Trace(string, Fields) {}

func (r *RecordObserver) Warning(event string, _ Fields) {
	r.Warnings = append(r.Warnings, event)
}
