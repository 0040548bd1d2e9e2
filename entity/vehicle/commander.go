package vehicle

import (
	"errors"
	"fmt"
	"math"

	"github.com/tsinghua-fib-lab/course-navigator/entity"
)

// Commander 指挥层
// 功能：将航点路线转换为滚动的指令窗口，按导航器报告的最近到达航点推进
// 说明：窗口末尾不足时重复路线的最后一个航点
type Commander struct {
	route  []entity.Waypoint
	uturn  []bool // uturn[i]表示route[i]到route[i+1]为掉头
	head   int    // 窗口首航点在route中的下标
	replan int32
	order  entity.Order
}

// NewCommander 创建指挥层
// 参数：lm-车道管理器，用于查找航点与判断掉头，ids-航点路线
func NewCommander(lm entity.ILaneManager, ids []entity.WaypointID) (*Commander, error) {
	c := &Commander{}
	if err := c.setRoute(lm, ids); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Commander) setRoute(lm entity.ILaneManager, ids []entity.WaypointID) error {
	if len(ids) == 0 {
		return errors.New("empty route")
	}
	route := make([]entity.Waypoint, 0, len(ids))
	for _, id := range ids {
		w, err := lm.Waypoint(id)
		if err != nil {
			return fmt.Errorf("bad route: %w", err)
		}
		route = append(route, w)
	}
	uturn := make([]bool, len(route))
	polys := lm.Polygons()
	for i := 0; i+1 < len(route); i++ {
		uturn[i] = isUturn(lm, polys, route[i].ID, route[i+1].ID)
	}
	c.route, c.uturn, c.head = route, uturn, 0
	c.fill()
	return nil
}

// isUturn 同一路段内驶向反向车道即为掉头
func isUturn(pops entity.ILaneNetwork, polys entity.PolyList, from, to entity.WaypointID) bool {
	if from.Seg != to.Seg || from.SameLane(to) {
		return false
	}
	i0 := pops.GetWaypointIndex(polys, from)
	i1 := pops.GetWaypointIndex(polys, to)
	if i0 < 0 || i1 < 0 {
		return false
	}
	return !pops.SameDirection(polys[i0], polys[i1], math.Pi/2)
}

// fill 从head开始重建指令窗口
func (c *Commander) fill() {
	last := len(c.route) - 1
	c.order.NextUturn = -1
	c.order.ReplanNum = c.replan
	for i := range c.order.Waypts {
		j := min(c.head+i, last)
		c.order.Waypts[i] = c.route[j]
		if c.order.NextUturn < 0 && j < last && i < entity.NOrderWaypts-1 && c.uturn[j] {
			c.order.NextUturn = i
		}
	}
}

// Order 当前指令窗口，导航器在BeginCycle中可原地推进
func (c *Commander) Order() *entity.Order {
	return &c.order
}

// Sync 按最近到达的航点推进路线并重建窗口
func (c *Commander) Sync(last entity.WaypointID) {
	for j := c.head; j < len(c.route) && j < c.head+entity.NOrderWaypts; j++ {
		if c.route[j].ID == last {
			c.head = j
			break
		}
	}
	c.fill()
}

// Done 是否已到达路线的最后一个航点
func (c *Commander) Done() bool {
	return c.head == len(c.route)-1
}

// Reroute 以新的路线替换剩余路线，重规划计数加一
func (c *Commander) Reroute(lm entity.ILaneManager, ids []entity.WaypointID) error {
	c.replan++
	if err := c.setRoute(lm, ids); err != nil {
		c.replan--
		return err
	}
	return nil
}

// Remaining 剩余的航点数（不含窗口首航点）
func (c *Commander) Remaining() int {
	return len(c.route) - 1 - c.head
}
