package entity

// ILaneNetwork 车道网络几何查询接口
// 功能：课程规划核心所需的全部多边形几何查询，均为同步、无状态操作
// 说明：下标均相对于传入的多边形序列，未找到时返回-1
type ILaneNetwork interface {
	// 查询

	GetContainingPoly(polys PolyList, p Point) int // 第一个包含该点的多边形
	GetClosestPoly(polys PolyList, p Point) int    // 包含该点或中点距其最近的多边形
	GetPolyIndex(polys PolyList, id int32) int     // 按多边形ID查找
	GetWaypointIndex(polys PolyList, id WaypointID) int
	// 从start开始沿序列累计中点距离，返回第一个累计距离不小于distance的多边形，不足时返回最后一个
	IndexOfDownstreamPoly(polys PolyList, start int, distance float64) int
	DistanceAlongLane(polys PolyList, from, to Point) float64
	GetReverseLane(polys PolyList, p Point) WaypointID // 位置左侧的反向车道，没有时返回空ID

	// 几何谓词

	PolyHeading(p Polygon) float64
	LeftOfPoly(p, ref Polygon) bool                        // p是否在ref左侧
	SameDirection(a, b Polygon, tolerance float64) bool    // 航向差是否小于tolerance
	GetPolyEdgeMidpoint(p Polygon) Point                   // 终止边中点
	GetClosestPointToLine(a, b, p Point, segment bool) Point // 直线/线段ab上距p最近的点

	// 收集（追加到to并返回）

	AddPolysForWaypts(from, to PolyList, id0, id1 WaypointID) PolyList
	AddLanePolys(from, to PolyList, lane WaypointID) PolyList
	AddReverseLanePolys(from, to PolyList, lane WaypointID) PolyList
	CollectPolys(from, to PolyList, start int) PolyList
}
