package entity

// ILaneManager 车道多边形管理器
// 功能：在几何查询之外提供按ID访问与局部感知
type ILaneManager interface {
	ILaneNetwork

	Polygons() PolyList
	Get(id int32) (Polygon, error)
	Waypoint(id WaypointID) (Waypoint, error)
	Nearby(center Point, radius float64) PolyList // 中点在半径内的多边形
}

// IVehicleManager 仿真车辆管理器
type IVehicleManager interface {
	Prepare()
	Update(dt float64)
	Finished() bool             // 所有车辆是否都已结束
	CrossTrackErrors() []float64 // 全部车辆的横向偏差采样
}
