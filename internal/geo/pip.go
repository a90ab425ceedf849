package geo

// 文档注释：点入多边形判定（Even-Odd 射线法）
// 背景：点击地图或按坐标定位县时，对包围盒候选执行精确命中判定。
// 约束：输入为经纬度坐标（WGS84）；边界上的点可能落在任一侧，调用方不应依赖边界判定结果。
func PointInRing(pt Point, ring Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	x := pt.Lon
	y := pt.Lat
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].Lon, ring[i].Lat
		xj, yj := ring[j].Lon, ring[j].Lat
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}
