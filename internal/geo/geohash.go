package geo

var base32 = []byte("0123456789bcdefghjkmnpqrstuvwxyz")

// 文档注释：geohash 编码（base32）
// 背景：用作定位结果的缓存键；精度 6 约 1.2km，远小于县的尺度，同一格内的点几乎总属同一县。
func Geohash(pt Point, precision int) string {
	lat := [2]float64{-90, 90}
	lon := [2]float64{-180, 180}
	bits := [5]int{16, 8, 4, 2, 1}
	bit, ch := 0, 0
	even := true
	out := make([]byte, 0, precision)
	for len(out) < precision {
		if even {
			mid := (lon[0] + lon[1]) / 2
			if pt.Lon >= mid {
				ch |= bits[bit]
				lon[0] = mid
			} else {
				lon[1] = mid
			}
		} else {
			mid := (lat[0] + lat[1]) / 2
			if pt.Lat >= mid {
				ch |= bits[bit]
				lat[0] = mid
			} else {
				lat[1] = mid
			}
		}
		even = !even
		if bit < 4 {
			bit++
		} else {
			out = append(out, base32[ch])
			bit, ch = 0, 0
		}
	}
	return string(out)
}
