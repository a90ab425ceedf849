// 包 catalog：县、区域、区域成员与城市四类静态参考数据；启动时一次性构建并校验，之后只读共享
package catalog

import (
	"errors"

	"county-map/internal/geo"
)

var (
	ErrEmpty         = errors.New("catalog: no subdivisions")
	ErrEmptyName     = errors.New("catalog: empty name")
	ErrTooFewPoints  = errors.New("catalog: boundary has fewer than 3 points")
	ErrDuplicateName = errors.New("catalog: duplicate name")
)

// Subdivision：可单独选中与着色的县
// 约束：Name 在目录内唯一，按大小写与空白敏感的精确匹配查找
type Subdivision struct {
	Name     string
	Boundary geo.Ring
}

// Region：县的粗粒度分组，仅用于上下文叠加层，不参与选择
// 约束：Outline 为近似轮廓，不保证覆盖全部成员县
type Region struct {
	Name    string
	Color   string
	Outline geo.Ring
}

// Membership：某区域声明的成员县名；仅作参考，既不要求完整也不要求互斥
type Membership struct {
	Region   string   `json:"region"`
	Counties []string `json:"counties"`
}

// City：城市标记点，原样保留参考数据（同名城市可出现在多个区域）
type City struct {
	Name        string    `json:"name"`
	Point       geo.Point `json:"point"`
	Region      string    `json:"region"`
	RegionColor string    `json:"regionColor"`
}

// Source：构建目录的原始输入，来源可为内嵌表、GeoJSON 文件或数据库
type Source struct {
	Subdivisions []Subdivision
	Regions      []Region
	Members      []Membership
	Cities       []City
}
