package catalog

import "sort"

// 文档注释：区域成员交叉校验报告
// 背景：原始参考数据中区域成员既不完整也不互斥，同名城市也会挂在多个区域下；此处只如实报告，不改名、不去重。
// 约束：报告为参考信息，不影响目录构建；字段为空表示该项无异常。
type MembershipReport struct {
	Unassigned      []string            `json:"unassigned"`       // 目录中不属于任何区域的县
	MultiRegion     map[string][]string `json:"multi_region"`     // 县 → 声明其为成员的多个区域
	UnknownMembers  map[string][]string `json:"unknown_members"`  // 区域 → 目录中不存在的成员名
	UnknownRegions  []string            `json:"unknown_regions"`  // 成员表中出现但区域表中不存在的区域名
	DuplicateCities map[string][]string `json:"duplicate_cities"` // 城市名 → 出现的多个区域
}

// Clean：报告中无任何异常项
func (r MembershipReport) Clean() bool {
	return len(r.Unassigned) == 0 && len(r.MultiRegion) == 0 && len(r.UnknownMembers) == 0 &&
		len(r.UnknownRegions) == 0 && len(r.DuplicateCities) == 0
}

// RegionsOf：返回声明该县为成员的全部区域，按成员表顺序
func (c *Catalog) RegionsOf(county string) []string {
	var out []string
	for _, m := range c.members {
		for _, n := range m.Counties {
			if n == county {
				out = append(out, m.Region)
				break
			}
		}
	}
	return out
}

// CheckMembership：生成交叉校验报告
func (c *Catalog) CheckMembership() MembershipReport {
	rep := MembershipReport{
		MultiRegion:     map[string][]string{},
		UnknownMembers:  map[string][]string{},
		DuplicateCities: map[string][]string{},
	}
	owners := make(map[string][]string, len(c.subs))
	for _, m := range c.members {
		if _, ok := c.Region(m.Region); !ok {
			rep.UnknownRegions = append(rep.UnknownRegions, m.Region)
		}
		for _, n := range m.Counties {
			if !c.Has(n) {
				rep.UnknownMembers[m.Region] = append(rep.UnknownMembers[m.Region], n)
				continue
			}
			owners[n] = appendUnique(owners[n], m.Region)
		}
	}
	for _, s := range c.subs {
		switch rs := owners[s.Name]; {
		case len(rs) == 0:
			rep.Unassigned = append(rep.Unassigned, s.Name)
		case len(rs) > 1:
			rep.MultiRegion[s.Name] = rs
		}
	}
	cityRegions := map[string][]string{}
	for _, ct := range c.cities {
		cityRegions[ct.Name] = appendUnique(cityRegions[ct.Name], ct.Region)
	}
	for name, rs := range cityRegions {
		if len(rs) > 1 {
			rep.DuplicateCities[name] = rs
		}
	}
	sort.Strings(rep.UnknownRegions)
	return rep
}

func appendUnique(xs []string, v string) []string {
	for _, x := range xs {
		if x == v {
			return xs
		}
	}
	return append(xs, v)
}
