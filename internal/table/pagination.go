package table

// DefaultPageSizes 分页大小候选
var DefaultPageSizes = []int{10, 15, 20, 25, 30}

// Pagination 分页状态
type Pagination struct {
	Page           int    `json:"page"`
	PageSize       int    `json:"pageSize"`
	ItemCount      int    `json:"itemCount"`
	ShowSizePicker bool   `json:"showSizePicker"`
	PageSizes      []int  `json:"pageSizes"`
	PageSlot       int    `json:"pageSlot,omitempty"`
	Prefix         string `json:"prefix,omitempty"`
}

// Mobile 生成适配移动端的分页，移动端页码槽为 3，否则为 9；前缀仅在非移动端且开启 showTotal 时保留
func (p Pagination) Mobile(isMobile, showTotal bool) Pagination {
	out := p
	out.PageSizes = append([]int(nil), p.PageSizes...)
	if isMobile {
		out.PageSlot = 3
	} else {
		out.PageSlot = 9
	}
	if isMobile || !showTotal {
		out.Prefix = ""
	}
	return out
}
