package table

// Column 表格列声明
type Column struct {
	Key      string `json:"key,omitempty" yaml:"key"`
	Title    string `json:"title" yaml:"title"`
	Type     string `json:"type,omitempty" yaml:"type"` // selection, expand
	Width    int    `json:"width,omitempty" yaml:"width"`
	MinWidth int    `json:"minWidth,omitempty" yaml:"min_width"`
	Fixed    string `json:"fixed,omitempty" yaml:"fixed"` // left, right
	Align    string `json:"align,omitempty" yaml:"align"`
}

const defaultColumnWidth = 100

// CheckKey 列在勾选列表中的 key，无 key 的普通列返回空串
func (c Column) CheckKey() string {
	switch {
	case c.Key != "":
		return c.Key
	case c.Type == "selection":
		return SelectionKey
	case c.Type == "expand":
		return ExpandKey
	}
	return ""
}

// ColumnChecks 生成勾选列表，hidden 中的 key 默认不勾选，合成列始终勾选
func ColumnChecks(cols []Column, hidden []string, selectionTitle, expandTitle string) []ColumnCheck {
	hide := make(map[string]struct{}, len(hidden))
	for _, k := range hidden {
		hide[k] = struct{}{}
	}
	checks := make([]ColumnCheck, 0, len(cols))
	for _, col := range cols {
		switch key := col.CheckKey(); key {
		case "":
		case SelectionKey:
			checks = append(checks, ColumnCheck{Key: key, Title: selectionTitle, Checked: true})
		case ExpandKey:
			checks = append(checks, ColumnCheck{Key: key, Title: expandTitle, Checked: true})
		default:
			_, hidden := hide[key]
			checks = append(checks, ColumnCheck{Key: key, Title: col.Title, Checked: !hidden})
		}
	}
	return checks
}

// VisibleColumns 按勾选顺序返回已勾选的列
func VisibleColumns(cols []Column, checks []ColumnCheck) []Column {
	byKey := make(map[string]Column, len(cols))
	for _, col := range cols {
		if key := col.CheckKey(); key != "" {
			byKey[key] = col
		}
	}
	out := make([]Column, 0, len(checks))
	for _, ck := range checks {
		if !ck.Checked {
			continue
		}
		if col, ok := byKey[ck.Key]; ok {
			out = append(out, col)
		}
	}
	return out
}

// ScrollX 可见数据列宽度之和，每列另加 2
func ScrollX(visible []Column, checks []ColumnCheck) int {
	byKey := make(map[string]Column, len(visible))
	for _, col := range visible {
		byKey[col.Key] = col
	}
	sum := 0
	for _, ck := range checks {
		if !ck.Checked || ck.Key == SelectionKey || ck.Key == ExpandKey {
			continue
		}
		col, ok := byKey[ck.Key]
		if !ok {
			continue
		}
		w := col.Width
		if w == 0 {
			w = col.MinWidth
		}
		if w == 0 {
			w = defaultColumnWidth
		}
		sum += w + 2
	}
	return sum
}
