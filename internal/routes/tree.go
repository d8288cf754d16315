package routes

import "fmt"

// BuildTree 按 menuId/parentId 组装扁平菜单
//
// parentId 为 0 或指向不存在的节点时视为根。无法从根到达的节点一定处在环上，
// 返回 ErrCyclicRoute。
func BuildTree(flat []BackendRoute) ([]BackendRoute, error) {
	index := make(map[int64]int, len(flat))
	for i, n := range flat {
		if _, dup := index[n.MenuID]; dup {
			return nil, fmt.Errorf("%w: duplicate menuId %d", ErrCyclicRoute, n.MenuID)
		}
		index[n.MenuID] = i
	}

	children := make(map[int64][]int, len(flat))
	var roots []int
	for i, n := range flat {
		if _, ok := index[n.ParentID]; !ok || n.ParentID == 0 {
			roots = append(roots, i)
			continue
		}
		children[n.ParentID] = append(children[n.ParentID], i)
	}

	type item struct {
		idx   int
		dst   *BackendRoute
		depth int
	}
	out := make([]BackendRoute, len(roots))
	stack := make([]item, 0, len(flat))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, item{idx: roots[i], dst: &out[i], depth: 1})
	}

	visited := 0
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.depth > MaxDepth {
			return nil, fmt.Errorf("%w: menuId %d", ErrRouteTooDeep, flat[it.idx].MenuID)
		}
		visited++
		node := flat[it.idx]
		node.Children = nil
		*it.dst = node

		kids := children[node.MenuID]
		if len(kids) == 0 {
			continue
		}
		it.dst.Children = make([]BackendRoute, len(kids))
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, item{idx: kids[i], dst: &it.dst.Children[i], depth: it.depth + 1})
		}
	}

	if visited != len(flat) {
		return nil, fmt.Errorf("%w: %d of %d menus unreachable from a root", ErrCyclicRoute, len(flat)-visited, len(flat))
	}
	return out, nil
}

// IsFlat 没有任何 children 且存在 parentId 时视为扁平列表
func IsFlat(nodes []BackendRoute) bool {
	hasParent := false
	for _, n := range nodes {
		if len(n.Children) > 0 {
			return false
		}
		if n.ParentID != 0 {
			hasParent = true
		}
	}
	return hasParent
}
