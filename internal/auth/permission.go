package auth

import (
	"gameops/console/common/utils"

	"github.com/duke-git/lancet/v2/slice"
)

// AllPermission 拥有全部按钮权限的标识
const AllPermission = "*:*:*"

// HasAuth 判断权限集合是否满足任一 code
//
// codes 为空时视为无需权限。
func HasAuth(permissions []string, codes ...string) bool {
	if len(codes) == 0 {
		return true
	}
	if slice.Contain(permissions, AllPermission) {
		return true
	}
	for _, perm := range permissions {
		for _, code := range codes {
			if perm == code || matchWildcard(perm, code) {
				return true
			}
		}
	}
	return false
}

// HasRole 判断是否拥有任一角色
func HasRole(roles []string, codes ...string) bool {
	return utils.SliceContainsAny(roles, codes)
}

// matchWildcard 通配符匹配
// 支持 * 匹配任意字符，? 匹配单个字符
// 如: game:* 匹配 game:add, game:edit
// 如: game:*:view 匹配 game:server:view
func matchWildcard(pattern, target string) bool {
	if pattern == "*" {
		return true
	}

	pLen, tLen := len(pattern), len(target)
	pIdx, tIdx := 0, 0
	starIdx, matchIdx := -1, 0

	for tIdx < tLen {
		if pIdx < pLen && (pattern[pIdx] == target[tIdx] || pattern[pIdx] == '?') {
			pIdx++
			tIdx++
		} else if pIdx < pLen && pattern[pIdx] == '*' {
			starIdx = pIdx
			matchIdx = tIdx
			pIdx++
		} else if starIdx != -1 {
			pIdx = starIdx + 1
			matchIdx++
			tIdx = matchIdx
		} else {
			return false
		}
	}

	for pIdx < pLen && pattern[pIdx] == '*' {
		pIdx++
	}

	return pIdx == pLen
}
