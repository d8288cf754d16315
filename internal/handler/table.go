package handler

import (
	"errors"

	"gameops/console/common/response"
	"gameops/console/internal/session"
	"gameops/console/internal/table"
	"gameops/console/internal/types"

	"github.com/gofiber/fiber/v2"
)

// tableOf 取路径里的列表页
func tableOf(c *fiber.Ctx) (*session.Table, error) {
	key := c.Params("key")
	if key == "" {
		return nil, session.ErrUnknownTable
	}
	return current(c).Table(c.UserContext(), key)
}

func snapshot(c *fiber.Ctx, t *session.Table) error {
	return response.Success(c, t.State(c.QueryBool("mobile")))
}

// fetched 拉取失败且不是过期响应时返回错误，否则返回快照
func fetched(c *fiber.Ctx, t *session.Table, err error) error {
	if err != nil && !errors.Is(err, table.ErrStaleResponse) {
		return fail(c, err)
	}
	return snapshot(c, t)
}

// TableList 当前用户可见的列表页声明
func TableList(c *fiber.Ctx) error {
	return response.Success(c, current(c).Tables())
}

// TableGet 列表页快照，首次访问时拉取第一页
func TableGet(c *fiber.Ctx) error {
	t, err := tableOf(c)
	if err != nil {
		return fail(c, err)
	}
	return snapshot(c, t)
}

// TableData 按当前条件重新拉取
func TableData(c *fiber.Ctx) error {
	t, err := tableOf(c)
	if err != nil {
		return fail(c, err)
	}
	_, err = t.GetData(c.UserContext())
	return fetched(c, t, err)
}

// TablePage 翻页
func TablePage(c *fiber.Ctx) error {
	var req types.PageRequest
	if err := c.BodyParser(&req); err != nil || req.Page <= 0 {
		return response.Error(c, "参数错误")
	}
	t, err := tableOf(c)
	if err != nil {
		return fail(c, err)
	}
	_, err = t.GetDataByPage(c.UserContext(), req.Page)
	return fetched(c, t, err)
}

// TablePageSize 修改页大小并回到第一页
func TablePageSize(c *fiber.Ctx) error {
	var req types.PageSizeRequest
	if err := c.BodyParser(&req); err != nil || req.PageSize <= 0 {
		return response.Error(c, "参数错误")
	}
	t, err := tableOf(c)
	if err != nil {
		return fail(c, err)
	}
	_, err = t.UpdatePageSize(c.UserContext(), req.PageSize)
	return fetched(c, t, err)
}

// TableSearch 合并搜索条件，fetch 为 true 时从第一页拉取
func TableSearch(c *fiber.Ctx) error {
	var req types.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	t, err := tableOf(c)
	if err != nil {
		return fail(c, err)
	}
	t.UpdateSearchParams(req.Params)
	if !req.Fetch {
		return snapshot(c, t)
	}
	_, err = t.GetDataByPage(c.UserContext(), 1)
	return fetched(c, t, err)
}

// TableSearchReset 恢复初始搜索条件并重新拉取
func TableSearchReset(c *fiber.Ctx) error {
	t, err := tableOf(c)
	if err != nil {
		return fail(c, err)
	}
	t.ResetSearchParams()
	_, err = t.GetData(c.UserContext())
	return fetched(c, t, err)
}

// TableColumns 更新列勾选与顺序
func TableColumns(c *fiber.Ctx) error {
	var req types.ColumnChecksRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	t, err := tableOf(c)
	if err != nil {
		return fail(c, err)
	}
	t.SetColumnChecks(req.Checks)
	return snapshot(c, t)
}

// TableColumnsReload 按当前语言重新生成列
func TableColumnsReload(c *fiber.Ctx) error {
	t, err := tableOf(c)
	if err != nil {
		return fail(c, err)
	}
	t.ReloadColumns()
	return snapshot(c, t)
}

// OperateAdd 打开新增抽屉
func OperateAdd(c *fiber.Ctx) error {
	var req types.AddRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.Error(c, "参数解析失败")
		}
	}
	t, err := tableOf(c)
	if err != nil {
		return fail(c, err)
	}
	var initial *table.Record
	if req.Initial != nil {
		r := table.Record(req.Initial)
		initial = &r
	}
	t.Operate.HandleAdd(initial)
	return response.Success(c, t.Operate.State())
}

// OperateEdit 打开编辑抽屉
func OperateEdit(c *fiber.Ctx) error {
	var req types.EditRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	t, err := tableOf(c)
	if err != nil {
		return fail(c, err)
	}
	var detail *table.Record
	if req.Detail != nil {
		r := table.Record(req.Detail)
		detail = &r
	}
	if err := t.Operate.HandleEdit(req.ID, detail); err != nil {
		return response.Error(c, err.Error())
	}
	return response.Success(c, t.Operate.State())
}

// OperateDrawerClose 关闭抽屉
func OperateDrawerClose(c *fiber.Ctx) error {
	t, err := tableOf(c)
	if err != nil {
		return fail(c, err)
	}
	t.Operate.CloseDrawer()
	return response.Success(c, t.Operate.State())
}

// OperateChecked 更新勾选行
func OperateChecked(c *fiber.Ctx) error {
	var req types.CheckedRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	t, err := tableOf(c)
	if err != nil {
		return fail(c, err)
	}
	t.Operate.SetCheckedRowKeys(req.Keys)
	return response.Success(c, t.Operate.State())
}

// TableDeleteRows 删除行，未传 id 时删除已勾选的行
func TableDeleteRows(c *fiber.Ctx) error {
	var req types.DeleteRowsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.Error(c, "参数解析失败")
		}
	}
	t, err := tableOf(c)
	if err != nil {
		return fail(c, err)
	}
	ids := req.IDs
	if len(ids) == 0 {
		ids = t.Operate.CheckedRowKeys()
	}
	deleted, err := t.Delete(c.UserContext(), ids)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, types.DeleteRowsResponse{Deleted: deleted})
}
