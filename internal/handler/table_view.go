package handler

import (
	"strconv"

	"gameops/console/common/response"
	"gameops/console/internal/logic"
	"gameops/console/internal/types"

	"github.com/gofiber/fiber/v2"
)

// TableViewGet 获取表格视图列表
func TableViewGet(c *fiber.Ctx) error {
	tableKey := c.Params("tableKey")
	if tableKey == "" {
		return response.Error(c, "表格标识不能为空")
	}

	result, err := logic.NewTableViewLogic(c).GetViews(tableKey)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, result)
}

// TableViewSave 保存表格视图
func TableViewSave(c *fiber.Ctx) error {
	var req types.SaveTableViewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}

	if req.TableKey == "" || req.Name == "" {
		return response.Error(c, "参数不完整")
	}

	result, err := logic.NewTableViewLogic(c).SaveView(&req)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, result)
}

// TableViewDelete 删除表格视图
func TableViewDelete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return response.Error(c, "参数错误")
	}

	if err := logic.NewTableViewLogic(c).DeleteView(id); err != nil {
		return fail(c, err)
	}

	return response.Success(c, nil)
}

// TableViewSetDefault 设置默认视图，id 为 0 时清除
func TableViewSetDefault(c *fiber.Ctx) error {
	tableKey := c.Params("tableKey")
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if tableKey == "" || err != nil || id < 0 {
		return response.Error(c, "参数错误")
	}

	if err := logic.NewTableViewLogic(c).SetDefaultView(tableKey, id); err != nil {
		return fail(c, err)
	}

	return response.Success(c, nil)
}

// TableViewUpdateSort 更新视图排序
func TableViewUpdateSort(c *fiber.Ctx) error {
	tableKey := c.Params("tableKey")
	var req types.UpdateViewSortRequest
	if err := c.BodyParser(&req); err != nil || tableKey == "" {
		return response.Error(c, "参数错误")
	}

	if err := logic.NewTableViewLogic(c).UpdateViewSort(tableKey, req.ViewIDs); err != nil {
		return fail(c, err)
	}

	return response.Success(c, nil)
}

// TableViewApply 应用视图到列表页并重新拉取
func TableViewApply(c *fiber.Ctx) error {
	tableKey := c.Params("tableKey")
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if tableKey == "" || err != nil || id <= 0 {
		return response.Error(c, "参数错误")
	}

	state, err := logic.NewTableViewLogic(c).ApplyView(tableKey, id)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, state)
}

// TableViewSaveSystem 保存系统视图，所有用户可见
func TableViewSaveSystem(c *fiber.Ctx) error {
	var req types.SaveTableViewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}

	if req.TableKey == "" || req.Name == "" {
		return response.Error(c, "参数不完整")
	}
	req.IsSystem = true

	result, err := logic.NewTableViewLogic(c).SaveView(&req)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, result)
}
