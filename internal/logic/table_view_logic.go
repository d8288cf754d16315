package logic

import (
	"context"
	"errors"

	"gameops/console/common/utils"
	"gameops/console/internal/ctxutil"
	"gameops/console/internal/model"
	"gameops/console/internal/session"
	"gameops/console/internal/svc"
	"gameops/console/internal/table"
	"gameops/console/internal/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SystemViewPermission 维护系统视图需要的按钮权限
const SystemViewPermission = "console:table-view:system"

var (
	ErrPersistenceDisabled = errors.New("未启用数据库，表格视图不可用")
	ErrNotLoggedIn         = errors.New("用户未登录")
	ErrViewNotFound        = errors.New("视图不存在")
	ErrViewForbidden       = errors.New("无权操作此视图")
	ErrDefaultViewDelete   = errors.New("默认视图不能删除")
)

// TableViewLogic 表格视图逻辑
type TableViewLogic struct {
	ctx  context.Context
	sess *session.Session
	db   *gorm.DB
}

// NewTableViewLogic 创建表格视图逻辑
func NewTableViewLogic(c *fiber.Ctx) *TableViewLogic {
	var db *gorm.DB
	if svc.Ctx != nil {
		db = svc.Ctx.DB
	}
	return newTableViewLogic(c.UserContext(), ctxutil.GetSession(c), db)
}

func newTableViewLogic(ctx context.Context, sess *session.Session, db *gorm.DB) *TableViewLogic {
	return &TableViewLogic{ctx: ctx, sess: sess, db: db}
}

// prepare 校验登录与数据库，返回当前上游用户 id
func (l *TableViewLogic) prepare() (int64, *gorm.DB, error) {
	if l.sess == nil || l.sess.UpstreamUserID() == 0 {
		return 0, nil, ErrNotLoggedIn
	}
	if l.db == nil {
		return 0, nil, ErrPersistenceDisabled
	}
	return l.sess.UpstreamUserID(), l.db.WithContext(l.ctx), nil
}

// visible 系统视图与当前用户的视图
func visible(db *gorm.DB, tableKey string, userID int64) *gorm.DB {
	return db.Model(&model.TableView{}).
		Where("table_key = ? AND is_delete = ?", tableKey, false).
		Where("user_id IN ?", []int64{0, userID})
}

// GetViews 获取用户的表格视图列表（包含系统视图和用户视图）
func (l *TableViewLogic) GetViews(tableKey string) (*types.TableViewListResponse, error) {
	userID, db, err := l.prepare()
	if err != nil {
		return nil, err
	}

	var views []model.TableView
	if err := visible(db, tableKey, userID).Order("user_id, sort, id").Find(&views).Error; err != nil {
		return nil, err
	}

	result := &types.TableViewListResponse{Views: make([]types.TableViewInfo, 0, len(views))}
	for i := range views {
		result.Views = append(result.Views, modelToInfo(&views[i]))
	}
	return result, nil
}

// canModify 用户视图只能本人修改，系统视图需要权限
func (l *TableViewLogic) canModify(view *model.TableView, userID int64) bool {
	if view.UserID == 0 {
		return l.sess.HasAuth(SystemViewPermission)
	}
	return view.UserID == userID
}

func (l *TableViewLogic) find(db *gorm.DB, id int64) (*model.TableView, error) {
	var view model.TableView
	err := db.Where("id = ? AND is_delete = ?", id, false).First(&view).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrViewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// SaveView 保存表格视图
func (l *TableViewLogic) SaveView(req *types.SaveTableViewRequest) (*types.TableViewInfo, error) {
	userID, db, err := l.prepare()
	if err != nil {
		return nil, err
	}
	if req.IsSystem && !l.sess.HasAuth(SystemViewPermission) {
		return nil, ErrViewForbidden
	}

	columns, fixed, params, err := encodeView(req)
	if err != nil {
		return nil, err
	}
	storeUserID := userID
	if req.IsSystem {
		storeUserID = 0
	}

	// 更新已有视图
	if req.ID > 0 {
		existing, err := l.find(db, req.ID)
		if err != nil {
			return nil, err
		}
		if !l.canModify(existing, userID) {
			return nil, ErrViewForbidden
		}
		updates := map[string]any{
			"name":          req.Name,
			"user_id":       storeUserID,
			"is_default":    req.IsDefault,
			"column_keys":   columns,
			"column_fixed":  fixed,
			"search_params": params,
			"updated_by":    userID,
		}
		if err := db.Model(existing).Updates(updates).Error; err != nil {
			return nil, err
		}
		existing.Name = req.Name
		existing.UserID = storeUserID
		existing.IsDefault = req.IsDefault
		existing.ColumnKeys = columns
		existing.ColumnFixed = fixed
		existing.SearchParams = params
		info := modelToInfo(existing)
		return &info, nil
	}

	// 新视图排在最后
	var last model.TableView
	var sort int32
	err = db.Where("user_id = ? AND table_key = ? AND is_delete = ?", storeUserID, req.TableKey, false).
		Order("sort DESC").Limit(1).Find(&last).Error
	if err != nil {
		return nil, err
	}
	if last.ID != 0 {
		sort = last.Sort + 1
	}

	view := &model.TableView{
		UserID:       storeUserID,
		TableKey:     req.TableKey,
		Name:         req.Name,
		IsDefault:    req.IsDefault,
		ColumnKeys:   columns,
		ColumnFixed:  fixed,
		SearchParams: params,
		Sort:         sort,
		CreatedBy:    userID,
		UpdatedBy:    userID,
	}
	if err := db.Create(view).Error; err != nil {
		return nil, err
	}
	info := modelToInfo(view)
	return &info, nil
}

// DeleteView 删除表格视图
func (l *TableViewLogic) DeleteView(id int64) error {
	userID, db, err := l.prepare()
	if err != nil {
		return err
	}
	view, err := l.find(db, id)
	if err != nil {
		return err
	}
	if view.IsDefault {
		return ErrDefaultViewDelete
	}
	if !l.canModify(view, userID) {
		return ErrViewForbidden
	}
	return db.Model(view).Update("is_delete", true).Error
}

// SetDefaultView 设置默认视图，id 为 0 时只清除
func (l *TableViewLogic) SetDefaultView(tableKey string, id int64) error {
	userID, db, err := l.prepare()
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := visible(tx, tableKey, userID).Update("is_default", false).Error; err != nil {
			return err
		}
		if id == 0 {
			return nil
		}
		view, err := l.find(tx, id)
		if err != nil {
			return err
		}
		if view.TableKey != tableKey {
			return ErrViewNotFound
		}
		if view.UserID != 0 && view.UserID != userID {
			return ErrViewForbidden
		}
		return tx.Model(view).Update("is_default", true).Error
	})
}

// UpdateViewSort 按给定顺序重排当前用户的视图
func (l *TableViewLogic) UpdateViewSort(tableKey string, viewIDs []int64) error {
	userID, db, err := l.prepare()
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for i, id := range viewIDs {
			err := tx.Model(&model.TableView{}).
				Where("id = ? AND table_key = ? AND user_id = ? AND is_delete = ?", id, tableKey, userID, false).
				Update("sort", int32(i)).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ApplyView 把视图的列勾选与搜索条件应用到会话里的表格并重新拉取
func (l *TableViewLogic) ApplyView(tableKey string, id int64) (*session.TableState, error) {
	userID, db, err := l.prepare()
	if err != nil {
		return nil, err
	}
	view, err := l.find(db, id)
	if err != nil {
		return nil, err
	}
	if view.TableKey != tableKey || (view.UserID != 0 && view.UserID != userID) {
		return nil, ErrViewNotFound
	}
	t, err := l.sess.Table(l.ctx, tableKey)
	if err != nil {
		return nil, err
	}
	info := modelToInfo(view)
	ApplyViewTo(t.Table, info)
	if _, err := t.GetData(l.ctx); err != nil {
		return nil, err
	}
	state := t.State(false)
	return &state, nil
}

// ApplyViewTo 视图列按顺序勾选，其余列保持原顺序追加并取消勾选；搜索条件合并且保留分页
func ApplyViewTo(t *table.Table[table.Record], info types.TableViewInfo) {
	if len(info.Columns) > 0 {
		t.SetColumnChecks(ViewColumnChecks(t.ColumnChecks(), info.Columns))
	}
	if len(info.SearchParams) > 0 {
		t.SafeUpdateSearchParams(info.SearchParams)
	}
}

// ViewColumnChecks 按视图重排列勾选，视图里不存在的列被忽略，合成列始终保留
func ViewColumnChecks(current []table.ColumnCheck, columns []string) []table.ColumnCheck {
	byKey := make(map[string]table.ColumnCheck, len(current))
	for _, ck := range current {
		byKey[ck.Key] = ck
	}
	out := make([]table.ColumnCheck, 0, len(current))
	used := make(map[string]struct{}, len(columns))
	for _, ck := range current {
		if ck.Key == table.SelectionKey || ck.Key == table.ExpandKey {
			out = append(out, ck)
			used[ck.Key] = struct{}{}
		}
	}
	for _, key := range columns {
		ck, ok := byKey[key]
		if _, dup := used[key]; !ok || dup {
			continue
		}
		ck.Checked = true
		out = append(out, ck)
		used[key] = struct{}{}
	}
	for _, ck := range current {
		if _, ok := used[ck.Key]; ok {
			continue
		}
		ck.Checked = false
		out = append(out, ck)
	}
	return out
}

func encodeView(req *types.SaveTableViewRequest) (columns, fixed, params string, err error) {
	if columns, err = utils.MarshalString(req.Columns); err != nil {
		return
	}
	if fixed, err = utils.MarshalString(req.ColumnFixed); err != nil {
		return
	}
	params, err = utils.MarshalString(req.SearchParams)
	return
}

// modelToInfo 模型转换为响应信息
func modelToInfo(v *model.TableView) types.TableViewInfo {
	info := types.TableViewInfo{
		ID:        v.ID,
		TableKey:  v.TableKey,
		Name:      v.Name,
		IsSystem:  v.UserID == 0,
		IsDefault: v.IsDefault,
		Sort:      v.Sort,
		CreatedBy: v.CreatedBy,
		Columns:   []string{},
	}
	if v.ColumnKeys != "" {
		_ = utils.UnmarshalString(v.ColumnKeys, &info.Columns)
	}
	if v.ColumnFixed != "" && v.ColumnFixed != "null" {
		_ = utils.UnmarshalString(v.ColumnFixed, &info.ColumnFixed)
	}
	if v.SearchParams != "" && v.SearchParams != "null" {
		_ = utils.UnmarshalString(v.SearchParams, &info.SearchParams)
	}
	return info
}
