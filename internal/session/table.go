package session

import (
	"context"
	"errors"
	"fmt"

	"gameops/console/common/utils"
	"gameops/console/internal/config"
	"gameops/console/internal/operate"
	"gameops/console/internal/table"
	"gameops/console/internal/upstream"
)

var (
	ErrNoRowsSelected    = errors.New("session: no rows selected")
	ErrDeleteUnsupported = errors.New("session: table has no delete endpoint")
)

// Table 声明式列表页在一个会话里的状态：表格控制器加操作助手
type Table struct {
	*table.Table[table.Record]

	Decl    config.TableDecl
	Operate *operate.Helper[table.Record]

	sess   *Session
	client *upstream.Client
}

// TableState 列表页快照
type TableState struct {
	Key     string                      `json:"key"`
	Title   string                      `json:"title"`
	IDKey   string                      `json:"idKey"`
	Table   table.State[table.Record]   `json:"table"`
	Operate operate.State[table.Record] `json:"operate"`
}

func newTable(s *Session, decl config.TableDecl) (*Table, error) {
	client, ok := s.mgr.clients[decl.Client]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClient, decl.Client)
	}

	params := table.SearchParams{"current": 1, "size": s.mgr.cfg.Console.DefaultPageSize}
	for k, v := range utils.DeepCloneMap(decl.Params) {
		params[k] = v
	}
	columns := append([]table.Column(nil), decl.Columns...)

	t := &Table{Decl: decl, sess: s, client: client}
	t.Table = table.NewTable(table.TableConfig[table.Record]{
		APIFn:             client.TableAPI(s, decl.Key, decl.ListPath),
		Params:            params,
		Columns:           func() []table.Column { return append([]table.Column(nil), columns...) },
		DefaultHiddenKeys: decl.DefaultHidden,
		ShowTotal:         decl.ShowTotal,
		Immediate:         true,
		Text:              s.Text,
	})
	t.Operate = operate.NewHelper(operate.Options[table.Record]{
		Rows: func() []table.Record { return table.Items(t.Data()) },
		Refresh: func(ctx context.Context) error {
			_, err := t.GetData(ctx)
			return err
		},
		Children: operate.RecordChildrenBy(decl.ChildrenKey),
		MatchID:  operate.MatchRecordID(decl.IDKey),
		Notifier: s.queue,
		Text:     s.Text,
	})
	return t, nil
}

// Delete 调用上游删除接口，多个 id 走批量删除
//
// 业务失败由操作助手推送错误消息并返回 false，只有传输错误会返回 error。
func (t *Table) Delete(ctx context.Context, ids []string) (bool, error) {
	if len(ids) == 0 {
		return false, ErrNoRowsSelected
	}
	batch := len(ids) > 1
	path := t.Decl.DeletePath
	if batch && t.Decl.BatchDeletePath != "" {
		path = t.Decl.BatchDeletePath
	}
	if path == "" {
		return false, ErrDeleteUnsupported
	}

	res, err := t.client.Delete(ctx, t.sess, path, ids)
	if err != nil {
		return false, err
	}
	if batch {
		return t.Operate.OnBatchDeleted(ctx, res)
	}
	return t.Operate.OnDeleted(ctx, res)
}

// State 列表页快照
func (t *Table) State(isMobile bool) TableState {
	return TableState{
		Key:     t.Decl.Key,
		Title:   t.sess.T(t.Decl.Title),
		IDKey:   t.Decl.IDKey,
		Table:   t.Snapshot(isMobile),
		Operate: t.Operate.State(),
	}
}
