package model

// TableView 表格视图：列勾选、固定列与搜索条件预设
type TableView struct {
	BaseModel
	UserID       int64  `gorm:"not null;default:0;index:idx_table_view_user_key" json:"userId"` // 0 为系统视图
	TableKey     string `gorm:"size:64;not null;index:idx_table_view_user_key" json:"tableKey"`
	Name         string `gorm:"size:64;not null" json:"name"`
	IsDefault    bool   `gorm:"not null;default:false" json:"isDefault"`
	ColumnKeys   string `gorm:"type:text" json:"columnKeys"`
	ColumnFixed  string `gorm:"type:text" json:"columnFixed"`
	SearchParams string `gorm:"type:text" json:"searchParams"`
	Sort         int32  `gorm:"not null;default:0" json:"sort"`
	IsDelete     bool   `gorm:"not null;default:false" json:"-"`
	CreatedBy    int64  `json:"createdBy"`
	UpdatedBy    int64  `json:"updatedBy"`
}

// TableName 表名
func (TableView) TableName() string {
	return "sys_table_view"
}

// AllModels 需要自动迁移的模型
func AllModels() []any {
	return []any{&TableView{}}
}
