package interfaces

import (
	"context"

	"ExpoSync/internal/model"
)

// TabularSource 导入器消费的外部表格数据源（生产实现为 airtable.Client）
// 读路径抽象出来，便于导入器/诊断用假数据源做测试
type TabularSource interface {
	// ListRecords 单页拉取
	ListRecords(ctx context.Context, table string, opts model.AirtableListOptions) (*model.AirtableRecordPage, error)
	// ForEachPage 按页惰性遍历：跟随offset游标直到耗尽，限速成本逐页支付
	ForEachPage(ctx context.Context, table string, opts model.AirtableListOptions, fn func(records []*model.AirtableRecord) error) error
	// ListAllRecords 全量物化（小表用；大表应改用ForEachPage流式处理）
	ListAllRecords(ctx context.Context, table string, opts model.AirtableListOptions) ([]*model.AirtableRecord, error)
}
