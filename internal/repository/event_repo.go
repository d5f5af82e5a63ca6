package repository

import (
	"context"

	"ExpoSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventFilter 生产层事件列表筛选
type EventFilter struct {
	TypeEvent string // 事件类型
	Ville     string // 城市
	Visible   *bool  // 可见性（nil表示不筛选）
}

// EventRepository 生产层事件仓储
type EventRepository interface {
	// UpsertBatch 按id_event upsert；冲突时只刷新数据列，
	// 不回写 visible/slug/event_uuid（人工放行与下游slug生成的结果必须保留）
	UpsertBatch(ctx context.Context, events []*model.Event) error
	// ListIDEvents 返回生产层全部外部事件ID
	ListIDEvents(ctx context.Context) ([]string, error)
	// GetByIDEvent 按外部事件ID取单条
	GetByIDEvent(ctx context.Context, idEvent string) (*model.Event, error)
	// ListEvents 应用侧只读查询（分页）
	ListEvents(ctx context.Context, filter EventFilter, page, pageSize int) ([]*model.Event, int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) UpsertBatch(ctx context.Context, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id_event"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"nom_event", "type_event", "secteur", "date_debut", "date_fin",
			"ville", "pays", "url_event", "description", "updated_at",
		}),
	}).Create(&events).Error
}

func (r *eventRepository) ListIDEvents(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.Event{}).Pluck("id_event", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *eventRepository) GetByIDEvent(ctx context.Context, idEvent string) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).Where("id_event = ?", idEvent).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) ListEvents(ctx context.Context, filter EventFilter, page, pageSize int) ([]*model.Event, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	db := r.db.WithContext(ctx).Model(&model.Event{})
	if filter.TypeEvent != "" {
		db = db.Where("type_event = ?", filter.TypeEvent)
	}
	if filter.Ville != "" {
		db = db.Where("ville = ?", filter.Ville)
	}
	if filter.Visible != nil {
		db = db.Where("visible = ?", *filter.Visible)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []*model.Event
	if err := db.Order("date_debut ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
