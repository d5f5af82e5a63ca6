package repository

import (
	"context"

	"ExpoSync/internal/model"

	"gorm.io/gorm"
)

// 导入管道赖以正确工作的三个唯一约束（索引名与模型声明一致）
const (
	IndexEventsIDEvent              = "uk_events_id_event"
	IndexParticipationsComposite    = "uk_participations_event_exposant"
	IndexParticipationsURLExpoEvent = "uk_participations_urlexpo"
)

// SchemaConstraints 约束存在性快照（诊断报告用，运行时实查而非写死）
type SchemaConstraints struct {
	EventsUniqueIDEvent          bool `json:"events_unique_id_event"`
	ParticipationCompositeUnique bool `json:"participation_composite_unique"`
	ParticipationURLUnique       bool `json:"participation_url_unique"`
}

// SchemaRepository 模式元数据仓储：实查当前库的索引存在性
type SchemaRepository interface {
	// HasParticipationCompositeUnique (id_event, id_exposant) 复合唯一索引是否存在
	HasParticipationCompositeUnique(ctx context.Context) bool
	// CheckConstraints 三个关键约束一次性实查
	CheckConstraints(ctx context.Context) SchemaConstraints
}

type schemaRepository struct {
	db *gorm.DB
}

func NewSchemaRepository(db *gorm.DB) SchemaRepository {
	return &schemaRepository{db: db}
}

func (r *schemaRepository) HasParticipationCompositeUnique(ctx context.Context) bool {
	return r.db.WithContext(ctx).Migrator().HasIndex(&model.Participation{}, IndexParticipationsComposite)
}

func (r *schemaRepository) CheckConstraints(ctx context.Context) SchemaConstraints {
	db := r.db.WithContext(ctx)
	return SchemaConstraints{
		EventsUniqueIDEvent:          db.Migrator().HasIndex(&model.Event{}, IndexEventsIDEvent),
		ParticipationCompositeUnique: db.Migrator().HasIndex(&model.Participation{}, IndexParticipationsComposite),
		ParticipationURLUnique:       db.Migrator().HasIndex(&model.Participation{}, IndexParticipationsURLExpoEvent),
	}
}
