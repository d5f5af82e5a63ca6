package repository

import (
	"context"
	"errors"

	"ExpoSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrCompositeUniqueMissing (id_event, id_exposant) 复合唯一索引缺失
// upsert的冲突目标不存在时必须响亮失败，而不是静默重复插入
var ErrCompositeUniqueMissing = errors.New("participations表缺少(id_event, id_exposant)复合唯一索引，拒绝upsert")

// ParticipationRepository 参展关系仓储
type ParticipationRepository interface {
	// UpsertBatch 按(id_event, id_exposant)冲突目标upsert；写前校验索引存在
	UpsertBatch(ctx context.Context, participations []*model.Participation) error
	// ListByIDEvent 某事件下全部参展关系
	ListByIDEvent(ctx context.Context, idEvent string) ([]*model.Participation, error)
}

type participationRepository struct {
	db     *gorm.DB
	schema SchemaRepository
}

func NewParticipationRepository(db *gorm.DB, schema SchemaRepository) ParticipationRepository {
	return &participationRepository{db: db, schema: schema}
}

func (r *participationRepository) UpsertBatch(ctx context.Context, participations []*model.Participation) error {
	if len(participations) == 0 {
		return nil
	}
	// 前置条件：冲突目标必须真实存在（而不是假设存在）
	if !r.schema.HasParticipationCompositeUnique(ctx) {
		return ErrCompositeUniqueMissing
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id_event"}, {Name: "id_exposant"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"urlexpo_event", "updated_at",
		}),
	}).Create(&participations).Error
}

func (r *participationRepository) ListByIDEvent(ctx context.Context, idEvent string) ([]*model.Participation, error) {
	var participations []*model.Participation
	if err := r.db.WithContext(ctx).Where("id_event = ?", idEvent).Find(&participations).Error; err != nil {
		return nil, err
	}
	return participations, nil
}
