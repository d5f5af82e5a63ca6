package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ExpoSync/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.StagingEvent{}, &model.Event{}, &model.Exposant{}, &model.Participation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestParticipationUpsertBatch(t *testing.T) {
	db := newTestDB(t)
	repo := NewParticipationRepository(db, NewSchemaRepository(db))
	ctx := context.Background()

	if err := repo.UpsertBatch(ctx, []*model.Participation{
		{IDEvent: "E1", IDExposant: "X1", URLExpoEvent: "u1"},
	}); err != nil {
		t.Fatalf("initial upsert: %v", err)
	}
	// 同一(id_event, id_exposant)重写只更新urlexpo_event，不新增行
	if err := repo.UpsertBatch(ctx, []*model.Participation{
		{IDEvent: "E1", IDExposant: "X1", URLExpoEvent: "u1-bis"},
	}); err != nil {
		t.Fatalf("conflicting upsert: %v", err)
	}

	var count int64
	db.Model(&model.Participation{}).Count(&count)
	if count != 1 {
		t.Errorf("rows = %d, want 1 after conflicting upsert", count)
	}
	var p model.Participation
	if err := db.First(&p).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if p.URLExpoEvent != "u1-bis" {
		t.Errorf("URLExpoEvent = %q, want u1-bis", p.URLExpoEvent)
	}
}

func TestParticipationUpsertRefusesWithoutCompositeIndex(t *testing.T) {
	db := newTestDB(t)
	repo := NewParticipationRepository(db, NewSchemaRepository(db))
	ctx := context.Background()

	if err := db.Migrator().DropIndex(&model.Participation{}, IndexParticipationsComposite); err != nil {
		t.Fatalf("drop index: %v", err)
	}

	err := repo.UpsertBatch(ctx, []*model.Participation{
		{IDEvent: "E1", IDExposant: "X1", URLExpoEvent: "u1"},
	})
	if !errors.Is(err, ErrCompositeUniqueMissing) {
		t.Errorf("err = %v, want ErrCompositeUniqueMissing", err)
	}
	var count int64
	db.Model(&model.Participation{}).Count(&count)
	if count != 0 {
		t.Errorf("rows = %d, want 0 when upsert refused", count)
	}
}

func TestSchemaCheckConstraints(t *testing.T) {
	db := newTestDB(t)
	schema := NewSchemaRepository(db)

	got := schema.CheckConstraints(context.Background())
	if !got.EventsUniqueIDEvent || !got.ParticipationCompositeUnique || !got.ParticipationURLUnique {
		t.Errorf("constraints = %+v, want all true after migrate", got)
	}

	if err := db.Migrator().DropIndex(&model.Participation{}, IndexParticipationsURLExpoEvent); err != nil {
		t.Fatalf("drop index: %v", err)
	}
	got = schema.CheckConstraints(context.Background())
	if got.ParticipationURLUnique {
		t.Error("ParticipationURLUnique still true after dropping index")
	}
}
