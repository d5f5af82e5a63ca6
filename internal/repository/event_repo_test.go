package repository

import (
	"context"
	"testing"

	"ExpoSync/internal/model"

	"gorm.io/datatypes"
)

func seedEvent(t *testing.T, repo EventRepository, idEvent, typeEvent, ville string) {
	t.Helper()
	err := repo.UpsertBatch(context.Background(), []*model.Event{{
		EventUUID: "uuid-" + idEvent,
		IDEvent:   idEvent,
		NomEvent:  "Event " + idEvent,
		TypeEvent: typeEvent,
		Secteur:   datatypes.JSON("[]"),
		Ville:     ville,
		Pays:      "France",
	}})
	if err != nil {
		t.Fatalf("seed event %s: %v", idEvent, err)
	}
}

func TestEventListFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	seedEvent(t, repo, "E1", "salon", "Paris")
	seedEvent(t, repo, "E2", "salon", "Lyon")
	seedEvent(t, repo, "E3", "congres", "Paris")

	events, total, err := repo.ListEvents(ctx, EventFilter{TypeEvent: "salon"}, 1, 20)
	if err != nil {
		t.Fatalf("ListEvents type filter: %v", err)
	}
	if total != 2 || len(events) != 2 {
		t.Errorf("salon filter: total=%d len=%d, want 2/2", total, len(events))
	}

	events, total, err = repo.ListEvents(ctx, EventFilter{TypeEvent: "salon", Ville: "Lyon"}, 1, 20)
	if err != nil {
		t.Fatalf("ListEvents combined filter: %v", err)
	}
	if total != 1 || len(events) != 1 || events[0].IDEvent != "E2" {
		t.Errorf("combined filter returned %v (total=%d), want only E2", events, total)
	}

	// 新晋升的事件默认invisible，visible=true筛选应为空
	visible := true
	_, total, err = repo.ListEvents(ctx, EventFilter{Visible: &visible}, 1, 20)
	if err != nil {
		t.Fatalf("ListEvents visible filter: %v", err)
	}
	if total != 0 {
		t.Errorf("visible filter total = %d, want 0", total)
	}
}

// 重导入刷新数据列，但不得覆盖运营人员设置的visible/slug与既有event_uuid
func TestEventUpsertPreservesOperatorFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	seedEvent(t, repo, "E1", "salon", "Paris")

	slug := "salon-e1"
	if err := db.Model(&model.Event{}).Where("id_event = ?", "E1").
		Updates(map[string]any{"visible": true, "slug": slug}).Error; err != nil {
		t.Fatalf("simulate operator promotion: %v", err)
	}

	// 同一id_event重导入，数据列变化
	if err := repo.UpsertBatch(ctx, []*model.Event{{
		EventUUID: "uuid-autre",
		IDEvent:   "E1",
		NomEvent:  "Event E1 (édition 2026)",
		TypeEvent: "salon",
		Secteur:   datatypes.JSON("[]"),
		Ville:     "Paris",
		Pays:      "France",
	}}); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	got, err := repo.GetByIDEvent(ctx, "E1")
	if err != nil {
		t.Fatalf("GetByIDEvent: %v", err)
	}
	if got.NomEvent != "Event E1 (édition 2026)" {
		t.Errorf("NomEvent = %q, data columns must refresh", got.NomEvent)
	}
	if !got.Visible {
		t.Error("Visible reset by re-upsert, operator promotion lost")
	}
	if got.Slug == nil || *got.Slug != slug {
		t.Errorf("Slug = %v, want preserved %q", got.Slug, slug)
	}
	if got.EventUUID != "uuid-E1" {
		t.Errorf("EventUUID = %q, must keep first-insert value", got.EventUUID)
	}
}
