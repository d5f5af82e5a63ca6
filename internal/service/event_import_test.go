package service

import (
	"context"
	"encoding/json"
	"testing"

	"ExpoSync/internal/model"
	"ExpoSync/internal/repository"
)

func TestEventImport(t *testing.T) {
	db := newTestDB(t)
	source := &fakeSource{tables: map[string][]*model.AirtableRecord{
		"Events": {
			eventRecord("rec1", "E1", "Approved", "Salon du Jouet", map[string]any{
				"type_event": "Congrès",
				"date_debut": "15/03/2024",
				"ville":      "Paris",
				"secteur":    "Jouets",
			}),
			eventRecord("rec2", "E2", "Pending", "Salon Refusé", nil),
			eventRecord("rec3", "", "Approved", "Sans Identifiant", nil),
		},
	}}
	svc := NewEventImportService(source,
		repository.NewStagingEventRepository(db),
		repository.NewEventRepository(db),
		newTestConfig(), newTestLogger())

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("Imported = %d, want 1", result.Imported)
	}
	if !hasErrorContaining(result.Errors, "status_event") {
		t.Errorf("missing status_event rejection in %v", result.Errors)
	}
	if !hasErrorContaining(result.Errors, "id_event manquant") {
		t.Errorf("missing id_event rejection in %v", result.Errors)
	}

	// 暂存层：字段已规范化
	var staged model.StagingEvent
	if err := db.Where("id_event = ?", "E1").First(&staged).Error; err != nil {
		t.Fatalf("staging row: %v", err)
	}
	if staged.TypeEvent != "congres" {
		t.Errorf("TypeEvent = %q, want congres", staged.TypeEvent)
	}
	if staged.DateDebut == nil || *staged.DateDebut != "2024-03-15" {
		t.Errorf("DateDebut = %v, want 2024-03-15", staged.DateDebut)
	}
	// date_fin 缺失回退为 date_debut
	if staged.DateFin == nil || *staged.DateFin != "2024-03-15" {
		t.Errorf("DateFin = %v, want fallback to date_debut", staged.DateFin)
	}

	// 生产层：invisible + slug为空 + secteur单元素数组
	var prod model.Event
	if err := db.Where("id_event = ?", "E1").First(&prod).Error; err != nil {
		t.Fatalf("production row: %v", err)
	}
	if prod.Visible {
		t.Error("new production event must be invisible")
	}
	if prod.Slug != nil {
		t.Errorf("Slug = %v, want nil", prod.Slug)
	}
	if prod.EventUUID == "" {
		t.Error("EventUUID must be set")
	}
	var secteur []string
	if err := json.Unmarshal(prod.Secteur, &secteur); err != nil || len(secteur) != 1 || secteur[0] != "Jouets" {
		t.Errorf("Secteur = %s, want [\"Jouets\"]", string(prod.Secteur))
	}
	if prod.Pays != "France" {
		t.Errorf("Pays = %q, want France", prod.Pays)
	}

	// 被拒绝的事件不得出现在任何一层
	var count int64
	db.Model(&model.StagingEvent{}).Where("id_event = ?", "E2").Count(&count)
	if count != 0 {
		t.Error("pending event leaked into staging")
	}
}

func TestEventImportVilleFallback(t *testing.T) {
	db := newTestDB(t)
	source := &fakeSource{tables: map[string][]*model.AirtableRecord{
		"Events": {eventRecord("rec1", "E1", "approved", "Sans Ville", nil)},
	}}
	svc := NewEventImportService(source,
		repository.NewStagingEventRepository(db),
		repository.NewEventRepository(db),
		newTestConfig(), newTestLogger())

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	var staged model.StagingEvent
	if err := db.Where("id_event = ?", "E1").First(&staged).Error; err != nil {
		t.Fatalf("staging row: %v", err)
	}
	if staged.Ville != "Inconnue" {
		t.Errorf("Ville = %q, want Inconnue", staged.Ville)
	}
}

// 再导入按id_event覆盖数据列，但不得回写人工放行的可见性
func TestEventImportPreservesVisibility(t *testing.T) {
	db := newTestDB(t)
	source := &fakeSource{tables: map[string][]*model.AirtableRecord{
		"Events": {eventRecord("rec1", "E1", "approved", "Salon V1", nil)},
	}}
	svc := NewEventImportService(source,
		repository.NewStagingEventRepository(db),
		repository.NewEventRepository(db),
		newTestConfig(), newTestLogger())

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// 运营放行 + 下游生成slug
	slug := "salon-v1"
	if err := db.Model(&model.Event{}).Where("id_event = ?", "E1").
		Updates(map[string]any{"visible": true, "slug": slug}).Error; err != nil {
		t.Fatalf("promote visibility: %v", err)
	}
	var before model.Event
	_ = db.Where("id_event = ?", "E1").First(&before).Error

	source.tables["Events"][0].Fields["nom_event"] = "Salon V2"
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	var after model.Event
	if err := db.Where("id_event = ?", "E1").First(&after).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if after.NomEvent != "Salon V2" {
		t.Errorf("NomEvent = %q, want refreshed Salon V2", after.NomEvent)
	}
	if !after.Visible {
		t.Error("re-import reset visible flag")
	}
	if after.Slug == nil || *after.Slug != slug {
		t.Errorf("Slug = %v, want preserved %q", after.Slug, slug)
	}
	if after.EventUUID != before.EventUUID {
		t.Error("re-import must not rotate event_uuid")
	}
}
