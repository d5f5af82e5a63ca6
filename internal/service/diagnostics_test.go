package service

import (
	"context"
	"testing"

	"ExpoSync/internal/model"
)

func TestDiagnosticsRun(t *testing.T) {
	db := newTestDB(t)
	seedStagingEvent(t, db, "E1")
	seedExposant(t, db, "X1", "https://www.acme.com/")
	source := &fakeSource{tables: map[string][]*model.AirtableRecord{
		"Participations": {
			participationRecord("rec1", []any{"E1"}, "acme.com", "u1"),
			participationRecord("rec2", []any{"E-inconnu"}, "acme.com", "u2"),
			participationRecord("rec3", []any{"E1"}, "globex.fr", "u3"),
			participationRecord("rec4", []any{"E-inconnu"}, "globex.fr", "u4"),
			participationRecord("rec5", []any{"E1"}, "www.globex.fr/", "u5"),
		},
	}}
	svc := NewDiagnosticsService(db, source, newTestConfig(), newTestLogger())

	report, err := svc.Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// AutoMigrate建出的复合唯一索引必须被实查到
	if !report.Constraints.ParticipationCompositeUnique {
		t.Error("composite unique index not detected")
	}
	if !report.Constraints.EventsUniqueIDEvent {
		t.Error("events id_event unique index not detected")
	}

	if report.SampleSize != 5 {
		t.Errorf("SampleSize = %d, want 5", report.SampleSize)
	}
	wantOutcomes := map[model.ResolutionOutcome]int{
		model.OutcomeMappable:          1,
		model.OutcomeEventNotFound:     1,
		model.OutcomeExhibitorNotFound: 2,
		model.OutcomeBothNotFound:      1,
	}
	for outcome, want := range wantOutcomes {
		if got := report.Outcomes[outcome]; got != want {
			t.Errorf("Outcomes[%s] = %d, want %d", outcome, got, want)
		}
	}

	// globex.fr三次出现同一规范化域名（含www/斜杠变体），榜单聚合为一条
	if len(report.TopUnresolvedDomains) != 1 {
		t.Fatalf("TopUnresolvedDomains = %v, want 1 entry", report.TopUnresolvedDomains)
	}
	top := report.TopUnresolvedDomains[0]
	if top.Domain != "globex.fr" || top.Count != 3 {
		t.Errorf("top unresolved = %+v, want globex.fr x3", top)
	}

	// 诊断为只读：不得晋升缺口事件，也不得写participations
	var prodEvents, participations int64
	db.Model(&model.Event{}).Count(&prodEvents)
	db.Model(&model.Participation{}).Count(&participations)
	if prodEvents != 0 || participations != 0 {
		t.Errorf("diagnostics wrote rows: events=%d participations=%d", prodEvents, participations)
	}
}

func TestDiagnosticsSampleLimit(t *testing.T) {
	db := newTestDB(t)
	var records []*model.AirtableRecord
	for i := 0; i < 5; i++ {
		records = append(records, participationRecord("rec"+string(rune('a'+i)), []any{"E1"}, "acme.com", "u"))
	}
	source := &fakeSource{tables: map[string][]*model.AirtableRecord{"Participations": records}}
	svc := NewDiagnosticsService(db, source, newTestConfig(), newTestLogger())

	report, err := svc.Run(context.Background(), 3)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.SampleSize != 3 {
		t.Errorf("SampleSize = %d, want 3", report.SampleSize)
	}
	if len(report.Records) != 3 {
		t.Errorf("Records = %d entries, want 3", len(report.Records))
	}
}
