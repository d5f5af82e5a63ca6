package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"ExpoSync/internal/config"
	"ExpoSync/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 每个测试一个独立的内存sqlite库（带共享缓存，连接池内可见同一库）
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.StagingEvent{},
		&model.Event{},
		&model.Exposant{},
		&model.Participation{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func newTestConfig() *config.Config {
	return &config.Config{
		Airtable: config.AirtableConfig{
			Tables: config.AirtableTables{
				Events:         "Events",
				Exposants:      "Exposants",
				Participations: "Participations",
			},
		},
	}
}

// fakeSource 测试用数据源：按表名吐固定记录，单页返回
type fakeSource struct {
	tables map[string][]*model.AirtableRecord
	err    error // 非nil时所有读操作都返回该错误
}

func (f *fakeSource) ListRecords(ctx context.Context, table string, opts model.AirtableListOptions) (*model.AirtableRecordPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	records := f.tables[table]
	if opts.MaxRecords > 0 && len(records) > opts.MaxRecords {
		records = records[:opts.MaxRecords]
	}
	return &model.AirtableRecordPage{Records: records}, nil
}

func (f *fakeSource) ForEachPage(ctx context.Context, table string, opts model.AirtableListOptions, fn func(records []*model.AirtableRecord) error) error {
	if f.err != nil {
		return f.err
	}
	if records := f.tables[table]; len(records) > 0 {
		return fn(records)
	}
	return nil
}

func (f *fakeSource) ListAllRecords(ctx context.Context, table string, opts model.AirtableListOptions) ([]*model.AirtableRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tables[table], nil
}

func eventRecord(recID, idEvent, status, nom string, extra map[string]any) *model.AirtableRecord {
	fields := map[string]any{
		"id_event":     idEvent,
		"status_event": status,
		"nom_event":    nom,
	}
	for k, v := range extra {
		fields[k] = v
	}
	if idEvent == "" {
		delete(fields, "id_event")
	}
	return &model.AirtableRecord{ID: recID, Fields: fields}
}

func hasErrorContaining(errs []model.ImportError, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e.Reason, substr) {
			return true
		}
	}
	return false
}
