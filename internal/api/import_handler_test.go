package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ExpoSync/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func TestRunImportRejectsMissingCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	// 凭证缺失必须在任何数据库/外部访问之前被拦截
	cfg := &config.Config{}
	handler := NewImportHandler(nil, nil, logger, cfg)
	router := gin.New()
	router.POST("/sync/airtable", handler.RunImport)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sync/airtable", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var body struct {
		Success bool     `json:"success"`
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success {
		t.Error("success = true, want false")
	}
	if body.Error != "missing required environment variables" {
		t.Errorf("error = %q", body.Error)
	}
	want := map[string]bool{"AIRTABLE_API_KEY": true, "AIRTABLE_BASE_ID": true}
	if len(body.Details) != len(want) {
		t.Fatalf("details = %v, want both missing variables", body.Details)
	}
	for _, name := range body.Details {
		if !want[name] {
			t.Errorf("unexpected detail %q", name)
		}
	}
}
