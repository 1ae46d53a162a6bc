package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hollis/phishguard/internal/adapters/storage"
	"github.com/hollis/phishguard/internal/core"
	"github.com/hollis/phishguard/internal/engine"
	"github.com/hollis/phishguard/internal/risk"
)

func newTestAPI(t *testing.T) (http.Handler, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore(zap.NewNop())
	svc := engine.NewService(nil, risk.NewAggregator(nil), nil, zap.NewNop(), time.Second, 1)
	return NewRouter(svc, store, nil, []string{"*"}, zap.NewNop()), store
}

func seedEmail(t *testing.T, store *storage.MemoryStore) *core.StoredEmail {
	t.Helper()
	stored, err := store.SaveEmail(context.Background(), &core.EmailInput{
		SourceID: "src-1",
		Subject:  "URGENT: Verify your account",
		From:     core.Address{Address: "alerts@phish.tk"},
		Body:     core.Body{Text: "Click here http://192.168.1.1/login to confirm your password immediately"},
	})
	require.NoError(t, err)
	return stored
}

func doRequest(handler http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRouter_Health(t *testing.T) {
	handler, _ := newTestAPI(t)

	rec := doRequest(handler, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["mail_source"])
}

func TestRouter_AnalyzeFlow(t *testing.T) {
	handler, store := newTestAPI(t)
	stored := seedEmail(t, store)

	// first run creates the analysis
	rec := doRequest(handler, http.MethodPost, "/api/analysis/"+stored.ID)
	require.Equal(t, http.StatusCreated, rec.Code)

	var record core.AnalysisRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, stored.ID, record.EmailID)
	assert.True(t, record.Narrative.Fallback)

	// the email is now flagged analyzed
	got, err := store.GetEmail(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.True(t, got.Analyzed)
	assert.Equal(t, record.ID, got.AnalysisID)

	// second run without force returns the existing record
	rec = doRequest(handler, http.MethodPost, "/api/analysis/"+stored.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	var again core.AnalysisRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &again))
	assert.Equal(t, record.ID, again.ID)

	// force re-runs and produces a fresh record
	rec = doRequest(handler, http.MethodPost, "/api/analysis/"+stored.ID+"?force=true")
	require.Equal(t, http.StatusCreated, rec.Code)
	var forced core.AnalysisRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forced))
	assert.NotEqual(t, record.ID, forced.ID)
}

func TestRouter_AnalyzeMissingEmail(t *testing.T) {
	handler, _ := newTestAPI(t)
	rec := doRequest(handler, http.MethodPost, "/api/analysis/does-not-exist")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ListEmails(t *testing.T) {
	handler, store := newTestAPI(t)
	seedEmail(t, store)

	rec := doRequest(handler, http.MethodGet, "/api/emails")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Emails []core.StoredEmail `json:"emails"`
		Total  int                `json:"total"`
		Page   int                `json:"page"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, 1, body.Page)
	require.Len(t, body.Emails, 1)

	// invalid analyzed filter is a client error
	rec = doRequest(handler, http.MethodGet, "/api/emails?analyzed=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ListAnalysesAndStats(t *testing.T) {
	handler, store := newTestAPI(t)
	stored := seedEmail(t, store)

	rec := doRequest(handler, http.MethodPost, "/api/analysis/"+stored.ID)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(handler, http.MethodGet, "/api/analysis?page=1&limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	var listBody struct {
		Analyses []core.AnalysisRecord `json:"analyses"`
		Total    int                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listBody))
	assert.Equal(t, 1, listBody.Total)

	// filter that matches nothing
	rec = doRequest(handler, http.MethodGet, "/api/analysis?riskLevel=HIGH&classification=FN")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listBody))
	assert.Equal(t, 0, listBody.Total)

	rec = doRequest(handler, http.MethodGet, "/api/analysis/recent?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(handler, http.MethodGet, "/api/analysis/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats core.Statistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Total)
}

func TestRouter_DeleteAnalysis(t *testing.T) {
	handler, store := newTestAPI(t)
	stored := seedEmail(t, store)

	rec := doRequest(handler, http.MethodPost, "/api/analysis/"+stored.ID)
	require.Equal(t, http.StatusCreated, rec.Code)
	var record core.AnalysisRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))

	rec = doRequest(handler, http.MethodDelete, "/api/analysis/"+record.ID)
	require.Equal(t, http.StatusOK, rec.Code)

	// analysis gone, email back to pending
	rec = doRequest(handler, http.MethodGet, "/api/analysis/"+record.ID)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	got, err := store.GetEmail(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.False(t, got.Analyzed)
}

func TestRouter_SyncWithoutSource(t *testing.T) {
	handler, _ := newTestAPI(t)
	rec := doRequest(handler, http.MethodPost, "/api/emails/sync")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
