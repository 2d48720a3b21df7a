package claims

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightside-counseling/claims-api/internal/model"
)

type fakeSubmitter struct {
	verdicts    map[uuid.UUID]model.ValidationResult
	submitCount int
	submitErr   error
	submittedBy string
	batches     []*model.Batch
}

func (f *fakeSubmitter) Validate(_ context.Context, sessionIDs []uuid.UUID) (map[uuid.UUID]model.ValidationResult, error) {
	results := make(map[uuid.UUID]model.ValidationResult, len(sessionIDs))
	for _, id := range sessionIDs {
		results[id] = f.verdicts[id]
	}
	return results, nil
}

func (f *fakeSubmitter) Submit(_ context.Context, _ []uuid.UUID, submittedBy string) (int, error) {
	f.submittedBy = submittedBy
	return f.submitCount, f.submitErr
}

func (f *fakeSubmitter) ListBatches(_ context.Context) ([]*model.Batch, error) {
	return f.batches, nil
}

func setupRouter(svc *fakeSubmitter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set("userEmail", "biller@example.com")
	})
	NewHandler(svc).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func postJSON(t *testing.T, engine *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestValidateSessions(t *testing.T) {
	id := uuid.New()
	svc := &fakeSubmitter{verdicts: map[uuid.UUID]model.ValidationResult{
		id: {Valid: false, Reason: "duplicate", Type: model.InvalidTypeDuplicate},
	}}
	engine := setupRouter(svc)

	w := postJSON(t, engine, "/api/v1/claims/validate", gin.H{"session_ids": []string{id.String()}})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string                            `json:"status"`
		Data   map[string]model.ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "duplicate", resp.Data[id.String()].Reason)
}

func TestValidateSessionsRejectsEmptyList(t *testing.T) {
	engine := setupRouter(&fakeSubmitter{})

	w := postJSON(t, engine, "/api/v1/claims/validate", gin.H{"session_ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitBatch(t *testing.T) {
	svc := &fakeSubmitter{submitCount: 3}
	engine := setupRouter(svc)

	w := postJSON(t, engine, "/api/v1/claims/submit", gin.H{"session_ids": []string{uuid.NewString()}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "biller@example.com", svc.submittedBy)

	var resp struct {
		Data map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data["num_submitted"])
}

func TestSubmitBatchNothingValid(t *testing.T) {
	svc := &fakeSubmitter{submitErr: model.ErrNothingToSubmit}
	engine := setupRouter(svc)

	w := postJSON(t, engine, "/api/v1/claims/submit", gin.H{"session_ids": []string{uuid.NewString()}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitBatchUpstreamFailure(t *testing.T) {
	svc := &fakeSubmitter{submitErr: model.ErrClearinghouseRejected}
	engine := setupRouter(svc)

	w := postJSON(t, engine, "/api/v1/claims/submit", gin.H{"session_ids": []string{uuid.NewString()}})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestListBatches(t *testing.T) {
	svc := &fakeSubmitter{batches: []*model.Batch{{ID: uuid.New(), NumClaims: 2}}}
	engine := setupRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/claims/batches", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []model.Batch `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 2, resp.Data[0].NumClaims)
}
