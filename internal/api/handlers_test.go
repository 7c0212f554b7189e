package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailscout/internal/producer"
	"mailscout/pkg/queue"
	"mailscout/pkg/store"
)

func newTestHandler() *Handler {
	st := store.NewMemoryStore()
	broker := queue.NewMemoryBroker()
	return NewHandler(producer.New(st, broker, "mailscout:jobs", 2))
}

func TestHandleSubmit_EnqueuesJobAndReturnsChunks(t *testing.T) {
	h := newTestHandler()
	body, _ := json.Marshal(submitRequest{Filename: "addresses.csv", Emails: []string{"a@example.com", "b@example.com", "c@example.com"}})

	req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.HandleSubmit(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp submitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.Chunks)
	assert.NotEmpty(t, resp.JobID)
}

func TestHandleSubmit_RejectsEmptyEmailList(t *testing.T) {
	h := newTestHandler()
	body, _ := json.Marshal(submitRequest{Filename: "empty.csv"})

	req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.HandleSubmit(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSubmit_RejectsWrongMethod(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	w := httptest.NewRecorder()
	h.HandleSubmit(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleSubmit_RejectsMalformedBody(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	h.HandleSubmit(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleStatus_ReturnsSubmittedJobProgress(t *testing.T) {
	h := newTestHandler()
	submitBody, _ := json.Marshal(submitRequest{Filename: "a.csv", Emails: []string{"a@example.com"}})
	submitReq := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader(submitBody))
	submitW := httptest.NewRecorder()
	h.HandleSubmit(submitW, submitReq)

	var submitResp submitResponse
	require.NoError(t, json.Unmarshal(submitW.Body.Bytes(), &submitResp))

	statusReq := httptest.NewRequest(http.MethodGet, "/jobs/"+submitResp.JobID, nil)
	statusW := httptest.NewRecorder()
	h.HandleStatus(statusW, statusReq)

	require.Equal(t, http.StatusOK, statusW.Code)
	var statusResp statusResponse
	require.NoError(t, json.Unmarshal(statusW.Body.Bytes(), &statusResp))
	assert.Equal(t, "queued", statusResp.Status)
	assert.Equal(t, 1, statusResp.Total)
}

func TestHandleStatus_UnknownJobReturns404(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/jobs/nonexistent", nil)
	w := httptest.NewRecorder()
	h.HandleStatus(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
