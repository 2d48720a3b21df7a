package clearinghouse

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightside-counseling/claims-api/internal/model"
)

func testServer(t *testing.T, uploadStatus int) (*httptest.Server, *string) {
	t.Helper()
	var uploaded string
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.Form.Get("grant_type"))
		assert.Equal(t, "biller", r.Form.Get("username"))
		json.NewEncoder(w).Encode(map[string]string{"access_token": "ch-token"})
	})
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/edi-x12", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer ch-token", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		uploaded = string(body)
		w.WriteHeader(uploadStatus)
	})
	return httptest.NewServer(mux), &uploaded
}

func newTestClient(server *httptest.Server) *Client {
	return NewClient(Config{
		TokenURL:  server.URL + "/token",
		UploadURL: server.URL + "/upload",
		ClientID:  "id",
		Username:  "biller",
		Password:  "secret",
	}, zerolog.Nop())
}

func TestSubmitAccepted(t *testing.T) {
	server, uploaded := testServer(t, http.StatusAccepted)
	defer server.Close()

	err := newTestClient(server).Submit(context.Background(), "ISA*00~\nIEA*1~")
	require.NoError(t, err)
	assert.Equal(t, "ISA*00~\nIEA*1~", *uploaded)
}

func TestSubmitGenericOKIsRejected(t *testing.T) {
	server, _ := testServer(t, http.StatusOK)
	defer server.Close()

	err := newTestClient(server).Submit(context.Background(), "ISA*00~")
	assert.ErrorIs(t, err, model.ErrClearinghouseRejected)
}

func TestSubmitUploadFailure(t *testing.T) {
	server, _ := testServer(t, http.StatusBadRequest)
	defer server.Close()

	err := newTestClient(server).Submit(context.Background(), "ISA*00~")
	assert.ErrorIs(t, err, model.ErrClearinghouseRejected)
}

func TestSubmitAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{
		TokenURL:  server.URL + "/token",
		UploadURL: server.URL + "/upload",
	}, zerolog.Nop())

	err := client.Submit(context.Background(), "ISA*00~")
	assert.ErrorIs(t, err, model.ErrClearinghouseAuth)
}
