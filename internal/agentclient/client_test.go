package agentclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

func TestRegisterKeepsAgentID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/agents", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var req domain.CreateAgentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "rig-1", req.Name)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.Agent{ID: "a-1", Name: req.Name, APIKey: "hc_key"})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	agent, err := c.Register(context.Background(), "rig-1")
	require.NoError(t, err)

	assert.Equal(t, "hc_key", agent.APIKey)
	assert.Equal(t, "a-1", c.AgentID())
}

func TestHeartbeatRequiresRegistration(t *testing.T) {
	c := New("http://127.0.0.1:1", "")

	err := c.Heartbeat(context.Background(), domain.AgentStatusOnline, nil)
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "api error", status: http.StatusNotFound, body: `{"code":404,"message":"Task not found"}`, message: "Task not found"},
		{name: "plain body", status: http.StatusBadGateway, body: "upstream down\n", message: "upstream down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := New(srv.URL, "").ReportProgress(context.Background(), uuid.New(), domain.TaskProgressUpdate{Progress: 10})
			require.Error(t, err)

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.message, se.Message)
		})
	}
}

func TestSubmitResultsTagsAgent(t *testing.T) {
	taskID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/agents":
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(domain.Agent{ID: "a-9"})
		case "/api/v1/results":
			var batch domain.ResultBatch
			require.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
			assert.Equal(t, taskID, batch.TaskID)
			require.NotNil(t, batch.AgentID)
			assert.Equal(t, "a-9", *batch.AgentID)

			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]int{"stored": len(batch.Results)})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.Register(context.Background(), "rig")
	require.NoError(t, err)

	n, err := c.SubmitResults(context.Background(), taskID, []domain.CrackedHash{
		{Hash: "aa", Plaintext: "x"},
		{Hash: "bb", Plaintext: "y"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
