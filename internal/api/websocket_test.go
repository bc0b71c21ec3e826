package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobol-converter/backend/internal/jobs"
)

func dialJob(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/jobs/" + id + "/ws"
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { ws.Close() })
	return ws
}

func TestJobSocket_StreamsUntilComplete(t *testing.T) {
	s := newTestServer(t, true)
	srv := httptest.NewServer(s.e)
	defer srv.Close()

	rec := s.do(uploadRequest(t, "/api/jobs", "watch.cbl", []byte(testCobol)))
	require.Equal(t, http.StatusAccepted, rec.Code)
	var started struct {
		JobID string `json:"jobId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))

	ws := dialJob(t, srv, started.JobID)
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))

	var final WSMessage
	for {
		var msg WSMessage
		require.NoError(t, ws.ReadJSON(&msg))
		assert.Equal(t, started.JobID, msg.ID)
		assert.NotZero(t, msg.Timestamp)
		if msg.Type == MsgTypeComplete {
			final = msg
			break
		}
		assert.Equal(t, MsgTypeStatus, msg.Type)
	}

	var job jobs.Job
	require.NoError(t, json.Unmarshal(final.Payload, &job))
	assert.Equal(t, jobs.StatusComplete, job.Status)
	assert.NotEmpty(t, job.ConversionID)

	_, _, err := ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestJobSocket_UnknownJob(t *testing.T) {
	s := newTestServer(t, true)
	srv := httptest.NewServer(s.e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/jobs/nope/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
