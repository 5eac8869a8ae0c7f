package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MeKo-Tech/bubblex/internal/pipeline"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWS(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/ocr"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestWebSocketStreamsProgressThenResult(t *testing.T) {
	s := newTestServer(t, &fakeProcessor{result: sampleResult()}, nil)
	conn := dialWS(t, s)

	require.NoError(t, conn.WriteJSON(OCRRequest{Image: pngPayload(t)}))

	var frames []WSMessage
	for {
		var msg WSMessage
		require.NoError(t, conn.ReadJSON(&msg))
		frames = append(frames, msg)
		if msg.Type != "progress" {
			break
		}
	}

	require.Len(t, frames, 3)
	assert.Equal(t, WSMessage{Type: "progress", Stage: pipeline.StageDetect, Total: 1}, frames[0])
	assert.Equal(t, WSMessage{Type: "progress", Stage: pipeline.StageDetect, Current: 1, Total: 1}, frames[1])

	last := frames[2]
	assert.Equal(t, "result", last.Type)
	require.NotNil(t, last.OCRResponse)
	assert.Equal(t, 2, last.BubblesCount)
	assert.True(t, last.Success)
}

func TestWebSocketReportsErrors(t *testing.T) {
	s := newTestServer(t, &fakeProcessor{result: sampleResult()}, nil)
	conn := dialWS(t, s)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Error, "Invalid JSON")

	require.NoError(t, conn.WriteJSON(OCRRequest{}))
	msg = WSMessage{}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "No image", msg.Error)
}
