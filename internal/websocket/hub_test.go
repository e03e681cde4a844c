package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sushishop/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParser map[string]*model.Actor

func (f fakeParser) ParseToken(token string) (*model.Actor, error) {
	if a, ok := f[token]; ok {
		return a, nil
	}
	return nil, errors.New("invalid token")
}

func startServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	parser := fakeParser{
		"admin": {UserID: uuid.New(), Role: model.RoleAdmin},
		"guest": {UserID: uuid.New(), Role: model.RoleUser},
	}
	r := gin.New()
	r.GET("/ws", ServeWs(hub, parser))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, srv
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
}

func TestServeWs_RejectsNonAdmins(t *testing.T) {
	_, srv := startServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "guest"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, "nope"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPublish_ReachesAdminSession(t *testing.T) {
	hub, srv := startServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "admin"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish("stock.intake", map[string]string{"ingredient_name": "Лосось"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "stock.intake", msg.Event)
	assert.Equal(t, "Лосось", msg.Data["ingredient_name"])
}

func TestPublish_DoesNotBlockWithoutRunLoop(t *testing.T) {
	hub := NewHub(nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.Publish("stock.delete", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
}

func TestHub_StoppedDoesNotBlockSessions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	left := make(chan struct{})
	go func() {
		hub.leave(&Client{Hub: hub, Send: make(chan []byte)})
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("unregister blocked after shutdown")
	}

	r := gin.New()
	r.GET("/ws", ServeWs(hub, fakeParser{"admin": {UserID: uuid.New(), Role: model.RoleAdmin}}))
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "admin"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
	assert.Zero(t, hub.ClientCount())
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://admin.sushi.local"})

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "https://admin.sushi.local")
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(r))
}
