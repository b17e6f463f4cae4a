package feed

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"collabcore/internal/core/domain"
	"collabcore/internal/infrastructure/events"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // tighten for production deployments
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// WebSocketFeed streams registry events to connected observers. Each
// connection holds its own bus subscription; filters are applied per
// connection so one slow dashboard cannot affect another.
type WebSocketFeed struct {
	bus *events.Bus

	mu          sync.RWMutex
	connections map[*websocket.Conn]struct{}

	pingInterval time.Duration
	writeTimeout time.Duration
	readTimeout  time.Duration

	logger *zap.SugaredLogger
}

func NewWebSocketFeed(bus *events.Bus, logger *zap.SugaredLogger) *WebSocketFeed {
	return &WebSocketFeed{
		bus:          bus,
		connections:  make(map[*websocket.Conn]struct{}),
		pingInterval: 30 * time.Second,
		writeTimeout: 10 * time.Second,
		readTimeout:  90 * time.Second,
		logger:       logger,
	}
}

// HandleFeed upgrades the request and streams events until the client
// disconnects. Query parameters:
//
//	session_id  only events for this session (empty = all)
//	types       comma-separated event type filter (empty = all)
func (f *WebSocketFeed) HandleFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		f.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionFilter := domain.SessionID(c.Query("session_id"))
	typeFilter := parseTypeFilter(c.Query("types"))

	f.mu.Lock()
	f.connections[conn] = struct{}{}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		delete(f.connections, conn)
		f.mu.Unlock()
	}()

	f.logger.Infow("feed observer connected",
		"remote", conn.RemoteAddr().String(),
		"session_filter", sessionFilter,
	)

	eventCh, unsubscribe := f.bus.Subscribe(256)
	defer unsubscribe()

	conn.SetReadDeadline(time.Now().Add(f.readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(f.readTimeout))
		return nil
	})

	// Reader goroutine exists only to detect disconnects; the feed is
	// one-way.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			conn.SetReadDeadline(time.Now().Add(f.readTimeout))
		}
	}()

	pingTicker := time.NewTicker(f.pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			if !matches(event, sessionFilter, typeFilter) {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(f.writeTimeout))
			if err := conn.WriteJSON(event); err != nil {
				f.logger.Debugw("feed write failed, dropping observer", "error", err)
				return
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(f.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			f.logger.Infow("feed observer disconnected", "remote", conn.RemoteAddr().String())
			return
		}
	}
}

// ObserverCount reports the number of connected observers.
func (f *WebSocketFeed) ObserverCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.connections)
}

func parseTypeFilter(raw string) map[domain.EventType]struct{} {
	if raw == "" {
		return nil
	}
	filter := make(map[domain.EventType]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			filter[domain.EventType(part)] = struct{}{}
		}
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}

func matches(event *domain.Event, sessionFilter domain.SessionID, typeFilter map[domain.EventType]struct{}) bool {
	if sessionFilter != "" && event.SessionID != sessionFilter {
		return false
	}
	if typeFilter != nil {
		if _, ok := typeFilter[event.Type]; !ok {
			return false
		}
	}
	return true
}
