// Package sse provides Server-Sent Events support for real-time notifications.
package sse

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"leadboard_backend/platform/httpkit"
	"leadboard_backend/platform/logger"
	"leadboard_backend/platform/metrics"

	"github.com/gin-gonic/gin"
)

// EventType represents different types of SSE events
type EventType string

const (
	EventConnected    EventType = "connected"
	EventLeadsChanged EventType = "leads_changed"
	EventPing         EventType = "ping"
)

const defaultHeartbeat = 25 * time.Second

// Event represents an SSE event payload. leads_changed carries no lead data;
// clients re-list.
type Event struct {
	Type EventType `json:"type"`
	At   time.Time `json:"at"`
}

// ChangeSource hands out change signal subscriptions.
type ChangeSource interface {
	Subscribe() (<-chan struct{}, func())
}

// Service streams change signals to connected browsers.
type Service struct {
	source    ChangeSource
	log       *logger.Logger
	heartbeat time.Duration
	clients   atomic.Int64
	metrics   *metrics.Metrics
}

// New creates a new SSE service
func New(source ChangeSource, log *logger.Logger) *Service {
	return &Service{source: source, log: log, heartbeat: defaultHeartbeat}
}

// SetHeartbeat changes the keep-alive interval.
func (s *Service) SetHeartbeat(d time.Duration) {
	if d > 0 {
		s.heartbeat = d
	}
}

// SetMetrics enables the connected-clients gauge.
func (s *Service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Clients returns the number of open streams.
func (s *Service) Clients() int64 {
	return s.clients.Load()
}

// Handler returns a Gin handler for SSE connections. Each connection holds one
// change subscription for its lifetime; it is released when the client goes
// away, so nothing is delivered after disconnect.
func (s *Service) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := httpkit.MustGetIdentity(c)
		if identity == nil {
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		signals, unsubscribe := s.source.Subscribe()
		defer unsubscribe()
		s.track(1)
		defer s.track(-1)

		c.SSEvent(string(EventConnected), gin.H{"userId": identity.UserID()})
		c.Writer.Flush()

		s.log.Debug("sse client connected", "userId", identity.UserID())

		ticker := time.NewTicker(s.heartbeat)
		defer ticker.Stop()

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				s.log.Debug("sse client disconnected", "userId", identity.UserID())
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				s.send(c, EventLeadsChanged)
			case <-ticker.C:
				s.send(c, EventPing)
			}
		}
	}
}

func (s *Service) send(c *gin.Context, eventType EventType) {
	data, _ := json.Marshal(Event{Type: eventType, At: time.Now().UTC()})
	c.SSEvent(string(eventType), string(data))
	c.Writer.Flush()
}

func (s *Service) track(delta int64) {
	s.clients.Add(delta)
	if s.metrics != nil {
		s.metrics.SSEClients.Add(float64(delta))
	}
}
