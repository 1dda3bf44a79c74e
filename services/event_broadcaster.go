package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"nba-predictions-go/logging"
	"nba-predictions-go/models"
)

// EventClient is one connected event-stream subscriber
type EventClient struct {
	Channel chan string
	UserID  string
}

// EventBroadcaster fans server-sent events out to every connected client
type EventBroadcaster struct {
	mu             sync.RWMutex
	clients        map[*EventClient]bool
	messageCounter uint64
	heartbeat      time.Duration
	stop           chan struct{}
	stopOnce       sync.Once
	logger         *logging.Logger
}

// NewEventBroadcaster starts the heartbeat loop when heartbeat > 0
func NewEventBroadcaster(heartbeat time.Duration) *EventBroadcaster {
	b := &EventBroadcaster{
		clients:   make(map[*EventClient]bool),
		heartbeat: heartbeat,
		stop:      make(chan struct{}),
		logger:    logging.WithPrefix("SSE"),
	}
	if heartbeat > 0 {
		go b.heartbeatLoop()
	}
	return b
}

// AddClient registers a subscriber
func (b *EventBroadcaster) AddClient(userID string) *EventClient {
	client := &EventClient{
		Channel: make(chan string, 100),
		UserID:  userID,
	}
	b.mu.Lock()
	b.clients[client] = true
	b.mu.Unlock()
	return client
}

// RemoveClient unregisters a subscriber and closes its channel
func (b *EventBroadcaster) RemoveClient(client *EventClient) {
	b.mu.Lock()
	if b.clients[client] {
		delete(b.clients, client)
		close(client.Channel)
	}
	b.mu.Unlock()
}

// ClientCount returns the number of connected clients
func (b *EventBroadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// BroadcastToAllClients sends a sequenced event to every client; full buffers drop the message
func (b *EventBroadcaster) BroadcastToAllClients(eventType, data string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.clients) == 0 {
		return
	}

	msgID := atomic.AddUint64(&b.messageCounter, 1)
	message := fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", msgID, eventType, singleLine(data))

	for client := range b.clients {
		select {
		case client.Channel <- message:
		default:
			b.logger.Warnf("Client channel full, skipping message %d", msgID)
		}
	}
}

// PredictionRecorded tells clients that stats for a team changed
func (b *EventBroadcaster) PredictionRecorded(p *models.Prediction) {
	payload, err := json.Marshal(struct {
		TeamName string `json:"team_name"`
		Opponent string `json:"opponent"`
		Username string `json:"username,omitempty"`
	}{p.TeamName, p.Opponent, p.Username})
	if err != nil {
		b.logger.Errorf("Encoding prediction event: %v", err)
		return
	}
	b.BroadcastToAllClients("stats-updated", string(payload))
}

func (b *EventBroadcaster) heartbeatLoop() {
	ticker := time.NewTicker(b.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.BroadcastToAllClients("heartbeat", "keep-alive")
		case <-b.stop:
			return
		}
	}
}

// Stop ends the heartbeat loop
func (b *EventBroadcaster) Stop() {
	b.stopOnce.Do(func() { close(b.stop) })
}

// singleLine keeps a payload within one SSE data field
func singleLine(data string) string {
	return strings.NewReplacer("\r", "", "\n", " ").Replace(data)
}
