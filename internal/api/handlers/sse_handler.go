package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/raksetu/bloodhub/internal/application/services"
	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/domain/providers"
)

const defaultHeartbeatInterval = 30 * time.Second

// SSEHandler streams the active emergency list as it changes
type SSEHandler struct {
	eventBus  providers.EventBus
	service   EmergencyBrowser
	profiles  ProfileReader
	heartbeat time.Duration
	clients   map[chan *entities.EmergencyEvent]string // client -> user ID
	mu        sync.RWMutex
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus, service EmergencyBrowser, profiles ProfileReader) *SSEHandler {
	return &SSEHandler{
		eventBus:  eventBus,
		service:   service,
		profiles:  profiles,
		heartbeat: defaultHeartbeatInterval,
		clients:   make(map[chan *entities.EmergencyEvent]string),
	}
}

// StreamEmergencies handles GET /api/emergencies/stream
//
// The stream opens with "connected" and the current list. Every change on the
// bus is forwarded as its own event type (created, updated, fulfilled)
// followed by a fresh "emergencies" list for the caller's filters.
func (h *SSEHandler) StreamEmergencies(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	params, err := parseListParams(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	eventChan, err := h.eventBus.Subscribe(r.Context(), providers.EventChannelEmergencyUpdates)
	if err != nil {
		log.Error().Err(err).Str("channel", providers.EventChannelEmergencyUpdates).Msg("failed to subscribe")
		respondWithError(w, http.StatusServiceUnavailable, "live updates unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientChan := make(chan *entities.EmergencyEvent, 10)
	h.registerClient(userID, clientChan)
	defer h.unregisterClient(clientChan)

	params.Viewer = loadViewer(r.Context(), h.profiles, userID)

	h.sendEvent(w, "connected", map[string]interface{}{
		"timestamp": time.Now().UTC(),
	})
	h.sendList(r.Context(), w, params)
	flusher.Flush()

	go h.forwardEvents(r.Context(), eventChan, clientChan)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Debug().Str("user_id", userID).Msg("client disconnected from emergency stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now().UTC(),
			})
			flusher.Flush()
		case event := <-clientChan:
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.Type), event)
			h.sendList(r.Context(), w, params)
			flusher.Flush()
		}
	}
}

func (h *SSEHandler) sendList(ctx context.Context, w http.ResponseWriter, params services.EmergencyListParams) {
	result, err := h.service.List(ctx, params)
	if err != nil {
		log.Warn().Err(err).Msg("failed to list emergencies for stream")
		h.sendEvent(w, "error", map[string]string{"error": "failed to load emergencies"})
		return
	}
	h.sendEvent(w, "emergencies", result)
}

// forwardEvents forwards events from the event bus to a client channel
func (h *SSEHandler) forwardEvents(ctx context.Context, eventChan <-chan *entities.EmergencyEvent, clientChan chan<- *entities.EmergencyEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			select {
			case clientChan <- event:
			default:
				// Client channel full, the next list refresh catches up
			}
		}
	}
}

func (h *SSEHandler) registerClient(userID string, clientChan chan *entities.EmergencyEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[clientChan] = userID
	log.Debug().Str("user_id", userID).Int("total", len(h.clients)).Msg("stream client registered")
}

func (h *SSEHandler) unregisterClient(clientChan chan *entities.EmergencyEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, clientChan)
	log.Debug().Int("remaining", len(h.clients)).Msg("stream client unregistered")
}

// sendEvent sends an SSE event to the client
func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("failed to marshal event data")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// GetClientCount returns the number of connected clients
func (h *SSEHandler) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
