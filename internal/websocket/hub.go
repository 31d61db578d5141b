package websocket

import "github.com/rs/zerolog/log"

type topicMessage struct {
	topic   string
	client  *Client // When set, deliver to this client only
	message []byte
}

type subscription struct {
	client *Client
	topic  string
	add    bool
}

// Hub maintains the set of active clients and routes messages to them.
// All client and subscription state is owned by the Run loop.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Messages for every subscriber of a topic.
	broadcast chan topicMessage

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	subscribe chan subscription

	// A map of topics to the set of clients subscribed to it.
	subscriptions map[string]map[*Client]bool

	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:     make(chan topicMessage, 64),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		subscribe:     make(chan subscription),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		done:          make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.Register:
			h.clients[client] = true
			h.addSubscription(client, GlobalTopic)
			log.Info().Int("total_clients", len(h.clients)).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case sub := <-h.subscribe:
			if _, ok := h.clients[sub.client]; !ok {
				continue
			}
			if sub.add {
				h.addSubscription(sub.client, sub.topic)
			} else {
				h.removeSubscription(sub.client, sub.topic)
			}
		case msg := <-h.broadcast:
			if msg.client != nil {
				if _, ok := h.clients[msg.client]; ok {
					h.deliver(msg.client, msg.message)
				}
				continue
			}
			for client := range h.subscriptions[msg.topic] {
				h.deliver(client, msg.message)
			}
		}
	}
}

func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		// Slow consumer; cut it loose.
		h.drop(client)
	}
}

// Stop terminates the Run loop and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// BroadcastTo sends a message to all clients subscribed to a topic.
// It is safe to call from any goroutine.
func (h *Hub) BroadcastTo(topic string, message []byte) {
	if message == nil {
		return
	}
	select {
	case h.broadcast <- topicMessage{topic: topic, message: message}:
	case <-h.done:
	}
}

// Join registers a client with the hub.
func (h *Hub) Join(client *Client) {
	select {
	case h.Register <- client:
	case <-h.done:
	}
}

// Leave unregisters a client. Safe to call after Stop.
func (h *Hub) Leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// Reply sends a message to a single client.
func (h *Hub) Reply(client *Client, message []byte) {
	if message == nil {
		return
	}
	select {
	case h.broadcast <- topicMessage{client: client, message: message}:
	case <-h.done:
	}
}

// Subscribe adds a client to a topic.
func (h *Hub) Subscribe(client *Client, topic string) {
	h.send(subscription{client: client, topic: topic, add: true})
}

// Unsubscribe removes a client from a topic.
func (h *Hub) Unsubscribe(client *Client, topic string) {
	h.send(subscription{client: client, topic: topic})
}

func (h *Hub) send(sub subscription) {
	select {
	case h.subscribe <- sub:
	case <-h.done:
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.Send)
	for topic, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, topic)
			}
		}
	}
}

func (h *Hub) addSubscription(client *Client, topic string) {
	if h.subscriptions[topic] == nil {
		h.subscriptions[topic] = make(map[*Client]bool)
	}
	h.subscriptions[topic][client] = true
}

func (h *Hub) removeSubscription(client *Client, topic string) {
	if subs, ok := h.subscriptions[topic]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, topic)
		}
	}
}
