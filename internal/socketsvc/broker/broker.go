package broker

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/tapturf/turf-services/internal/comm"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Broker consumes notification events off NATS and pushes them to the
// recipient's live sockets. It also tracks which backend services have
// reported a heartbeat recently.
type Broker struct {
	Conn             *nats.Conn
	GetConnection    func(string) (*websocket.Conn, bool)
	GetUserSockets   func(string) ([]string, bool)
	LastHeartbeatMap sync.Map // serviceId -> last heartbeat time
}

func NewBroker(conn *nats.Conn, fncGetConnection func(string) (*websocket.Conn, bool),
	fncGetUserSockets func(string) ([]string, bool)) *Broker {
	return &Broker{
		Conn:           conn,
		GetConnection:  fncGetConnection,
		GetUserSockets: fncGetUserSockets,
	}
}

// Subscribe consumes notification events from the turf service.
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// SubscribeHeartbeats records service liveness, so stale push sources
// can be spotted in the logs.
func (b *Broker) SubscribeHeartbeats() (*nats.Subscription, error) {
	return b.Conn.Subscribe(comm.HeartbeatTopic, func(msgNats *nats.Msg) {
		hb := &comm.ServiceHeartbeat{}
		if err := json.Unmarshal(msgNats.Data, hb); err != nil {
			log.Errorf("Error decoding heartbeat: %s", err)
			return
		}
		if _, seen := b.LastHeartbeatMap.Load(hb.ID); !seen {
			log.Infof("service %s is up", hb.ID)
		}
		b.LastHeartbeatMap.Store(hb.ID, hb.Timestamp)
	})
}

// SubscribeShutdowns clears liveness state for services that announced
// a graceful stop.
func (b *Broker) SubscribeShutdowns() (*nats.Subscription, error) {
	return b.Conn.Subscribe(comm.ShutdownTopic, func(msgNats *nats.Msg) {
		sd := &comm.ServiceShutdown{}
		if err := json.Unmarshal(msgNats.Data, sd); err != nil {
			log.Errorf("Error decoding shutdown event: %s", err)
			return
		}
		b.LastHeartbeatMap.Delete(sd.ID)
		log.Infof("service %s announced shutdown", sd.ID)
	})
}

// StaleSince lists services whose last heartbeat is older than cutoff.
func (b *Broker) StaleSince(cutoff time.Time) []string {
	var stale []string
	b.LastHeartbeatMap.Range(func(key, value interface{}) bool {
		if ts, ok := value.(time.Time); ok && ts.Before(cutoff) {
			stale = append(stale, key.(string))
		}
		return true
	})
	return stale
}

func (b *Broker) handleMessages(msgNats *nats.Msg) {
	event := &comm.NotificationEvent{}
	if err := json.Unmarshal(msgNats.Data, event); err != nil {
		log.Errorf("Error decoding notification event: %s", err)
		return
	}

	sockets, ok := b.GetUserSockets(event.UserId)
	if !ok {
		// recipient not connected; they'll see it on the next poll
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Errorf("Error encoding notification event: %s", err)
		return
	}
	msg := &comm.WSMessage{Type: "notification", Data: data}

	for _, socketId := range sockets {
		conn, ok := b.GetConnection(socketId)
		if !ok {
			continue
		}
		if err := conn.WriteJSON(msg); err != nil {
			log.Errorf("failed to push notification to socket %s: %v", socketId, err)
		}
	}
}
