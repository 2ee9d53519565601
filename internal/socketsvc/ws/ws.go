package ws

import (
	"encoding/json"
	"sync"

	"github.com/tapturf/turf-services/internal/comm"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Ws tracks live sockets and which user each one authenticated as.
// A user may hold several sockets (tabs, devices); every one of them
// gets the push.
type Ws struct {
	connMap sync.Map // socketId -> *websocket.Conn
	userMap sync.Map // socketId -> userId
}

func NewWs() *Ws {
	return &Ws{}
}

// SocketMessage handles a message from a web client.
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "init":
		s.handleInit(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

// handleInit binds the socket to a user id so notification events can
// be routed to it.
func (s *Ws) handleInit(socketId string, msg *comm.WSMessage) {
	var payload comm.InitPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Errorf("Error: invalid_init_data Malformed init payload %s", err)
		return
	}

	if payload.UserId == "" {
		log.Error("Invalid init payload: missing user id")
		return
	}

	s.userMap.Store(socketId, payload.UserId)
	log.Infof("socket %s bound to user %s", socketId, payload.UserId)

	if conn, ok := s.GetConnection(socketId); ok {
		ack := map[string]string{"type": "init-ack", "socketid": socketId}
		if err := conn.WriteJSON(ack); err != nil {
			log.Errorf("failed to ack init for socket %s: %v", socketId, err)
		}
	}
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

// GetUserSockets returns every socket bound to the user.
func (s *Ws) GetUserSockets(userId string) ([]string, bool) {
	var sockets []string
	found := false

	s.userMap.Range(func(key, value interface{}) bool {
		if value.(string) == userId {
			sockets = append(sockets, key.(string))
			found = true
		}
		return true // continue iterating
	})

	return sockets, found
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.userMap.Delete(socketId)
}
