package socket

import (
	"log"
	"time"

	socketio "github.com/googollee/go-socket.io"

	"sonar_server/services"
)

// NewSocketServer initializes and returns a new Socket.IO server with the
// session lifecycle handlers attached. Pairing handlers are registered
// separately once the services exist.
func NewSocketServer() *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(s socketio.Conn) error {
		log.Println("✅ Socket connected:", s.ID())
		return nil
	})

	// join binds a connection to its party's channel so core notifications
	// reach it
	server.OnEvent("/", "join", func(s socketio.Conn, data map[string]string) {
		partyID := data["partyId"]
		if partyID == "" {
			log.Println("❌ Invalid partyId in join request")
			return
		}
		log.Printf("👥 Socket %s joined party channel %s\n", s.ID(), partyID)
		s.Join("party:" + partyID)
	})

	server.OnError("/", func(s socketio.Conn, err error) {
		log.Println("⚠️ Socket error:", err)
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Println("❌ Socket disconnected:", reason)
	})

	return server
}

// PartyNotifier publishes core notifications to a party's room. It is the
// transport half of the core's per-party pub/sub channel.
type PartyNotifier struct {
	Server *socketio.Server
}

func (n *PartyNotifier) Publish(partyID string, event string, payload interface{}) {
	n.Server.BroadcastToRoom("/", "party:"+partyID, event, payload)
}

// RegisterSonicHandlers wires the sonic pairing events onto the server.
func RegisterSonicHandlers(server *socketio.Server, sonic *services.SonicService) {
	server.OnEvent("/", "announce-presence", func(s socketio.Conn, data map[string]string) {
		assignment, err := sonic.Announce(data["partyId"], data["eventId"], time.Now())
		if err != nil {
			log.Printf("❌ announce-presence rejected for %s: %v\n", data["partyId"], err)
			s.Emit(services.EventRetryRequested, map[string]string{"reason": err.Error()})
			return
		}
		s.Emit(services.EventSlotAssigned, assignment)
	})

	server.OnEvent("/", "report-detection", func(s socketio.Conn, data map[string]interface{}) {
		partyID, _ := data["partyId"].(string)
		slot, _ := data["detectedSlot"].(float64)

		outcome, err := sonic.Report(partyID, int(slot), time.Now())
		if err != nil {
			log.Printf("❌ report-detection rejected for %s: %v\n", partyID, err)
			s.Emit(services.EventRetryRequested, map[string]string{"reason": err.Error()})
			return
		}
		if !outcome.Matched {
			s.Emit(services.EventRetryRequested, map[string]string{"reason": outcome.Reason})
		}
		// match-resolved fan-out happens through the party channels
	})

	server.OnEvent("/", "stop-presence", func(s socketio.Conn, data map[string]string) {
		id := data["partyId"]
		if id == "" {
			id = data["eventId"]
		}
		sonic.StopPresence(id)
	})
}
