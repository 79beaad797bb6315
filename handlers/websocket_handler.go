package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/Dosada05/competition-system/realtime"
	"github.com/Dosada05/competition-system/services"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin.
		return true
	},
}

type WebSocketHandler struct {
	hub         *realtime.Hub
	teamService services.TeamService
}

func NewWebSocketHandler(hub *realtime.Hub, teamService services.TeamService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		teamService: teamService,
	}
}

// ServeTeam подписывает клиента на события ростера команды.
// Клиент подключается к /ws/teams/{id}.
func (h *WebSocketHandler) ServeTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Комнаты создаются только для существующих команд.
	if _, err := h.teamService.GetTeamByID(r.Context(), teamID); err != nil {
		if errors.Is(err, services.ErrTeamNotFound) {
			notFoundResponse(w, r)
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отправляет HTTP-ошибку клиенту.
		log.Printf("failed to upgrade connection for team %d: %v", teamID, err)
		return
	}

	client := &realtime.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: realtime.TeamRoom(teamID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
