package handler

import (
	"net/http"
	"time"

	"detectwidget/internal/middleware"

	"github.com/gorilla/websocket"
)

// Upgrader upgrades HTTP connections to WebSocket for same-origin pages.
var Upgrader = websocket.Upgrader{}

// ViewWebsocketHandler registers a page's connection with the hub under the
// caller's session so it receives loading updates for that session.
func ViewWebsocketHandler(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if env.Hub == nil {
			http.Error(w, "Live updates disabled", http.StatusNotFound)
			return
		}

		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			env.Logger.Error("WebSocket upgrade error: %v", err)
			return
		}
		connection.SetReadLimit(512)
		connection.SetReadDeadline(time.Now().Add(60 * time.Second))
		connection.SetPongHandler(func(appData string) error {
			connection.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		env.Hub.Register(connection, middleware.SessionID(r.Context()))
		defer env.Hub.Unregister(connection)

		for {
			if _, _, err := connection.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					env.Logger.Warning("Viewer disconnected with error: %v", err)
				}
				return
			}
			// Any client message counts as a keepalive.
			connection.SetReadDeadline(time.Now().Add(60 * time.Second))
		}
	}
}
