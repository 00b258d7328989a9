package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/paulwritescode/minidb/internal/types"
)

var upgrader = websocket.Upgrader{
	WriteBufferSize: 1024 * 10,
	ReadBufferSize:  1024 * 10,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsRequest is one command frame. When auth is enabled the first frame must
// carry credentials instead.
type wsRequest struct {
	ID       int    `json:"id"`
	SQL      string `json:"sql"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type wsResponse struct {
	ID       int         `json:"id"`
	Columns  []string    `json:"columns,omitempty"`
	Rows     []types.Row `json:"rows,omitempty"`
	Affected int         `json:"affected"`
	Error    *errorBody  `json:"error,omitempty"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		types.GlobalLogger.Error("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()
	types.GlobalLogger.Info("websocket connection from %s", conn.RemoteAddr())

	authed := !s.auth.enabled
	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		if !authed {
			if _, ok := s.auth.login(req.Username, req.Password); !ok {
				conn.WriteJSON(wsResponse{ID: req.ID, Error: &errorBody{
					Kind: "unauthorized", Message: "invalid credentials",
				}})
				return
			}
			authed = true
			conn.WriteMessage(websocket.TextMessage, []byte("connected"))
			continue
		}

		res, err := s.execute(req.SQL)
		if err != nil {
			resp := wsResponse{ID: req.ID, Error: &errorBody{Kind: "internal", Message: err.Error()}}
			if kind, ok := types.KindOf(err); ok {
				resp.Error.Kind = kind.String()
			}
			if writeErr := conn.WriteJSON(resp); writeErr != nil {
				return
			}
			continue
		}
		if err := conn.WriteJSON(wsResponse{
			ID:       req.ID,
			Columns:  res.Columns,
			Rows:     res.Rows,
			Affected: res.Affected,
		}); err != nil {
			return
		}
	}
}
