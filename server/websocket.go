package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// websocketError is sent in a text frame when a request cannot be rendered. Rendered images are
// sent in binary frames.
type websocketError struct {
	Error string `json:"error"`
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warningf("Accepting websocket from %s - %s", r.RemoteAddr, err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	for {
		var request RenderRequest
		if err := wsjson.Read(ctx, conn, &request); err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && !errors.Is(err, context.Canceled) {
				s.logger.Warningf("Reading websocket request from %s - %s", r.RemoteAddr, err)
			}
			return
		}

		reply, err := s.RenderImage(ctx, request)
		if err != nil {
			if !isRequestError(err) {
				s.logger.Errorf("Rendering websocket request %s %s - %s", request.Kind, request.Camera, err)
			}
			err = wsjson.Write(ctx, conn, websocketError{Error: err.Error()})
		} else {
			err = conn.Write(ctx, websocket.MessageBinary, reply.Image)
		}
		if err != nil {
			s.logger.Warningf("Writing websocket reply to %s - %s", r.RemoteAddr, err)
			return
		}
	}
}
