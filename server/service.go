package server

import (
	"context"
)

// RenderService exposes RenderImage over net/rpc as "RenderService.Image".
type RenderService struct {
	server *Server
}

func (rs *RenderService) Image(request RenderRequest, reply *RenderReply) error {
	result, err := rs.server.RenderImage(context.Background(), request)
	if err != nil {
		rs.server.logger.Warningf("RenderService.Image %s %s - %s", request.Kind, request.Camera, err)
		return err
	}
	*reply = result
	return nil
}
