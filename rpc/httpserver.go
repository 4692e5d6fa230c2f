// Package rpc runs an HTTP listener that serves plain handlers and net/rpc services side by side.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/rpc"
	"os"
	"sync"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
)

type HttpServer struct {
	address  string
	handler  http.Handler
	listener net.Listener
	mux      *http.ServeMux
	services map[string]interface{}
	server   *http.Server

	Logger bslogger.Logger
	Name   string
	WG     *sync.WaitGroup
}

// NewHttpServer serves handler at "/" and every registered service at rpc.DefaultRPCPath.
func NewHttpServer(address string, name string, handler http.Handler, logFile *os.File) *HttpServer {
	return &HttpServer{
		address:  address,
		handler:  handler,
		mux:      http.NewServeMux(),
		services: make(map[string]interface{}),
		Logger:   bslogger.NewLogger(name, bslogger.Normal, logFile),
		Name:     name,
		WG:       &sync.WaitGroup{},
	}
}

// RegisterService must be called before Run.
func (hs *HttpServer) RegisterService(name string, object interface{}) {
	hs.services[name] = object
}

func (hs *HttpServer) Run() error {
	handler := rpc.NewServer()
	for name, object := range hs.services {
		if err := handler.RegisterName(name, object); err != nil {
			hs.Logger.Errorf("Registering service %s", name)
			return err
		}
	}
	hs.mux.Handle(rpc.DefaultRPCPath, handler)
	hs.mux.Handle("/", hs.handler)

	var err error
	hs.listener, err = net.Listen("tcp", hs.address)
	if err != nil {
		hs.Logger.Errorf("Listening at address %s", hs.address)
		return err
	}

	hs.server = &http.Server{
		Handler:           hs.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	hs.WG.Add(1)
	go func() {
		defer hs.WG.Done()
		if err := hs.server.Serve(hs.listener); !errors.Is(err, http.ErrServerClosed) {
			hs.Logger.Errorf("Error serving at address %s - %s", hs.Addr(), err)
		}
	}()

	hs.Logger.Infof("Running server at address %s", hs.Addr())
	return nil
}

// Addr is the bound listener address, which differs from the configured one for port 0.
func (hs *HttpServer) Addr() string {
	if hs.listener == nil {
		return hs.address
	}
	return hs.listener.Addr().String()
}

func (hs *HttpServer) Stop(ctx context.Context) error {
	if hs.server == nil {
		return fmt.Errorf("server at address %s is not running", hs.address)
	}
	if err := hs.server.Shutdown(ctx); err != nil {
		hs.Logger.Errorf("Shutting down server at address %s", hs.Addr())
		return err
	}
	hs.WG.Wait()
	hs.Logger.Infof("Shut down server at address %s", hs.Addr())
	return nil
}
