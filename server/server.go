// Package server exposes the mandelbrot and checkerboard renderers over HTTP, websocket and net/rpc.
package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/BrugadaSyndrome/FractalServer/checkerboard"
	"github.com/BrugadaSyndrome/FractalServer/mandelbrot"
	"github.com/BrugadaSyndrome/FractalServer/misc"
	"github.com/BrugadaSyndrome/FractalServer/render"
	"github.com/BrugadaSyndrome/FractalServer/rpc"
	"github.com/BrugadaSyndrome/FractalServer/worker"
	"github.com/BrugadaSyndrome/bslogger"
)

type Server struct {
	checkerboard checkerboard.Checkerboard
	favicon      []byte
	httpServer   *rpc.HttpServer
	logger       bslogger.Logger
	mandelbrot   mandelbrot.Mandelbrot
	renderer     *render.Renderer
	settings     Settings
}

func NewServer(settings Settings, logFile *os.File) (*Server, error) {
	if err := settings.Verify(); err != nil {
		return nil, err
	}

	cb, err := checkerboard.NewCheckerboard(settings.CheckerboardSettings)
	if err != nil {
		return nil, err
	}

	s := &Server{
		checkerboard: cb,
		logger:       bslogger.NewLogger("Server", bslogger.Normal, logFile),
		mandelbrot:   mandelbrot.NewMandelbrot(settings.MandelbrotSettings),
		settings:     settings,
	}
	s.renderer = render.NewRenderer(worker.NewPool(settings.Workers), settings.TaskGeneration, s.logger)

	s.favicon, err = s.renderFavicon()
	if err != nil {
		return nil, fmt.Errorf("rendering favicon: %w", err)
	}

	s.httpServer = rpc.NewHttpServer(settings.ServerAddress, "HttpServer", s.Handler(), logFile)
	s.httpServer.RegisterService("RenderService", &RenderService{server: s})
	return s, nil
}

// Handler routes the HTTP endpoints. net/rpc is mounted next to it by Run.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /favicon.ico", s.handleFavicon)
	mux.HandleFunc("GET /mandelbrot", s.handleImage(KindMandelbrot))
	mux.HandleFunc("GET /checkerboard", s.handleImage(KindCheckerboard))
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	return s.logRequests(mux)
}

func (s *Server) Run() error {
	if err := s.httpServer.Run(); err != nil {
		return err
	}

	address, err := misc.GetLocalAddress()
	if misc.CheckError(err, s.logger, misc.Warning, "Looking up local address") {
		return nil
	}
	s.logger.Infof("Serving on http://%s/", net.JoinHostPort(address, s.port()))
	return nil
}

func (s *Server) port() string {
	_, port, err := net.SplitHostPort(s.httpServer.Addr())
	if err != nil {
		return ""
	}
	return port
}

// Addr is the address the server is listening on once Run has returned.
func (s *Server) Addr() string {
	return s.httpServer.Addr()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Stop(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(sr.ResponseWriter).Hijack()
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Infof("%s %s %d %s", r.Method, r.URL.RequestURI(), recorder.status, time.Since(startTime))
	})
}
