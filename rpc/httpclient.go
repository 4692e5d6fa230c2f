package rpc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/rpc"
	"os"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
)

// connectedStatus is the status line net/rpc answers a CONNECT to its HTTP path with.
const connectedStatus = "200 Connected to Go RPC"

var ErrNotConnected = errors.New("not connected")

type HttpClient struct {
	serverAddress string
	client        *rpc.Client

	Logger bslogger.Logger
	Name   string
}

func NewHttpClient(serverAddress string, name string, logFile *os.File) *HttpClient {
	return &HttpClient{
		serverAddress: serverAddress,
		Logger:        bslogger.NewLogger(name, bslogger.Normal, logFile),
		Name:          name,
	}
}

// Connect dials the server and switches the connection to net/rpc. ctx bounds the dial and the
// CONNECT handshake.
func (hc *HttpClient) Connect(ctx context.Context) error {
	if hc.client != nil {
		hc.Logger.Warningf("Already connected to server at address %s", hc.serverAddress)
		return nil
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", hc.serverAddress)
	if err != nil {
		hc.Logger.Errorf("Error connecting to server at address %s : %s", hc.serverAddress, err)
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	if err := handshake(conn); err != nil {
		conn.Close()
		hc.Logger.Errorf("Error switching to rpc at address %s : %s", hc.serverAddress, err)
		return err
	}
	conn.SetDeadline(time.Time{})

	hc.client = rpc.NewClient(conn)
	hc.Logger.Infof("Connected to server at %s", hc.serverAddress)
	return nil
}

func handshake(conn net.Conn) error {
	if _, err := io.WriteString(conn, "CONNECT "+rpc.DefaultRPCPath+" HTTP/1.0\n\n"); err != nil {
		return err
	}
	response, err := http.ReadResponse(bufio.NewReader(conn), &http.Request{Method: http.MethodConnect})
	if err != nil {
		return err
	}
	if response.Status != connectedStatus {
		return fmt.Errorf("unexpected response %q", response.Status)
	}
	return nil
}

// Call invokes method and waits for the reply or for ctx to end. A canceled call still completes
// on the server.
func (hc *HttpClient) Call(ctx context.Context, method string, request interface{}, reply interface{}) error {
	if hc.client == nil {
		hc.Logger.Errorf("Calling server at address %s : method %s - %s", hc.serverAddress, method, ErrNotConnected)
		return fmt.Errorf("%s %s: %w", hc.serverAddress, method, ErrNotConnected)
	}

	call := hc.client.Go(method, request, reply, make(chan *rpc.Call, 1))
	select {
	case <-call.Done:
	case <-ctx.Done():
		hc.Logger.Warningf("Abandoned call to server at address %s : method %s", hc.serverAddress, method)
		return ctx.Err()
	}
	if call.Error != nil {
		hc.Logger.Errorf("Calling server at address %s : method %s - %s", hc.serverAddress, method, call.Error)
		return call.Error
	}
	hc.Logger.Debugf("Calling server %s", method)
	return nil
}

func (hc *HttpClient) Disconnect() error {
	if hc.client == nil {
		hc.Logger.Warningf("Already disconnected from server at address %s", hc.serverAddress)
		return fmt.Errorf("%s: %w", hc.serverAddress, ErrNotConnected)
	}

	err := hc.client.Close()
	hc.client = nil
	if err != nil {
		hc.Logger.Errorf("Disconnecting from server at address %s", hc.serverAddress)
		return err
	}
	hc.Logger.Infof("Disconnected from server at %s", hc.serverAddress)
	return nil
}
