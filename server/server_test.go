package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/BrugadaSyndrome/FractalServer/camera"
	"github.com/BrugadaSyndrome/FractalServer/raster"
	"github.com/BrugadaSyndrome/FractalServer/rpc"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

func newTestServer(t *testing.T, settings Settings) *Server {
	t.Helper()
	if settings.ServerAddress == "" {
		settings.ServerAddress = "127.0.0.1:0"
	}
	s, err := NewServer(settings, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func get(t *testing.T, handler http.Handler, target string) *http.Response {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder.Result()
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, Settings{})
	response := get(t, s.Handler(), "/")
	if response.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", response.StatusCode, http.StatusOK)
	}
	if got := response.Header.Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", got)
	}
	body, _ := io.ReadAll(response.Body)
	for _, link := range []string{"mandelbrot?center_x=-0.75", "mandelbrot?center_x=0.0016", "checkerboard?center_x=0.5", "/favicon.ico"} {
		if !bytes.Contains(body, []byte(link)) {
			t.Errorf("index page is missing %q", link)
		}
	}
}

func TestUnknownPath(t *testing.T) {
	s := newTestServer(t, Settings{})
	if got := get(t, s.Handler(), "/julia").StatusCode; got != http.StatusNotFound {
		t.Errorf("status = %d, want %d", got, http.StatusNotFound)
	}
}

func TestFavicon(t *testing.T) {
	s := newTestServer(t, Settings{})
	response := get(t, s.Handler(), "/favicon.ico")
	if got := response.Header.Get("Content-Type"); got != "image/x-icon" {
		t.Errorf("Content-Type = %q, want image/x-icon", got)
	}
	body, _ := io.ReadAll(response.Body)
	if !bytes.Equal(body[:6], []byte{0, 0, 1, 0, 1, 0}) {
		t.Errorf("icon header = %v", body[:6])
	}
	if body[6] != faviconSize || body[7] != faviconSize {
		t.Errorf("icon size = %dx%d, want %dx%d", body[6], body[7], faviconSize, faviconSize)
	}
	img, format, err := raster.Decode(bytes.NewReader(body[22:]))
	if err != nil {
		t.Fatalf("decoding embedded image: %v", err)
	}
	if format != raster.PNG || img.Width() != faviconSize || img.Height() != faviconSize {
		t.Errorf("embedded image = %s %dx%d", format, img.Width(), img.Height())
	}
}

func TestImageEndpoints(t *testing.T) {
	s := newTestServer(t, Settings{})
	tests := []struct {
		target      string
		contentType string
		format      raster.Format
		width       int
		height      int
	}{
		{"/mandelbrot?center_x=-0.75&center_y=0&width=3&height=2&scale=0.35", "image/png", raster.PNG, 3, 2},
		{"/mandelbrot?center_x=-0.75&center_y=0&width=16&height=9&scale=0.35&palette_scale=3&format=bmp", "image/bmp", raster.BMP, 16, 9},
		{"/checkerboard?center_x=0.5&center_y=-0.333&width=8&height=8&scale=2&format=tiff", "image/tiff", raster.TIFF, 8, 8},
		{"/checkerboard?center_x=0&center_y=0&width=1&height=1&scale=0", "image/png", raster.PNG, 1, 1},
	}
	for _, tt := range tests {
		response := get(t, s.Handler(), tt.target)
		if response.StatusCode != http.StatusOK {
			t.Errorf("GET %s: status = %d", tt.target, response.StatusCode)
			continue
		}
		if got := response.Header.Get("Content-Type"); got != tt.contentType {
			t.Errorf("GET %s: Content-Type = %q, want %q", tt.target, got, tt.contentType)
		}
		body, _ := io.ReadAll(response.Body)
		if got := response.Header.Get("Content-Length"); got != strconv.Itoa(len(body)) {
			t.Errorf("GET %s: Content-Length = %s, body is %d bytes", tt.target, got, len(body))
		}
		img, format, err := raster.Decode(bytes.NewReader(body))
		if err != nil {
			t.Errorf("GET %s: decode: %v", tt.target, err)
			continue
		}
		if format != tt.format || img.Width() != tt.width || img.Height() != tt.height {
			t.Errorf("GET %s: got %s %dx%d, want %s %dx%d", tt.target, format, img.Width(), img.Height(), tt.format, tt.width, tt.height)
		}
	}
}

func TestMandelbrotOriginIsBlack(t *testing.T) {
	s := newTestServer(t, Settings{})
	response := get(t, s.Handler(), "/mandelbrot?center_x=0&center_y=0&width=1&height=1&scale=1")
	img, _, err := raster.Decode(response.Body)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGB(0, 0); got != (color.RGBA{A: 255}) {
		t.Errorf("origin = %v, want black", got)
	}
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t, Settings{MaxPixels: 100})
	valid := url.Values{
		"center_x": {"0"},
		"center_y": {"0"},
		"width":    {"4"},
		"height":   {"4"},
		"scale":    {"1"},
	}
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"missing center_x", "center_x", ""},
		{"missing scale", "scale", ""},
		{"non numeric center_y", "center_y", "north"},
		{"zero width", "width", "0"},
		{"negative width", "width", "-4"},
		{"fractional height", "height", "4.5"},
		{"huge height", "height", "99999999999"},
		{"too many pixels", "width", "26"},
		{"non numeric palette_scale", "palette_scale", "x"},
		{"unknown format", "format", "gif"},
	}
	for _, tt := range tests {
		query := url.Values{}
		for k, v := range valid {
			query[k] = v
		}
		if tt.value == "" {
			query.Del(tt.key)
		} else {
			query.Set(tt.key, tt.value)
		}
		for _, kind := range []string{KindMandelbrot, KindCheckerboard} {
			response := get(t, s.Handler(), "/"+kind+"?"+query.Encode())
			if response.StatusCode != http.StatusBadRequest {
				t.Errorf("%s %s: status = %d, want %d", kind, tt.name, response.StatusCode, http.StatusBadRequest)
			}
		}
	}
}

func TestRenderImageUnknownKind(t *testing.T) {
	s := newTestServer(t, Settings{})
	_, err := s.RenderImage(context.Background(), RenderRequest{
		Kind:   "julia",
		Camera: camera.Camera{Width: 1, Height: 1, Scale: 1},
	})
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("err = %v, want %v", err, ErrUnknownKind)
	}
}

func TestParseCamera(t *testing.T) {
	c, err := ParseCamera(url.Values{
		"center_x":      {"-0.75"},
		"center_y":      {"0.1"},
		"width":         {"1024"},
		"height":        {"768"},
		"scale":         {"0.35"},
		"palette_scale": {"3"},
		"ignored":       {"yes"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.CenterX != -0.75 || c.CenterY != 0.1 || c.Width != 1024 || c.Height != 768 || c.Scale != 0.35 {
		t.Errorf("camera = %+v", c)
	}
	if c.PaletteScale == nil || *c.PaletteScale != 3 {
		t.Errorf("palette scale = %v, want 3", c.PaletteScale)
	}

	_, err = ParseCamera(url.Values{"center_x": {"1"}})
	var pe *ParameterError
	if !errors.As(err, &pe) || pe.Name != "center_y" || !errors.Is(err, ErrMissingParameter) {
		t.Errorf("err = %v, want missing center_y", err)
	}
}

func TestWebsocket(t *testing.T) {
	s := newTestServer(t, Settings{})
	httpServer := httptest.NewServer(s.Handler())
	defer httpServer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(httpServer.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.CloseNow()

	request := RenderRequest{
		Kind:   KindCheckerboard,
		Camera: camera.Camera{CenterX: 0.5, CenterY: -0.333, Width: 12, Height: 5, Scale: 4},
	}
	if err := wsjson.Write(ctx, conn, request); err != nil {
		t.Fatalf("Write: %v", err)
	}
	messageType, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if messageType != websocket.MessageBinary {
		t.Fatalf("message type = %v, want binary", messageType)
	}
	img, _, err := raster.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Width() != 12 || img.Height() != 5 {
		t.Errorf("image = %dx%d, want 12x5", img.Width(), img.Height())
	}

	request.Kind = "julia"
	if err := wsjson.Write(ctx, conn, request); err != nil {
		t.Fatalf("Write: %v", err)
	}
	messageType, data, err = conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	var reply websocketError
	if messageType != websocket.MessageText || json.Unmarshal(data, &reply) != nil || reply.Error == "" {
		t.Errorf("reply = %v %s, want a JSON error", messageType, data)
	}

	conn.Close(websocket.StatusNormalClosure, "")
}

func TestRenderService(t *testing.T) {
	s := newTestServer(t, Settings{})
	if err := s.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer s.Stop(context.Background())

	client := rpc.NewHttpClient(s.Addr(), "TestClient", nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Disconnect()

	var reply RenderReply
	request := RenderRequest{
		Kind:   KindMandelbrot,
		Camera: camera.Camera{CenterX: -0.75, Width: 7, Height: 3, Scale: 0.35},
		Format: "bmp",
	}
	if err := client.Call(context.Background(), "RenderService.Image", request, &reply); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if reply.ContentType != "image/bmp" {
		t.Errorf("ContentType = %q, want image/bmp", reply.ContentType)
	}
	img, format, err := raster.Decode(bytes.NewReader(reply.Image))
	if err != nil {
		t.Fatal(err)
	}
	if format != raster.BMP || img.Width() != 7 || img.Height() != 3 {
		t.Errorf("image = %s %dx%d", format, img.Width(), img.Height())
	}

	request.Camera.Width = 0
	if err := client.Call(context.Background(), "RenderService.Image", request, &reply); err == nil {
		t.Error("expected an error for a zero width camera")
	}
}
