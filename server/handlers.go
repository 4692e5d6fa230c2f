package server

import (
	"net/http"
	"strconv"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexPage))
}

func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	writeBody(w, "image/x-icon", s.favicon)
}

func (s *Server) handleImage(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		c, err := ParseCamera(query)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		reply, err := s.RenderImage(r.Context(), RenderRequest{
			Kind:   kind,
			Camera: c,
			Format: query.Get("format"),
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeBody(w, reply.ContentType, reply.Image)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isRequestError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case r.Context().Err() != nil:
		s.logger.Warningf("Request %s abandoned - %s", r.URL.RequestURI(), err)
	default:
		s.logger.Errorf("Rendering %s - %s", r.URL.RequestURI(), err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeBody(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Write(body)
}
