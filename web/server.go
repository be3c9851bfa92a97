package web

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mww/fantasy_predictions/controller"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/render"
)

// Options configure the HTTP surface.
type Options struct {
	AdminUser      string
	AdminPassword  string
	CORSOrigins    []string
	WriteRateLimit float64 // requests per second for mutating requests, 0 disables the limit
}

type Server struct {
	server *http.Server
}

func NewServer(port int, ctrl controller.C, opts Options) (*Server, error) {
	if opts.AdminPassword == "" {
		return nil, fmt.Errorf("an admin password is required")
	}

	render := newRender()
	router := getRouter(ctrl, render, opts)

	s := &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
	return s, nil
}

func (s *Server) ListenAndServe(shutdown chan bool, wg *sync.WaitGroup) {
	go func() {
		defer wg.Done()

		// Wait for the shutdown signal and safely close the server.
		<-shutdown

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			log.Fatal().Err(err).Msg("fatal error shutting down server")
		}
	}()

	log.Info().Str("addr", s.server.Addr).Msg("web server is listening")
	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("fatal error with server")
	}
}

func newRender() *render.Render {
	return render.New(render.Options{
		UnEscapeHTML: true,
	})
}
