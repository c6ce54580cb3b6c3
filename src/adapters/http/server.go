package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"agendaapi/src/domain"
	"agendaapi/src/domain/entities"
	"agendaapi/src/helper/urls"
	"agendaapi/src/serializers"
	"agendaapi/src/services/agenda"
)

const maxBodyBytes = 1 << 20

type AgendaService interface {
	GetItem(ctx context.Context, id int64) (entities.Item, error)
	ListItems(ctx context.Context, filter domain.ItemFilter) ([]entities.Item, error)
	GetTree(ctx context.Context, filter domain.ItemFilter) ([]*domain.ItemTreeNode, error)
	SortTree(ctx context.Context, tree []*domain.ItemTreeNode) error
	CreateItem(ctx context.Context, item entities.Item) (entities.Item, error)
	UpdateItem(ctx context.Context, id int64, change agenda.ItemChange) (entities.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	AddSpeaker(ctx context.Context, itemID int64, userID int64) (entities.Speaker, error)
	RemoveSpeaker(ctx context.Context, itemID int64, speakerID int64) error
	UpdateSpeaker(ctx context.Context, itemID int64, speakerID int64, change agenda.SpeakerChange) (entities.Speaker, error)
}

// Server representa o servidor HTTP da API
type Server struct {
	logger        *slog.Logger
	server        *http.Server
	router        *chi.Mux
	addr          string
	agendaService AgendaService
	items         *serializers.ItemSerializer
}

// NewServer monta o router a partir das rotas do registry, as mesmas usadas
// para gerar os hyperlinks.
func NewServer(
	logger *slog.Logger,
	addr string,
	allowedOrigins []string,
	registry *urls.Registry,
	agendaService AgendaService,
	items *serializers.ItemSerializer,
) (*Server, error) {
	patterns := map[string]string{}
	for _, name := range []string{RouteItemList, RouteItemTree, serializers.RouteItemDetail} {
		pattern, ok := registry.Pattern(name)
		if !ok {
			return nil, fmt.Errorf("http.NewServer - route %q: %w", name, urls.ErrNoReverseMatch)
		}
		patterns[name] = pattern
	}

	server := &Server{
		logger:        logger,
		router:        chi.NewRouter(),
		addr:          addr,
		agendaService: agendaService,
		items:         items,
	}

	server.router.Use(middleware.RequestID)
	server.router.Use(middleware.RealIP)
	server.router.Use(requestLogger(logger))
	server.router.Use(middleware.Recoverer)
	server.router.Use(corsHandler(allowedOrigins))

	detail := patterns[serializers.RouteItemDetail]

	// Rotas de Leitura
	server.router.Get(patterns[RouteItemList], server.ListItems)
	server.router.Get(patterns[RouteItemTree], server.GetItemTree)
	server.router.Get(detail, server.GetItem)

	// Rotas de Escrita
	server.router.Post(patterns[RouteItemList], server.CreateItem)
	server.router.Put(patterns[RouteItemTree], server.SortItemTree)
	server.router.Put(detail, server.UpdateItem)
	server.router.Patch(detail, server.PartialUpdateItem)
	server.router.Delete(detail, server.DeleteItem)

	// Lista de oradores
	server.router.Post(detail+"manage_speaker/", server.AddSpeaker)
	server.router.Delete(detail+"manage_speaker/", server.RemoveSpeaker)
	server.router.Patch(detail+"speakers/{speaker_id}/", server.UpdateSpeaker)

	server.server = &http.Server{
		Addr:         addr,
		Handler:      server.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return server, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start inicia o servidor HTTP
func (s *Server) Start() error {
	s.logger.Info("Server started", "addr", s.addr)

	return s.server.ListenAndServe()
}

// Shutdown encerra o servidor HTTP de forma graciosa
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			logger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
				"ip", r.RemoteAddr)
		})
	}
}

func corsHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-CSRFToken", "X-Requested-With"},
		MaxAge:         300,
	}

	// credenciais não combinam com o curinga
	for _, origin := range allowedOrigins {
		if origin == "*" {
			return cors.Handler(options)
		}
	}
	options.AllowCredentials = true

	return cors.Handler(options)
}
