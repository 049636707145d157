package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sngm3741/mess-finder/api/internal/auth"
	"github.com/sngm3741/mess-finder/api/internal/config"
	"github.com/sngm3741/mess-finder/api/internal/domain"
	adminhttp "github.com/sngm3741/mess-finder/api/internal/interfaces/http/admin"
	commonhttp "github.com/sngm3741/mess-finder/api/internal/interfaces/http/common"
	ownerhttp "github.com/sngm3741/mess-finder/api/internal/interfaces/http/owner"
	publichttp "github.com/sngm3741/mess-finder/api/internal/interfaces/http/public"
)

// Server は HTTP サーバーのライフサイクルを管理し、Public/Owner/Admin の各ハンドラへ依存注入するコンポジションルート。
type Server struct {
	logger         *logrus.Logger
	client         *mongo.Client
	addr           string
	allowedOrigins []string
	router         http.Handler
}

// New は DATA_STORE に応じてリポジトリを選び、Server を組み立てる。
// mongo の場合は接続済みの client が必要。
func New(ctx context.Context, cfg config.Config, client *mongo.Client) (*Server, error) {
	var repos Repositories
	switch cfg.DataStore {
	case config.DataStoreMemory:
		repos = MemoryRepositories()
		client = nil
	default:
		if client == nil {
			return nil, errors.New("mongo data store requires a connected client")
		}
		var err error
		repos, err = MongoRepositories(ctx, cfg, client)
		if err != nil {
			return nil, err
		}
	}
	return NewWithRepositories(ctx, cfg, repos, client)
}

// NewWithRepositories はリポジトリを外から受け取って Server を組み立てる。
// 起動時に既定の管理者アカウントを用意する。
func NewWithRepositories(ctx context.Context, cfg config.Config, repos Repositories, client *mongo.Client) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	svc := newServices(repos, auth.NewIssuer(cfg.JWT), logger)

	if _, err := svc.accounts.EnsureDefaultAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return nil, err
	}

	srv := &Server{
		logger:         logger,
		client:         client,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
	}
	srv.router = srv.routes(svc, commonhttp.NewAuthenticator(auth.NewVerifier(cfg.JWT), logger))
	return srv, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(svc services, authn *commonhttp.Authenticator) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(commonhttp.RequestLogger(s.logger))
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:   s.logger,
		Queries:  svc.listingQueries,
		Reviews:  svc.reviewCommands,
		Accounts: svc.accounts,
	})
	ownerHandler := ownerhttp.NewHandler(ownerhttp.Config{
		Logger:   s.logger,
		Listings: svc.ownerListings,
	})
	adminHandler := adminhttp.NewHandler(adminhttp.Config{
		Logger:   s.logger,
		Listings: svc.listingModeration,
		Reviews:  svc.reviewModeration,
		Stats:    svc.stats,
	})

	router.Route("/api", func(r chi.Router) {
		publicHandler.Register(r, authn)
		ownerHandler.Register(r, authn)
		r.Route("/admin", func(r chi.Router) {
			r.Use(authn.Require, commonhttp.RequireRole(s.logger, domain.RoleAdmin))
			adminHandler.Register(r)
		})
	})

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		commonhttp.WriteMessage(s.logger, w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		commonhttp.WriteMessage(s.logger, w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return router
}

// Run はHTTPサーバーを起動し、シグナル受信まで待機する。
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.addr).Info("http server listening")
		errChan <- httpServer.ListenAndServe()
	}()

	return waitForShutdown(httpServer, errChan, s)
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && len(allowed) > 0 && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// healthHandler は MongoDB への疎通確認を行う。メモリストア構成では常に ok を返す。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := config.DataStoreMemory
		if s.client != nil {
			store = config.DataStoreMongo
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
				s.logger.WithError(err).Warn("health check ping failed")
				commonhttp.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
					"store":  store,
					"error":  err.Error(),
				})
				return
			}
		}

		commonhttp.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"store":  store,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// shutdown は MongoDB クライアントをタイムアウト付きで切断する。
func (s *Server) shutdown(ctx context.Context) {
	if s.client == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(shutdownCtx); err != nil {
		s.logger.WithError(err).Error("mongo disconnect failed")
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
	case sig := <-sigChan:
		srv.logger.WithField("signal", sig.String()).Info("shutting down http server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.WithError(err).Error("http server shutdown failed")
		}
	}

	srv.shutdown(context.Background())
	return runErr
}
