package serverapp

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/alintm4/taskdesk/internal/config"
	"github.com/alintm4/taskdesk/internal/httpmw"
	"github.com/alintm4/taskdesk/internal/identity"
	"github.com/alintm4/taskdesk/internal/task"
)

type Options struct {
	Config *config.Config
	Logger *log.Logger
}

// NewHandler wires storage, identity and the task API into one http.Handler.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	cfg := opts.Config

	db, err := openDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := identity.Migrate(db); err != nil {
		return nil, err
	}
	if err := task.Migrate(db); err != nil {
		return nil, err
	}

	authService := identity.NewService(identity.NewStore(db), identity.Options{
		SessionTTL:   time.Duration(cfg.Auth.SessionTTLDays) * 24 * time.Hour,
		BcryptCost:   cfg.Auth.BcryptCost,
		CookieSecure: cfg.Auth.CookieSecure,
	}, opts.Logger)
	authHandler := identity.NewHandler(authService)

	taskService := task.NewService(task.NewGormRepo(db))
	taskHandler := task.NewHandler(taskService, opts.Logger)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"ok":true,"service":"taskdesk"}` + "\n"))
	})

	mux.HandleFunc("/api/auth/register", authHandler.Register)
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/logout", authHandler.Logout)
	mux.HandleFunc("/api/auth/session", authHandler.Session)

	mux.Handle("/api/tasks", authService.RequireAPI(http.HandlerFunc(taskHandler.TasksRoot)))
	mux.Handle("/api/tasks/", authService.RequireAPI(http.HandlerFunc(taskHandler.TasksSub)))
	mux.Handle("/api/dashboard", authService.RequireAPI(http.HandlerFunc(taskHandler.Dashboard)))

	return httpmw.Chain(mux,
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
		httpmw.WithAccessLog(opts.Logger),
	), nil
}

func openDatabase(path string) (*gorm.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	// gorm's own logger stays silent so stdout carries only JSON lines.
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}
