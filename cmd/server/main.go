package main

import (
	"log"
	"net/http"
	"os"

	"github.com/alintm4/taskdesk/internal/config"
	"github.com/alintm4/taskdesk/internal/serverapp"
)

func main() {
	path := os.Getenv("TASKDESK_CONFIG")
	if path == "" {
		path = "taskdesk.yml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	handler, err := serverapp.NewHandler(serverapp.Options{
		Config: cfg,
		Logger: log.Default(),
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	log.Printf("listening on %s", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, handler))
}
