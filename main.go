package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/file-drop/config"
	httpservermod "github.com/example/file-drop/modules/httpserver"
	storagemod "github.com/example/file-drop/modules/storage"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Usage: file-drop [port] [passcode]
	cfg, err := config.Load(os.Args[1:], os.LookupEnv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Println("=== File Drop ===")
	log.Printf("HTTP Port: %d", cfg.Port)
	log.Printf("Upload Directory: %s", cfg.UploadDir)
	log.Printf("NATS Port: %d", cfg.NATSPort)

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
		mono.WithNATSPort(cfg.NATSPort),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}

	// Create modules
	storageModule := storagemod.NewModule(cfg.UploadDir, app.Logger())
	httpServerModule := httpservermod.NewModule(cfg, app.Logger())

	// Wire up dependencies
	httpServerModule.SetStorageModule(storageModule)

	// Storage starts first so the root is prepared before any request is served.
	app.Register(storageModule)
	app.Register(httpServerModule)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}

	log.Printf("Server running on http://localhost:%d", cfg.Port)
	log.Printf("Pass-code required: %s", cfg.Passcode)
	log.Println("Endpoints:")
	log.Println("  GET    /                    - Landing page")
	log.Println("  POST   /upload              - Upload files (field \"files\")")
	log.Println("  GET    /files               - List files")
	log.Println("  GET    /uploads/:filename   - Download a file")
	log.Println("  GET    /download-all        - Download everything as a zip")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}
