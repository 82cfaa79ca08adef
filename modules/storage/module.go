package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module owns the storage root: it prepares the directory on start and
// exposes the store to the HTTP module and the list-files bus service.
type Module struct {
	store       *Store
	archivePath string
	logger      types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
)

// NewModule creates a new storage module rooted at root.
func NewModule(root string, logger types.Logger) *Module {
	return &Module{
		store:  NewStore(root),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "storage"
}

// Start prepares the storage root. An error here aborts application startup.
func (m *Module) Start(ctx context.Context) error {
	archive, err := m.store.Prepare()
	if err != nil {
		return fmt.Errorf("failed to prepare storage root %s: %w", m.store.Root(), err)
	}
	m.archivePath = archive

	if archive == "" {
		m.logger.Info("Created uploads directory", "root", m.store.Root())
	} else {
		m.logger.Info("Archived existing uploads",
			"root", m.store.Root(),
			"archive", archive)
	}
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(ctx context.Context) error {
	m.logger.Info("Storage module stopped")
	return nil
}

// Health reports whether the storage root is present.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	info, err := os.Stat(m.store.Root())
	healthy := err == nil && info.IsDir()
	message := "ready"
	if !healthy {
		message = "storage root missing"
	}
	details := map[string]any{
		"root": m.store.Root(),
	}
	if m.archivePath != "" {
		details["archive"] = m.archivePath
	}
	return mono.HealthStatus{
		Healthy: healthy,
		Message: message,
		Details: details,
	}
}

// RegisterServices registers the list-files request-reply service.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"list-files",
		json.Unmarshal,
		json.Marshal,
		m.listFiles,
	); err != nil {
		return fmt.Errorf("failed to register list-files service: %w", err)
	}

	m.logger.Info("Registered services", "services", "list-files")
	return nil
}

// Store returns the underlying store.
func (m *Module) Store() *Store {
	return m.store
}

// ArchivePath returns where the previous root was moved, if anywhere.
func (m *Module) ArchivePath() string {
	return m.archivePath
}

// listFiles handles the list-files service request.
func (m *Module) listFiles(_ context.Context, _ ListFilesRequest, _ *mono.Msg) (ListFilesResponse, error) {
	names, err := m.store.Names()
	if err != nil {
		m.logger.Error("Failed to list files", "error", err)
		return ListFilesResponse{Files: []string{}, Error: "error reading files"}, nil
	}
	return ListFilesResponse{Files: names}, nil
}
