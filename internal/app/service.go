package app

import (
	"github.com/rs/zerolog"

	"horse.fit/brandstudio/internal/audit"
	"horse.fit/brandstudio/internal/config"
	"horse.fit/brandstudio/internal/connector"
	"horse.fit/brandstudio/internal/llm"
	"horse.fit/brandstudio/internal/logging"
	"horse.fit/brandstudio/internal/source"
	"horse.fit/brandstudio/internal/storage"
	"horse.fit/brandstudio/internal/studio"
)

// buildService composes the full dependency graph from the environment:
// file-backed stores, live source fetchers, the LLM backend, the audit
// forwarder and every connector with credentials present.
func buildService(cfg *config.Config, logger zerolog.Logger) *studio.Service {
	storeLogger := logging.Component(logger, "storage")
	candidatesStore := storage.NewFileStore(cfg.CandidatesFile, storeLogger).
		WithValidator(storage.ValidateCandidatesCache)

	return studio.New(cfg, studio.Dependencies{
		Logger:          logging.Component(logger, "studio"),
		StateStore:      storage.NewFileStore(cfg.StateFile, storeLogger),
		CandidatesStore: candidatesStore,
		AccountsStore:   storage.NewFileStore(cfg.AccountsFile, storeLogger),
		Sources:         source.NewClient(logging.Component(logger, "source")),
		Generator:       llm.NewClientFromEnv(),
		AuditSink:       audit.NewForwarderFromEnv(logging.Component(logger, "audit")),
		Registry:        connector.NewRegistryFromEnv(),
	})
}
