package studio

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"horse.fit/brandstudio/internal/candidate"
	"horse.fit/brandstudio/internal/config"
	"horse.fit/brandstudio/internal/connector"
	"horse.fit/brandstudio/internal/storage"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:          "test",
		DiscoveryMode:        "stub",
		CacheTTLSeconds:      900,
		MinScore:             0.3,
		ResultLimit:          50,
		ActiveChannels:       "x,github,blog",
		DraftLanguages:       "pl,en",
		DraftCacheTTLSeconds: 86400,
		LLMWorkers:           2,
		DefaultTargetRepo:    "acme/content",
	}
}

func newTestService(deps Dependencies) *Service {
	deps.Logger = zerolog.Nop()
	return New(testConfig(), deps)
}

// fakePublisher scripts connector outcomes for queue tests.
type fakePublisher struct {
	name        string
	outcome     connector.PublishOutcome
	publishErr  error
	validateErr error
	calls       int
}

func (f *fakePublisher) Name() string { return f.name }

func (f *fakePublisher) PublishMarkdown(context.Context, connector.PublishRequest) (connector.PublishOutcome, error) {
	f.calls++
	if f.publishErr != nil {
		return connector.PublishOutcome{}, f.publishErr
	}
	return f.outcome, nil
}

func (f *fakePublisher) ValidateConnection(context.Context) error {
	return f.validateErr
}

// fakeSources returns a scripted raw batch per fetch.
type fakeSources struct {
	items [][]candidate.RawItem
	calls int
}

func (f *fakeSources) FetchAll(context.Context, []string) []candidate.RawItem {
	f.calls++
	if len(f.items) == 0 {
		return nil
	}
	batch := f.items[0]
	if len(f.items) > 1 {
		f.items = f.items[1:]
	}
	return batch
}

// fakeGenerator scripts LLM output.
type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) Enabled() bool { return true }

func (f *fakeGenerator) GenerateText(context.Context, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func registryWith(channel string, publisher connector.Publisher) *connector.Registry {
	registry := connector.NewRegistry()
	registry.Register(connector.ChannelX, connector.NewManualPlaceholderPublisher())
	if publisher != nil {
		registry.Register(channel, publisher)
	}
	return registry
}

var errBoom = errors.New("boom")

func sharedStores() (storage.Store, storage.Store, storage.Store) {
	return storage.NewMemoryStore(), storage.NewMemoryStore(), storage.NewMemoryStore()
}
