package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type serviceBuilder struct {
	runtimeConfig      Config
	logger             Logger
	loggerProvider     LoggerProvider
	metricsRecorder    MetricsRecorder
	errorFactory       ErrorFactory
	errorMapper        ErrorMapper
	persistenceClient  any
	repositoryFactory  any
	configProvider     ConfigProvider
	optionsResolver    OptionsResolver
	txRunner           TxRunner
	tokenRevoker       TokenRevoker
	consentStore       ConsentStore
	authorizationStore AuthorizationStore
	mappingStore       MappingStore
	attributeStore     AttributeStore
	auditStore         AuditStore
	historyStore       HistoryStore
	fileStore          FileStore
}

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *serviceBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *serviceBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) {
		b.errorMapper = mapper
	}
}

func WithPersistenceClient(client any) Option {
	return func(b *serviceBuilder) {
		b.persistenceClient = client
	}
}

func WithRepositoryFactory(factory any) Option {
	return func(b *serviceBuilder) {
		b.repositoryFactory = factory
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithTxRunner(runner TxRunner) Option {
	return func(b *serviceBuilder) {
		b.txRunner = runner
	}
}

func WithTokenRevoker(revoker TokenRevoker) Option {
	return func(b *serviceBuilder) {
		b.tokenRevoker = revoker
	}
}

func WithConsentStore(store ConsentStore) Option {
	return func(b *serviceBuilder) {
		b.consentStore = store
	}
}

func WithAuthorizationStore(store AuthorizationStore) Option {
	return func(b *serviceBuilder) {
		b.authorizationStore = store
	}
}

func WithMappingStore(store MappingStore) Option {
	return func(b *serviceBuilder) {
		b.mappingStore = store
	}
}

func WithAttributeStore(store AttributeStore) Option {
	return func(b *serviceBuilder) {
		b.attributeStore = store
	}
}

func WithAuditStore(store AuditStore) Option {
	return func(b *serviceBuilder) {
		b.auditStore = store
	}
}

func WithHistoryStore(store HistoryStore) Option {
	return func(b *serviceBuilder) {
		b.historyStore = store
	}
}

func WithFileStore(store FileStore) Option {
	return func(b *serviceBuilder) {
		b.fileStore = store
	}
}

func WithStoreProvider(provider StoreProvider) Option {
	return func(b *serviceBuilder) {
		if provider == nil {
			return
		}
		b.consentStore = provider.ConsentStore()
		b.authorizationStore = provider.AuthorizationStore()
		b.mappingStore = provider.MappingStore()
		b.attributeStore = provider.AttributeStore()
		b.auditStore = provider.AuditStore()
		b.historyStore = provider.HistoryStore()
		b.fileStore = provider.FileStore()
	}
}

func (b *serviceBuilder) storesMissing() bool {
	return b.consentStore == nil ||
		b.authorizationStore == nil ||
		b.mappingStore == nil ||
		b.attributeStore == nil ||
		b.auditStore == nil ||
		b.historyStore == nil ||
		b.fileStore == nil
}

// adoptStoreProvider fills only the store slots the caller left unset, so
// explicit With*Store options keep precedence over factory-built stores.
func (b *serviceBuilder) adoptStoreProvider(provider StoreProvider) {
	if provider == nil {
		return
	}
	if b.consentStore == nil {
		b.consentStore = provider.ConsentStore()
	}
	if b.authorizationStore == nil {
		b.authorizationStore = provider.AuthorizationStore()
	}
	if b.mappingStore == nil {
		b.mappingStore = provider.MappingStore()
	}
	if b.attributeStore == nil {
		b.attributeStore = provider.AttributeStore()
	}
	if b.auditStore == nil {
		b.auditStore = provider.AuditStore()
	}
	if b.historyStore == nil {
		b.historyStore = provider.HistoryStore()
	}
	if b.fileStore == nil {
		b.fileStore = provider.FileStore()
	}
}

func defaultServiceBuilder(runtime Config) serviceBuilder {
	loggerProvider, logger := glog.Resolve("consent", nil, nil)
	return serviceBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorFactory:    goerrors.New,
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
		tokenRevoker:    NopTokenRevoker{},
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return consentErrorMapper(err)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}
	if includeZero || cfg.Expiry.BatchSize > 0 {
		layer["expiry"] = map[string]any{
			"batch_size": cfg.Expiry.BatchSize,
		}
	}
	if includeZero || cfg.Revocation.RevokeTokens {
		layer["revocation"] = map[string]any{
			"revoke_tokens": cfg.Revocation.RevokeTokens,
		}
	}
	return layer
}
