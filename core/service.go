package core

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

type Service struct {
	config             Config
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

type ServiceDependencies struct {
	Logger             Logger
	LoggerProvider     LoggerProvider
	MetricsRecorder    MetricsRecorder
	ErrorFactory       ErrorFactory
	ErrorMapper        ErrorMapper
	PersistenceClient  any
	RepositoryFactory  any
	ConfigProvider     ConfigProvider
	OptionsResolver    OptionsResolver
	TxRunner           TxRunner
	TokenRevoker       TokenRevoker
	ConsentStore       ConsentStore
	AuthorizationStore AuthorizationStore
	MappingStore       MappingStore
	AttributeStore     AttributeStore
	AuditStore         AuditStore
	HistoryStore       HistoryStore
	FileStore          FileStore
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("consent", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("consent"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.tokenRevoker == nil {
		builder.tokenRevoker = NopTokenRevoker{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.storesMissing() && builder.repositoryFactory != nil {
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			storeProvider, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			builder.adoptStoreProvider(storeProvider)
		} else if storeProvider, ok := builder.repositoryFactory.(StoreProvider); ok {
			builder.adoptStoreProvider(storeProvider)
		}
	}
	if builder.txRunner == nil && builder.repositoryFactory != nil {
		if runner, ok := builder.repositoryFactory.(TxRunner); ok {
			builder.txRunner = runner
		}
	}

	return &Service{
		config:             finalConfig,
		logger:             logger,
		loggerProvider:     provider,
		metricsRecorder:    builder.metricsRecorder,
		errorFactory:       builder.errorFactory,
		errorMapper:        builder.errorMapper,
		persistenceClient:  builder.persistenceClient,
		repositoryFactory:  builder.repositoryFactory,
		configProvider:     builder.configProvider,
		optionsResolver:    builder.optionsResolver,
		txRunner:           builder.txRunner,
		tokenRevoker:       builder.tokenRevoker,
		consentStore:       builder.consentStore,
		authorizationStore: builder.authorizationStore,
		mappingStore:       builder.mappingStore,
		attributeStore:     builder.attributeStore,
		auditStore:         builder.auditStore,
		historyStore:       builder.historyStore,
		fileStore:          builder.fileStore,
	}, nil
}

func Setup(cfg Config, options ...Option) (*Service, error) {
	return NewService(cfg, options...)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:             s.logger,
		LoggerProvider:     s.loggerProvider,
		MetricsRecorder:    s.metricsRecorder,
		ErrorFactory:       s.errorFactory,
		ErrorMapper:        s.errorMapper,
		PersistenceClient:  s.persistenceClient,
		RepositoryFactory:  s.repositoryFactory,
		ConfigProvider:     s.configProvider,
		OptionsResolver:    s.optionsResolver,
		TxRunner:           s.txRunner,
		TokenRevoker:       s.tokenRevoker,
		ConsentStore:       s.consentStore,
		AuthorizationStore: s.authorizationStore,
		MappingStore:       s.mappingStore,
		AttributeStore:     s.attributeStore,
		AuditStore:         s.auditStore,
		HistoryStore:       s.historyStore,
		FileStore:          s.fileStore,
	}
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) badInput(format string, args ...any) error {
	message := fmt.Sprintf(format, args...)
	if s != nil && s.errorFactory != nil {
		return s.errorFactory(message, goerrors.CategoryBadInput).
			WithTextCode(ConsentErrorBadInput).
			WithCode(consentHTTPStatus(goerrors.CategoryBadInput))
	}
	return fmt.Errorf("%s", message)
}

// runInTx delegates the transaction boundary to the configured runner.
// Without one, operations execute directly on whatever connection the
// stores resolve from ctx.
func (s *Service) runInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s == nil || s.txRunner == nil {
		return fn(ctx)
	}
	return s.txRunner.RunInTx(ctx, fn)
}

func (s *Service) requireConsentStore() error {
	if s == nil || s.consentStore == nil {
		return fmt.Errorf("core: consent store is required")
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
