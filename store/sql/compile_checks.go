package sqlstore

import "github.com/goliatone/go-consent/core"

var (
	_ core.ConsentStore           = (*ConsentStore)(nil)
	_ core.AuthorizationStore     = (*AuthorizationStore)(nil)
	_ core.MappingStore           = (*MappingStore)(nil)
	_ core.AttributeStore         = (*AttributeStore)(nil)
	_ core.AuditStore             = (*AuditStore)(nil)
	_ core.HistoryStore           = (*HistoryStore)(nil)
	_ core.FileStore              = (*FileStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
	_ core.TxRunner               = (*RepositoryFactory)(nil)
)
