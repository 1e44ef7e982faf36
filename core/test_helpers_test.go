package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// memoryState is the shared backing data of every in-memory store. The
// per-interface store types below are thin views over one state so that
// GetDetailed and Search can assemble cross-entity aggregates.
type memoryState struct {
	mu             sync.Mutex
	next           int
	consents       map[string]ConsentResource
	consentOrder   []string
	authorizations map[string]AuthorizationResource
	authOrder      []string
	mappings       map[string]ConsentMapping
	mappingOrder   []string
	attributes     map[string]map[string]string
	audits         []StatusAuditRecord
	historyRows    []HistoryRow
	files          map[string]ConsentFile
}

func newMemoryState() *memoryState {
	return &memoryState{
		consents:       map[string]ConsentResource{},
		authorizations: map[string]AuthorizationResource{},
		mappings:       map[string]ConsentMapping{},
		attributes:     map[string]map[string]string{},
		files:          map[string]ConsentFile{},
	}
}

func (s *memoryState) nextID(prefix string) string {
	s.next++
	return fmt.Sprintf("%s_%d", prefix, s.next)
}

type memoryStateSnapshot struct {
	next           int
	consents       map[string]ConsentResource
	consentOrder   []string
	authorizations map[string]AuthorizationResource
	authOrder      []string
	mappings       map[string]ConsentMapping
	mappingOrder   []string
	attributes     map[string]map[string]string
	audits         []StatusAuditRecord
	historyRows    []HistoryRow
	files          map[string]ConsentFile
}

func (s *memoryState) snapshot() memoryStateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memoryStateSnapshot{
		next:           s.next,
		consents:       make(map[string]ConsentResource, len(s.consents)),
		consentOrder:   append([]string(nil), s.consentOrder...),
		authorizations: make(map[string]AuthorizationResource, len(s.authorizations)),
		authOrder:      append([]string(nil), s.authOrder...),
		mappings:       make(map[string]ConsentMapping, len(s.mappings)),
		mappingOrder:   append([]string(nil), s.mappingOrder...),
		attributes:     make(map[string]map[string]string, len(s.attributes)),
		audits:         append([]StatusAuditRecord(nil), s.audits...),
		historyRows:    append([]HistoryRow(nil), s.historyRows...),
		files:          make(map[string]ConsentFile, len(s.files)),
	}
	for id, row := range s.consents {
		snap.consents[id] = row
	}
	for id, row := range s.authorizations {
		snap.authorizations[id] = row
	}
	for id, row := range s.mappings {
		snap.mappings[id] = row
	}
	for id, attrs := range s.attributes {
		snap.attributes[id] = cloneAttributes(attrs)
	}
	for id, file := range s.files {
		snap.files[id] = ConsentFile{ConsentID: file.ConsentID, Content: append([]byte(nil), file.Content...)}
	}
	return snap
}

func (s *memoryState) restore(snap memoryStateSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = snap.next
	s.consents = snap.consents
	s.consentOrder = snap.consentOrder
	s.authorizations = snap.authorizations
	s.authOrder = snap.authOrder
	s.mappings = snap.mappings
	s.mappingOrder = snap.mappingOrder
	s.attributes = snap.attributes
	s.audits = snap.audits
	s.historyRows = snap.historyRows
	s.files = snap.files
}

// detailedLocked assembles the aggregate for one consent. Caller holds the
// state mutex.
func (s *memoryState) detailedLocked(id string) (DetailedConsent, bool) {
	row, ok := s.consents[id]
	if !ok {
		return DetailedConsent{}, false
	}
	detail := DetailedConsent{ConsentResource: row}
	authIDs := map[string]struct{}{}
	for _, authID := range s.authOrder {
		authorization := s.authorizations[authID]
		if authorization.ConsentID != id {
			continue
		}
		detail.Authorizations = append(detail.Authorizations, authorization)
		authIDs[authID] = struct{}{}
	}
	for _, mappingID := range s.mappingOrder {
		mapping := s.mappings[mappingID]
		if _, ok := authIDs[mapping.AuthorizationID]; !ok {
			continue
		}
		detail.Mappings = append(detail.Mappings, mapping)
	}
	return detail, true
}

// memoryStores bundles one shared state with every per-interface view plus a
// snapshotting transaction runner, so tests can assert rollback.
type memoryStores struct {
	state          *memoryState
	consents       *memoryConsentStore
	authorizations *memoryAuthorizationStore
	mappings       *memoryMappingStore
	attributes     *memoryAttributeStore
	audits         *memoryAuditStore
	history        *memoryHistoryStore
	files          *memoryFileStore
}

func newMemoryStores() *memoryStores {
	state := newMemoryState()
	return &memoryStores{
		state:          state,
		consents:       &memoryConsentStore{state: state},
		authorizations: &memoryAuthorizationStore{state: state},
		mappings:       &memoryMappingStore{state: state},
		attributes:     &memoryAttributeStore{state: state},
		audits:         &memoryAuditStore{state: state},
		history:        &memoryHistoryStore{state: state},
		files:          &memoryFileStore{state: state},
	}
}

func (m *memoryStores) options() []Option {
	return []Option{
		WithConsentStore(m.consents),
		WithAuthorizationStore(m.authorizations),
		WithMappingStore(m.mappings),
		WithAttributeStore(m.attributes),
		WithAuditStore(m.audits),
		WithHistoryStore(m.history),
		WithFileStore(m.files),
		WithTxRunner(snapshotTxRunner{state: m.state}),
		WithLogger(stubLogger{}),
	}
}

func (m *memoryStores) auditsFor(consentID string) []StatusAuditRecord {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	out := []StatusAuditRecord{}
	for _, record := range m.state.audits {
		if record.ConsentID == consentID {
			out = append(out, record)
		}
	}
	return out
}

// snapshotTxRunner copies the full store state before fn and restores it when
// fn errors, mirroring a database rollback.
type snapshotTxRunner struct {
	state *memoryState
}

func (r snapshotTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := r.state.snapshot()
	if err := fn(ctx); err != nil {
		r.state.restore(snap)
		return err
	}
	return nil
}

type memoryConsentStore struct {
	state            *memoryState
	failStore        error
	failUpdateStatus error
	failSearch       error
}

func (s *memoryConsentStore) Store(_ context.Context, in CreateConsentInput) (ConsentResource, error) {
	if s.failStore != nil {
		return ConsentResource{}, s.failStore
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	now := time.Now().UTC()
	row := ConsentResource{
		ID:             s.state.nextID("consent"),
		ClientID:       in.ClientID,
		Receipt:        in.Receipt,
		Type:           in.Type,
		Status:         in.Status,
		Frequency:      in.Frequency,
		ValidityPeriod: in.ValidityPeriod,
		Recurring:      in.Recurring,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.state.consents[row.ID] = row
	s.state.consentOrder = append(s.state.consentOrder, row.ID)
	return row, nil
}

func (s *memoryConsentStore) Get(_ context.Context, id string) (ConsentResource, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	row, ok := s.state.consents[id]
	if !ok {
		return ConsentResource{}, fmt.Errorf("%w: %s", ErrConsentNotFound, id)
	}
	return row, nil
}

func (s *memoryConsentStore) GetDetailed(_ context.Context, id string) (DetailedConsent, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	detail, ok := s.state.detailedLocked(id)
	if !ok {
		return DetailedConsent{}, fmt.Errorf("%w: %s", ErrConsentNotFound, id)
	}
	return detail, nil
}

func (s *memoryConsentStore) UpdateStatus(_ context.Context, id string, status ConsentStatus, updatedAt time.Time) error {
	if s.failUpdateStatus != nil {
		return s.failUpdateStatus
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	row, ok := s.state.consents[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrConsentNotFound, id)
	}
	row.Status = status
	row.UpdatedAt = updatedAt
	s.state.consents[id] = row
	return nil
}

func (s *memoryConsentStore) UpdateReceipt(_ context.Context, id string, receipt string, updatedAt time.Time) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	row, ok := s.state.consents[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrConsentNotFound, id)
	}
	row.Receipt = receipt
	row.UpdatedAt = updatedAt
	s.state.consents[id] = row
	return nil
}

func (s *memoryConsentStore) UpdateValidityPeriod(_ context.Context, id string, validityPeriod int64, updatedAt time.Time) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	row, ok := s.state.consents[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrConsentNotFound, id)
	}
	row.ValidityPeriod = validityPeriod
	row.UpdatedAt = updatedAt
	s.state.consents[id] = row
	return nil
}

func (s *memoryConsentStore) Search(_ context.Context, filter SearchFilter) ([]DetailedConsent, error) {
	if s.failSearch != nil {
		return nil, s.failSearch
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	consentIDs := nonEmptySet(filter.ConsentIDs)
	clientIDs := nonEmptySet(filter.ClientIDs)
	userIDs := nonEmptySet(filter.UserIDs)
	types := map[ConsentType]struct{}{}
	for _, value := range filter.Types {
		if strings.TrimSpace(string(value)) != "" {
			types[value] = struct{}{}
		}
	}
	statuses := map[ConsentStatus]struct{}{}
	for _, value := range filter.Statuses {
		if strings.TrimSpace(string(value)) != "" {
			statuses[value] = struct{}{}
		}
	}

	out := []DetailedConsent{}
	for _, id := range s.state.consentOrder {
		detail, ok := s.state.detailedLocked(id)
		if !ok {
			continue
		}
		if len(consentIDs) > 0 {
			if _, ok := consentIDs[detail.ID]; !ok {
				continue
			}
		}
		if len(clientIDs) > 0 {
			if _, ok := clientIDs[detail.ClientID]; !ok {
				continue
			}
		}
		if len(types) > 0 {
			if _, ok := types[detail.Type]; !ok {
				continue
			}
		}
		if len(statuses) > 0 {
			if _, ok := statuses[detail.Status]; !ok {
				continue
			}
		}
		if len(userIDs) > 0 {
			matched := false
			for _, authorization := range detail.Authorizations {
				if _, ok := userIDs[authorization.UserID]; ok {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if !filter.CreatedFrom.IsZero() && detail.CreatedAt.Before(filter.CreatedFrom) {
			continue
		}
		if !filter.CreatedTo.IsZero() && detail.CreatedAt.After(filter.CreatedTo) {
			continue
		}
		out = append(out, detail)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []DetailedConsent{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type memoryAuthorizationStore struct {
	state      *memoryState
	failStore  error
	failUpdate error
}

func (s *memoryAuthorizationStore) Store(_ context.Context, in CreateAuthorizationInput) (AuthorizationResource, error) {
	if s.failStore != nil {
		return AuthorizationResource{}, s.failStore
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	row := AuthorizationResource{
		ID:        s.state.nextID("auth"),
		ConsentID: in.ConsentID,
		UserID:    in.UserID,
		Status:    in.Status,
		Type:      in.Type,
		UpdatedAt: time.Now().UTC(),
	}
	s.state.authorizations[row.ID] = row
	s.state.authOrder = append(s.state.authOrder, row.ID)
	return row, nil
}

func (s *memoryAuthorizationStore) Get(_ context.Context, id string) (AuthorizationResource, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	row, ok := s.state.authorizations[id]
	if !ok {
		return AuthorizationResource{}, fmt.Errorf("%w: %s", ErrAuthorizationNotFound, id)
	}
	return row, nil
}

func (s *memoryAuthorizationStore) ListByConsent(_ context.Context, consentID string) ([]AuthorizationResource, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	out := []AuthorizationResource{}
	for _, id := range s.state.authOrder {
		row := s.state.authorizations[id]
		if row.ConsentID == consentID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *memoryAuthorizationStore) Update(_ context.Context, id string, userID string, status AuthorizationStatus, updatedAt time.Time) error {
	if s.failUpdate != nil {
		return s.failUpdate
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	row, ok := s.state.authorizations[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAuthorizationNotFound, id)
	}
	if strings.TrimSpace(userID) != "" {
		row.UserID = userID
	}
	row.Status = status
	row.UpdatedAt = updatedAt
	s.state.authorizations[id] = row
	return nil
}

type memoryMappingStore struct {
	state            *memoryState
	failStore        error
	failUpdateStatus error
}

func (s *memoryMappingStore) Store(_ context.Context, inputs []CreateMappingInput) ([]ConsentMapping, error) {
	if s.failStore != nil {
		return nil, s.failStore
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	out := make([]ConsentMapping, 0, len(inputs))
	for _, in := range inputs {
		row := ConsentMapping{
			ID:              s.state.nextID("map"),
			AuthorizationID: in.AuthorizationID,
			AccountID:       in.AccountID,
			Permission:      in.Permission,
			Status:          in.Status,
		}
		s.state.mappings[row.ID] = row
		s.state.mappingOrder = append(s.state.mappingOrder, row.ID)
		out = append(out, row)
	}
	return out, nil
}

func (s *memoryMappingStore) ListByAuthorizations(_ context.Context, authorizationIDs []string) ([]ConsentMapping, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	wanted := nonEmptySet(authorizationIDs)
	out := []ConsentMapping{}
	for _, id := range s.state.mappingOrder {
		row := s.state.mappings[id]
		if _, ok := wanted[row.AuthorizationID]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *memoryMappingStore) UpdateStatus(_ context.Context, mappingIDs []string, status MappingStatus) error {
	if s.failUpdateStatus != nil {
		return s.failUpdateStatus
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for _, id := range mappingIDs {
		row, ok := s.state.mappings[id]
		if !ok {
			return fmt.Errorf("missing mapping %s", id)
		}
		row.Status = status
		s.state.mappings[id] = row
	}
	return nil
}

type memoryAttributeStore struct {
	state     *memoryState
	failStore error
}

func (s *memoryAttributeStore) Store(_ context.Context, consentID string, attributes map[string]string) error {
	if s.failStore != nil {
		return s.failStore
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	existing := s.state.attributes[consentID]
	if existing == nil {
		existing = map[string]string{}
	}
	for key, value := range attributes {
		existing[key] = value
	}
	s.state.attributes[consentID] = existing
	return nil
}

func (s *memoryAttributeStore) Get(_ context.Context, consentID string) (map[string]string, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return cloneAttributes(s.state.attributes[consentID]), nil
}

func (s *memoryAttributeStore) GetByKeys(_ context.Context, consentID string, keys []string) (map[string]string, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	existing := s.state.attributes[consentID]
	out := map[string]string{}
	for _, key := range keys {
		if value, ok := existing[key]; ok {
			out[key] = value
		}
	}
	return out, nil
}

func (s *memoryAttributeStore) Update(_ context.Context, consentID string, attributes map[string]string) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	existing := s.state.attributes[consentID]
	if existing == nil {
		existing = map[string]string{}
	}
	for key, value := range attributes {
		existing[key] = value
	}
	s.state.attributes[consentID] = existing
	return nil
}

func (s *memoryAttributeStore) Delete(_ context.Context, consentID string, keys []string) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	existing := s.state.attributes[consentID]
	for _, key := range keys {
		delete(existing, key)
	}
	return nil
}

func (s *memoryAttributeStore) DeleteAll(_ context.Context, consentID string) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	delete(s.state.attributes, consentID)
	return nil
}

func (s *memoryAttributeStore) FindConsentIDsByName(_ context.Context, name string) ([]string, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	out := []string{}
	for _, consentID := range s.state.consentOrder {
		if _, ok := s.state.attributes[consentID][name]; ok {
			out = append(out, consentID)
		}
	}
	return out, nil
}

func (s *memoryAttributeStore) FindConsentIDsByNameAndValue(_ context.Context, name string, value string) ([]string, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	out := []string{}
	for _, consentID := range s.state.consentOrder {
		if stored, ok := s.state.attributes[consentID][name]; ok && stored == value {
			out = append(out, consentID)
		}
	}
	return out, nil
}

type memoryAuditStore struct {
	state     *memoryState
	failStore error
}

func (s *memoryAuditStore) Store(_ context.Context, record StatusAuditRecord) (StatusAuditRecord, error) {
	if s.failStore != nil {
		return StatusAuditRecord{}, s.failStore
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if strings.TrimSpace(record.ID) == "" {
		record.ID = s.state.nextID("audit")
	}
	s.state.audits = append(s.state.audits, record)
	return record, nil
}

func (s *memoryAuditStore) Search(_ context.Context, filter AuditFilter) ([]StatusAuditRecord, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	consentIDs := nonEmptySet(filter.ConsentIDs)
	out := []StatusAuditRecord{}
	for _, record := range s.state.audits {
		if len(consentIDs) > 0 {
			if _, ok := consentIDs[record.ConsentID]; !ok {
				continue
			}
		}
		if strings.TrimSpace(string(filter.Status)) != "" && record.Status != filter.Status {
			continue
		}
		if strings.TrimSpace(filter.ActionBy) != "" && record.ActionBy != filter.ActionBy {
			continue
		}
		if !filter.From.IsZero() && record.ActionTime.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && record.ActionTime.After(filter.To) {
			continue
		}
		out = append(out, record)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []StatusAuditRecord{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type memoryHistoryStore struct {
	state         *memoryState
	failStoreRows error
}

func (s *memoryHistoryStore) StoreRows(_ context.Context, rows []HistoryRow) error {
	if s.failStoreRows != nil {
		return s.failStoreRows
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.historyRows = append(s.state.historyRows, rows...)
	return nil
}

func (s *memoryHistoryStore) ListByConsent(_ context.Context, consentID string) ([]HistoryRow, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	out := []HistoryRow{}
	for _, row := range s.state.historyRows {
		if row.ConsentID == consentID {
			out = append(out, row)
		}
	}
	return out, nil
}

type memoryFileStore struct {
	state *memoryState
}

func (s *memoryFileStore) Store(_ context.Context, file ConsentFile) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.files[file.ConsentID] = ConsentFile{
		ConsentID: file.ConsentID,
		Content:   append([]byte(nil), file.Content...),
	}
	return nil
}

func (s *memoryFileStore) Get(_ context.Context, consentID string) (ConsentFile, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	file, ok := s.state.files[consentID]
	if !ok {
		return ConsentFile{}, fmt.Errorf("%w: %s", ErrConsentFileNotFound, consentID)
	}
	return ConsentFile{ConsentID: file.ConsentID, Content: append([]byte(nil), file.Content...)}, nil
}

func (s *memoryFileStore) Delete(_ context.Context, consentID string) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if _, ok := s.state.files[consentID]; !ok {
		return fmt.Errorf("%w: %s", ErrConsentFileNotFound, consentID)
	}
	delete(s.state.files, consentID)
	return nil
}

func nonEmptySet(values []string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out[trimmed] = struct{}{}
		}
	}
	return out
}

type tokenRevocation struct {
	ConsentID string
	ClientID  string
	UserID    string
}

type recordingTokenRevoker struct {
	mu    sync.Mutex
	calls []tokenRevocation
	err   error
}

func (r *recordingTokenRevoker) RevokeTokens(_ context.Context, consentID string, clientID string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, tokenRevocation{ConsentID: consentID, ClientID: clientID, UserID: userID})
	return r.err
}

func (r *recordingTokenRevoker) Calls() []tokenRevocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tokenRevocation(nil), r.calls...)
}

type captureMetrics struct {
	mu       sync.Mutex
	counters map[string]int64
	tags     map[string]map[string]string
}

func newCaptureMetrics() *captureMetrics {
	return &captureMetrics{
		counters: map[string]int64{},
		tags:     map[string]map[string]string{},
	}
}

func (m *captureMetrics) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += value
	m.tags[name] = tags
}

func (m *captureMetrics) ObserveHistogram(_ context.Context, name string, _ float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tags[name] = tags
}

func (m *captureMetrics) Counter(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

func (m *captureMetrics) Tags(name string) map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tags[name]
}

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

func newTestService(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, stores *memoryStores, extra ...Option) *Service {
	t.Helper()
	options := append(stores.options(), extra...)
	service, err := NewService(Config{}, options...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return service
}

func newTestConsent(clientID string, consentType ConsentType, status ConsentStatus) ConsentResource {
	return ConsentResource{
		ClientID: clientID,
		Receipt:  `{"permissions":["ReadAccountsBasic"]}`,
		Type:     consentType,
		Status:   status,
	}
}

func mustCreateConsent(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, service *Service, req CreateConsentRequest) DetailedConsent {
	t.Helper()
	detail, err := service.CreateAuthorizableConsent(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateAuthorizableConsent: %v", err)
	}
	return detail
}
