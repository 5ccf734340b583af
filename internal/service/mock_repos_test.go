package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shelter-caller/config"
	"shelter-caller/internal/authz"
	"shelter-caller/internal/model"
	"shelter-caller/internal/repository"
	"shelter-caller/pkg/businessday"
)

// ── Mock ShelterRepository ──

type mockShelterRepo struct {
	mu       sync.Mutex
	shelters map[uint]*model.Shelter
	nextID   uint
	counts   *mockCountRepo
}

func newMockShelterRepo(counts *mockCountRepo) *mockShelterRepo {
	return &mockShelterRepo{shelters: make(map[uint]*model.Shelter), nextID: 1, counts: counts}
}

func (m *mockShelterRepo) Create(_ context.Context, s *model.Shelter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.shelters {
		if other.Name == s.Name || other.LoginID == s.LoginID ||
			(s.Phone != nil && other.Phone != nil && *s.Phone == *other.Phone) {
			return repository.ErrDuplicate
		}
	}
	if s.ID == 0 {
		s.ID = m.nextID
	}
	if s.ID >= m.nextID {
		m.nextID = s.ID + 1
	}
	cp := *s
	m.shelters[s.ID] = &cp
	return nil
}

func (m *mockShelterRepo) GetByID(_ context.Context, id uint) (*model.Shelter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.shelters[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShelterRepo) GetByLoginID(_ context.Context, loginID string) (*model.Shelter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.shelters {
		if s.LoginID == loginID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShelterRepo) sorted(filter func(*model.Shelter) bool) []model.Shelter {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Shelter
	for _, s := range m.shelters {
		if filter(s) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *mockShelterRepo) List(_ context.Context) ([]model.Shelter, error) {
	return m.sorted(func(*model.Shelter) bool { return true }), nil
}

func (m *mockShelterRepo) ListVisible(_ context.Context, publicOnly bool) ([]model.Shelter, error) {
	return m.sorted(func(s *model.Shelter) bool {
		return s.Visible && (!publicOnly || s.Public)
	}), nil
}

func (m *mockShelterRepo) Update(_ context.Context, s *model.Shelter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, other := range m.shelters {
		if id != s.ID && (other.Name == s.Name || other.LoginID == s.LoginID) {
			return repository.ErrDuplicate
		}
	}
	cp := *s
	m.shelters[s.ID] = &cp
	return nil
}

func (m *mockShelterRepo) Delete(_ context.Context, id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shelters[id]; !ok {
		return false, nil
	}
	delete(m.shelters, id)
	return true, nil
}

func (m *mockShelterRepo) ListUncontacted(ctx context.Context, day businessday.Date) ([]model.Shelter, error) {
	// 与 shelterRepo.ListUncontacted 的 SQL 条件一致：启用且号码非 NULL、非空串
	all := m.sorted(func(s *model.Shelter) bool {
		return s.Active && s.Phone != nil && *s.Phone != ""
	})
	var out []model.Shelter
	for _, s := range all {
		if _, err := m.counts.Get(ctx, s.ID, day); errors.Is(err, gorm.ErrRecordNotFound) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── Mock CountRepository ──

type countKey struct {
	shelterID uint
	day       businessday.Date
}

type mockCountRepo struct {
	mu        sync.Mutex
	counts    map[countKey]*model.Count
	upsertErr error
}

func newMockCountRepo() *mockCountRepo {
	return &mockCountRepo{counts: make(map[countKey]*model.Count)}
}

func (m *mockCountRepo) Upsert(_ context.Context, c *model.Count) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	cp := *c
	m.counts[countKey{c.ShelterID, c.Day}] = &cp
	return nil
}

func (m *mockCountRepo) Get(_ context.Context, shelterID uint, day businessday.Date) (*model.Count, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.counts[countKey{shelterID, day}]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCountRepo) Delete(_ context.Context, shelterID uint, day businessday.Date) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := countKey{shelterID, day}
	if _, ok := m.counts[k]; !ok {
		return false, nil
	}
	delete(m.counts, k)
	return true, nil
}

func (m *mockCountRepo) ListByDay(_ context.Context, day businessday.Date) ([]model.Count, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Count
	for k, c := range m.counts {
		if k.day == day {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCountRepo) ListRange(_ context.Context, from, to businessday.Date) ([]model.Count, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Count
	for k, c := range m.counts {
		if !k.day.Before(from) && !k.day.After(to) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.After(out[j].Day) })
	return out, nil
}

// ── Mock LogRepository ──

type mockLogRepo struct {
	mu        sync.Mutex
	logs      []model.Log
	createErr error
}

func newMockLogRepo() *mockLogRepo {
	return &mockLogRepo{}
}

func (m *mockLogRepo) Create(_ context.Context, l *model.Log) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	l.ID = uint(len(m.logs) + 1)
	m.logs = append(m.logs, *l)
	return nil
}

func (m *mockLogRepo) List(_ context.Context, shelterID uint, offset, limit int) ([]model.Log, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []model.Log
	for i := len(m.logs) - 1; i >= 0; i-- {
		l := m.logs[i]
		if shelterID == 0 || (l.ShelterID != nil && *l.ShelterID == shelterID) {
			matched = append(matched, l)
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockLogRepo) all() []model.Log {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Log(nil), m.logs...)
}

// ── Mock PreferenceRepository ──

type mockPreferenceRepo struct {
	prefs map[string]*model.Preference
}

func newMockPreferenceRepo() *mockPreferenceRepo {
	return &mockPreferenceRepo{prefs: make(map[string]*model.Preference)}
}

func (m *mockPreferenceRepo) Get(_ context.Context, appID string) (*model.Preference, error) {
	if p, ok := m.prefs[appID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPreferenceRepo) CreateIfAbsent(_ context.Context, p *model.Preference) error {
	if _, ok := m.prefs[p.AppID]; ok {
		return nil
	}
	cp := *p
	cp.UpdatedAt = time.Now()
	m.prefs[p.AppID] = &cp
	return nil
}

func (m *mockPreferenceRepo) Update(_ context.Context, p *model.Preference) error {
	cp := *p
	cp.UpdatedAt = time.Now()
	m.prefs[p.AppID] = &cp
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	roles map[string]model.Role
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User), roles: make(map[string]model.Role)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.Username]; ok {
		return repository.ErrDuplicate
	}
	user.ID = uint(len(m.users) + 1)
	m.users[user.Username] = user
	return nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

func (m *mockUserRepo) EnsureRoles(_ context.Context, names []string) ([]model.Role, error) {
	var out []model.Role
	for _, name := range names {
		r, ok := m.roles[name]
		if !ok {
			r = model.Role{ID: uint(len(m.roles) + 1), Name: name}
			m.roles[name] = r
		}
		out = append(out, r)
	}
	return out, nil
}

// ── 测试辅助 ──

// anchorage 2019-05-21 的本地时刻
func anchorageAt(hour, min int) time.Time {
	loc, err := time.LoadLocation("America/Anchorage")
	if err != nil {
		panic(err)
	}
	return time.Date(2019, 5, 21, hour, min, 0, 0, loc)
}

type testEnv struct {
	repo     *repository.Repository
	shelters *mockShelterRepo
	counts   *mockCountRepo
	logs     *mockLogRepo
	prefs    *mockPreferenceRepo
	users    *mockUserRepo
	cfg      *config.Config
	clock    *businessday.FixedClock
	authz    *authz.Authorizer
}

func newTestEnv(now time.Time) *testEnv {
	counts := newMockCountRepo()
	env := &testEnv{
		counts:   counts,
		shelters: newMockShelterRepo(counts),
		logs:     newMockLogRepo(),
		prefs:    newMockPreferenceRepo(),
		users:    newMockUserRepo(),
		clock:    &businessday.FixedClock{T: now},
		cfg: &config.Config{
			Auth: config.AuthConfig{JWTSecret: "0123456789abcdef-test", AccessTokenTTL: time.Hour},
			Telephony: config.TelephonyConfig{
				FromNumber:  "+19073121978",
				Timeout:     time.Second,
				Concurrency: 2,
			},
			Prefs: config.PrefsConfig{
				AppID:        "test",
				Timezone:     "America/Anchorage",
				EnforceHours: true,
				OpenTime:     "20:00",
				CloseTime:    "03:00",
				StartDay:     "22:00",
			},
		},
	}
	env.repo = &repository.Repository{
		Shelter:    env.shelters,
		Count:      env.counts,
		Log:        env.logs,
		Preference: env.prefs,
		User:       env.users,
	}
	a, err := authz.NewAuthorizer()
	if err != nil {
		panic(err)
	}
	env.authz = a
	return env
}

func (e *testEnv) service(caller *stubCaller) *Service {
	if caller == nil {
		caller = &stubCaller{}
	}
	return NewService(Deps{
		Config:     e.cfg,
		Repo:       e.repo,
		Authorizer: e.authz,
		Caller:     caller,
		Clock:      e.clock,
		Logger:     zap.NewNop(),
	})
}

func (e *testEnv) addShelter(name, loginID, phone string, capacity int) *model.Shelter {
	s := &model.Shelter{
		Name:     name,
		LoginID:  loginID,
		Capacity: capacity,
		Active:   true,
		Visible:  true,
	}
	if phone != "" {
		s.Phone = &phone
	}
	if err := e.shelters.Create(context.Background(), s); err != nil {
		panic(err)
	}
	return s
}

// ── 外呼桩 ──

type stubCaller struct {
	mu     sync.Mutex
	called []uint
	failOn map[uint]error
}

func (c *stubCaller) StartFlow(_ context.Context, _ string, shelterID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.called = append(c.called, shelterID)
	if err, ok := c.failOn[shelterID]; ok {
		return err
	}
	return nil
}
