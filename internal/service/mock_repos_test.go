package service

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-timeclock/internal/model"
	"go-timeclock/internal/ws"
	"go-timeclock/pkg/namecache"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (m *mockUserRepo) FindByEmail(email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindByEmails(emails []string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if slices.Contains(emails, u.Email) {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) FindByID(id uuid.UUID) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindAll() ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, nil
}

func (m *mockUserRepo) Create(user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) Update(user *model.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) Delete(id uuid.UUID, _ string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) UpdatePassword(userID uuid.UUID, hashedPassword string) error {
	if u, ok := m.users[userID]; ok {
		u.Password = hashedPassword
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockUserRepo) UpdatePrivileges(userID uuid.UUID, privileges []model.Privilege) error {
	if u, ok := m.users[userID]; ok {
		u.Privileges = privileges
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockUserRepo) UpdateTokenVersion(userID uuid.UUID, version string) error {
	if u, ok := m.users[userID]; ok {
		u.TokenVersion = version
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockUserRepo) UpdateLastSeen(userID uuid.UUID) error {
	if u, ok := m.users[userID]; ok {
		now := time.Now()
		u.LastSeenAt = &now
		return nil
	}
	return gorm.ErrRecordNotFound
}

// addUser creates an active user with the given role code and password "secret1".
func (m *mockUserRepo) addUser(email, name, roleCode string) *model.User {
	u := &model.User{
		Email:       email,
		FullName:    name,
		DisplayName: name,
		IsActive:    true,
		Role:        &model.Role{Code: roleCode},
	}
	_ = u.SetPassword("secret1")
	_ = m.Create(u)
	return u
}

// ── Mock PrivilegeRepository ──

type mockPrivilegeRepo struct {
	privileges []model.Privilege
}

func newMockPrivilegeRepo() *mockPrivilegeRepo {
	repo := &mockPrivilegeRepo{}
	for i, p := range model.DefaultPrivileges {
		p.ID = uint(i + 1)
		repo.privileges = append(repo.privileges, p)
	}
	return repo
}

func (m *mockPrivilegeRepo) FindByCodes(codes []string) ([]model.Privilege, error) {
	var result []model.Privilege
	for _, p := range m.privileges {
		if slices.Contains(codes, p.Code) {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockPrivilegeRepo) FindAll() ([]model.Privilege, error) {
	return m.privileges, nil
}

func (m *mockPrivilegeRepo) SeedDefaults() error { return nil }

// ── Mock RoleRepository ──

type mockRoleRepo struct {
	roles []model.Role
}

func newMockRoleRepo() *mockRoleRepo {
	repo := &mockRoleRepo{}
	for i, r := range model.DefaultRoles {
		r.ID = uint(i + 1)
		repo.roles = append(repo.roles, r)
	}
	return repo
}

func (m *mockRoleRepo) FindAll() ([]model.Role, error) {
	return m.roles, nil
}

func (m *mockRoleRepo) FindByID(id uint) (*model.Role, error) {
	for i := range m.roles {
		if m.roles[i].ID == id {
			return &m.roles[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoleRepo) FindByCode(code string) (*model.Role, error) {
	for i := range m.roles {
		if m.roles[i].Code == code {
			return &m.roles[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoleRepo) SeedDefaults() error { return nil }

func (m *mockRoleRepo) ReplacePrivileges(role *model.Role, privileges []model.Privilege) error {
	role.Privileges = privileges
	return nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	rows map[uuid.UUID]*model.Attendance
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{rows: make(map[uuid.UUID]*model.Attendance)}
}

func (m *mockAttendanceRepo) Create(a *model.Attendance) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if m.conflictsWithOpen(a) {
		return gorm.ErrDuplicatedKey
	}
	m.rows[a.ID] = a
	return nil
}

func (m *mockAttendanceRepo) Update(a *model.Attendance) error {
	if m.conflictsWithOpen(a) {
		return gorm.ErrDuplicatedKey
	}
	m.rows[a.ID] = a
	return nil
}

// conflictsWithOpen mirrors the one-open-shift-per-user unique index.
func (m *mockAttendanceRepo) conflictsWithOpen(a *model.Attendance) bool {
	if a.ClockOut != nil {
		return false
	}
	for id, other := range m.rows {
		if id != a.ID && other.UserEmail == a.UserEmail && other.ClockOut == nil {
			return true
		}
	}
	return false
}

func (m *mockAttendanceRepo) Delete(id uuid.UUID, _ string) error {
	delete(m.rows, id)
	return nil
}

func (m *mockAttendanceRepo) FindByID(id uuid.UUID) (*model.Attendance, error) {
	if a, ok := m.rows[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) FindOpenByUser(email string) (*model.Attendance, error) {
	for _, a := range m.rows {
		if a.UserEmail == email && a.ClockOut == nil {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) FindByRange(start, end time.Time) ([]model.Attendance, error) {
	return m.find(func(a *model.Attendance) bool {
		return !a.ClockIn.Before(start) && a.ClockIn.Before(end)
	}), nil
}

func (m *mockAttendanceRepo) FindByUserAndRange(email string, start, end time.Time) ([]model.Attendance, error) {
	return m.find(func(a *model.Attendance) bool {
		return a.UserEmail == email && !a.ClockIn.Before(start) && a.ClockIn.Before(end)
	}), nil
}

func (m *mockAttendanceRepo) find(match func(*model.Attendance) bool) []model.Attendance {
	var result []model.Attendance
	for _, a := range m.rows {
		if match(a) {
			result = append(result, *a)
		}
	}
	slices.SortFunc(result, func(a, b model.Attendance) int {
		return a.ClockIn.Compare(b.ClockIn)
	})
	return result
}

// add stores a shift; a zero end leaves it open.
func (m *mockAttendanceRepo) add(email, roleCode string, start, end time.Time, companion bool) *model.Attendance {
	a := &model.Attendance{UserEmail: email, RoleCode: roleCode, ClockIn: start, WithCompanion: companion}
	if !end.IsZero() {
		a.ClockOut = &end
	}
	_ = m.Create(a)
	return a
}

// ── Mock TransactionRepository ──

type mockTransactionRepo struct {
	txs map[uuid.UUID]*model.SalesTransaction
}

func newMockTransactionRepo() *mockTransactionRepo {
	return &mockTransactionRepo{txs: make(map[uuid.UUID]*model.SalesTransaction)}
}

func (m *mockTransactionRepo) Create(tx *model.SalesTransaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	m.txs[tx.ID] = tx
	return nil
}

func (m *mockTransactionRepo) Delete(id uuid.UUID, _ string) error {
	delete(m.txs, id)
	return nil
}

func (m *mockTransactionRepo) FindByID(id uuid.UUID) (*model.SalesTransaction, error) {
	if tx, ok := m.txs[id]; ok {
		return tx, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTransactionRepo) FindByRange(start, end time.Time) ([]model.SalesTransaction, error) {
	var result []model.SalesTransaction
	for _, tx := range m.txs {
		if !tx.OccurredAt.Before(start) && tx.OccurredAt.Before(end) {
			result = append(result, *tx)
		}
	}
	slices.SortFunc(result, func(a, b model.SalesTransaction) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})
	return result, nil
}

func (m *mockTransactionRepo) FindBySession(sessionID uuid.UUID) ([]model.SalesTransaction, error) {
	var result []model.SalesTransaction
	for _, tx := range m.txs {
		if tx.RegisterSessionID != nil && *tx.RegisterSessionID == sessionID {
			result = append(result, *tx)
		}
	}
	slices.SortFunc(result, func(a, b model.SalesTransaction) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})
	return result, nil
}

// ── Mock RegisterRepository ──

type mockRegisterRepo struct {
	sessions map[uuid.UUID]*model.RegisterSession
}

func newMockRegisterRepo() *mockRegisterRepo {
	return &mockRegisterRepo{sessions: make(map[uuid.UUID]*model.RegisterSession)}
}

func (m *mockRegisterRepo) Create(s *model.RegisterSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *mockRegisterRepo) Update(s *model.RegisterSession) error {
	m.sessions[s.ID] = s
	return nil
}

func (m *mockRegisterRepo) FindOpen() (*model.RegisterSession, error) {
	for _, s := range m.sessions {
		if s.ClosedAt == nil {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Test doubles ──

type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (p *recordingPublisher) Publish(event ws.Event) {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Action
	}
	return out
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

var jst = time.FixedZone("JST", 9*60*60)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 3, day, hour, minute, 0, 0, jst)
}

func newNameCache(userRepo *mockUserRepo, clock *fakeClock) *namecache.Cache {
	return namecache.New(NewNameLoader(userRepo), clock, time.Minute)
}

var nopLogger = zap.NewNop()
