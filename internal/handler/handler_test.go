package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/coworkhq/member-portal/internal/config"
	"github.com/coworkhq/member-portal/internal/form"
	"github.com/coworkhq/member-portal/internal/handler"
	"github.com/coworkhq/member-portal/internal/model"
	"github.com/coworkhq/member-portal/internal/notify"
	"github.com/coworkhq/member-portal/internal/queue"
	"github.com/coworkhq/member-portal/internal/repository"
	"github.com/coworkhq/member-portal/internal/router"
	"github.com/coworkhq/member-portal/internal/session"
	"github.com/coworkhq/member-portal/internal/utils"
)

// The handler tests run requests through the real router and middleware with
// in-memory fakes behind the store interfaces.

type fakeUsers struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uint64]*model.User{}}
}

func (f *fakeUsers) Create(_ context.Context, username, email, hash string, role model.Role) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.byID {
		if u.Username == username {
			return 0, repository.ErrUsernameExists
		}
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	f.nextID++
	now := time.Now()
	f.byID[f.nextID] = &model.User{
		ID: f.nextID, Username: username, Email: email,
		PasswordHash: hash, Role: role, CreatedAt: now, UpdatedAt: now,
	}
	return f.nextID, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := f.GetByUsername(ctx, username)
	return err == nil, nil
}

func (f *fakeUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUsers) FindAll(context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uint64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeEquipment struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*model.Equipment
	// deleteErr, when set, is returned by Delete to mimic storage refusals.
	deleteErr error
}

func newFakeEquipment() *fakeEquipment {
	return &fakeEquipment{byID: map[uint64]*model.Equipment{}}
}

func (f *fakeEquipment) GetByID(_ context.Context, id uint64) (*model.Equipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeEquipment) FindAll(context.Context) ([]model.Equipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Equipment
	for _, e := range f.byID {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeEquipment) Create(_ context.Context, e *model.Equipment) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e.ID = f.nextID
	cp := *e
	f.byID[e.ID] = &cp
	return e.ID, nil
}

func (f *fakeEquipment) Update(_ context.Context, e *model.Equipment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[e.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEquipment) Delete(_ context.Context, id uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

type fakeReservations struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*model.EquipmentReservation
	names  map[uint64]string
}

func newFakeReservations() *fakeReservations {
	return &fakeReservations{
		byID:  map[uint64]*model.EquipmentReservation{},
		names: map[uint64]string{},
	}
}

func (f *fakeReservations) IsAvailable(_ context.Context, equipmentID uint64, date time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	day := date.Format(model.DateLayout)
	for _, r := range f.byID {
		if r.EquipmentID == equipmentID && r.ReservationDate.Format(model.DateLayout) == day && r.IsActive() {
			return false, nil
		}
	}
	return true, nil
}

func (f *fakeReservations) Create(_ context.Context, equipmentID, userID uint64, date time.Time) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.byID[f.nextID] = &model.EquipmentReservation{
		ID: f.nextID, EquipmentID: equipmentID, UserID: userID,
		ReservationDate: date, Status: model.ReservationActive,
	}
	return f.nextID, nil
}

func (f *fakeReservations) FindByUser(_ context.Context, userID uint64) ([]repository.ReservationDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.ReservationDetail
	for _, r := range f.byID {
		if r.UserID == userID {
			out = append(out, repository.ReservationDetail{EquipmentReservation: *r, EquipmentName: f.names[r.EquipmentID]})
		}
	}
	return out, nil
}

func (f *fakeReservations) FindActive(context.Context) ([]repository.ReservationDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.ReservationDetail
	for _, r := range f.byID {
		if r.IsActive() {
			out = append(out, repository.ReservationDetail{EquipmentReservation: *r, EquipmentName: f.names[r.EquipmentID]})
		}
	}
	return out, nil
}

func (f *fakeReservations) Cancel(_ context.Context, id, userID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok || r.UserID != userID || !r.IsActive() {
		return false, nil
	}
	r.Status = model.ReservationCancelled
	return true, nil
}

type fakeTokens struct {
	mu      sync.Mutex
	nextID  uint64
	byToken map[string]*model.PasswordResetToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{byToken: map[string]*model.PasswordResetToken{}}
}

func (f *fakeTokens) Insert(_ context.Context, t *model.PasswordResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t.ID = f.nextID
	f.byToken[t.Token] = t
	return nil
}

func (f *fakeTokens) FindUnused(_ context.Context, token string) (*model.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byToken[token]
	if !ok || t.Used {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokens) InvalidateForUser(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.byToken {
		if t.UserID == userID {
			t.Used = true
		}
	}
	return nil
}

func (f *fakeTokens) MarkUsed(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.byToken {
		if t.ID == id {
			t.Used = true
		}
	}
	return nil
}

func (f *fakeTokens) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	return 0, nil
}

// recordingNotifier captures notification kinds.
type recordingNotifier struct {
	mu    sync.Mutex
	kinds []string
	mails []notify.Mail
}

func (r *recordingNotifier) Enqueue(n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, n.Kind)
	if n.Mail != nil {
		r.mails = append(r.mails, *n.Mail)
	}
}

func (r *recordingNotifier) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.kinds...)
}

func (r *recordingNotifier) Mails() []notify.Mail {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Mail(nil), r.mails...)
}

// nopAudit swallows audit events; Publish runs on a background goroutine so
// nothing is asserted on it.
type nopAudit struct{ mu sync.Mutex }

func (a *nopAudit) Publish(context.Context, queue.AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return nil
}

type fixture struct {
	e            *echo.Echo
	cfg          config.Config
	sessions     session.Store
	users        *fakeUsers
	equipment    *fakeEquipment
	reservations *fakeReservations
	tokens       *fakeTokens
	notifier     *recordingNotifier
}

func newFixture(t *testing.T, mutate ...func(*config.Config)) *fixture {
	t.Helper()

	cfg := config.Config{
		Env:          "test",
		JWTSecret:    "test-secret",
		AccessTTLMin: 30,
		BcryptCost:   bcrypt.MinCost,
		SessionTTL:   time.Hour,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	f := &fixture{
		cfg:          cfg,
		sessions:     session.NewMemoryStore(cfg.SessionTTL),
		users:        newFakeUsers(),
		equipment:    newFakeEquipment(),
		reservations: newFakeReservations(),
		tokens:       newFakeTokens(),
		notifier:     &recordingNotifier{},
	}

	log := zap.NewNop()
	audit := &nopAudit{}
	h := router.Handlers{
		Home:         handler.NewHomeHandler(cfg, f.sessions, log),
		Auth:         handler.NewAuthHandler(cfg, f.users, f.tokens, f.sessions, f.notifier, audit, log),
		Equipment:    handler.NewEquipmentHandler(f.equipment, f.notifier, audit, log),
		Reservations: handler.NewReservationHandler(f.reservations, f.equipment, f.notifier, audit, log),
		Users:        handler.NewUserHandler(cfg, f.users, f.notifier, audit, log),
	}

	f.e = echo.New()
	f.e.Validator = form.NewValidator()
	router.Register(f.e, cfg, config.RateLimitConfig{}, nil, f.sessions, f.users, h)
	return f
}

// seedUser creates an account directly in the fake store and returns it.
func (f *fixture) seedUser(t *testing.T, username string, role model.Role) *model.User {
	t.Helper()
	hash, err := utils.HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	id, err := f.users.Create(context.Background(), username, username+"@example.com", hash, role)
	require.NoError(t, err)
	u, err := f.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

// sessionCookie opens a session for the user and returns its cookie.
func (f *fixture) sessionCookie(t *testing.T, userID uint64) *http.Cookie {
	t.Helper()
	sid, err := f.sessions.Create(context.Background(), userID)
	require.NoError(t, err)
	return &http.Cookie{Name: session.CookieName, Value: sid}
}

func (f *fixture) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
