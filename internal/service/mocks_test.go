package service

import (
	"context"
	"sync"
	"time"

	"shortify-be/internal/entities"
	"shortify-be/internal/oauth"
	"shortify-be/internal/repository"
)

// memUsers is an in-memory UserRepository keyed by email.
type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*entities.User
	nextID  int
	now     func() time.Time

	findErr error
}

func newMemUsers(now func() time.Time) *memUsers {
	return &memUsers{byEmail: make(map[string]*entities.User), now: now}
}

func (m *memUsers) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[user.Email]; ok {
		return nil, repository.ErrDuplicateEmail
	}
	m.nextID++
	u := *user
	u.ID = uuidFor(m.nextID)
	u.CreatedAt = m.now()
	u.UpdatedAt = u.CreatedAt
	m.byEmail[u.Email] = &u
	out := u
	return &out, nil
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (m *memUsers) FindByID(ctx context.Context, id string) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) MarkVerified(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsVerified = true
	return nil
}

func (m *memUsers) DeletePending(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, u := range m.byEmail {
		if u.ID == id && !u.IsVerified {
			delete(m.byEmail, email)
		}
	}
	return nil
}

func (m *memUsers) DeleteExpiredUnverified(ctx context.Context, createdBefore time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for email, u := range m.byEmail {
		if !u.IsVerified && u.CreatedAt.Before(createdBefore) {
			delete(m.byEmail, email)
			n++
		}
	}
	return n, nil
}

func uuidFor(n int) string {
	const base = "00000000-0000-4000-8000-000000000000"
	s := []byte(base)
	for i := len(s) - 1; n > 0; i-- {
		s[i] = "0123456789"[n%10]
		n /= 10
	}
	return string(s)
}

type mockDispatcher struct {
	mu     sync.Mutex
	emails []string
	tokens []string
}

func (m *mockDispatcher) Dispatch(email, token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emails = append(m.emails, email)
	m.tokens = append(m.tokens, token)
	return true
}

func (m *mockDispatcher) lastToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tokens) == 0 {
		return ""
	}
	return m.tokens[len(m.tokens)-1]
}

type mockVerifier struct {
	VerifyFunc func(ctx context.Context, idToken string) (oauth.Identity, error)
}

func (m *mockVerifier) Verify(ctx context.Context, idToken string) (oauth.Identity, error) {
	return m.VerifyFunc(ctx, idToken)
}

// mockURLRepo is a func-field URLRepository.
type mockURLRepo struct {
	CreateFunc              func(ctx context.Context, shortCode, originalURL, userID string, expiresAt *time.Time) (*entities.URL, error)
	FindByShortCodeFunc     func(ctx context.Context, shortCode string) (*entities.URL, error)
	FindByOwnerAndURLFunc   func(ctx context.Context, userID, originalURL string) (*entities.URL, error)
	IncrementVisitCountFunc func(ctx context.Context, shortCode string) error
	ListByUserFunc          func(ctx context.Context, userID string, limit, offset int, search string) ([]*entities.URL, int64, error)
}

func (m *mockURLRepo) Create(ctx context.Context, shortCode, originalURL, userID string, expiresAt *time.Time) (*entities.URL, error) {
	return m.CreateFunc(ctx, shortCode, originalURL, userID, expiresAt)
}

func (m *mockURLRepo) FindByShortCode(ctx context.Context, shortCode string) (*entities.URL, error) {
	return m.FindByShortCodeFunc(ctx, shortCode)
}

func (m *mockURLRepo) FindByOwnerAndURL(ctx context.Context, userID, originalURL string) (*entities.URL, error) {
	return m.FindByOwnerAndURLFunc(ctx, userID, originalURL)
}

func (m *mockURLRepo) IncrementVisitCount(ctx context.Context, shortCode string) error {
	return m.IncrementVisitCountFunc(ctx, shortCode)
}

func (m *mockURLRepo) ListByUser(ctx context.Context, userID string, limit, offset int, search string) ([]*entities.URL, int64, error) {
	return m.ListByUserFunc(ctx, userID, limit, offset, search)
}

// memLinks is an in-memory URLRepository enforcing both unique constraints.
type memLinks struct {
	mu     sync.Mutex
	byCode map[string]*entities.URL
}

func newMemLinks() *memLinks {
	return &memLinks{byCode: make(map[string]*entities.URL)}
}

func (m *memLinks) Create(ctx context.Context, shortCode, originalURL, userID string, expiresAt *time.Time) (*entities.URL, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byCode[shortCode]; ok {
		return nil, repository.ErrDuplicateShortCode
	}
	for _, l := range m.byCode {
		if l.UserID == userID && l.OriginalURL == originalURL {
			return nil, repository.ErrDuplicateURL
		}
	}
	l := &entities.URL{
		ID:          uuidFor(len(m.byCode) + 1),
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		UserID:      userID,
		ExpiresAt:   expiresAt,
	}
	m.byCode[shortCode] = l
	out := *l
	return &out, nil
}

func (m *memLinks) FindByShortCode(ctx context.Context, shortCode string) (*entities.URL, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.byCode[shortCode]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *l
	return &out, nil
}

func (m *memLinks) FindByOwnerAndURL(ctx context.Context, userID, originalURL string) (*entities.URL, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.byCode {
		if l.UserID == userID && l.OriginalURL == originalURL {
			out := *l
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memLinks) IncrementVisitCount(ctx context.Context, shortCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.byCode[shortCode]
	if !ok {
		return repository.ErrNotFound
	}
	l.VisitCount++
	return nil
}

func (m *memLinks) ListByUser(ctx context.Context, userID string, limit, offset int, search string) ([]*entities.URL, int64, error) {
	return nil, 0, nil
}

// seqCodes yields codes from a fixed list, then a counter-based fallback.
type seqCodes struct {
	mu    sync.Mutex
	codes []string
	calls int
}

func (s *seqCodes) Generate(length int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.codes) > 0 {
		c := s.codes[0]
		s.codes = s.codes[1:]
		return c, nil
	}
	return uuidFor(s.calls)[36-length:], nil
}
