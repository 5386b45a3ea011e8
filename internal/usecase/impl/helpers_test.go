package impl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"rentdesk/internal/domain/entity"
	domainerrors "rentdesk/internal/domain/errors"
	"rentdesk/internal/domain/repository"
	"rentdesk/internal/domain/service"
	"rentdesk/internal/errors"

	"github.com/google/uuid"
)

// In-memory fakes shared by the service tests. They enforce the same
// uniqueness rules as the real repositories so constraint-driven flows can
// be exercised without a database.

type fakeTxManager struct {
	factory repository.RepositoryFactory
}

func (tm *fakeTxManager) Execute(_ context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	return fn(tm.factory)
}

type fakeRepoFactory struct {
	userRepo    repository.UserRepository
	authRepo    repository.AuthRepository
	refreshRepo repository.RefreshTokenRepository
	renterRepo  repository.RenterRepository
	rentalRepo  repository.RentalRecordRepository
}

func (f *fakeRepoFactory) UserRepo() repository.UserRepository { return f.userRepo }

func (f *fakeRepoFactory) AuthRepo() repository.AuthRepository { return f.authRepo }

func (f *fakeRepoFactory) RefreshTokenRepo() repository.RefreshTokenRepository {
	return f.refreshRepo
}

func (f *fakeRepoFactory) RenterRepo() repository.RenterRepository { return f.renterRepo }

func (f *fakeRepoFactory) RentalRepo() repository.RentalRecordRepository { return f.rentalRepo }

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user

	return &copied, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			copied := *user

			return &copied, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Name == user.Name || existing.Email == user.Email {
			return domainerrors.ErrUserAlreadyExists
		}
	}

	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.ID] = &copied

	return nil
}

func (r *fakeUserRepo) AcquireSessionMutex(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}

	return nil
}

type authKey struct {
	provider       entity.ProviderType
	providerUserID string
}

type fakeAuthRepo struct {
	mu    sync.Mutex
	auths map[authKey]*entity.Authentication
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{auths: make(map[authKey]*entity.Authentication)}
}

func (r *fakeAuthRepo) CreateAuthentication(_ context.Context, auth *entity.Authentication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := authKey{provider: auth.Provider, providerUserID: auth.ProviderUserID}
	if _, ok := r.auths[key]; ok {
		return domainerrors.ErrConflict
	}

	auth.ID = uuid.New()
	auth.CreatedAt = time.Now()
	copied := *auth
	r.auths[key] = &copied

	return nil
}

func (r *fakeAuthRepo) FindAuthentication(_ context.Context, provider entity.ProviderType, providerUserID string) (*entity.Authentication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	auth, ok := r.auths[authKey{provider: provider, providerUserID: providerUserID}]
	if !ok {
		return nil, repository.ErrAuthNotFound
	}
	copied := *auth

	return &copied, nil
}

type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*entity.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[uuid.UUID]*entity.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) CreateRefreshToken(_ context.Context, token *entity.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token.ID = uuid.New()
	token.CreatedAt = time.Now()
	copied := *token
	r.tokens[token.ID] = &copied

	return nil
}

func (r *fakeRefreshTokenRepo) FindRefreshTokenByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, token := range r.tokens {
		if token.TokenHash == tokenHash {
			if time.Now().After(token.ExpiresAt) {
				return nil, repository.ErrRefreshTokenExpired
			}
			copied := *token

			return &copied, nil
		}
	}

	return nil, repository.ErrRefreshTokenNotFound
}

func (r *fakeRefreshTokenRepo) FindRefreshTokenByID(_ context.Context, id uuid.UUID) (*entity.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[id]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	copied := *token

	return &copied, nil
}

func (r *fakeRefreshTokenRepo) FindRefreshTokensByUserID(_ context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.RefreshToken
	for _, token := range r.tokens {
		if token.UserID == userID && time.Now().Before(token.ExpiresAt) {
			copied := *token
			result = append(result, &copied)
		}
	}

	return result, nil
}

func (r *fakeRefreshTokenRepo) DeleteRefreshToken(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, id)

	return nil
}

func (r *fakeRefreshTokenRepo) DeleteRefreshTokenByHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, token := range r.tokens {
		if token.TokenHash == tokenHash {
			delete(r.tokens, id)
		}
	}

	return nil
}

func (r *fakeRefreshTokenRepo) DeleteRefreshTokensByUserID(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, token := range r.tokens {
		if token.UserID == userID {
			delete(r.tokens, id)
		}
	}

	return nil
}

func (r *fakeRefreshTokenRepo) CountActiveSessionsByUserID(_ context.Context, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, token := range r.tokens {
		if token.UserID == userID && time.Now().Before(token.ExpiresAt) {
			count++
		}
	}

	return count, nil
}

func (r *fakeRefreshTokenRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.tokens)
}

// fakeRenterRepo keeps renters in insertion order so ListAll can honor the
// repository contract of newest-first.
type fakeRenterRepo struct {
	mu      sync.Mutex
	renters []*entity.Renter
}

func newFakeRenterRepo() *fakeRenterRepo {
	return &fakeRenterRepo{}
}

func (r *fakeRenterRepo) FindByName(_ context.Context, name string) (*entity.Renter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, renter := range r.renters {
		if renter.Name == name {
			copied := *renter

			return &copied, nil
		}
	}

	return nil, repository.ErrRenterNotFound
}

func (r *fakeRenterRepo) Create(_ context.Context, renter *entity.Renter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.renters {
		if existing.Name == renter.Name {
			return domainerrors.ErrRenterAlreadyExists
		}
	}

	renter.ID = uuid.New()
	renter.CreatedAt = time.Now()
	renter.UpdatedAt = renter.CreatedAt
	copied := *renter
	r.renters = append(r.renters, &copied)

	return nil
}

func (r *fakeRenterRepo) ListAll(_ context.Context) ([]*entity.Renter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*entity.Renter, 0, len(r.renters))
	for i := len(r.renters) - 1; i >= 0; i-- {
		copied := *r.renters[i]
		result = append(result, &copied)
	}

	return result, nil
}

// fakeRentalRepo keeps records in insertion order so ListAll can honor the
// repository contract of newest-first.
type fakeRentalRepo struct {
	mu      sync.Mutex
	records []*entity.RentalRecord
}

func newFakeRentalRepo() *fakeRentalRepo {
	return &fakeRentalRepo{}
}

func (r *fakeRentalRepo) Create(_ context.Context, record *entity.RentalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.ID = uuid.New()
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	copied := *record
	r.records = append(r.records, &copied)

	return nil
}

func (r *fakeRentalRepo) find(id uuid.UUID) *entity.RentalRecord {
	for _, record := range r.records {
		if record.ID == id {
			return record
		}
	}

	return nil
}

func (r *fakeRentalRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.RentalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := r.find(id)
	if record == nil {
		return nil, repository.ErrRentalNotFound
	}
	copied := *record

	return &copied, nil
}

func (r *fakeRentalRepo) ListAll(_ context.Context) ([]*entity.RentalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*entity.RentalRecord, 0, len(r.records))
	for i := len(r.records) - 1; i >= 0; i-- {
		copied := *r.records[i]
		result = append(result, &copied)
	}

	return result, nil
}

// AdvancePayment mirrors the conditional update semantics of the real
// repository: the guard and the mutation happen under one lock.
func (r *fakeRentalRepo) AdvancePayment(_ context.Context, id uuid.UUID) (*entity.RentalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := r.find(id)
	if record == nil {
		return nil, repository.ErrRentalNotFound
	}
	if record.RemainingDays <= 0 {
		return nil, repository.ErrRentalSettled
	}

	now := time.Now()
	record.AmountPaid += record.DailyRate
	record.RemainingDays--
	record.LastPaymentDate = &now
	record.UpdatedAt = now

	copied := *record

	return &copied, nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

func (fakeHasher) ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return errors.New("password too short")
	}

	return nil
}

type fakeTokenService struct {
	mu     sync.Mutex
	claims map[string]*service.Claims
}

func newFakeTokenService() *fakeTokenService {
	return &fakeTokenService{claims: make(map[string]*service.Claims)}
}

func (s *fakeTokenService) GenerateTokens(userID uuid.UUID, name, role string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	access := "access-" + uuid.NewString()
	refresh := "refresh-" + uuid.NewString()
	s.claims[access] = &service.Claims{UserID: userID, Name: name, Role: role, Type: service.TokenTypeAccess}
	s.claims[refresh] = &service.Claims{UserID: userID, Type: service.TokenTypeRefresh}

	return access, refresh, nil
}

func (s *fakeTokenService) ValidateToken(tokenString string) (*service.Claims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claims, ok := s.claims[tokenString]
	if !ok {
		return nil, errors.New("failed to parse token structure")
	}

	return claims, nil
}

func (s *fakeTokenService) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}

func (s *fakeTokenService) GetRefreshTokenDuration() time.Duration {
	return time.Hour
}

type fakeOAuthService struct {
	user *service.OAuthUser
	err  error
}

func (s *fakeOAuthService) VerifyIDToken(_ context.Context, _ string) (*service.OAuthUser, error) {
	if s.err != nil {
		return nil, s.err
	}

	return s.user, nil
}

func (s *fakeOAuthService) GetProvider() entity.ProviderType {
	return entity.ProviderTypeGoogle
}

type testEnv struct {
	userRepo    *fakeUserRepo
	authRepo    *fakeAuthRepo
	refreshRepo *fakeRefreshTokenRepo
	renterRepo  *fakeRenterRepo
	rentalRepo  *fakeRentalRepo
	txManager   *fakeTxManager
	tokenSvc    *fakeTokenService
	oauthSvc    *fakeOAuthService
	logger      *slog.Logger
}

func newTestEnv() *testEnv {
	userRepo := newFakeUserRepo()
	authRepo := newFakeAuthRepo()
	refreshRepo := newFakeRefreshTokenRepo()
	renterRepo := newFakeRenterRepo()
	rentalRepo := newFakeRentalRepo()

	factory := &fakeRepoFactory{
		userRepo:    userRepo,
		authRepo:    authRepo,
		refreshRepo: refreshRepo,
		renterRepo:  renterRepo,
		rentalRepo:  rentalRepo,
	}

	return &testEnv{
		userRepo:    userRepo,
		authRepo:    authRepo,
		refreshRepo: refreshRepo,
		renterRepo:  renterRepo,
		rentalRepo:  rentalRepo,
		txManager:   &fakeTxManager{factory: factory},
		tokenSvc:    newFakeTokenService(),
		oauthSvc:    &fakeOAuthService{},
		logger:      slog.Default(),
	}
}
