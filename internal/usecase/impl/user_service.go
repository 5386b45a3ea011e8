// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	"rentdesk/config"
	deliverycontext "rentdesk/internal/delivery/context"
	"rentdesk/internal/domain/entity"
	domainerrors "rentdesk/internal/domain/errors"
	"rentdesk/internal/domain/repository"
	"rentdesk/internal/domain/service"
	"rentdesk/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager         repository.TransactionManager
	userRepo          repository.UserRepository
	hasher            service.PasswordHasher
	tokenService      service.TokenService
	googleAuthService service.OAuthAuthService
	maxActiveSessions int
	logger            *slog.Logger
}

// UserServiceParams holds dependencies for userService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager         repository.TransactionManager
	UserRepo          repository.UserRepository
	Hasher            service.PasswordHasher
	TokenService      service.TokenService
	GoogleAuthService service.OAuthAuthService
	Config            *config.Config
	Logger            *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	var maxActiveSessions int
	if params.Config != nil && params.Config.Auth != nil {
		maxActiveSessions = params.Config.Auth.MaxActiveSessions
	}

	return &userService{
		txManager:         params.TxManager,
		userRepo:          params.UserRepo,
		hasher:            params.Hasher,
		tokenService:      params.TokenService,
		googleAuthService: params.GoogleAuthService,
		maxActiveSessions: maxActiveSessions,
		logger:            params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register orchestrates the complete account registration process. Name and
// email uniqueness is enforced by storage constraints rather than a
// find-then-create pre-check, so two racing registrations cannot both win.
func (srv *userService) Register(ctx context.Context, input *usecase.RegisterUserInput) (*usecase.RegisterUserOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("name", input.Name), slog.String("email", input.Email))

	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		srv.log(ctx).Warn("Password validation failed during registration", slog.String("name", input.Name), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordStrength, "password does not meet security requirements")
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, "failed to hash password during registration")
	}

	var registeredUser *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		authRepo := repoFactory.AuthRepo()

		newUser := &entity.User{
			Name:  input.Name,
			Email: input.Email,
			Role:  entity.RoleUser,
		}

		if err := userRepo.Create(ctx, newUser); err != nil {
			return errors.Wrap(err, "failed to create user during registration")
		}

		// The local credential is keyed by the account name, which is what
		// the user signs in with.
		newAuth := &entity.Authentication{
			UserID:         newUser.ID,
			Provider:       entity.ProviderTypeLocal,
			ProviderUserID: newUser.Name,
			PasswordHash:   hashedPassword,
		}

		if err := authRepo.CreateAuthentication(ctx, newAuth); err != nil {
			return errors.Wrap(err, "failed to create authentication during registration")
		}

		registeredUser = newUser

		return nil
	})

	if err != nil {
		srv.log(ctx).Warn("Failed to execute registration transaction", slog.String("name", input.Name), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute user registration transaction")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", registeredUser.ID))

	return &usecase.RegisterUserOutput{
		ID:        registeredUser.ID,
		Name:      registeredUser.Name,
		Email:     registeredUser.Email,
		Role:      registeredUser.Role.String(),
		CreatedAt: registeredUser.CreatedAt,
	}, nil
}

// Login orchestrates the credential login process. Lookup is by account name.
func (srv *userService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("name", input.Name))

	authRecord, err := srv.loadLoginAuth(ctx, input.Name)
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("name", input.Name), slog.Any("error", err))

		return nil, err
	}

	// Check password outside the transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.Password, authRecord.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("name", input.Name), slog.Any("error", domainerrors.ErrInvalidCredentials))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "password mismatch")
	}

	loggedInUser, err := srv.userRepo.FindByID(ctx, authRecord.UserID)
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("name", input.Name), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to load login user")
	}

	accessToken, refreshTokenString, err := srv.issueTokens(ctx, loggedInUser)
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("name", input.Name), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", loggedInUser.ID))

	return &usecase.LoginOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		User:         usecase.NewUserInfo(loggedInUser),
	}, nil
}

func (srv *userService) loadLoginAuth(ctx context.Context, name string) (*entity.Authentication, error) {
	authRecord, err := srv.txLoadAuth(ctx, entity.ProviderTypeLocal, name)
	if err != nil {
		if errors.Is(err, repository.ErrAuthNotFound) {
			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
		}

		return nil, errors.Wrap(err, "failed to find authentication")
	}

	return authRecord, nil
}

// txLoadAuth loads an authentication record from the primary in a short
// transaction to avoid stale reads on replicas.
func (srv *userService) txLoadAuth(ctx context.Context, provider entity.ProviderType, providerUserID string) (*entity.Authentication, error) {
	var authRecord *entity.Authentication

	if err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var findAuthErr error
		authRecord, findAuthErr = repoFactory.AuthRepo().FindAuthentication(ctx, provider, providerUserID)

		return findAuthErr
	}); err != nil {
		return nil, err
	}

	return authRecord, nil
}

// GoogleCallback handles login or first-time registration via Google Sign-In.
func (srv *userService) GoogleCallback(ctx context.Context, input *usecase.GoogleCallbackInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Info("Handling Google callback")

	oauthUser, err := srv.googleAuthService.VerifyIDToken(ctx, input.IDToken)
	if err != nil {
		srv.log(ctx).Warn("Google ID token verification failed", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrOAuthTokenInvalid, "failed to verify Google ID token")
	}

	var loggedInUser *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, findErr := srv.findOrCreateGoogleUser(ctx, repoFactory, oauthUser)
		if findErr != nil {
			return findErr
		}
		loggedInUser = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute Google authentication transaction", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute Google authentication transaction")
	}

	accessToken, refreshTokenString, err := srv.issueTokens(ctx, loggedInUser)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Google user logged in", slog.Any("userID", loggedInUser.ID))

	return &usecase.LoginOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		User:         usecase.NewUserInfo(loggedInUser),
	}, nil
}

// findOrCreateGoogleUser resolves the Google subject to a local user:
// an existing google authentication wins, then an account with the same
// verified email gets linked, and otherwise a fresh account is provisioned
// without a local password credential.
func (srv *userService) findOrCreateGoogleUser(ctx context.Context, repoFactory repository.RepositoryFactory, oauthUser *service.OAuthUser) (*entity.User, error) {
	authRepo := repoFactory.AuthRepo()
	userRepo := repoFactory.UserRepo()

	authRecord, err := authRepo.FindAuthentication(ctx, entity.ProviderTypeGoogle, oauthUser.ID)
	if err != nil && !errors.Is(err, repository.ErrAuthNotFound) {
		return nil, errors.Wrap(err, "failed to find google authentication")
	}
	if err == nil {
		user, findErr := userRepo.FindByID(ctx, authRecord.UserID)
		if findErr != nil {
			return nil, errors.Wrap(findErr, "failed to find user for google authentication")
		}

		return user, nil
	}

	existingUser, err := userRepo.FindByEmail(ctx, oauthUser.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(err, "failed to find user by email for google linking")
	}
	if err == nil {
		// Same verified email: link the Google identity to the existing account.
		return srv.linkGoogleAuth(ctx, authRepo, userRepo, existingUser, oauthUser)
	}

	return srv.createGoogleUser(ctx, userRepo, authRepo, oauthUser)
}

func (srv *userService) linkGoogleAuth(
	ctx context.Context,
	authRepo repository.AuthRepository,
	userRepo repository.UserRepository,
	user *entity.User,
	oauthUser *service.OAuthUser,
) (*entity.User, error) {
	srv.log(ctx).Info("Linking Google identity to existing account", slog.Any("userID", user.ID))

	newAuth := &entity.Authentication{
		UserID:         user.ID,
		Provider:       entity.ProviderTypeGoogle,
		ProviderUserID: oauthUser.ID,
	}

	if err := authRepo.CreateAuthentication(ctx, newAuth); err != nil {
		// A concurrent callback may have linked the identity first. Re-fetch
		// and continue as a plain login.
		if errors.Is(err, domainerrors.ErrConflict) {
			return srv.refetchGoogleUser(ctx, authRepo, userRepo, oauthUser.ID)
		}

		return nil, errors.Wrap(err, "failed to link google authentication")
	}

	return user, nil
}

func (srv *userService) createGoogleUser(
	ctx context.Context,
	userRepo repository.UserRepository,
	authRepo repository.AuthRepository,
	oauthUser *service.OAuthUser,
) (*entity.User, error) {
	srv.log(ctx).Info("Google user not found, creating new user", slog.String("email", oauthUser.Email))

	newUser := &entity.User{
		Name:  oauthUser.Name,
		Email: oauthUser.Email,
		Role:  entity.RoleUser,
	}

	if err := userRepo.Create(ctx, newUser); err != nil {
		return nil, errors.Wrap(err, "failed to create user for google authentication")
	}

	// No PasswordHash: the account has no local credential until one is set.
	newAuth := &entity.Authentication{
		UserID:         newUser.ID,
		Provider:       entity.ProviderTypeGoogle,
		ProviderUserID: oauthUser.ID,
	}

	if err := authRepo.CreateAuthentication(ctx, newAuth); err != nil {
		if errors.Is(err, domainerrors.ErrConflict) {
			return srv.refetchGoogleUser(ctx, authRepo, userRepo, oauthUser.ID)
		}

		return nil, errors.Wrap(err, "failed to create google authentication")
	}

	return newUser, nil
}

// refetchGoogleUser resolves the winner of a duplicate-key race on the
// (provider, providerUserID) constraint.
func (srv *userService) refetchGoogleUser(ctx context.Context, authRepo repository.AuthRepository, userRepo repository.UserRepository, googleUserID string) (*entity.User, error) {
	authRecord, err := authRepo.FindAuthentication(ctx, entity.ProviderTypeGoogle, googleUserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to refetch google authentication after conflict")
	}

	user, err := userRepo.FindByID(ctx, authRecord.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to refetch user after conflict")
	}

	return user, nil
}

// GetProfile returns the public view of an existing user.
func (srv *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*usecase.UserInfo, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "profile lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return usecase.NewUserInfo(user), nil
}

// issueTokens generates a token pair for the user and persists the hashed
// refresh token as a session record. The concurrent-session cap is checked
// under the user's row lock so racing logins cannot both slip under it.
func (srv *userService) issueTokens(ctx context.Context, user *entity.User) (string, string, error) {
	accessToken, refreshTokenString, err := srv.tokenService.GenerateTokens(user.ID, user.Name, user.Role.String())
	if err != nil {
		return "", "", errors.Wrap(err, "failed to generate tokens")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return srv.storeRefreshToken(ctx, repoFactory, user.ID, refreshTokenString)
	})
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshTokenString, nil
}

// storeRefreshToken persists a new session record, enforcing the configured
// maximum number of active sessions. A cap of zero means unlimited.
func (srv *userService) storeRefreshToken(ctx context.Context, repoFactory repository.RepositoryFactory, userID uuid.UUID, refreshTokenString string) error {
	refreshRepo := repoFactory.RefreshTokenRepo()

	if srv.maxActiveSessions > 0 {
		if err := repoFactory.UserRepo().AcquireSessionMutex(ctx, userID); err != nil {
			return errors.Wrap(err, "failed to lock user row for session limit check")
		}

		activeSessions, err := refreshRepo.CountActiveSessionsByUserID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to count active sessions")
		}
		if activeSessions >= srv.maxActiveSessions {
			return errors.Wrap(domainerrors.ErrSessionLimitExceeded, "active session limit exceeded")
		}
	}

	newRefreshToken := &entity.RefreshToken{
		UserID:    userID,
		TokenHash: srv.tokenService.HashToken(refreshTokenString),
		ExpiresAt: time.Now().Add(srv.tokenService.GetRefreshTokenDuration()),
	}

	if err := refreshRepo.CreateRefreshToken(ctx, newRefreshToken); err != nil {
		return errors.Wrap(err, "failed to store refresh token")
	}

	return nil
}
