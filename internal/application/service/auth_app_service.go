package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/embedpro/pids-licensing/internal/application/dto"
	"github.com/embedpro/pids-licensing/internal/domain/models"
	domainservice "github.com/embedpro/pids-licensing/internal/domain/service"
	"github.com/embedpro/pids-licensing/internal/infrastructure/crypto"
	"github.com/embedpro/pids-licensing/pkg/constants"
	apperrors "github.com/embedpro/pids-licensing/pkg/errors"
	"github.com/embedpro/pids-licensing/pkg/logger"
	"github.com/embedpro/pids-licensing/pkg/utils"
)

// AuthAppService orchestrates sign-in, token rotation, logout and password
// changes.
type AuthAppService struct {
	credentials domainservice.CredentialStore
	tokens      domainservice.TokenManager
	blacklist   domainservice.TokenBlacklist
	log         logger.Logger
}

// NewAuthAppService wires the authentication use cases.
func NewAuthAppService(
	credentials domainservice.CredentialStore,
	tokens domainservice.TokenManager,
	blacklist domainservice.TokenBlacklist,
	log logger.Logger,
) *AuthAppService {
	return &AuthAppService{
		credentials: credentials,
		tokens:      tokens,
		blacklist:   blacklist,
		log:         log.WithComponent("auth_service"),
	}
}

// SignIn verifies the credential and issues a fresh token pair. An unknown
// username and a wrong password fail identically, so responses never reveal
// whether an account exists.
func (s *AuthAppService) SignIn(ctx context.Context, req *dto.SignInRequest) (*dto.SessionResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	set, err := s.credentials.Load(ctx)
	if err != nil {
		return nil, apperrors.ErrUnavailable("Credential store unavailable").WithError(err)
	}
	cred, ok := set[req.Username]
	if !ok || bcrypt.CompareHashAndPassword([]byte(cred.Password), []byte(req.Password)) != nil {
		return nil, apperrors.ErrUnauthorized("Invalid username or password")
	}

	result, err := s.issueSession(req.Username, cred)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user signed in", logger.String("username", req.Username))
	return result, nil
}

// Renew rotates a refresh token: the presented token is verified, the user
// re-validated, and the token revoked and replaced by a fresh pair. A
// refresh token therefore works exactly once.
func (s *AuthAppService) Renew(ctx context.Context, refreshToken string) (*dto.SessionResult, error) {
	if refreshToken == "" {
		return nil, apperrors.ErrValidation("refresh token is required")
	}

	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		if errors.Is(err, crypto.ErrTokenExpired) {
			return nil, apperrors.ErrUnauthorized("Refresh token expired")
		}
		return nil, apperrors.ErrForbidden("Invalid token").WithError(err)
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrForbidden("Not a refresh token")
	}

	revoked, err := s.blacklist.IsRevoked(ctx, refreshToken)
	if err != nil {
		return nil, apperrors.ErrUnavailable("Token store unavailable").WithError(err)
	}
	if revoked {
		return nil, apperrors.ErrUnauthorized("Token has been revoked")
	}

	set, err := s.credentials.Load(ctx)
	if err != nil {
		return nil, apperrors.ErrUnavailable("Credential store unavailable").WithError(err)
	}
	cred, ok := set[claims.Username]
	if !ok {
		return nil, apperrors.ErrNotFound("User not found")
	}

	// The replacement pair must exist before the presented token is revoked;
	// a failure anywhere in the rotation leaves the old token usable.
	result, err := s.issueSession(claims.Username, cred)
	if err != nil {
		return nil, err
	}
	if err := s.blacklist.Revoke(ctx, refreshToken, claims.ExpiresAt.Time); err != nil {
		return nil, apperrors.ErrUnavailable("Token store unavailable").WithError(err)
	}
	s.log.Info(ctx, "refresh token rotated", logger.String("username", claims.Username))
	return result, nil
}

// Logout revokes whichever tokens are supplied for their remaining validity.
// Absent, expired or malformed tokens are skipped: logout is idempotent and
// only a blacklist-store failure is an error.
func (s *AuthAppService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	for _, token := range []string{accessToken, refreshToken} {
		if token == "" {
			continue
		}
		claims, err := s.tokens.Verify(token)
		if err != nil {
			continue
		}
		if err := s.blacklist.Revoke(ctx, token, claims.ExpiresAt.Time); err != nil {
			return apperrors.ErrInternal("Server error. Try again later.").WithError(err)
		}
		s.log.Info(ctx, "token revoked on logout", logger.String("username", claims.Username))
	}
	return nil
}

// ChangePassword verifies the current password and stores a new hash. The
// full credential set is written back last-writer-wins.
func (s *AuthAppService) ChangePassword(ctx context.Context, req *dto.ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	set, err := s.credentials.Load(ctx)
	if err != nil {
		return apperrors.ErrUnavailable("Credential store unavailable").WithError(err)
	}
	cred, ok := set[req.Username]
	if !ok {
		return apperrors.ErrNotFound("User not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.Password), []byte(req.CurrentPassword)) != nil {
		return apperrors.ErrUnauthorized("Invalid username or password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), constants.BcryptCost)
	if err != nil {
		return apperrors.ErrInternal("Server error. Try again later.").WithError(err)
	}
	cred.Password = string(hash)
	if cred.CreatedAt == "" {
		cred.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	set[req.Username] = cred

	if err := s.credentials.Save(ctx, set); err != nil {
		return apperrors.ErrUnavailable("Credential store unavailable").WithError(err)
	}
	s.log.Info(ctx, "password changed", logger.String("username", req.Username))
	return nil
}

// VerifyAccess validates a bearer token for the protected surface. Expired
// and revoked tokens are unauthorized; malformed or refresh tokens are
// forbidden.
func (s *AuthAppService) VerifyAccess(ctx context.Context, token string) (*models.TokenClaims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, crypto.ErrTokenExpired) {
			return nil, apperrors.ErrUnauthorized("Token expired")
		}
		return nil, apperrors.ErrForbidden("Invalid token").WithError(err)
	}
	if claims.IsRefreshToken {
		return nil, apperrors.ErrForbidden("Invalid token")
	}
	revoked, err := s.blacklist.IsRevoked(ctx, token)
	if err != nil {
		return nil, apperrors.ErrUnavailable("Token store unavailable").WithError(err)
	}
	if revoked {
		return nil, apperrors.ErrUnauthorized("Token has been revoked")
	}
	return claims, nil
}

func (s *AuthAppService) issueSession(username string, cred models.UserCredential) (*dto.SessionResult, error) {
	access, err := s.tokens.IssueAccessToken(username, cred.Role, cred.Email)
	if err != nil {
		return nil, apperrors.ErrInternal("Server error. Try again later.").WithError(err)
	}
	refresh, err := s.tokens.IssueRefreshToken(username)
	if err != nil {
		return nil, apperrors.ErrInternal("Server error. Try again later.").WithError(err)
	}
	return &dto.SessionResult{
		Token:        access,
		RefreshToken: refresh,
		User:         dto.UserInfo{Username: username, Role: cred.Role, Email: cred.Email},
	}, nil
}
