package service

import (
	"log"
	"strconv"

	"fandreams/config"
	"fandreams/internal/auth"
	"fandreams/internal/domain"
	"fandreams/internal/models"
	"fandreams/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	cfg      *config.JWTConfig
	users    *repository.UserRepository
	profiles *repository.CreatorProfileRepository
	wallets  *repository.WalletRepository
	bonus    *CreatorBonusService
}

func NewAuthService(
	cfg *config.JWTConfig,
	users *repository.UserRepository,
	profiles *repository.CreatorProfileRepository,
	wallets *repository.WalletRepository,
	bonus *CreatorBonusService,
) *AuthService {
	return &AuthService{cfg: cfg, users: users, profiles: profiles, wallets: wallets, bonus: bonus}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RegisterParams struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

func (s *AuthService) Register(params RegisterParams) (*models.User, *TokenPair, error) {
	if _, err := s.users.GetByEmail(params.Email); err == nil {
		return nil, nil, domain.Errorf(domain.CodeAlreadyExists, "email already registered")
	} else if err != gorm.ErrRecordNotFound {
		return nil, nil, err
	}
	if _, err := s.users.GetByUsername(params.Username); err == nil {
		return nil, nil, domain.Errorf(domain.CodeAlreadyExists, "username taken")
	} else if err != gorm.ErrRecordNotFound {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	user := &models.User{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleFan,
		DisplayName:  params.DisplayName,
	}
	if err := s.users.Create(user); err != nil {
		return nil, nil, err
	}
	if _, err := s.wallets.GetOrCreate(user.ID); err != nil {
		log.Printf("[auth] wallet bootstrap failed (user=%d): %v", user.ID, err)
	}
	tokens, err := s.issueTokens(user)
	return user, tokens, err
}

func (s *AuthService) Login(email, password string) (*models.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(email)
	if err == gorm.ErrRecordNotFound {
		return nil, nil, domain.Errorf(domain.CodeForbidden, "invalid credentials")
	}
	if err != nil {
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, domain.Errorf(domain.CodeForbidden, "invalid credentials")
	}
	tokens, err := s.issueTokens(user)
	return user, tokens, err
}

func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	token, err := jwt.ParseWithClaims(refreshToken, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.RefreshSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, auth.ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	user, err := s.users.GetByID(uint(userID))
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *models.User) (*TokenPair, error) {
	access, err := auth.GenerateAccessToken(s.cfg, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateRefreshToken(s.cfg, user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// BecomeCreator upgrades a fan account, bootstrapping the creator profile and
// the welcome bonus offer when that feature is on.
func (s *AuthService) BecomeCreator(userID uint) (*models.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Role == domain.RoleCreator {
		return user, nil
	}
	if user.Role == domain.RoleAdmin {
		return nil, domain.Errorf(domain.CodeForbidden, "admins cannot become creators")
	}
	if err := s.users.UpdateRole(userID, domain.RoleCreator); err != nil {
		return nil, err
	}
	if _, err := s.profiles.GetOrCreate(userID); err != nil {
		return nil, err
	}
	if err := s.bonus.CreateForCreator(userID); err != nil {
		log.Printf("[auth] welcome bonus bootstrap failed (creator=%d): %v", userID, err)
	}
	user.Role = domain.RoleCreator
	return user, nil
}
