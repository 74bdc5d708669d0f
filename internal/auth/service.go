package auth

import (
	"context"
	"errors"
	"strings"

	"isletme-backend/internal/config"
	"isletme-backend/internal/database"
	"isletme-backend/internal/models"
	"isletme-backend/internal/result"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const forgotPasswordMessage = "If your email is registered, you will receive a password reset link"

type SignUpInput struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm-password"`
}

type LoginInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// UserData başarılı giriş/kayıt sonrası istemciye dönen bilgiler.
type UserData struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

type Service struct {
	db  *database.Conn
	log *zap.Logger
	cfg config.AuthConfig
}

func NewService(db *database.Conn, log *zap.Logger, cfg config.AuthConfig) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log.Named("auth"), cfg: cfg}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) result.Result {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	if in.Name == "" || in.Email == "" || in.Password == "" {
		return result.Fail(result.KindValidation, "All fields are required")
	}
	if in.Password != in.ConfirmPassword {
		return result.Fail(result.KindValidation, "Passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.log.Error("password hash error", zap.Error(err))
		return result.Fail(result.KindDatabase, "Failed to create account")
	}

	s.db.ResetBackoff()

	var user models.User
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("email = ?", in.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return result.Business("User with this email already exists")
		}

		user = models.User{Name: in.Name, Email: in.Email, PasswordHash: string(hash)}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		token, err := GenerateToken(s.cfg.TokenSecret, user.ID)
		if err != nil {
			return err
		}
		user.AuthToken = &token
		return tx.Model(&user).Update("auth_token", token).Error
	})
	if err != nil {
		result.Log(s.log, "Signup", err)
		return result.FromError(err)
	}

	return result.OK("Account created successfully", UserData{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Token: *user.AuthToken,
	})
}

// Login mevcut token'ı geri verir; yoksa ya da artık doğrulanamıyorsa
// yenisini üretip satıra yazar.
func (s *Service) Login(ctx context.Context, in LoginInput) result.Result {
	in.Email = normalizeEmail(in.Email)
	if in.Email == "" || in.Password == "" {
		return result.Fail(result.KindValidation, "Email and password are required")
	}

	s.db.ResetBackoff()

	var user models.User
	err := s.db.Do(ctx, func(db *gorm.DB) error {
		return db.Where("email = ?", in.Email).First(&user).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return result.Fail(result.KindUnauthorized, "Invalid email or password")
	}
	if err != nil {
		result.Log(s.log, "Login", err)
		return result.FromError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return result.Fail(result.KindUnauthorized, "Invalid email or password")
	}

	token := ""
	if user.AuthToken != nil {
		if _, err := ParseToken(s.cfg.TokenSecret, *user.AuthToken); err == nil {
			token = *user.AuthToken
		}
	}
	if token == "" {
		token, err = GenerateToken(s.cfg.TokenSecret, user.ID)
		if err != nil {
			s.log.Error("token generation error", zap.Error(err))
			return result.Fail(result.KindDatabase, "Failed to create session")
		}
		err = s.db.Do(ctx, func(db *gorm.DB) error {
			return db.Model(&user).Update("auth_token", token).Error
		})
		if err != nil {
			result.Log(s.log, "Login", err)
			return result.FromError(err)
		}
	}

	return result.OK("Login successful", UserData{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Token: token,
	})
}

// ForgotPassword kullanıcının var olup olmadığını hiçbir durumda belli etmez.
func (s *Service) ForgotPassword(ctx context.Context, email string) result.Result {
	email = normalizeEmail(email)
	if email == "" {
		return result.Fail(result.KindValidation, "Email is required")
	}

	s.db.ResetBackoff()

	var n int64
	err := s.db.Do(ctx, func(db *gorm.DB) error {
		return db.Model(&models.User{}).Where("email = ?", email).Count(&n).Error
	})
	if err != nil {
		result.Log(s.log, "Forgot password", err)
	} else if n > 0 {
		// sıfırlama e-postası gönderimi yok
		s.log.Info("password reset requested", zap.String("email", email))
	}
	return result.OK(forgotPasswordMessage, nil)
}

// CurrentUser token'a sahip kullanıcıyı döndürür. Token imzası geçersizse
// veritabanına gidilmez.
func (s *Service) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, result.Unauthorized("Authentication required")
	}
	claims, err := ParseToken(s.cfg.TokenSecret, token)
	if err != nil {
		return nil, result.Unauthorized("Invalid session")
	}

	s.db.ResetBackoff()

	var user models.User
	err = s.db.Do(ctx, func(db *gorm.DB) error {
		return db.Where("id = ? AND auth_token = ?", claims.UserID, token).First(&user).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, result.Unauthorized("Invalid session")
	}
	if err != nil {
		result.Log(s.log, "Get current user", err)
		return nil, err
	}
	return &user, nil
}

func (s *Service) VerifyToken(ctx context.Context, token string) bool {
	u, err := s.CurrentUser(ctx, token)
	return err == nil && u != nil
}
