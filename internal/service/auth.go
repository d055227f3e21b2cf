package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gamevault/backend/internal/models"
	"gamevault/backend/internal/rating"
	"gamevault/backend/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Name                 string `json:"name" binding:"required,max=255" example:"Jane Player"`
	Email                string `json:"email" binding:"required,email,max=255" example:"jane@example.com"`
	Password             string `json:"password" binding:"required,min=8" example:"password123"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password" example:"password123"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required,min=6" example:"password123"`
}

// ProfileInput defines the editable profile fields. The password fields are
// only considered when Password is set.
type ProfileInput struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	CurrentPassword      string `json:"current_password,omitempty"`
	Password             string `json:"password,omitempty" binding:"omitempty,min=8"`
	PasswordConfirmation string `json:"password_confirmation,omitempty" binding:"omitempty,eqfield=Password"`
}

// UserProfile is a user together with the counters derived from their reviews.
type UserProfile struct {
	models.User
	ReviewsCount  int64
	AverageRating float64
}

// AuthService registers users, issues tokens and maintains profiles.
type AuthService struct {
	db     *gorm.DB
	issuer *jwt.Issuer
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, issuer *jwt.Issuer) *AuthService {
	return &AuthService{db: db, issuer: issuer, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) emailTaken(tx *gorm.DB, email string, exceptID uint) (bool, error) {
	q := tx.Model(&models.User{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Register creates a user with the "user" role.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	taken, err := s.emailTaken(db, input.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		verr := newValidationError()
		verr.Add("email", "The email has already been taken.")
		return nil, verr
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			verr := newValidationError()
			verr.Add("email", "The email has already been taken.")
			return nil, verr
		}
		return nil, err
	}
	return &user, nil
}

// Login checks the credentials and returns a fresh token with the user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (string, *models.User, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return "", nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// do not reveal whether the email exists
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, _, err := s.issuer.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// Logout revokes the token identified by claims. Expired revocations are
// pruned on the way.
func (s *AuthService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if claims == nil || claims.ID == "" {
		return ErrUnauthenticated
	}
	expiresAt := s.now().Add(24 * time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	db := s.db.WithContext(ctx)
	revoked := models.RevokedToken{JTI: claims.ID, ExpiresAt: expiresAt}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&revoked).Error; err != nil {
		return err
	}
	return db.Where("expires_at < ?", s.now()).Delete(&models.RevokedToken{}).Error
}

// Profile loads the user with their review counters.
func (s *AuthService) Profile(ctx context.Context, userID uint) (*UserProfile, error) {
	return loadProfile(s.db.WithContext(ctx), userID)
}

func loadProfile(db *gorm.DB, userID uint) (*UserProfile, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var ratings []int
	if err := db.Model(&models.Review{}).Where("user_id = ?", userID).Pluck("rating", &ratings).Error; err != nil {
		return nil, err
	}
	return &UserProfile{
		User:          user,
		ReviewsCount:  int64(len(ratings)),
		AverageRating: rating.Mean(ratings),
	}, nil
}

// UpdateProfile changes name, email and optionally the password. Changing the
// password requires the current one.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, input ProfileInput) (*UserProfile, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	var profile *UserProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		verr := newValidationError()
		taken, err := s.emailTaken(tx, input.Email, user.ID)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("email", "The email has already been taken.")
		}

		updates := map[string]interface{}{
			"name":  input.Name,
			"email": input.Email,
		}
		if input.Password != "" {
			if input.PasswordConfirmation != input.Password {
				verr.Add("password_confirmation", "The password confirmation does not match.")
			}
			if input.CurrentPassword == "" {
				verr.Add("current_password", "The current password field is required when changing the password.")
			} else if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)) != nil {
				verr.Add("current_password", "The current password is incorrect.")
			}
			if len(verr.Fields) == 0 {
				hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
				if err != nil {
					return err
				}
				updates["password_hash"] = string(hashed)
			}
		}
		if err := verr.OrNil(); err != nil {
			return err
		}

		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		profile, err = loadProfile(tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}
