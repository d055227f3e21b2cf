package auth

import (
	"errors"
	"net/http"
	"strings"

	"gamevault/backend/internal/models"
	"gamevault/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Context keys set by the middlewares.
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextClaims   = "tokenClaims"
)

// Authenticator validates bearer tokens against the signing secret and the
// revocation list.
type Authenticator struct {
	issuer *jwt.Issuer
	db     *gorm.DB
}

func NewAuthenticator(issuer *jwt.Issuer, db *gorm.DB) *Authenticator {
	return &Authenticator{issuer: issuer, db: db}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

var errRevoked = errors.New("token has been revoked")

// authenticate resolves a raw token to its claims and the user it belongs to.
func (a *Authenticator) authenticate(tokenString string) (*jwt.Claims, *models.User, error) {
	claims, err := a.issuer.ParseToken(tokenString)
	if err != nil {
		return nil, nil, err
	}

	var revoked int64
	if err := a.db.Model(&models.RevokedToken{}).Where("jti = ?", claims.ID).Count(&revoked).Error; err != nil {
		return nil, nil, err
	}
	if revoked > 0 {
		return nil, nil, errRevoked
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, nil, err
	}
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		return nil, nil, err
	}
	return claims, &user, nil
}

func setIdentity(c *gin.Context, claims *jwt.Claims, user *models.User) {
	c.Set(ContextUserID, user.ID)
	c.Set(ContextUserRole, user.Role)
	c.Set(ContextClaims, claims)
}

// AuthMiddleware rejects requests without a valid, unrevoked bearer token.
func (a *Authenticator) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization header required"})
			return
		}

		claims, user, err := a.authenticate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}

		setIdentity(c, claims, user)
		c.Next()
	}
}

// OptionalAuthMiddleware inspects for a token and sets the identity if present and valid,
// but does not fail if the token is missing or invalid.
func (a *Authenticator) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if claims, user, err := a.authenticate(tokenString); err == nil {
				setIdentity(c, claims, user)
			}
		}
		c.Next()
	}
}

// AdminMiddleware checks for the admin role.
// It must be used AFTER AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
			return
		}
		if !actor.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Admin access required"})
			return
		}
		c.Next()
	}
}

// ActorFrom returns the authenticated identity stored on the context.
func ActorFrom(c *gin.Context) (Actor, bool) {
	id, ok := c.Get(ContextUserID)
	if !ok {
		return Actor{}, false
	}
	role, _ := c.Get(ContextUserRole)
	roleStr, _ := role.(string)
	return Actor{ID: id.(uint), Role: roleStr}, true
}

// ClaimsFrom returns the token claims stored on the context.
func ClaimsFrom(c *gin.Context) (*jwt.Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}
