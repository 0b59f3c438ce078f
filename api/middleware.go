package api

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	claimsKey    = "claims"
	accountIDKey = "account_id"
)

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

type RevocationStore interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Authenticator guards routes with bearer tokens.
type Authenticator struct {
	tokens      TokenParser
	revocations RevocationStore
	now         func() time.Time
}

func NewAuthenticator(tokens TokenParser, revocations RevocationStore) *Authenticator {
	return &Authenticator{tokens: tokens, revocations: revocations, now: time.Now}
}

// RequireUser rejects requests without a valid, unrevoked bearer token.
func (a *Authenticator) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
			return
		}

		claims, err := a.tokens.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
			return
		}

		revoked, err := a.revocations.IsTokenRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Printf("ERROR: check token revocation: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
			return
		}

		id, _ := claims.AccountID()
		c.Set(claimsKey, claims)
		c.Set(accountIDKey, id)
		c.Next()
	}
}

// RequireAdmin must run after RequireUser. A non-admin caller is logged out.
func (a *Authenticator) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
			return
		}
		if !claims.IsAdmin() {
			if err := a.revocations.RevokeToken(c.Request.Context(), claims.ID, claims.TTL(a.now())); err != nil {
				log.Printf("WARNING: failed to revoke token of account %s: %v", claims.Subject, err)
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msgForbidden})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func claimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func accountID(c *gin.Context) int64 {
	return c.GetInt64(accountIDKey)
}
