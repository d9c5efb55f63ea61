package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/wellbeing/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextEmailKey stores the account email inside Gin context.
	ContextEmailKey = "email"
	// ContextDemoKey is true for demo sessions.
	ContextDemoKey = "demo"
	// ContextTokenKey holds the raw bearer token so logout can revoke it.
	ContextTokenKey = "token"
	// ContextClaimsKey holds the parsed *utils.Claims.
	ContextClaimsKey = "claims"
)

// AuthRequired ensures the request is authenticated via JWT.
func AuthRequired(issuer *utils.TokenIssuer, blacklist *utils.TokenBlacklist) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		if blacklist.IsRevoked(ctx.Request.Context(), tokenString) {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "token revoked")
			ctx.Abort()
			return
		}

		claims, err := issuer.Parse(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}

		setIdentity(ctx, tokenString, claims)
		ctx.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(issuer *utils.TokenIssuer, blacklist *utils.TokenBlacklist) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, ok := bearerToken(ctx.GetHeader("Authorization"))
		if ok && tokenString != "" && !blacklist.IsRevoked(ctx.Request.Context(), tokenString) {
			if claims, err := issuer.Parse(tokenString); err == nil {
				setIdentity(ctx, tokenString, claims)
			}
		}
		ctx.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func setIdentity(ctx *gin.Context, token string, claims *utils.Claims) {
	ctx.Set(ContextUserIDKey, claims.UserID)
	ctx.Set(ContextEmailKey, claims.Email)
	ctx.Set(ContextDemoKey, claims.Demo)
	ctx.Set(ContextTokenKey, token)
	ctx.Set(ContextClaimsKey, claims)
}
