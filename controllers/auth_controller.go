package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/wellbeing/middleware"
	"github.com/cppla/wellbeing/models"
	"github.com/cppla/wellbeing/services"
	"github.com/cppla/wellbeing/utils"
)

// AuthController handles local account endpoints.
type AuthController struct {
	auth      *services.AuthService
	issuer    *utils.TokenIssuer
	blacklist *utils.TokenBlacklist
}

// NewAuthController creates an AuthController.
func NewAuthController(auth *services.AuthService, issuer *utils.TokenIssuer, blacklist *utils.TokenBlacklist) *AuthController {
	return &AuthController{auth: auth, issuer: issuer, blacklist: blacklist}
}

// Register creates an account and logs it in.
func (a *AuthController) Register(ctx *gin.Context) {
	var req services.RegisterInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badPayload(ctx)
		return
	}

	user, err := a.auth.Register(ctx.Request.Context(), req)
	if err != nil {
		fail(ctx, err)
		return
	}
	payload, err := a.session(*user)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Created(ctx, payload)
}

// Login verifies user credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badPayload(ctx)
		return
	}

	user, err := a.auth.Authenticate(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(ctx, err)
		return
	}
	payload, err := a.session(*user)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, payload)
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	a.revokeCurrent(ctx)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated account.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	user, err := a.auth.Profile(ctx.Request.Context(), userID)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"user": services.NewUserView(*user)})
}

func (a *AuthController) session(user models.User) (gin.H, error) {
	token, expiresAt, err := a.issuer.Issue(user.ID, user.Email, user.IsDemo)
	if err != nil {
		return nil, err
	}
	return gin.H{
		"token":      token,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
		"user":       services.NewUserView(user),
	}, nil
}

func (a *AuthController) revokeCurrent(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	value, ok := ctx.Get(middleware.ContextClaimsKey)
	claims, _ := value.(*utils.Claims)
	if token == "" || !ok || claims == nil {
		return
	}
	a.blacklist.Revoke(ctx.Request.Context(), token, a.issuer.ExpiresAt(claims))
}
