package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/wellbeing/services"
	"github.com/cppla/wellbeing/utils"
)

// DemoController runs throwaway demo sessions.
type DemoController struct {
	demo *services.DemoService
	auth *AuthController
}

// NewDemoController shares token handling with the auth endpoints.
func NewDemoController(demo *services.DemoService, auth *AuthController) *DemoController {
	return &DemoController{demo: demo, auth: auth}
}

// Start resumes the caller's demo session or opens a new one and returns a
// token for it.
func (d *DemoController) Start(ctx *gin.Context) {
	currentID, _ := getUserID(ctx)
	user, seeded, err := d.demo.Start(ctx.Request.Context(), currentID)
	if err != nil {
		fail(ctx, err)
		return
	}

	payload, err := d.auth.session(*user)
	if err != nil {
		fail(ctx, err)
		return
	}
	payload["seeded"] = seeded
	utils.Success(ctx, payload)
}

// Reset replaces the demo history with a fresh one.
func (d *DemoController) Reset(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	seeded, err := d.demo.Reset(ctx.Request.Context(), userID)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "demo data reset", "seeded": seeded})
}

// End logs the demo session out. The account is removed by the purge.
func (d *DemoController) End(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	if err := d.demo.End(ctx.Request.Context(), userID); err != nil {
		fail(ctx, err)
		return
	}
	d.auth.revokeCurrent(ctx)
	utils.Success(ctx, gin.H{"message": "demo session ended"})
}
