package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/wellbeing/services"
	"github.com/cppla/wellbeing/utils"
)

// CheckInController serves the check-in CRUD endpoints.
type CheckInController struct {
	svc *services.CheckInService
}

// NewCheckInController creates a new controller instance.
func NewCheckInController(svc *services.CheckInService) *CheckInController {
	return &CheckInController{svc: svc}
}

// List returns the user's check-ins newest first, optionally within from..to.
func (c *CheckInController) List(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	page, ok := queryInt(ctx, "page", 1)
	if !ok {
		page = 1
	}
	perPage, ok := queryInt(ctx, "per_page", 0)
	if !ok {
		fail(ctx, services.ErrInvalidPerPage)
		return
	}

	result, err := c.svc.List(ctx.Request.Context(), userID, services.ListQuery{
		From:    ctx.Query("from"),
		To:      ctx.Query("to"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, result)
}

// Create records a check-in. A second one for the same day is a conflict.
func (c *CheckInController) Create(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	var req services.CheckInInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badPayload(ctx)
		return
	}

	view, err := c.svc.Create(ctx.Request.Context(), userID, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Created(ctx, view)
}

func (c *CheckInController) Show(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	view, err := c.svc.Get(ctx.Request.Context(), userID, id)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, view)
}

func (c *CheckInController) Update(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req services.CheckInInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badPayload(ctx)
		return
	}

	view, err := c.svc.Update(ctx.Request.Context(), userID, id, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, view)
}

func (c *CheckInController) Delete(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if err := c.svc.Delete(ctx.Request.Context(), userID, id); err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"deleted": true, "id": id})
}

// Today returns today's check-in, or null when there is none yet.
func (c *CheckInController) Today(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	view, err := c.svc.FindToday(ctx.Request.Context(), userID)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"checkin": view})
}
