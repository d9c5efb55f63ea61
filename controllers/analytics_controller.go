package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/wellbeing/analytics"
	"github.com/cppla/wellbeing/services"
	"github.com/cppla/wellbeing/utils"
)

// AnalyticsController serves the dashboard and the read-only analytics.
type AnalyticsController struct {
	dashboard *services.DashboardService
}

func NewAnalyticsController(dashboard *services.DashboardService) *AnalyticsController {
	return &AnalyticsController{dashboard: dashboard}
}

// Dashboard returns the cached home screen payload. ?recent picks how many
// recent check-ins to include.
func (a *AnalyticsController) Dashboard(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	recent, _ := queryInt(ctx, "recent", 0)
	out, err := a.dashboard.BuildOverview(ctx.Request.Context(), userID, recent)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, out)
}

// Summary aggregates an inclusive range. Both ends are required.
func (a *AnalyticsController) Summary(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	from, to, ok := requiredRange(ctx)
	if !ok {
		return
	}
	out, err := a.dashboard.Summary(ctx.Request.Context(), userID, from, to)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"from": from, "to": to, "summary": out})
}

// Weekdays returns the good-day rate per weekday. ?cutoff fixes the good-day
// threshold, otherwise it is adaptive.
func (a *AnalyticsController) Weekdays(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	from, err := queryDate(ctx, "from")
	if err != nil {
		fail(ctx, err)
		return
	}
	to, err := queryDate(ctx, "to")
	if err != nil {
		fail(ctx, err)
		return
	}
	var cutoff *int
	if ctx.Query("cutoff") != "" {
		n, ok := queryInt(ctx, "cutoff", 0)
		if !ok {
			fail(ctx, services.ErrInvalidCutoff)
			return
		}
		cutoff = &n
	}

	out, err := a.dashboard.Weekdays(ctx.Request.Context(), userID, from, to, cutoff)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, out)
}

func (a *AnalyticsController) Overview(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	out, err := a.dashboard.Overview(ctx.Request.Context(), userID)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, out)
}

func requiredRange(ctx *gin.Context) (analytics.Date, analytics.Date, bool) {
	from, err := queryDate(ctx, "from")
	if err == nil && from == nil {
		err = services.ErrInvalidDate
	}
	if err != nil {
		fail(ctx, err)
		return analytics.Date{}, analytics.Date{}, false
	}
	to, err := queryDate(ctx, "to")
	if err == nil && to == nil {
		err = services.ErrInvalidDate
	}
	if err != nil {
		fail(ctx, err)
		return analytics.Date{}, analytics.Date{}, false
	}
	return *from, *to, true
}
