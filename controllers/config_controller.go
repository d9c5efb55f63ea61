package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/wellbeing/config"
	"github.com/cppla/wellbeing/utils"
)

// ConfigController exposes the settings clients need to render analytics.
type ConfigController struct {
	cfg config.AppConfig
}

func NewConfigController(cfg config.AppConfig) *ConfigController { return &ConfigController{cfg: cfg} }

// GetSettings returns the analytics windows, cutoff and reference timezone.
func (c *ConfigController) GetSettings(ctx *gin.Context) {
	opts := c.cfg.OverviewOptions()
	strategy := "adaptive"
	if opts.GoodScoreCutoff != nil {
		strategy = "fixed"
	}
	utils.Success(ctx, gin.H{
		"timezone": c.cfg.Location().String(),
		"analytics": gin.H{
			"recent_days":     opts.RecentDays,
			"lookback_days":   opts.LookbackDays,
			"good_cutoff":     opts.GoodScoreCutoff,
			"cutoff_strategy": strategy,
			"percentile":      opts.AdaptivePercentile,
		},
		"score_range": gin.H{"min": 1, "max": 5},
	})
}
