package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playpool/pong3d/internal/config"
	"github.com/playpool/pong3d/internal/game"
)

type sliderRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// sliderRanges bound the settings panel; anything inside them passes validation
var sliderRanges = map[string]sliderRange{
	"field_width":          {Min: 2*game.PaddleHalfWidth + 1, Max: 60, Step: 1},
	"field_height":         {Min: 10, Max: 80, Step: 1},
	"paddle_speed":         {Min: 0.05, Max: 1, Step: 0.05},
	"stand_count":          {Min: 0, Max: 6, Step: 1},
	"spectators_per_stand": {Min: 0, Max: 100, Step: 1},
	"tick_rate":            {Min: 30, Max: 120, Step: 10},
}

// GetConfig returns the defaults and slider ranges required by the frontend
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		defaults := game.SettingsFromConfig(cfg)
		if game.Manager != nil {
			defaults = game.Manager.DefaultSettings()
		}
		c.JSON(http.StatusOK, gin.H{
			"defaults":      defaults,
			"ranges":        sliderRanges,
			"winning_score": game.WinningScore,
			"frame_rate":    cfg.FrameRate,
		})
	}
}
