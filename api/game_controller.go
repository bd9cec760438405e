package api

import (
	"errors"
	"time"

	"wingo/config"
	"wingo/service"

	beego "github.com/beego/beego/v2/server/web"
)

type GameController struct{ beego.Controller }

// Current handles GET /api/games/current
func (c *GameController) Current() {
	trace := traceID(c.Ctx)

	round, err := rounds.GetCurrentRound(c.Ctx.Request.Context())
	if err != nil {
		Error(&c.Controller, 500, CodeSystemError, trace)
		return
	}

	Success(&c.Controller, map[string]interface{}{
		"round": newRoundView(round, time.Now().UTC(), config.Get()),
	}, trace)
}

// Recent handles GET /api/games/recent
func (c *GameController) Recent() {
	trace := traceID(c.Ctx)
	limit, _ := c.GetInt("limit", 10)

	list, err := rounds.GetRecentRounds(c.Ctx.Request.Context(), limit)
	if err != nil {
		Error(&c.Controller, 500, CodeSystemError, trace)
		return
	}

	cfg := config.Get()
	now := time.Now().UTC()
	views := make([]roundView, 0, len(list))
	for _, round := range list {
		views = append(views, newRoundView(round, now, cfg))
	}

	Success(&c.Controller, map[string]interface{}{
		"rounds": views,
	}, trace)
}

// Round handles GET /api/games/round/:issue
func (c *GameController) Round() {
	trace := traceID(c.Ctx)
	issue := c.Ctx.Input.Param(":issue")

	round, err := rounds.GetRoundByIssueNumber(c.Ctx.Request.Context(), issue)
	if err != nil {
		if errors.Is(err, service.ErrRoundNotFound) {
			Error(&c.Controller, 404, CodeNotFound, trace)
			return
		}
		Error(&c.Controller, 500, CodeSystemError, trace)
		return
	}

	Success(&c.Controller, map[string]interface{}{
		"round": newRoundView(round, time.Now().UTC(), config.Get()),
	}, trace)
}

// Settings handles GET /api/games/settings
func (c *GameController) Settings() {
	trace := traceID(c.Ctx)
	cfg := config.Get()

	Success(&c.Controller, map[string]interface{}{
		"round_duration_seconds": int(cfg.RoundDuration.Seconds()),
		"lock_window_seconds":    int(cfg.LockWindow.Seconds()),
		"min_bet_amount":         cfg.MinBetAmount.StringFixed(2),
		"max_bet_amount":         cfg.MaxBetAmount.StringFixed(2),
		"multipliers": map[string]string{
			"number": cfg.NumberMultiplier.String(),
			"color":  cfg.ColorMultiplier.String(),
			"size":   cfg.SizeMultiplier.String(),
		},
	}, trace)
}
