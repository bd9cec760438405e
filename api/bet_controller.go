package api

import (
	"encoding/json"
	"errors"

	"wingo/models"
	"wingo/service"

	beego "github.com/beego/beego/v2/server/web"
	"github.com/shopspring/decimal"
)

type BetController struct{ beego.Controller }

type betRequest struct {
	IssueNumber string `json:"issue_number"`
	Kind        string `json:"kind"`
	Value       string `json:"value"`
	Amount      string `json:"amount"`
}

// Bet handles POST /api/bet
func (c *BetController) Bet() {
	trace := traceID(c.Ctx)
	account := accountID(c.Ctx)

	var req betRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		ErrorWithMessage(&c.Controller, 400, CodeBadRequest, "malformed request body", trace)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		Error(&c.Controller, 400, CodeInvalidAmount, trace)
		return
	}

	receipt, err := wagers.PlaceWager(c.Ctx.Request.Context(), account, models.WagerKind(req.Kind), req.Value, amount, req.IssueNumber)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			Error(&c.Controller, 400, CodeInvalidAmount, trace)
		case errors.Is(err, service.ErrInvalidWager):
			Error(&c.Controller, 400, CodeInvalidWager, trace)
		case errors.Is(err, service.ErrRoundClosed):
			Error(&c.Controller, 409, CodeRoundClosed, trace)
		case errors.Is(err, service.ErrDuplicateWager):
			Error(&c.Controller, 409, CodeDuplicateWager, trace)
		case errors.Is(err, service.ErrInsufficientFunds):
			Error(&c.Controller, 400, CodeInsufficientFunds, trace)
		case errors.Is(err, service.ErrRoundNotFound), errors.Is(err, service.ErrAccountNotFound):
			Error(&c.Controller, 404, CodeNotFound, trace)
		default:
			Error(&c.Controller, 500, CodeSystemError, trace)
		}
		return
	}

	Success(&c.Controller, map[string]interface{}{
		"wager":       newWagerView(receipt.Wager),
		"new_balance": receipt.NewBalance.StringFixed(2),
	}, trace)
}

// MyBets handles GET /api/bet/my-bets
func (c *BetController) MyBets() {
	trace := traceID(c.Ctx)
	account := accountID(c.Ctx)

	roundID, _ := c.GetInt64("round_id", 0)
	limit, _ := c.GetInt("limit", 20)
	offset, _ := c.GetInt("offset", 0)

	list, err := wagers.ListWagers(c.Ctx.Request.Context(), account, roundID, limit, offset)
	if err != nil {
		Error(&c.Controller, 500, CodeSystemError, trace)
		return
	}

	Success(&c.Controller, map[string]interface{}{
		"wagers": newWagerViews(list),
	}, trace)
}
