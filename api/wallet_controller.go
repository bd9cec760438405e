package api

import (
	"encoding/json"
	"errors"

	"wingo/models"
	"wingo/service"

	beego "github.com/beego/beego/v2/server/web"
	"github.com/shopspring/decimal"
)

type WalletController struct{ beego.Controller }

// Balance handles GET /api/wallet/balance. Creates the account with
// its initial balance on first contact.
func (c *WalletController) Balance() {
	trace := traceID(c.Ctx)
	account := accountID(c.Ctx)

	acct, err := accounts.GetOrCreateAccount(c.Ctx.Request.Context(), account)
	if err != nil {
		Error(&c.Controller, 500, CodeSystemError, trace)
		return
	}

	Success(&c.Controller, map[string]interface{}{
		"account": newAccountView(acct),
	}, trace)
}

// Transactions handles GET /api/wallet/transactions
func (c *WalletController) Transactions() {
	trace := traceID(c.Ctx)
	account := accountID(c.Ctx)

	limit, _ := c.GetInt("limit", 20)
	offset, _ := c.GetInt("offset", 0)

	var kind *models.EntryKind
	if k := c.GetString("kind"); k != "" {
		entryKind := models.EntryKind(k)
		kind = &entryKind
	}

	entries, err := accounts.ListLedgerEntries(c.Ctx.Request.Context(), account, kind, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			Error(&c.Controller, 404, CodeNotFound, trace)
			return
		}
		Error(&c.Controller, 500, CodeSystemError, trace)
		return
	}

	Success(&c.Controller, map[string]interface{}{
		"transactions": newEntryViews(entries),
	}, trace)
}

type walletRequest struct {
	Amount string `json:"amount"`
}

// Deposit handles POST /api/wallet/deposit
func (c *WalletController) Deposit() {
	c.applyEntry(models.EntryKindDeposit, "deposit")
}

// Withdraw handles POST /api/wallet/withdraw
func (c *WalletController) Withdraw() {
	c.applyEntry(models.EntryKindWithdrawal, "withdrawal")
}

func (c *WalletController) applyEntry(kind models.EntryKind, description string) {
	trace := traceID(c.Ctx)
	account := accountID(c.Ctx)

	var req walletRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		ErrorWithMessage(&c.Controller, 400, CodeBadRequest, "malformed request body", trace)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		Error(&c.Controller, 400, CodeInvalidAmount, trace)
		return
	}

	var acct *models.Account
	if kind.IsCredit() {
		acct, err = accounts.Deposit(c.Ctx.Request.Context(), account, amount, description)
	} else {
		acct, err = accounts.Withdraw(c.Ctx.Request.Context(), account, amount, description)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			Error(&c.Controller, 400, CodeInvalidAmount, trace)
		case errors.Is(err, service.ErrInsufficientFunds):
			Error(&c.Controller, 400, CodeInsufficientFunds, trace)
		case errors.Is(err, service.ErrAccountNotFound):
			Error(&c.Controller, 404, CodeNotFound, trace)
		default:
			Error(&c.Controller, 500, CodeSystemError, trace)
		}
		return
	}

	Success(&c.Controller, map[string]interface{}{
		"account": newAccountView(acct),
	}, trace)
}
