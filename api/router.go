package api

import (
	"wingo/service"

	beego "github.com/beego/beego/v2/server/web"
)

// Controllers are instantiated per request by beego, so the services
// they call live at package level and are wired once at startup.
var (
	accounts service.AccountService
	rounds   service.RoundService
	wagers   service.WagerService
)

// RegisterRoutes wires the services into the controllers and installs
// routes and filters on the default beego app
func RegisterRoutes(accountService service.AccountService, roundService service.RoundService, wagerService service.WagerService) {
	accounts = accountService
	rounds = roundService
	wagers = wagerService

	// Global filters, in execution order
	beego.InsertFilter("/*", beego.BeforeRouter, RequestIDFilter)

	// Authenticated surfaces
	beego.InsertFilter("/api/bet", beego.BeforeExec, AuthFilter)
	beego.InsertFilter("/api/bet/*", beego.BeforeExec, AuthFilter)
	beego.InsertFilter("/api/wallet/*", beego.BeforeExec, AuthFilter)

	beego.Router("/api/bet", &BetController{}, "post:Bet")
	beego.Router("/api/bet/my-bets", &BetController{}, "get:MyBets")

	beego.Router("/api/games/current", &GameController{}, "get:Current")
	beego.Router("/api/games/recent", &GameController{}, "get:Recent")
	beego.Router("/api/games/round/:issue", &GameController{}, "get:Round")
	beego.Router("/api/games/settings", &GameController{}, "get:Settings")

	beego.Router("/api/wallet/balance", &WalletController{}, "get:Balance")
	beego.Router("/api/wallet/transactions", &WalletController{}, "get:Transactions")
	beego.Router("/api/wallet/deposit", &WalletController{}, "post:Deposit")
	beego.Router("/api/wallet/withdraw", &WalletController{}, "post:Withdraw")

	beego.Router("/api/health", &HealthController{}, "get:Health")
}

// Serve starts the HTTP server on the given address. Blocks until the
// server stops.
func Serve(addr string) {
	beego.BConfig.CopyRequestBody = true
	beego.BConfig.RunMode = beego.PROD
	beego.BConfig.RecoverPanic = true
	beego.BConfig.RecoverFunc = recoverPanic
	beego.Run(addr)
}
