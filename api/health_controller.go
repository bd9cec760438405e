package api

import (
	beego "github.com/beego/beego/v2/server/web"
)

type HealthController struct{ beego.Controller }

// Health handles GET /api/health
func (c *HealthController) Health() {
	Success(&c.Controller, map[string]interface{}{
		"status": "ok",
	}, traceID(c.Ctx))
}
