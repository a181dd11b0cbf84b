package handler

import (
	"net/http"

	"github.com/ecopress/internal/db"
	"github.com/ecopress/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const adminMessageLimit = 20

// ShowAdminDashboard 渲染后台主面板：用户数、今日访问总数与最近的联系留言
func (a *API) ShowAdminDashboard(c *gin.Context) {
	degraded := false

	userCount, err := a.users.Count()
	if err != nil {
		a.log.Warn("count users", zap.Error(err))
		degraded = true
	}

	today := a.context.TodayCounts(service.VisitIdentity{}, a.now())
	degraded = degraded || today.Degraded

	messages, err := a.contacts.ListRecent(adminMessageLimit)
	if err != nil {
		a.log.Warn("list contact messages", zap.Error(err))
		messages = []db.ContactMessage{}
		degraded = true
	}

	a.renderHTML(c, http.StatusOK, "admin_dashboard.html", gin.H{
		"title":            "Administration",
		"userCount":        userCount,
		"totalVisitsToday": today.TotalToday,
		"messages":         messages,
		"degraded":         degraded,
	})
}
