package handler

import (
	"net/http"

	"github.com/ecopress/internal/db"
	"github.com/ecopress/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShowDashboard 展示当前用户的访问统计、最近浏览与最近 7 天的访问记录
func (a *API) ShowDashboard(c *gin.Context) {
	user := currentUser(c)
	identity := service.UserIdentity(user.ID)

	summary := a.context.VisitSummary(identity)
	recent := a.context.RecentInSession(a.recentIDs(c))

	degraded := summary.Degraded || recent.Degraded
	lastWeek, err := a.visits.RecentDays(identity, a.now(), 7)
	if err != nil {
		a.log.Warn("load last week visits", zap.Uint("user_id", user.ID), zap.Error(err))
		lastWeek = []db.Visit{}
		degraded = true
	}

	a.renderHTML(c, http.StatusOK, "dashboard.html", gin.H{
		"title":          "Dashboard",
		"visitTotal":     summary.Total,
		"visitLastSeen":  summary.LastSeen,
		"recentlyViewed": recent.Articles,
		"recentArticles": recent.Articles,
		"lastWeekVisits": lastWeek,
		"degraded":       degraded,
	})
}
