package handler

import (
	"github.com/ecopress/internal/db"
	"github.com/ecopress/internal/metrics"
	"github.com/ecopress/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sessionKeyUserID = "user_id"
	contextKeyUser   = "currentUser"
)

// currentUser 返回 CurrentUser 中间件加载的登录用户，匿名访问返回 nil
func currentUser(c *gin.Context) *db.User {
	if value, exists := c.Get(contextKeyUser); exists {
		if user, ok := value.(*db.User); ok {
			return user
		}
	}
	return nil
}

func sessionUserID(session sessions.Session) uint {
	switch v := session.Get(sessionKeyUserID).(type) {
	case uint:
		return v
	case int:
		if v > 0 {
			return uint(v)
		}
	case int64:
		if v > 0 {
			return uint(v)
		}
	}
	return 0
}

// ensureSessionKey 返回会话的匿名访客标识，不存在时生成一个新的 uuid。
// 新生成的标识需要调用方保存会话。
func ensureSessionKey(session sessions.Session) (key string, created bool) {
	if existing, ok := session.Get(service.SessionKeyVisitor).(string); ok && existing != "" {
		return existing, false
	}
	key = uuid.NewString()
	session.Set(service.SessionKeyVisitor, key)
	return key, true
}

func (a *API) recentIDs(c *gin.Context) []uint {
	return service.NormalizeRecent(sessions.Default(c).Get(service.SessionKeyRecentArticles))
}

// recordRecent 把文章放到会话最近浏览列表的最前面；任何失败都只记录日志
func (a *API) recordRecent(c *gin.Context, articleID uint) {
	defer func() {
		if r := recover(); r != nil {
			a.metrics.TrackingErrors.WithLabelValues(metrics.StageRecency).Inc()
			a.log.Warn("recording recent article panicked", zap.Any("panic", r))
		}
	}()

	session := sessions.Default(c)
	current := service.NormalizeRecent(session.Get(service.SessionKeyRecentArticles))
	updated := service.RecordView(current, articleID, a.cfg.Tracking.RecencyCap)
	session.Set(service.SessionKeyRecentArticles, updated)
	if err := session.Save(); err != nil {
		a.metrics.TrackingErrors.WithLabelValues(metrics.StageRecency).Inc()
		a.log.Debug("save recent articles", zap.Uint("article_id", articleID), zap.Error(err))
		return
	}
	a.metrics.RecentViews.Inc()
}

func addFlash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	_ = session.Save()
}

func popFlash(c *gin.Context) string {
	session := sessions.Default(c)
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return ""
	}
	_ = session.Save()
	if message, ok := flashes[0].(string); ok {
		return message
	}
	return ""
}
