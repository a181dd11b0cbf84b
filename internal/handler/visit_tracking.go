package handler

import (
	"net/http"
	"strings"

	"github.com/ecopress/internal/metrics"
	"github.com/ecopress/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TrackVisits 被动统计访问量。会话簿记（节流时间戳、匿名标识）在处理请求前完成，
// 因为 cookie 会话必须在响应写出前保存；计数写库在处理完成后进行。
// 统计路径上的任何错误或 panic 都被吞掉，只写日志与指标。
func (a *API) TrackVisits() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := a.beginVisit(c)
		c.Next()
		if ok {
			a.finishVisit(identity)
		}
	}
}

func (a *API) beginVisit(c *gin.Context) (identity service.VisitIdentity, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			a.metrics.TrackingErrors.WithLabelValues(metrics.StagePanic).Inc()
			a.log.Warn("visit tracking panicked", zap.Any("panic", r))
			identity, ok = service.VisitIdentity{}, false
		}
	}()

	if reason := a.visitSkipReason(c.Request); reason != "" {
		a.metrics.VisitsSkipped.WithLabelValues(reason).Inc()
		return identity, false
	}

	session := sessions.Default(c)
	now := a.now()

	last, _ := session.Get(service.SessionKeyLastVisit).(string)
	if !service.ThrottleAllows(last, now, a.cfg.Tracking.Throttle()) {
		a.metrics.VisitsSkipped.WithLabelValues(metrics.ReasonThrottled).Inc()
		return identity, false
	}

	if user := currentUser(c); user != nil {
		identity = service.UserIdentity(user.ID)
	} else {
		key, _ := ensureSessionKey(session)
		identity = service.SessionIdentity(key)
	}
	if identity.IsZero() {
		a.metrics.VisitsSkipped.WithLabelValues(metrics.ReasonNoSession).Inc()
		return identity, false
	}

	session.Set(service.SessionKeyLastVisit, service.FormatVisitTime(now))
	if err := session.Save(); err != nil {
		a.metrics.TrackingErrors.WithLabelValues(metrics.StageSession).Inc()
		a.log.Debug("save visit session", zap.Error(err))
		return identity, false
	}
	return identity, true
}

func (a *API) finishVisit(identity service.VisitIdentity) {
	defer func() {
		if r := recover(); r != nil {
			a.metrics.TrackingErrors.WithLabelValues(metrics.StagePanic).Inc()
			a.log.Warn("visit counting panicked", zap.Any("panic", r))
		}
	}()

	if _, err := a.visits.RecordVisit(identity, a.now()); err != nil {
		a.metrics.TrackingErrors.WithLabelValues(metrics.StageStorage).Inc()
		a.log.Warn("record visit", zap.Error(err))
		return
	}
	a.metrics.VisitsCounted.WithLabelValues("middleware").Inc()
}

// visitSkipReason 返回请求不计入访问量的原因，空字符串表示需要计数
func (a *API) visitSkipReason(r *http.Request) string {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return metrics.ReasonMethod
	}

	path := strings.ToLower(r.URL.Path)
	for _, prefix := range []string{a.cfg.StaticURLPrefix, a.cfg.MediaURLPrefix, a.cfg.AdminPrefix} {
		if prefix != "" && strings.HasPrefix(path, strings.ToLower(prefix)) {
			return metrics.ReasonPath
		}
	}
	if path == strings.ToLower(a.cfg.TrackVisitPath) {
		return metrics.ReasonPath
	}
	return ""
}

// TrackVisit 是前端轮询的计数接口，返回今日全站与当前访客的访问次数
func (a *API) TrackVisit(c *gin.Context) {
	session := sessions.Default(c)
	now := a.now()

	var identity service.VisitIdentity
	if user := currentUser(c); user != nil {
		identity = service.UserIdentity(user.ID)
	} else {
		key, created := ensureSessionKey(session)
		if created {
			if err := session.Save(); err != nil {
				a.metrics.TrackingErrors.WithLabelValues(metrics.StageSession).Inc()
				a.log.Debug("save visitor session key", zap.Error(err))
				key = ""
			}
		}
		identity = service.SessionIdentity(key)
	}

	if identity.IsZero() {
		respondError(c, http.StatusBadRequest, "no session")
		return
	}

	userToday, err := a.visits.RecordVisit(identity, now)
	if err != nil {
		a.metrics.TrackingErrors.WithLabelValues(metrics.StageStorage).Inc()
		a.log.Warn("record polled visit", zap.Error(err))
		respondError(c, http.StatusBadRequest, "visit could not be recorded")
		return
	}
	a.metrics.VisitsCounted.WithLabelValues("poll").Inc()

	_, totalToday, err := a.visits.Counts(identity, now)
	if err != nil {
		a.log.Warn("count polled visits", zap.Error(err))
		respondError(c, http.StatusBadRequest, "visit totals unavailable")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_today": totalToday,
		"user_today":  userToday,
	})
}
