package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/ecopress/internal/db"
	"github.com/ecopress/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CurrentUser 从会话加载登录用户并放入上下文；加载失败时按匿名处理
func (a *API) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID := sessionUserID(session); userID != 0 {
			user, err := a.users.Get(userID)
			switch {
			case err == nil:
				c.Set(contextKeyUser, user)
			case errors.Is(err, service.ErrUserNotFound):
				session.Delete(sessionKeyUserID)
				_ = session.Save()
			default:
				a.log.Warn("load session user", zap.Uint("user_id", userID), zap.Error(err))
			}
		}
		c.Next()
	}
}

// LoginRequired 未登录时跳转到登录页
func (a *API) LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			redirectToLogin(c)
			return
		}
		c.Next()
	}
}

// EditorRequired 未登录时跳转登录页；已登录但不是编辑时回到首页
func (a *API) EditorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			redirectToLogin(c)
			return
		}
		if !user.IsEditor() {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired 只允许管理员访问后台
func (a *API) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			redirectToLogin(c)
			return
		}
		if !user.IsAdmin() {
			a.renderError(c, http.StatusForbidden, "Forbidden", "You need administrator rights to open this page.")
			c.Abort()
			return
		}
		c.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, "/login/?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	c.Abort()
}

// ShowSignup 渲染注册页
func (a *API) ShowSignup(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "signup.html", gin.H{
		"title": "Sign up",
		"form":  signupForm{Role: db.RoleUser},
	})
}

// Signup 创建账号并直接登录
func (a *API) Signup(c *gin.Context) {
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		a.renderHTML(c, http.StatusBadRequest, "signup.html", gin.H{
			"title": "Sign up",
			"form":  form,
			"error": describeBindError(err),
		})
		return
	}

	user, err := a.users.Register(service.RegisterInput{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password1,
		Role:     form.Role,
	})
	if err != nil {
		status := http.StatusBadRequest
		message := "Could not create the account."
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			message = "That username is already taken."
		case errors.Is(err, service.ErrRoleNotAllowed):
			message = "That role cannot be chosen."
		case errors.Is(err, service.ErrUserInvalid):
			message = "Username and password are required."
		default:
			status = http.StatusInternalServerError
			a.log.Error("register user", zap.Error(err))
		}
		a.renderHTML(c, status, "signup.html", gin.H{"title": "Sign up", "form": form, "error": message})
		return
	}

	if err := a.startSession(c, user); err != nil {
		a.renderError(c, http.StatusInternalServerError, "Sign up", "Your account was created but the session could not be saved. Please log in.")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// ShowLogin 渲染登录页
func (a *API) ShowLogin(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"title": "Log in",
		"next":  c.Query("next"),
	})
}

// Login 处理用户登录请求
func (a *API) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		a.renderHTML(c, http.StatusBadRequest, "login.html", gin.H{
			"title":    "Log in",
			"username": form.Username,
			"next":     form.Next,
			"error":    describeBindError(err),
		})
		return
	}

	user, err := a.users.Authenticate(form.Username, form.Password)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, service.ErrInvalidCredentials) {
			status = http.StatusInternalServerError
			a.log.Error("authenticate user", zap.Error(err))
		}
		a.renderHTML(c, status, "login.html", gin.H{
			"title":    "Log in",
			"username": form.Username,
			"next":     form.Next,
			"error":    "Invalid username or password.",
		})
		return
	}

	if err := a.startSession(c, user); err != nil {
		a.renderHTML(c, http.StatusInternalServerError, "login.html", gin.H{"title": "Log in", "error": "The session could not be saved."})
		return
	}
	c.Redirect(http.StatusFound, safeRedirectTarget(form.Next, "/"))
}

// Logout 处理用户登出并清空会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/")
}

func (a *API) startSession(c *gin.Context, user *db.User) error {
	session := sessions.Default(c)
	session.Set(sessionKeyUserID, user.ID)
	c.Set(contextKeyUser, user)
	return session.Save()
}
