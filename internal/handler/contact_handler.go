package handler

import (
	"errors"
	"net/http"

	"github.com/ecopress/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShowContact renders the contact form.
func (a *API) ShowContact(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "contact.html", gin.H{
		"title": "Contact",
		"form":  contactForm{},
	})
}

// SubmitContact 保存联系表单；成功后重定向回表单页并显示提示
func (a *API) SubmitContact(c *gin.Context) {
	var form contactForm
	if err := c.ShouldBind(&form); err != nil {
		a.renderHTML(c, http.StatusBadRequest, "contact.html", gin.H{
			"title": "Contact",
			"form":  form,
			"error": describeBindError(err),
		})
		return
	}

	_, err := a.contacts.Submit(service.ContactInput{
		Name:    form.Name,
		Email:   form.Email,
		Subject: form.Subject,
		Message: form.Message,
	})
	if err != nil {
		status := http.StatusInternalServerError
		message := "Your message could not be saved. Please try again later."
		if errors.Is(err, service.ErrContactInvalidInput) {
			status = http.StatusBadRequest
			message = "Please fill in every field."
		} else {
			a.log.Error("submit contact message", zap.Error(err))
		}
		a.renderHTML(c, status, "contact.html", gin.H{"title": "Contact", "form": form, "error": message})
		return
	}

	addFlash(c, "Thanks, your message was submitted. We'll get back to you soon.")
	c.Redirect(http.StatusFound, "/contact/")
}
