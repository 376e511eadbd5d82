// Package web serves the HTML surface: the auth forms, the dashboards,
// and the static landing pages, rendered server-side over the auth
// service.
package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mindwell-hq/mindwell/internal/auth"
	"github.com/mindwell-hq/mindwell/internal/domain"
)

// CookieConfig controls the session cookie the handlers set and clear.
type CookieConfig struct {
	Name   string
	MaxAge int
	Secure bool
}

// Handler holds the HTML endpoints.
type Handler struct {
	svc    *auth.Service
	log    *zap.Logger
	cookie CookieConfig
}

// NewHandler builds the HTML endpoint set. A nil logger falls back to a
// no-op.
func NewHandler(svc *auth.Service, cookie CookieConfig, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, cookie: cookie, log: log.Named("web")}
}

// Home renders the public landing page.
func (h *Handler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", gin.H{"Title": "MindWell"})
}

// LoginPage renders the login form.
func (h *Handler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Title": "Login"})
}

// LoginSubmit verifies the posted credentials. On success it sets the
// session cookie and redirects by role; on failure it re-renders the
// form with the error message and the email preserved.
func (h *Handler) LoginSubmit(c *gin.Context) {
	email := c.PostForm("email")

	result, err := h.svc.Login(c.Request.Context(), auth.LoginInput{
		Email:    email,
		Password: c.PostForm("password"),
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		c.HTML(statusFor(err), "login.html", gin.H{
			"Title": "Login",
			"Error": messageFor(err),
			"Email": email,
		})
		return
	}

	h.setSessionCookie(c, result.SessionID)
	c.Redirect(http.StatusFound, result.RedirectPath)
}

// RegisterPage renders the registration form.
func (h *Handler) RegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{"Title": "Register"})
}

// RegisterSubmit creates the account and, on success, sends the user to
// the login form. No session is established here.
func (h *Handler) RegisterSubmit(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")

	err := h.svc.Register(c.Request.Context(), auth.RegisterInput{
		Name:            name,
		Email:           email,
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirmPassword"),
		ClientIP:        c.ClientIP(),
	})
	if err != nil {
		c.HTML(statusFor(err), "register.html", gin.H{
			"Title": "Register",
			"Error": messageFor(err),
			"Name":  name,
			"Email": email,
		})
		return
	}

	c.HTML(http.StatusOK, "login.html", gin.H{
		"Title":   "Login",
		"Success": "Account created successfully! Please log in with your credentials.",
		"Email":   email,
	})
}

// ForgotPasswordPage renders the password-reset placeholder.
func (h *Handler) ForgotPasswordPage(c *gin.Context) {
	c.HTML(http.StatusOK, "forgotpassword.html", gin.H{"Title": "Forgot Password"})
}

// Logout destroys the session, clears the cookie, and redirects to the
// login page. It never fails, even without a session.
func (h *Handler) Logout(c *gin.Context) {
	if sessionID, err := c.Cookie(h.cookie.Name); err == nil && sessionID != "" {
		h.svc.Logout(c.Request.Context(), sessionID, c.ClientIP())
	}
	h.clearSessionCookie(c)
	c.Redirect(http.StatusFound, "/login")
}

// Dashboard renders the member dashboard, or redirects anonymous and
// stale sessions to the login page and admins to the admin dashboard.
func (h *Handler) Dashboard(c *gin.Context) {
	sessionID, _ := c.Cookie(h.cookie.Name)

	view, err := h.svc.Dashboard(c.Request.Context(), sessionID)
	if err != nil {
		h.log.Error("dashboard resolve failed", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"Title": "Login",
			"Error": messageFor(err),
		})
		return
	}
	if view.RedirectPath != "" {
		c.Redirect(http.StatusFound, view.RedirectPath)
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":      "Dashboard",
		"User":       view.User,
		"Progress":   view.Progress,
		"Activities": view.Recent,
	})
}

// AdminDashboard renders the admin view. Anonymous sessions go to the
// login page; members go back to their own dashboard.
func (h *Handler) AdminDashboard(c *gin.Context) {
	sessionID, _ := c.Cookie(h.cookie.Name)

	user, err := h.svc.CurrentUser(c.Request.Context(), sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			h.log.Error("admin session resolve failed", zap.Error(err))
		}
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if user.Role != domain.RoleAdmin {
		c.Redirect(http.StatusFound, "/user/dashboard")
		return
	}

	c.HTML(http.StatusOK, "admin_dashboard.html", gin.H{
		"Title": "Admin Dashboard",
		"User":  user,
	})
}

func (h *Handler) setSessionCookie(c *gin.Context, sessionID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, sessionID, h.cookie.MaxAge, "/", "", h.cookie.Secure, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}

// statusFor maps domain errors onto HTTP statuses for form re-renders.
func statusFor(err error) int {
	switch {
	case domain.IsValidation(err) || domain.IsConflict(err):
		return http.StatusBadRequest
	case domain.IsUnauthorized(err):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the user-facing message for an error. Domain errors
// carry messages written for the forms; anything else gets a generic one
// so infrastructure details never reach the page.
func messageFor(err error) string {
	if domain.IsValidation(err) || domain.IsConflict(err) || domain.IsUnauthorized(err) {
		return err.Error()
	}
	return "Something went wrong. Please try again later."
}
