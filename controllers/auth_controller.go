package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-management/middleware"
	"hotel-management/observability"
	"hotel-management/services"
	"hotel-management/session"
)

type AuthController struct {
	Auth     *services.AuthService
	Register *services.RegistrationService
	Reset    *services.PasswordResetService
	Metrics  *observability.Metrics
	log      *zap.Logger
}

func NewAuthController(auth *services.AuthService, register *services.RegistrationService, reset *services.PasswordResetService, metrics *observability.Metrics, log *zap.Logger) *AuthController {
	return &AuthController{Auth: auth, Register: register, Reset: reset, Metrics: metrics, log: log}
}

// ---------------------------
// Login / Logout
// ---------------------------

func (ctrl *AuthController) ShowLogin(c *gin.Context) {
	if _, ok := middleware.CurrentUser(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	render(c, http.StatusOK, "login.html", gin.H{"Title": "Login"})
}

func (ctrl *AuthController) Login(c *gin.Context) {
	username := c.PostForm("username")
	user, err := ctrl.Auth.Authenticate(c.Request.Context(), username, c.PostForm("password"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			ctrl.Metrics.RecordLogin(observability.LoginFailure)
			render(c, http.StatusOK, "login.html", gin.H{
				"Title":    "Login",
				"Error":    services.ErrInvalidCredentials.Error(),
				"Username": username,
			})
			return
		}
		ctrl.Metrics.RecordLogin(observability.LoginError)
		serverError(c, ctrl.log, "login failed", err)
		return
	}

	services.EstablishSession(session.Default(c), user)
	ctrl.Metrics.RecordLogin(observability.LoginSuccess)
	ctrl.log.Info("user logged in", zap.Uint("user_id", user.ID))
	c.Redirect(http.StatusFound, "/")
}

func (ctrl *AuthController) Logout(c *gin.Context) {
	services.TerminateSession(session.Default(c))
	c.Redirect(http.StatusFound, "/")
}

// ---------------------------
// Registration
// ---------------------------

func (ctrl *AuthController) ShowRegister(c *gin.Context) {
	render(c, http.StatusOK, "register.html", gin.H{
		"Title":  "Register",
		"Form":   services.RegistrationForm{},
		"Errors": services.FieldErrors{},
	})
}

func (ctrl *AuthController) RegisterUser(c *gin.Context) {
	form := services.RegistrationForm{
		Name:           c.PostForm("name"),
		Username:       c.PostForm("username"),
		Password:       c.PostForm("password"),
		Confirm:        c.PostForm("confirm"),
		Email:          c.PostForm("email"),
		Phone:          c.PostForm("phone"),
		Gender:         c.PostForm("gender"),
		Identification: c.PostForm("identification"),
		CustomerType:   c.PostForm("customer_type"),
	}

	avatar, err := c.FormFile("avatar")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			ctrl.log.Warn("read avatar failed", zap.Error(err))
		}
		avatar = nil
	}

	user, fieldErrs, err := ctrl.Register.Register(c.Request.Context(), form, avatar)
	if err != nil {
		if isDuplicateKeyError(err) {
			ctrl.log.Warn("registration raced a duplicate", zap.String("username", form.Username), zap.Error(err))
			renderError(c, http.StatusConflict, "This account was registered at the same time. Please check your details and try again.")
			return
		}
		serverError(c, ctrl.log, "registration failed", err)
		return
	}
	if fieldErrs.Any() {
		form.Password, form.Confirm = "", ""
		render(c, http.StatusOK, "register.html", gin.H{
			"Title":  "Register",
			"Form":   form,
			"Errors": fieldErrs,
		})
		return
	}

	redirectWithFlash(c, "/login", "Registered successfully, welcome "+user.Name+". Please log in.")
}

// ---------------------------
// Forgot password
// ---------------------------

func (ctrl *AuthController) ShowForgotPassword(c *gin.Context) {
	render(c, http.StatusOK, "forgot_password.html", gin.H{
		"Title": "Forgot password",
		"Step":  services.ResetStepIdentify,
	})
}

func (ctrl *AuthController) ForgotPassword(c *gin.Context) {
	step := services.ParseResetStep(c.PostForm("step"))
	form := services.ResetForm{
		Account:  c.PostForm("account"),
		OTP:      c.PostForm("otp"),
		Password: c.PostForm("password"),
		Confirm:  c.PostForm("confirm"),
	}

	res, err := ctrl.Reset.Handle(c.Request.Context(), session.Default(c), step, form)
	if err != nil {
		serverError(c, ctrl.log, "password reset failed", err)
		return
	}
	if res.Completed {
		redirectWithFlash(c, "/login", services.MsgPasswordChanged)
		return
	}

	render(c, http.StatusOK, "forgot_password.html", gin.H{
		"Title":       "Forgot password",
		"Step":        res.Step,
		"Error":       res.Error,
		"MaskedEmail": res.MaskedEmail,
		"Account":     form.Account,
	})
}
