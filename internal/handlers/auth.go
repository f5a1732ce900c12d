package handlers

import (
	"errors"
	"net/http"
	"time"

	"medisched/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgUsernameTaken      = "Username already exists. Please choose another."
	msgAccountCreated     = "Account created! You can now log in."
	msgCredentialsMissing = "Username and password are required."
	msgInvalidCredentials = "Invalid username or password."
	msgLoggedIn           = "Logged in successfully!"
	msgLoggedOut          = "You have been logged out."
)

// Single, shared credentials payload for both sign-up and sign-in.
type authCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// signInResponse is returned by POST /auth/sign-in.
type signInResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.log.Infow("bad_request_body", "path", c.Request.URL.Path, "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return false
	}
	return true
}

func (h *Handler) registerPage(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{"Title": "Register"})
}

func (h *Handler) register(c *gin.Context) {
	username := c.PostForm("username")
	user, err := h.services.Register(c.Request.Context(), username, c.PostForm("password"))
	switch {
	case errors.Is(err, service.ErrDuplicateUsername):
		h.setFlash(c, errorNotice(msgUsernameTaken))
		c.Redirect(http.StatusFound, "/register")
		return
	case errors.Is(err, service.ErrInvalidInput):
		h.setFlash(c, errorNotice(msgCredentialsMissing))
		c.Redirect(http.StatusFound, "/register")
		return
	case err != nil:
		h.log.Errorw("auth_register_failed", "username", username, "err", err)
		h.renderInternalError(c)
		return
	}

	h.log.Infow("auth_registered", "user_id", user.ID)
	h.setFlash(c, successNotice(msgAccountCreated))
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) loginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Log in"})
}

func (h *Handler) login(c *gin.Context) {
	username := c.PostForm("username")
	sess, err := h.services.Login(c.Request.Context(), username, c.PostForm("password"))
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.log.Infow("auth_login_failed", "username", username)
		h.setFlash(c, errorNotice(msgInvalidCredentials))
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if err != nil {
		h.log.Errorw("auth_login_error", "username", username, "err", err)
		h.renderInternalError(c)
		return
	}

	h.setSessionCookie(c, sess)
	h.setFlash(c, successNotice(msgLoggedIn))
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.services.Logout(c.Request.Context(), c.GetString(ctxTokenKey)); err != nil {
		h.log.Errorw("auth_logout_failed", "user_id", currentUser(c).ID, "err", err)
	}
	h.clearSessionCookie(c)
	h.setFlash(c, successNotice(msgLoggedOut))
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) setSessionCookie(c *gin.Context, sess service.Session) {
	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = 1
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// @Summary      Register a user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      authCredentials  true  "Credentials"
// @Success      201   {object}  map[string]interface{}  "id, username"
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/sign-up [post]
func (h *Handler) signUp(c *gin.Context) {
	var input authCredentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	user, err := h.services.Register(c.Request.Context(), input.Username, input.Password)
	switch {
	case errors.Is(err, service.ErrDuplicateUsername):
		h.log.Infow("auth_sign_up_duplicate", "username", input.Username)
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "auth_sign_up_failed", err, "username", input.Username)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}

// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      authCredentials  true  "Credentials"
// @Success      200   {object}  signInResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	var input authCredentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	sess, err := h.services.Login(c.Request.Context(), input.Username, input.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.log.Infow("auth_sign_in_failed", "username", input.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "auth_sign_in_error", err, "username", input.Username)
		return
	}

	c.JSON(http.StatusOK, signInResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt})
}

// @Summary      Sign out
// @Tags         auth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /auth/sign-out [post]
// @Security     BearerAuth
func (h *Handler) signOut(c *gin.Context) {
	if err := h.services.Logout(c.Request.Context(), c.GetString(ctxTokenKey)); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "auth_sign_out_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}
