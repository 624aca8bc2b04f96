package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sfrosal/portfolio-api/auth"
	"github.com/sfrosal/portfolio-api/database"
	"github.com/sfrosal/portfolio-api/errs"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	userRepo  *database.UserRepo
	codec     *auth.Codec
	cookies   cookiePolicy
}

func newAuthHandler(userRepo *database.UserRepo, codec *auth.Codec, cookies cookiePolicy) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		userRepo:  userRepo,
		codec:     codec,
		cookies:   cookies,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login exchanges email + password for a session token. Unknown email and
// wrong password answer with the same generic 401 so the response does not
// leak which accounts exist.
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError(err))
			return
		}
		if req.Email == "" || req.Password == "" {
			h.responder.WriteError(w, errs.NewValidationError([]string{"email", "password"}, "email and password are required"))
			return
		}

		invalidCredentials := errs.NewUnauthorizedError("invalid credentials")

		user, err := h.userRepo.FindByEmail(req.Email)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				h.responder.WriteError(w, invalidCredentials)
				return
			}
			h.responder.WriteError(w, errs.NewDatabaseError("find", "user", err))
			return
		}

		if !auth.CheckPassword(user.Password, req.Password) {
			h.responder.WriteError(w, invalidCredentials)
			return
		}

		token, err := h.codec.Issue(user.ID, user.Email)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.cookies.set(w, token)
		h.responder.WriteJSON(w, map[string]interface{}{
			"user":  user,
			"token": token,
		})
	}
}

// logout clears the session cookie. The token itself is stateless, so
// nothing is revoked server-side.
func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.cookies.clear(w)
		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "logged out",
		})
	}
}

// me returns the authenticated user.
func (h authHandler) me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFromCtx(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.NewTokenMissingError())
			return
		}

		user, err := h.userRepo.FindByID(identity.UserID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, user)
	}
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	ImageURL *string `json:"imageUrl"`
}

// updateProfile applies a partial update to the authenticated user's
// name/email/imageUrl.
func (h authHandler) updateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFromCtx(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.NewTokenMissingError())
			return
		}

		var req updateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError(err))
			return
		}

		user, err := h.userRepo.UpdateProfile(identity.UserID, database.UserUpdate{
			Name:     req.Name,
			Email:    req.Email,
			ImageURL: req.ImageURL,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, user)
	}
}
