// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package devauth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/safar/internal/identity"
	"github.com/taibuivan/safar/internal/platform/middleware"
	"github.com/taibuivan/safar/internal/platform/respond"
	requestutil "github.com/taibuivan/safar/internal/platform/request"
)

// Handler implements the mobile sign-in endpoints.
//
// # Contract
//
// Every answer is a flat JSON object. Business rejections and rate limits are
// HTTP 200 with success=false so the client can show the message; malformed
// JSON is 400 and unexpected failures are 500.
type Handler struct {
	service  *Service
	verifier middleware.TokenVerifier
}

// NewHandler constructs a [Handler]. verifier guards the routes that act on
// the signed-in account.
func NewHandler(service *Service, verifier middleware.TokenVerifier) *Handler {
	return &Handler{service: service, verifier: verifier}
}

// Routes returns a [chi.Router] with the sign-in routes.
//
// # Endpoints
//   - POST /init-login            : Does an account exist for this mobile?
//   - POST /send-verification     : Dispatch a one-time code.
//   - POST /verify-code           : Redeem a code, creating the account if needed.
//   - POST /login-password        : Sign an existing account in by password.
//   - POST /set-initial-password  : First password of the bearer's account.
//   - POST /complete-registration : Profile fields of the bearer's account.
//   - GET  /me                    : Profile of the bearer token's account.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/init-login", handler.initLogin)
	router.Post("/send-verification", handler.sendVerification)
	router.Post("/verify-code", handler.verifyCode)
	router.Post("/login-password", handler.loginPassword)

	router.Group(func(router chi.Router) {
		router.Use(middleware.Authenticate(handler.verifier), middleware.RequireAuth)

		router.Post("/set-initial-password", handler.setInitialPassword)
		router.Post("/complete-registration", handler.completeRegistration)
		router.Get("/me", handler.me)
	})

	return router
}

// # Payloads

type mobileRequest struct {
	Mobile string `json:"mobile"`
}

type verifyRequest struct {
	Mobile string `json:"mobile"`
	Code   string `json:"code"`
}

type passwordRequest struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

type initialPasswordRequest struct {
	Mobile      string `json:"mobile"`
	NewPassword string `json:"newPassword"`
}

type registrationRequest struct {
	Mobile         string `json:"mobile"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	NationalCode   string `json:"nationalCode"`
	PassportNumber string `json:"passportNumber"`
	Address        string `json:"address"`
}

type initLoginResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	UserExists  bool   `json:"userExists"`
	HasPassword bool   `json:"hasPassword"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type profileResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	User    *identity.Principal `json:"user"`
}

type credentialsResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Token   string              `json:"token"`
	User    *identity.Principal `json:"user"`
}

// # Endpoints

func (handler *Handler) initLogin(writer http.ResponseWriter, request *http.Request) {
	var input mobileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.InitLogin(request.Context(), input.Mobile)
	if err != nil {
		respond.Rejected(writer, request, err)
		return
	}

	respond.OK(writer, initLoginResponse{
		Success:     true,
		Message:     result.Message,
		UserExists:  result.UserExists,
		HasPassword: result.HasPassword,
	})
}

func (handler *Handler) sendVerification(writer http.ResponseWriter, request *http.Request) {
	var input mobileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	message, err := handler.service.SendVerification(request.Context(), input.Mobile)
	if err != nil {
		respond.Rejected(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Success: true, Message: message})
}

func (handler *Handler) verifyCode(writer http.ResponseWriter, request *http.Request) {
	var input verifyRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	credentials, err := handler.service.VerifyCode(request.Context(), input.Mobile, input.Code)
	if err != nil {
		respond.Rejected(writer, request, err)
		return
	}

	writeCredentials(writer, credentials)
}

func (handler *Handler) loginPassword(writer http.ResponseWriter, request *http.Request) {
	var input passwordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	credentials, err := handler.service.LoginWithPassword(request.Context(), input.Mobile, input.Password)
	if err != nil {
		respond.Rejected(writer, request, err)
		return
	}

	writeCredentials(writer, credentials)
}

func (handler *Handler) setInitialPassword(writer http.ResponseWriter, request *http.Request) {
	var input initialPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims := middleware.Claims(request.Context())

	message, err := handler.service.SetInitialPassword(request.Context(), claims.UserID, input.Mobile, input.NewPassword)
	if err != nil {
		respond.Rejected(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Success: true, Message: message})
}

func (handler *Handler) completeRegistration(writer http.ResponseWriter, request *http.Request) {
	var input registrationRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims := middleware.Claims(request.Context())

	user, message, err := handler.service.CompleteRegistration(request.Context(), claims.UserID, input.Mobile, Profile{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		NationalCode:   input.NationalCode,
		PassportNumber: input.PassportNumber,
		Address:        input.Address,
	})
	if err != nil {
		respond.Rejected(writer, request, err)
		return
	}

	respond.OK(writer, profileResponse{
		Success: true,
		Message: message,
		User:    user,
	})
}

func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims := middleware.Claims(request.Context())

	user, err := handler.service.Profile(request.Context(), claims.Mobile)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profileResponse{Success: true, User: user})
}

func writeCredentials(writer http.ResponseWriter, credentials *Credentials) {
	respond.OK(writer, credentialsResponse{
		Success: true,
		Message: credentials.Message,
		Token:   credentials.Token,
		User:    credentials.User,
	})
}
