package admin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"

	"github.com/ezamazwe/admin-gateway/pkg/identity"
	"github.com/ezamazwe/admin-gateway/pkg/verification"
)

// Handle exposes the admin HTTP surface.
type Handle struct {
	service *AdminService
}

// NewHandle creates a new admin handler.
func NewHandle(service *AdminService) Handle {
	return Handle{service: service}
}

// ErrorResponse is the error envelope returned on failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the plain success envelope.
type MessageResponse struct {
	Message string `json:"message"`
}

type CreateUserRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.PhoneNumber, validation.Required),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 30)),
	)
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
	URL   string `json:"url"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.URL, validation.Required),
	)
}

type EmailVerificationRequest struct {
	Email string `json:"email"`
}

func (r EmailVerificationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

type VerifyEmailRequest struct {
	Code  string `json:"code"`
	Email string `json:"email"`
}

// Validate rejects a malformed email before the store is consulted. Presence
// is checked by the redeem service so the missing-parameter wording is kept.
func (r VerifyEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
	)
}

type UpdatePasswordResetRequest struct {
	Email string `json:"email"`
}

type ChangeAdminRoleRequest struct {
	Email string `json:"email"`
}

type AdminUpdateRequest struct {
	UID         string `json:"uid"`
	PhoneNumber string `json:"phoneNumber"`
}

type DeleteUserRequest struct {
	UID string `json:"uid"`
}

type ContactUsRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

func (r ContactUsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Subject, validation.Required),
		validation.Field(&r.Message, validation.Required),
		validation.Field(&r.FirstName, validation.Required),
		validation.Field(&r.LastName, validation.Required),
	)
}

// CreateUser handles POST /create-user.
func (h Handle) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
		return
	}

	user, err := h.service.CreateAdmin(r.Context(), req.Email, req.Name, req.PhoneNumber)
	if err != nil {
		slog.Error("Failed creating admin", "email", req.Email, "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, struct {
		Message    string             `json:"message"`
		UserRecord *identity.Identity `json:"userRecord"`
	}{
		Message:    "Admin created successfully",
		UserRecord: user,
	})
}

// AdminLogin handles POST /admin-login.
func (h Handle) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, MessageResponse{Message: "Invalid credentials"})
		case errors.Is(err, ErrNotAuthorized):
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, MessageResponse{Message: "Not authorized"})
		default:
			slog.Error("Login failed", "email", req.Email, "error", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: "Login failed"})
		}
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, struct {
		Message             string `json:"message"`
		ForcePasswordChange bool   `json:"forcePasswordChange"`
		Permissions         string `json:"permissions"`
		Token               string `json:"token"`
	}{
		Message:             "Authorized",
		ForcePasswordChange: result.ForcePasswordChange,
		Permissions:         string(result.Permissions),
		Token:               result.Token,
	})
}

// ResetPassword handles POST /reset-password.
func (h Handle) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.service.InitPasswordReset(r.Context(), req.Email, req.URL); err != nil {
		if errors.Is(err, ErrMailDelivery) {
			slog.Error("Failed sending password reset email", "email", req.Email, "error", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: "Unable to send password reset email."})
			return
		}
		slog.Error("Failed generating password reset link", "email", req.Email, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Unable to generate password reset link."})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Password reset email sent."})
}

// EmailVerification handles POST /email-verification.
func (h Handle) EmailVerification(w http.ResponseWriter, r *http.Request) {
	var req EmailVerificationRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
		return
	}

	link, err := h.service.SendVerificationEmail(r.Context(), req.Email)
	if err != nil {
		slog.Error("Failed sending verification email", "email", req.Email, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to send email"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Email sent successfully!" + link})
}

// VerifyEmail handles POST /verify-email.
func (h Handle) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
		return
	}

	err := h.service.VerifyEmail(r.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, verification.ErrMissingParameter):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ErrorResponse{Error: "Verification code or email is missing."})
		case errors.Is(err, verification.ErrTokenNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, ErrorResponse{Error: "Verification code or email is invalid."})
		case errors.Is(err, identity.ErrIdentityNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, ErrorResponse{Error: "User not found."})
		default:
			slog.Error("Failed verifying email", "email", req.Email, "error", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: "Failed to verify email."})
		}
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Email verification successful."})
}

// UpdatePasswordReset handles PUT /update-password-reset.
func (h Handle) UpdatePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req UpdatePasswordResetRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Email == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Email is required."})
		return
	}

	claims, err := h.service.CompletePasswordReset(r.Context(), req.Email)
	if err != nil {
		slog.Error("Failed completing password reset", "email", req.Email, "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, struct {
		Message string `json:"message"`
		*identity.AuthorizationClaims
	}{
		Message:             "Successful",
		AuthorizationClaims: claims,
	})
}

// ChangeAdminRole handles POST /change-admin-role.
func (h Handle) ChangeAdminRole(w http.ResponseWriter, r *http.Request) {
	var req ChangeAdminRoleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.service.GrantAdminRole(r.Context(), req.Email); err != nil {
		slog.Error("Failed granting admin role", "email", req.Email, "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, struct {
		Status string `json:"status"`
	}{Status: "success"})
}

// ViewUsers handles GET /view-users.
func (h Handle) ViewUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		slog.Error("Failed listing users", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Error fetching users"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, users)
}

// DeleteUser handles DELETE /delete-user.
func (h Handle) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req DeleteUserRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	uid, err := uuid.Parse(req.UID)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid uid"})
		return
	}

	if err := h.service.DeleteUser(r.Context(), uid); err != nil {
		slog.Error("Failed deleting user", "uid", uid, "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "User deleted successfully"})
}

// AdminUpdate handles PUT /admin-update.
func (h Handle) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	var req AdminUpdateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.UID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "No user is provided."})
		return
	}

	uid, err := uuid.Parse(req.UID)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid uid"})
		return
	}

	if err := h.service.UpdatePhoneNumber(r.Context(), uid, req.PhoneNumber); err != nil {
		if errors.Is(err, identity.ErrPhoneNumberTaken) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ErrorResponse{Error: "Phone number already exists for another user."})
			return
		}
		slog.Error("Failed updating user", "uid", uid, "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "User updated successfully"})
}

// CheckEmailVerification handles GET /check-email-verification.
func (h Handle) CheckEmailVerification(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Email is missing."})
		return
	}

	user, err := h.service.CheckEmailVerification(r.Context(), email)
	if err != nil {
		if errors.Is(err, identity.ErrIdentityNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, ErrorResponse{Error: "User not found."})
			return
		}
		slog.Error("Failed checking email verification", "email", email, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to check email verification."})
		return
	}

	message := "Email is not verified."
	if user.EmailVerified {
		message = "Email is verified."
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, struct {
		Message    string             `json:"message"`
		UserRecord *identity.Identity `json:"userRecord"`
	}{
		Message:    message,
		UserRecord: user,
	})
}

// ContactUs handles POST /send-contactus-email.
func (h Handle) ContactUs(w http.ResponseWriter, r *http.Request) {
	var req ContactUsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
		return
	}

	msg := ContactMessage{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Subject:   req.Subject,
		Message:   req.Message,
	}

	if err := h.service.SendContactEmail(r.Context(), msg); err != nil {
		slog.Error("Failed sending contact email", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to send email"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Email sent successfully!"})
}

// Routes mounts the public admin endpoints.
func Routes(r chi.Router, handle Handle) {
	r.Post("/create-user", handle.CreateUser)
	r.Post("/admin-login", handle.AdminLogin)
	r.Post("/reset-password", handle.ResetPassword)
	r.Post("/email-verification", handle.EmailVerification)
	r.Post("/verify-email", handle.VerifyEmail)
	r.Put("/update-password-reset", handle.UpdatePasswordReset)
	r.Post("/change-admin-role", handle.ChangeAdminRole)
	r.Get("/check-email-verification", handle.CheckEmailVerification)
	r.Post("/send-contactus-email", handle.ContactUs)
}

// ProtectedRoutes mounts the endpoints that require an admin session token.
func ProtectedRoutes(r chi.Router, handle Handle) {
	r.Get("/view-users", handle.ViewUsers)
	r.Delete("/delete-user", handle.DeleteUser)
	r.Put("/admin-update", handle.AdminUpdate)
}
