package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/washandgo/engagement-api/internal/auth"
)

type AuthHandler struct {
	validator *auth.JWTValidator
	devLogin  bool
	logger    *zap.Logger
}

// NewAuthHandler wires the token endpoints. devLogin enables the local
// token mint and must stay off outside development environments.
func NewAuthHandler(validator *auth.JWTValidator, devLogin bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		validator: validator,
		devLogin:  devLogin,
		logger:    logger,
	}
}

type loginRequest struct {
	DisplayName string   `json:"displayName" validate:"required,max=200"`
	Email       string   `json:"email,omitempty" validate:"omitempty,email"`
	Roles       []string `json:"roles,omitempty"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// @Summary Mint a development token
// @Description Only available when dev login is enabled in configuration.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Identity to encode"
// @Success 200 {object} loginResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.devLogin || h.validator == nil {
		respondWithError(w, http.StatusNotFound, "Not found")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{auth.RoleOperator}
	}

	token, err := h.validator.MintToken(req.DisplayName, req.Email, roles)
	if err != nil {
		h.logger.Error("failed to mint token", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to mint token")
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{Token: token})
}

// @Summary Current authenticated identity
// @Tags Auth
// @Produce json
// @Success 200 {object} auth.UserContext
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	respondJSON(w, http.StatusOK, userCtx)
}
