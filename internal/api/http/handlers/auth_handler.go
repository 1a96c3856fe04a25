package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/middleman-engine/internal/api/dto"
	"github.com/spec-kit/middleman-engine/internal/auth"
	"github.com/spec-kit/middleman-engine/internal/config"
	apperrors "github.com/spec-kit/middleman-engine/pkg/util"
)

// AuthHandler issues access tokens to the gateway process.
type AuthHandler struct {
	tokens *auth.TokenManager
	cfg    config.AuthConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(tokens *auth.TokenManager, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{tokens: tokens, cfg: cfg}
}

// IssueToken POST /auth/token.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Gateway) == "" || req.APIKey == "" {
		return apperrors.NewValidationError("gateway and api_key required", nil)
	}
	if h.cfg.GatewayKeyHash == "" {
		return apperrors.NewUnauthorized("gateway authentication not configured")
	}
	if err := auth.CompareAPIKey(h.cfg.GatewayKeyHash, req.APIKey); err != nil {
		return apperrors.NewUnauthorized("invalid api key")
	}

	token, expiresAt, err := h.tokens.GenerateToken(req.Gateway)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.TokenResponse{AccessToken: token, ExpiresAt: expiresAt}})
}
