package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/customer-data-service/internal/config"
)

const (
	principalKey = "auth_principal"

	// APIKeyHeader carries a plaintext API key checked against bcrypt hashes.
	APIKeyHeader = "X-API-Key"
)

// Method names how a caller authenticated.
type Method string

const (
	MethodNone   Method = "none"
	MethodJWT    Method = "jwt"
	MethodAPIKey Method = "api_key"
)

// Principal represents the authenticated caller.
type Principal struct {
	Subject string
	Method  Method
}

// CallAuth guards the operation endpoint. With no credentials configured it
// lets every request through.
type CallAuth struct {
	tokens    *TokenManager
	keyHashes []string
}

// NewCallAuth constructs middleware from auth settings.
func NewCallAuth(cfg config.AuthConfig) *CallAuth {
	m := &CallAuth{keyHashes: cfg.APIKeyHashes}
	if cfg.JWTSecret != "" {
		m.tokens = NewTokenManager(cfg.JWTSecret, cfg.TokenTTLMinutes)
	}
	return m
}

// Enabled reports whether requests must carry credentials.
func (m *CallAuth) Enabled() bool {
	return m.tokens != nil || len(m.keyHashes) > 0
}

// Handle enforces authentication. Failures answer in the operation envelope
// so tool clients see a uniform shape.
func (m *CallAuth) Handle(c *fiber.Ctx) error {
	if !m.Enabled() {
		c.Locals(principalKey, &Principal{Method: MethodNone})
		return c.Next()
	}

	principal, reason := m.authenticate(c)
	if principal == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized: " + reason,
		})
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

func (m *CallAuth) authenticate(c *fiber.Ctx) (*Principal, string) {
	if key := c.Get(APIKeyHeader); key != "" && len(m.keyHashes) > 0 {
		if !MatchAPIKey(m.keyHashes, key) {
			return nil, "invalid api key"
		}
		return &Principal{Subject: "api-key", Method: MethodAPIKey}, ""
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" || m.tokens == nil {
		return nil, "missing credentials"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, "invalid authorization header"
	}
	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, "invalid token"
	}
	return &Principal{Subject: claims.Subject, Method: MethodJWT}, ""
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
