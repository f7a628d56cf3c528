package handlers

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/toeic-session-service/internal/config"
)

const userIDKey = "user_id"

// TokenParser turns a bearer token into the id of the learner it was issued to.
type TokenParser interface {
	ParseUserID(token string) (string, error)
}

type casdoorParser struct {
	client *casdoorsdk.Client
}

// NewCasdoorParser verifies tokens against the casdoor application's certificate.
func NewCasdoorParser(cfg config.CasdoorConfig) TokenParser {
	client := casdoorsdk.NewClient(cfg.Endpoint, cfg.ClientID, cfg.ClientSecret, cfg.Certificate, cfg.Organization, cfg.Application)
	return &casdoorParser{client: client}
}

func (p *casdoorParser) ParseUserID(token string) (string, error) {
	claims, err := p.client.ParseJwtToken(token)
	if err != nil {
		return "", err
	}
	if claims.User.Id != "" {
		return claims.User.Id, nil
	}
	// Older casdoor deployments leave id empty; owner/name is unique.
	return claims.User.Owner + "/" + claims.User.Name, nil
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// learner id under "user_id".
func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing bearer token",
				Code:    "unauthorized",
			})
			return
		}

		userID, err := parser.ParseUserID(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid token",
				Details: err.Error(),
				Code:    "unauthorized",
			})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}
