package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	RequestIDHeader = "X-Request-ID"
	HospitalHeader  = "X-Hospital"

	ctxRequestID = "request_id"
	ctxHospital  = "hospital"
	ctxRole      = "role"
)

// RequestLogger logs every request and tags it with a request id
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ctxRequestID, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		logger.Info().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("ip", c.ClientIP()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request processed")
	}
}

// Recovery turns handler panics into 500 responses
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error().
					Interface("error", err).
					Str("path", c.Request.URL.Path).
					Msg("recovered from panic")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

// TenantClaims are the claims read from a bearer token
type TenantClaims struct {
	Hospital string `json:"hospital"`
	Role     string `json:"role,omitempty"`
	jwt.StandardClaims
}

// Tenant resolves the requesting hospital. With a secret, a valid HS256
// bearer token carrying a hospital claim is required. Without one, the
// X-Hospital header is trusted.
func Tenant(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Set(ctxHospital, strings.TrimSpace(c.GetHeader(HospitalHeader)))
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must use the Bearer scheme"})
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		claims := &TenantClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		if claims.Hospital == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has no hospital"})
			return
		}

		c.Set(ctxHospital, claims.Hospital)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// HospitalFrom returns the tenant resolved by Tenant
func HospitalFrom(c *gin.Context) string {
	return c.GetString(ctxHospital)
}
