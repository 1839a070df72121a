package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	subscriptiondomain "github.com/mginvestments/marketplace/internal/subscription/domain"
)

type createSubscriptionRequest struct {
	Plan      string `json:"plan"`
	StartAt   string `json:"start_at"`
	ExpiresAt string `json:"expires_at"`
}

func (s *Server) CreateSubscription(c *gin.Context) {
	schoolID, ok := pathID(c, "id")
	if !ok {
		AbortWithError(c, subscriptiondomain.ErrInvalidSchool)
		return
	}

	var req createSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startAt := time.Now().UTC()
	if strings.TrimSpace(req.StartAt) != "" {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartAt))
		if err != nil {
			AbortWithError(c, newValidationError("start_at", "invalid_start_at", "invalid start_at"))
			return
		}
		startAt = parsed
	}

	expiresAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ExpiresAt))
	if err != nil {
		AbortWithError(c, newValidationError("expires_at", "invalid_expires_at", "invalid expires_at"))
		return
	}

	resp, err := s.subscriptionSvc.Create(c.Request.Context(), subscriptiondomain.CreateSubscriptionRequest{
		SchoolID:  schoolID,
		Plan:      strings.TrimSpace(req.Plan),
		StartAt:   startAt,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetActiveSubscription(c *gin.Context) {
	schoolID, ok := pathID(c, "id")
	if !ok {
		AbortWithError(c, subscriptiondomain.ErrInvalidSchool)
		return
	}

	resp, err := s.subscriptionSvc.ActiveForSchool(c.Request.Context(), schoolID, time.Now().UTC())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
