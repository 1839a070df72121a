package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	creditdomain "github.com/mginvestments/marketplace/internal/credit/domain"
)

func (s *Server) GetCreditBalance(c *gin.Context) {
	schoolID, ok := pathID(c, "id")
	if !ok {
		AbortWithError(c, creditdomain.ErrInvalidSchool)
		return
	}

	balance, err := s.creditSvc.GetBalance(c.Request.Context(), schoolID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"school_id": schoolID,
		"balance":   balance,
	}})
}

type purchaseCreditsRequest struct {
	Count                 int64   `json:"count"`
	AmountPaid            int64   `json:"amount_paid"`
	Currency              string  `json:"currency"`
	ExternalTransactionID *string `json:"external_transaction_id"`
	ExpiresAt             *string `json:"expires_at"`
}

func (s *Server) PurchaseCredits(c *gin.Context) {
	schoolID, ok := pathID(c, "id")
	if !ok {
		AbortWithError(c, creditdomain.ErrInvalidSchool)
		return
	}

	var req purchaseCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil && strings.TrimSpace(*req.ExpiresAt) != "" {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.ExpiresAt))
		if err != nil {
			AbortWithError(c, newValidationError("expires_at", "invalid_expires_at", "invalid expires_at"))
			return
		}
		expiresAt = &parsed
	}

	resp, err := s.creditSvc.PurchaseCredits(c.Request.Context(), creditdomain.PurchaseCreditsRequest{
		SchoolID:              schoolID,
		Count:                 req.Count,
		AmountPaid:            req.AmountPaid,
		Currency:              strings.TrimSpace(req.Currency),
		ExternalTransactionID: req.ExternalTransactionID,
		ExpiresAt:             expiresAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCreditHistory(c *gin.Context) {
	schoolID, ok := pathID(c, "id")
	if !ok {
		AbortWithError(c, creditdomain.ErrInvalidSchool)
		return
	}

	resp, err := s.creditSvc.GetCreditHistory(c.Request.Context(), schoolID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetContactHistory(c *gin.Context) {
	schoolID, ok := pathID(c, "id")
	if !ok {
		AbortWithError(c, creditdomain.ErrInvalidSchool)
		return
	}

	resp, err := s.creditSvc.GetContactHistory(c.Request.Context(), schoolID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CanContactTeacher(c *gin.Context) {
	schoolID, ok := pathID(c, "id")
	if !ok {
		AbortWithError(c, creditdomain.ErrInvalidSchool)
		return
	}
	teacherID, ok := pathID(c, "teacherId")
	if !ok {
		AbortWithError(c, creditdomain.ErrInvalidTeacher)
		return
	}

	decision, err := s.creditSvc.CanContact(c.Request.Context(), schoolID, teacherID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": decision})
}

func (s *Server) ContactTeacher(c *gin.Context) {
	schoolID, ok := pathID(c, "id")
	if !ok {
		AbortWithError(c, creditdomain.ErrInvalidSchool)
		return
	}
	teacherID, ok := pathID(c, "teacherId")
	if !ok {
		AbortWithError(c, creditdomain.ErrInvalidTeacher)
		return
	}

	resp, err := s.creditSvc.UseCredit(c.Request.Context(), schoolID, teacherID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPackages(c *gin.Context) {
	resp, err := s.creditSvc.ListPackages(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
