package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	creditdomain "github.com/mginvestments/marketplace/internal/credit/domain"
	paymentdomain "github.com/mginvestments/marketplace/internal/payment/domain"
)

type initiatePaymentRequest struct {
	SchoolID    string `json:"school_id"`
	MSISDN      string `json:"msisdn"`
	PackageCode string `json:"package_code"`
	Credits     int64  `json:"credits"`
	Amount      int64  `json:"amount"`
}

func (s *Server) InitiatePayment(c *gin.Context) {
	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	schoolID, err := parseSnowflake(req.SchoolID)
	if err != nil {
		AbortWithError(c, creditdomain.ErrInvalidSchool)
		return
	}

	resp, err := s.paymentSvc.Initiate(c.Request.Context(), paymentdomain.InitiateRequest{
		SchoolID:    schoolID,
		MSISDN:      strings.TrimSpace(req.MSISDN),
		PackageCode: strings.TrimSpace(req.PackageCode),
		Credits:     req.Credits,
		Amount:      req.Amount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"data": resp})
}

func (s *Server) GetPaymentByReference(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		AbortWithError(c, paymentdomain.ErrRequestNotFound)
		return
	}

	resp, err := s.paymentSvc.GetByReference(c.Request.Context(), reference)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// HandlePaymentWebhook receives aggregator callbacks. The provider
// adapter verifies the signature before anything is trusted.
func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	provider := strings.TrimSpace(c.Param("provider"))
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, paymentdomain.ErrInvalidPayload)
		return
	}

	if err := s.paymentSvc.HandleCallback(c.Request.Context(), provider, payload, c.Request.Header); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ConfirmPendingPayments(c *gin.Context) {
	confirmed, err := s.paymentSvc.ConfirmPending(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"confirmed": confirmed}})
}
