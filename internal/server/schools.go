package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	schooldomain "github.com/mginvestments/marketplace/internal/school/domain"
)

type createSchoolRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

func (s *Server) CreateSchool(c *gin.Context) {
	var req createSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.schoolSvc.Create(c.Request.Context(), schooldomain.CreateSchoolRequest{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Location: strings.TrimSpace(req.Location),
		Source:   schooldomain.SourceForm,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSchools(c *gin.Context) {
	var query struct {
		Name       string `form:"name"`
		ActiveOnly bool   `form:"active_only"`
		Limit      int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.schoolSvc.List(c.Request.Context(), schooldomain.ListFilter{
		Name:       strings.TrimSpace(query.Name),
		ActiveOnly: query.ActiveOnly,
		Limit:      query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSchoolByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		AbortWithError(c, schooldomain.ErrInvalidID)
		return
	}

	resp, err := s.schoolSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
