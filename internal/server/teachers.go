package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	teacherdomain "github.com/mginvestments/marketplace/internal/teacher/domain"
)

type createTeacherRequest struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Subjects        []string `json:"subjects"`
	ExperienceYears int      `json:"experience_years"`
	Location        string   `json:"location"`
}

func (s *Server) CreateTeacher(c *gin.Context) {
	var req createTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.teacherSvc.Create(c.Request.Context(), teacherdomain.CreateTeacherRequest{
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.TrimSpace(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		Subjects:        req.Subjects,
		ExperienceYears: req.ExperienceYears,
		Location:        strings.TrimSpace(req.Location),
		Source:          "form",
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTeachers(c *gin.Context) {
	var query struct {
		Name       string `form:"name"`
		Location   string `form:"location"`
		ActiveOnly bool   `form:"active_only"`
		Limit      int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.teacherSvc.List(c.Request.Context(), teacherdomain.ListFilter{
		Name:       strings.TrimSpace(query.Name),
		Location:   strings.TrimSpace(query.Location),
		ActiveOnly: query.ActiveOnly,
		Limit:      query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTeacherByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		AbortWithError(c, teacherdomain.ErrInvalidID)
		return
	}

	resp, err := s.teacherSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type importTeachersRequest struct {
	Rows []map[string]any `json:"rows"`
}

// ImportTeachers ingests legacy rows with arbitrary field spellings.
// Malformed rows are skipped and reported, never fatal.
func (s *Server) ImportTeachers(c *gin.Context) {
	var req importTeachersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req.Rows) == 0 {
		AbortWithError(c, newValidationError("rows", "invalid_rows", "rows must not be empty"))
		return
	}

	resp, err := s.teacherSvc.Import(c.Request.Context(), req.Rows)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
