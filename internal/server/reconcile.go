package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) FindDuplicateSchools(c *gin.Context) {
	groups, err := s.reconcileSvc.FindDuplicateSchools(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"groups": groups}})
}

func (s *Server) ResolveDuplicateSchools(c *gin.Context) {
	report, err := s.reconcileSvc.ResolveDuplicateSchools(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (s *Server) FindHiddenSchools(c *gin.Context) {
	schools, err := s.reconcileSvc.FindHiddenSchools(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": schools})
}
