package server

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func pathID(c *gin.Context, name string) (snowflake.ID, bool) {
	id, err := parseSnowflake(c.Param(name))
	if err != nil {
		return 0, false
	}
	return id, true
}

func parseSnowflake(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
