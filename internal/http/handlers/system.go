package handlers

import (
	"net/http"

	intconfig "repairshop/internal/config"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "repair shop api running"})
}

func DBCheck(c *gin.Context) {
	if err := intconfig.PingDB(c.Request.Context()); err != nil {
		respondError(c, http.StatusInternalServerError, "store_unavailable", "database unreachable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection OK"})
}
