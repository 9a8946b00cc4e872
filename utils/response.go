package utils

import (
	"reflect"

	"github.com/gin-gonic/gin"
)

// JSONSuccess writes {"success": true, "data": ...}. Slices also carry a
// "count" so API clients need not measure them.
func JSONSuccess(c *gin.Context, code int, data interface{}) {
	body := gin.H{"success": true, "data": data}
	if v := reflect.ValueOf(data); v.Kind() == reflect.Slice {
		body["count"] = v.Len()
	}
	c.JSON(code, body)
}

// JSONError aborts the chain with {"success": false, "error": message}.
func JSONError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"success": false, "error": message})
}
