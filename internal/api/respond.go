package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cagecms/cage/internal/models"
	"github.com/cagecms/cage/internal/service"
	"github.com/gin-gonic/gin"
)

// contextUserKey is the gin context key the session middleware stores
// the authenticated user under.
const contextUserKey = "cage.user"

// respond writes the success envelope: $errors is null and the payload
// keys are merged in beside it.
func respond(c *gin.Context, payload gin.H) {
	body := gin.H{"$errors": nil}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// respondErr maps an error to the envelope. Field-level rejections keep
// status 200 with $errors populated; anything else is a server fault.
func respondErr(c *gin.Context, err error) {
	var fieldErr *service.FieldError
	if errors.As(err, &fieldErr) {
		c.JSON(http.StatusOK, gin.H{
			"$errors": gin.H{fieldErr.Field: fieldErr.Message},
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"$errors": gin.H{"internal": "internal server error"},
	})
}

// currentUser returns the authenticated user for this request, or nil
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// eventMeta captures the audit context of the current request: acting
// user, client address, route, and the request line with headers. The
// body is deliberately left out.
func eventMeta(c *gin.Context) service.EventMeta {
	meta := service.EventMeta{
		IPAddress: c.ClientIP(),
		Endpoint:  c.FullPath(),
		Request:   rawRequestLine(c),
	}
	if user := currentUser(c); user != nil {
		meta.UserID = &user.ID
	}
	return meta
}

// rawRequestLine formats the request line and headers the way they
// arrived on the wire.
func rawRequestLine(c *gin.Context) string {
	r := c.Request
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\r\n", r.Method, r.URL.RequestURI(), r.Proto)
	for name, values := range r.Header {
		for _, value := range values {
			fmt.Fprintf(&b, "%s: %s\r\n", name, value)
		}
	}
	return b.String()
}
