// Package httputils provides HTTP utility functions.
package httputils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/herald/internal/pkg/middleware"
	"github.com/kart-io/herald/pkg/errors"
	"github.com/kart-io/herald/pkg/utils/response"
)

// WriteResponse writes the response to the client.
// It handles both success and error cases, ensuring consistent response format.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	if err != nil {
		var resp *response.Response
		if errno, ok := err.(*errors.Errno); ok {
			resp = response.Err(errno)
		} else {
			resp = response.Err(errors.ErrInternal.WithMessage(err.Error()))
		}
		resp.WithRequestID(middleware.RequestIDFromContext(c))
		defer response.Release(resp)
		c.JSON(resp.HTTPStatus(), resp)
		return
	}

	resp := response.Success(data)
	resp.WithRequestID(middleware.RequestIDFromContext(c))
	defer response.Release(resp)
	c.JSON(resp.HTTPStatus(), resp)
}

// WriteRaw writes data as-is with a 200 status, outside the response
// envelope. The webhook endpoint uses it because the platform expects the
// summary at the top level.
func WriteRaw(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}
