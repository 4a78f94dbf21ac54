// Package handler 实现 docuchat 的 HTTP 处理器。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/docuchat/pkg/utils/errors"
	"github.com/kart-io/docuchat/pkg/utils/response"
)

// writeResponse 按统一响应信封写出结果或错误。
func writeResponse(c *gin.Context, err error, data interface{}) {
	if err != nil {
		r := response.Err(errors.FromError(err))
		c.JSON(r.HTTPStatus(), r)
		return
	}
	c.JSON(http.StatusOK, response.Success(data))
}
