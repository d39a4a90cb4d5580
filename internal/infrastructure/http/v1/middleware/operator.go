package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "github.com/oliverlleo/SistemaCompras-sub001/internal/core/context"
)

const (
	HeaderOperatorName  = "X-Operator"
	HeaderOperatorEmail = "X-Operator-Email"
)

// OperatorContext extracts the acting operator from request headers and adds
// it to the request context. Allocation events record the operator name as
// responsavel when the request body leaves it empty.
func OperatorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.GetHeader(HeaderOperatorName)
		if name == "" {
			c.Next()
			return
		}

		op := &appctx.Operator{
			Name:  name,
			Email: c.GetHeader(HeaderOperatorEmail),
		}

		ctx := appctx.WithOperator(c.Request.Context(), op)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
