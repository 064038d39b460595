package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wanderquest-labs/backend/pkg/errorx"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var req Request
		var err error
		switch method {
		case http.MethodGet:
			err = gctx.ShouldBindQuery(&req)
		default:
			err = gctx.ShouldBindJSON(&req)
		}

		if err != nil {
			xcontext.Logger(router.ctx).Debugf("Cannot bind the request: %v", err)
			gctx.JSON(http.StatusOK, newErrorResponse(
				errorx.New(errorx.BadRequest, "Cannot bind the request")))
			return
		}

		ctx := router.ctx
		for _, middleware := range router.befores {
			ctx, err = middleware(ctx, gctx.Request)
			if err != nil {
				gctx.JSON(http.StatusOK, newErrorResponse(err))
				return
			}
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			gctx.JSON(http.StatusOK, newErrorResponse(err))
			return
		}

		gctx.JSON(http.StatusOK, newResponse(resp))
	}
}
