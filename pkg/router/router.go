package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. It may derive a new context, for
// example to attach the authenticated user id.
type MiddlewareFunc func(ctx context.Context, r *http.Request) (context.Context, error)

// Router dispatches HTTP requests to typed handlers. Every handler runs on
// a context derived from the base one, which already carries configs,
// logger, and the database handle.
type Router struct {
	Inner gin.IRouter

	ctx     context.Context
	befores []MiddlewareFunc
}

func New(ctx context.Context) *Router {
	gin.SetMode(gin.ReleaseMode)
	return &Router{Inner: gin.New(), ctx: ctx}
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

// Branch returns a router on the same engine with an independent middleware
// chain, so public and authenticated routes can coexist.
func (r *Router) Branch() *Router {
	befores := make([]MiddlewareFunc, len(r.befores))
	copy(befores, r.befores)

	return &Router{Inner: r.Inner, ctx: r.ctx, befores: befores}
}

func (r *Router) Handler() http.Handler {
	return r.Inner.(*gin.Engine)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}
