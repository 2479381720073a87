package handlers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
)

var errInvalidDays = errors.New("invalid days parameter")

// parseDays reads the "days" query parameter: absent defaults to a 1-day
// window, the literal "all" selects all time (nil), anything else must be
// an integer in [1, 365].
func parseDays(ctx *fasthttp.RequestCtx) (*int, error) {
	raw := string(ctx.QueryArgs().Peek("days"))
	switch raw {
	case "":
		d := 1
		return &d, nil
	case "all":
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 365 {
		return nil, errInvalidDays
	}
	return &n, nil
}

// RequestLogger returns fasthttp middleware that logs method, path, status, duration.
func RequestLogger(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		log.Printf("%s %s -> %d (%s) ip=%s", ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start), ctx.RemoteAddr())
	}
}
