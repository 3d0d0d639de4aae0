// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

package middleware

import (
	"net/http"
	"time"

	"gopkg.in/webhelp.v1/whmon"
	"gopkg.in/webhelp.v1/whroute"

	"storj.io/common/http/requestid"
	"storj.io/common/useragent"
	"storj.io/eventkit"
)

var ek = eventkit.Package()

// EventHandler collects event data to send to eventkit.
func EventHandler(h http.Handler) http.Handler {
	return whmon.MonitorResponse(whroute.HandlerFunc(h,
		func(w http.ResponseWriter, r *http.Request) {
			rw := w.(whmon.ResponseWriter)
			start := time.Now()

			agents, err := useragent.ParseEntries([]byte(r.UserAgent()))
			product := "unknown"
			if err == nil && len(agents) > 0 && agents[0].Product != "" {
				product = agents[0].Product
				if len(product) > 32 {
					product = product[:32]
				}
			}

			h.ServeHTTP(w, r)

			if !rw.WroteHeader() {
				rw.WriteHeader(http.StatusOK)
			}

			ek.Event("response",
				eventkit.String("protocol", r.Proto),
				eventkit.String("host", r.Host),
				eventkit.String("method", r.Method),
				eventkit.String("request-uri", r.RequestURI),
				eventkit.String("user-agent", product),
				eventkit.Int64("status", int64(rw.StatusCode())),
				eventkit.Int64("request-size", r.ContentLength),
				eventkit.Int64("response-size", rw.Written()),
				eventkit.Duration("duration", time.Since(start)),
				eventkit.String("remote-ip", getRemoteIP(r)),
				eventkit.String("request-id", requestid.FromContext(r.Context())))
		}))
}
