package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/quizprogress-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// AttachTraceContext stamps each request with a request id and a trace id and
// echoes both back as response headers. Mount it after otelgin so the active
// span's trace id wins over a client-supplied one.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span := trace.SpanFromContext(ctx)

		tr := ctxutil.Trace{
			RequestID: firstNonEmpty(c.GetHeader(headerRequestID), uuid.NewString()),
		}
		if sc := span.SpanContext(); sc.HasTraceID() {
			tr.TraceID = sc.TraceID().String()
		} else {
			tr.TraceID = firstNonEmpty(c.GetHeader(headerTraceID), uuid.NewString())
		}
		span.SetAttributes(attribute.String("http.request_id", tr.RequestID))

		c.Request = c.Request.WithContext(ctxutil.WithTrace(ctx, tr))
		c.Header(headerTraceID, tr.TraceID)
		c.Header(headerRequestID, tr.RequestID)
		c.Next()
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
