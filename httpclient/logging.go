package httpclient

import (
	"net/http"
	"time"
)

const (
	msgClientRequest  = "REST client request"
	msgClientResponse = "REST client response"
)

func (c *Client) logRequest(method, url, requestID string, headers http.Header, cookieCount int, body []byte) {
	event := c.log.Debug().
		Str("direction", "outbound").
		Str("method", method).
		Str("url", url).
		Str("request_id", requestID).
		Dur("timeout", c.timeout)
	if len(headers) > 0 {
		event = event.Int("header_count", len(headers))
	}
	if cookieCount > 0 {
		event = event.Int("cookie_count", cookieCount)
	}
	if len(body) > 0 {
		event = event.Int("body_size", len(body))
	}
	event.Msg(msgClientRequest)

	if !c.logPayloads {
		return
	}
	preview, truncated := c.payloadPreview(body)
	c.log.Debug().
		Str("direction", "outbound").
		Str("method", method).
		Str("url", url).
		Str("request_id", requestID).
		Interface("headers", headers).
		Int("body_size", len(body)).
		Str("body_truncated", truncated).
		Bytes("body_preview", preview).
		Msg(msgClientRequest)
}

func (c *Client) logResponse(method, url, requestID string, resp *Response, duration time.Duration) {
	event := c.log.Debug().
		Str("direction", "inbound").
		Str("method", method).
		Str("url", url).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", duration)
	if len(resp.Raw) > 0 {
		event = event.Int("body_size", len(resp.Raw))
	}
	event.Msg(msgClientResponse)

	if !c.logPayloads {
		return
	}
	preview, truncated := c.payloadPreview(resp.Raw)
	c.log.Debug().
		Str("direction", "inbound").
		Str("method", method).
		Str("url", url).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Str("body_truncated", truncated).
		Bytes("body_preview", preview).
		Msg(msgClientResponse)
}

func (c *Client) payloadPreview(body []byte) (preview []byte, truncated string) {
	preview, truncated = body, "false"
	if c.maxPayloadLogBytes > 0 && len(body) > c.maxPayloadLogBytes {
		preview, truncated = body[:c.maxPayloadLogBytes], "true"
	}
	return preview, truncated
}
