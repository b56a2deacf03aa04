// Package requestid tags every request with a correlation id.
//
// Middleware reuses a valid client-supplied X-Request-ID. Gateway webhook
// deliveries carry their own event id, which is reused when no request id
// is sent, so every retry of a webhook logs under the same id. Otherwise a
// new UUID is generated. The id is stored in the request context and echoed
// in the response header.
//
// LogExtractor plugs the id into pkg/logger so every record logged with the
// request context carries a request_id attribute.
package requestid
