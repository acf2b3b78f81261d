// Package httpclient provides a thin convenience client for JSON REST APIs.
//
// The client owns a host, a set of persistent headers and cookies, a timeout
// and a default retry policy. Every operation is a single synchronous
// exchange: the path is validated, headers and cookies are merged into a
// per-call set, the request is issued through a retry-configured transport
// scoped to that call, and the response is normalized into a uniform
// status/fields shape regardless of how well-formed the server payload is.
//
//	log := logger.New("debug", false)
//	client, err := httpclient.New("https://api.example.com", log)
//	if err != nil {
//	    return err
//	}
//	client.SetTokenAuth(token)
//
//	resp, err := client.Get(ctx, "/users/42")
//	if err != nil {
//	    return err
//	}
//	if resp.StatusCode != 200 {
//	    return fmt.Errorf("lookup failed: %s", resp.ErrorMessage)
//	}
//
// Rate limiting (HTTP 429) is surfaced as a *TooManyRequestsError rather than
// a normal response, so callers can distinguish "apply my own backoff" from
// "got an answer". All other non-2xx responses come back normalized with a
// populated error field.
//
// The client's mutators are not synchronized; configure headers and cookies
// before sharing the client across goroutines.
package httpclient
