// Package api provides the HTTP REST API server for iskidms.
//
// It exposes the authentication endpoints, the agent device surface, and the
// admin management surface over chi, with session-cookie authentication and
// role-gated route groups.
//
// The server follows the same lifecycle pattern as the other components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
