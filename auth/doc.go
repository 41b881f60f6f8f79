// Package auth provides access-token authentication for route endpoints:
// an HS256 token manager, a typed X-Access-Token header parameter, and
// conditions and decorations that gate endpoints on the verified principal.
package auth
