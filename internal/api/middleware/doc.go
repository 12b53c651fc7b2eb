// Package middleware holds the gin middleware shared by all routes: CORS,
// per-IP and global rate limiting, and a request body cap.
package middleware
