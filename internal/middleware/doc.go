// Package middleware provides HTTP middleware for the control surface:
// request logging and Prometheus request metrics.
package middleware
