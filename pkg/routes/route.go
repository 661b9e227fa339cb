// Package routes declares HTTP routes as data and registers them on a ServeMux.
package routes

import "net/http"

// Route binds a method and path pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group shares a path prefix across its routes and nested groups.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}
