package web

import (
	"net/http"
)

// Group wraps the App for wrapping multiple handlers with middlewares.
type Group struct {
	app         *App
	prefixPath  string
	middlewares []Middleware
}

// NewGroup initializes a group of http handlers, with a bunch of middlewares.
func NewGroup(app *App, prefixPath string, mw ...Middleware) *Group {
	return &Group{
		app,
		prefixPath,
		mw,
	}
}

// NewSubgroup initializes a nested group under the receiver's prefix path,
// inheriting its middlewares.
func (g *Group) NewSubgroup(prefixPath string, mw ...Middleware) *Group {
	middlewares := append(g.middlewares, mw...)

	return &Group{
		g.app,
		g.prefixPath + prefixPath,
		middlewares,
	}
}

// Handle uses our app.Handle mechanism for mounting Handlers for a given HTTP verb and path pair.
// it wraps a group of handlers with the given middlewares.
func (g *Group) Handle(verb string, path string, handler Handler, mw ...Middleware) {
	middlewares := append(g.middlewares, mw...)
	g.app.Handle(verb, g.prefixPath+path, handler, middlewares...)
}

// Post executes a http POST request, within a group, with the given handlers.
func (g *Group) Post(path string, handler Handler, mw ...Middleware) {
	g.Handle(http.MethodPost, path, handler, mw...)
}

// Get executes a http GET request, within a group, with the given handlers.
func (g *Group) Get(path string, handler Handler, mw ...Middleware) {
	g.Handle(http.MethodGet, path, handler, mw...)
}

// Put executes a http PUT request, within a group, with the given handlers.
func (g *Group) Put(path string, handler Handler, mw ...Middleware) {
	g.Handle(http.MethodPut, path, handler, mw...)
}

// Delete executes a http DELETE request, within a group, with the given handlers.
func (g *Group) Delete(path string, handler Handler, mw ...Middleware) {
	g.Handle(http.MethodDelete, path, handler, mw...)
}
