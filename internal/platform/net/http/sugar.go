package http

import (
	"net/http"

	"reportrelay/internal/platform/net/http/bind"
)

// JSONHandler adapts a pure JSON handler to a platform Handler
// a Response returned as the result passes through untouched
func JSONHandler[T any](fn func(*http.Request, T) (any, error), opts ...bind.JSONOptions) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r, opts...)
		if err != nil {
			return Error(err)
		}
		return result(fn(r, in))
	})
}

// NoBodyHandler calls fn without parsing a request body and wraps the result
func NoBodyHandler(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		return result(fn(r))
	})
}

func result(out any, err error) Response {
	if err != nil {
		return Error(err)
	}
	if resp, ok := out.(Response); ok {
		return resp
	}
	return OK(out)
}

// GetJSON mounts a pure JSON handler for GET
func GetJSON(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, NoBodyHandler(h))
}

// PostJSON mounts a pure JSON handler for POST; an empty body binds the zero value
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, JSONHandler(h, bind.JSONOptions{MaxBytes: 64 << 10, DisallowUnknown: true, AllowEmptyBody: true}))
}

// PutJSON mounts a pure JSON handler for PUT; the body is required
func PutJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Put(path, JSONHandler(h))
}
