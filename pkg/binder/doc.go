// Package binder populates request structs from HTTP requests.
//
// JSON decodes a strictly-typed body, Path copies router parameters into
// fields tagged `path:"name"`, and Validate runs go-playground/validator
// rules declared with `validate:"..."` tags. Field names in validation
// errors follow the json tag.
//
//	handler.WithBinders[handler.Context, req](binder.JSON(), binder.Validate())
package binder
