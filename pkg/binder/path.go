package binder

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
)

// Path copies router parameters into string and integer fields tagged
// `path:"name"`. extract returns the raw parameter, for example
// chi.URLParam.
func Path(extract func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return fmt.Errorf("%w: target must be a pointer to struct", ErrFailedToParsePath)
		}
		rv = rv.Elem()
		rt := rv.Type()

		bound := false
		for i := range rt.NumField() {
			name := rt.Field(i).Tag.Get("path")
			if name == "" || name == "-" {
				continue
			}
			bound = true

			raw := extract(r, name)
			if raw == "" {
				continue
			}
			field := rv.Field(i)
			switch field.Kind() {
			case reflect.String:
				field.SetString(raw)
			case reflect.Int, reflect.Int32, reflect.Int64:
				n, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					return fmt.Errorf("%w: %s: %v", ErrFailedToParsePath, name, err)
				}
				field.SetInt(n)
			default:
				return fmt.Errorf("%w: %s: unsupported kind %s", ErrFailedToParsePath, name, field.Kind())
			}
		}
		if !bound {
			return ErrBinderNotApplicable
		}
		return nil
	}
}
