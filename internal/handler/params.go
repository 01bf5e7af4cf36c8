package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/dive-logbook/internal/divelist"
)

// pathInt binds an integer path parameter.
func pathInt(r *http.Request, name string) (int, error) {
	var v int
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return 0, fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return v, nil
}

// pathUUID binds a UUID path parameter.
func pathUUID(r *http.Request, name string) (openapi_types.UUID, error) {
	var v openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return v, fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return v, nil
}

// queryInt binds an optional integer query parameter; nil when absent.
func queryInt(r *http.Request, name string) (*int, error) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return nil, fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return v, nil
}

// queryString binds an optional string query parameter; "" when absent.
func queryString(r *http.Request, name string) (string, error) {
	var v *string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return "", fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

// rowRef binds the {kind}/{id} path parameters of a row route.
func rowRef(r *http.Request) (divelist.RowRef, error) {
	kind, err := divelist.ParseRowKind(chi.URLParam(r, "kind"))
	if err != nil {
		return divelist.RowRef{}, err
	}
	id, err := pathInt(r, "id")
	if err != nil {
		return divelist.RowRef{}, err
	}
	return divelist.RowRef{Kind: kind, ID: id}, nil
}
