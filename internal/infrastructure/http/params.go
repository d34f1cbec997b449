package httpserver

import (
	"net/http"

	"github.com/oapi-codegen/runtime"
)

type getPriceParams struct {
	Q              string
	IncludeDetails *bool
	Force          *bool
}

type historyParams struct {
	Q     string
	Limit *int
}

func bindGetPriceParams(r *http.Request) (getPriceParams, error) {
	q := r.URL.Query()
	var p getPriceParams
	if err := runtime.BindQueryParameter("form", true, true, "q", q, &p.Q); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "include_details", q, &p.IncludeDetails); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "force", q, &p.Force); err != nil {
		return p, err
	}
	return p, nil
}

func bindHistoryParams(r *http.Request) (historyParams, error) {
	q := r.URL.Query()
	var p historyParams
	if err := runtime.BindQueryParameter("form", true, true, "q", q, &p.Q); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &p.Limit); err != nil {
		return p, err
	}
	return p, nil
}
