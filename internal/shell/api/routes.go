package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/artpar/relay/internal/core/orders"
	"github.com/artpar/relay/internal/core/pipeline"
)

// OrderRoutes maps the order requests onto the HTTP surface.
func OrderRoutes() []Route {
	return []Route{
		{
			Method:  http.MethodPost,
			Path:    "/v1/orders",
			Request: orders.NameCreateOrder,
			Summary: "Place a new order",
		},
		{
			Method:  http.MethodPost,
			Path:    "/v1/orders/{id}/confirm",
			Request: orders.NameConfirmOrder,
			Summary: "Confirm a pending order",
			Bind: bindOrderID(func(id string) pipeline.Request {
				return &orders.ConfirmOrder{OrderID: id}
			}),
		},
		{
			Method:  http.MethodPost,
			Path:    "/v1/orders/{id}/cancel",
			Request: orders.NameCancelOrder,
			Summary: "Cancel an order",
			Bind: bindOrderID(func(id string) pipeline.Request {
				return &orders.CancelOrder{OrderID: id}
			}),
		},
		{
			Method:  http.MethodGet,
			Path:    "/v1/orders/{id}",
			Request: orders.NameGetOrder,
			Summary: "Fetch one order",
			Bind: bindOrderID(func(id string) pipeline.Request {
				return &orders.GetOrder{OrderID: id}
			}),
		},
		{
			Method:  http.MethodGet,
			Path:    "/v1/orders",
			Request: orders.NameListOrders,
			Summary: "List a customer's orders, newest first",
			Bind:    bindListOrders,
		},
	}
}

func bindOrderID(build func(id string) pipeline.Request) BindFunc {
	return func(r *http.Request) (pipeline.Request, error) {
		return build(chi.URLParam(r, "id")), nil
	}
}

func bindListOrders(r *http.Request) (pipeline.Request, error) {
	q := r.URL.Query()
	req := &orders.ListOrders{CustomerID: q.Get("customer_id")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		req.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		req.Offset = n
	}
	return req, nil
}
