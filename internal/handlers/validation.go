package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"paygate/internal/money"
	"paygate/internal/store"
)

var errInvalidAmount = errors.New("invalid amount")

func parseAmountMinor(raw, currency string) (int64, error) {
	amount, err := money.ParseMinor(raw, currency)
	if err != nil || amount <= 0 {
		return 0, errInvalidAmount
	}
	return amount, nil
}

func parseLimitOffset(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func parseListFilter(r *http.Request) store.ListFilter {
	limit, offset := parseLimitOffset(r)
	query := r.URL.Query()
	return store.ListFilter{
		Status: query.Get("status"),
		Method: query.Get("method"),
		Search: query.Get("search"),
		SortBy: query.Get("sort"),
		Limit:  limit,
		Offset: offset,
	}
}
