// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for decoding and validating request bodies
// and path variables.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"kesho/internal/core"
)

// maxBodyBytes caps request bodies; notifications are SMS sized.
const maxBodyBytes = 64 << 10

var errMalformedBody = errors.New("malformed request body")

// validationErrors are passed through decoding unchanged so they map to 422
// rather than 400.
var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidDate,
	core.ErrInvalidGroup,
}

type incomeRequest struct {
	Income core.Money `json:"income"`
}

type budgetsRequest struct {
	Income  core.Money            `json:"income"`
	Budgets map[string]core.Money `json:"budgets"`
}

type categoryRequest struct {
	Name  string `json:"name"`
	Group string `json:"group"`
}

type categoryUpdateRequest struct {
	Name   *string     `json:"name"`
	Budget *core.Money `json:"budget"`
}

type transactionRequest struct {
	Category string     `json:"category"`
	Amount   core.Money `json:"amount"`
	Date     core.Date  `json:"date"`
	Note     string     `json:"note"`
}

type notificationRequest struct {
	Text string `json:"text"`
}

// DecodeJSON reads a single JSON object from the request body into dst.
// Unknown fields are rejected so typos do not silently drop data.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		for _, v := range validationErrors {
			if errors.Is(err, v) {
				return err
			}
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errMalformedBody)
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: body exceeds %d bytes", errMalformedBody, maxErr.Limit)
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON object", errMalformedBody)
	}
	return nil
}

// PathVar returns a decoded route variable. The router matches on the
// escaped path so names such as "Rent/Housing" can travel as Rent%2FHousing.
func PathVar(r *http.Request, name string) (string, error) {
	raw := mux.Vars(r)[name]
	v, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("%w: bad path segment %q", errMalformedBody, raw)
	}
	return sanitizeInput(v), nil
}
