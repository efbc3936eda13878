package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Harshitk-cp/patron/internal/domain"
	"github.com/Harshitk-cp/patron/internal/service"
	"github.com/shopspring/decimal"
)

var errInvalidBody = errors.New("invalid request body")

// customerPayload is a decoded JSON object keyed by field name. Keys are kept
// raw so that missing, null and mistyped values can be told apart.
type customerPayload map[string]json.RawMessage

// decodeCustomerPayload reads exactly one JSON object. An empty body is an
// empty object; anything after the object is an error.
func decodeCustomerPayload(r *http.Request) (customerPayload, error) {
	dec := json.NewDecoder(r.Body)

	var p customerPayload
	err := dec.Decode(&p)
	if errors.Is(err, io.EOF) {
		return customerPayload{}, nil
	}
	if err != nil || p == nil {
		return nil, errInvalidBody
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errInvalidBody
	}
	return p, nil
}

// field returns the raw value for key, whether the key was present, and
// whether its value is JSON null.
func (p customerPayload) field(key string) (json.RawMessage, bool, bool) {
	raw, ok := p[key]
	if !ok {
		return nil, false, false
	}
	return raw, true, bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (p customerPayload) str(key string, verr *service.ValidationError) service.Optional[string] {
	raw, ok, null := p.field(key)
	switch {
	case !ok:
		return service.Optional[string]{}
	case null:
		return service.Null[string]()
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		verr.Add(key, fmt.Sprintf("The %s field must be a string.", key))
		return service.Optional[string]{}
	}
	return service.Some(s)
}

func (p customerPayload) number(key string, verr *service.ValidationError) service.Optional[decimal.Decimal] {
	raw, ok, null := p.field(key)
	switch {
	case !ok:
		return service.Optional[decimal.Decimal]{}
	case null:
		return service.Null[decimal.Decimal]()
	}

	text := string(bytes.TrimSpace(raw))
	var s string
	if json.Unmarshal(raw, &s) == nil {
		text = strings.TrimSpace(s)
	} else if !looksNumeric(text) {
		text = ""
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		verr.Add(key, fmt.Sprintf("The %s field must be a number.", key))
		return service.Optional[decimal.Decimal]{}
	}
	return service.Some(d)
}

func (p customerPayload) date(key string, verr *service.ValidationError) service.Optional[time.Time] {
	raw, ok, null := p.field(key)
	switch {
	case !ok:
		return service.Optional[time.Time]{}
	case null:
		return service.Null[time.Time]()
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := domain.ParseDate(s); err == nil {
			return service.Some(t)
		}
	}
	verr.Add(key, fmt.Sprintf("The %s field must be a valid date.", key))
	return service.Optional[time.Time]{}
}

// looksNumeric rejects JSON literals other than numbers (true, objects, arrays).
func looksNumeric(s string) bool {
	return s != "" && (s[0] == '-' || (s[0] >= '0' && s[0] <= '9'))
}

// createInput builds the create schema. Values of the wrong JSON type are
// recorded in Rejected so the service reports them with the other failures.
func (p customerPayload) createInput() service.CreateCustomerInput {
	verr := service.NewValidationError()

	in := service.CreateCustomerInput{
		Name:     p.str("name", verr).Value,
		Email:    p.str("email", verr).Value,
		Rejected: verr,
	}
	if spend := p.number("annualSpend", verr); spend.Set && !spend.Null {
		in.AnnualSpend = &spend.Value
	}
	if last := p.date("lastPurchaseDate", verr); last.Set && !last.Null {
		in.LastPurchaseDate = &last.Value
	}

	return in
}

func (p customerPayload) updateInput() service.UpdateCustomerInput {
	verr := service.NewValidationError()

	return service.UpdateCustomerInput{
		Name:             p.str("name", verr),
		Email:            p.str("email", verr),
		AnnualSpend:      p.number("annualSpend", verr),
		LastPurchaseDate: p.date("lastPurchaseDate", verr),
		Rejected:         verr,
	}
}
