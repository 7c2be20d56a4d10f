package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/soy-fixed-price/internal/pricing"
)

const maxBodyBytes = 1 << 20

// fixedPriceRequest is the body of POST /api/preco_fixo. Fields stay raw so
// an absent field, an explicit null and a wrong type each get their own detail.
type fixedPriceRequest struct {
	Base           json.RawMessage `json:"base"`
	ContractMonths json.RawMessage `json:"meses_contratos"`
}

// ValidationDetail is one entry of a 422 response body
type ValidationDetail struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// ValidationErrorResponse is the body returned with 422 Unprocessable Entity
type ValidationErrorResponse struct {
	Detail []ValidationDetail `json:"detail"`
}

// decodeFixedPriceRequest parses and validates the request body. Every
// problem found is reported; basis bounds are only checked once the body parsed.
func decodeFixedPriceRequest(w http.ResponseWriter, r *http.Request) (decimal.Decimal, []string, []ValidationDetail) {
	var req fixedPriceRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return decimal.Zero, nil, []ValidationDetail{decodeErrorDetail(err)}
	}
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return decimal.Zero, nil, []ValidationDetail{decodeErrorDetail(err)}
		}
		return decimal.Zero, nil, []ValidationDetail{{
			Loc:  []any{"body"},
			Msg:  "JSON decode error",
			Type: "json_invalid",
		}}
	}

	basis, details := decodeBasis(req.Base)
	months, monthDetails := decodeContractMonths(req.ContractMonths)
	details = append(details, monthDetails...)
	if len(details) > 0 {
		return decimal.Zero, nil, details
	}

	if err := pricing.ValidateBasis(basis); err != nil {
		var verr *pricing.ValidationError
		if errors.As(err, &verr) {
			return decimal.Zero, nil, []ValidationDetail{{
				Loc:  []any{"body", verr.Field},
				Msg:  verr.Msg,
				Type: verr.Type,
			}}
		}
		return decimal.Zero, nil, []ValidationDetail{{Loc: []any{"body", "base"}, Msg: err.Error(), Type: "value_error"}}
	}

	return basis, months, nil
}

func decodeBasis(raw json.RawMessage) (decimal.Decimal, []ValidationDetail) {
	switch {
	case len(raw) == 0:
		return decimal.Zero, []ValidationDetail{missingField("base")}
	case isNull(raw):
		return decimal.Zero, []ValidationDetail{typeDetail("decimal", "base")}
	}

	var basis decimal.Decimal
	if err := basis.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, []ValidationDetail{{
			Loc:  []any{"body", "base"},
			Msg:  err.Error(),
			Type: "value_error",
		}}
	}
	return basis, nil
}

func decodeContractMonths(raw json.RawMessage) ([]string, []ValidationDetail) {
	if len(raw) == 0 {
		return nil, []ValidationDetail{missingField("meses_contratos")}
	}

	var items []json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &items) != nil {
		return nil, []ValidationDetail{typeDetail("list", "meses_contratos")}
	}

	months := make([]string, 0, len(items))
	var details []ValidationDetail
	for i, item := range items {
		var month string
		if isNull(item) || json.Unmarshal(item, &month) != nil {
			details = append(details, typeDetail("string", "meses_contratos", i))
			continue
		}
		months = append(months, month)
	}
	return months, details
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

func missingField(name string) ValidationDetail {
	return ValidationDetail{
		Loc:  []any{"body", name},
		Msg:  "Field required",
		Type: "missing",
	}
}

func typeDetail(kind string, loc ...any) ValidationDetail {
	return ValidationDetail{
		Loc:  append([]any{"body"}, loc...),
		Msg:  "Input should be a valid " + kind,
		Type: kind + "_type",
	}
}

func decodeErrorDetail(err error) ValidationDetail {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &syntaxErr):
		return ValidationDetail{
			Loc:  []any{"body", syntaxErr.Offset},
			Msg:  "JSON decode error",
			Type: "json_invalid",
		}
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return ValidationDetail{
			Loc:  []any{"body"},
			Msg:  "JSON decode error",
			Type: "json_invalid",
		}
	case errors.As(err, &typeErr):
		loc := []any{"body"}
		if typeErr.Field != "" {
			for _, part := range strings.Split(typeErr.Field, ".") {
				loc = append(loc, part)
			}
		}
		return ValidationDetail{
			Loc:  loc,
			Msg:  "Input should be a valid " + typeErr.Type.String(),
			Type: typeErr.Type.Kind().String() + "_type",
		}
	case errors.As(err, &maxBytesErr):
		return ValidationDetail{
			Loc:  []any{"body"},
			Msg:  "Request body too large",
			Type: "too_long",
		}
	default:
		return ValidationDetail{
			Loc:  []any{"body"},
			Msg:  err.Error(),
			Type: "value_error",
		}
	}
}
