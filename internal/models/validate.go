package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrUnknownField = errors.New("unknown sensor field")
	ErrEmptySchema  = errors.New("sensor schema has no fields")
	ErrInvalidBody  = errors.New("request body must be a JSON object")
)

// FieldError ошибка одного поля
type FieldError struct {
	Field  Field
	Reason string
}

// ValidationError показание не прошло проверку
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fmt.Sprintf("%s %s", fe.Field, fe.Reason)
	}
	return "invalid reading: " + strings.Join(parts, "; ")
}

// Decode разбирает тело запроса и проверяет все поля схемы.
// Каждое поле обязательно: число или строка с числом, NaN и Inf отвергаются.
func (s Schema) Decode(body []byte) (map[Field]float64, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, ErrInvalidBody
	}
	return s.Validate(raw)
}

// Validate проверяет уже разобранный объект
func (s Schema) Validate(raw map[string]json.RawMessage) (map[Field]float64, error) {
	values := make(map[Field]float64, len(s))
	var verr ValidationError

	for _, f := range s {
		v, ok := raw[string(f)]
		if !ok || string(v) == "null" {
			verr.Errors = append(verr.Errors, FieldError{Field: f, Reason: "is required"})
			continue
		}

		num, err := parseNumber(v)
		if err != nil {
			verr.Errors = append(verr.Errors, FieldError{Field: f, Reason: "must be a number"})
			continue
		}
		values[f] = num
	}

	if len(verr.Errors) > 0 {
		return nil, &verr
	}

	return values, nil
}

func parseNumber(v json.RawMessage) (float64, error) {
	var num float64
	if err := json.Unmarshal(v, &num); err == nil {
		return num, nil
	}

	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return 0, err
	}

	num, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}

	return num, nil
}
