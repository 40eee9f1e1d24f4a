// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package spacetrack

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ManuGH/eosvc/internal/config"
)

// Limit bounds for a history lookup.
const (
	DefaultLimit = 999
	MinLimit     = 1
	MaxLimit     = 9999
)

// Query identifies one history lookup.
type Query struct {
	NoradID int
	Limit   int `validate:"gte=1,lte=9999"`
}

// Validate checks the query bounds. Failures wrap ErrInvalidQuery.
func (q Query) Validate() error {
	err := config.Validator().Struct(q)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case "Limit":
			msgs = append(msgs, fmt.Sprintf("limit must be between %d and %d", MinLimit, MaxLimit))
		default:
			msgs = append(msgs, fe.Error())
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidQuery, strings.Join(msgs, "; "))
}
