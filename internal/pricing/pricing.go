// Package pricing values raw loot pastes through an external appraisal
// API (Janice-shaped). The rest of the system only sees the Appraisal
// data shape and the error taxonomy; the upstream protocol stays here.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies an appraisal failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindEmptyInput
	KindAuth
	KindRateLimit
	KindTimeout
	KindConnection
	KindServer
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindEmptyInput:
		return "empty_input"
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindServer:
		return "server"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is a typed appraisal failure.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("appraisal %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("appraisal %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrKind extracts the failure kind, or KindUnknown for foreign errors.
func ErrKind(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// Item is one appraised line entry.
type Item struct {
	TypeID     int64
	Name       string
	Quantity   int64
	UnitPrice  decimal.Decimal
	TotalValue decimal.Decimal
}

// Appraisal is the result of valuing a loot paste.
type Appraisal struct {
	Items       []Item
	TotalValue  decimal.Decimal
	Market      string
	PriceType   string
	AppraisedAt time.Time
}

// Appraiser values raw loot text. Implementations must be idempotent
// and cacheable by input text.
type Appraiser interface {
	Appraise(ctx context.Context, lootText string) (*Appraisal, error)
}
