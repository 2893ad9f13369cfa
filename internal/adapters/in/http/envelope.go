package http

import (
	"errors"
	"net/http"
	"time"

	"parking/internal/core/application/txcoord"
	"parking/internal/core/application/usecases/commands"
	"parking/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success       bool       `json:"success"`
	Data          any        `json:"data,omitempty"`
	Error         *ErrorBody `json:"error,omitempty"`
	TransactionID string     `json:"transactionId,omitempty"`
	DurationMs    float64    `json:"durationMs"`
}

type ErrorBody struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Kind    txcoord.Kind `json:"kind"`
}

var notFoundCodes = map[string]struct{}{
	commands.ErrVehicleNotFound.Code: {},
	commands.ErrNoActiveSession.Code: {},
	commands.ErrSpotNotFound.Code:    {},
}

// respond renders a unit-of-work result. view converts the domain payload
// into its wire form and is only called on success.
func respond[T any](c echo.Context, res txcoord.Result[T], successStatus int, view func(T) any) error {
	env := Envelope{
		Success:       res.Success,
		TransactionID: res.TransactionID,
		DurationMs:    milliseconds(res.Duration),
	}
	if res.Success {
		env.Data = view(res.Data)
		return c.JSON(successStatus, env)
	}

	env.Error = errorBody(res.Err, res.Kind)
	return c.JSON(statusFor(res.Err, res.Kind), env)
}

// fail renders an error raised before a unit of work could run, such as a
// malformed body or an unparsable id.
func fail(c echo.Context, err error, kind txcoord.Kind) error {
	return c.JSON(statusFor(err, kind), Envelope{
		Error: errorBody(err, kind),
	})
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func statusFor(err error, kind txcoord.Kind) int {
	switch kind {
	case txcoord.KindBusiness:
		var rule *errs.BusinessRuleError
		if errors.As(err, &rule) {
			if _, found := notFoundCodes[rule.Code]; found {
				return http.StatusNotFound
			}
			return http.StatusConflict
		}
		if errors.Is(err, errs.ErrObjectNotFound) {
			return http.StatusNotFound
		}
		return http.StatusConflict
	case txcoord.KindValidation:
		return http.StatusBadRequest
	case txcoord.KindTimeout:
		return http.StatusGatewayTimeout
	case txcoord.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error, kind txcoord.Kind) *ErrorBody {
	body := &ErrorBody{Kind: kind}
	if err != nil {
		body.Message = err.Error()
	}

	var rule *errs.BusinessRuleError
	switch {
	case errors.As(err, &rule):
		body.Code = rule.Code
	case errors.Is(err, errs.ErrObjectNotFound):
		body.Code = "NOT_FOUND"
	case kind == txcoord.KindValidation:
		body.Code = "VALIDATION_FAILED"
	case kind == txcoord.KindTimeout:
		body.Code = "DEADLINE_EXCEEDED"
	case kind == txcoord.KindTransient:
		body.Code = "TRANSIENT_FAILURE"
	default:
		body.Code = "INTERNAL_ERROR"
		body.Message = "internal error"
	}
	return body
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
