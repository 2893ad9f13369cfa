package txcoord

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"parking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: KindNone},
		{name: "business", err: errs.NewBusinessRuleError("SPOT_NOT_AVAILABLE", "taken"), want: KindBusiness},
		{name: "wrapped business", err: fmt.Errorf("park: %w", errs.NewBusinessRuleError("X", "y")), want: KindBusiness},
		{name: "not found", err: errs.NewObjectNotFoundError("spot", "1"), want: KindBusiness},
		{name: "invalid value", err: errs.NewValueIsInvalidError("plate"), want: KindValidation},
		{name: "required value", err: errs.NewValueIsRequiredError("plate"), want: KindValidation},
		{name: "transient", err: errs.NewTransientErrorWithCause("commit", errors.New("40001")), want: KindTransient},
		{name: "deadline", err: errs.NewDeadlineExceededError(time.Now()), want: KindTimeout},
		{name: "savepoint", err: errs.NewSavepointError("sp", "missing"), want: KindFatal},
		{
			name: "savepoint wins over transient",
			err:  errors.Join(errs.NewTransientError("x"), errs.NewSavepointError("sp", "missing")),
			want: KindFatal,
		},
		{name: "cancelled", err: fmt.Errorf("stop: %w", context.Canceled), want: KindFatal},
		{name: "unknown", err: errors.New("disk on fire"), want: KindFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestKind_Retryable(t *testing.T) {
	assert.True(t, KindTransient.Retryable())
	for _, k := range []Kind{KindNone, KindBusiness, KindValidation, KindTimeout, KindFatal} {
		assert.False(t, k.Retryable(), k.String())
	}
}

func TestOptions_WithDefaults(t *testing.T) {
	got := Options{MaxBackoff: time.Millisecond, BaseBackoff: time.Second}.withDefaults(DefaultOptions())

	assert.Equal(t, PriorityNormal, got.Priority)
	assert.Equal(t, DefaultTimeout, got.Timeout)
	assert.Equal(t, DefaultMaxRetries, got.MaxRetries)
	assert.Equal(t, time.Second, got.MaxBackoff, "max backoff is never below base")
}
