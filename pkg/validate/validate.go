// Package validate checks request bodies and referral codes.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ShiraazMoollatjie/goluhn"
	"github.com/go-playground/validator/v10"
)

// ReferralCodeLength is the number of digits in a referral code, check digit included.
const ReferralCodeLength = 8

var (
	once     sync.Once
	instance *validator.Validate
)

var customTags = map[string]validator.Func{
	"referral": func(fl validator.FieldLevel) bool {
		return IsReferralCode(fl.Field().String())
	},
}

func newValidator(tags map[string]validator.Func) (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %q validation: %w", tag, err)
		}
	}
	return v, nil
}

// get panics if a custom tag fails to register; every `referral` field would
// otherwise be rejected with an undefined-tag panic at request time.
func get() *validator.Validate {
	once.Do(func() {
		v, err := newValidator(customTags)
		if err != nil {
			panic(err)
		}
		instance = v
	})
	return instance
}

// Struct validates v by its `validate` tags and returns a message naming
// the first offending field.
func Struct(v any) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return errors.New(strings.ToLower(fe.Field()[:1]) + fe.Field()[1:] + " failed on " + fe.Tag())
	}
	return err
}

func IsReferralCode(s string) bool {
	if len(s) != ReferralCodeLength {
		return false
	}
	return goluhn.Validate(s) == nil
}

func NewReferralCode() string {
	return goluhn.Generate(ReferralCodeLength)
}
