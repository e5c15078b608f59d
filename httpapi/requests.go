package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const maxRequestBodyBytes = 64 << 10

// InstituteVerificationRequest is the first registration step
type InstituteVerificationRequest struct {
	MatricNumber string `json:"matric_number" validate:"required,max=64"`
	ProviderID   string `json:"provider_id" validate:"required,max=64"`
}

// ExamVerificationRequest completes registration. The institute fields are
// needed unless a provider token from the first step is supplied.
type ExamVerificationRequest struct {
	MatricNumber  string `json:"matric_number" validate:"required_without=ProviderToken,max=64"`
	ProviderID    string `json:"provider_id" validate:"required_without=ProviderToken,max=64"`
	ProviderToken string `json:"provider_token" validate:"max=2048"`
	JambNumber    string `json:"jamb_number" validate:"required,max=64"`
	DateOfBirth   string `json:"date_of_birth" validate:"required,max=32"`
}

// TradeRequest buys or sells tokens of the caller's institution
type TradeRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// PlayRequest stakes tokens on a game
type PlayRequest struct {
	GameType    string          `json:"game_type" validate:"required"`
	StakeAmount decimal.Decimal `json:"stake_amount" validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// decimal.Decimal is a struct; "required" checks for a non-zero value
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			if d.IsZero() {
				return ""
			}
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// decodeAndValidate reads a JSON body into dst and validates it
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("malformed request body: %w", err)
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid request: %s", strings.Join(fields, "; "))
		}
		return err
	}
	return nil
}
