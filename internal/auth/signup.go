package auth

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrEmailExists      = errors.New("email already exists")
	ErrInvalidOTP       = errors.New("invalid or expired verification code")
	ErrEmailNotVerified = errors.New("email is not verified")
)

//nolint:gochecknoglobals
var (
	phonePattern   = regexp.MustCompile(`^\+?[\d\s-]+$`)
	zipcodePattern = regexp.MustCompile(`^\d{4,10}$`)
)

type SignUpRequest struct {
	FirstName string `json:"firstName"        validate:"required,min=2"`
	LastName  string `json:"lastName"         validate:"required,min=2"`
	Age       int    `json:"age"              validate:"required,min=18,max=120"`
	Email     string `json:"email"            validate:"required,email"`
	Password  string `json:"password"         validate:"required,min=8"`
	Phone     string `json:"phone"            validate:"required,phone"`
	Address   string `json:"address"          validate:"required"`
	Zipcode   string `json:"zipcode"          validate:"required,zipcode"`
	Avatar    string `json:"avatar,omitempty"`
	Gender    string `json:"gender"           validate:"required,oneof=MALE FEMALE OTHER"`
}

type verifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp"   validate:"required"`
}

type InputError struct {
	fields map[string][]string
}

func IsInputError(err error) *InputError {
	var inputError *InputError

	if errors.As(err, &inputError) {
		return inputError
	}

	return nil
}

func (ie *InputError) Error() string {
	return fmt.Sprintf("%+v", ie.fields)
}

func (ie *InputError) Fields() map[string][]string {
	return ie.fields
}

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")

		return name
	})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("zipcode", func(fl validator.FieldLevel) bool {
		return zipcodePattern.MatchString(fl.Field().String())
	})

	return v
}

func (m *Manager) validateStruct(s any) error {
	err := m.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("validate %T: %w", s, err)
	}

	inputErr := &InputError{fields: make(map[string][]string)}

	for _, fe := range validationErrs {
		inputErr.fields[fe.Field()] = append(inputErr.fields[fe.Field()], fmt.Sprintf("failed on the '%s' rule", fe.Tag()))
	}

	return inputErr
}

// SignUp registers a new user. The user has to verify the email before signing in.
func (m *Manager) SignUp(ctx context.Context, req SignUpRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	if err := m.validateStruct(&req); err != nil {
		return err
	}

	if err := m.provider.SignUp(ctx, &req); err != nil {
		return fmt.Errorf("sign up %s: %w", req.Email, err)
	}

	m.l.LogInfo("User %s signed up, waiting for email verification", req.Email)

	return nil
}

func (m *Manager) VerifyEmail(ctx context.Context, email, otp string) error {
	req := verifyEmailRequest{Email: strings.TrimSpace(email), OTP: strings.TrimSpace(otp)}

	if err := m.validateStruct(&req); err != nil {
		return err
	}

	if err := m.provider.VerifyEmail(ctx, req.Email, req.OTP); err != nil {
		return fmt.Errorf("verify email %s: %w", req.Email, err)
	}

	return nil
}
