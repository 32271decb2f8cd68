package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	pkgerrors "github.com/angelmondragon/lumina-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps every JSON payload the storefront accepts.
const MaxBodyBytes int64 = 64 << 10

var (
	validate = newValidator()

	errEmptyBody    = errors.New("request body is empty")
	errTrailingData = errors.New("request body must contain a single JSON object")
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return v
}

// DecodeJSONBody decodes exactly one JSON object into dest, rejecting unknown
// fields, and then runs struct validation.
func DecodeJSONBody(r *http.Request, dest any) error {
	empty, err := decode(r, dest)
	if err != nil {
		return err
	}
	if empty {
		return invalidBody(errEmptyBody)
	}
	return Struct(dest)
}

// DecodeOptionalJSONBody is DecodeJSONBody for endpoints where the body may be
// omitted; dest keeps its zero values and is still validated.
func DecodeOptionalJSONBody(r *http.Request, dest any) error {
	if _, err := decode(r, dest); err != nil {
		return err
	}
	return Struct(dest)
}

// Struct validates dest and converts failures into a field -> message map.
func Struct(dest any) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = validationMessage(fe)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}

func decode(r *http.Request, dest any) (empty bool, err error) {
	if r.Body == nil || r.Body == http.NoBody {
		return true, nil
	}
	body := io.LimitReader(r.Body, MaxBodyBytes+1)
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()

	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		return false, invalidBody(err)
	}
	if decoder.InputOffset() > MaxBodyBytes {
		return false, invalidBody(fmt.Errorf("request body exceeds %d bytes", MaxBodyBytes))
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return false, invalidBody(errTrailingData)
	}
	return false, nil
}

func invalidBody(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
		WithDetails(map[string]any{"error": err.Error()})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "url", "http_url":
		return "must be a valid url"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	}
	return "is invalid"
}
