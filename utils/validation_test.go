package utils

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
)

type registerForm struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

func TestValidationErrors_PerField(t *testing.T) {
	v := validator.New()
	err := v.Struct(registerForm{Name: "", Email: "not-an-email", Password: "12345"})
	if err == nil {
		t.Fatal("expected validation failures")
	}

	fields := ValidationErrors(err)
	if len(fields) != 3 {
		t.Fatalf("want 3 field errors, got %d: %v", len(fields), fields)
	}

	byParam := map[string]string{}
	for _, fe := range fields {
		byParam[fe.Param] = fe.Msg
	}
	if byParam["name"] != "name is required" {
		t.Fatalf("name message: %q", byParam["name"])
	}
	if byParam["email"] != "Valid email is required" {
		t.Fatalf("email message: %q", byParam["email"])
	}
	if byParam["password"] != "password must be at least 6 characters" {
		t.Fatalf("password message: %q", byParam["password"])
	}
}

func TestValidationErrors_NonFieldError(t *testing.T) {
	fields := ValidationErrors(errors.New("unexpected EOF"))
	if len(fields) != 1 || fields[0].Param != "body" {
		t.Fatalf("want single body entry, got %v", fields)
	}
}
