package utils

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	Name                 string `validate:"required,nameok"`
	Email                string `validate:"required,email"`
	Password             string `validate:"required,pwdmin"`
	PasswordConfirmation string `validate:"required,eqfield=Password"`
	Shares               int    `validate:"required"`
}

func valid() sampleRequest {
	return sampleRequest{
		Name:                 "Ada Lovelace",
		Email:                "ada@example.com",
		Password:             "supersecret",
		PasswordConfirmation: "supersecret",
		Shares:               3,
	}
}

func TestValidateStructOK(t *testing.T) {
	req := valid()
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*sampleRequest)
		want   string
	}{
		{"missing name", func(r *sampleRequest) { r.Name = "" }, "Name"},
		{"bad email", func(r *sampleRequest) { r.Email = "not-an-email" }, "Email"},
		{"short password", func(r *sampleRequest) { r.Password = "short"; r.PasswordConfirmation = "short" }, "Password"},
		{"mismatched confirmation", func(r *sampleRequest) { r.PasswordConfirmation = "different1" }, "PasswordConfirmation"},
		{"zero shares", func(r *sampleRequest) { r.Shares = 0 }, "Shares"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid()
			tc.mutate(&req)
			err := ValidateStruct(&req)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}
