// Package dto defines data transfer objects for the auth feature's HTTP transport layer.
package dto

import (
	"basic_authn/internal/feature/auth/domain"
	"basic_authn/internal/platform/validation"
)

// SignupReq represents the request body for the signup endpoint.
// The username is the user's email address; its email rule lives in SignupRules
// so that it is reported alongside a blank violation.
type SignupReq struct {
	Username string `json:"username" binding:"notblank"`
	Password string `json:"password" binding:"password_strength"`
}

// SignupMessages maps each SignupReq violation to its user-facing message.
var SignupMessages = validation.Catalog{
	"Username.notblank":          domain.MsgBlankUsername,
	"Username.email":             domain.MsgInvalidEmail,
	"Password.password_strength": domain.MsgWeakPassword,
}

// SignupRules are the struct-level rules for SignupReq.
var SignupRules = validation.StructRule{
	Fn:    validation.IndependentEmail("Username"),
	Types: []any{SignupReq{}},
}
