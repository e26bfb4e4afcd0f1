package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/civicportal/admin-api/internal/core/domain"
)

// actor returns the email of the authenticated caller, or "" when the request
// carried no token.
func actor(c echo.Context) string {
	email, _ := c.Get("email").(string)
	return email
}

// bindAndValidate decodes the request body into req and runs struct
// validation. Both failures are reported as domain.ErrValidation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
	}
	if c.Echo().Validator == nil {
		return nil
	}
	if err := c.Validate(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}
	return nil
}
