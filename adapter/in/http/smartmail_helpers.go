package http

import (
	"github.com/gofiber/fiber/v2"

	"smartmail_server/pkg/apperr"
	"smartmail_server/pkg/response"
)

// errorResponse maps a service error onto the response envelope. AppErrors
// carry their own status and code; anything else is a 500.
func errorResponse(c *fiber.Ctx, err error) error {
	ae := apperr.AsAppError(err)
	return response.Error(c, ae.HTTPStatus(), ae.Code, ae.Message)
}
