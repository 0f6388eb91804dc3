package confirmpasswordreset

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"passreset/internal/core/domain/account"
	c "passreset/internal/core/domain/common"
	e "passreset/internal/core/domain/errors"
	"passreset/internal/core/services"
	service "passreset/internal/core/services/confirm_password_reset"
	"passreset/internal/http/handlers/response"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type Handler struct {
	service services.Service[service.Input, service.Result]
}

func New(service services.Service[service.Input, service.Result]) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Input struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// FromJSON decodes the body and trims the email so padded addresses
// pass validation.
func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	if err := e.Decode(i); err != nil {
		return err
	}
	i.Email = strings.TrimSpace(i.Email)
	return nil
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Email, validation.Required, is.Email, validation.Length(0, 512)),
		validation.Field(&i.Token, validation.Required, validation.Length(0, 1024)),
		validation.Field(&i.NewPassword, validation.Required, validation.Length(0, 256)),
	)
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	input := Input{}
	if err := input.FromJSON(r.Body); err != nil {
		response.RenderInvalidRequestData(rw)
		return
	}
	if err := input.Validate(); err != nil {
		response.Render(rw, err, http.StatusBadRequest)
		return
	}

	_, err := h.service.Run(
		r.Context(),
		service.Input{
			Email:       c.NewEmail(input.Email),
			Token:       input.Token,
			NewPassword: account.RawPassword(input.NewPassword),
		},
	)
	if errors.Is(err, account.ErrInvalidOrExpiredResetToken) {
		response.RenderError(rw, "invalid or expired token", http.StatusBadRequest)
		return
	}
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	response.RenderMessage(rw, "password has been reset")
}
