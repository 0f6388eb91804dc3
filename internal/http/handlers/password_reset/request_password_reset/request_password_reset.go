package requestpasswordreset

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"passreset/internal/core/domain/account"
	c "passreset/internal/core/domain/common"
	e "passreset/internal/core/domain/errors"
	"passreset/internal/core/services"
	service "passreset/internal/core/services/request_password_reset"
	"passreset/internal/http/handlers/response"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	TestTokenHeader = "x-test-password-reset-token"
	sentMessage     = "password reset email sent"
)

type Handler struct {
	service        services.Service[service.Input, service.Result]
	concealAccount bool
	isTestMode     bool
}

// New creates the handler. With concealAccount set unknown emails get
// the same response as known ones.
func New(
	service services.Service[service.Input, service.Result],
	concealAccount bool,
	isTestMode bool,
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service, concealAccount: concealAccount, isTestMode: isTestMode}
}

type Input struct {
	Email string `json:"email"`
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

	result, err := h.service.Run(
		r.Context(),
		service.Input{Email: c.NewEmail(input.Email)},
	)
	if errors.Is(err, account.ErrAccountDoesNotExist) {
		if h.concealAccount {
			response.RenderMessage(rw, sentMessage)
			return
		}
		response.RenderError(rw, "account not found", http.StatusNotFound)
		return
	}
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	if h.isTestMode {
		rw.Header().Set(TestTokenHeader, result.Token.String())
	}
	response.RenderMessage(rw, sentMessage)
}
