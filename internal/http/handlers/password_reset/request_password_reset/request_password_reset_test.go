package requestpasswordreset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"passreset/internal/core/domain/account"
	c "passreset/internal/core/domain/common"
	service "passreset/internal/core/services/request_password_reset"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	token account.ResetToken
	err   error
	input *service.Input
}

func (s *stubService) Run(ctx context.Context, input service.Input) (result service.Result, err error) {
	s.input = &input
	if s.err != nil {
		return result, s.err
	}
	result.Token = s.token
	return result, nil
}

func TestRequestPasswordResetHandler(t *testing.T) {
	var token account.ResetToken
	token[0] = 0xff

	cases := []struct {
		id             string
		body           string
		serviceErr     error
		conceal        bool
		testMode       bool
		expectedStatus int
		expectedBody   string
		expectedEmail  c.Email
		expectedHeader string
	}{
		{
			id:             "success",
			body:           `{"email": " A@X.com "}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"password reset email sent"}`,
			expectedEmail:  "a@x.com",
		},
		{
			id:             "padded email with tabs",
			body:           `{"email": "\tuser@X.org\n"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"password reset email sent"}`,
			expectedEmail:  "user@x.org",
		},
		{
			id:             "blank email",
			body:           `{"email": "   "}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			id:             "test mode exposes token",
			body:           `{"email": "a@x.com"}`,
			testMode:       true,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"password reset email sent"}`,
			expectedEmail:  "a@x.com",
			expectedHeader: token.String(),
		},
		{
			id:             "unknown account",
			body:           `{"email": "a@x.com"}`,
			serviceErr:     account.ErrAccountDoesNotExist,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"account not found"}`,
			expectedEmail:  "a@x.com",
		},
		{
			id:             "unknown account concealed",
			body:           `{"email": "a@x.com"}`,
			serviceErr:     account.ErrAccountDoesNotExist,
			conceal:        true,
			testMode:       true,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"password reset email sent"}`,
			expectedEmail:  "a@x.com",
		},
		{
			id:             "internal error",
			body:           `{"email": "a@x.com"}`,
			serviceErr:     errors.New("connection refused on 10.0.0.1"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"internal error"}`,
			expectedEmail:  "a@x.com",
		},
		{
			id:             "invalid json",
			body:           `{"email":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request data"}`,
		},
		{
			id:             "invalid email",
			body:           `{"email": "not-an-email"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			id:             "missing email",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			s := &stubService{token: token, err: testcase.serviceErr}
			handler := New(s, testcase.conceal, testcase.testMode)
			req := httptest.NewRequest(http.MethodPost, "/reset-password/request", strings.NewReader(testcase.body))
			rw := httptest.NewRecorder()

			handler.ServeHTTP(rw, req)

			assert.Equal(t, testcase.expectedStatus, rw.Code)
			if testcase.expectedBody != "" {
				assert.JSONEq(t, testcase.expectedBody, rw.Body.String())
			}
			assert.Equal(t, testcase.expectedHeader, rw.Header().Get(TestTokenHeader))
			if testcase.expectedEmail == "" {
				assert.Nil(t, s.input)
			} else {
				require.NotNil(t, s.input)
				assert.Equal(t, testcase.expectedEmail, s.input.Email)
			}
		})
	}
}
