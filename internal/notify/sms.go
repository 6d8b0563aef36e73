package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const smsBaseURL = "https://smsapi.free-mobile.fr/sendmsg"

// Gateway error conditions, mapped from the SMS API's status codes.
var (
	ErrMissingParameter  = errors.New("sms: mandatory parameter missing")
	ErrTooManySMS        = errors.New("sms: too many messages sent too quickly")
	ErrServiceNotEnabled = errors.New("sms: service not enabled or bad credentials")
	ErrServerError       = errors.New("sms: gateway server error")
)

// SMSAlerter sends alerts through the Free Mobile SMS gateway.
type SMSAlerter struct {
	client  *http.Client
	baseURL string
	user    string
	pass    string
}

func NewSMSAlerter(user, pass string) *SMSAlerter {
	return &SMSAlerter{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: smsBaseURL,
		user:    user,
		pass:    pass,
	}
}

func (s *SMSAlerter) Send(ctx context.Context, msg string) error {
	q := url.Values{}
	q.Set("user", s.user)
	q.Set("pass", s.pass)
	q.Set("msg", msg)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending sms: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		return ErrMissingParameter
	case http.StatusPaymentRequired:
		return ErrTooManySMS
	case http.StatusForbidden:
		return ErrServiceNotEnabled
	case http.StatusInternalServerError:
		return ErrServerError
	default:
		return fmt.Errorf("sms: unexpected status %d", resp.StatusCode)
	}
}
