package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcChen/job-tracker/internal/offer"
)

func TestSMSAlerterSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{
			"user": r.URL.Query().Get("user"),
			"pass": r.URL.Query().Get("pass"),
			"msg":  r.URL.Query().Get("msg"),
		}
	}))
	defer srv.Close()

	s := NewSMSAlerter("12345678", "apikey")
	s.baseURL = srv.URL

	require.NoError(t, s.Send(context.Background(), "New Job Alert!"))
	assert.Equal(t, "12345678", got["user"])
	assert.Equal(t, "apikey", got["pass"])
	assert.Equal(t, "New Job Alert!", got["msg"])
}

func TestSMSAlerterStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrMissingParameter},
		{http.StatusPaymentRequired, ErrTooManySMS},
		{http.StatusForbidden, ErrServiceNotEnabled},
		{http.StatusInternalServerError, ErrServerError},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		s := NewSMSAlerter("u", "p")
		s.baseURL = srv.URL
		err := s.Send(context.Background(), "msg")
		assert.ErrorIs(t, err, tt.want)
		srv.Close()
	}
}

func TestFormatOffer(t *testing.T) {
	vie := offer.Offer{
		Title:    "VIE Data Analyst",
		Company:  "Thales",
		Location: "Singapore",
		Source:   offer.SourceBusinessFrance,
		Duration: "24 months",
		URL:      "https://mon-vie-via.businessfrance.fr/offres/1",
	}
	msg := FormatOffer(vie)
	assert.Contains(t, msg, "New VIE Job Alert!")
	assert.Contains(t, msg, "Duration: 24 months")
	assert.NotContains(t, msg, "URL:")

	cdi := offer.Offer{
		Title:        "Data Engineer",
		Company:      "Air France",
		Location:     "Paris",
		Source:       offer.SourceAirFrance,
		ContractType: offer.ContractPermanent,
		URL:          "https://recrutement.airfrance.com/offre/2",
	}
	msg = FormatOffer(cdi)
	assert.Contains(t, msg, "New Job Alert!")
	assert.Contains(t, msg, "Contract Type: CDI")
	assert.Contains(t, msg, "URL: https://recrutement.airfrance.com/offre/2")
}
