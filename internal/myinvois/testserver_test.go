package myinvois

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hypernova-labs/einvoice-service/internal/models"
	"github.com/sirupsen/logrus"
)

// fakeMyInvois simula el servicio de clearance y cuenta las llamadas por endpoint
type fakeMyInvois struct {
	tokenCalls  atomic.Int32
	submitCalls atomic.Int32
	statusCalls atomic.Int32
	cancelCalls atomic.Int32

	mu             sync.Mutex
	tokenStatus    int
	tokenBody      string
	expiresIn      int
	submitStatus   int
	submitBody     string
	statusStatus   int
	statusBody     string
	cancelStatus   int
	cancelBody     string
	delay          time.Duration
	lastPayload    models.SubmissionPayload
	lastAuthHeader string
	lastReason     string
}

func newFakeMyInvois() *fakeMyInvois {
	return &fakeMyInvois{
		tokenStatus:  http.StatusOK,
		expiresIn:    3600,
		submitStatus: http.StatusAccepted,
		submitBody:   `{"documents":[{"internalId":"INV-1","uuid":"UUID-1","status":"Submitted","qrCode":"qr-data"}]}`,
		statusStatus: http.StatusOK,
		statusBody:   `{"uuid":"UUID-1","internalId":"INV-1","status":"Valid"}`,
		cancelStatus: http.StatusOK,
		cancelBody:   `{"uuid":"UUID-1","status":"Cancelled"}`,
	}
}

func (f *fakeMyInvois) totalCalls() int32 {
	return f.tokenCalls.Load() + f.submitCalls.Load() + f.statusCalls.Load() + f.cancelCalls.Load()
}

func (f *fakeMyInvois) authHeader() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuthHeader
}

func (f *fakeMyInvois) payload() models.SubmissionPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPayload
}

func (f *fakeMyInvois) reason() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReason
}

func (f *fakeMyInvois) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /connect/token", func(w http.ResponseWriter, r *http.Request) {
		n := f.tokenCalls.Add(1)
		f.mu.Lock()
		defer f.mu.Unlock()

		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" || r.FormValue("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"invalid_client"}`)
			return
		}
		if f.tokenStatus != http.StatusOK {
			w.WriteHeader(f.tokenStatus)
			_, _ = io.WriteString(w, f.tokenBody)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": fmt.Sprintf("token-%d", n),
			"expires_in":   f.expiresIn,
			"token_type":   "Bearer",
		})
	})

	mux.HandleFunc("POST /api/v1.0/documents", func(w http.ResponseWriter, r *http.Request) {
		f.submitCalls.Add(1)
		f.mu.Lock()
		delay := f.delay
		f.lastAuthHeader = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&f.lastPayload)
		status, body := f.submitStatus, f.submitBody
		f.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})

	mux.HandleFunc("GET /api/v1.0/documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.statusCalls.Add(1)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.lastAuthHeader = r.Header.Get("Authorization")
		w.WriteHeader(f.statusStatus)
		_, _ = io.WriteString(w, f.statusBody)
	})

	mux.HandleFunc("POST /api/v1.0/documents/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
		f.cancelCalls.Add(1)
		f.mu.Lock()
		defer f.mu.Unlock()
		var req struct {
			Reason string `json:"reason"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.lastReason = req.Reason
		w.WriteHeader(f.cancelStatus)
		_, _ = io.WriteString(w, f.cancelBody)
	})

	return mux
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testSeller() Seller {
	return Seller{
		TIN:      "C1234567890",
		Name:     "Hypernova Sdn Bhd",
		Branch:   "001",
		Address:  "Jalan Ampang 1",
		Postcode: "50450",
		City:     "Kuala Lumpur",
		State:    "WP Kuala Lumpur",
		Country:  "MY",
		Email:    "billing@hypernova.my",
		Phone:    "+60312345678",
	}
}

// newTestClient levanta el servicio simulado y un cliente apuntando a él
func newTestClient(t *testing.T, fake *fakeMyInvois, opts Options) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	if opts.Logger == nil {
		opts.Logger = testLogger()
	}
	creds := Credentials{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		BaseURL:      srv.URL,
		Seller:       testSeller(),
	}
	return NewClient(creds, opts), srv
}

func sampleInvoice() models.InvoiceInput {
	return models.InvoiceInput{
		InvoiceNumber: "INV-1",
		InvoiceDate:   time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Customer:      models.Customer{Name: "Acme"},
		Items: []models.Item{
			{Description: "Consulting", Quantity: 2, UnitPrice: 100},
		},
	}
}
