package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"barbershop/pkg/form"
	"barbershop/pkg/logger"
	"barbershop/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(&out, logger.Discard())
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{AppName}, args...))
	return out.String(), err
}

func TestFormatPhone(t *testing.T) {
	out, err := run(t, "format-phone", "555.123.45678")

	require.NoError(t, err)
	assert.Equal(t, "(555) 123-4567\n", out)
}

func TestTimes_Offline(t *testing.T) {
	out, err := run(t, "--timezone", "UTC", "times", "--offline", "2099-06-01")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 18)
	assert.Equal(t, "09:00\t9:00 AM", lines[0])
	assert.Equal(t, "17:30\t5:30 PM", lines[17])
}

func TestTimes_OfflineSunday(t *testing.T) {
	out, err := run(t, "--timezone", "UTC", "times", "--offline", "2099-06-07")

	require.NoError(t, err)
	assert.Equal(t, form.MsgSunday+"\n", out)
}

func TestTimes_FromServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/available-times", r.URL.Path)
		assert.Equal(t, "2099-06-01", r.URL.Query().Get("date"))
		_ = json.NewEncoder(w).Encode(model.DaySchedule{
			Date: "2099-06-01",
			Slots: []model.SlotStatus{
				{Time: "09:00", Label: "9:00 AM", Available: true},
				{Time: "09:30", Label: "9:30 AM", Available: false},
			},
		})
	}))
	defer srv.Close()

	out, err := run(t, "--url", srv.URL, "times", "2099-06-01")

	require.NoError(t, err)
	assert.Equal(t, "09:00\t9:00 AM\tavailable\n09:30\t9:30 AM\tunavailable\n", out)
}

func TestCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10:00", r.URL.Query().Get("time"))
		_ = json.NewEncoder(w).Encode(model.Availability{Available: false})
	}))
	defer srv.Close()

	out, err := run(t, "--url", srv.URL, "check", "2099-06-01", "10:00")

	require.NoError(t, err)
	assert.Equal(t, "2099-06-01 10:00 is already booked\n", out)
}

func TestBook_InvalidFormNeverReachesServer(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := run(t, "--url", srv.URL, "book",
		"--name", "Jane Doe",
		"--email", "not-an-email",
		"--phone", "5551234567",
		"--service", "Haircut",
		"--date", "2099-06-01",
		"--time", "10:00",
	)

	require.Error(t, err)
	assert.Equal(t, form.MsgEmail, err.Error())
	assert.Zero(t, calls.Load())
}

func TestBook_Submits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/check-availability" {
			assert.Equal(t, "2099-06-01", r.URL.Query().Get("date"))
			assert.Equal(t, "10:00", r.URL.Query().Get("time"))
			_ = json.NewEncoder(w).Encode(model.Availability{Available: true})
			return
		}
		assert.Equal(t, "/api/book", r.URL.Path)

		var req model.BookingRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "(555) 123-4567", req.PhoneNumber)
		assert.Equal(t, "Jane Doe", req.CustomerName)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(model.BookingConfirmation{
			Message:   "Appointment booked successfully",
			BookingID: "abc-123",
		})
	}))
	defer srv.Close()

	out, err := run(t, "--url", srv.URL, "book",
		"--name", " Jane Doe ",
		"--email", "jane@example.com",
		"--phone", "555-123-4567",
		"--service", "Haircut",
		"--date", "2099-06-01",
		"--time", "10:00",
	)

	require.NoError(t, err)
	assert.Equal(t, "Appointment booked successfully (booking abc-123)\n", out)
}

func TestBook_SlotNoLongerAvailable(t *testing.T) {
	var bookCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/book" {
			bookCalls.Add(1)
			w.WriteHeader(http.StatusCreated)
			return
		}
		_ = json.NewEncoder(w).Encode(model.Availability{Available: false})
	}))
	defer srv.Close()

	_, err := run(t, "--url", srv.URL, "book",
		"--name", "Jane Doe",
		"--email", "jane@example.com",
		"--phone", "5551234567",
		"--service", "Haircut",
		"--date", "2099-06-01",
		"--time", "10:00",
	)

	require.Error(t, err)
	assert.Equal(t, form.MsgSlotUnavailable, err.Error())
	assert.Zero(t, bookCalls.Load())
}

func TestBook_SlotTakenWhileSubmitting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/check-availability" {
			_ = json.NewEncoder(w).Encode(model.Availability{Available: true})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"This time slot is already booked"}`))
	}))
	defer srv.Close()

	_, err := run(t, "--url", srv.URL, "book",
		"--name", "Jane Doe",
		"--email", "jane@example.com",
		"--phone", "5551234567",
		"--service", "Haircut",
		"--date", "2099-06-01",
		"--time", "10:00",
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "This time slot is already booked")
}
