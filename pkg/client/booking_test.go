package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"barbershop/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *BookingClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBookingClient(srv.URL + "/")
}

func TestCheckAvailability(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/check-availability", r.URL.Path)
		assert.Equal(t, "2025-03-10", r.URL.Query().Get("date"))
		assert.Equal(t, "14:00", r.URL.Query().Get("time"))
		_, _ = w.Write([]byte(`{"available":true}`))
	})

	available, err := c.CheckAvailability(context.Background(), "2025-03-10", "14:00")

	require.NoError(t, err)
	assert.True(t, available)
}

func TestCheckAvailability_Error(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Date and time are required"}`))
	})

	_, err := c.CheckAvailability(context.Background(), "", "")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Date and time are required", apiErr.Message)
}

func TestBook(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req model.BookingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "(555) 123-4567", req.PhoneNumber)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Appointment booked successfully","bookingId":"abc"}`))
	})

	confirmation, err := c.Book(context.Background(), &model.BookingRequest{
		CustomerName:  "John Smith",
		CustomerEmail: "john@example.com",
		PhoneNumber:   "(555) 123-4567",
		Service:       "Classic Haircut",
		Date:          "2025-03-10",
		Time:          "14:00",
	})

	require.NoError(t, err)
	assert.Equal(t, "abc", confirmation.BookingID)
}

func TestBook_ValidationErrors(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"field":"phoneNumber","message":"Valid phone number is required"}]}`))
	})

	_, err := c.Book(context.Background(), &model.BookingRequest{})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Len(t, apiErr.Fields, 1)
	assert.Equal(t, "phoneNumber", apiErr.Fields[0].Field)
	assert.Equal(t, "400: phoneNumber: Valid phone number is required", apiErr.Error())
}

func TestAvailableTimes(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"date":"2025-03-09","closed":true,"message":"We are closed on Sundays. Please select another day.","slots":[]}`))
	})

	schedule, err := c.AvailableTimes(context.Background(), "2025-03-09")

	require.NoError(t, err)
	assert.True(t, schedule.Closed)
	assert.Empty(t, schedule.Slots)
}

func TestAsAPIError_PlainBody(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := c.AvailableTimes(context.Background(), "2025-03-10")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestWaitForHealthy(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, c.HTTP().WaitForHealthy(context.Background(), time.Second))
}
