package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"barbershop/pkg/model"
)

type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *BookingClient) HTTP() *HttpClient {
	return c.httpClient
}

func (c *BookingClient) CheckAvailability(ctx context.Context, date, clock string) (bool, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("time", clock)

	resp, err := c.httpClient.GET(ctx, "/api/check-availability?"+q.Encode())
	if err != nil {
		return false, err
	}
	if resp.StatusCode != http.StatusOK {
		return false, AsAPIError(resp)
	}

	var availability model.Availability
	if err := resp.DecodeJSON(&availability); err != nil {
		return false, fmt.Errorf("could not decode availability: %w", err)
	}
	return availability.Available, nil
}

func (c *BookingClient) Book(ctx context.Context, req *model.BookingRequest) (*model.BookingConfirmation, error) {
	resp, err := c.httpClient.POST(ctx, "/api/book", req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, AsAPIError(resp)
	}

	var confirmation model.BookingConfirmation
	if err := resp.DecodeJSON(&confirmation); err != nil {
		return nil, fmt.Errorf("could not decode booking confirmation: %w", err)
	}
	return &confirmation, nil
}

func (c *BookingClient) AvailableTimes(ctx context.Context, date string) (*model.DaySchedule, error) {
	q := url.Values{}
	q.Set("date", date)

	resp, err := c.httpClient.GET(ctx, "/api/available-times?"+q.Encode())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, AsAPIError(resp)
	}

	var schedule model.DaySchedule
	if err := resp.DecodeJSON(&schedule); err != nil {
		return nil, fmt.Errorf("could not decode available times: %w", err)
	}
	return &schedule, nil
}
