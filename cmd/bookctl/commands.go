package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"barbershop/pkg/client"
	"barbershop/pkg/form"
	"barbershop/pkg/hours"
	"barbershop/pkg/logger"
	"barbershop/pkg/model"

	"github.com/urfave/cli/v2"
)

const (
	flagURL      = "url"
	flagTimezone = "timezone"
	flagOffline  = "offline"
)

func newApp(out io.Writer, log *logger.Logger) *cli.App {
	return &cli.App{
		Name:   AppName,
		Usage:  "check availability and book appointments against the bookings service",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagURL,
				Value:   "http://localhost:3000",
				Usage:   "base URL of the bookings service",
				EnvVars: []string{"BOOKINGS_URL"},
			},
			&cli.StringFlag{
				Name:    flagTimezone,
				Value:   "Local",
				Usage:   "shop time zone used for local checks",
				EnvVars: []string{"BUSINESS_TIMEZONE"},
			},
		},
		Commands: []*cli.Command{
			timesCommand(log),
			checkCommand(log),
			bookCommand(log),
			formatPhoneCommand(),
		},
	}
}

func rulesFrom(c *cli.Context) (hours.Rules, error) {
	loc, err := time.LoadLocation(c.String(flagTimezone))
	if err != nil {
		return hours.Rules{}, cli.Exit(fmt.Sprintf("invalid time zone %q", c.String(flagTimezone)), 2)
	}
	return hours.Default(loc), nil
}

func timesCommand(log *logger.Logger) *cli.Command {
	return &cli.Command{
		Name:      "times",
		Usage:     "list the bookable times of a date",
		ArgsUsage: "YYYY-MM-DD",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: flagOffline, Usage: "compute the business-hours grid locally without asking the server"},
		},
		Action: func(c *cli.Context) error {
			date := c.Args().First()
			if date == "" {
				return cli.Exit(form.MsgDate, 2)
			}

			if c.Bool(flagOffline) {
				rules, err := rulesFrom(c)
				if err != nil {
					return err
				}
				times, err := form.AvailableTimes(rules, date, time.Now())
				if err != nil {
					return cli.Exit(err.Error(), 2)
				}
				if times.Closed {
					fmt.Fprintln(c.App.Writer, times.Message)
					return nil
				}
				for _, opt := range times.Options {
					fmt.Fprintf(c.App.Writer, "%s\t%s\n", opt.Value, opt.Label)
				}
				return nil
			}

			schedule, err := client.NewBookingClient(c.String(flagURL)).AvailableTimes(c.Context, date)
			if err != nil {
				log.Debug("available-times request failed", "date", date, "error", err)
				return err
			}
			if schedule.Closed {
				fmt.Fprintln(c.App.Writer, schedule.Message)
				return nil
			}
			for _, slot := range schedule.Slots {
				status := "available"
				if !slot.Available {
					status = "unavailable"
				}
				fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\n", slot.Time, slot.Label, status)
			}
			return nil
		},
	}
}

func checkCommand(log *logger.Logger) *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "check whether a slot is free",
		ArgsUsage: "YYYY-MM-DD HH:MM",
		Action: func(c *cli.Context) error {
			date, clock := c.Args().Get(0), c.Args().Get(1)

			available, err := client.NewBookingClient(c.String(flagURL)).CheckAvailability(c.Context, date, clock)
			if err != nil {
				log.Debug("check-availability request failed", "date", date, "time", clock, "error", err)
				return err
			}
			if available {
				fmt.Fprintf(c.App.Writer, "%s %s is available\n", date, clock)
			} else {
				fmt.Fprintf(c.App.Writer, "%s %s is already booked\n", date, clock)
			}
			return nil
		},
	}
}

func bookCommand(log *logger.Logger) *cli.Command {
	return &cli.Command{
		Name:  "book",
		Usage: "validate the booking form and submit it",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name"},
			&cli.StringFlag{Name: "email"},
			&cli.StringFlag{Name: "phone", Usage: "any format; digits are masked as (XXX) XXX-XXXX"},
			&cli.StringFlag{Name: "service"},
			&cli.StringFlag{Name: "date", Usage: "YYYY-MM-DD"},
			&cli.StringFlag{Name: "time", Usage: "HH:MM"},
		},
		Action: func(c *cli.Context) error {
			fields := form.Fields{
				Name:    c.String("name"),
				Email:   c.String("email"),
				Phone:   form.FormatPhone(c.String("phone")),
				Service: c.String("service"),
				Date:    c.String("date"),
				Time:    c.String("time"),
			}

			var status form.Status
			if !status.Check(fields) {
				return cli.Exit(status.Message(), 1)
			}

			bookings := client.NewBookingClient(c.String(flagURL))

			available, err := bookings.CheckAvailability(c.Context, fields.Date, fields.Time)
			if err != nil {
				var apiErr *client.APIError
				if errors.As(err, &apiErr) {
					return cli.Exit(apiErr.Error(), 1)
				}
				log.Error("Availability check failed", "error", err)
				return err
			}
			if !available {
				return cli.Exit(form.MsgSlotUnavailable, 1)
			}

			confirmation, err := bookings.Book(c.Context, &model.BookingRequest{
				CustomerName:  strings.TrimSpace(fields.Name),
				CustomerEmail: strings.TrimSpace(fields.Email),
				PhoneNumber:   fields.Phone,
				Service:       fields.Service,
				Date:          fields.Date,
				Time:          fields.Time,
			})
			if err != nil {
				var apiErr *client.APIError
				if errors.As(err, &apiErr) {
					return cli.Exit(apiErr.Error(), 1)
				}
				log.Error("Booking request failed", "error", err)
				return err
			}

			fmt.Fprintf(c.App.Writer, "%s (booking %s)\n", confirmation.Message, confirmation.BookingID)
			return nil
		},
	}
}

func formatPhoneCommand() *cli.Command {
	return &cli.Command{
		Name:      "format-phone",
		Usage:     "apply the (XXX) XXX-XXXX input mask",
		ArgsUsage: "DIGITS",
		Action: func(c *cli.Context) error {
			fmt.Fprintln(c.App.Writer, form.FormatPhone(strings.Join(c.Args().Slice(), "")))
			return nil
		},
	}
}
