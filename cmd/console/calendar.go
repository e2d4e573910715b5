package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"industry-console/internal/calendar"
	"industry-console/internal/console"
	"industry-console/internal/model"
)

var (
	calMonth string
	calDay   string
	calStaff string

	booking model.BookingRequest
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Month view of appointments and booking",
}

var calendarShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the month grid, optionally with one day's appointments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, done, err := openCalendar(cmd)
		if err != nil {
			return err
		}
		defer done()

		out := cmd.OutOrStdout()
		if calDay != "" {
			d, err := time.ParseInLocation(calendar.DateLayout, calDay, time.Local)
			if err != nil {
				return fmt.Errorf("--day: %w", err)
			}
			s.SelectDay(d)
		}
		fmt.Fprintln(out, st.month(s.Month(), s.Cells()))
		if d, ok := s.Selected(); ok {
			fmt.Fprintln(out)
			fmt.Fprintln(out, st.day(d, s.SelectedAppointments()))
		}
		return nil
	},
}

var calendarBookCmd = &cobra.Command{
	Use:   "book",
	Short: "Create a booking",
	Example: `  console calendar book --date 2024-03-05 --time 09:30 --service Haircut --customer "Jo Park"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if booking.AppointmentDate != "" {
			calMonth = ""
			calDay = booking.AppointmentDate
		}
		s, done, err := openCalendar(cmd)
		if err != nil {
			return err
		}
		defer done()

		form := booking
		form.ServiceID = resolveService(s.Services(), booking.ServiceID)
		form.StaffID = resolveStaff(s.Staff(), booking.StaffID)
		s.SetForm(form)

		appt, err := s.CreateBooking(ctxOf(cmd))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s (%s)\n", appt.ID, appt.AppointmentDate, appt.StartTime, appt.Status)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{calendarShowCmd, calendarBookCmd} {
		c.Flags().StringVar(&calStaff, "staff-filter", "", "only show appointments of this staff id")
	}
	calendarShowCmd.Flags().StringVar(&calMonth, "month", "", "month to show, YYYY-MM (default current)")
	calendarShowCmd.Flags().StringVar(&calDay, "day", "", "also list appointments of this day, YYYY-MM-DD")

	f := calendarBookCmd.Flags()
	f.StringVar(&booking.AppointmentDate, "date", "", "YYYY-MM-DD")
	f.StringVar(&booking.StartTime, "time", "", "HH:MM")
	f.StringVar(&booking.ServiceID, "service", "", "service id or name")
	f.StringVar(&booking.CustomerName, "customer", "", "customer name")
	f.StringVar(&booking.CustomerPhone, "phone", "", "customer phone")
	f.StringVar(&booking.CustomerEmail, "email", "", "customer email")
	f.StringVar(&booking.StaffID, "staff", "", "staff id or name (default any available)")
	f.StringVar(&booking.Notes, "notes", "", "notes")

	calendarCmd.AddCommand(calendarShowCmd, calendarBookCmd)
}

// openCalendar opens a session on the requested month (or the one holding
// --day) with the staff filter applied.
func openCalendar(cmd *cobra.Command) (*console.CalendarSession, func(), error) {
	b, done, err := dial()
	if err != nil {
		return nil, nil, err
	}
	s := console.NewCalendarSession(b, logger, console.WithNotifier(printer(cmd.ErrOrStderr())))
	ctx := ctxOf(cmd)
	s.Open(ctx)

	target := time.Time{}
	switch {
	case calMonth != "":
		target, err = time.ParseInLocation("2006-01", calMonth, time.Local)
	case calDay != "":
		target, err = time.ParseInLocation(calendar.DateLayout, calDay, time.Local)
	}
	if err != nil {
		done()
		return nil, nil, fmt.Errorf("bad month or day: %w", err)
	}
	if !target.IsZero() && !calendar.MonthStart(target).Equal(s.Month()) {
		s.Navigate(ctx, target)
	}
	if calStaff != "" {
		s.SetStaffFilter(ctx, calStaff)
	}
	return s, done, nil
}

func resolveService(svcs []model.Service, v string) string {
	for _, sv := range svcs {
		if sv.ID == v || strings.EqualFold(sv.Name, v) {
			return sv.ID
		}
	}
	return v
}

func resolveStaff(staff []model.Staff, v string) string {
	for _, m := range staff {
		if m.ID == v || strings.EqualFold(m.Name, v) {
			return m.ID
		}
	}
	return v
}
