package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/librum-dev/librum"
)

var (
	reservationMember string
	reservationStatus string
)

var reservationsCmd = &cobra.Command{
	Use:   "reservations",
	Short: "Manage the reservation queue",
}

var reservationsAddCmd = &cobra.Command{
	Use:   "add <isbn-or-id> <member-id>",
	Short: "Queue a reservation for a fully checked-out book",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		res, err := app.Library.Reserve(context.Background(), args[0], args[1])
		if err != nil {
			fatal("Failed to reserve", err)
		}
		fmt.Printf("Reservation %s queued\n", res.ReservationID)
	},
}

var reservationsListCmd = &cobra.Command{
	Use:   "list [isbn-or-id]",
	Short: "List reservations, optionally for one book",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		var (
			reservations []librum.Reservation
			err          error
		)
		if len(args) == 1 {
			reservations, err = app.Library.ReservationsByISBN(context.Background(), args[0])
		} else {
			reservations, err = app.Library.ListReservations(context.Background())
		}
		if err != nil {
			fatal("Failed to list reservations", err)
		}
		for _, res := range reservations {
			fmt.Printf("%s  isbn=%s member=%s created=%s [%s]\n",
				res.ReservationID, res.ISBN, res.MemberID, res.CreatedAt, res.Status)
		}
	},
}

var reservationsUpdateCmd = &cobra.Command{
	Use:   "update <reservation-id>",
	Short: "Reassign a reservation or move it through the queue",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		res, err := app.Library.UpdateReservation(context.Background(), args[0],
			reservationMember, librum.ReservationStatus(reservationStatus))
		if err != nil {
			fatal("Failed to update reservation", err)
		}
		fmt.Printf("Reservation %s is now %s for %s\n", res.ReservationID, res.Status, res.MemberID)
	},
}

var reservationsRemoveCmd = &cobra.Command{
	Use:   "remove <reservation-id>",
	Short: "Remove a reservation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		if err := app.Library.RemoveReservation(context.Background(), args[0]); err != nil {
			fatal("Failed to remove reservation", err)
		}
		fmt.Printf("Removed %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(reservationsCmd)
	reservationsCmd.AddCommand(reservationsAddCmd, reservationsListCmd,
		reservationsUpdateCmd, reservationsRemoveCmd)

	reservationsUpdateCmd.Flags().StringVar(&reservationMember, "member", "", "New member ID (keep current if empty)")
	reservationsUpdateCmd.Flags().StringVar(&reservationStatus, "status", "", "New status: QUEUED, READY, or FULFILLED")
}
