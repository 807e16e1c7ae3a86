package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/librum-dev/librum"
)

var (
	memberName     string
	memberEmail    string
	memberCategory string
)

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Manage members",
}

var membersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a member",
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		member, err := app.Library.AddMember(context.Background(), librum.Member{
			Name:     memberName,
			Email:    memberEmail,
			Category: librum.MemberCategory(memberCategory),
		})
		if err != nil {
			fatal("Failed to add member", err)
		}
		fmt.Printf("Added %s (%s)\n", member.Name, member.MemberID)
	},
}

var membersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List members",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		members, err := app.Library.ListMembers(context.Background())
		if err != nil {
			fatal("Failed to list members", err)
		}
		for _, member := range members {
			fmt.Printf("%s  %-25s %s [%s]\n", member.MemberID, member.Name, member.Email, member.Category)
		}
	},
}

var membersSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy-search members",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		members, err := app.Library.SearchMembers(context.Background(), args[0])
		if err != nil {
			fatal("Search failed", err)
		}
		for _, member := range members {
			fmt.Printf("%s  %s\n", member.MemberID, member.Name)
		}
	},
}

var membersRemoveCmd = &cobra.Command{
	Use:   "remove <member-id>",
	Short: "Remove a member",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		if err := app.Library.RemoveMember(context.Background(), args[0]); err != nil {
			fatal("Failed to remove member", err)
		}
		fmt.Printf("Removed %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(membersCmd)
	membersCmd.AddCommand(membersAddCmd, membersListCmd, membersSearchCmd, membersRemoveCmd)

	membersAddCmd.Flags().StringVar(&memberName, "name", "", "Member name")
	membersAddCmd.Flags().StringVar(&memberEmail, "email", "", "Email address")
	membersAddCmd.Flags().StringVar(&memberCategory, "category", "ADULT", "Category: STUDENT or ADULT")
	membersAddCmd.MarkFlagRequired("name")
	membersAddCmd.MarkFlagRequired("email")
}
