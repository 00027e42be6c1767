package main

import (
	"fmt"
	"io"

	"github.com/jrsteele09/pcrs-client/orders"
	"github.com/jrsteele09/pcrs-client/users"
	"github.com/spf13/cobra"
)

func (a *app) ordersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "orders", Short: "View and manage orders"}

	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List the orders visible to you",
		PreRunE: a.guarded(),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.client.Orders.List(cmd.Context())
			if err != nil {
				return err
			}
			a.table("ID\tPRODUCT\tQTY\tTOTAL\tSTATUS\tVENDOR PHONE", func(w io.Writer) {
				for _, o := range items {
					fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%s\t%s\n", o.ID, o.ProductName(), o.Quantity, o.Total, o.Status, o.VendorPhone())
				}
			})
			return nil
		},
	}

	var in orders.Input
	placeCmd := &cobra.Command{
		Use:     "place",
		Short:   "Order a product",
		PreRunE: a.guarded(users.RoleUser),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.client.Orders.Create(cmd.Context(), in)
			if err != nil {
				return fieldError(err)
			}
			fmt.Fprintf(a.out, "Placed order %d: %d x %s, total %.2f\n", o.ID, o.Quantity, o.ProductName(), o.Total)
			return nil
		},
	}
	placeCmd.Flags().IntVar(&in.Product, "product", 0, "product id")
	placeCmd.Flags().IntVar(&in.Quantity, "quantity", 1, "quantity")

	confirmCmd := &cobra.Command{
		Use:     "confirm <id>",
		Short:   "Confirm an order for one of your products",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.guarded(users.RoleVendor, users.RoleAdmin),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			o, err := a.client.Orders.Confirm(cmd.Context(), id)
			if err != nil {
				return fieldError(err)
			}
			fmt.Fprintf(a.out, "Order %d is %s\n", o.ID, o.Status)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete or cancel an order",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.guarded(),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			if err := a.client.Orders.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted order %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(listCmd, placeCmd, confirmCmd, deleteCmd)
	return cmd
}
