package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jrsteele09/pcrs-client/customers"
	"github.com/jrsteele09/pcrs-client/poller"
	"github.com/jrsteele09/pcrs-client/resource"
	"github.com/jrsteele09/pcrs-client/upload"
	"github.com/jrsteele09/pcrs-client/users"
	"github.com/jrsteele09/pcrs-client/vendors"
	"github.com/spf13/cobra"
)

func idArg(args []string) (int, error) {
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func (a *app) pageFooter(p resource.Pagination) {
	fmt.Fprintf(a.out, "page %d of %d (%d total)\n", p.Page, max(p.Pages, 1), p.Count)
}

func (a *app) vendorsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "vendors", Short: "Manage vendor accounts (admin)"}

	var page int
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List vendors",
		PreRunE: a.guarded(users.RoleAdmin),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client.Vendors.List(cmd.Context(), page)
			if err != nil {
				return err
			}
			a.table("ID\tUSERNAME\tCOMPANY\tEMAIL\tPHONE", func(w io.Writer) {
				for _, v := range p.Results {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", v.ID, v.Username, v.CompanyName, v.Email, v.Phone)
				}
			})
			a.pageFooter(p.Pagination(page, a.cfg.GetPageSize()))
			return nil
		},
	}
	listCmd.Flags().IntVar(&page, "page", 1, "page number")

	var reg vendors.Registration
	registerCmd := &cobra.Command{
		Use:     "register",
		Short:   "Create a vendor account",
		PreRunE: a.guarded(users.RoleAdmin),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.client.Vendors.Register(cmd.Context(), reg)
			if err != nil {
				return fieldError(err)
			}
			fmt.Fprintf(a.out, "Registered vendor %d (%s)\n", v.ID, v.CompanyName)
			return nil
		},
	}
	registerCmd.Flags().StringVar(&reg.Username, "username", "", "username")
	registerCmd.Flags().StringVar(&reg.Email, "email", "", "email address")
	registerCmd.Flags().StringVar(&reg.Password, "password", "", "initial password")
	registerCmd.Flags().StringVar(&reg.CompanyName, "company", "", "company name")
	registerCmd.Flags().StringVar(&reg.Phone, "phone", "", "phone number")
	registerCmd.Flags().StringVar(&reg.Address, "address", "", "postal address")

	deleteCmd := &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete a vendor and its products",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.guarded(users.RoleAdmin),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			if err := a.client.Vendors.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted vendor %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(listCmd, registerCmd, deleteCmd)
	return cmd
}

func (a *app) customersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "customers", Short: "Browse customer accounts (admin)"}

	var page int
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List customers",
		PreRunE: a.guarded(users.RoleAdmin),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client.Customers.List(cmd.Context(), page)
			if err != nil {
				return err
			}
			a.table("ID\tUSERNAME\tNAME\tEMAIL", func(w io.Writer) {
				for _, c := range p.Results {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.Username, customerName(c), c.Email)
				}
			})
			a.pageFooter(p.Pagination(page, a.cfg.GetPageSize()))
			return nil
		},
	}
	listCmd.Flags().IntVar(&page, "page", 1, "page number")

	cmd.AddCommand(listCmd)
	return cmd
}

func customerName(c customers.Customer) string {
	return users.Profile{Username: c.Username, FirstName: c.FirstName, LastName: c.LastName}.DisplayName()
}

func (a *app) productsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "products", Short: "Manage the product catalogue"}

	var page int
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List products (vendors see their own)",
		PreRunE: a.guarded(users.RoleAdmin, users.RoleVendor),
		RunE: func(cmd *cobra.Command, args []string) error {
			list := a.client.Products.AdminProducts
			if a.client.Sessions.Role() == users.RoleVendor.String() {
				list = a.client.Products.VendorProducts
			}
			p, err := list(cmd.Context(), page)
			if err != nil {
				return err
			}
			a.table("ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tVENDOR", func(w io.Writer) {
				for _, prod := range p.Results {
					fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%d\t%s\n", prod.ID, prod.Name, prod.Category, prod.Price, prod.Stock, prod.VendorName())
				}
			})
			a.pageFooter(p.Pagination(page, a.cfg.GetPageSize()))
			return nil
		},
	}
	listCmd.Flags().IntVar(&page, "page", 1, "page number")

	var imagesPath string
	var wait bool
	uploadCmd := &cobra.Command{
		Use:     "upload <spreadsheet.csv>",
		Short:   "Bulk import products from a spreadsheet and optional images zip",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.guarded(users.RoleAdmin),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer sheet.Close()

			var images io.Reader
			if imagesPath != "" {
				f, err := os.Open(imagesPath)
				if err != nil {
					return err
				}
				defer f.Close()
				images = f
			}
			job, handle, err := a.client.Products.BulkUpload(cmd.Context(), filepath.Base(args[0]), sheet, filepath.Base(imagesPath), images)
			if err != nil {
				return fieldError(err)
			}
			return a.reportUpload(cmd.Context(), job, handle, wait)
		},
	}
	uploadCmd.Flags().StringVar(&imagesPath, "images", "", "zip of product images")
	uploadCmd.Flags().BoolVar(&wait, "wait", true, "wait until the imported rows appear")

	deleteCmd := &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete a product",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.guarded(users.RoleAdmin, users.RoleVendor),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			remove := a.client.Products.DeleteAdminProduct
			if a.client.Sessions.Role() == users.RoleVendor.String() {
				remove = a.client.Products.DeleteVendorProduct
			}
			if err := remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted product %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(listCmd, uploadCmd, deleteCmd)
	return cmd
}

func (a *app) benchmarksCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "benchmarks", Short: "Manage hardware benchmark data (admin)"}

	var page int
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List benchmarks",
		PreRunE: a.guarded(users.RoleAdmin),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client.Benchmarks.List(cmd.Context(), page)
			if err != nil {
				return err
			}
			a.table("ID\tCOMPONENT\tNAME\tSCORE", func(w io.Writer) {
				for _, b := range p.Results {
					fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\n", b.ID, b.Component, b.Name, b.Score)
				}
			})
			a.pageFooter(p.Pagination(page, a.cfg.GetPageSize()))
			return nil
		},
	}
	listCmd.Flags().IntVar(&page, "page", 1, "page number")

	var wait bool
	uploadCmd := &cobra.Command{
		Use:     "upload <benchmarks.csv>",
		Short:   "Bulk import benchmarks from a spreadsheet",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.guarded(users.RoleAdmin),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer sheet.Close()
			job, handle, err := a.client.Benchmarks.UploadSpreadsheet(cmd.Context(), filepath.Base(args[0]), sheet)
			if err != nil {
				return fieldError(err)
			}
			return a.reportUpload(cmd.Context(), job, handle, wait)
		},
	}
	uploadCmd.Flags().BoolVar(&wait, "wait", true, "wait until the imported rows appear")

	cmd.AddCommand(listCmd, uploadCmd)
	return cmd
}

// reportUpload prints the accepted job and, when wait is set, blocks until
// the list poll finishes.
func (a *app) reportUpload(ctx context.Context, job upload.Job, handle *poller.Handle, wait bool) error {
	fmt.Fprintln(a.out, job.Message)
	if !wait {
		handle.Stop()
		return nil
	}
	fmt.Fprintln(a.out, "Waiting for the import to finish...")
	res, err := handle.Wait(ctx)
	if err != nil {
		handle.Stop()
		return err
	}
	switch {
	case res.Completed:
		fmt.Fprintf(a.out, "Import finished after %d checks\n", res.Polls)
	case res.TimedOut:
		fmt.Fprintln(a.out, "Import still running; check the list again later")
	}
	return nil
}
