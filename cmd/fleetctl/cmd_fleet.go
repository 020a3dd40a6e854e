package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"fleetdash/internal/derive"
	"fleetdash/internal/domain/dashboard"
	"fleetdash/internal/domain/driver"
	"fleetdash/internal/domain/user"
	"fleetdash/internal/domain/vehicle"
	"fleetdash/internal/pkg/export"
	dashboardUsecase "fleetdash/internal/service/dashboard"

	"github.com/spf13/cobra"
)

// listFlags are shared by every table command.
type listFlags struct {
	search string
	status string
	sort   string
	desc   bool
	export string
	out    string
}

func (f *listFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.search, "search", "", "Case-insensitive search")
	cmd.Flags().StringVar(&f.status, "status", derive.StatusAll, "Only rows with this status")
	cmd.Flags().StringVar(&f.sort, "sort", "", "Column to sort by")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "Sort descending")
	cmd.Flags().StringVar(&f.export, "export", "", "Write the view as csv or xlsx instead of printing it")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Export file (default <dataset>_<date>.<ext>)")
}

func (f *listFlags) query() derive.Query {
	dir := derive.Asc
	if f.desc {
		dir = derive.Desc
	}
	return derive.Query{Search: f.search, Status: f.status, SortKey: f.sort, SortDir: string(dir)}
}

// writeExport writes t to the --out path or a dated file in the working directory.
func (f *listFlags) writeExport(cmd *cobra.Command, t export.Table) error {
	body, _, err := export.Render(t, f.export)
	if err != nil {
		return err
	}
	path := f.out
	if path == "" {
		path = export.Filename(t.Dataset, export.Ext(f.export), time.Now())
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", len(t.Rows), path)
	return nil
}

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

// ========== Overview ==========

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Summary cards and status bars",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := cli.requireLogin()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		o, err := cli.dashboard.Overview(ctx, token)
		if err != nil {
			return err
		}
		renderOverview(cmd.OutOrStdout(), o)
		return nil
	},
}

// ========== Vehicles ==========

var vehicleFlags listFlags

var vehiclesCmd = &cobra.Command{
	Use:   "vehicles",
	Short: "List vehicles",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := cli.requireLogin()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		view, err := cli.dashboard.Vehicles(ctx, token, vehicleFlags.query(), nil)
		if err != nil {
			return err
		}
		if vehicleFlags.export != "" {
			return vehicleFlags.writeExport(cmd, dashboardUsecase.ExportTable(dashboardUsecase.DatasetVehicles, vehicle.ExportHeader(), view, vehicle.Vehicle.Key))
		}

		renderView(cmd.OutOrStdout(), "Vehicles", view,
			[]string{"Vehicle", "Make", "Model", "Plate", "Mileage", "Status"},
			func(r dashboard.Row[vehicle.Vehicle]) []string {
				v := r.Item
				return []string{v.VehicleNumber, v.Make, v.Model, v.LicensePlate, strconv.Itoa(v.Mileage), badge(string(v.Status))}
			})
		return nil
	},
}

var (
	newVehicle   vehicle.CreateVehicleRequest
	vehicleYear  int
	vehicleState string
)

var vehicleCmd = &cobra.Command{
	Use:   "vehicle",
	Short: "Add or delete a vehicle",
}

var vehicleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a vehicle",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := cli.requireLogin()
		if err != nil {
			return err
		}
		if vehicleYear > 0 {
			newVehicle.Year = &vehicleYear
		}
		newVehicle.Status = vehicle.Status(vehicleState)
		if !newVehicle.Status.Valid() {
			return fmt.Errorf("status must be active, maintenance or inactive")
		}

		ctx, cancel := withTimeout(cmd)
		defer cancel()

		v, err := cli.dashboard.CreateVehicle(ctx, token, cli.session.User().Phone, &newVehicle)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added vehicle %s (id %d).\n", v.VehicleNumber, v.ID)
		return nil
	},
}

var vehicleDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a vehicle by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := cli.requireLogin()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		if err := cli.dashboard.DeleteVehicle(ctx, token, cli.session.User().Phone, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Vehicle deleted.")
		return nil
	},
}

// ========== Drivers ==========

var driverFlags listFlags

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List drivers",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := cli.requireLogin()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		view, err := cli.dashboard.Drivers(ctx, token, driverFlags.query(), nil)
		if err != nil {
			return err
		}
		if driverFlags.export != "" {
			return driverFlags.writeExport(cmd, dashboardUsecase.ExportTable(dashboardUsecase.DatasetDrivers, driver.ExportHeader(), view, driver.Driver.Key))
		}

		renderView(cmd.OutOrStdout(), "Drivers", view,
			[]string{"Name", "Email", "License", "Expires", "Status"},
			func(r dashboard.Row[driver.Driver]) []string {
				d := r.Item
				return []string{d.Name, d.SortField("email"), d.LicenseNumber, d.SortField("license_expiry"), badge(string(d.Status))}
			})
		return nil
	},
}

var (
	newDriver   driver.CreateDriverRequest
	driverState string
)

var driverCmd = &cobra.Command{
	Use:   "driver",
	Short: "Add or delete a driver",
}

var driverAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a driver",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := cli.requireLogin()
		if err != nil {
			return err
		}
		newDriver.Status = driver.Status(driverState)
		if !newDriver.Status.Valid() {
			return fmt.Errorf("status must be available, assigned or inactive")
		}

		ctx, cancel := withTimeout(cmd)
		defer cancel()

		d, err := cli.dashboard.CreateDriver(ctx, token, cli.session.User().Phone, &newDriver)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added driver %s (id %d).\n", d.Name, d.ID)
		return nil
	},
}

var driverDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a driver by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := cli.requireLogin()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		if err := cli.dashboard.DeleteDriver(ctx, token, cli.session.User().Phone, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Driver deleted.")
		return nil
	},
}

// ========== Users ==========

var userFlags listFlags

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users (admins and managers)",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := cli.requireLogin()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		view, err := cli.dashboard.Users(ctx, token, userFlags.query(), nil)
		if err != nil {
			return err
		}
		if userFlags.export != "" {
			return userFlags.writeExport(cmd, dashboardUsecase.ExportTable(dashboardUsecase.DatasetUsers, user.ExportHeader(), &view.View, user.User.Key))
		}

		renderView(cmd.OutOrStdout(), "Users", &view.View,
			[]string{"Name", "Phone", "Email", "Role"},
			func(r dashboard.Row[user.User]) []string {
				u := r.Item
				name := u.Name()
				if u.Phone == view.MasterPhone {
					name += mutedStyle.Render(" (master)")
				}
				return []string{name, u.Phone, u.Email, badge(string(u.Role))}
			})
		return nil
	},
}

var usersRoleCmd = &cobra.Command{
	Use:   "role <phone> <role>",
	Short: "Change a user's role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := cli.requireLogin()
		if err != nil {
			return err
		}
		role := user.Role(args[1])
		if !role.Valid() {
			return fmt.Errorf("role must be one of %v", user.Roles())
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		if _, err := cli.dashboard.UpdateUserRole(ctx, token, cli.session.User().Phone, args[0], role); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s.\n", args[0], role)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <phone>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := cli.requireLogin()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		if err := cli.dashboard.DeleteUser(ctx, token, cli.session.User().Phone, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "User deleted.")
		return nil
	},
}

func init() {
	vehicleFlags.bind(vehiclesCmd)
	driverFlags.bind(driversCmd)
	userFlags.bind(usersCmd)

	vehicleAddCmd.Flags().StringVar(&newVehicle.VehicleNumber, "number", "", "Vehicle number")
	vehicleAddCmd.Flags().StringVar(&newVehicle.Make, "make", "", "Make")
	vehicleAddCmd.Flags().StringVar(&newVehicle.Model, "model", "", "Model")
	vehicleAddCmd.Flags().IntVar(&vehicleYear, "year", 0, "Model year")
	vehicleAddCmd.Flags().StringVar(&newVehicle.LicensePlate, "plate", "", "License plate")
	vehicleAddCmd.Flags().IntVar(&newVehicle.Mileage, "mileage", 0, "Odometer reading")
	vehicleAddCmd.Flags().StringVar(&newVehicle.FuelType, "fuel", "", "Fuel type")
	vehicleAddCmd.Flags().StringVar(&vehicleState, "status", string(vehicle.StatusActive), "active, maintenance or inactive")
	vehicleAddCmd.MarkFlagRequired("number")
	vehicleAddCmd.MarkFlagRequired("make")
	vehicleAddCmd.MarkFlagRequired("model")
	vehicleCmd.AddCommand(vehicleAddCmd, vehicleDeleteCmd)

	driverAddCmd.Flags().StringVar(&newDriver.Name, "name", "", "Full name")
	driverAddCmd.Flags().StringVar(&newDriver.Email, "email", "", "Email")
	driverAddCmd.Flags().StringVar(&newDriver.Phone, "phone", "", "Phone")
	driverAddCmd.Flags().StringVar(&newDriver.LicenseNumber, "license", "", "License number")
	driverAddCmd.Flags().StringVar(&newDriver.LicenseExpiry, "license-expiry", "", "License expiry (YYYY-MM-DD)")
	driverAddCmd.Flags().StringVar(&driverState, "status", string(driver.StatusAvailable), "available, assigned or inactive")
	driverAddCmd.MarkFlagRequired("name")
	driverAddCmd.MarkFlagRequired("license")
	driverCmd.AddCommand(driverAddCmd, driverDeleteCmd)

	usersCmd.AddCommand(usersRoleCmd, usersDeleteCmd)
}
