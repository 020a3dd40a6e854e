package main

import (
	"fmt"
	"strconv"
	"time"

	"fleetdash/internal/derive"
	"fleetdash/internal/domain/dashboard"
	"fleetdash/internal/domain/record"
	"fleetdash/internal/pkg/fuel"
	dashboardUsecase "fleetdash/internal/service/dashboard"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// The CLI keeps a single unscoped record set per data dir.
const localNamespace = ""

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// ========== Trips ==========

var tripFlags listFlags

var tripsCmd = &cobra.Command{
	Use:   "trips",
	Short: "Trip log kept on this machine",
}

var tripsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trips",
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := tripView(cmd, tripFlags.query())
		if err != nil {
			return err
		}
		renderView(cmd.OutOrStdout(), "Trips", view,
			[]string{"Vehicle", "Driver", "Route", "Date", "Km", "Fuel", "Cost"},
			func(r dashboard.Row[record.Trip]) []string {
				t := r.Item
				return []string{t.VehicleNumber, t.Driver, t.Origin + " → " + t.Destination, t.Date,
					strconv.FormatFloat(t.DistanceKm, 'f', -1, 64), badge(string(t.FuelType)), money(t.TotalCost)}
			})
		return nil
	},
}

var tripsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export trips as csv or xlsx",
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := tripView(cmd, tripFlags.query())
		if err != nil {
			return err
		}
		if tripFlags.export == "" {
			tripFlags.export = "csv"
		}
		return tripFlags.writeExport(cmd, dashboardUsecase.ExportTable(dashboardUsecase.DatasetTrips, record.TripExportHeader(), view, record.Trip.Key))
	},
}

var (
	newTrip  record.CreateTripRequest
	tripFuel string
)

var tripsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a trip; the cost is estimated from the fuel table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if newTrip.Date == "" {
			newTrip.Date = time.Now().Format(time.DateOnly)
		}
		newTrip.FuelType = fuel.Type(tripFuel)

		t, err := cli.records.AddTrip(cmd.Context(), localNamespace, &newTrip)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged trip %s: %s km at %s/km, total %s.\n",
			t.ID, strconv.FormatFloat(t.DistanceKm, 'f', -1, 64), money(t.CostPerKm), money(t.TotalCost))
		return nil
	},
}

var tripsRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove a trip",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.records.RemoveTrip(cmd.Context(), localNamespace, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Trip removed.")
		return nil
	},
}

func tripView(cmd *cobra.Command, q derive.Query) (*dashboard.View[record.Trip], error) {
	items, err := cli.records.ListTrips(cmd.Context(), localNamespace, derive.Query{})
	if err != nil {
		return nil, err
	}
	return dashboardUsecase.TripView(items, q, nil), nil
}

// ========== Maintenance ==========

var maintenanceFlags listFlags

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Maintenance log kept on this machine",
}

var maintenanceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List maintenance jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := maintenanceView(cmd, maintenanceFlags.query())
		if err != nil {
			return err
		}
		renderView(cmd.OutOrStdout(), "Maintenance", view,
			[]string{"Vehicle", "Type", "Description", "Date", "Cost"},
			func(r dashboard.Row[record.Maintenance]) []string {
				m := r.Item
				return []string{m.VehicleNumber, badge(string(m.Type)), m.Description, m.Date, money(m.Cost)}
			})

		totals, err := cli.records.Totals(cmd.Context(), localNamespace)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(fmt.Sprintf("%d jobs, total spend %s", totals.MaintenanceJobs, money(totals.MaintenanceCost))))
		return nil
	},
}

var maintenanceExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export maintenance jobs as csv or xlsx",
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := maintenanceView(cmd, maintenanceFlags.query())
		if err != nil {
			return err
		}
		if maintenanceFlags.export == "" {
			maintenanceFlags.export = "csv"
		}
		return maintenanceFlags.writeExport(cmd, dashboardUsecase.ExportTable(dashboardUsecase.DatasetMaintenance, record.MaintenanceExportHeader(), view, record.Maintenance.Key))
	},
}

var (
	newMaintenance  record.CreateMaintenanceRequest
	maintenanceType string
)

var maintenanceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a maintenance job",
	RunE: func(cmd *cobra.Command, args []string) error {
		if newMaintenance.Date == "" {
			newMaintenance.Date = time.Now().Format(time.DateOnly)
		}
		newMaintenance.Type = record.MaintenanceType(maintenanceType)

		m, err := cli.records.AddMaintenance(cmd.Context(), localNamespace, &newMaintenance)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged %s for %s (id %s).\n", m.Type, m.VehicleNumber, m.ID)
		return nil
	},
}

var maintenanceRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove a maintenance job",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.records.RemoveMaintenance(cmd.Context(), localNamespace, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Maintenance job removed.")
		return nil
	},
}

func maintenanceView(cmd *cobra.Command, q derive.Query) (*dashboard.View[record.Maintenance], error) {
	items, err := cli.records.ListMaintenance(cmd.Context(), localNamespace, derive.Query{})
	if err != nil {
		return nil, err
	}
	return dashboardUsecase.MaintenanceView(items, q, nil), nil
}

// ========== Fuel ==========

var fuelCmd = &cobra.Command{
	Use:   "fuel <distance-km> <petrol|diesel|cng>",
	Short: "Estimate the fuel cost of a trip",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := fuel.ParseDistance(args[0])
		if err != nil {
			return err
		}
		t := fuel.Type(args[1])
		rate, ok := fuel.RateFor(t)
		if !ok {
			return fmt.Errorf("fuel type must be one of %v", fuel.Types())
		}
		cost := fuel.Estimate(km, t)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s per unit, %s km per unit\n", t, money(rate.PricePerUnit), strconv.FormatFloat(rate.KmPerUnit, 'f', -1, 64))
		fmt.Fprintln(cmd.OutOrStdout(), lipgloss.JoinHorizontal(lipgloss.Top,
			valueCard("Cost per km", money(cost.CostPerKm)),
			valueCard("Total", money(cost.TotalCost)),
		))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{tripsListCmd, tripsExportCmd} {
		tripFlags.bind(c)
	}
	for _, c := range []*cobra.Command{maintenanceListCmd, maintenanceExportCmd} {
		maintenanceFlags.bind(c)
	}

	tripsAddCmd.Flags().StringVar(&newTrip.VehicleNumber, "vehicle", "", "Vehicle number")
	tripsAddCmd.Flags().StringVar(&newTrip.Driver, "driver", "", "Driver name")
	tripsAddCmd.Flags().StringVar(&newTrip.Origin, "from", "", "Origin")
	tripsAddCmd.Flags().StringVar(&newTrip.Destination, "to", "", "Destination")
	tripsAddCmd.Flags().StringVar(&newTrip.Date, "date", "", "Trip date (YYYY-MM-DD, default today)")
	tripsAddCmd.Flags().Float64Var(&newTrip.DistanceKm, "km", 0, "Distance in km")
	tripsAddCmd.Flags().StringVar(&tripFuel, "fuel", string(fuel.Petrol), "petrol, diesel or cng")
	tripsCmd.AddCommand(tripsListCmd, tripsAddCmd, tripsRemoveCmd, tripsExportCmd)

	maintenanceAddCmd.Flags().StringVar(&newMaintenance.VehicleNumber, "vehicle", "", "Vehicle number")
	maintenanceAddCmd.Flags().StringVar(&maintenanceType, "type", string(record.MaintenanceOilChange), "Job type")
	maintenanceAddCmd.Flags().StringVar(&newMaintenance.Description, "description", "", "What was done")
	maintenanceAddCmd.Flags().StringVar(&newMaintenance.Date, "date", "", "Job date (YYYY-MM-DD, default today)")
	maintenanceAddCmd.Flags().Float64Var(&newMaintenance.Cost, "cost", 0, "Cost")
	maintenanceCmd.AddCommand(maintenanceListCmd, maintenanceAddCmd, maintenanceRemoveCmd, maintenanceExportCmd)
}
