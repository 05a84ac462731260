package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/warp/rest-planner/holidays"
)

func newHolidaysCmd(a *app) *cobra.Command {
	var (
		country     string
		subdivision string
		year        int
	)
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "Print the resolved holidays of a region",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("country") {
				country, subdivision = a.cfg.Planner.CountryCode, a.cfg.Planner.Subdivision
			}
			if year == 0 {
				year = a.now().Year()
			}
			country, subdivision = holidays.NormalizeRegion(country, subdivision)

			set, err := a.calendar.HolidaysFor(cmd.Context(), country, subdivision, year)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tDAY\tNAME")
			for _, h := range set.InYear(year).Holidays() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", h.Date, h.Date.Weekday().String()[:3], h.Name)
			}
			tw.Flush()
			return nil
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "ISO country code (default: planner.country_code)")
	cmd.Flags().StringVar(&subdivision, "subdivision", "", "Subdivision code")
	cmd.Flags().IntVar(&year, "year", 0, "Year (default: current year)")
	return cmd
}

func newRegionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List the supported countries and subdivisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME\tSOURCE\tSUBDIVISIONS")
			for _, r := range holidays.Regions(a.calendar) {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.CountryCode, r.Name, r.Source, strings.Join(r.Subdivisions, ","))
			}
			tw.Flush()
			return nil
		},
	}
}
