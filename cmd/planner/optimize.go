package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/warp/rest-planner/api"
	"github.com/warp/rest-planner/factory"
	"github.com/warp/rest-planner/generic"
	"github.com/warp/rest-planner/timeoff"
	"go.uber.org/zap"
)

type optimizeOptions struct {
	input    string
	output   string
	save     bool
	showDays bool

	name        string
	year        int
	leave       float64
	country     string
	subdivision string
	minRest     int
	weekend     []string
	closures    []string
	imposed     bool
	blackouts   []string
	booked      []string
}

func newOptimizeCmd(a *app) *cobra.Command {
	o := &optimizeOptions{}
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Optimize one plan and print a summary",
		Long: `Optimize one plan and print a summary.

Flags override the values read from --input. Dates use YYYY-MM-DD and
periods START:END (a single date is a one-day period).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.optimize(cmd, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.input, "input", "i", "", "Plan file (.json, .yaml)")
	f.StringVarP(&o.output, "output", "o", "", "Write the plan as JSON to this file (- for stdout)")
	f.BoolVar(&o.save, "save", false, "Save the plan to --db")
	f.BoolVar(&o.showDays, "days", false, "Print every leave day")

	f.StringVar(&o.name, "name", "", "Plan name")
	f.IntVar(&o.year, "year", 0, "Year to plan (default: planner.year or the current year)")
	f.Float64Var(&o.leave, "leave", 0, "Leave budget in days, halves allowed")
	f.StringVar(&o.country, "country", "", "ISO country code (default: planner.country_code)")
	f.StringVar(&o.subdivision, "subdivision", "", "Subdivision code, e.g. BY or SCT")
	f.IntVar(&o.minRest, "min-rest", 0, "Shortest rest period worth planning for")
	f.StringSliceVar(&o.weekend, "weekend", nil, "Weekend days, e.g. sat,sun (none for no weekend)")
	f.StringArrayVar(&o.closures, "closure", nil, "Company closure START:END (repeatable)")
	f.BoolVar(&o.imposed, "imposed", false, "Closures consume leave")
	f.StringArrayVar(&o.blackouts, "blackout", nil, "Period where no leave may be placed, START:END (repeatable)")
	f.StringArrayVar(&o.booked, "book", nil, "Leave already booked, DATE[:full|half_am|half_pm] (repeatable)")
	return cmd
}

func (a *app) optimize(cmd *cobra.Command, o *optimizeOptions) error {
	ctx := cmd.Context()

	pj, err := o.plan(cmd)
	if err != nil {
		return err
	}
	req, err := a.factory.FromJSON(pj)
	if err != nil {
		return err
	}

	result, err := a.planner.Plan(ctx, req)
	if err != nil {
		return err
	}

	var dto api.PlanDTO
	if o.save {
		if a.store == nil {
			return &generic.ConfigError{Field: "save", Message: "requires --db"}
		}
		var rec generic.PlanRecord
		if rec, dto, err = api.NewPlanRecord(a.factory, req, pj.Name, result, a.now()); err != nil {
			return err
		}
		if err := a.store.SavePlan(ctx, rec); err != nil {
			return err
		}
		a.logger.Info("Plan saved", zap.String("plan_id", string(rec.ID)))
	} else {
		norm := a.factory.ToJSON(pj.Name, req)
		norm.CountryCode, norm.Subdivision = result.CountryCode, result.Subdivision
		dto = api.NewPlanDTO(result, norm, true)
	}

	out := cmd.OutOrStdout()
	if o.output == "-" {
		return writePlanJSON(out, dto)
	}
	if o.output != "" {
		file, err := os.Create(o.output)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		if err := writePlanJSON(file, dto); err != nil {
			file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	printSummary(out, result, dto, o.showDays)
	if dto.ID != "" {
		fmt.Fprintf(out, "\nSaved as %s\n", dto.ID)
	}
	return nil
}

// plan merges the input file with the flags that were set.
func (o *optimizeOptions) plan(cmd *cobra.Command) (factory.PlanJSON, error) {
	var pj factory.PlanJSON
	if o.input != "" {
		data, err := os.ReadFile(o.input)
		if err != nil {
			return pj, fmt.Errorf("failed to read plan file: %w", err)
		}
		if pj, err = factory.DecodePlanFile(o.input, data); err != nil {
			return pj, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		pj.Name = o.name
	}
	if flags.Changed("year") {
		pj.Year = o.year
	}
	if flags.Changed("leave") {
		pj.LeaveBudget = o.leave
	}
	if flags.Changed("country") {
		pj.CountryCode = o.country
	}
	if flags.Changed("subdivision") {
		pj.Subdivision = o.subdivision
	}
	if flags.Changed("min-rest") {
		minRest := o.minRest
		pj.MinRest = &minRest
	}
	if flags.Changed("weekend") {
		pj.WeekendDays = []string{}
		for _, d := range o.weekend {
			if d = strings.TrimSpace(d); d != "" && !strings.EqualFold(d, "none") {
				pj.WeekendDays = append(pj.WeekendDays, d)
			}
		}
	}
	if flags.Changed("imposed") {
		pj.ImposedLeave = o.imposed
	}

	closures, err := periodFlags("closure", o.closures)
	if err != nil {
		return pj, err
	}
	pj.Closures = append(pj.Closures, closures...)

	blackouts, err := periodFlags("blackout", o.blackouts)
	if err != nil {
		return pj, err
	}
	pj.Blackouts = append(pj.Blackouts, blackouts...)

	for _, b := range o.booked {
		date, kind, _ := strings.Cut(b, ":")
		pj.Booked = append(pj.Booked, factory.BookedJSON{Date: date, Kind: kind})
	}
	return pj, nil
}

func periodFlags(flag string, values []string) ([]factory.PeriodJSON, error) {
	var out []factory.PeriodJSON
	for _, v := range values {
		p, err := generic.ParsePeriod(v)
		if err != nil {
			return nil, &generic.ConfigError{Field: flag, Message: err.Error()}
		}
		out = append(out, factory.PeriodJSON{Start: p.Start.String(), End: p.End.String()})
	}
	return out, nil
}

func writePlanJSON(w io.Writer, dto api.PlanDTO) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dto); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return nil
}

// =============================================================================
// SUMMARY
// =============================================================================

func printSummary(w io.Writer, result *timeoff.Result, dto api.PlanDTO, showDays bool) {
	region := result.CountryCode
	if result.Subdivision != "" {
		region += "-" + result.Subdivision
	}
	fmt.Fprintf(w, "Plan %d %s (rest periods of %d+ days)\n\n", result.Year, region, result.MinRest)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Leave used\t%s of %s days\n", trim(dto.UsedLeaveDays), trim(dto.LeaveBudget))
	fmt.Fprintf(tw, "Leave unused\t%s days\n", trim(dto.UnusedLeaveDays))
	fmt.Fprintf(tw, "Rest days\t%d\n", result.TotalRestDays)
	fmt.Fprintf(tw, "Score\t%.1f\n", result.Score)
	if best := result.BestMonth; best != nil {
		fmt.Fprintf(tw, "Best month\t%s (%.2f rest days per leave day)\n", best.Month, best.Efficiency)
	}
	tw.Flush()

	fmt.Fprintln(w, "\nREST PERIODS")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tEND\tDAYS\tLEAVE")
	shown := 0
	for _, p := range dto.RestPeriods {
		if !p.Qualifying {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", p.Start, p.End, p.Days, p.LeaveDays)
		shown++
	}
	tw.Flush()
	if shown == 0 {
		fmt.Fprintln(w, "(none)")
	}

	if len(dto.EfficiencyRanking) > 0 {
		fmt.Fprintln(w, "\nMONTHS BY EFFICIENCY")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "MONTH\tLEAVE\tREST\tREST/LEAVE")
		for _, m := range dto.EfficiencyRanking {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\n", m.MonthName, trim(m.LeaveDays), m.RestDays, m.Efficiency)
		}
		tw.Flush()
	}

	if showDays && len(dto.LeaveDays) > 0 {
		fmt.Fprintln(w, "\nLEAVE DAYS")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tDAY\tLEAVE\tREASON")
		for _, d := range dto.LeaveDays {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Date, d.Weekday[:3], d.Leave, d.Label)
		}
		tw.Flush()
	}
}

// trim prints 2.0 as 2 and 2.5 as 2.5.
func trim(f float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.1f", f), ".0")
}
