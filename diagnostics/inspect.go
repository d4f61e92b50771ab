// Package diagnostics explains how a month summary was reached. Nothing in
// the accounting path calls it; the CLI breakdown command and the API
// breakdown endpoint do.
package diagnostics

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/timesheet"
)

// EntryRow describes one logged day of the calendar.
type EntryRow struct {
	Date        generic.Day
	Minutes     int
	Shifts      []string
	Kind        timesheet.DayKind
	Holiday     bool
	HolidayName string
}

// MonthRow is one breakdown row with rounded minutes.
type MonthRow struct {
	Month     generic.Month
	OL        int
	FTL       int
	OS        int
	CS        int
	Counted   bool // contributes to the cumulative OS
	DebtMonth bool // its surplus falls due in the target month
}

// Report is the full inspection of a calendar at a target month.
type Report struct {
	CalendarID   string
	CalendarName string
	Target       generic.Month
	Entries      []EntryRow
	Months       []MonthRow
	Summary      timesheet.MonthSummary
}

// Inspect builds the report of cal at target. classifier may be nil.
func Inspect(cal timesheet.Calendar, target generic.Month, classifier *timesheet.DayClassifier) Report {
	if classifier == nil {
		classifier = timesheet.NewDayClassifier(nil)
	}

	r := Report{
		CalendarID:   cal.ID,
		CalendarName: cal.Name,
		Target:       target,
		Summary:      timesheet.SummarizeMonth(cal.Entries, target),
	}

	for _, e := range cal.Entries {
		cl := classifier.Classify(e.Date)
		row := EntryRow{
			Date:        e.Date,
			Minutes:     e.TotalMinutes().Round(),
			Shifts:      make([]string, 0, len(e.Shifts)),
			Kind:        cl.Kind,
			Holiday:     cl.Holiday,
			HolidayName: cl.HolidayName,
		}
		for _, s := range e.Shifts {
			row.Shifts = append(row.Shifts, fmt.Sprintf("%s %s-%s", s.Type, s.StartTime, s.EndTime))
		}
		r.Entries = append(r.Entries, row)
	}

	debtMonth := timesheet.DebtMonth(target)
	for _, f := range timesheet.Breakdown(cal.Entries, target) {
		r.Months = append(r.Months, MonthRow{
			Month:     f.Month,
			OL:        f.OL.Round(),
			FTL:       f.FTL.Round(),
			OS:        f.OS.Round(),
			CS:        f.CS.Round(),
			Counted:   f.HasLoggedTime(),
			DebtMonth: f.Month == debtMonth,
		})
	}
	return r
}

// WriteText renders the report as aligned plain text.
func (r Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Calendar %s (%s), target %s\n\n", r.CalendarName, r.CalendarID, r.Target)

	fmt.Fprintln(tw, "DATE\tKIND\tMINUTES\tSHIFTS")
	for _, e := range r.Entries {
		kind := e.Kind.String()
		if e.Holiday {
			kind += " (" + e.HolidayName + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.Date, kind, e.Minutes, strings.Join(e.Shifts, ", "))
	}

	fmt.Fprintln(tw, "\nMONTH\tOL\tFTL\tOS\tCS\tNOTE")
	for _, m := range r.Months {
		var notes []string
		if !m.Counted {
			notes = append(notes, "not counted")
		}
		if m.DebtMonth {
			notes = append(notes, "due now")
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n", m.Month, m.OL, m.FTL, m.OS, m.CS, strings.Join(notes, ", "))
	}

	s := r.Summary
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "FTL\t%s\n", timesheet.FormatMinutes(s.TotalFTL))
	fmt.Fprintf(tw, "OL\t%s\n", timesheet.FormatMinutes(s.TotalOL))
	fmt.Fprintf(tw, "Weekend\t%s\n", timesheet.FormatMinutes(s.TotalWeekend))
	fmt.Fprintf(tw, "Workdays\t%d\n", s.WorkDays)
	fmt.Fprintf(tw, "OS month / total\t%s / %s\n", timesheet.FormatMinutes(s.OSMonth), timesheet.FormatMinutes(s.OSTotal))
	fmt.Fprintf(tw, "CS month / total\t%s / %s\n", timesheet.FormatMinutes(s.CSMonth), timesheet.FormatMinutes(s.CSTotal))
	fmt.Fprintf(tw, "CS balance\t%s\n", timesheet.FormatMinutes(s.CSBalance))
	fmt.Fprintf(tw, "Debt due\t%s\n", timesheet.FormatMinutes(s.OSDebt90d))

	return tw.Flush()
}
