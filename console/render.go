package console

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/secops-console/dashboard"
	"github.com/jrsteele09/secops-console/loginevents"
	"github.com/jrsteele09/secops-console/refresh"
)

// TimeRangeLabel names one of the offered time ranges, or spells out the hours.
func TimeRangeLabel(hours int) string {
	for _, tr := range dashboard.TimeRanges {
		if tr.Hours == hours {
			return tr.Label
		}
	}
	return fmt.Sprintf("Last %d Hours", hours)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// RenderDashboard prints one refresh state. Before any data has arrived only the
// loading line or the error is shown; afterwards a failure is reported above the last
// good data.
func RenderDashboard(w io.Writer, state refresh.State[dashboard.Snapshot]) {
	if !state.HasData {
		if state.Err != nil {
			fmt.Fprintf(w, "Error: %v\n", state.Err)
			return
		}
		fmt.Fprintln(w, "Loading dashboard...")
		return
	}

	snap := state.Data
	fmt.Fprintf(w, "=== Security Dashboard: %s ===\n", TimeRangeLabel(snap.Hours))
	if state.Err != nil {
		fmt.Fprintf(w, "Refresh failed, showing previous data: %v\n", state.Err)
	}
	if !state.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "Updated %s\n", state.UpdatedAt.Format("15:04:05"))
	}

	RenderStats(w, snap.Stats)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Active alerts")
	RenderAlerts(w, snap.Alerts)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Top risk users")
	RenderTopRisks(w, snap.TopRisks)
	fmt.Fprintln(w)
	RenderTimeline(w, snap.Timeline)
}

func RenderStats(w io.Writer, s dashboard.Stats) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Total logins\t%d\n", s.TotalLogins)
	fmt.Fprintf(tw, "Anomalous logins\t%d (%s)\n", s.AnomalousLogins, dashboard.FormatPercentage(s.AnomalyRate))
	fmt.Fprintf(tw, "Active alerts\t%d\n", s.ActiveAlerts)
	fmt.Fprintf(tw, "High risk logins\t%d\n", s.HighRiskLogins)
	fmt.Fprintf(tw, "Average risk\t%s\n", dashboard.FormatRiskScore(s.AvgRiskScore))
	_ = tw.Flush()
}

func RenderAlerts(w io.Writer, alerts []dashboard.Alert) {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSEVERITY\tTYPE\tUSER\tTIME\tRESOLVED\tDESCRIPTION")
	for _, a := range alerts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
			a.ID, strings.ToUpper(string(a.Severity)), a.AlertType, a.Username, a.Timestamp, a.Resolved, a.Description)
	}
	_ = tw.Flush()
}

func RenderTopRisks(w io.Writer, risks []dashboard.TopRiskUser) {
	if len(risks) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "USER\tMAX RISK\tLEVEL\tAVG RISK\tANOMALIES\tLOGINS")
	for _, r := range risks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n",
			r.Username,
			dashboard.FormatRiskScore(r.MaxRiskScore),
			dashboard.RiskLevel(r.MaxRiskScore),
			dashboard.FormatRiskScore(r.AvgRiskScore),
			r.AnomalyCount,
			r.TotalLogins)
	}
	_ = tw.Flush()
}

// RenderTimeline prints the hourly buckets as a bar per hour.
func RenderTimeline(w io.Writer, points []dashboard.TimelinePoint) {
	fmt.Fprintf(w, "Login activity (%d hours with logins)\n", len(points))
	peak := 0
	for _, p := range points {
		peak = max(peak, p.TotalLogins)
	}
	const width = 40
	tw := newTable(w)
	for _, p := range points {
		bar := 0
		if peak > 0 {
			bar = p.TotalLogins * width / peak
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", p.Timestamp, p.TotalLogins, p.AnomalousLogins, strings.Repeat("#", bar))
	}
	_ = tw.Flush()
}

func RenderEvents(w io.Writer, events []loginevents.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTIME\tUSER\tIP\tLOCATION\tSUCCESS\tRISK\tANOMALY")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s, %s\t%t\t%s\t%t\n",
			e.ID, e.Timestamp, e.Username, e.IPAddress, e.Location.City, e.Location.Country,
			e.Success, dashboard.FormatRiskScore(e.RiskScore), e.IsAnomaly)
	}
	_ = tw.Flush()
}
