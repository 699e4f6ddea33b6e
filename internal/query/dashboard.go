package query

import (
	"math"
	"sort"
	"time"

	"flooring-cli/internal/model"
)

// FallbackVessel is credited with compartments that name no vessel at all.
const FallbackVessel = "CVN74"

const (
	recentLimit    = 6
	installerLimit = 6
	trendWeeks     = 12
)

type Count struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type Production struct {
	Name    string  `json:"name"`
	SqFt    float64 `json:"sqft"`
	Percent float64 `json:"percent,omitempty"`
}

type Activity struct {
	Vessel      string `json:"vessel"`
	Compartment string `json:"compartment"`
	Phase       string `json:"phase"`
	Date        string `json:"date"`
}

type TrendPoint struct {
	WeekStart string  `json:"weekStart"`
	Label     string  `json:"label"`
	SqFt      float64 `json:"sqft"`
	Entries   int     `json:"entries"`
}

type Dashboard struct {
	TotalSqFt    float64 `json:"totalSqft"`
	Compartments int     `json:"compartments"`
	QCPassed     int     `json:"qcPassed"`
	QCRate       int     `json:"qcRate"`
	Installers   int     `json:"installers"`
	Vessels      int     `json:"vessels"`
	AvgUnitSize  int     `json:"avgUnitSize"`

	Phases           []Count      `json:"phases"`
	VesselProduction []Production `json:"vesselProduction"`
	InstallerShare   []Production `json:"installerShare"`
	Recent           []Activity   `json:"recent"`
	Trend            []TrendPoint `json:"trend"`
}

// Summarize computes the dashboard over active reports. QC counts come from
// phase descriptions, not the stored flag.
func Summarize(reports []model.Report) Dashboard {
	var d Dashboard
	installers := map[string]bool{}
	vessels := map[string]bool{}
	phases := map[string]int{}
	vesselSqFt := map[string]float64{}
	installerSqFt := map[string]float64{}
	var recent []Activity

	for _, r := range reports {
		for _, c := range r.Compartments {
			sq := 0.0
			if c.SqFt != nil {
				sq = *c.SqFt
			}
			d.TotalSqFt += sq
			d.Compartments++
			if model.IsQCPassed(c) {
				d.QCPassed++
			}
			if c.Installer != "" {
				installers[c.Installer] = true
			}
			who := c.Installer
			if who == "" {
				who = "Unknown"
			}
			installerSqFt[who] += sq

			v := c.Vessel
			if v == "" {
				v = r.Vessel
			}
			if v == "" {
				v = FallbackVessel
			}
			vessels[v] = true
			vesselSqFt[v] += sq

			if len(c.Phases) > 0 {
				phases[c.LatestPhase()]++
				for _, p := range c.Phases {
					recent = append(recent, Activity{Vessel: v, Compartment: c.Name, Phase: p.Description, Date: p.Date})
				}
			}
		}
	}

	d.Installers = len(installers)
	d.Vessels = len(vessels)
	if d.Compartments > 0 {
		d.QCRate = int(math.Round(float64(d.QCPassed) / float64(d.Compartments) * 100))
		d.AvgUnitSize = int(math.Round(d.TotalSqFt / float64(d.Compartments)))
	}

	d.Phases = make([]Count, 0, len(phases))
	for name, n := range phases {
		d.Phases = append(d.Phases, Count{Name: name, Value: n})
	}
	sort.Slice(d.Phases, func(i, j int) bool {
		if d.Phases[i].Value != d.Phases[j].Value {
			return d.Phases[i].Value > d.Phases[j].Value
		}
		return d.Phases[i].Name < d.Phases[j].Name
	})

	d.VesselProduction = rankProduction(vesselSqFt, 0)
	d.InstallerShare = rankProduction(installerSqFt, installerLimit)
	var total float64
	for _, sq := range installerSqFt {
		total += sq
	}
	for i := range d.InstallerShare {
		if total > 0 {
			d.InstallerShare[i].Percent = d.InstallerShare[i].SqFt / total * 100
		}
	}

	sort.SliceStable(recent, func(i, j int) bool {
		return activityDate(recent[i]).After(activityDate(recent[j]))
	})
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	d.Recent = append([]Activity{}, recent...)
	d.Trend = Trend(reports)
	return d
}

func rankProduction(m map[string]float64, limit int) []Production {
	out := make([]Production, 0, len(m))
	for name, sq := range m {
		out = append(out, Production{Name: name, SqFt: sq})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SqFt != out[j].SqFt {
			return out[i].SqFt > out[j].SqFt
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func activityDate(a Activity) time.Time {
	t, _ := time.Parse(model.DateLayout, model.NormalizeDate(a.Date))
	return t
}

// Trend is production per report for the latest twelve weeks by week start.
func Trend(reports []model.Report) []TrendPoint {
	sorted := append([]model.Report(nil), reports...)
	weekStart := func(r model.Report) time.Time {
		t, _ := time.Parse(model.DateLayout, model.NormalizeDate(r.WeekStart))
		return t
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return weekStart(sorted[i]).Before(weekStart(sorted[j]))
	})
	if len(sorted) > trendWeeks {
		sorted = sorted[len(sorted)-trendWeeks:]
	}
	out := make([]TrendPoint, 0, len(sorted))
	for _, r := range sorted {
		label := ""
		if t := weekStart(r); !t.IsZero() {
			label = t.Format("Jan 2")
		}
		out = append(out, TrendPoint{
			WeekStart: r.WeekStart,
			Label:     label,
			SqFt:      r.TotalSqFt(),
			Entries:   len(r.Compartments),
		})
	}
	return out
}
