package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
)

func printHeader(industry string) {
	pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("Market Radar - " + industry)
	pterm.Println()
}

func printReport(r *model.Report) {
	pterm.DefaultSection.Println("Summary")
	pterm.DefaultBox.WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).Println(r.Summary)

	printList("Drivers", r.Drivers)
	printList("Competitors", r.Competitors)

	if len(r.ImpactRadar) > 0 {
		pterm.DefaultSection.Println("Impact Radar")
		_ = pterm.DefaultTable.
			WithHasHeader().
			WithBoxed().
			WithData(radarTable(r.ImpactRadar)).
			Render()
	}

	printList("Opportunities", r.Opportunities)
	printList("Risks", r.Risks)

	pterm.DefaultSection.Println("90-Day Plan")
	printPhase("Days 0-30", r.NinetyDayPlan.Days0To30)
	printPhase("Days 30-60", r.NinetyDayPlan.Days30To60)
	printPhase("Days 60-90", r.NinetyDayPlan.Days60To90)

	printList("Sources", r.Sources)
}

func printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	pterm.DefaultSection.Println(title)
	bullets := make([]pterm.BulletListItem, 0, len(items))
	for _, it := range items {
		bullets = append(bullets, pterm.BulletListItem{Level: 0, Text: it})
	}
	_ = pterm.DefaultBulletList.WithItems(bullets).Render()
}

func printPhase(title string, items []string) {
	pterm.DefaultSection.WithLevel(2).Println(title)
	if len(items) == 0 {
		pterm.Println(pterm.Gray("  (none)"))
		return
	}
	for _, it := range items {
		pterm.Println("  - " + it)
	}
}

// radarTable 影响雷达表格，首行为表头
func radarTable(entries []model.ImpactRadarEntry) pterm.TableData {
	data := pterm.TableData{{"Event", "Level", "Score", "Why", "Actions", "URL"}}
	for _, e := range entries {
		event := e.Event
		if event == "" {
			event = "-"
		}
		data = append(data, []string{
			event,
			levelColor(e.ImpactLevel),
			fmt.Sprintf("%d", e.Score),
			strings.Join(e.Why, "; "),
			strings.Join(e.Actions, "; "),
			e.URL,
		})
	}
	return data
}

func levelColor(l model.ImpactLevel) string {
	switch l {
	case model.ImpactHigh:
		return pterm.Red(string(l))
	case model.ImpactLow:
		return pterm.Green(string(l))
	default:
		return pterm.Yellow(string(l))
	}
}
