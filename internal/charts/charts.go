// Package charts renders the spending history as a PNG for the bot to
// attach to the dashboard.
package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/ebusmomentum88/fusion/internal/model"
)

// maxBars keeps the chart readable on a phone screen.
const maxBars = 10

// ChartGenerator renders charts from the transaction history.
type ChartGenerator struct{}

func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{}
}

// GenerateSpendingChart draws the most recent debits as a bar chart,
// oldest to the left. Returns nil bytes when there is nothing to draw.
func (g *ChartGenerator) GenerateSpendingChart(transactions []model.Transaction) ([]byte, error) {
	// History arrives most-recent-first; collect debits, newest first.
	var debits []model.Transaction
	for _, t := range transactions {
		if t.IsDebit() {
			debits = append(debits, t)
		}
	}
	if len(debits) == 0 {
		return nil, nil
	}
	if len(debits) > maxBars {
		debits = debits[:maxBars]
	}

	values := make([]chart.Value, 0, len(debits))
	for i := len(debits) - 1; i >= 0; i-- {
		t := debits[i]
		label := t.Date
		if label == "" {
			label = t.Title
		}
		amount, _ := t.Amount.Abs().Float64()
		values = append(values, chart.Value{
			Label: label,
			Value: amount,
		})
	}

	graph := chart.BarChart{
		Title:  "Recent spending",
		Width:  1200,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		BarWidth: 80,
		XAxis: chart.Style{
			FontSize:  12,
			FontColor: chart.ColorBlack,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("₦%.0f", v.(float64))
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: values,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render spending chart: %w", err)
	}
	return buffer.Bytes(), nil
}
