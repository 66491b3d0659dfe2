package pdf

import (
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotocfg "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

// InvoiceData is everything the PDF needs, already formatted upstream so
// this package stays free of model imports.
type InvoiceData struct {
	InvoiceId      int
	ContractorName string
	ContractorAbn  string
	WeekLabel      string
	WeekStart      string
	WeekEnd        string
	Lines          []InvoiceLine
	TotalHours     decimal.Decimal
	HourlyRate     decimal.Decimal
	TotalAmount    decimal.Decimal
	SubmittedAt    string
}

type InvoiceLine struct {
	BuilderName  string
	LocationName string
	DailyHours   [6]decimal.Decimal
	Hours        decimal.Decimal
}

// Renderer produces the invoice PDF bytes. The workflow treats rendering as
// best-effort, so implementations may fail without blocking submission.
type Renderer interface {
	Render(data *InvoiceData) ([]byte, error)
}

type MarotoRenderer struct{}

func NewMarotoRenderer() *MarotoRenderer {
	return &MarotoRenderer{}
}

var dayHeaders = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func (r *MarotoRenderer) Render(data *InvoiceData) ([]byte, error) {
	cfg := marotocfg.NewBuilder().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()
	m := maroto.New(cfg)

	m.AddRows(
		row.New(12).Add(
			text.NewCol(8, "Worker Invoice", props.Text{Size: 16, Style: fontstyle.Bold}),
			text.NewCol(4, "#"+strconv.Itoa(data.InvoiceId), props.Text{Size: 12, Align: align.Right}),
		),
		row.New(6).Add(
			text.NewCol(6, data.ContractorName, props.Text{Size: 10, Style: fontstyle.Bold}),
			text.NewCol(6, "Week "+data.WeekLabel, props.Text{Size: 10, Align: align.Right}),
		),
		row.New(5).Add(
			text.NewCol(6, "ABN "+data.ContractorAbn, props.Text{Size: 8}),
			text.NewCol(6, data.WeekStart+" to "+data.WeekEnd, props.Text{Size: 8, Align: align.Right}),
		),
		row.New(4).Add(line.NewCol(12)),
	)

	header := row.New(7).Add(
		text.NewCol(2, "Builder", props.Text{Size: 8, Style: fontstyle.Bold}),
		text.NewCol(3, "Location", props.Text{Size: 8, Style: fontstyle.Bold}),
	)
	for _, d := range dayHeaders {
		header.Add(text.NewCol(1, d, props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}))
	}
	header.Add(text.NewCol(1, "Hours", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}))
	m.AddRows(header)

	for _, l := range data.Lines {
		r := row.New(6).Add(
			text.NewCol(2, l.BuilderName, props.Text{Size: 8}),
			text.NewCol(3, l.LocationName, props.Text{Size: 8}),
		)
		for _, h := range l.DailyHours {
			r.Add(text.NewCol(1, h.StringFixed(1), props.Text{Size: 8, Align: align.Right}))
		}
		r.Add(text.NewCol(1, l.Hours.StringFixed(1), props.Text{Size: 8, Align: align.Right}))
		m.AddRows(r)
	}

	m.AddRows(
		row.New(4).Add(line.NewCol(12)),
		row.New(6).Add(
			col.New(6),
			text.NewCol(3, "Total hours", props.Text{Size: 9, Align: align.Right}),
			text.NewCol(3, data.TotalHours.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
		),
		row.New(6).Add(
			col.New(6),
			text.NewCol(3, "Hourly rate", props.Text{Size: 9, Align: align.Right}),
			text.NewCol(3, "$"+data.HourlyRate.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
		),
		row.New(8).Add(
			col.New(6),
			text.NewCol(3, "Total", props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
			text.NewCol(3, "$"+data.TotalAmount.StringFixed(2), props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
		),
		row.New(5).Add(
			text.NewCol(12, "Submitted "+data.SubmittedAt, props.Text{Size: 7, Align: align.Right}),
		),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}
