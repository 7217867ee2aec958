package pdf

import (
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type StatementData struct {
	OrgName string
	AsOf    string

	TotalBalance string
	Balances     []StatementBalance

	Inflow       string
	Outflow      string
	Transactions int
	Pending      int
}

type StatementBalance struct {
	AccountType string
	Accounts    int
	Balance     string
}

func (p *marotoProvider) GenerateStatement(ctx context.Context, data StatementData) (io.Reader, error) {
	cfg := config.NewBuilder().Build()
	m := maroto.New(cfg)

	m.AddRow(10,
		text.NewCol(12, "Account statement", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(15,
		col.New(12).Add(
			text.New(data.OrgName, props.Text{Style: fontstyle.Bold}),
			text.New("As of "+data.AsOf, props.Text{Top: 5, Size: 9}),
		),
	)

	m.AddRow(12,
		text.NewCol(8, "Total balance", props.Text{Size: 12, Style: fontstyle.Bold}),
		text.NewCol(4, data.TotalBalance, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right}),
	)

	m.AddRow(10,
		text.NewCol(6, "Account type", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Accounts", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(4, "Balance", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, b := range data.Balances {
		m.AddRow(8,
			text.NewCol(6, b.AccountType, props.Text{Size: 9}),
			text.NewCol(2, strconv.Itoa(b.Accounts), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(4, b.Balance, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(12,
		text.NewCol(12, "Last 30 days", props.Text{Size: 11, Style: fontstyle.Bold, Top: 4}),
	)
	m.AddRow(8,
		text.NewCol(6, "Money in", props.Text{Size: 9}),
		text.NewCol(6, data.Inflow, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		text.NewCol(6, "Money out", props.Text{Size: 9}),
		text.NewCol(6, data.Outflow, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		text.NewCol(6, "Transactions", props.Text{Size: 9}),
		text.NewCol(6, strconv.Itoa(data.Transactions), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		text.NewCol(6, "Pending", props.Text{Size: 9}),
		text.NewCol(6, strconv.Itoa(data.Pending), props.Text{Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
