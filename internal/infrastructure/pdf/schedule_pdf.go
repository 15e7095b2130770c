// Package pdf genera el horario semanal imprimible.
//
// Layout de la página A4 horizontal:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + semana       │  Generado el …             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  Por cada día con turnos:                                   │
//	│    DÍA (n turnos)                                            │
//	│    Empleado | Puesto | Tipo | Inicio | Fin                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: total de turnos                                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Turnos-api/internal/application/view"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorTeal    = &props.Color{Red: 0, Green: 120, Blue: 110}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoScheduleGenerator implementa usecase.SchedulePDFGenerator usando Maroto v2.
type MarotoScheduleGenerator struct{}

// NewMarotoScheduleGenerator construye el generador.
func NewMarotoScheduleGenerator() *MarotoScheduleGenerator { return &MarotoScheduleGenerator{} }

// GenerateSchedulePDF genera el horario de la semana y devuelve sus bytes.
func (g *MarotoScheduleGenerator) GenerateSchedulePDF(
	_ context.Context,
	title string,
	generatedAt time.Time,
	week [7][]view.ShiftRow,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(title, generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	total := 0
	for day, rows := range week {
		if len(rows) == 0 {
			continue
		}
		total += len(rows)
		m.AddRows(dayTitleRow(day, len(rows)))
		m.AddRows(tableHeaderRow())
		m.AddRows(shiftRows(rows)...)
		m.AddRows(line.NewRow(2))
	}
	if total == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("Sin turnos programados", props.Text{Size: 10, Align: align.Center, Top: 3, Color: colorGray}),
		)))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(row.New(6).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Total de turnos: %d", total), props.Text{Size: 8, Align: align.Right, Top: 1, Color: colorGray}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(title string, at time.Time) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 2}),
		),
		col.New(4).Add(
			text.New("Generado el "+at.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 4, Color: colorGray,
			}),
		),
	)
}

func dayTitleRow(day, count int) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("%s (%d)", view.DayName(day), count), props.Text{
			Style: fontstyle.Bold, Size: 10, Color: colorTeal, Top: 2,
		}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(6).Add(
		h("Empleado", 4, align.Left),
		h("Puesto", 3, align.Left),
		h("Tipo", 2, align.Left),
		h("Inicio", 1, align.Right),
		h("Fin", 2, align.Right),
	)
}

func shiftRows(rows []view.ShiftRow) []core.Row {
	out := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, row.New(6).Add(
			col.New(4).Add(text.New(r.EmployeeName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(nonEmpty(r.Position, "—"), props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
			col.New(2).Add(text.New(r.Type, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(r.StartLabel, props.Text{Size: 8, Top: 1, Align: align.Right})),
			col.New(2).Add(text.New(nonEmpty(r.EndLabel, "abierto"), props.Text{Size: 8, Top: 1, Align: align.Right, Right: 1})),
		))
	}
	return out
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
