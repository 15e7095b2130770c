package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Turnos-api/internal/application/dto"
	"github.com/jhoicas/Turnos-api/internal/application/usecase"
	"github.com/jhoicas/Turnos-api/internal/infrastructure/postgres"
)

// columnas esperadas, en este orden; la cabecera es opcional
var employeeColumns = []string{"first_name", "last_name", "email", "department", "position", "hire_date"}

// csvRow fila leída con su número de línea para reportar errores.
type csvRow struct {
	Line int
	Req  dto.CreateEmployeeRequest
}

// readEmployeesCSV lee el CSV de personal. Con latin1 decodifica ISO-8859-1 (exportaciones de Excel).
func readEmployeesCSV(r io.Reader, latin1 bool) ([]csvRow, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []csvRow
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if line == 1 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(rec[0], "\ufeff")), employeeColumns[0]) {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("línea %d: se esperan al menos %d columnas (%s)", line, 3, strings.Join(employeeColumns[:3], ","))
		}
		field := func(i int) string {
			if i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		rows = append(rows, csvRow{Line: line, Req: dto.CreateEmployeeRequest{
			FirstName:  field(0),
			LastName:   field(1),
			Email:      field(2),
			Department: field(3),
			Position:   field(4),
			HireDate:   field(5),
		}})
	}
	return rows, nil
}

func newImportEmployeesCmd(e *env) *cobra.Command {
	var latin1 bool
	cmd := &cobra.Command{
		Use:   "import-employees FILE",
		Short: "Importa fichas de empleado desde CSV (" + strings.Join(employeeColumns, ",") + ")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := readEmployeesCSV(f, latin1)
			if err != nil {
				return err
			}
			uc := usecase.NewEmployeeUseCase(postgres.NewEmployeeRepository(e.pool))
			created, failed := 0, 0
			for _, row := range rows {
				if _, err := uc.Create(cmd.Context(), row.Req); err != nil {
					failed++
					e.log.Warn().Err(err).Int("line", row.Line).Str("email", row.Req.Email).Msg("fila rechazada")
					continue
				}
				created++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "creados: %d, rechazados: %d\n", created, failed)
			if failed > 0 {
				return fmt.Errorf("%d filas rechazadas", failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&latin1, "latin1", false, "el archivo está en ISO-8859-1")
	return cmd
}
