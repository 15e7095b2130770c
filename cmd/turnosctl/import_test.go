package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestReadEmployeesCSV_ConCabecera(t *testing.T) {
	in := "first_name,last_name,email,department,position,hire_date\n" +
		"Ana, Ruiz ,ana@x.co,Cocina,Chef,2025-01-15\n" +
		"Beto,Paz,beto@x.co\n"

	rows, err := readEmployeesCSV(strings.NewReader(in), false)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Ruiz", rows[0].Req.LastName)
	assert.Equal(t, "Chef", rows[0].Req.Position)
	assert.Equal(t, "2025-01-15", rows[0].Req.HireDate)

	assert.Equal(t, 3, rows[1].Line)
	assert.Equal(t, "beto@x.co", rows[1].Req.Email)
	assert.Empty(t, rows[1].Req.Department)
}

func TestReadEmployeesCSV_SinCabecera(t *testing.T) {
	rows, err := readEmployeesCSV(strings.NewReader("Ana,Ruiz,ana@x.co\n"), false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Line)
}

func TestReadEmployeesCSV_PocasColumnas(t *testing.T) {
	_, err := readEmployeesCSV(strings.NewReader("Ana,Ruiz\n"), false)
	assert.ErrorContains(t, err, "línea 1")
}

func TestReadEmployeesCSV_Latin1(t *testing.T) {
	raw, err := charmap.ISO8859_1.NewEncoder().String("José,Muñoz,jose@x.co,Logística\n")
	require.NoError(t, err)

	rows, err := readEmployeesCSV(bytes.NewBufferString(raw), true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "José", rows[0].Req.FirstName)
	assert.Equal(t, "Muñoz", rows[0].Req.LastName)
	assert.Equal(t, "Logística", rows[0].Req.Department)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "hola", preview("hola", 10))
	assert.Equal(t, "ñañañ…", preview("ñañañaña", 6))
}
