// Package view contiene las proyecciones puras (sin efectos) de filas crudas a
// filas listas para mostrar: uniones, formatos de hora, filtros y agregados.
package view

import (
	"strconv"
	"strings"
	"time"
)

// FormatTime12h convierte "HH:MM" o "HH:MM:SS" (24 h) a "h:MM AM|PM".
// La hora 0 se muestra como 12. Una entrada mal formada devuelve "".
func FormatTime12h(v string) string {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) < 2 || parts[1] == "" {
		return ""
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 {
		return ""
	}
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return strconv.Itoa(display) + ":" + parts[1] + " " + suffix
}

// FormatOptionalTime12h igual que FormatTime12h para columnas nulas.
func FormatOptionalTime12h(v *string) string {
	if v == nil {
		return ""
	}
	return FormatTime12h(*v)
}

// DayName nombre del día (0 = Sunday). Fuera de rango devuelve "".
func DayName(day int) string {
	if day < 0 || day > 6 {
		return ""
	}
	return time.Weekday(day).String()
}

// RelativeTime texto relativo de t respecto de now.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	}
	if t.Year() == now.Year() {
		return t.Format("Jan 2")
	}
	return t.Format("Jan 2, 2006")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
