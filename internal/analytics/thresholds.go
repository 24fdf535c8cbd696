package analytics

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"proby/internal/models"
)

// Severity уровень важности оповещения
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Alert оповещение по последнему показанию
type Alert struct {
	Field     models.Field `json:"sensor_field,omitempty"`
	Message   string       `json:"message"`
	Severity  Severity     `json:"severity"`
	Threshold string       `json:"threshold"`
}

// NoDataAlert выдается когда показаний нет
var NoDataAlert = Alert{
	Message:   "No readings detected",
	Severity:  SeverityInfo,
	Threshold: "N/A",
}

// Range допустимый диапазон поля (границы включительно)
type Range struct {
	Min          float64  `json:"min"`
	Max          float64  `json:"max"`
	Severity     Severity `json:"severity"`
	AboveMessage string   `json:"above_message,omitempty"`
	BelowMessage string   `json:"below_message,omitempty"`
}

// Table пороги по полям
type Table map[models.Field]Range

// DefaultTable пороги по умолчанию
func DefaultTable() Table {
	return Table{
		models.FieldTemperature: {
			Min: 18, Max: 25, Severity: SeverityWarning,
			AboveMessage: "Temperature is above optimal range",
			BelowMessage: "Temperature is below optimal range",
		},
		models.FieldHumidity: {
			Min: 30, Max: 60, Severity: SeverityWarning,
			AboveMessage: "Humidity levels are high",
			BelowMessage: "Humidity levels are low",
		},
		models.FieldPressure: {
			Min: 950, Max: 1050, Severity: SeverityWarning,
			AboveMessage: "Atmospheric pressure is unusually high",
			BelowMessage: "Atmospheric pressure is unusually low",
		},
		models.FieldVOCIndex: {
			Min: 0, Max: 200, Severity: SeverityError,
			AboveMessage: "High VOC levels detected",
			BelowMessage: "VOC sensor reported an invalid value",
		},
		models.FieldPH: {
			Min: 4, Max: 7, Severity: SeverityWarning,
			AboveMessage: "pH levels outside optimal range",
			BelowMessage: "pH levels outside optimal range",
		},
	}
}

// Describe возвращает описание порога, например "18-25°C"
func (r Range) Describe(f models.Field) string {
	unit := ""
	if info, ok := f.Info(); ok {
		unit = info.Unit
	}
	return fmt.Sprintf("%g-%g%s", r.Min, r.Max, unit)
}

// Validate проверяет таблицу
func (t Table) Validate() error {
	for f, r := range t {
		if _, ok := f.Info(); !ok {
			return fmt.Errorf("%w: %q", models.ErrUnknownField, f)
		}
		if r.Min > r.Max {
			return fmt.Errorf("%w: %s min %g > max %g", ErrInvalidRange, f, r.Min, r.Max)
		}
		switch r.Severity {
		case SeverityWarning, SeverityError:
		default:
			return fmt.Errorf("%w: %s severity %q", ErrInvalidRange, f, r.Severity)
		}
	}
	return nil
}

// LoadTable читает таблицу порогов из JSON файла и накладывает ее на DefaultTable
func LoadTable(path string) (Table, error) {
	table := DefaultTable()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	var overrides Table
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON from '%s': %w", path, err)
	}

	for f, r := range overrides {
		base := table[f]
		if r.AboveMessage == "" {
			r.AboveMessage = base.AboveMessage
		}
		if r.BelowMessage == "" {
			r.BelowMessage = base.BelowMessage
		}
		if r.Severity == "" {
			r.Severity = SeverityWarning
		}
		table[f] = r
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}

	return table, nil
}

func defaultMessage(f models.Field) string {
	title := string(f)
	if info, ok := f.Info(); ok {
		title = info.Title
	}
	return title + " outside optimal range"
}

// Evaluate строит оповещения по последнему показанию.
// Чистая функция: без показания возвращает одно NoDataAlert,
// иначе по одному оповещению на каждое поле вне [Min, Max] в каноническом порядке.
func Evaluate(latest *models.Reading, table Table) []Alert {
	if latest == nil {
		return []Alert{NoDataAlert}
	}

	alerts := make([]Alert, 0)
	for _, f := range latest.Fields() {
		r, ok := table[f]
		if !ok {
			continue
		}

		v := latest.Values[f]
		var msg string
		switch {
		case v > r.Max:
			msg = r.AboveMessage
		case v < r.Min:
			msg = r.BelowMessage
		default:
			continue
		}
		if msg == "" {
			msg = defaultMessage(f)
		}

		alerts = append(alerts, Alert{
			Field:     f,
			Message:   msg,
			Severity:  r.Severity,
			Threshold: r.Describe(f),
		})
	}

	return alerts
}

// EvaluateLatest оценивает первое показание списка (от новых к старым)
func EvaluateLatest(readings []models.Reading, table Table) []Alert {
	if len(readings) == 0 {
		return Evaluate(nil, table)
	}
	return Evaluate(&readings[0], table)
}

// FieldsOf возвращает поля, упомянутые в оповещениях
func FieldsOf(alerts []Alert) string {
	parts := make([]string, 0, len(alerts))
	for _, a := range alerts {
		if a.Field != "" {
			parts = append(parts, string(a.Field))
		}
	}
	return strings.Join(parts, ",")
}
