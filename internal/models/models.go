package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Field имя измеряемой величины датчика
type Field string

const (
	FieldTemperature       Field = "temperature"
	FieldHumidity          Field = "humidity"
	FieldPressure          Field = "pressure"
	FieldVOCIndex          Field = "voc_index"
	FieldPH                Field = "ph"
	FieldMicrobialActivity Field = "microbial_activity"
)

// FieldInfo описание поля для отображения
type FieldInfo struct {
	Field     Field
	Title     string
	Unit      string
	Precision int
}

// KnownFields все поля в каноническом порядке
var KnownFields = []FieldInfo{
	{Field: FieldTemperature, Title: "Temperature", Unit: "°C", Precision: 1},
	{Field: FieldHumidity, Title: "Humidity", Unit: "%", Precision: 1},
	{Field: FieldPressure, Title: "Pressure", Unit: "hPa", Precision: 1},
	{Field: FieldVOCIndex, Title: "CO2 Levels", Unit: "ppm", Precision: 0},
	{Field: FieldPH, Title: "pH Level", Unit: "", Precision: 2},
	{Field: FieldMicrobialActivity, Title: "Microbial Activity", Unit: "Cfu", Precision: 0},
}

// Info возвращает описание поля
func (f Field) Info() (FieldInfo, bool) {
	for _, info := range KnownFields {
		if info.Field == f {
			return info, true
		}
	}
	return FieldInfo{}, false
}

// Format форматирует значение с точностью поля
func (f Field) Format(v float64) string {
	info, ok := f.Info()
	if !ok {
		return fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf("%.*f", info.Precision, v)
}

// Reading одно показание датчика
type Reading struct {
	ID        int64
	CreatedAt time.Time
	Values    map[Field]float64
}

// Value возвращает значение поля, если оно есть в показании
func (r Reading) Value(f Field) (float64, bool) {
	v, ok := r.Values[f]
	return v, ok
}

// Fields возвращает поля показания в каноническом порядке
func (r Reading) Fields() []Field {
	fields := make([]Field, 0, len(r.Values))
	for _, info := range KnownFields {
		if _, ok := r.Values[info.Field]; ok {
			fields = append(fields, info.Field)
		}
	}
	return fields
}

// MarshalJSON сериализует показание в плоский объект
func (r Reading) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Values)+2)
	out["id"] = r.ID
	out["created_at"] = r.CreatedAt
	for f, v := range r.Values {
		out[string(f)] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON разбирает плоский объект; null и неизвестные поля пропускаются
func (r *Reading) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Reading{Values: make(map[Field]float64)}

	if v, ok := raw["id"]; ok {
		if err := json.Unmarshal(v, &r.ID); err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
	}
	if v, ok := raw["created_at"]; ok {
		if err := json.Unmarshal(v, &r.CreatedAt); err != nil {
			return fmt.Errorf("invalid created_at: %w", err)
		}
	}

	for _, info := range KnownFields {
		v, ok := raw[string(info.Field)]
		if !ok || string(v) == "null" {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			return fmt.Errorf("invalid %s: %w", info.Field, err)
		}
		r.Values[info.Field] = f
	}

	return nil
}

// Schema набор полей одной инсталляции
type Schema []Field

// DefaultSchema поля по умолчанию
var DefaultSchema = Schema{FieldTemperature, FieldHumidity, FieldPressure, FieldVOCIndex, FieldPH}

// ParseSchema разбирает список полей через запятую
func ParseSchema(s string) (Schema, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultSchema, nil
	}

	seen := make(map[Field]bool)
	var schema Schema
	for _, part := range strings.Split(s, ",") {
		f := Field(strings.TrimSpace(part))
		if f == "" {
			continue
		}
		if _, ok := f.Info(); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		schema = append(schema, f)
	}

	if len(schema) == 0 {
		return nil, ErrEmptySchema
	}

	return schema.Ordered(), nil
}

// Ordered возвращает поля схемы в каноническом порядке
func (s Schema) Ordered() Schema {
	in := make(map[Field]bool, len(s))
	for _, f := range s {
		in[f] = true
	}
	out := make(Schema, 0, len(s))
	for _, info := range KnownFields {
		if in[info.Field] {
			out = append(out, info.Field)
		}
	}
	return out
}

// Contains проверяет, входит ли поле в схему
func (s Schema) Contains(f Field) bool {
	for _, sf := range s {
		if sf == f {
			return true
		}
	}
	return false
}

// String возвращает схему в формате SENSOR_FIELDS
func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, f := range s {
		parts[i] = string(f)
	}
	return strings.Join(parts, ",")
}
