package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Log actions recorded by the check-in recorder
const (
	ActionCheckIn = "check_in"
)

// DeviceLog is an append-only audit entry for a device action. Rows are never updated.
type DeviceLog struct {
	ID        uint       `json:"id" gorm:"primarykey"`
	DeviceID  uint       `json:"device" gorm:"not null;index:idx_device_logs_device_ts,priority:1"`
	Action    string     `json:"action" gorm:"size:100;not null"`
	Details   LogDetails `json:"details" gorm:"type:jsonb;not null"`
	Timestamp time.Time  `json:"timestamp" gorm:"not null;index:idx_device_logs_device_ts,priority:2,sort:desc"`

	Device *Device `json:"-" gorm:"foreignKey:DeviceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName specifies the table name for DeviceLog model
func (DeviceLog) TableName() string {
	return "device_logs"
}

// LogValueKind tells which variant a LogValue holds
type LogValueKind uint8

const (
	LogNull LogValueKind = iota
	LogString
	LogNumber
	LogBool
)

// LogValue is a scalar detail value: a string, a number, a bool or null.
// Nested objects and arrays are rejected so the audit log stays flat and greppable.
type LogValue struct {
	kind LogValueKind
	str  string
	num  float64
	b    bool
}

// String returns a string detail value
func String(s string) LogValue { return LogValue{kind: LogString, str: s} }

// Number returns a numeric detail value
func Number(f float64) LogValue { return LogValue{kind: LogNumber, num: f} }

// Int returns a numeric detail value from an integer
func Int(i int64) LogValue { return LogValue{kind: LogNumber, num: float64(i)} }

// Bool returns a boolean detail value
func Bool(b bool) LogValue { return LogValue{kind: LogBool, b: b} }

// Kind returns the variant held by v
func (v LogValue) Kind() LogValueKind { return v.kind }

// Str returns the string held by v
func (v LogValue) Str() (string, bool) { return v.str, v.kind == LogString }

// Num returns the number held by v
func (v LogValue) Num() (float64, bool) { return v.num, v.kind == LogNumber }

// Flag returns the bool held by v
func (v LogValue) Flag() (bool, bool) { return v.b, v.kind == LogBool }

// Text renders v for flat output such as spreadsheets and tables
func (v LogValue) Text() string {
	switch v.kind {
	case LogString:
		return v.str
	case LogNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case LogBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

func (v LogValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case LogString:
		return json.Marshal(v.str)
	case LogNumber:
		return json.Marshal(v.num)
	case LogBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

func (v *LogValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case nil:
		*v = LogValue{}
	case string:
		*v = String(val)
	case bool:
		*v = Bool(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return err
		}
		*v = Number(f)
	default:
		return fmt.Errorf("log detail values must be scalars, got %T", raw)
	}
	return nil
}

// LogDetails is the structured detail map attached to a DeviceLog
type LogDetails map[string]LogValue

// Keys returns the detail keys in sorted order
func (d LogDetails) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value implements driver.Valuer, storing the map as JSON
func (d LogDetails) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (d *LogDetails) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*d = LogDetails{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into LogDetails", src)
	}
	out := LogDetails{}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*d = out
	return nil
}
