package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// NotAvailable is rendered for missing optional strings
const NotAvailable = "N/A"

// Stats mirrors GET /api/stats. Absent counters decode as zero.
type Stats struct {
	TotalPatients      int            `json:"total_patients" yaml:"total_patients"`
	TotalTests         int            `json:"total_tests" yaml:"total_tests"`
	AbnormalCount      int            `json:"abnormal_count" yaml:"abnormal_count"`
	UniqueTests        int            `json:"unique_tests" yaml:"unique_tests"`
	NormalCount        int            `json:"normal_count" yaml:"normal_count"`
	AbnormalRate       float64        `json:"abnormal_rate" yaml:"abnormal_rate"`
	TestDistribution   map[string]int `json:"test_distribution" yaml:"test_distribution"`
	AbnormalByTest     map[string]int `json:"abnormal_by_test" yaml:"abnormal_by_test"`
	GenderDistribution map[string]int `json:"gender_distribution" yaml:"gender_distribution"`
}

// Counters returns the dashboard headline numbers: patients, tests,
// abnormal results, distinct tests.
func (s Stats) Counters() [4]int {
	return [4]int{s.TotalPatients, s.TotalTests, s.AbnormalCount, s.UniqueTests}
}

// AbnormalResult is one row of GET /api/recent-abnormal
type AbnormalResult struct {
	PatientName       string    `json:"patient_name" yaml:"patient_name"`
	CanonicalTest     string    `json:"canonical_test" yaml:"canonical_test"`
	AbnormalDirection string    `json:"abnormal_direction" yaml:"abnormal_direction"`
	Value             FlexValue `json:"value" yaml:"value"`
	Unit              string    `json:"unit" yaml:"unit"`
	ReferenceMin      FlexValue `json:"reference_min" yaml:"reference_min"`
	ReferenceMax      FlexValue `json:"reference_max" yaml:"reference_max"`
}

// Patient is one row of GET /api/patients
type Patient struct {
	Name        string    `json:"name" yaml:"name"`
	Age         FlexValue `json:"age" yaml:"age"`
	Gender      string    `json:"gender" yaml:"gender"`
	TestCount   int       `json:"test_count" yaml:"test_count"`
	LatestTest  string    `json:"latest_test" yaml:"latest_test"`
	LatestDate  string    `json:"latest_date" yaml:"latest_date,omitempty"`
	HasAbnormal bool      `json:"has_abnormal" yaml:"has_abnormal"`
}

// Latest returns latest_test, falling back to latest_date
func (p Patient) Latest() string {
	return OrNA(FirstNonEmpty(p.LatestTest, p.LatestDate))
}

// TestRecord is one entry of the data array returned by POST /api/query
type TestRecord struct {
	PatientName       string    `json:"patient_name" yaml:"patient_name"`
	CanonicalTest     string    `json:"canonical_test" yaml:"canonical_test"`
	TestName          string    `json:"test_name" yaml:"test_name,omitempty"`
	Value             FlexValue `json:"value" yaml:"value"`
	Unit              string    `json:"unit" yaml:"unit"`
	IsAbnormal        bool      `json:"is_abnormal" yaml:"is_abnormal"`
	AbnormalDirection string    `json:"abnormal_direction" yaml:"abnormal_direction,omitempty"`
	ReferenceMin      FlexValue `json:"reference_min" yaml:"reference_min"`
	ReferenceMax      FlexValue `json:"reference_max" yaml:"reference_max"`
	ReportDate        string    `json:"report_date" yaml:"report_date,omitempty"`
}

// Test returns the canonical test name, falling back to the raw name
func (r TestRecord) Test() string {
	return OrNA(FirstNonEmpty(r.CanonicalTest, r.TestName))
}

// FlexValue holds a JSON scalar the backend may send as a number, a string
// or null.
type FlexValue struct {
	raw string
	set bool
}

// Flex builds a FlexValue from a display string
func Flex(s string) FlexValue {
	return FlexValue{raw: s, set: s != ""}
}

func (v *FlexValue) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" || text == "" {
		*v = FlexValue{}
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Flex(strings.TrimSpace(s))
		return nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		*v = Flex(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}
	*v = Flex(text)
	return nil
}

func (v FlexValue) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}
	if f, err := strconv.ParseFloat(v.raw, 64); err == nil {
		return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
	}
	return json.Marshal(v.raw)
}

func (v FlexValue) MarshalYAML() (any, error) {
	if !v.set {
		return nil, nil
	}
	if f, err := strconv.ParseFloat(v.raw, 64); err == nil {
		return f, nil
	}
	return v.raw, nil
}

// IsSet reports whether a value was present
func (v FlexValue) IsSet() bool {
	return v.set
}

func (v FlexValue) String() string {
	if !v.set {
		return NotAvailable
	}
	return v.raw
}

// Range renders a reference interval from optional bounds
func Range(lo, hi FlexValue) string {
	switch {
	case lo.IsSet() && hi.IsSet():
		return lo.String() + " - " + hi.String()
	case lo.IsSet():
		return ">= " + lo.String()
	case hi.IsSet():
		return "<= " + hi.String()
	}
	return NotAvailable
}

// OrNA substitutes NotAvailable for blank strings
func OrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
