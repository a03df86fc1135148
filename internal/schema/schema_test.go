package schema

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestELB_ColumnOrderIsStable(t *testing.T) {
	t.Parallel()

	want := []string{
		"time", "elb_name", "request_ip", "request_port", "backend_ip", "backend_port",
		"request_processing_time", "backend_processing_time", "client_response_time",
		"elb_response_code", "backend_response_code", "bytes_received", "bytes_sent",
		"request_method", "request_url", "user_agent", "cipher", "protocol",
	}

	m := ELB()
	got := m.ColumnNames()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ColumnNames()=%v want %v", got, want)
	}

	// Callers must not be able to mutate the shared model.
	got[0] = "mutated"
	if again := m.ColumnNames(); again[0] != "time" {
		t.Fatalf("ColumnNames leaked internal slice: %v", again)
	}
	fields := m.Fields()
	fields[1].Name = "mutated"
	if m.Field(1).Name != "elb_name" {
		t.Fatalf("Fields leaked internal slice")
	}
}

func TestELB_SourceTokensCoverHeader(t *testing.T) {
	t.Parallel()

	if got := ELB().SourceTokens(); !reflect.DeepEqual(got, ELBHeader) {
		t.Fatalf("SourceTokens()=%v want %v", got, ELBHeader)
	}
}

func TestSQLType_RenderingAndQuoting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ    SQLType
		ddl    string
		quoted bool
	}{
		{String(255), "VARCHAR(255)", true},
		{Timestamp(), "TIMESTAMP", true},
		{Float(), "DOUBLE", false},
		{SmallInt(), "SMALLINT", false},
		{UnsignedBigInt(), "BIGINT UNSIGNED", false},
	}

	for _, tt := range tests {
		t.Run(tt.ddl, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.ddl {
				t.Fatalf("String()=%q want %q", got, tt.ddl)
			}
			if got := tt.typ.Quoted(); got != tt.quoted {
				t.Fatalf("Quoted()=%v want %v", got, tt.quoted)
			}
			if tt.typ.Numeric() == tt.quoted {
				t.Fatalf("Numeric() and Quoted() must be exclusive for %s", tt.ddl)
			}
			parsed, err := ParseSQLType(strings.ToLower(tt.ddl))
			if err != nil {
				t.Fatalf("ParseSQLType(%q): %v", tt.ddl, err)
			}
			if parsed != tt.typ {
				t.Fatalf("ParseSQLType(%q)=%+v want %+v", tt.ddl, parsed, tt.typ)
			}
		})
	}
}

func TestParseSQLType_Rejects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "TEXT", "VARCHAR", "VARCHAR(0)", "VARCHAR(x)", "BIGINT"} {
		if _, err := ParseSQLType(in); err == nil {
			t.Fatalf("ParseSQLType(%q) expected error", in)
		}
	}
}

func TestNewFieldModel_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		specs []FieldSpec
	}{
		{"empty", nil},
		{"bad_name", []FieldSpec{{Name: "Bad Name", Type: Float()}}},
		{"reserved_id", []FieldSpec{{Name: "id", Type: UnsignedBigInt()}}},
		{"duplicate", []FieldSpec{{Name: "a", Type: Float()}, {Name: "a", Type: Float()}}},
		{"zero_length_string", []FieldSpec{{Name: "a", Type: String(0)}}},
		{"invalid_kind", []FieldSpec{{Name: "a"}}},
		{"unknown_derive", []FieldSpec{{Name: "a", Type: Float(), Derive: "reverse"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFieldModel(tt.specs...); err == nil {
				t.Fatalf("NewFieldModel expected error")
			}
		})
	}
}

func TestFieldModel_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(ELB())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"sql_type":"BIGINT UNSIGNED"`) {
		t.Fatalf("expected canonical type names in JSON: %s", b)
	}

	var got FieldModel
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got.Fields(), ELB().Fields()) {
		t.Fatalf("round trip mismatch:\n got=%+v\nwant=%+v", got.Fields(), ELB().Fields())
	}

	bad := `[{"name":"a","sql_type":"DOUBLE"},{"name":"a","sql_type":"DOUBLE"}]`
	if err := json.Unmarshal([]byte(bad), &got); err == nil {
		t.Fatalf("expected duplicate field error from JSON")
	}
}

func TestDerivation_SplitRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		derive  Derivation
		in      string
		want    string
		wantErr error
	}{
		{"host_with_port", DeriveHost, "10.0.0.1:8080", "10.0.0.1", nil},
		{"port_with_port", DerivePort, "10.0.0.1:8080", "8080", nil},
		{"host_no_colon", DeriveHost, "10.0.0.1", "10.0.0.1", nil},
		{"port_no_colon", DerivePort, "10.0.0.1", "-", nil},
		{"port_dash_backend", DerivePort, "-", "-", nil},
		{"port_splits_on_first_colon", DerivePort, "a:b:c", "b:c", nil},
		{"method", DeriveMethod, "GET /index.html", "GET", nil},
		{"url", DeriveURL, "GET /index.html", "/index.html", nil},
		{"url_keeps_rest", DeriveURL, "GET http://x/ HTTP/1.1", "http://x/ HTTP/1.1", nil},
		{"method_no_space", DeriveMethod, "GET", "GET", nil},
		{"url_no_space", DeriveURL, "GET", "", ErrNoSeparator},
		{"passthrough", DerivePassthrough, "my-elb", "my-elb", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.derive.Apply(tt.in, DeriveOptions{})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Apply(%q) err=%v want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("Apply(%q)=%q want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDerivation_Timestamp(t *testing.T) {
	t.Parallel()

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name    string
		in      string
		opt     DeriveOptions
		want    string
		wantErr bool
	}{
		{name: "elb_native_utc", in: "2015-05-13T23:39:43.945958Z", want: "2015-05-13 23:39:43"},
		{name: "rfc3339_offset", in: "2015-05-13T23:39:43+02:00", want: "2015-05-13 21:39:43"},
		{name: "converted_to_location", in: "2015-05-13T23:39:43Z", opt: DeriveOptions{Location: ny}, want: "2015-05-13 19:39:43"},
		{name: "zoneless_read_in_location", in: "2015-05-13 23:39:43", opt: DeriveOptions{Location: ny}, want: "2015-05-13 23:39:43"},
		{name: "lenient_fallback", in: "garbage", want: "1970-01-01 00:00:01"},
		{name: "lenient_fallback_in_location", in: "", opt: DeriveOptions{Location: ny}, want: "1969-12-31 19:00:01"},
		{name: "strict_rejects", in: "garbage", opt: DeriveOptions{StrictTime: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveTimestamp.Apply(tt.in, tt.opt)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTimestamp) {
					t.Fatalf("err=%v want ErrInvalidTimestamp", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("Apply(%q)=%q want %q", tt.in, got, tt.want)
			}
		})
	}
}
