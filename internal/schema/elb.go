package schema

// ELBHeader names the 15 space-delimited tokens of a classic load balancer
// access-log line, in file order.
var ELBHeader = []string{
	"time",
	"elb_name",
	"request_ip_port",
	"backend_ip_port",
	"request_processing_time",
	"backend_processing_time",
	"client_response_time",
	"elb_response_code",
	"backend_response_code",
	"bytes_received",
	"bytes_sent",
	"method_url",
	"user_agent",
	"cipher",
	"protocol",
}

var elbModel = MustFieldModel(
	FieldSpec{Name: "time", Type: Timestamp(), Derive: DeriveTimestamp},
	FieldSpec{Name: "elb_name", Type: String(255)},
	FieldSpec{Name: "request_ip", Type: String(15), Source: "request_ip_port", Derive: DeriveHost},
	FieldSpec{Name: "request_port", Type: String(6), Source: "request_ip_port", Derive: DerivePort},
	FieldSpec{Name: "backend_ip", Type: String(15), Source: "backend_ip_port", Derive: DeriveHost},
	FieldSpec{Name: "backend_port", Type: String(6), Source: "backend_ip_port", Derive: DerivePort},
	FieldSpec{Name: "request_processing_time", Type: Float()},
	FieldSpec{Name: "backend_processing_time", Type: Float()},
	FieldSpec{Name: "client_response_time", Type: Float()},
	FieldSpec{Name: "elb_response_code", Type: SmallInt()},
	FieldSpec{Name: "backend_response_code", Type: SmallInt()},
	FieldSpec{Name: "bytes_received", Type: UnsignedBigInt()},
	FieldSpec{Name: "bytes_sent", Type: UnsignedBigInt()},
	FieldSpec{Name: "request_method", Type: String(10), Source: "method_url", Derive: DeriveMethod},
	FieldSpec{Name: "request_url", Type: String(1024), Source: "method_url", Derive: DeriveURL},
	FieldSpec{Name: "user_agent", Type: String(2048)},
	FieldSpec{Name: "cipher", Type: String(255)},
	FieldSpec{Name: "protocol", Type: String(50)},
)

// ELB returns the field model for classic load balancer access logs.
// The model is shared; it cannot be modified through the returned pointer.
func ELB() *FieldModel { return elbModel }
