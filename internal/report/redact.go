package report

// PHIFields are the field addresses that carry personal health information
// and must be redacted before a report leaves the service.
var PHIFields = []string{
	"PAT07", // last name
	"PAT08", // first name
	"PAT09", // middle name
	"PAT10",
	"PAT11",
	"PAT12", // address 1
	"PAT13", // address 2
	"PAT14", // city
	"PAT15", // state
	"PAT16", // zip
	"PAT17", // phone
}

// PHIReplacement is what a redacted field renders as.
const PHIReplacement = "# REDACT #"

var phiSet = func() map[string]bool {
	m := make(map[string]bool, len(PHIFields))
	for _, c := range PHIFields {
		m[c] = true
	}
	return m
}()

// IsPHI reports whether a field address is subject to redaction.
func IsPHI(code string) bool {
	return phiSet[code]
}

// Redact overwrites every PHI address in the given values, whether or not the
// document populated it, and returns the same map for chaining.
func Redact(v FieldValues) FieldValues {
	for _, code := range PHIFields {
		v[code] = PHIReplacement
	}
	return v
}
