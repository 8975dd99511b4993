package billing

import (
	"fmt"
	"time"
)

// countySerials maps Romanian counties to their two-letter bill serials.
// Closed table: a county outside it cannot be billed.
var countySerials = map[string]string{
	"Alba": "AB", "Arad": "AR", "Arges": "AG", "Bacau": "BC", "Bihor": "BH",
	"Bistrita-Nasaud": "BN", "Botosani": "BT", "Brasov": "BV", "Braila": "BR",
	"Buzau": "BZ", "Caras-Severin": "CS", "Calarasi": "CL", "Cluj": "CJ",
	"Constanta": "CT", "Covasna": "CV", "Dambovita": "DB", "Dolj": "DJ",
	"Galati": "GL", "Giurgiu": "GR", "Gorj": "GJ", "Harghita": "HR",
	"Hunedoara": "HD", "Ialomita": "IL", "Iasi": "IS", "Ilfov": "IF",
	"Maramures": "MM", "Mehedinti": "MH", "Mures": "MS", "Neamt": "NT",
	"Olt": "OT", "Prahova": "PH", "Satu Mare": "SM", "Salaj": "SJ",
	"Sibiu": "SB", "Suceava": "SV", "Teleorman": "TR", "Timis": "TM",
	"Tulcea": "TL", "Vaslui": "VS", "Valcea": "VL", "Vrancea": "VN",
}

// Identity is the serial and number printed on a bill.
type Identity struct {
	Serial string
	Number string
}

// CountySerial returns the two-letter serial for a county.
func CountySerial(county string) (string, error) {
	serial, ok := countySerials[county]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCounty, county)
	}
	return serial, nil
}

// AssignIdentity builds the bill identity for a customer and generation date.
// The number is the generation date as DDMMYY followed by the customer id
// zero-padded to six digits, so regenerating the same bill always yields the
// same identity.
func AssignIdentity(county string, customerID int64, generated time.Time) (Identity, error) {
	serial, err := CountySerial(county)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		Serial: serial,
		Number: fmt.Sprintf("%s%06d", generated.Format("020106"), customerID),
	}, nil
}
