package sensors

import (
	"strconv"
	"strings"
	"testing"
)

func TestRegisterMapAddresses(t *testing.T) {
	seen := map[string]string{}
	for _, ri := range GetBMI160RegisterMap() {
		if !strings.HasPrefix(ri.Address, "0x") {
			t.Errorf("%s: address %q not hex formatted", ri.Name, ri.Address)
			continue
		}
		addr, err := strconv.ParseUint(ri.Address[2:], 16, 8)
		if err != nil {
			t.Errorf("%s: unparseable address %q", ri.Name, ri.Address)
			continue
		}
		if addr > 0x7F {
			t.Errorf("%s: address 0x%02X outside the BMI160 map", ri.Name, addr)
		}
		if prev, dup := seen[ri.Address]; dup {
			t.Errorf("address %s used by both %s and %s", ri.Address, prev, ri.Name)
		}
		seen[ri.Address] = ri.Name
		switch ri.Access {
		case "R", "W", "RW":
		default:
			t.Errorf("%s: bad access %q", ri.Name, ri.Access)
		}
	}

	for _, want := range []string{"0x00", "0x02", "0x03", "0x0C", "0x12", "0x20", "0x40", "0x41", "0x42", "0x43", "0x7E"} {
		if _, ok := seen[want]; !ok {
			t.Errorf("register %s missing from map", want)
		}
	}
}
