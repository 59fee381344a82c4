package device

// UnknownName is substituted when the platform cannot resolve a device name,
// either because none was advertised or because the read was denied.
const UnknownName = "UNKNOWN"

// Record is a normalized descriptor for one discovered device.
//
// Identity is the hardware Address alone: two records with the same address
// describe the same device even when Name or Category drifted between
// discovery events. A Record is constructed once per raw discovery event and
// never mutated afterwards.
type Record struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Category string `json:"category"`
}

// NewRecord builds a Record from raw discovery data, applying the name
// fallback and the class-code classification.
func NewRecord(name, address string, classCode uint32) Record {
	if name == "" {
		name = UnknownName
	}
	return Record{
		Name:     name,
		Address:  address,
		Category: Classify(classCode),
	}
}

// SameDevice reports whether two records describe the same physical device.
func (r Record) SameDevice(other Record) bool {
	return r.Address == other.Address
}
