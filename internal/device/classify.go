package device

// CategoryUnknown is returned for class codes outside the mapping table,
// including the zero code reported when no class-of-device is available
// (typical for LE advertisements).
const CategoryUnknown = "Unknown Type"

// Major device class values from the Bluetooth class-of-device field,
// bits 8..12 of the raw code.
const (
	majorComputer   = 0x01
	majorPhone      = 0x02
	majorAudioVideo = 0x04
	majorPeripheral = 0x05
	majorImaging    = 0x06
	majorHealth     = 0x09
)

var majorCategories = map[uint32]string{
	majorComputer:   "Computer",
	majorPhone:      "Phone",
	majorAudioVideo: "Audio/Video",
	majorPeripheral: "Peripheral",
	majorImaging:    "Imaging Device",
	majorHealth:     "Health Device",
}

// Classify maps a raw class-of-device code to a coarse category name.
// It is total: any code whose major class is not in the table, including 0,
// yields CategoryUnknown.
func Classify(classCode uint32) string {
	major := (classCode >> 8) & 0x1F
	if category, ok := majorCategories[major]; ok {
		return category
	}
	return CategoryUnknown
}
