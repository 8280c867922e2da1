package hw

import (
	"fmt"
	"strconv"
	"strings"
)

// TriggerLine is one of the chassis backplane trigger lines.
type TriggerLine int

const (
	TRIGGER_PXI0 = TriggerLine(0)
	TRIGGER_PXI1 = TriggerLine(1)
	TRIGGER_PXI2 = TriggerLine(2)
	TRIGGER_PXI3 = TriggerLine(3)
	TRIGGER_PXI4 = TriggerLine(4)
	TRIGGER_PXI5 = TriggerLine(5)
	TRIGGER_PXI6 = TriggerLine(6)
	TRIGGER_PXI7 = TriggerLine(7)

	TRIGGER_COUNT = 8
)

func (tl TriggerLine) String() string {
	return fmt.Sprintf("PXI_TRIGGER%d", int(tl))
}

// Valid is true for the eight backplane lines.
func (tl TriggerLine) Valid() bool {
	return tl >= 0 && tl < TRIGGER_COUNT
}

// ParseTriggerLine accepts "PXI_TRIGGER3", "pxi3" or "3".
func ParseTriggerLine(name string) (tl TriggerLine, err error) {
	word := strings.ToUpper(strings.TrimSpace(name))
	for _, prefix := range []string{"PXI_TRIGGER", "PXI"} {
		if rest, ok := strings.CutPrefix(word, prefix); ok {
			word = rest
			break
		}
	}

	n, err := strconv.Atoi(word)
	if err != nil {
		err = fmt.Errorf("%w: %q", ErrTriggerLine, name)
		return
	}

	tl = TriggerLine(n)
	if !tl.Valid() {
		err = fmt.Errorf("%w: %q", ErrTriggerLine, name)
	}
	return
}

// Resource is an exclusive, chassis-scoped hardware resource.
type Resource struct {
	Chassis int
	Name    string
}

func (res Resource) String() string {
	return fmt.Sprintf("chassis%d/%v", res.Chassis, res.Name)
}

// LineResource returns the resource for a trigger line in a chassis.
func LineResource(chassis int, line TriggerLine) Resource {
	return Resource{Chassis: chassis, Name: line.String()}
}

// ClockResource returns the resource for a non-native clock in a chassis.
func ClockResource(chassis int, hz float64) Resource {
	return Resource{Chassis: chassis, Name: "CLK_" + strconv.FormatFloat(hz, 'f', -1, 64)}
}
