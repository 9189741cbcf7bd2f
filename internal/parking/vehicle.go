package parking

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind selects the hourly rate a vehicle is billed at.
type Kind string

const (
	KindBike  Kind = "bike"
	KindCar   Kind = "car"
	KindTruck Kind = "truck"
)

// Kinds lists every known vehicle kind.
var Kinds = []Kind{KindBike, KindCar, KindTruck}

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindBike, KindCar, KindTruck:
		return k, nil
	}
	return "", errors.Wrapf(ErrUnknownKind, "kind %q", s)
}

// Vehicle is never mutated after creation, so it is passed by value.
type Vehicle struct {
	Plate string
	Kind  Kind
}

func NewVehicle(plate string, kind Kind) Vehicle {
	return Vehicle{
		Plate: plate,
		Kind:  kind,
	}
}
