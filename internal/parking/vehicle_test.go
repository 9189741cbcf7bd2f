package parking

import "testing"

func TestNewVehicle(t *testing.T) {
	plate := "DHA-5678"

	vehicle := NewVehicle(plate, KindCar)

	if vehicle.Plate != plate {
		t.Errorf("Expected plate %s, got %s", plate, vehicle.Plate)
	}

	if vehicle.Kind != KindCar {
		t.Errorf("Expected kind %s, got %s", KindCar, vehicle.Kind)
	}
}

func TestParseKind(t *testing.T) {
	for _, input := range []string{"bike", "CAR", " truck "} {
		if _, err := ParseKind(input); err != nil {
			t.Errorf("Unexpected error for %q: %s", input, err.Error())
		}
	}

	if _, err := ParseKind("van"); err == nil {
		t.Error("Expected error for unknown kind")
	}
}
