package serial

import (
	"sort"
	"strings"
	"testing"
)

func TestListPorts(t *testing.T) {
	ports, err := ListPorts()
	if err != nil {
		t.Fatalf("ListPorts failed: %v", err)
	}

	if !sort.StringsAreSorted(ports) {
		t.Error("Expected ports to be sorted")
	}

	for _, port := range ports {
		if !strings.HasPrefix(port, "/dev/") {
			t.Errorf("Expected port path under /dev, got %s", port)
		}
	}
}

func TestOpenErrorWrapsCause(t *testing.T) {
	_, err := Open("/dev/definitely-not-a-serial-port")
	if err == nil {
		t.Fatal("Expected error opening nonexistent device")
	}

	openErr, ok := err.(*OpenError)
	if !ok {
		t.Fatalf("Expected *OpenError, got %T", err)
	}
	if openErr.Device != "/dev/definitely-not-a-serial-port" {
		t.Errorf("Unexpected device in error: %s", openErr.Device)
	}
	if openErr.Unwrap() == nil {
		t.Error("Expected wrapped cause")
	}
}

func TestOpenInvalidBaud(t *testing.T) {
	_, err := Open("/dev/null", WithBaudRate(12345))
	if err == nil {
		t.Fatal("Expected error for invalid baud rate")
	}
	if _, ok := err.(*OpenError); !ok {
		t.Fatalf("Expected *OpenError, got %T", err)
	}
}
