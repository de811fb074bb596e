package render

import (
	"testing"
)

func TestRenderer_Alert(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	got, err := r.Alert(AlertData{Category: "fire", Message: "smoke everywhere", Address: "Sector 5, Rohini"})
	if err != nil {
		t.Fatalf("Alert: %v", err)
	}
	want := `FIRE emergency reported near Sector 5, Rohini. "smoke everywhere"`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	got, err = r.Alert(AlertData{Category: "other"})
	if err != nil {
		t.Fatalf("Alert: %v", err)
	}
	if got != "OTHER emergency reported." {
		t.Fatalf("unexpected bare alert: %q", got)
	}
}

func TestRenderer_Delivery(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	title, body, err := r.Delivery(DeliveryData{Category: "medical", Alert: "MEDICAL emergency reported.", Distance: "250 m", ETAMinutes: 1})
	if err != nil {
		t.Fatalf("Delivery: %v", err)
	}
	if title != "SOS alert: MEDICAL nearby" {
		t.Fatalf("unexpected title %q", title)
	}
	want := "MEDICAL emergency reported.\nDistance: 250 m (about 1 min away). Stay safe and avoid the area."
	if body != want {
		t.Fatalf("got %q want %q", body, want)
	}

	_, body, err = r.Delivery(DeliveryData{Category: "fire", Alert: "x", Distance: "10 m"})
	if err != nil {
		t.Fatalf("Delivery: %v", err)
	}
	if body != "x\nDistance: 10 m. Stay safe and avoid the area." {
		t.Fatalf("unexpected body without eta: %q", body)
	}
}
