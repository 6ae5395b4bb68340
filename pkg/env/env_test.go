package env

import "testing"

func TestGetTrimsAndFallsBack(t *testing.T) {
	t.Setenv("AGRI_TEST_VALUE", "  console ")
	if got := Get("AGRI_TEST_VALUE", "json"); got != "console" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	t.Setenv("AGRI_TEST_VALUE", "   ")
	if got := Get("AGRI_TEST_VALUE", "json"); got != "json" {
		t.Fatalf("blank value should fall back, got %q", got)
	}
}

func TestFirst(t *testing.T) {
	t.Setenv("AGRI_TEST_A", "")
	t.Setenv("AGRI_TEST_B", "web.2")
	if got, ok := First("AGRI_TEST_A", "AGRI_TEST_B"); !ok || got != "web.2" {
		t.Fatalf("unexpected First result %q %v", got, ok)
	}
	t.Setenv("AGRI_TEST_B", "")
	if _, ok := First("AGRI_TEST_A", "AGRI_TEST_B"); ok {
		t.Fatal("expected no value")
	}
}
