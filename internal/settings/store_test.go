package settings

import (
	"testing"

	"dryckeslager/internal/models"
)

func TestDefaults(t *testing.T) {
	store := NewStore(models.DefaultSettings(), nil, nil, nil)

	low, medium := store.Thresholds()
	if low != 5 || medium != 10 {
		t.Errorf("Thresholds() = (%d, %d), want (5, 10)", low, medium)
	}
	if got := store.Settings().ThemeMode; got != models.ThemeSystem {
		t.Errorf("ThemeMode = %q, want system", got)
	}
}

func TestUpdateLowStockThreshold(t *testing.T) {
	store := NewStore(models.DefaultSettings(), nil, nil, nil)

	if err := store.UpdateLowStockThreshold(7); err != nil {
		t.Fatalf("UpdateLowStockThreshold(7) returned error: %v", err)
	}
	if low, _ := store.Thresholds(); low != 7 {
		t.Errorf("low threshold = %d, want 7", low)
	}

	if err := store.UpdateLowStockThreshold(0); err != ErrInvalidThreshold {
		t.Errorf("UpdateLowStockThreshold(0) error = %v, want ErrInvalidThreshold", err)
	}
	if err := store.UpdateLowStockThreshold(-3); err != ErrInvalidThreshold {
		t.Errorf("UpdateLowStockThreshold(-3) error = %v, want ErrInvalidThreshold", err)
	}
	// Crossing the medium threshold is rejected, not silently applied
	if err := store.UpdateLowStockThreshold(10); err != ErrThresholdOrder {
		t.Errorf("UpdateLowStockThreshold(10) error = %v, want ErrThresholdOrder", err)
	}
	if low, _ := store.Thresholds(); low != 7 {
		t.Errorf("low threshold after rejections = %d, want 7", low)
	}
}

func TestUpdateMediumStockThreshold(t *testing.T) {
	store := NewStore(models.DefaultSettings(), nil, nil, nil)

	if err := store.UpdateMediumStockThreshold(20); err != nil {
		t.Fatalf("UpdateMediumStockThreshold(20) returned error: %v", err)
	}
	if _, medium := store.Thresholds(); medium != 20 {
		t.Errorf("medium threshold = %d, want 20", medium)
	}

	if err := store.UpdateMediumStockThreshold(5); err != ErrThresholdOrder {
		t.Errorf("UpdateMediumStockThreshold(5) error = %v, want ErrThresholdOrder", err)
	}
	if err := store.UpdateMediumStockThreshold(0); err != ErrInvalidThreshold {
		t.Errorf("UpdateMediumStockThreshold(0) error = %v, want ErrInvalidThreshold", err)
	}
}

func TestUpdateThresholdsPair(t *testing.T) {
	store := NewStore(models.DefaultSettings(), nil, nil, nil)

	// The paired update allows crossing the old medium value in one step
	if err := store.UpdateThresholds(15, 30); err != nil {
		t.Fatalf("UpdateThresholds(15, 30) returned error: %v", err)
	}
	low, medium := store.Thresholds()
	if low != 15 || medium != 30 {
		t.Errorf("Thresholds() = (%d, %d), want (15, 30)", low, medium)
	}

	if err := store.UpdateThresholds(10, 10); err != ErrThresholdOrder {
		t.Errorf("UpdateThresholds(10, 10) error = %v, want ErrThresholdOrder", err)
	}
	if err := store.UpdateThresholds(0, 10); err != ErrInvalidThreshold {
		t.Errorf("UpdateThresholds(0, 10) error = %v, want ErrInvalidThreshold", err)
	}
}

// The ordering invariant holds after any update sequence made through the
// store, because violating updates are rejected at the call site.
func TestThresholdOrderInvariant(t *testing.T) {
	store := NewStore(models.DefaultSettings(), nil, nil, nil)

	updates := []func() error{
		func() error { return store.UpdateLowStockThreshold(9) },
		func() error { return store.UpdateMediumStockThreshold(9) },
		func() error { return store.UpdateMediumStockThreshold(25) },
		func() error { return store.UpdateLowStockThreshold(24) },
		func() error { return store.UpdateThresholds(2, 4) },
		func() error { return store.UpdateLowStockThreshold(4) },
	}

	for i, update := range updates {
		update()
		low, medium := store.Thresholds()
		if medium <= low {
			t.Fatalf("after update %d: thresholds (%d, %d) violate medium > low", i, low, medium)
		}
	}
}

func TestUpdateThemeMode(t *testing.T) {
	store := NewStore(models.DefaultSettings(), nil, nil, nil)

	if err := store.UpdateThemeMode(models.ThemeDark); err != nil {
		t.Fatalf("UpdateThemeMode(dark) returned error: %v", err)
	}
	if got := store.Settings().ThemeMode; got != models.ThemeDark {
		t.Errorf("ThemeMode = %q, want dark", got)
	}

	if err := store.UpdateThemeMode("sepia"); err != ErrInvalidThemeMode {
		t.Errorf("UpdateThemeMode(sepia) error = %v, want ErrInvalidThemeMode", err)
	}
}

func TestIsDarkMode(t *testing.T) {
	hostScheme := models.ThemeLight
	store := NewStore(models.DefaultSettings(), nil, func() models.ThemeMode {
		return hostScheme
	}, nil)

	// system mode follows the host signal, re-resolved on every call
	if store.IsDarkMode() {
		t.Error("IsDarkMode() = true with a light host scheme, want false")
	}
	hostScheme = models.ThemeDark
	if !store.IsDarkMode() {
		t.Error("IsDarkMode() = false after the host scheme changed, want true")
	}

	// explicit modes ignore the host signal
	store.UpdateThemeMode(models.ThemeLight)
	if store.IsDarkMode() {
		t.Error("IsDarkMode() = true in light mode, want false")
	}
	store.UpdateThemeMode(models.ThemeDark)
	hostScheme = models.ThemeLight
	if !store.IsDarkMode() {
		t.Error("IsDarkMode() = false in dark mode, want true")
	}
}

func TestIsDarkModeWithoutHostSignal(t *testing.T) {
	store := NewStore(models.DefaultSettings(), nil, nil, nil)
	if store.IsDarkMode() {
		t.Error("IsDarkMode() = true with no host signal, want false")
	}
}
