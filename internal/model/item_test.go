package model

import "testing"

func TestValidateItemType(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{ItemTypeFound, false},
		{ItemTypeLost, false},
		{"", true},
		{"FOUND", true},
		{"stolen", true},
	}

	for _, tt := range tests {
		err := ValidateItemType(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateItemType(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestValidateContactMethod(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{ContactLeftAt, false},
		{ContactContactMe, false},
		{"", true},
		{"phone", true},
	}

	for _, tt := range tests {
		err := ValidateContactMethod(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateContactMethod(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestOppositeType(t *testing.T) {
	if got := OppositeType(ItemTypeLost); got != ItemTypeFound {
		t.Errorf("OppositeType(lost) = %q, want found", got)
	}
	if got := OppositeType(ItemTypeFound); got != ItemTypeLost {
		t.Errorf("OppositeType(found) = %q, want lost", got)
	}
}

func TestItemUpdateEmpty(t *testing.T) {
	if !(ItemUpdate{}).Empty() {
		t.Error("zero update should be empty")
	}

	desc := "blue umbrella"
	if (ItemUpdate{Description: &desc}).Empty() {
		t.Error("update with a description should not be empty")
	}
}

func TestItemUpdateValidate(t *testing.T) {
	bad := "carrier_pigeon"
	if err := (ItemUpdate{ContactMethod: &bad}).Validate(); err == nil {
		t.Error("expected error for unknown contact method")
	}

	archived := ItemStatusArchived
	if err := (ItemUpdate{Status: &archived}).Validate(); err != nil {
		t.Errorf("unexpected error for valid status: %v", err)
	}
}
