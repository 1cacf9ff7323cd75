package result

import (
	"errors"
	"testing"
)

func TestOkCarriesDataAndEmptyErrors(t *testing.T) {
	t.Parallel()
	res := Ok(42)
	if !res.Success {
		t.Fatal("Ok must be successful")
	}
	if res.Data != 42 {
		t.Errorf("Data = %d", res.Data)
	}
	if res.Errors == nil || len(res.Errors) != 0 {
		t.Errorf("Errors = %v, want empty slice", res.Errors)
	}
}

func TestFailDefaultsNilErrorsToEmpty(t *testing.T) {
	t.Parallel()
	res := Fail[string]("failed", "فشل")
	if res.Success {
		t.Fatal("Fail must not be successful")
	}
	if res.Errors == nil {
		t.Error("Errors should never be nil")
	}
	if res.Data != "" {
		t.Errorf("Data = %q, want zero value", res.Data)
	}
}

func TestFailKeepsItemizedErrors(t *testing.T) {
	t.Parallel()
	res := Fail[int]("Validation failed", "فشل التحقق من البيانات",
		"Missing required field: unit_id",
		"Missing required field: person_ids")
	if len(res.Errors) != 2 {
		t.Fatalf("Errors = %v", res.Errors)
	}
}

func TestFailErrUsesErrorText(t *testing.T) {
	t.Parallel()
	res := FailErr[int](errors.New("boom"))
	if res.Success || res.Message != "boom" {
		t.Errorf("result = %+v", res)
	}
}

func TestDisplayMessagePrefersArabic(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		res  OperationResult[int]
		want string
	}{
		{"arabic wins", OkMsg(1, "Created", "تم الإنشاء"), "تم الإنشاء"},
		{"english fallback", OkMsg(1, "Created", ""), "Created"},
		{"both empty", Ok(1), ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.res.DisplayMessage(); got != tt.want {
				t.Errorf("DisplayMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
