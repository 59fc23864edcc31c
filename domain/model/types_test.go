package model

import (
	"errors"
	"strconv"
	"testing"
)

func TestHeader_Equal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		header1  Header
		header2  Header
		expected bool
	}{
		{
			name:     "Equal headers",
			header1:  NewHeader([]string{"col1", "col2"}),
			header2:  NewHeader([]string{"col1", "col2"}),
			expected: true,
		},
		{
			name:     "Different length headers",
			header1:  NewHeader([]string{"col1", "col2"}),
			header2:  NewHeader([]string{"col1"}),
			expected: false,
		},
		{
			name:     "Different content headers",
			header1:  NewHeader([]string{"col1", "col2"}),
			header2:  NewHeader([]string{"col1", "col3"}),
			expected: false,
		},
		{
			name:     "Empty headers",
			header1:  NewHeader([]string{}),
			header2:  NewHeader([]string{}),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.header1.Equal(tt.header2); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestHeader_Validate(t *testing.T) {
	t.Parallel()

	wide := make([]string, MaxColumns+1)
	for i := range wide {
		wide[i] = "c" + strconv.Itoa(i)
	}

	tests := []struct {
		name    string
		header  Header
		wantErr error
	}{
		{name: "Valid header", header: NewHeader([]string{"id", "name"}), wantErr: nil},
		{name: "Empty header", header: NewHeader(nil), wantErr: ErrEmptyHeader},
		{name: "Duplicate names", header: NewHeader([]string{"id", "name", "id"}), wantErr: ErrDuplicateColumnName},
		{name: "Duplicate after trimming", header: NewHeader([]string{"id", " id "}), wantErr: ErrDuplicateColumnName},
		{name: "Too many columns", header: NewHeader(wide), wantErr: ErrTooManyColumns},
		{name: "Exactly max columns", header: NewHeader(wide[:MaxColumns]), wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.header.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRecord_Equal(t *testing.T) {
	t.Parallel()

	if !NewRecord([]string{"a", "b"}).Equal(NewRecord([]string{"a", "b"})) {
		t.Error("expected equal records")
	}
	if NewRecord([]string{"a", "b"}).Equal(NewRecord([]string{"a", "c"})) {
		t.Error("expected different records")
	}
	if NewRecord([]string{"a"}).Equal(NewRecord([]string{"a", "b"})) {
		t.Error("expected different lengths to be unequal")
	}
}
