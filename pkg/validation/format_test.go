package validation

import (
	"strings"
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		expectErr bool
	}{
		{
			name:      "Valid table format",
			format:    "table",
			expectErr: false,
		},
		{
			name:      "Valid csv format",
			format:    "csv",
			expectErr: false,
		},
		{
			name:      "Valid json format",
			format:    "json",
			expectErr: false,
		},
		{
			name:      "Empty format",
			format:    "",
			expectErr: true,
		},
		{
			name:      "Case sensitive - uppercase",
			format:    "CSV",
			expectErr: true,
		},
		{
			name:      "Leading/trailing spaces",
			format:    " json ",
			expectErr: true,
		},
		{
			name:      "Legacy pretty format",
			format:    "pretty",
			expectErr: true,
		},
		{
			name:      "XML format not supported",
			format:    "xml",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)

			if tt.expectErr {
				if err == nil {
					t.Errorf("ValidateOutputFormat(%s) expected error but got none", tt.format)
				}
			} else {
				if err != nil {
					t.Errorf("ValidateOutputFormat(%s) unexpected error = %v", tt.format, err)
				}
			}
		})
	}
}

func TestValidateOutputFormatErrorMessage(t *testing.T) {
	err := ValidateOutputFormat("xml")
	if err == nil {
		t.Fatal("Expected error for format 'xml'")
	}
	if !strings.Contains(err.Error(), `"xml"`) {
		t.Errorf("Error message should mention the invalid format: %s", err)
	}
	if !strings.Contains(err.Error(), "table, csv, json") {
		t.Errorf("Error message should list the supported formats: %s", err)
	}
}

func TestValidateLogSettings(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		if err := ValidateLogLevel(level); err != nil {
			t.Errorf("ValidateLogLevel(%s) unexpected error = %v", level, err)
		}
	}
	if err := ValidateLogLevel("trace"); err == nil {
		t.Error("ValidateLogLevel(trace) expected error but got none")
	}
	if err := ValidateLogFormat("console"); err != nil {
		t.Errorf("ValidateLogFormat(console) unexpected error = %v", err)
	}
	if err := ValidateLogFormat("text"); err == nil {
		t.Error("ValidateLogFormat(text) expected error but got none")
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		id        int64
		expectErr bool
	}{
		{id: 1, expectErr: false},
		{id: 42, expectErr: false},
		{id: 0, expectErr: true},
		{id: -7, expectErr: true},
	}

	for _, tt := range tests {
		err := ValidateID("period id", tt.id)
		if (err != nil) != tt.expectErr {
			t.Errorf("ValidateID(%d) error = %v, expectErr %v", tt.id, err, tt.expectErr)
		}
	}
}
