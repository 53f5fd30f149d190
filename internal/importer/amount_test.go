package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "10.00", want: "10.00"},
		{in: "-588.74", want: "-588.74"},
		{in: "1,234.56", want: "1234.56"},
		{in: "£40", want: "40.00"},
		{in: "-£12.30", want: "-12.30"},
		{in: "(15.00)", want: "-15.00"},
		{in: " 7.5 ", want: "7.50"},
		{in: "n/a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}
