package location

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		address string
		mapURL  string
	}{
		{
			name:    "plain_address_verbatim",
			in:      "4035 Rue Saint-Denis, Montréal, QC",
			address: "4035 Rue Saint-Denis, Montréal, QC",
		},
		{
			name:    "maps_url_with_query",
			in:      "https://maps.google.com/?q=4035+Rue+Saint-Denis%2C+Montr%C3%A9al",
			address: "4035 Rue Saint-Denis, Montréal",
			mapURL:  "https://maps.google.com/?q=4035+Rue+Saint-Denis%2C+Montr%C3%A9al",
		},
		{
			name:    "maps_url_without_query_keeps_raw_address",
			in:      "https://goo.gl/maps/abcDEF123",
			address: "https://goo.gl/maps/abcDEF123",
			mapURL:  "https://goo.gl/maps/abcDEF123",
		},
		{
			name: "empty_input",
			in:   "   ",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Normalize(tc.in)
			if got.Address != tc.address {
				t.Fatalf("address = %q, want %q", got.Address, tc.address)
			}
			if got.MapURL != tc.mapURL {
				t.Fatalf("mapUrl = %q, want %q", got.MapURL, tc.mapURL)
			}
		})
	}
}
