package engage

import (
	"errors"
	"testing"
)

func TestParsePermalink(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantChannel string
		wantTS      string
		wantErr     bool
	}{
		{
			name:        "plain permalink",
			input:       "https://x.test/archives/C123/p1700000000123456",
			wantChannel: "C123",
			wantTS:      "1700000000.123456",
		},
		{
			name:        "permalink pasted inside command text",
			input:       "check this https://acme.slack.com/archives/C04AB12CD/p1712345678901234 please",
			wantChannel: "C04AB12CD",
			wantTS:      "1712345678.901234",
		},
		{
			name:        "http scheme",
			input:       "http://x.test/archives/C9/p1700000000123456",
			wantChannel: "C9",
			wantTS:      "1700000000.123456",
		},
		{
			name:        "longer seconds part",
			input:       "https://x.test/archives/C123/p17000000001234567",
			wantChannel: "C123",
			wantTS:      "17000000001.234567",
		},
		{
			name:    "too few digits",
			input:   "https://x.test/archives/C123/p170000000012345",
			wantErr: true,
		},
		{
			name:    "no permalink at all",
			input:   "just some text",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			channel, ts, err := ParsePermalink(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrNoPermalink) {
					t.Fatalf("err = %v, want ErrNoPermalink", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if channel != tt.wantChannel {
				t.Errorf("channel = %q, want %q", channel, tt.wantChannel)
			}
			if ts != tt.wantTS {
				t.Errorf("ts = %q, want %q", ts, tt.wantTS)
			}
		})
	}
}
