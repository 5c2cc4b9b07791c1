package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModeForVersion(t *testing.T) {
	tests := []struct {
		version string
		want    Mode
		wantErr bool
	}{
		{version: "4.x", want: ModeLegacy},
		{version: "5.x", want: ModeLegacy},
		{version: "5", want: ModeLegacy},
		{version: "6.x", want: ModeDirect},
		{version: "7.0.1", want: ModeDirect},
		{version: "v8", want: ModeDirect},
		{version: " 9.x ", want: ModeDirect},
		{version: "3.x", want: ModeLegacy, wantErr: true},
		{version: "10.x", want: ModeLegacy, wantErr: true},
		{version: "", want: ModeLegacy, wantErr: true},
		{version: "latest", want: ModeLegacy, wantErr: true},
		{version: "7beta", want: ModeLegacy, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got, err := ModeForVersion(tt.version)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedVersion)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSupportedVersionsAreTotal(t *testing.T) {
	versions := SupportedVersions()
	assert.Equal(t, []string{"4.x", "5.x", "6.x", "7.x", "8.x", "9.x"}, versions)

	for _, v := range versions {
		_, err := ModeForVersion(v)
		assert.NoError(t, err, v)
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "legacy", ModeLegacy.String())
	assert.Equal(t, "direct", ModeDirect.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
}
