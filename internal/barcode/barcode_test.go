package barcode

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeShapeFlags(t *testing.T) {
	cases := []struct {
		name  string
		attrs Attrs
		want  string
	}{
		{
			name:  "color and size",
			attrs: Attrs{ProductCode: "00042", ColorCode: "S", SizeCode: "M", Price: decimal.NewFromInt(450)},
			want:  "NUV03SM000420450",
		},
		{
			name:  "color only",
			attrs: Attrs{ProductCode: "00042", ColorCode: "S", Price: decimal.NewFromInt(450)},
			want:  "NUV01S0000420450",
		},
		{
			name:  "size only",
			attrs: Attrs{ProductCode: "00042", SizeCode: "M", Price: decimal.NewFromInt(450)},
			want:  "NUV020M000420450",
		},
		{
			name:  "plain",
			attrs: Attrs{ProductCode: "00042", Price: decimal.NewFromInt(450)},
			want:  "NUV0000000420450",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, err := Encode(tc.attrs)
			require.NoError(t, err)
			assert.Equal(t, tc.want, code)
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	a := Attrs{ProductCode: "12345", ColorCode: "K", SizeCode: "L", Price: decimal.NewFromFloat(199.90)}
	first, err := Encode(a)
	require.NoError(t, err)
	second, err := Encode(a)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	// Price bucket truncates cents.
	assert.Equal(t, "NUV03KL123450199", first)
}

func TestDecodeRoundTrip(t *testing.T) {
	a := Attrs{ProductCode: "00007", ColorCode: "B", SizeCode: "2", Price: decimal.NewFromInt(1250)}
	code, err := Encode(a)
	require.NoError(t, err)

	got, err := Decode(code)
	require.NoError(t, err)
	assert.Equal(t, a.ProductCode, got.ProductCode)
	assert.Equal(t, a.ColorCode, got.ColorCode)
	assert.Equal(t, a.SizeCode, got.SizeCode)
	assert.Equal(t, 1250, got.PriceBucket)
	assert.Equal(t, ShapeColorSize, got.ShapeFlag)
	assert.False(t, got.Legacy)
}

func TestDecodeAbsentAxes(t *testing.T) {
	got, err := Decode("NUV0000000420450")
	require.NoError(t, err)
	assert.Empty(t, got.ColorCode)
	assert.Empty(t, got.SizeCode)
	assert.Equal(t, "00042", got.ProductCode)
}

func TestDecodeLegacyBody(t *testing.T) {
	// Pre-prefix labels: the same 13 characters without NUV.
	got, err := Decode("03SM000420450")
	require.NoError(t, err)
	assert.True(t, got.Legacy)
	assert.Equal(t, "00042", got.ProductCode)
	assert.Equal(t, "S", got.ColorCode)
	assert.Equal(t, "M", got.SizeCode)
	assert.Equal(t, 450, got.PriceBucket)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	for _, code := range []string{
		"",
		"NUV",
		"NUV03SM00042045",    // too short
		"NUV03SM0004204500",  // too long
		"XYZ03SM000420450",   // bad prefix
		"NUV03SMABCDE0450",   // non-numeric product
		"NUV03SM00042WXYZ",   // non-numeric price
		"NUV03SM00042-123",   // signed price segment
		"NUV03SM00042+123",   // Atoi would take this too
		"NUV99SM000420450",   // unknown shape flag
		"XX03SM000420450x",   // 16 chars, bad prefix
	} {
		_, err := Decode(code)
		assert.ErrorIs(t, err, ErrInvalidCode, "code %q", code)
	}
}

func TestEncodeRejectsInvalidAttrs(t *testing.T) {
	_, err := Encode(Attrs{ProductCode: "42", Price: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, ErrInvalidAttrs)

	_, err = Encode(Attrs{ProductCode: "00042", Price: decimal.NewFromInt(10000)})
	assert.ErrorIs(t, err, ErrInvalidAttrs)

	_, err = Encode(Attrs{ProductCode: "00042", ColorCode: "SM", Price: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, ErrInvalidAttrs)
}
