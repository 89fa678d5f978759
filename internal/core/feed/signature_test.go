package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestSignatureDeterministic(t *testing.T) {
	in := SignatureInput{VIN: strPtr("1HGCM82633A004352"), Title: strPtr("2019 Honda Accord"), Price: intPtr(18500), Phone: strPtr("555-0100")}

	first := Signature(in)
	assert.Len(t, first, 64)
	assert.Equal(t, first, Signature(in))
}

func TestSignatureMatchesCanonicalJSON(t *testing.T) {
	// sha256 от {"vin":null,"t":null,"p":null,"ph":null}
	assert.Equal(t, "57112afe294339d62c85debb4074310ba5cb606de957480b396f8ae7af0f6b6f", Signature(SignatureInput{}))

	blank := Signature(SignatureInput{VIN: strPtr("   "), Title: strPtr(""), Phone: strPtr("--")})
	assert.Equal(t, Signature(SignatureInput{}), blank, "empty values serialize as null")

	// sha256 от {"vin":"VIN123","t":"2019 honda civic","p":10000,"ph":"5550100"}
	got := Signature(SignatureInput{VIN: strPtr(" VIN123"), Title: strPtr("2019 Honda  Civic"), Price: intPtr(10000), Phone: strPtr("555-0100")})
	assert.Equal(t, "19780d3a5addcb554a3a50e275768edb363edea4c6095bdd8b30ace4dbc16063", got)
}

func TestSignatureIgnoresCosmeticDifferences(t *testing.T) {
	base := Signature(SignatureInput{VIN: strPtr("VIN123"), Title: strPtr("2019 honda accord ex"), Price: intPtr(18500), Phone: strPtr("5550100")})

	variants := []SignatureInput{
		{VIN: strPtr("  VIN123 "), Title: strPtr("2019 honda accord ex"), Price: intPtr(18500), Phone: strPtr("5550100")},
		{VIN: strPtr("VIN123"), Title: strPtr("2019 HONDA Accord EX"), Price: intPtr(18500), Phone: strPtr("5550100")},
		{VIN: strPtr("VIN123"), Title: strPtr("2019  honda\taccord \n ex"), Price: intPtr(18500), Phone: strPtr("5550100")},
		{VIN: strPtr("VIN123"), Title: strPtr("2019 honda accord ex"), Price: intPtr(18500), Phone: strPtr("(555) 01-00")},
	}
	for i, v := range variants {
		assert.Equal(t, base, Signature(v), "variant %d", i)
	}
}

func TestSignatureSensitiveToEachField(t *testing.T) {
	base := SignatureInput{VIN: strPtr("VIN123"), Title: strPtr("Civic"), Price: intPtr(10000), Phone: strPtr("5550100")}
	baseSig := Signature(base)

	changed := []SignatureInput{
		{VIN: strPtr("VIN124"), Title: base.Title, Price: base.Price, Phone: base.Phone},
		{VIN: base.VIN, Title: strPtr("Civic LX"), Price: base.Price, Phone: base.Phone},
		{VIN: base.VIN, Title: base.Title, Price: intPtr(10001), Phone: base.Phone},
		{VIN: base.VIN, Title: base.Title, Price: nil, Phone: base.Phone},
		{VIN: base.VIN, Title: base.Title, Price: base.Price, Phone: strPtr("5550101")},
		{VIN: nil, Title: base.Title, Price: base.Price, Phone: base.Phone},
	}
	for i, c := range changed {
		require.NotEqual(t, baseSig, Signature(c), "change %d", i)
	}
}

func TestSignatureZeroPriceDiffersFromMissing(t *testing.T) {
	assert.NotEqual(t,
		Signature(SignatureInput{Title: strPtr("x"), Price: intPtr(0)}),
		Signature(SignatureInput{Title: strPtr("x")}))
}
