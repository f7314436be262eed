// Package barcode implements the Code 128 payload codec for variant labels.
// A code is "NUV" + 13 structural characters:
//
//	NUV 03 SM 00042 0450
//	    │  │  │     └── price bucket: integer sale price, zero-padded to 4
//	    │  │  └── product code, zero-padded to 5
//	    │  └── color code + size code, "0" for an absent axis
//	    └── shape flag: 00 plain, 01 color only, 02 size only, 03 both
//
// The price bucket is captured at encode time and never refreshed, so a
// decoded price can be stale after a catalog price change. Callers that need
// live pricing must resolve the product and ignore the decoded bucket.
//
// Bare 13-character bodies without the NUV prefix are legacy labels still in
// circulation and decode the same way.
package barcode

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	// Prefix identifies labels printed by this system.
	Prefix = "NUV"

	bodyLen = 13
	codeLen = len(Prefix) + bodyLen

	// Shape flags.
	ShapePlain     = "00"
	ShapeColorOnly = "01"
	ShapeSizeOnly  = "02"
	ShapeColorSize = "03"

	maxPriceBucket = 9999
)

var (
	ErrInvalidCode  = errors.New("barcode: malformed code")
	ErrInvalidAttrs = errors.New("barcode: invalid variant attributes")
)

// Attrs are the variant attributes a code is derived from. ColorCode and
// SizeCode are single characters, empty when the axis is absent. ProductCode
// is the catalog's 5-digit product number.
type Attrs struct {
	ProductCode string
	ColorCode   string
	SizeCode    string
	Price       decimal.Decimal
}

// Code is the structural decomposition of a scanned label. ColorCode and
// SizeCode are empty when the axis was absent ("0" on the wire). Legacy is
// true for prefix-less 13-character labels.
type Code struct {
	ShapeFlag   string
	ColorCode   string
	SizeCode    string
	ProductCode string
	PriceBucket int
	Legacy      bool
}

// Encode builds the deterministic label payload for a variant. The same
// attributes always yield the same code.
func Encode(a Attrs) (string, error) {
	if len(a.ProductCode) != 5 || !allDigits(a.ProductCode) {
		return "", fmt.Errorf("%w: product code %q must be 5 digits", ErrInvalidAttrs, a.ProductCode)
	}
	if len(a.ColorCode) > 1 || len(a.SizeCode) > 1 {
		return "", fmt.Errorf("%w: axis codes are single characters", ErrInvalidAttrs)
	}

	flag := ShapePlain
	switch {
	case a.ColorCode != "" && a.SizeCode != "":
		flag = ShapeColorSize
	case a.ColorCode != "":
		flag = ShapeColorOnly
	case a.SizeCode != "":
		flag = ShapeSizeOnly
	}

	color := a.ColorCode
	if color == "" {
		color = "0"
	}
	size := a.SizeCode
	if size == "" {
		size = "0"
	}

	bucket := a.Price.IntPart()
	if bucket < 0 || bucket > maxPriceBucket {
		return "", fmt.Errorf("%w: price %s outside bucket range", ErrInvalidAttrs, a.Price)
	}

	return fmt.Sprintf("%s%s%s%s%s%04d", Prefix, flag, color, size, a.ProductCode, bucket), nil
}

// Decode splits a scanned code into its structural fields. It does not touch
// the catalog; resolving the product code to a live variant is the caller's
// job. Decode(Encode(a)) reproduces a's product, color, and size codes.
func Decode(code string) (*Code, error) {
	body := code
	legacy := false

	switch len(code) {
	case codeLen:
		if code[:len(Prefix)] != Prefix {
			return nil, fmt.Errorf("%w: unknown prefix", ErrInvalidCode)
		}
		body = code[len(Prefix):]
	case bodyLen:
		legacy = true
	default:
		return nil, fmt.Errorf("%w: length %d", ErrInvalidCode, len(code))
	}

	switch body[0:2] {
	case ShapePlain, ShapeColorOnly, ShapeSizeOnly, ShapeColorSize:
	default:
		return nil, fmt.Errorf("%w: shape flag %q", ErrInvalidCode, body[0:2])
	}
	productCode := body[4:9]
	if !allDigits(productCode) {
		return nil, fmt.Errorf("%w: product segment %q", ErrInvalidCode, productCode)
	}
	// Atoi alone would accept a sign character here.
	if !allDigits(body[9:13]) {
		return nil, fmt.Errorf("%w: price segment %q", ErrInvalidCode, body[9:13])
	}
	bucket, _ := strconv.Atoi(body[9:13])

	c := &Code{
		ShapeFlag:   body[0:2],
		ColorCode:   axisCode(body[2]),
		SizeCode:    axisCode(body[3]),
		ProductCode: productCode,
		PriceBucket: bucket,
		Legacy:      legacy,
	}
	return c, nil
}

func axisCode(b byte) string {
	if b == '0' {
		return ""
	}
	return string(b)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
