package utils

import (
	"github.com/shopspring/decimal"
	"github.com/studiodanca/pagamentos/pkg/hashid"
)

var (
	HashIDTypePayment    = hashid.NewType("pm-", "payment", 6)
	HashIDTypeEnrollment = hashid.NewType("en-", "enrollment", 6)
)

// DecodePaymentHashID decodes a public payment id into the database id.
func DecodePaymentHashID(hashID string) (uint, error) {
	return hashid.Decode(HashIDTypePayment, hashID)
}

// EncodePaymentID encodes a database id into the public payment id.
func EncodePaymentID(id uint) string {
	return hashid.Encode(HashIDTypePayment, id)
}

func EncodeEnrollmentID(id uint) string {
	return hashid.Encode(HashIDTypeEnrollment, id)
}

func DecodeEnrollmentHashID(hashID string) (uint, error) {
	return hashid.Decode(HashIDTypeEnrollment, hashID)
}

var dec100 = decimal.NewFromInt(100)

// CentsToDecimal converts an amount in cents to currency units.
func CentsToDecimal(v int64) *decimal.Decimal {
	v2 := decimal.NewFromInt(v).Div(dec100)
	return &v2
}
