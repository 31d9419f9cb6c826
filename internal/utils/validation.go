package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/shopspring/decimal"
)

var (
	// rxBlockchainAddress matches a 0x-prefixed 20-byte hex address.
	rxBlockchainAddress = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	// rxTxHash matches a 0x-prefixed 32-byte transaction hash.
	rxTxHash = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
	// rxRoutingNumber matches a 9-digit ABA routing number.
	rxRoutingNumber = regexp.MustCompile(`^\d{9}$`)
)

func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if !govalidator.IsEmail(email) {
		return fmt.Errorf("the provided email is not valid")
	}

	return nil
}

// ValidateAmount validates a token amount expressed as a decimal string in
// base units.
func ValidateAmount(amount string) error {
	if amount == "" {
		return fmt.Errorf("amount cannot be empty")
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return fmt.Errorf("the provided amount is not a valid number")
	}

	if !value.IsPositive() {
		return fmt.Errorf("the provided amount must be greater than zero")
	}

	return nil
}

// ValidateBlockchainAddress validates a 0x-prefixed hex deposit address.
// Blockchain addresses are not case-sensitive identifiers, so no checksum
// casing is enforced.
func ValidateBlockchainAddress(address string) error {
	if address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	if !rxBlockchainAddress.MatchString(address) {
		return fmt.Errorf("the provided address is not a valid blockchain address")
	}

	return nil
}

func ValidateTransactionHash(txHash string) error {
	if txHash == "" {
		return fmt.Errorf("transaction hash cannot be empty")
	}

	if !rxTxHash.MatchString(txHash) {
		return fmt.Errorf("the provided transaction hash is not valid")
	}

	return nil
}

func ValidateRoutingNumber(routingNumber string) error {
	if !rxRoutingNumber.MatchString(routingNumber) {
		return fmt.Errorf("the provided routing number is not a valid 9 digit value")
	}

	return nil
}

// ValidateMailingAddress is the pure address-validation predicate used when
// provisioning a customer: street line 1, city and country are required.
func ValidateMailingAddress(streetLine1, city, country string) error {
	if strings.TrimSpace(streetLine1) == "" {
		return fmt.Errorf("street_line_1 is required")
	}
	if strings.TrimSpace(city) == "" {
		return fmt.Errorf("city is required")
	}
	if strings.TrimSpace(country) == "" {
		return fmt.Errorf("country is required")
	}

	return nil
}
